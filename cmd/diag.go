package main

import (
	"context"

	"github.com/desertthunder/tunebar/internal/artwork"
	"github.com/desertthunder/tunebar/internal/dispatch"
	"github.com/urfave/cli/v3"
)

// diagReport aggregates session, cache, and dispatch state for one process.
type diagReport struct {
	Version    string            `json:"version"`
	Connected  bool              `json:"connected"`
	TokenValid bool              `json:"token_valid"`
	User       string            `json:"user,omitempty"`
	PluginDir  string            `json:"plugin_dir"`
	Artwork    artwork.Stats     `json:"artwork"`
	Dispatch   dispatch.Snapshot `json:"dispatch"`
}

// Diag reports connectivity, token, cache, and dispatch health.
func (r *Runner) Diag(ctx context.Context, cmd *cli.Command) error {
	report := diagReport{Version: version}

	if dir, err := r.config.PluginDir(); err == nil {
		report.PluginDir = dir
	}

	if r.session != nil {
		report.Connected = r.session.Connected()
		report.TokenValid = r.session.TokenValid()
		report.User = r.session.UserID()
	}

	if r.art != nil {
		if stats, err := r.art.Stats(); err == nil {
			report.Artwork = stats
		} else {
			r.logger.Warn("failed to read artwork stats", "error", err)
		}
	}

	if r.dispatcher != nil {
		report.Dispatch = r.dispatcher.Metrics().Snapshot()
	}

	if cmd.Bool("json") {
		return r.writeJSON(report, true)
	}

	r.writePlainHeader("tunebar diagnostics")
	r.writePlain("Version: %s\n", report.Version)
	if report.User != "" {
		r.writePlain("Account: %s\n", report.User)
	} else {
		r.writePlain("Account: not connected\n")
	}
	r.writePlain("Connected: %t\n", report.Connected)
	r.writePlain("Token valid: %t\n", report.TokenValid)
	r.writePlain("Plugin directory: %s\n", report.PluginDir)
	r.writePlain("Artwork cached: %d entries\n", report.Artwork.Entries)
	r.writePlain("Dispatches: %d (%d suppressed, %d errors)\n", report.Dispatch.Dispatches, report.Dispatch.Suppressed, report.Dispatch.Errors)
	r.writePlain("Searches: %d (%d fallbacks)\n", report.Dispatch.Searches, report.Dispatch.Fallbacks)

	return nil
}
