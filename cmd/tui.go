package main

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/desertthunder/tunebar/internal/ui"
	"github.com/urfave/cli/v3"
)

// TUI launches the interactive query bar.
func (r *Runner) TUI(ctx context.Context, cmd *cli.Command) error {
	if r.dispatcher == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	dir, err := r.config.PluginDir()
	if err != nil {
		return err
	}

	// Redirect logs to file to avoid interfering with TUI rendering. The
	// session and dispatcher share this logger instance, so the swap covers
	// them too.
	f, err := shared.OpenLogFile(filepath.Join(dir, "tunebar.log"))
	if err != nil {
		return fmt.Errorf("failed to create file logger: %w", err)
	}
	defer f.Close()
	r.logger.SetOutput(f)

	if err := ui.Run(ctx, r.dispatcher); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}

	return nil
}
