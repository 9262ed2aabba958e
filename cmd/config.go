package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/urfave/cli/v3"
)

// ConfigInit writes the example configuration to the given path.
func (r *Runner) ConfigInit(ctx context.Context, cmd *cli.Command) error {
	path := cmd.String("path")

	if err := shared.CreateConfigFile(path); err != nil {
		return err
	}

	r.writePlain("✓ Config written to %s\n", path)
	r.writePlain("Fill in your Spotify credentials from https://developer.spotify.com/dashboard\n")

	return nil
}

// ConfigShow prints the resolved configuration with secrets masked.
func (r *Runner) ConfigShow(ctx context.Context, cmd *cli.Command) error {
	source := r.configPath
	if source == "" {
		source = "built-in defaults"
	}

	dir, err := r.config.PluginDir()
	if err != nil {
		return err
	}

	dbPath, err := r.config.DatabasePath()
	if err != nil {
		return err
	}

	r.writePlainHeader("tunebar configuration")
	r.writePlain("Source: %s\n", source)
	r.writePlain("Client ID: %s\n", maskSecret(r.config.Spotify.ClientID))
	r.writePlain("Client secret: %s\n", maskSecret(r.config.Spotify.ClientSecret))
	r.writePlain("Redirect URI: %s\n", r.config.Spotify.RedirectURI)
	r.writePlain("Plugin directory: %s\n", dir)
	r.writePlain("Artwork database: %s\n", dbPath)
	r.writePlain("Default icon: %s\n", r.config.Plugin.DefaultIcon)
	if r.config.Dispatch.Debounce {
		r.writePlain("Debounce: %s\n", r.config.QuietPeriod())
	} else {
		r.writePlain("Debounce: off\n")
	}
	r.writePlain("Callback server: %s:%d\n", r.config.Server.Host, r.config.Server.Port)
	r.writePlain("Log level: %s\n", r.config.Logging.Level)

	return nil
}

// maskSecret hides all but the last four characters of a credential.
func maskSecret(s string) string {
	if s == "" {
		return "(unset)"
	}
	if len(s) <= 4 {
		return "****"
	}
	return fmt.Sprintf("****%s", s[len(s)-4:])
}
