package main

import (
	"context"
	"fmt"

	"github.com/desertthunder/tunebar/internal/dispatch"
	"github.com/desertthunder/tunebar/internal/shared"
	"github.com/urfave/cli/v3"
)

// Query dispatches one query and renders the results, optionally running a
// selected result's action.
func (r *Runner) Query(ctx context.Context, cmd *cli.Command) error {
	text := cmd.StringArg("text")
	useJSON := cmd.Bool("json")
	pretty := cmd.Bool("pretty")
	selected := cmd.Int("select")

	if r.dispatcher == nil {
		return fmt.Errorf("%w: set spotify client_id and client_secret in config.toml", shared.ErrMissingCredentials)
	}

	r.logger.Debug("dispatching query", "text", text)

	results := r.dispatcher.Dispatch(ctx, text)
	if results == nil {
		results = []dispatch.Result{}
	}

	if useJSON {
		if err := r.writeJSON(results, pretty); err != nil {
			return err
		}
	} else if len(results) == 0 {
		r.writePlain("No results.\n")
	} else {
		for i, res := range results {
			r.writePlain("%d. %s\n", i+1, res.Title)
			if res.Subtitle != "" {
				r.writePlain("   %s\n", res.Subtitle)
			}
			if res.URI != "" {
				r.writePlain("   %s\n", res.URI)
			}
		}
	}

	if selected <= 0 {
		return nil
	}

	if selected > len(results) {
		return fmt.Errorf("%w: --select %d but only %d results", shared.ErrInvalidArgument, selected, len(results))
	}

	res := results[selected-1]
	if !res.OnSelect() {
		return fmt.Errorf("%w: action failed for %q", shared.ErrAPIRequest, res.Title)
	}

	r.writePlainln("✓ %s", res.Title)

	return nil
}
