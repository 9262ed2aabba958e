// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// authCommand handles Spotify authorization
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage Spotify authorization",
		Commands: []*cli.Command{
			{
				Name:   "login",
				Usage:  "Authorize with Spotify using OAuth2",
				Action: r.AuthLogin,
			},
			{
				Name:   "status",
				Usage:  "Verify the stored token against the Spotify API",
				Action: r.AuthStatus,
			},
		},
	}
}

// queryCommand dispatches a single query and prints the rendered results
func queryCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "query",
		Aliases: []string{"q"},
		Usage:   "Dispatch a query and print the results",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "text",
			},
		},
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
			&cli.BoolFlag{
				Name:  "pretty",
				Usage: "Pretty-print output",
				Value: true,
			},
			&cli.IntFlag{
				Name:  "select",
				Usage: "Run the Nth result's action after dispatch",
			},
		},
		Action: r.Query,
	}
}

// tuiCommand returns the top-level TUI command for the interactive query bar.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "bar"},
		Usage:   "Launch the interactive query bar",
		Action:  r.TUI,
	}
}

// mcpCommand serves the dispatcher over the Model Context Protocol
func mcpCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "mcp",
		Usage:  "Serve queries over the Model Context Protocol on stdio",
		Action: r.MCP,
	}
}

// configCommand manages the configuration file
func configCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "config",
		Usage: "Manage configuration",
		Commands: []*cli.Command{
			{
				Name:  "init",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "path",
						Aliases: []string{"p"},
						Usage:   "Destination path for the config file",
						Value:   "config.toml",
					},
				},
				Action: r.ConfigInit,
			},
			{
				Name:   "show",
				Usage:  "Print the resolved configuration",
				Action: r.ConfigShow,
			},
		},
	}
}

// diagCommand reports session, cache, and dispatch health
func diagCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "diag",
		Usage: "Show session and dispatch diagnostics",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "json",
				Usage: "Output raw JSON",
			},
		},
		Action: r.Diag,
	}
}
