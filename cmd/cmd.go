// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

// checkCommand handles submitting media for PPE analysis
func checkCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "check",
		Usage: "Submit media for PPE detection",
		Commands: []*cli.Command{
			{
				Name:  "file",
				Usage: "Analyze an image or video file",
				Arguments: []cli.Argument{
					&cli.StringArg{
						Name: "path",
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
					&cli.StringFlag{
						Name:    "save",
						Aliases: []string{"s"},
						Usage:   "Save annotated media to a local file",
					},
					&cli.StringFlag{
						Name:    "export",
						Aliases: []string{"e"},
						Usage:   "Export detection report to a file (csv, md or txt by extension)",
					},
				},
				Action: r.CheckFile,
			},
			{
				Name:    "camera",
				Aliases: []string{"cam"},
				Usage:   "Capture a frame from the camera and analyze it",
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
					&cli.StringFlag{
						Name:    "save",
						Aliases: []string{"s"},
						Usage:   "Save annotated media to a local file",
					},
				},
				Action: r.CheckCamera,
			},
		},
	}
}

// authCommand handles authentication operations
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Manage authentication",
		Commands: []*cli.Command{
			{
				Name:  "login",
				Usage: "Log in to the detection service",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthLogin,
			},
			{
				Name:  "signup",
				Usage: "Create a new account",
				Arguments: []cli.Argument{
					&cli.StringArg{Name: "email"},
				},
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:     "name",
						Usage:    "Display name",
						Required: true,
					},
					&cli.StringFlag{
						Name:     "password",
						Aliases:  []string{"p"},
						Usage:    "Account password",
						Required: true,
					},
				},
				Action: r.AuthSignup,
			},
			{
				Name:   "logout",
				Usage:  "Clear the stored session",
				Action: r.AuthLogout,
			},
			{
				Name:   "status",
				Usage:  "Show the current session",
				Action: r.AuthStatus,
			},
		},
	}
}

// notifyCommand handles sending safety notification emails
func notifyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "notify",
		Usage: "Send a safety notification email",
		Arguments: []cli.Argument{
			&cli.StringArg{
				Name: "kind",
			},
		},
		Action: r.Notify,
	}
}

// reportCommand handles machine checkpoint reports
func reportCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "report",
		Usage: "Quality check reports",
		Commands: []*cli.Command{
			{
				Name:  "machine",
				Usage: "Show machine checkpoint statuses",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "Output format (text, csv or md)",
						Value:   "text",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output file path",
					},
				},
				Action: r.ReportMachine,
			},
		},
	}
}

// setupCommand handles setup operations for database and configuration.
func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Setup and configuration commands",
		Commands: []*cli.Command{
			{
				Name:  "database",
				Usage: "Initialize database and run migrations",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "config",
						Aliases: []string{"c"},
						Usage:   "Path to configuration file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupDatabase,
			},
			{
				Name:  "config",
				Usage: "Write an example configuration file",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output path for the config file",
						Value:   "config.toml",
					},
				},
				Action: r.SetupConfig,
			},
		},
	}
}

// tuiCommand returns the top-level TUI command for interactive checks.
func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"interactive", "ui"},
		Usage:   "Launch interactive TUI for PPE checks",
		Action:  r.TUI,
	}
}
