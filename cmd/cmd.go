// submodule cmd contains command definitions
package main

import "github.com/urfave/cli/v3"

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:    "config",
			Aliases: []string{"c"},
			Usage:   "Path to configuration file",
			Value:   "config.toml",
		},
		&cli.BoolFlag{
			Name:  "verbose",
			Usage: "Enable debug logging and per-step progress",
		},
	}
}

// syncCommand scans directories and reconciles the Spotify library with the artists found.
func syncCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "sync",
		Usage:     "Follow every tagged artist and save their missing albums",
		ArgsUsage: "DIR...",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "playlists",
				Usage: "Also collect artists from your own playlists",
			},
			&cli.StringFlag{
				Name:  "user",
				Usage: "Read the public playlists of this user instead of your own (with --playlists)",
			},
			&cli.BoolFlag{
				Name:  "dry-run",
				Usage: "Resolve artists and report missing albums without changing the library",
			},
			&cli.BoolFlag{
				Name:  "history",
				Usage: "Record the run and its per-artist outcomes in the database",
			},
		},
		Action: r.Sync,
	}
}

// scanCommand lists the artists found in local tags without contacting Spotify.
func scanCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "scan",
		Usage:     "List the normalized artists found in local audio tags",
		ArgsUsage: "DIR...",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format: text, json, csv or markdown",
				Value:   "text",
			},
			&cli.StringFlag{
				Name:    "output",
				Aliases: []string{"o"},
				Usage:   "Write to a file instead of stdout (format inferred from the extension)",
			},
		},
		Action: r.Scan,
	}
}

// authCommand runs the OAuth2 authorization-code flow and stores the token.
func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Authorize tagsync with your Spotify account",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "playlists",
				Usage: "Also request read access to private and collaborative playlists",
			},
		},
		Action: r.Auth,
	}
}

// historyCommand shows recorded sync runs.
func historyCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "history",
		Usage: "Show recorded sync runs",
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Maximum number of runs to list",
				Value: 20,
			},
			&cli.StringFlag{
				Name:  "run",
				Usage: "Show the artists of one run (sequence number or id)",
			},
			&cli.StringFlag{
				Name:    "format",
				Aliases: []string{"f"},
				Usage:   "Output format for --run: text, json, csv or markdown",
				Value:   "text",
			},
		},
		Action: r.History,
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "setup",
		Usage:  "Create the config file and initialize the history database",
		Action: r.Setup,
	}
}
