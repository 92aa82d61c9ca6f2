// submodule cmd contains command definitions
package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

func jsonFlags() []cli.Flag {
	return []cli.Flag{
		&cli.BoolFlag{
			Name:  "json",
			Usage: "Output raw JSON",
		},
		&cli.BoolFlag{
			Name:  "pretty",
			Usage: "Pretty-print output",
		},
	}
}

func setupCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "setup",
		Usage: "Create the configuration file and database",
		Commands: []*cli.Command{
			{
				Name:  "config",
				Usage: "Write config.toml from the built-in template",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "Overwrite an existing file",
					},
				},
				Action: r.SetupConfig,
			},
			{
				Name:   "database",
				Usage:  "Initialize the database and run migrations",
				Action: r.SetupDatabase,
			},
			{
				Name:   "rollback",
				Usage:  "Roll back the most recent migration",
				Action: r.SetupRollback,
			},
		},
	}
}

func authCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "auth",
		Usage: "Sign in to Spotify",
		Flags: []cli.Flag{
			&cli.DurationFlag{
				Name:  "timeout",
				Usage: "How long to wait for the browser callback",
				Value: 2 * time.Minute,
			},
			&cli.BoolFlag{
				Name:  "no-browser",
				Usage: "Print the authorization URL instead of opening it",
			},
		},
		Action: r.AuthLogin,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show the signed-in account",
				Action: r.AuthStatus,
			},
		},
	}
}

func tuiCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "tui",
		Aliases: []string{"ui"},
		Usage:   "Open the interactive dashboard",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "location",
				Aliases: []string{"l"},
				Usage:   "Start at a spotdash:// link, e.g. spotdash://dashboard?q=daft+punk",
			},
			&cli.BoolFlag{
				Name:  "fresh",
				Usage: "Ignore the location saved by the last session",
			},
		},
		Action: r.TUI,
	}
}

func searchCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "search",
		Usage:     "Search the Spotify catalog",
		ArgsUsage: "<query>",
		Flags: append([]cli.Flag{
			&cli.StringSliceFlag{
				Name:    "type",
				Aliases: []string{"t"},
				Usage:   "Result types: track, artist, album, playlist",
				Value:   []string{"track", "artist", "album", "playlist"},
			},
			&cli.IntFlag{
				Name:  "limit",
				Usage: "Results per type",
				Value: 5,
			},
		}, jsonFlags()...),
		Action: r.Search,
	}
}

func askCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "ask",
		Usage:     "Ask the assistant for tracks or artists and match them to the catalog",
		ArgsUsage: "<prompt>",
		Flags:     jsonFlags(),
		Action:    r.Ask,
	}
}

func playlistCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:    "playlist",
		Aliases: []string{"pl"},
		Usage:   "Inspect and edit playlists",
		Commands: []*cli.Command{
			{
				Name:   "list",
				Usage:  "List your playlists",
				Flags:  jsonFlags(),
				Action: r.PlaylistList,
			},
			{
				Name:      "show",
				Usage:     "Show a playlist's tracks",
				ArgsUsage: "<playlist-id>",
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "filter",
						Usage: "Only show tracks whose name, artist or album match",
					},
				}, jsonFlags()...),
				Action: r.PlaylistShow,
			},
			{
				Name:      "remove",
				Usage:     "Remove tracks from a playlist you own",
				ArgsUsage: "<playlist-id> <track-uri>...",
				Action:    r.PlaylistRemove,
			},
			{
				Name:      "add",
				Usage:     "Add tracks to a playlist",
				ArgsUsage: "<playlist-id> <track-uri>...",
				Action:    r.PlaylistAdd,
			},
			{
				Name:      "export",
				Usage:     "Export playlists to files",
				ArgsUsage: "<playlist-id>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "format",
						Aliases: []string{"f"},
						Usage:   "json, csv, markdown or txt",
						Value:   "json",
					},
					&cli.StringFlag{
						Name:    "output",
						Aliases: []string{"o"},
						Usage:   "Output directory",
					},
					&cli.IntFlag{
						Name:  "workers",
						Usage: "Concurrent writers",
						Value: 5,
					},
					&cli.BoolFlag{
						Name:  "covers",
						Usage: "Download cover art for markdown exports",
					},
				},
				Action: r.PlaylistExport,
			},
			{
				Name:      "log",
				Usage:     "Show recent add/remove operations",
				ArgsUsage: "[playlist-id]",
				Flags: append([]cli.Flag{
					&cli.IntFlag{
						Name:  "limit",
						Usage: "Number of entries",
						Value: 20,
					},
				}, jsonFlags()...),
				Action: r.PlaylistLog,
			},
		},
	}
}

func playCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:      "play",
		Usage:     "Play a track, album, artist or playlist, or resume with no argument",
		ArgsUsage: "[spotify-uri]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "device",
				Usage: "Device ID to play on",
			},
		},
		Action: r.Play,
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "Show what is playing",
				Flags:  jsonFlags(),
				Action: r.PlaybackStatus,
			},
			{
				Name:   "pause",
				Usage:  "Pause playback",
				Action: r.Pause,
			},
			{
				Name:   "next",
				Usage:  "Skip to the next track",
				Action: r.Next,
			},
			{
				Name:   "previous",
				Usage:  "Go back to the previous track",
				Action: r.Previous,
			},
		},
	}
}

func devicesCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:   "devices",
		Usage:  "List Spotify Connect devices",
		Flags:  jsonFlags(),
		Action: r.Devices,
		Commands: []*cli.Command{
			{
				Name:      "transfer",
				Usage:     "Move playback to a device",
				ArgsUsage: "<device-id>",
				Action:    r.Transfer,
			},
		},
	}
}

func locationCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "location",
		Usage: "Print the dashboard link saved by the last session",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:  "clear",
				Usage: "Forget the saved location",
			},
		},
		Action: r.Location,
	}
}

func cacheCommand(r *Runner) *cli.Command {
	return &cli.Command{
		Name:  "cache",
		Usage: "Manage the assist resolution cache",
		Commands: []*cli.Command{
			{
				Name:   "stats",
				Usage:  "Show how many resolutions are cached",
				Action: r.CacheStats,
			},
			{
				Name:  "prune",
				Usage: "Drop cached resolutions older than a cutoff",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "older-than",
						Usage: "Age cutoff",
						Value: 30 * 24 * time.Hour,
					},
				},
				Action: r.CachePrune,
			},
		},
	}
}
