// Package main is the entry point for the fleet dispatch log server.
// Its sole responsibility is wiring dependencies together and starting the
// server or the export command. No business logic belongs here.
package main

import (
	"context"
	"log/slog"
	"os"

	_ "github.com/joho/godotenv/autoload"
	"github.com/urfave/cli/v3"
)

func main() {
	cmd := &cli.Command{
		Name:   "fleetlog",
		Usage:  "Record vehicles leaving and returning to the depot",
		Action: serve,
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    "prompt",
				Usage:   "Ask for a storage directory on stdin when none is saved",
				Sources: cli.EnvVars("FLEETLOG_PROMPT"),
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "export",
				Usage:  "Print the stored trip log to stdout",
				Action: export,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:        "format",
						Aliases:     []string{"f"},
						Usage:       "Output format: csv or json",
						Value:       "csv",
						DefaultText: "csv",
					},
					&cli.StringFlag{
						Name:  "dir",
						Usage: "Storage directory to read (defaults to the saved storage path)",
					},
				},
			},
		},
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		slog.Error("application error", slog.String("error", err.Error()))
		os.Exit(1)
	}
}
