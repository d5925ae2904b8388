package main

import (
	"context"
	"fmt"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v3"

	"github.com/okra-platform/apigen/internal/commands"
)

var (
	// Build information. Populated at build-time via -ldflags flag.
	version = "dev"
	commit  = "HEAD"
	date    = "now"
)

func build() string {
	short := commit
	if len(commit) > 7 {
		short = commit[:7]
	}

	return fmt.Sprintf("%s (%s) %s", version, short, date)
}

func configFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "config",
		Aliases: []string{"c"},
		Usage:   "config file (default: apigen.yaml discovered from the working directory)",
	}
}

func sourceFlag() cli.Flag {
	return &cli.StringFlag{
		Name:  "source",
		Usage: "description model file or URL, overriding the config",
	}
}

func main() {
	ctrl := &commands.Controller{
		Flags: &commands.Flags{},
	}

	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})

	app := &cli.Command{
		Name:    "apigen",
		Usage:   "Generate typed TypeScript API clients from API description models",
		Version: build(),
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "log-level",
				Usage:       "log level (debug, info, warn, error, fatal, panic)",
				Sources:     cli.EnvVars("APIGEN_LOG_LEVEL"),
				Value:       "info",
				Destination: &ctrl.Flags.LogLevel,
			},
		},
		Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
			level, err := zerolog.ParseLevel(c.String("log-level"))
			if err != nil {
				return ctx, errors.Wrap(err, "failed to parse log level")
			}

			log.Logger = log.Level(level)
			ctrl.Logger = log.Logger

			return ctx, nil
		},
		Commands: []*cli.Command{
			{
				Name:  "generate",
				Usage: "Generate type and service files",
				Flags: []cli.Flag{
					configFlag(),
					sourceFlag(),
					&cli.BoolFlag{
						Name:  "dry-run",
						Usage: "list the files that would be generated without writing them",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Generate(ctx, commands.GenerateOptions{
						ConfigPath: c.String("config"),
						Source:     c.String("source"),
						DryRun:     c.Bool("dry-run"),
					})
				},
			},
			{
				Name:  "watch",
				Usage: "Regenerate whenever the model, config or template changes",
				Flags: []cli.Flag{configFlag(), sourceFlag()},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Watch(ctx, commands.WatchOptions{
						ConfigPath: c.String("config"),
						Source:     c.String("source"),
					})
				},
			},
			{
				Name:  "init",
				Usage: "Create an apigen.yaml in the working directory",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "force",
						Usage: "overwrite an existing config file",
					},
				},
				Action: func(ctx context.Context, c *cli.Command) error {
					return ctrl.Init(ctx, c.Bool("force"))
				},
			},
		},
	}

	ctx := context.Background()

	if err := app.Run(ctx, os.Args); err != nil {
		event := log.Error().Err(err)
		if hint := errors.FlattenHints(err); hint != "" {
			event = event.Str("hint", hint)
		}
		event.Msg("failed to run apigen")
		os.Exit(1)
	}
}
