package main

import (
	"context"
	"os"
	"time"

	"github.com/leadkit/blockflow/pkg/log"
	cli "github.com/urfave/cli/v3"
)

const defaultPort = 9081

func main() {
	logger := log.WithModule("api")

	cmd := &cli.Command{
		Name:                  "blockflow-api",
		Usage:                 "Edit, validate, and dry-run automation flows",
		EnableShellCompletion: true,
		Flags: []cli.Flag{
			&cli.IntFlag{
				Name:    "port",
				Aliases: []string{"p"},
				Usage:   "Port to run the API server on",
				Value:   defaultPort,
				Sources: cli.EnvVars("PORT"),
			},
			&cli.StringFlag{
				Name:    "data-dir",
				Usage:   "Directory (or file:// URL) where flows are persisted",
				Value:   "./data",
				Sources: cli.EnvVars("DATA_DIR"),
			},
			&cli.DurationFlag{
				Name:    "block-delay",
				Usage:   "Pause between a block's pending and terminal outcome during a dry run",
				Value:   400 * time.Millisecond,
				Sources: cli.EnvVars("BLOCK_DELAY"),
			},
			&cli.BoolFlag{
				Name:    "tracing",
				Usage:   "Export OTLP traces for simulations",
				Sources: cli.EnvVars("TRACING"),
			},
			&cli.StringFlag{
				Name:    "log-level",
				Usage:   "Log level (debug, info, warn, error)",
				Value:   "info",
				Sources: cli.EnvVars("LOG_LEVEL"),
			},
		},
		Action: func(ctx context.Context, command *cli.Command) error {
			log.Setup(command.String("log-level"))

			logger.InfoContext(ctx, "Initializing blockflow API")

			api, err := NewAPI(ctx, logger, Config{
				DataDir:    command.String("data-dir"),
				BlockDelay: command.Duration("block-delay"),
				Tracing:    command.Bool("tracing"),
			})
			if err != nil {
				return err
			}

			defer func() {
				if err := api.Close(ctx); err != nil {
					logger.ErrorContext(ctx, "Failed to shut down cleanly", "error", err)
				}
			}()

			return api.Start(command.Int("port"))
		},
	}

	err := cmd.Run(context.Background(), os.Args)
	if err != nil {
		panic(err)
	}
}
