package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/google/uuid"
	"github.com/urfave/cli/v2"
	_ "golang.org/x/crypto/x509roots/fallback"
)

func main() {
	instanceID := uuid.New().String()
	// stdout is reserved for command output
	logger := slog.New(
		logging.NewTraceLogHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelWarn})),
	).With("instanceID", instanceID)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = logging.AddToContext(ctx, logger)

	cliApp := &cli.App{
		Name:  "gacharecord",
		Usage: "Keep a local copy of your convene history and show pity statistics",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "data-dir",
				Usage: "directory holding the per-player history, overrides GACHARECORD_DATA_DIR",
			},
			&cli.StringSliceFlag{
				Name:  "log-path",
				Usage: "game log file or directory to scan for the record page URL, may be repeated",
			},
			&cli.BoolFlag{
				Name:  "verbose",
				Usage: "log at info level",
			},
		},
		Before: func(cCtx *cli.Context) error {
			if cCtx.Bool("verbose") {
				verboseLogger := slog.New(
					logging.NewTraceLogHandler(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo})),
				).With("instanceID", instanceID)
				cCtx.Context = logging.AddToContext(cCtx.Context, verboseLogger)
			}
			return nil
		},
		Commands: []*cli.Command{
			syncCommand(),
			statsCommand(),
			playersCommand(),
			serveCommand(),
		},
	}

	if err := cliApp.RunContext(ctx, os.Args); err != nil {
		logging.FromContext(ctx).Error("Command failed", "error", err.Error())
		os.Exit(1)
	}
}
