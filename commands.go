package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/ports"
	"github.com/Amund211/gacharecord/internal/strutils"
	"github.com/Amund211/gacharecord/internal/worker"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

var playerFlag = &cli.StringFlag{
	Name:  "player",
	Usage: "player id, defaults to the player the game logs point to",
}

func playerFromFlag(cCtx *cli.Context) (string, error) {
	rawPlayerID := cCtx.String("player")
	if rawPlayerID == "" {
		return "", nil
	}
	playerID, err := strutils.NormalizePlayerID(rawPlayerID)
	if err != nil {
		return "", cli.Exit(fmt.Sprintf("invalid player id: %s", err.Error()), 2)
	}
	return playerID, nil
}

// runCommand wires the runtime and runs a single command in the terminal foreground
func runCommand(cCtx *cli.Context, command worker.Command, f *foreground) error {
	ctx, cancel := context.WithCancel(cCtx.Context)
	defer cancel()

	r, err := buildRuntime(ctx, cCtx)
	if err != nil {
		return err
	}
	defer r.Close()

	return runForeground(ctx, r.session, command, f)
}

func syncCommand() *cli.Command {
	return &cli.Command{
		Name:  "sync",
		Usage: "fetch new pulls from the record service and show statistics",
		Flags: []cli.Flag{playerFlag},
		Action: func(cCtx *cli.Context) error {
			playerID, err := playerFromFlag(cCtx)
			if err != nil {
				return err
			}
			return runCommand(cCtx, worker.SyncCommand{PlayerID: playerID}, &foreground{out: os.Stdout})
		},
	}
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "show saved statistics, syncing only when nothing is saved",
		Flags: []cli.Flag{playerFlag},
		Action: func(cCtx *cli.Context) error {
			playerID, err := playerFromFlag(cCtx)
			if err != nil {
				return err
			}
			return runCommand(cCtx, worker.SyncCommand{PlayerID: playerID, UseCache: true}, &foreground{out: os.Stdout})
		},
	}
}

func playersCommand() *cli.Command {
	return &cli.Command{
		Name:  "players",
		Usage: "list players with saved history",
		Action: func(cCtx *cli.Context) error {
			return runCommand(cCtx, worker.ListPlayersCommand{}, &foreground{out: os.Stdout, doneOnPlayers: true})
		},
	}
}

func serveCommand() *cli.Command {
	return &cli.Command{
		Name:  "serve",
		Usage: "serve statistics to a display on the loopback interface",
		Action: func(cCtx *cli.Context) error {
			ctx, cancel := context.WithCancel(cCtx.Context)
			defer cancel()
			logger := logging.FromContext(ctx)

			r, err := buildRuntime(ctx, cCtx)
			if err != nil {
				return err
			}
			defer r.Close()

			store, stopStore := ports.NewSnapshotStore(time.Now)
			defer stopStore()
			go ports.RunEventPump(ctx, r.session, store)

			mux := http.NewServeMux()
			mux.HandleFunc(
				"GET /v1/statistics/{playerID}",
				ports.MakeGetStatisticsHandler(store, logger.With("port", "statistics"), r.sentryMiddleware),
			)
			mux.HandleFunc(
				"GET /v1/players",
				ports.MakeGetPlayersHandler(store, logger.With("port", "players"), r.sentryMiddleware),
			)
			mux.HandleFunc(
				"POST /v1/sync",
				ports.MakePostSyncHandler(r.session, logger.With("port", "sync"), r.sentryMiddleware),
			)

			server := &http.Server{
				Addr:              net.JoinHostPort("127.0.0.1", strconv.Itoa(r.conf.Port())),
				Handler:           otelhttp.NewHandler(mux, serviceName),
				ReadHeaderTimeout: 5 * time.Second,
				BaseContext: func(net.Listener) context.Context {
					return ctx
				},
			}

			// Same as the first screen of a display: saved data right away, live data otherwise
			r.session.Send(worker.SyncCommand{UseCache: true})

			go func() {
				<-ctx.Done()
				shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
				defer cancel()
				if err := server.Shutdown(shutdownCtx); err != nil {
					logger.WarnContext(ctx, "Failed to shut down server", "error", err.Error())
				}
			}()

			logger.InfoContext(ctx, "Init complete", "addr", server.Addr)
			err = server.ListenAndServe()
			if errors.Is(err, http.ErrServerClosed) {
				logger.InfoContext(ctx, "Server shutdown")
				return nil
			}
			return fmt.Errorf("server error: %w", err)
		},
	}
}
