package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/credentialcache"
	"github.com/Amund211/gacharecord/internal/adapters/database"
	"github.com/Amund211/gacharecord/internal/adapters/historyarchive"
	"github.com/Amund211/gacharecord/internal/adapters/historyrepository"
	"github.com/Amund211/gacharecord/internal/adapters/logsource"
	"github.com/Amund211/gacharecord/internal/adapters/recordprovider"
	"github.com/Amund211/gacharecord/internal/adapters/statscache"
	"github.com/Amund211/gacharecord/internal/app"
	"github.com/Amund211/gacharecord/internal/config"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/Amund211/gacharecord/internal/telemetry"
	"github.com/Amund211/gacharecord/internal/worker"
	"github.com/urfave/cli/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const serviceName = "gacharecord"

const commandQueueSize = 16

type runtime struct {
	conf             config.Config
	session          *worker.Session
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc

	closers []func()
}

func (r *runtime) Close() {
	for i := len(r.closers) - 1; i >= 0; i-- {
		r.closers[i]()
	}
}

// buildRuntime wires every adapter and starts the worker. The worker stops when ctx is cancelled.
func buildRuntime(ctx context.Context, cCtx *cli.Context) (*runtime, error) {
	logger := logging.FromContext(ctx)

	conf, err := config.ConfigFromEnv()
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	conf = conf.WithDataDir(cCtx.String("data-dir")).WithLogPaths(cCtx.StringSlice("log-path"))
	logger.InfoContext(ctx, "Loaded config", "config", conf.NonSensitiveString())

	r := &runtime{conf: conf}

	sentryMiddleware, flush, err := reporting.NewSentryOrMock(conf)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sentry: %w", err)
	}
	r.sentryMiddleware = sentryMiddleware
	r.closers = append(r.closers, flush)

	shutdownTelemetry, err := telemetry.SetupOTelSDKOrNoop(ctx, conf, serviceName)
	if err != nil {
		r.Close()
		return nil, fmt.Errorf("failed to set up telemetry: %w", err)
	}
	r.closers = append(r.closers, func() {
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdownTelemetry(shutdownCtx); err != nil {
			logger.WarnContext(ctx, "Failed to shut down telemetry", "error", err.Error())
		}
	})

	httpClient := &http.Client{
		Timeout:   15 * time.Second,
		Transport: otelhttp.NewTransport(http.DefaultTransport),
	}
	provider, err := recordprovider.NewRecordProviderOrMock(conf, httpClient, time.Now, time.After)
	if err != nil {
		r.Close()
		return nil, err
	}

	archive, closeArchive, err := buildArchive(ctx, conf)
	if err != nil {
		r.Close()
		return nil, err
	}
	r.closers = append(r.closers, closeArchive)

	credentials := credentialcache.NewFileCache(conf.DataDir())
	repo := historyrepository.NewFileHistoryRepository(conf.DataDir(), time.Now)
	statisticsCache := statscache.NewFileStatisticsCache(conf.DataDir())
	logSource := logsource.NewFileLogSource(conf.LogPaths())

	resolve := app.BuildResolveDescriptor(logSource, credentials)
	syncPlayer := app.BuildSyncPlayer(resolve, provider, credentials, repo, archive, statisticsCache, time.Now)
	loadCachedStatistics := app.BuildLoadCachedStatistics(statisticsCache, repo)
	listPlayers := app.BuildListPlayers(repo)

	r.session = worker.NewSession(commandQueueSize)
	w := worker.New(r.session, syncPlayer, loadCachedStatistics, listPlayers, time.Now, time.After)
	go w.Run(logging.AddMetaToContext(ctx, slog.String("component", "worker")))

	return r, nil
}

// The archive is optional, the local files stay authoritative
func buildArchive(ctx context.Context, conf config.Config) (historyarchive.HistoryArchive, func(), error) {
	logger := logging.FromContext(ctx)

	if conf.DatabaseURL() == "" {
		return historyarchive.NewNoopArchive(), func() {}, nil
	}

	db, err := database.NewPostgresDatabase(conf.DatabaseURL())
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to history archive: %w", err)
	}

	schemaName := database.GetSchemaName(!conf.IsProduction())
	err = database.NewDatabaseMigrator(db, logger.With("component", "migrator")).Migrate(ctx, schemaName)
	if err != nil {
		return nil, nil, errors.Join(fmt.Errorf("failed to migrate history archive: %w", err), db.Close())
	}

	logger.InfoContext(ctx, "Initialized history archive", "schema", schemaName)
	closeDB := func() {
		if err := db.Close(); err != nil {
			logger.WarnContext(ctx, "Failed to close history archive", "error", err.Error())
		}
	}
	return historyarchive.NewPostgres(db, schemaName), closeDB, nil
}
