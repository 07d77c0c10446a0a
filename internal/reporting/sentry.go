package reporting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"regexp"
	"time"

	"github.com/Amund211/gacharecord/internal/config"
	"github.com/Amund211/gacharecord/internal/constants"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/getsentry/sentry-go"
	sentryhttp "github.com/getsentry/sentry-go/http"
)

var queryValueRx = regexp.MustCompile(`(player_id|record_id|resources_id|svr_id|playerId|recordId|serverId|cardPoolId)([=":]+)[0-9a-zA-Z\-]+`)
var playerDirRx = regexp.MustCompile(`([/\\])[0-9]{6,20}([/\\])`)
var hostRx = regexp.MustCompile(`\[:{0,2}([0-9a-f]{0,4}:?){1,8}\]:\d+`)

// Strip session specific identifiers so equal errors are grouped together
func sanitizeError(err string) string {
	err = queryValueRx.ReplaceAllString(err, "$1$2<id>")
	err = playerDirRx.ReplaceAllString(err, "$1<player>$2")
	err = hostRx.ReplaceAllString(err, "<host>")
	return err
}

func Report(ctx context.Context, err error, extras ...map[string]string) {
	hub := sentry.GetHubFromContext(ctx)
	logger := logging.FromContext(ctx)
	if hub == nil {
		logger.WarnContext(ctx, "Failed to get Sentry hub from context", "error", err, "extras", extras)
		return
	}

	logger.ErrorContext(
		ctx,
		"Reporting error to Sentry",
		slog.Any("error", err),
		slog.Any("extras", extras),
	)

	hub.WithScope(func(scope *sentry.Scope) {
		meta := MetaFromContext(ctx)
		scope.SetTags(meta.tags)
		for key, value := range meta.extras {
			scope.SetExtra(key, value)
		}
		if meta.playerID != "" {
			scope.SetUser(sentry.User{
				ID: meta.playerID,
			})
		}
		if !meta.startedAt.IsZero() {
			scope.SetExtra("secondsSinceStart", time.Since(meta.startedAt).Seconds())
		}

		for _, extra := range extras {
			for key, value := range extra {
				scope.SetExtra(key, value)
			}
		}

		if err == nil {
			err = errors.New("No error provided")
		}

		scope.SetFingerprint([]string{"{{ default }}", sanitizeError(err.Error())})
		hub.CaptureException(err)
	})
}

// WithHub attaches a clone of the current hub to the context.
//
// Work started outside of an http request (the sync worker, the CLI) must call this to get reports sent.
func WithHub(ctx context.Context) context.Context {
	if sentry.HasHubOnContext(ctx) {
		return ctx
	}
	return sentry.SetHubOnContext(ctx, sentry.CurrentHub().Clone())
}

func addMetaMiddleware(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		userAgent := r.UserAgent()
		if userAgent == "" {
			userAgent = "<missing>"
		}

		ctx = AddTagsToContext(ctx,
			map[string]string{
				"userAgent":  userAgent,
				"methodPath": fmt.Sprintf("%s %s", r.Method, r.Pattern),
			},
		)

		ctx = SetStartedAtInContext(ctx, time.Now())

		next(w, r.WithContext(ctx))
	}
}

func InitSentry(sentryDSN string, environment string) (func(), error) {
	err := sentry.Init(sentry.ClientOptions{
		Dsn:              sentryDSN,
		Release:          constants.VERSION,
		Environment:      environment,
		EnableTracing:    true,
		TracesSampleRate: 1.0 / 100.0,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to init sentry: %w", err)
	}

	flush := func() {
		sentry.Flush(5 * time.Second)
	}

	return flush, nil
}

func NewSentryMiddleware() func(http.HandlerFunc) http.HandlerFunc {
	sentryHandler := sentryhttp.New(sentryhttp.Options{})

	// Wrap sentry middleware in a http.HandlerFunc
	return func(next http.HandlerFunc) http.HandlerFunc {
		withAddTags := addMetaMiddleware(next)
		return func(w http.ResponseWriter, r *http.Request) {
			sentryHandler.HandleFunc(withAddTags).ServeHTTP(w, r)
		}
	}
}

// Sentry is optional for a locally run tool, so a missing DSN yields a no-op setup
func NewSentryOrMock(conf config.Config) (func(http.HandlerFunc) http.HandlerFunc, func(), error) {
	if conf.SentryDSN() == "" {
		middleware := func(next http.HandlerFunc) http.HandlerFunc {
			return next
		}
		return middleware, func() {}, nil
	}

	environment := "production"
	if conf.IsDevelopment() {
		environment = "development"
	}

	flush, err := InitSentry(conf.SentryDSN(), environment)
	if err != nil {
		return nil, nil, err
	}

	return NewSentryMiddleware(), flush, nil
}
