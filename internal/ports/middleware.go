package ports

import (
	"log/slog"
	"net/http"

	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/ratelimiting"
)

func NewRateLimitMiddleware(rateLimiter ratelimiting.RequestRateLimiter, onLimitExceeded http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if !rateLimiter.Consume(r) {
				onLimitExceeded(w, r)
				return
			}

			next(w, r)
		}
	}
}

func ComposeMiddlewares(middlewares ...func(http.HandlerFunc) http.HandlerFunc) func(http.HandlerFunc) http.HandlerFunc {
	if len(middlewares) == 1 {
		return middlewares[0]
	}
	first := middlewares[0]
	rest := ComposeMiddlewares(middlewares[1:]...)
	return func(h http.HandlerFunc) http.HandlerFunc {
		return first(rest(h))
	}
}

func onLimitExceeded(w http.ResponseWriter, r *http.Request) {
	statusCode := http.StatusTooManyRequests
	logging.FromContext(r.Context()).InfoContext(r.Context(), "Rate limit exceeded", "statusCode", statusCode, "key", ratelimiting.IPKeyFunc(r))
	http.Error(w, "Rate limit exceeded", statusCode)
}

// Middlewares shared by every endpoint. The returned function stops the rate limiter cleanup.
func buildMiddleware(
	name string,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
	refillPerSecond ratelimiting.RefillPerSecond,
	burstSize ratelimiting.BurstSize,
) (func(http.HandlerFunc) http.HandlerFunc, func()) {
	ipLimiter, stop := ratelimiting.NewTokenBucketRateLimiter(refillPerSecond, burstSize)
	ipRateLimiter := ratelimiting.NewRequestBasedRateLimiter(ipLimiter, ratelimiting.IPKeyFunc)

	return ComposeMiddlewares(
		buildMetricsMiddleware(name),
		logging.NewRequestLoggerMiddleware(rootLogger),
		sentryMiddleware,
		NewRateLimitMiddleware(ipRateLimiter, onLimitExceeded),
	), stop
}
