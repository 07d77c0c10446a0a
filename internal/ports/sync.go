package ports

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/strutils"
	"github.com/Amund211/gacharecord/internal/worker"
)

type syncRequest struct {
	PlayerID string `json:"playerId"`
	UseCache bool   `json:"useCache"`
}

// MakePostSyncHandler queues a sync with the worker. Progress and results are read from the
// players and statistics endpoints.
func MakePostSyncHandler(
	session *worker.Session,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	// Syncs are expensive, don't let a misbehaving display spam them
	middleware, _ := buildMiddleware("sync", rootLogger, sentryMiddleware, 1, 10)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		logger := logging.FromContext(ctx)

		var request syncRequest
		body, err := io.ReadAll(io.LimitReader(r.Body, 4096))
		if err != nil {
			http.Error(w, "Failed to read request body", http.StatusBadRequest)
			return
		}
		if len(body) > 0 {
			if err := json.Unmarshal(body, &request); err != nil {
				logger.InfoContext(ctx, "Invalid sync request", "error", err.Error())
				http.Error(w, "Invalid request body", http.StatusBadRequest)
				return
			}
		}

		if request.PlayerID != "" {
			playerID, err := strutils.NormalizePlayerID(request.PlayerID)
			if err != nil {
				logger.InfoContext(ctx, "Invalid player id in sync request", "error", err.Error())
				http.Error(w, "Invalid player id", http.StatusBadRequest)
				return
			}
			request.PlayerID = playerID
		}

		if !session.Send(worker.SyncCommand{PlayerID: request.PlayerID, UseCache: request.UseCache}) {
			logger.WarnContext(ctx, "Command queue is full")
			http.Error(w, "Busy, try again later", http.StatusServiceUnavailable)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusAccepted)
		if _, err := w.Write([]byte(`{"queued":true}`)); err != nil {
			logger.ErrorContext(ctx, "Failed to write response", "error", err)
		}
	}

	return middleware(handler)
}
