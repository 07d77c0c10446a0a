package ports

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
)

type statusResponse struct {
	Text      string `json:"text"`
	Success   bool   `json:"success"`
	UpdatedAt string `json:"updatedAt,omitempty"`
}

type playersResponse struct {
	PlayerIDs []string       `json:"playerIds"`
	Status    statusResponse `json:"status"`
}

func MakeGetPlayersHandler(
	store *SnapshotStore,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware, _ := buildMiddleware("players", rootLogger, sentryMiddleware, 20, 200)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		status := store.Status()
		response := playersResponse{
			PlayerIDs: store.PlayerIDs(),
			Status: statusResponse{
				Text:    status.Text,
				Success: status.Success,
			},
		}
		if !status.UpdatedAt.IsZero() {
			response.Status.UpdatedAt = status.UpdatedAt.UTC().Format(time.RFC3339)
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			err := fmt.Errorf("failed to marshal players response: %w", err)
			logging.FromContext(ctx).ErrorContext(ctx, err.Error())
			reporting.Report(ctx, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write players response: %w", err))
		}
	}

	return middleware(handler)
}
