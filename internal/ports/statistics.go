package ports

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/Amund211/gacharecord/internal/strutils"
)

type topRarityHitResponse struct {
	Name         string `json:"name"`
	Count        int    `json:"count"`
	ResourceID   int    `json:"resourceId"`
	ResourceType string `json:"resourceType"`
}

type categoryStatisticsResponse struct {
	CardPoolType int                    `json:"cardPoolType"`
	Name         string                 `json:"name"`
	Total        int                    `json:"total"`
	FiveCount    int                    `json:"fiveCount"`
	FourCount    int                    `json:"fourCount"`
	ThreeCount   int                    `json:"threeCount"`
	PullCount    int                    `json:"pullCount"`
	Detail       []topRarityHitResponse `json:"detail"`
}

type statisticsResponse struct {
	PlayerID   string                       `json:"playerId"`
	FromCache  bool                         `json:"fromCache"`
	UpdatedAt  string                       `json:"updatedAt"`
	Statistics []categoryStatisticsResponse `json:"statistics"`
}

func snapshotToResponse(snapshot Snapshot) ([]byte, error) {
	categories := make([]domain.Category, 0, len(snapshot.Statistics))
	for category := range snapshot.Statistics {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	statistics := make([]categoryStatisticsResponse, 0, len(categories))
	for _, category := range categories {
		stats := snapshot.Statistics[category]

		detail := make([]topRarityHitResponse, 0, len(stats.Detail))
		for _, hit := range stats.Detail {
			detail = append(detail, topRarityHitResponse(hit))
		}

		statistics = append(statistics, categoryStatisticsResponse{
			CardPoolType: int(category),
			Name:         category.DisplayName(),
			Total:        stats.Total,
			FiveCount:    stats.FiveCount,
			FourCount:    stats.FourCount,
			ThreeCount:   stats.ThreeCount,
			PullCount:    stats.PullCount,
			Detail:       detail,
		})
	}

	data, err := json.Marshal(statisticsResponse{
		PlayerID:   snapshot.PlayerID,
		FromCache:  snapshot.FromCache,
		UpdatedAt:  snapshot.UpdatedAt.UTC().Format(time.RFC3339),
		Statistics: statistics,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal statistics response: %w", err)
	}
	return data, nil
}

func MakeGetStatisticsHandler(
	store *SnapshotStore,
	rootLogger *slog.Logger,
	sentryMiddleware func(http.HandlerFunc) http.HandlerFunc,
) http.HandlerFunc {
	middleware, _ := buildMiddleware("statistics", rootLogger, sentryMiddleware, 20, 200)

	handler := func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		rawPlayerID := r.PathValue("playerID")
		ctx = reporting.AddExtrasToContext(ctx, map[string]string{
			"rawPlayerID": rawPlayerID,
		})

		playerID, err := strutils.NormalizePlayerID(rawPlayerID)
		if err != nil {
			statusCode := http.StatusBadRequest
			logging.FromContext(ctx).InfoContext(ctx, "Invalid player id. Returning error", "statusCode", statusCode, "reason", err.Error())
			http.Error(w, "Invalid player id", statusCode)
			return
		}
		ctx = reporting.SetPlayerIDInContext(ctx, playerID)

		snapshot, ok := store.Snapshot(playerID)
		if !ok {
			http.Error(w, "No statistics for player, request a sync first", http.StatusNotFound)
			return
		}

		responseData, err := snapshotToResponse(snapshot)
		if err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Failed to convert snapshot to response", "error", err)
			reporting.Report(ctx, err)
			http.Error(w, "Internal server error", http.StatusInternalServerError)
			return
		}

		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err = w.Write(responseData); err != nil {
			logging.FromContext(ctx).ErrorContext(ctx, "Failed to write response", "error", err)
			reporting.Report(ctx, fmt.Errorf("failed to write statistics response: %w", err))
		}
	}

	return middleware(handler)
}
