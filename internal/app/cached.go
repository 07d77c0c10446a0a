package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/historyrepository"
	"github.com/Amund211/gacharecord/internal/adapters/statscache"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/strutils"
)

type CachedStatistics struct {
	Statistics domain.PityStatistics
	// Zero if the statistics were computed from stored history
	SyncedAt time.Time
}

// LoadCachedStatistics returns statistics without contacting the record service
//
// Raises domain.ErrNoCacheAvailable if neither cached statistics nor stored history exist
type LoadCachedStatistics func(ctx context.Context, playerID string) (CachedStatistics, error)

func BuildLoadCachedStatistics(statsCache statscache.StatisticsCache, repo historyrepository.HistoryRepository) LoadCachedStatistics {
	return func(ctx context.Context, playerID string) (CachedStatistics, error) {
		if !strutils.PlayerIDIsNormalized(playerID) {
			return CachedStatistics{}, fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
		}

		entry, err := statsCache.Get(ctx, playerID)
		if err == nil {
			return CachedStatistics{Statistics: entry.Statistics, SyncedAt: entry.SyncedAt}, nil
		} else if !errors.Is(err, domain.ErrNoCacheAvailable) {
			logging.FromContext(ctx).WarnContext(ctx, "Failed to read statistics cache", "error", err.Error())
		}

		history, err := repo.Load(ctx, playerID)
		if err != nil {
			// NOTE: HistoryRepository implementations handle their own error reporting
			return CachedStatistics{}, fmt.Errorf("failed to load history: %w", err)
		}

		if history.TotalPulls() == 0 {
			return CachedStatistics{}, fmt.Errorf("%w: nothing stored for player", domain.ErrNoCacheAvailable)
		}

		return CachedStatistics{Statistics: ComputeStatistics(history)}, nil
	}
}

type ListPlayers func(ctx context.Context) ([]string, error)

func BuildListPlayers(repo historyrepository.HistoryRepository) ListPlayers {
	return func(ctx context.Context) ([]string, error) {
		playerIDs, err := repo.ListPlayerIDs(ctx)
		if err != nil {
			// NOTE: HistoryRepository implementations handle their own error reporting
			return nil, fmt.Errorf("failed to list players: %w", err)
		}
		return playerIDs, nil
	}
}
