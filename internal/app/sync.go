package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/credentialcache"
	"github.com/Amund211/gacharecord/internal/adapters/historyarchive"
	"github.com/Amund211/gacharecord/internal/adapters/historyrepository"
	"github.com/Amund211/gacharecord/internal/adapters/recordprovider"
	"github.com/Amund211/gacharecord/internal/adapters/statscache"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

type SyncResult struct {
	PlayerID   string
	Statistics domain.PityStatistics
	SyncedAt   time.Time
	// Pulls added by this sync
	NewPulls int
}

// SyncPlayer fetches every category for the player, merges and stores the result, and
// returns the fresh statistics. An empty playerID syncs whichever player the logs point to.
//
// progress is called with a short status text before each step and may be nil.
type SyncPlayer func(ctx context.Context, playerID string, progress func(text string)) (SyncResult, error)

func BuildSyncPlayer(
	resolve ResolveDescriptor,
	provider recordprovider.RecordProvider,
	credentials credentialcache.CredentialCache,
	repo historyrepository.HistoryRepository,
	archive historyarchive.HistoryArchive,
	statsCache statscache.StatisticsCache,
	nowFunc func() time.Time,
) SyncPlayer {
	tracer := otel.Tracer("gacharecord/app/sync")

	return func(ctx context.Context, playerID string, progress func(text string)) (SyncResult, error) {
		ctx, span := tracer.Start(ctx, "SyncPlayer")
		defer span.End()

		report := func(text string) {
			if progress != nil {
				progress(text)
			}
		}

		report("Looking for the record page URL")
		descriptor, err := resolve(ctx, playerID)
		if err != nil {
			// NOTE: ResolveDescriptor handles its own error reporting
			span.SetStatus(codes.Error, err.Error())
			return SyncResult{}, fmt.Errorf("failed to resolve credential: %w", err)
		}

		ctx = reporting.SetPlayerIDInContext(ctx, descriptor.PlayerID)
		ctx = logging.AddMetaToContext(ctx, slog.String("playerID", descriptor.PlayerID))
		logger := logging.FromContext(ctx)
		span.SetAttributes(attribute.String("region", descriptor.Region.String()))

		history, err := repo.Load(ctx, descriptor.PlayerID)
		if err != nil {
			// NOTE: HistoryRepository implementations handle their own error reporting
			span.SetStatus(codes.Error, err.Error())
			return SyncResult{}, fmt.Errorf("failed to load history: %w", err)
		}

		fresh := make(map[domain.Category][]domain.PullRecord, len(domain.AllCategories()))
		for _, category := range domain.AllCategories() {
			report(fmt.Sprintf("Fetching %s (%d/%d)", category.DisplayName(), int(category), int(domain.LastCategory)))

			records, err := provider.GetRecords(ctx, descriptor, category)
			if errors.Is(err, domain.ErrCredentialRejected) {
				logger.WarnContext(ctx, "Record service rejected the credential", "category", int(category))
				if err := credentials.Invalidate(ctx, descriptor.PlayerID); err != nil {
					// NOTE: CredentialCache implementations handle their own error reporting
					logger.ErrorContext(ctx, "Failed to invalidate rejected credential", "error", err.Error())
				}
				span.SetStatus(codes.Error, "credential rejected")
				return SyncResult{}, fmt.Errorf("failed to fetch %s: %w", category.DisplayName(), err)
			} else if err != nil {
				// NOTE: RecordProvider implementations handle their own error reporting
				span.SetStatus(codes.Error, err.Error())
				return SyncResult{}, fmt.Errorf("failed to fetch %s: %w", category.DisplayName(), err)
			}

			fresh[category] = records
		}

		merged := MergePlayerHistory(history, fresh)
		newPulls := merged.TotalPulls() - history.TotalPulls()
		span.SetAttributes(attribute.Int("new_pulls", newPulls))

		report("Saving")
		if err := repo.Save(ctx, descriptor.PlayerID, merged); err != nil {
			// NOTE: HistoryRepository implementations handle their own error reporting
			span.SetStatus(codes.Error, err.Error())
			return SyncResult{}, fmt.Errorf("failed to save history: %w", err)
		}
		syncedAt := nowFunc()

		// Ignore cancellation and archive anyway, the history is already saved
		archiveCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := archive.StoreSnapshot(archiveCtx, descriptor.PlayerID, syncedAt, merged); err != nil {
			// NOTE: HistoryArchive implementations handle their own error reporting
			logger.ErrorContext(ctx, "Failed to archive history", "error", err.Error())
		}

		statistics := ComputeStatistics(merged)

		if err := statsCache.Put(ctx, descriptor.PlayerID, statscache.Entry{SyncedAt: syncedAt, Statistics: statistics}); err != nil {
			// NOTE: The cache is only used for quick startup
			logger.WarnContext(ctx, "Failed to cache statistics", "error", err.Error())
		}

		logger.InfoContext(ctx, "Synced player", "newPulls", newPulls, "totalPulls", merged.TotalPulls())

		return SyncResult{
			PlayerID:   descriptor.PlayerID,
			Statistics: statistics,
			SyncedAt:   syncedAt,
			NewPulls:   newPulls,
		}, nil
	}
}
