package historyarchive

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/Amund211/gacharecord/internal/strutils"
	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

// Stored alongside each snapshot so old rows can be told apart if the pull format changes
const dataFormatVersion = 1

type Postgres struct {
	db     *sqlx.DB
	schema string

	tracer trace.Tracer
}

func NewPostgres(db *sqlx.DB, schema string) *Postgres {
	tracer := otel.Tracer("gacharecord/historyarchive/postgres")

	return &Postgres{
		db:     db,
		schema: schema,

		tracer: tracer,
	}
}

type dbSnapshot struct {
	ID                string    `db:"id"`
	PlayerID          string    `db:"player_id"`
	SyncedAt          time.Time `db:"synced_at"`
	DataFormatVersion int       `db:"data_format_version"`
	PullCount         int       `db:"pull_count"`
	History           []byte    `db:"history"`
}

func (p *Postgres) StoreSnapshot(ctx context.Context, playerID string, syncedAt time.Time, history domain.PlayerHistory) error {
	ctx, span := p.tracer.Start(ctx, "Postgres.StoreSnapshot")
	defer span.End()

	if !strutils.PlayerIDIsNormalized(playerID) {
		err := fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
		reporting.Report(ctx, err)
		return err
	}

	historyJSON, err := json.Marshal(history)
	if err != nil {
		err := fmt.Errorf("failed to marshal history: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	id, err := uuid.NewV7()
	if err != nil {
		err := fmt.Errorf("failed to generate snapshot id: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"schema": p.schema,
		})
		return err
	}

	_, err = txx.ExecContext(
		ctx,
		`INSERT INTO history_snapshots
		(id, player_id, synced_at, data_format_version, pull_count, history)
		VALUES ($1, $2, $3, $4, $5, $6)`,
		id.String(),
		playerID,
		syncedAt,
		dataFormatVersion,
		history.TotalPulls(),
		string(historyJSON),
	)
	if err != nil {
		err := fmt.Errorf("failed to insert snapshot: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"syncedAt": syncedAt.Format(time.RFC3339),
		})
		return err
	}

	if err := txx.Commit(); err != nil {
		err := fmt.Errorf("failed to commit transaction: %w", err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

// LatestSnapshot returns the most recently synced history of the player
//
// Raises domain.ErrNoCacheAvailable if the player has no snapshots
func (p *Postgres) LatestSnapshot(ctx context.Context, playerID string) (domain.PlayerHistory, time.Time, error) {
	ctx, span := p.tracer.Start(ctx, "Postgres.LatestSnapshot")
	defer span.End()

	txx, err := p.db.BeginTxx(ctx, nil)
	if err != nil {
		err := fmt.Errorf("failed to start transaction: %w", err)
		reporting.Report(ctx, err)
		return nil, time.Time{}, err
	}
	defer txx.Rollback()

	_, err = txx.ExecContext(ctx, fmt.Sprintf("SET search_path TO %s", pq.QuoteIdentifier(p.schema)))
	if err != nil {
		err := fmt.Errorf("failed to set search path: %w", err)
		reporting.Report(ctx, err)
		return nil, time.Time{}, err
	}

	var snapshots []dbSnapshot
	err = txx.SelectContext(
		ctx,
		&snapshots,
		`SELECT id, player_id, synced_at, data_format_version, pull_count, history
		FROM history_snapshots
		WHERE player_id = $1
		ORDER BY synced_at DESC, id DESC
		LIMIT 1`,
		playerID,
	)
	if err != nil {
		err := fmt.Errorf("failed to select snapshot: %w", err)
		reporting.Report(ctx, err)
		return nil, time.Time{}, err
	}

	if len(snapshots) == 0 {
		return nil, time.Time{}, fmt.Errorf("%w: no archived snapshot", domain.ErrNoCacheAvailable)
	}

	snapshot := snapshots[0]
	if snapshot.DataFormatVersion != dataFormatVersion {
		err := fmt.Errorf("unsupported snapshot data format version %d", snapshot.DataFormatVersion)
		reporting.Report(ctx, err, map[string]string{
			"id": snapshot.ID,
		})
		return nil, time.Time{}, err
	}

	history := domain.PlayerHistory{}
	if err := json.Unmarshal(snapshot.History, &history); err != nil {
		err := fmt.Errorf("failed to parse snapshot history: %w", err)
		reporting.Report(ctx, err, map[string]string{
			"id": snapshot.ID,
		})
		return nil, time.Time{}, err
	}

	return history, snapshot.SyncedAt, nil
}

// Type assertion
var _ HistoryArchive = (*Postgres)(nil)
