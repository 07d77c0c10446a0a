package historyarchive

import (
	"context"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
)

// HistoryArchive keeps an immutable copy of every saved history.
// The history files stay authoritative, the archive is only written to.
type HistoryArchive interface {
	StoreSnapshot(ctx context.Context, playerID string, syncedAt time.Time, history domain.PlayerHistory) error
}

type noopArchive struct{}

func (noopArchive) StoreSnapshot(ctx context.Context, playerID string, syncedAt time.Time, history domain.PlayerHistory) error {
	return nil
}

func NewNoopArchive() HistoryArchive {
	return noopArchive{}
}
