package historyrepository

import (
	"context"

	"github.com/Amund211/gacharecord/internal/domain"
)

type HistoryRepository interface {
	// Load returns an empty history if nothing is stored for the player
	//
	// Raises domain.ErrPersistenceFailure if the stored history can't be read
	Load(ctx context.Context, playerID string) (domain.PlayerHistory, error)

	// Save backs up the stored history, then replaces it.
	// If the backup fails the stored history is left untouched.
	//
	// Raises domain.ErrPersistenceFailure
	Save(ctx context.Context, playerID string, history domain.PlayerHistory) error

	// ListPlayerIDs returns the players with stored history in ascending order
	ListPlayerIDs(ctx context.Context) ([]string, error)
}
