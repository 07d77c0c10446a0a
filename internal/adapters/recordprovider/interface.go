package recordprovider

import (
	"context"

	"github.com/Amund211/gacharecord/internal/domain"
)

type RecordProvider interface {
	// GetRecords returns the pulls of one category, newest first
	//
	// Raises domain.ErrCredentialRejected if the record service refuses the descriptor
	//
	// Raises domain.ErrNetworkFailure if the record service could not be reached or gave an unreadable answer
	GetRecords(ctx context.Context, descriptor domain.Descriptor, category domain.Category) ([]domain.PullRecord, error)
}
