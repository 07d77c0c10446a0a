package domain

import (
	"errors"
	"fmt"
)

// UserMessage turns an error from a sync pass into a short message suitable for the user
func UserMessage(err error) string {
	switch {
	case err == nil:
		return "Done"
	case errors.Is(err, ErrNoLogFile):
		return "No game log file found, check the configured log paths"
	case errors.Is(err, ErrCredentialMismatch):
		return "No record link for this player in the game logs, open the convene record page in game first"
	case errors.Is(err, ErrCredentialNotFound):
		return "No record link in the game logs, open the convene record page in game first"
	case errors.Is(err, ErrCredentialRejected):
		return "The record link may be stale, reopen the convene record page in game"
	case errors.Is(err, ErrNetworkFailure):
		return fmt.Sprintf("Failed to reach the record service: %s", err.Error())
	case errors.Is(err, ErrPersistenceFailure):
		return fmt.Sprintf("Failed to read or write local data: %s", err.Error())
	case errors.Is(err, ErrNoCacheAvailable):
		return "No cached data, fetching from the server"
	case errors.Is(err, ErrInvalidPlayerID):
		return "Invalid player id"
	}
	return fmt.Sprintf("Sync failed: %s", err.Error())
}
