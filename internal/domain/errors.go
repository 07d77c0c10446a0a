package domain

import "errors"

var (
	// No record page URL in the game logs
	ErrCredentialNotFound = errors.New("credential not found")
	ErrNoLogFile          = errors.New("no game log file found")
	// Record page URLs exist, but none for the requested player
	ErrCredentialMismatch = errors.New("no credential for requested player")
	// The record service returned a non-zero code for the credential
	ErrCredentialRejected = errors.New("credential rejected")
	ErrNetworkFailure     = errors.New("network failure")
	ErrPersistenceFailure = errors.New("persistence failure")
	ErrNoCacheAvailable   = errors.New("no cache available")
	ErrInvalidPlayerID    = errors.New("invalid player id")
)
