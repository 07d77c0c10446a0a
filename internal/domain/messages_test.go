package domain_test

import (
	"fmt"
	"testing"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserMessage(t *testing.T) {
	t.Parallel()

	require.Equal(t, "Done", domain.UserMessage(nil))

	wrapped := func(err error) error {
		return fmt.Errorf("failed to sync: %w", err)
	}

	require.Contains(t, domain.UserMessage(wrapped(domain.ErrCredentialRejected)), "stale")
	require.Contains(t, domain.UserMessage(wrapped(domain.ErrNoLogFile)), "log file")
	require.Contains(t, domain.UserMessage(wrapped(domain.ErrCredentialNotFound)), "open the convene record page")

	networkErr := fmt.Errorf("%w: connection refused", domain.ErrNetworkFailure)
	require.Contains(t, domain.UserMessage(wrapped(networkErr)), "connection refused")

	require.Contains(t, domain.UserMessage(assert.AnError), assert.AnError.Error())
}
