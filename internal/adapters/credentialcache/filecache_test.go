package credentialcache_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/Amund211/gacharecord/internal/adapters/credentialcache"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/stretchr/testify/require"
)

func TestFileCache(t *testing.T) {
	t.Parallel()

	t.Run("put then get", func(t *testing.T) {
		t.Parallel()

		dataDir := t.TempDir()
		cache := credentialcache.NewFileCache(dataDir)

		require.NoError(t, cache.Put(t.Context(), "100000001", "https://example.com/a"))

		rawURL, err := cache.Get(t.Context(), "100000001")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/a", rawURL)

		content, err := os.ReadFile(filepath.Join(dataDir, "100000001", "record_url"))
		require.NoError(t, err)
		require.Equal(t, "https://example.com/a", string(content))
	})

	t.Run("players are kept separate", func(t *testing.T) {
		t.Parallel()

		cache := credentialcache.NewFileCache(t.TempDir())

		require.NoError(t, cache.Put(t.Context(), "100000001", "https://example.com/a"))
		require.NoError(t, cache.Put(t.Context(), "100000002", "https://example.com/b"))

		rawURL, err := cache.Get(t.Context(), "100000001")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/a", rawURL)

		rawURL, err = cache.Get(t.Context(), "100000002")
		require.NoError(t, err)
		require.Equal(t, "https://example.com/b", rawURL)
	})

	t.Run("get missing", func(t *testing.T) {
		t.Parallel()

		cache := credentialcache.NewFileCache(t.TempDir())

		_, err := cache.Get(t.Context(), "100000001")
		require.ErrorIs(t, err, domain.ErrCredentialNotFound)
	})

	t.Run("invalid player id", func(t *testing.T) {
		t.Parallel()

		cache := credentialcache.NewFileCache(t.TempDir())

		_, err := cache.Get(t.Context(), "../etc")
		require.ErrorIs(t, err, domain.ErrInvalidPlayerID)

		err = cache.Put(t.Context(), "../etc", "https://example.com/a")
		require.ErrorIs(t, err, domain.ErrInvalidPlayerID)
	})

	t.Run("get any picks lowest player id", func(t *testing.T) {
		t.Parallel()

		dataDir := t.TempDir()
		cache := credentialcache.NewFileCache(dataDir)

		// A player directory without a cached url is skipped
		require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "100000000"), 0o755))
		require.NoError(t, os.MkdirAll(filepath.Join(dataDir, "backup"), 0o755))
		require.NoError(t, cache.Put(t.Context(), "100000003", "https://example.com/c"))
		require.NoError(t, cache.Put(t.Context(), "100000002", "https://example.com/b"))

		playerID, rawURL, err := cache.GetAny(t.Context())
		require.NoError(t, err)
		require.Equal(t, "100000002", playerID)
		require.Equal(t, "https://example.com/b", rawURL)
	})

	t.Run("get any empty", func(t *testing.T) {
		t.Parallel()

		cache := credentialcache.NewFileCache(filepath.Join(t.TempDir(), "missing"))

		_, _, err := cache.GetAny(t.Context())
		require.ErrorIs(t, err, domain.ErrCredentialNotFound)
	})

	t.Run("invalidate", func(t *testing.T) {
		t.Parallel()

		cache := credentialcache.NewFileCache(t.TempDir())

		require.NoError(t, cache.Put(t.Context(), "100000001", "https://example.com/a"))
		require.NoError(t, cache.Put(t.Context(), "100000002", "https://example.com/b"))

		require.NoError(t, cache.Invalidate(t.Context(), "100000001"))

		_, err := cache.Get(t.Context(), "100000001")
		require.ErrorIs(t, err, domain.ErrCredentialNotFound)

		_, err = cache.Get(t.Context(), "100000002")
		require.NoError(t, err)

		// Invalidating again is fine
		require.NoError(t, cache.Invalidate(t.Context(), "100000001"))
	})
}
