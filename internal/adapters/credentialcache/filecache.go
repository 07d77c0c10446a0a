package credentialcache

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/Amund211/gacharecord/internal/strutils"
)

const fileName = "record_url"

type CredentialCache interface {
	// Raises domain.ErrCredentialNotFound if no URL is cached for the player
	Get(ctx context.Context, playerID string) (string, error)
	// GetAny returns the cached URL of the lowest player id with one
	//
	// Raises domain.ErrCredentialNotFound if no URL is cached
	GetAny(ctx context.Context) (playerID string, rawURL string, err error)
	Put(ctx context.Context, playerID string, rawURL string) error
	Invalidate(ctx context.Context, playerID string) error
}

// FileCache stores one record page URL per player in <dataDir>/<playerID>/record_url
type FileCache struct {
	dataDir string
}

func NewFileCache(dataDir string) *FileCache {
	return &FileCache{
		dataDir: dataDir,
	}
}

func (c *FileCache) path(playerID string) string {
	return filepath.Join(c.dataDir, playerID, fileName)
}

func (c *FileCache) Get(ctx context.Context, playerID string) (string, error) {
	if !strutils.PlayerIDIsNormalized(playerID) {
		return "", fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
	}

	content, err := os.ReadFile(c.path(playerID))
	if errors.Is(err, fs.ErrNotExist) {
		return "", fmt.Errorf("%w: nothing cached for player", domain.ErrCredentialNotFound)
	} else if err != nil {
		err := fmt.Errorf("failed to read cached record url: %w", err)
		reporting.Report(ctx, err)
		return "", err
	}

	rawURL := strings.TrimSpace(string(content))
	if rawURL == "" {
		return "", fmt.Errorf("%w: cached record url is empty", domain.ErrCredentialNotFound)
	}

	return rawURL, nil
}

func (c *FileCache) GetAny(ctx context.Context) (string, string, error) {
	entries, err := os.ReadDir(c.dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return "", "", fmt.Errorf("%w: data directory does not exist", domain.ErrCredentialNotFound)
	} else if err != nil {
		err := fmt.Errorf("failed to list data directory: %w", err)
		reporting.Report(ctx, err)
		return "", "", err
	}

	playerIDs := []string{}
	for _, entry := range entries {
		if entry.IsDir() && strutils.PlayerIDIsNormalized(entry.Name()) {
			playerIDs = append(playerIDs, entry.Name())
		}
	}
	slices.Sort(playerIDs)

	for _, playerID := range playerIDs {
		rawURL, err := c.Get(ctx, playerID)
		if errors.Is(err, domain.ErrCredentialNotFound) {
			continue
		} else if err != nil {
			return "", "", err
		}
		return playerID, rawURL, nil
	}

	return "", "", fmt.Errorf("%w: nothing cached", domain.ErrCredentialNotFound)
}

func (c *FileCache) Put(ctx context.Context, playerID string, rawURL string) error {
	if !strutils.PlayerIDIsNormalized(playerID) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
	}

	if err := os.MkdirAll(filepath.Join(c.dataDir, playerID), 0o755); err != nil {
		err := fmt.Errorf("%w: failed to create player directory: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	if err := os.WriteFile(c.path(playerID), []byte(rawURL), 0o600); err != nil {
		err := fmt.Errorf("%w: failed to write record url: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

func (c *FileCache) Invalidate(ctx context.Context, playerID string) error {
	if !strutils.PlayerIDIsNormalized(playerID) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
	}

	err := os.Remove(c.path(playerID))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	} else if err != nil {
		err := fmt.Errorf("%w: failed to remove record url: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Invalidated cached record url", "playerID", playerID)
	return nil
}

// Type assertion
var _ CredentialCache = (*FileCache)(nil)
