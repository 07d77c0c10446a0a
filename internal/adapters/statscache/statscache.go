package statscache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
)

const (
	fileName = "statistics_cache.json"

	// Bump when the statistics format changes. Older caches are discarded.
	currentVersion = 1
)

type Entry struct {
	SyncedAt   time.Time             `json:"syncedAt"`
	Statistics domain.PityStatistics `json:"statistics"`
}

type envelope struct {
	Version int              `json:"version"`
	Players map[string]Entry `json:"players"`
}

type StatisticsCache interface {
	// Raises domain.ErrNoCacheAvailable if nothing is cached for the player
	Get(ctx context.Context, playerID string) (Entry, error)
	Put(ctx context.Context, playerID string, entry Entry) error
}

type fileStatisticsCache struct {
	path  string
	mutex sync.Mutex
}

func NewFileStatisticsCache(dataDir string) *fileStatisticsCache {
	return &fileStatisticsCache{
		path: filepath.Join(dataDir, fileName),
	}
}

func (c *fileStatisticsCache) read(ctx context.Context) envelope {
	empty := envelope{Version: currentVersion, Players: map[string]Entry{}}

	content, err := os.ReadFile(c.path)
	if errors.Is(err, fs.ErrNotExist) {
		return empty
	} else if err != nil {
		reporting.Report(ctx, fmt.Errorf("failed to read statistics cache: %w", err))
		return empty
	}

	var cached envelope
	if err := json.Unmarshal(content, &cached); err != nil {
		logging.FromContext(ctx).WarnContext(ctx, "Discarding unreadable statistics cache", "error", err.Error())
		return empty
	}

	if cached.Version != currentVersion {
		logging.FromContext(ctx).InfoContext(ctx, "Discarding outdated statistics cache", "version", cached.Version)
		return empty
	}

	if cached.Players == nil {
		cached.Players = map[string]Entry{}
	}

	return cached
}

func (c *fileStatisticsCache) Get(ctx context.Context, playerID string) (Entry, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	entry, ok := c.read(ctx).Players[playerID]
	if !ok {
		return Entry{}, fmt.Errorf("%w: no cached statistics for player", domain.ErrNoCacheAvailable)
	}

	return entry, nil
}

func (c *fileStatisticsCache) Put(ctx context.Context, playerID string, entry Entry) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	cached := c.read(ctx)
	cached.Players[playerID] = entry

	content, err := json.Marshal(cached)
	if err != nil {
		err := fmt.Errorf("%w: failed to marshal statistics cache: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	if err := os.MkdirAll(filepath.Dir(c.path), 0o755); err != nil {
		err := fmt.Errorf("%w: failed to create data directory: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	tmpPath := c.path + ".tmp"
	if err := os.WriteFile(tmpPath, content, 0o644); err != nil {
		err := fmt.Errorf("%w: failed to write statistics cache: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}
	if err := os.Rename(tmpPath, c.path); err != nil {
		os.Remove(tmpPath)
		err := fmt.Errorf("%w: failed to replace statistics cache: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	return nil
}

// Type assertion
var _ StatisticsCache = (*fileStatisticsCache)(nil)
