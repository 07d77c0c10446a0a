package historyrepository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/Amund211/gacharecord/internal/strutils"
)

const (
	historyFileName = "gacha_data.json"
	backupDirName   = "backup"
	backupTimestamp = "2006-01-02-15-04-05"
)

type fileHistoryRepository struct {
	dataDir string
	nowFunc func() time.Time
}

func NewFileHistoryRepository(dataDir string, nowFunc func() time.Time) *fileHistoryRepository {
	return &fileHistoryRepository{
		dataDir: dataDir,
		nowFunc: nowFunc,
	}
}

func (r *fileHistoryRepository) playerDir(playerID string) string {
	return filepath.Join(r.dataDir, playerID)
}

func (r *fileHistoryRepository) historyPath(playerID string) string {
	return filepath.Join(r.playerDir(playerID), historyFileName)
}

func (r *fileHistoryRepository) Load(ctx context.Context, playerID string) (domain.PlayerHistory, error) {
	if !strutils.PlayerIDIsNormalized(playerID) {
		return nil, fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
	}

	content, err := os.ReadFile(r.historyPath(playerID))
	if errors.Is(err, fs.ErrNotExist) {
		return domain.PlayerHistory{}, nil
	} else if err != nil {
		err := fmt.Errorf("%w: failed to read history: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return nil, err
	}

	if len(content) == 0 {
		return domain.PlayerHistory{}, nil
	}

	history := domain.PlayerHistory{}
	if err := json.Unmarshal(content, &history); err != nil {
		err := fmt.Errorf("%w: failed to parse history: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err, map[string]string{
			"size": fmt.Sprintf("%d", len(content)),
		})
		return nil, err
	}

	return history, nil
}

func (r *fileHistoryRepository) backup(ctx context.Context, playerID string) error {
	source, err := os.Open(r.historyPath(playerID))
	if errors.Is(err, fs.ErrNotExist) {
		// Nothing to back up yet
		return nil
	} else if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer source.Close()

	backupDir := filepath.Join(r.playerDir(playerID), backupDirName)
	if err := os.MkdirAll(backupDir, 0o755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	now := r.nowFunc()
	backupPath := filepath.Join(
		backupDir,
		fmt.Sprintf("%s.%s-%06d.backup", historyFileName, now.Format(backupTimestamp), now.Nanosecond()/int(time.Microsecond)),
	)
	destination, err := os.OpenFile(backupPath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return fmt.Errorf("failed to create backup file: %w", err)
	}

	if _, err := io.Copy(destination, source); err != nil {
		destination.Close()
		return fmt.Errorf("failed to copy history to backup: %w", err)
	}
	if err := destination.Close(); err != nil {
		return fmt.Errorf("failed to close backup file: %w", err)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Backed up history", "path", backupPath)
	return nil
}

func marshalHistory(history domain.PlayerHistory) ([]byte, error) {
	normalized := make(domain.PlayerHistory, len(history))
	for category, pulls := range history {
		if pulls == nil {
			pulls = domain.CategoryHistory{}
		}
		normalized[category] = pulls
	}
	return json.Marshal(normalized)
}

func writeAtomically(path string, content []byte) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temporary file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(content); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to write temporary file: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("failed to sync temporary file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to close temporary file: %w", err)
	}

	if err := os.Rename(tmpPath, path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace history: %w", err)
	}
	return nil
}

func (r *fileHistoryRepository) Save(ctx context.Context, playerID string, history domain.PlayerHistory) error {
	if !strutils.PlayerIDIsNormalized(playerID) {
		return fmt.Errorf("%w: %s", domain.ErrInvalidPlayerID, playerID)
	}

	content, err := marshalHistory(history)
	if err != nil {
		err := fmt.Errorf("%w: failed to marshal history: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	if err := os.MkdirAll(r.playerDir(playerID), 0o755); err != nil {
		err := fmt.Errorf("%w: failed to create player directory: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	if err := r.backup(ctx, playerID); err != nil {
		err := fmt.Errorf("%w: backup failed, history not saved: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	if err := writeAtomically(r.historyPath(playerID), content); err != nil {
		err := fmt.Errorf("%w: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return err
	}

	logging.FromContext(ctx).InfoContext(ctx, "Saved history", "playerID", playerID, "pulls", history.TotalPulls())
	return nil
}

func (r *fileHistoryRepository) ListPlayerIDs(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(r.dataDir)
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	} else if err != nil {
		err := fmt.Errorf("%w: failed to list data directory: %w", domain.ErrPersistenceFailure, err)
		reporting.Report(ctx, err)
		return nil, err
	}

	playerIDs := []string{}
	for _, entry := range entries {
		if !entry.IsDir() || !strutils.PlayerIDIsNormalized(entry.Name()) {
			continue
		}
		info, err := os.Stat(r.historyPath(entry.Name()))
		if err != nil || info.IsDir() {
			continue
		}
		playerIDs = append(playerIDs, entry.Name())
	}
	slices.Sort(playerIDs)

	return playerIDs, nil
}

// Type assertion
var _ HistoryRepository = (*fileHistoryRepository)(nil)
