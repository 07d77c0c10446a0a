package logsource

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
	"github.com/samber/lo"
)

var recordURLRx = regexp.MustCompile(`https://[\w.\-]+(?::\d+)?/aki/gacha/index\.html#/record\?[=&\w\-.%]+`)

type LogSource interface {
	// RecordURLs returns every record page URL found in the game logs, most recent first.
	//
	// Raises domain.ErrNoLogFile if none of the configured paths hold a log file
	RecordURLs(ctx context.Context) ([]string, error)
}

type candidate struct {
	path    string
	modTime time.Time
}

type fileLogSource struct {
	paths []string
}

// NewFileLogSource reads the given paths. A path may be a log file, or a directory
// in which case every *.log file directly inside it is considered.
func NewFileLogSource(paths []string) *fileLogSource {
	return &fileLogSource{
		paths: slices.Clone(paths),
	}
}

func (s *fileLogSource) candidates(ctx context.Context) []candidate {
	logger := logging.FromContext(ctx)

	found := []candidate{}
	for _, path := range s.paths {
		info, err := os.Stat(path)
		if errors.Is(err, fs.ErrNotExist) {
			logger.InfoContext(ctx, "Log path does not exist", "path", path)
			continue
		} else if err != nil {
			logger.WarnContext(ctx, "Failed to stat log path", "path", path, "error", err.Error())
			continue
		}

		if !info.IsDir() {
			found = append(found, candidate{path: path, modTime: info.ModTime()})
			continue
		}

		matches, err := filepath.Glob(filepath.Join(path, "*.log"))
		if err != nil {
			logger.WarnContext(ctx, "Failed to list log directory", "path", path, "error", err.Error())
			continue
		}
		for _, match := range matches {
			info, err := os.Stat(match)
			if err != nil || info.IsDir() {
				continue
			}
			found = append(found, candidate{path: match, modTime: info.ModTime()})
		}
	}

	found = lo.UniqBy(found, func(c candidate) string {
		return filepath.Clean(c.path)
	})

	slices.SortStableFunc(found, func(a, b candidate) int {
		// Newest first
		return b.modTime.Compare(a.modTime)
	})

	return found
}

func (s *fileLogSource) RecordURLs(ctx context.Context) ([]string, error) {
	candidates := s.candidates(ctx)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: checked %d path(s)", domain.ErrNoLogFile, len(s.paths))
	}

	urls := []string{}
	for _, c := range candidates {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		content, err := os.ReadFile(c.path)
		if err != nil {
			// The game may hold the file open, skip it and keep looking
			logging.FromContext(ctx).WarnContext(ctx, "Failed to read log file", "path", c.path, "error", err.Error())
			reporting.Report(ctx, fmt.Errorf("failed to read log file: %w", err))
			continue
		}

		urls = append(urls, ScanRecordURLs(content)...)
	}

	logging.FromContext(ctx).InfoContext(ctx, "Scanned game logs", "files", len(candidates), "urls", len(urls))

	return urls, nil
}

// ScanRecordURLs returns the record page URLs in the log content, last occurrence first
func ScanRecordURLs(content []byte) []string {
	matches := recordURLRx.FindAll(content, -1)
	urls := lo.Map(matches, func(match []byte, _ int) string {
		return string(match)
	})
	return lo.Reverse(urls)
}
