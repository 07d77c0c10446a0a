package app

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/Amund211/gacharecord/internal/adapters/credentialcache"
	"github.com/Amund211/gacharecord/internal/adapters/logsource"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/strutils"
)

const defaultLanguage = "zh-Hans"

// ParseRecordURL extracts the record service identifiers from a record page URL.
//
// Raises domain.ErrCredentialNotFound if the URL is not a usable record page URL
func ParseRecordURL(rawURL string) (domain.Descriptor, error) {
	// The query lives in the fragment, drop the marker so it parses as a regular query
	parsed, err := url.Parse(strings.Replace(rawURL, "#", "", 1))
	if err != nil {
		return domain.Descriptor{}, fmt.Errorf("%w: malformed record url: %w", domain.ErrCredentialNotFound, err)
	}

	query := parsed.Query()

	playerID := query.Get("player_id")
	if !strutils.PlayerIDIsNormalized(playerID) {
		return domain.Descriptor{}, fmt.Errorf("%w: record url has no valid player_id", domain.ErrCredentialNotFound)
	}

	recordID := query.Get("record_id")
	if recordID == "" {
		return domain.Descriptor{}, fmt.Errorf("%w: record url has no record_id", domain.ErrCredentialNotFound)
	}

	language := query.Get("lang")
	if language == "" {
		language = defaultLanguage
	}

	var region domain.Region
	if query.Has("svr_area") {
		if query.Get("svr_area") == "cn" {
			region = domain.RegionChina
		} else {
			region = domain.RegionGlobal
		}
	} else if strings.HasSuffix(parsed.Hostname(), ".net") {
		region = domain.RegionGlobal
	} else {
		region = domain.RegionChina
	}

	return domain.Descriptor{
		PlayerID:    playerID,
		RecordID:    recordID,
		ServerID:    query.Get("svr_id"),
		ResourcesID: query.Get("resources_id"),
		Language:    language,
		Region:      region,
		RawURL:      rawURL,
	}, nil
}

// ResolveDescriptor finds the session descriptor for the player, or for any player if playerID is empty
type ResolveDescriptor func(ctx context.Context, playerID string) (domain.Descriptor, error)

func resolveFromCache(ctx context.Context, credentials credentialcache.CredentialCache, playerID string) (domain.Descriptor, bool) {
	logger := logging.FromContext(ctx)

	var cachedPlayerID, rawURL string
	var err error
	if playerID == "" {
		cachedPlayerID, rawURL, err = credentials.GetAny(ctx)
	} else {
		cachedPlayerID = playerID
		rawURL, err = credentials.Get(ctx, playerID)
	}
	if errors.Is(err, domain.ErrCredentialNotFound) {
		return domain.Descriptor{}, false
	} else if err != nil {
		// NOTE: CredentialCache implementations handle their own error reporting
		logger.WarnContext(ctx, "Failed to read credential cache, falling back to logs", "error", err.Error())
		return domain.Descriptor{}, false
	}

	descriptor, err := ParseRecordURL(rawURL)
	if err != nil || descriptor.PlayerID != cachedPlayerID {
		logger.WarnContext(ctx, "Dropping unusable cached record url", "playerID", cachedPlayerID)
		if err := credentials.Invalidate(ctx, cachedPlayerID); err != nil {
			logger.WarnContext(ctx, "Failed to invalidate cached record url", "error", err.Error())
		}
		return domain.Descriptor{}, false
	}

	return descriptor, true
}

func BuildResolveDescriptor(logSource logsource.LogSource, credentials credentialcache.CredentialCache) ResolveDescriptor {
	return func(ctx context.Context, playerID string) (domain.Descriptor, error) {
		logger := logging.FromContext(ctx)

		if playerID != "" {
			normalized, err := strutils.NormalizePlayerID(playerID)
			if err != nil {
				return domain.Descriptor{}, fmt.Errorf("%w: %w", domain.ErrInvalidPlayerID, err)
			}
			playerID = normalized
		}

		if descriptor, ok := resolveFromCache(ctx, credentials, playerID); ok {
			logger.InfoContext(ctx, "Using cached record url", "playerID", descriptor.PlayerID)
			return descriptor, nil
		}

		urls, err := logSource.RecordURLs(ctx)
		if err != nil {
			// NOTE: LogSource implementations handle their own error reporting
			return domain.Descriptor{}, fmt.Errorf("failed to scan game logs: %w", err)
		}

		foundAny := false
		for _, rawURL := range urls {
			descriptor, err := ParseRecordURL(rawURL)
			if err != nil {
				continue
			}
			foundAny = true

			if playerID != "" && descriptor.PlayerID != playerID {
				continue
			}

			if err := credentials.Put(ctx, descriptor.PlayerID, rawURL); err != nil {
				// NOTE: The descriptor is still usable for this sync
				logger.WarnContext(ctx, "Failed to cache record url", "error", err.Error())
			}

			logger.InfoContext(ctx, "Found record url in game logs", "playerID", descriptor.PlayerID, "region", descriptor.Region.String())
			return descriptor, nil
		}

		if foundAny {
			return domain.Descriptor{}, fmt.Errorf("%w: %s", domain.ErrCredentialMismatch, playerID)
		}
		return domain.Descriptor{}, fmt.Errorf("%w: no record url in game logs", domain.ErrCredentialNotFound)
	}
}
