package app_test

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"testing"
	"time"

	"github.com/Amund211/gacharecord/internal/adapters/statscache"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/stretchr/testify/require"
)

type mockLogSource struct {
	urls   []string
	err    error
	called bool
}

func (m *mockLogSource) RecordURLs(ctx context.Context) ([]string, error) {
	m.called = true
	return m.urls, m.err
}

type mockCredentialCache struct {
	mutex       sync.Mutex
	urls        map[string]string
	putErr      error
	invalidated []string
}

func newMockCredentialCache(urls map[string]string) *mockCredentialCache {
	if urls == nil {
		urls = map[string]string{}
	}
	return &mockCredentialCache{urls: urls}
}

func (m *mockCredentialCache) Get(ctx context.Context, playerID string) (string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	rawURL, ok := m.urls[playerID]
	if !ok {
		return "", domain.ErrCredentialNotFound
	}
	return rawURL, nil
}

func (m *mockCredentialCache) GetAny(ctx context.Context) (string, string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	playerIDs := make([]string, 0, len(m.urls))
	for playerID := range m.urls {
		playerIDs = append(playerIDs, playerID)
	}
	slices.Sort(playerIDs)
	if len(playerIDs) == 0 {
		return "", "", domain.ErrCredentialNotFound
	}
	return playerIDs[0], m.urls[playerIDs[0]], nil
}

func (m *mockCredentialCache) Put(ctx context.Context, playerID string, rawURL string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.putErr != nil {
		return m.putErr
	}
	m.urls[playerID] = rawURL
	return nil
}

func (m *mockCredentialCache) Invalidate(ctx context.Context, playerID string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.invalidated = append(m.invalidated, playerID)
	delete(m.urls, playerID)
	return nil
}

type mockRecordProvider struct {
	t *testing.T

	expectedDescriptor domain.Descriptor
	records            map[domain.Category][]domain.PullRecord
	errs               map[domain.Category]error
	calls              []domain.Category
}

func (m *mockRecordProvider) GetRecords(ctx context.Context, descriptor domain.Descriptor, category domain.Category) ([]domain.PullRecord, error) {
	m.t.Helper()
	require.Equal(m.t, m.expectedDescriptor, descriptor)

	m.calls = append(m.calls, category)
	if err, ok := m.errs[category]; ok {
		return nil, err
	}
	return m.records[category], nil
}

type mockHistoryRepository struct {
	histories map[string]domain.PlayerHistory
	loadErr   error
	saveErr   error
	saves     int
}

func newMockHistoryRepository(histories map[string]domain.PlayerHistory) *mockHistoryRepository {
	if histories == nil {
		histories = map[string]domain.PlayerHistory{}
	}
	return &mockHistoryRepository{histories: histories}
}

func (m *mockHistoryRepository) Load(ctx context.Context, playerID string) (domain.PlayerHistory, error) {
	if m.loadErr != nil {
		return nil, m.loadErr
	}
	history, ok := m.histories[playerID]
	if !ok {
		return domain.PlayerHistory{}, nil
	}
	return history.Clone(), nil
}

func (m *mockHistoryRepository) Save(ctx context.Context, playerID string, history domain.PlayerHistory) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saves++
	m.histories[playerID] = history.Clone()
	return nil
}

func (m *mockHistoryRepository) ListPlayerIDs(ctx context.Context) ([]string, error) {
	playerIDs := []string{}
	for playerID := range m.histories {
		playerIDs = append(playerIDs, playerID)
	}
	slices.Sort(playerIDs)
	return playerIDs, nil
}

type mockArchive struct {
	err       error
	snapshots []domain.PlayerHistory
}

func (m *mockArchive) StoreSnapshot(ctx context.Context, playerID string, syncedAt time.Time, history domain.PlayerHistory) error {
	if m.err != nil {
		return m.err
	}
	m.snapshots = append(m.snapshots, history.Clone())
	return nil
}

type mockStatisticsCache struct {
	entries map[string]statscache.Entry
	getErr  error
	putErr  error
}

func newMockStatisticsCache() *mockStatisticsCache {
	return &mockStatisticsCache{entries: map[string]statscache.Entry{}}
}

func (m *mockStatisticsCache) Get(ctx context.Context, playerID string) (statscache.Entry, error) {
	if m.getErr != nil {
		return statscache.Entry{}, m.getErr
	}
	entry, ok := m.entries[playerID]
	if !ok {
		return statscache.Entry{}, fmt.Errorf("%w: not cached", domain.ErrNoCacheAvailable)
	}
	return entry, nil
}

func (m *mockStatisticsCache) Put(ctx context.Context, playerID string, entry statscache.Entry) error {
	if m.putErr != nil {
		return m.putErr
	}
	m.entries[playerID] = entry
	return nil
}

func recordURL(host string, playerID string, extra string) string {
	return fmt.Sprintf(
		"https://%s/aki/gacha/index.html#/record?svr_id=76402e5b20be2c39f095a152090afddc&player_id=%s&lang=en&gacha_id=100001&gacha_type=6%s&record_id=4a7cd2c7b2f6d1f2b1e41d1c0ae0c1c1&resources_id=917dfa695d6c6634ee4e972bb9168f6a",
		host,
		playerID,
		extra,
	)
}
