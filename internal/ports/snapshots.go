package ports

import (
	"slices"
	"sync"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/worker"
	"github.com/jellydator/ttlcache/v3"
)

// Snapshots older than this are dropped, a display should trigger a new sync instead
const snapshotTTL = 24 * time.Hour

type Snapshot struct {
	PlayerID   string
	Statistics domain.PityStatistics
	FromCache  bool
	UpdatedAt  time.Time
}

type Status struct {
	Text      string
	Success   bool
	UpdatedAt time.Time
}

// SnapshotStore holds the latest worker events for the HTTP port to serve
type SnapshotStore struct {
	snapshots *ttlcache.Cache[string, Snapshot]
	nowFunc   func() time.Time

	mutex     sync.Mutex
	playerIDs []string
	status    Status
}

// Returns the store and a function stopping its cleanup goroutine
func NewSnapshotStore(nowFunc func() time.Time) (*SnapshotStore, func()) {
	snapshots := ttlcache.New[string, Snapshot](
		ttlcache.WithTTL[string, Snapshot](snapshotTTL),
		ttlcache.WithDisableTouchOnHit[string, Snapshot](),
	)
	go snapshots.Start()

	return &SnapshotStore{
		snapshots: snapshots,
		nowFunc:   nowFunc,
		playerIDs: []string{},
	}, snapshots.Stop
}

func (s *SnapshotStore) OnStatus(event worker.StatusEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.status = Status{Text: event.Text, Success: event.Success, UpdatedAt: s.nowFunc()}
}

func (s *SnapshotStore) OnPlayers(event worker.PlayersEvent) {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	s.playerIDs = slices.Clone(event.PlayerIDs)
}

func (s *SnapshotStore) OnStatistics(event worker.StatisticsEvent) {
	s.snapshots.Set(event.PlayerID, Snapshot{
		PlayerID:   event.PlayerID,
		Statistics: event.Statistics,
		FromCache:  event.FromCache,
		UpdatedAt:  s.nowFunc(),
	}, ttlcache.DefaultTTL)
}

func (s *SnapshotStore) Snapshot(playerID string) (Snapshot, bool) {
	item := s.snapshots.Get(playerID)
	if item == nil {
		return Snapshot{}, false
	}
	return item.Value(), true
}

func (s *SnapshotStore) PlayerIDs() []string {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return slices.Clone(s.playerIDs)
}

func (s *SnapshotStore) Status() Status {
	s.mutex.Lock()
	defer s.mutex.Unlock()

	return s.status
}

// Type assertion
var _ worker.EventHandler = (*SnapshotStore)(nil)
