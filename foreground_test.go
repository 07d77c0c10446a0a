package main

import (
	"bytes"
	"context"
	"testing"
	"testing/synctest"
	"time"

	"github.com/Amund211/gacharecord/internal/app"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/worker"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testStatistics = domain.PityStatistics{
	domain.CategoryFeaturedResonator: {
		CardPoolType: domain.CategoryFeaturedResonator,
		Total:        12,
		FiveCount:    1,
		FourCount:    1,
		ThreeCount:   10,
		PullCount:    2,
		Detail:       []domain.TopRarityHit{{Name: "Jiyan", Count: 10, ResourceID: 1404, ResourceType: "Resonators"}},
	},
}

func TestForeground(t *testing.T) {
	t.Parallel()

	t.Run("sync finishes on the status after statistics", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		f := &foreground{out: out}

		f.OnStatus(worker.StatusEvent{Text: "Fetching", Success: true})
		f.OnPlayers(worker.PlayersEvent{PlayerIDs: []string{"100000001"}})
		require.False(t, f.done)

		f.OnStatistics(worker.StatisticsEvent{PlayerID: "100000001", Statistics: testStatistics})
		require.False(t, f.done)

		f.OnStatus(worker.StatusEvent{Text: "Done, 12 new pulls", Success: true})
		require.True(t, f.done)
		require.Empty(t, f.failure)

		require.Contains(t, out.String(), "Player 100000001 (fresh data)")
		require.Contains(t, out.String(), "Featured Resonator Convene")
		require.Contains(t, out.String(), "Jiyan (10)")
		require.NotContains(t, out.String(), "\n100000001\n")
	})

	t.Run("failure finishes", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		f := &foreground{out: out}

		f.OnStatus(worker.StatusEvent{Text: "Invalid player id", Success: false})
		require.True(t, f.done)
		require.Equal(t, "Invalid player id", f.failure)
		require.Equal(t, "Error: Invalid player id\n", out.String())
	})

	t.Run("players finishes on the player list", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		f := &foreground{out: out, doneOnPlayers: true}

		f.OnPlayers(worker.PlayersEvent{PlayerIDs: []string{"100000001", "100000002"}})
		require.True(t, f.done)
		require.Equal(t, "100000001\n100000002\n", out.String())
	})

	t.Run("no saved players", func(t *testing.T) {
		t.Parallel()

		out := &bytes.Buffer{}
		f := &foreground{out: out, doneOnPlayers: true}

		f.OnPlayers(worker.PlayersEvent{PlayerIDs: []string{}})
		require.True(t, f.done)
		require.Equal(t, "No saved players\n", out.String())
	})
}

func TestRunForeground(t *testing.T) {
	t.Parallel()

	newWorker := func(session *worker.Session, syncErr error) *worker.Worker {
		return worker.New(
			session,
			func(ctx context.Context, playerID string, progress func(string)) (app.SyncResult, error) {
				progress("Fetching")
				if syncErr != nil {
					return app.SyncResult{}, syncErr
				}
				return app.SyncResult{PlayerID: "100000001", Statistics: testStatistics, NewPulls: 12}, nil
			},
			func(ctx context.Context, playerID string) (app.CachedStatistics, error) {
				return app.CachedStatistics{}, domain.ErrNoCacheAvailable
			},
			func(ctx context.Context) ([]string, error) {
				return []string{"100000001"}, nil
			},
			time.Now,
			time.After,
		)
	}

	t.Run("sync", func(t *testing.T) {
		t.Parallel()

		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			session := worker.NewSession(10)
			go newWorker(session, nil).Run(ctx)

			out := &bytes.Buffer{}
			err := runForeground(ctx, session, worker.SyncCommand{}, &foreground{out: out})
			require.NoError(t, err)
			require.Contains(t, out.String(), "Fetching\n")
			require.Contains(t, out.String(), "Done, 12 new pulls\n")
		})
	})

	t.Run("failed sync", func(t *testing.T) {
		t.Parallel()

		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())
			defer cancel()

			session := worker.NewSession(10)
			go newWorker(session, domain.ErrCredentialRejected).Run(ctx)

			out := &bytes.Buffer{}
			err := runForeground(ctx, session, worker.SyncCommand{}, &foreground{out: out})
			require.Error(t, err)
			require.Equal(t, domain.UserMessage(domain.ErrCredentialRejected), err.Error())
		})
	})

	t.Run("cancelled", func(t *testing.T) {
		t.Parallel()

		synctest.Test(t, func(t *testing.T) {
			ctx, cancel := context.WithCancel(t.Context())

			// No worker, nothing will ever arrive
			session := worker.NewSession(10)
			go func() {
				time.Sleep(time.Second)
				cancel()
			}()

			err := runForeground(ctx, session, worker.ListPlayersCommand{}, &foreground{out: &bytes.Buffer{}, doneOnPlayers: true})
			assert.ErrorIs(t, err, context.Canceled)
		})
	})
}
