package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Amund211/gacharecord/internal/app"
	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/logging"
	"github.com/Amund211/gacharecord/internal/reporting"
)

const IdleInterval = 1 * time.Second

type Worker struct {
	session *Session

	syncPlayer           app.SyncPlayer
	loadCachedStatistics app.LoadCachedStatistics
	listPlayers          app.ListPlayers

	idleInterval time.Duration
	nowFunc      func() time.Time
	afterFunc    func(time.Duration) <-chan time.Time
}

func New(
	session *Session,
	syncPlayer app.SyncPlayer,
	loadCachedStatistics app.LoadCachedStatistics,
	listPlayers app.ListPlayers,
	nowFunc func() time.Time,
	afterFunc func(time.Duration) <-chan time.Time,
) *Worker {
	return &Worker{
		session: session,

		syncPlayer:           syncPlayer,
		loadCachedStatistics: loadCachedStatistics,
		listPlayers:          listPlayers,

		idleInterval: IdleInterval,
		nowFunc:      nowFunc,
		afterFunc:    afterFunc,
	}
}

// Run processes commands one at a time until ctx is cancelled
func (w *Worker) Run(ctx context.Context) {
	logger := logging.FromContext(ctx)
	logger.InfoContext(ctx, "Worker started")
	defer logger.InfoContext(ctx, "Worker stopped")

	for {
		select {
		case <-ctx.Done():
			return
		case command := <-w.session.commands:
			w.handle(ctx, command)
		case <-w.afterFunc(w.idleInterval):
		}
	}
}

func (w *Worker) handle(ctx context.Context, command Command) {
	ctx = reporting.SetStartedAtInContext(ctx, w.nowFunc())
	ctx = logging.AddMetaToContext(ctx, slog.String("command", fmt.Sprintf("%T", command)))

	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("panic while handling command: %v", r)
			logging.FromContext(ctx).ErrorContext(ctx, err.Error())
			reporting.Report(ctx, err)
			w.emit(ctx, StatusEvent{Text: domain.UserMessage(err), Success: false})
		}
	}()

	command.accept(ctx, w)
}

// emit waits for room in the event queue so no event is dropped
func (w *Worker) emit(ctx context.Context, event Event) {
	select {
	case w.session.events <- event:
	case <-ctx.Done():
	}
}

func (w *Worker) emitPlayers(ctx context.Context) ([]string, error) {
	playerIDs, err := w.listPlayers(ctx)
	if err != nil {
		// NOTE: ListPlayers handles its own error reporting
		logging.FromContext(ctx).WarnContext(ctx, "Failed to list players", "error", err.Error())
		return nil, err
	}
	w.emit(ctx, PlayersEvent{PlayerIDs: playerIDs})
	return playerIDs, nil
}

func (w *Worker) HandleListPlayers(ctx context.Context, command ListPlayersCommand) {
	if _, err := w.emitPlayers(ctx); err != nil {
		w.emit(ctx, StatusEvent{Text: domain.UserMessage(err), Success: false})
	}
}

func (w *Worker) HandleSync(ctx context.Context, command SyncCommand) {
	logger := logging.FromContext(ctx)
	playerID := command.PlayerID

	if command.UseCache {
		// A failed listing only loses the default player
		playerIDs, _ := w.emitPlayers(ctx)
		if playerID == "" && len(playerIDs) > 0 {
			playerID = playerIDs[0]
		}

		if playerID != "" {
			cached, err := w.loadCachedStatistics(ctx, playerID)
			if err == nil {
				w.emit(ctx, StatisticsEvent{PlayerID: playerID, Statistics: cached.Statistics, FromCache: true})
				w.emit(ctx, StatusEvent{Text: "Loaded saved data", Success: true})
				return
			}
			if !errors.Is(err, domain.ErrNoCacheAvailable) {
				logger.WarnContext(ctx, "Failed to load cached statistics", "error", err.Error())
			}
			w.emit(ctx, StatusEvent{Text: domain.UserMessage(domain.ErrNoCacheAvailable), Success: true})
		}
	}

	result, err := w.syncPlayer(ctx, playerID, func(text string) {
		w.emit(ctx, StatusEvent{Text: text, Success: true})
	})
	if err != nil {
		// NOTE: SyncPlayer handles its own error reporting
		logger.WarnContext(ctx, "Sync failed", "error", err.Error())
		w.emit(ctx, StatusEvent{Text: domain.UserMessage(err), Success: false})
		return
	}

	w.emit(ctx, StatisticsEvent{PlayerID: result.PlayerID, Statistics: result.Statistics, FromCache: false})
	_, _ = w.emitPlayers(ctx)
	w.emit(ctx, StatusEvent{Text: fmt.Sprintf("%s, %d new pulls", domain.UserMessage(nil), result.NewPulls), Success: true})
}

// Type assertion
var _ CommandHandler = (*Worker)(nil)
