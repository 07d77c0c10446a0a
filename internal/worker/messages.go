package worker

import (
	"context"

	"github.com/Amund211/gacharecord/internal/domain"
)

// Command is sent from a foreground to the worker.
// The set of commands is closed, every CommandHandler must handle all of them.
type Command interface {
	accept(ctx context.Context, handler CommandHandler)
}

type CommandHandler interface {
	HandleSync(ctx context.Context, command SyncCommand)
	HandleListPlayers(ctx context.Context, command ListPlayersCommand)
}

// SyncCommand fetches new pulls for the player.
// With UseCache set, cached statistics are served when available instead of syncing.
// An empty PlayerID picks the first stored player, or whichever player the game logs point to.
type SyncCommand struct {
	PlayerID string
	UseCache bool
}

func (c SyncCommand) accept(ctx context.Context, handler CommandHandler) {
	handler.HandleSync(ctx, c)
}

type ListPlayersCommand struct{}

func (c ListPlayersCommand) accept(ctx context.Context, handler CommandHandler) {
	handler.HandleListPlayers(ctx, c)
}

// Event is sent from the worker to the foreground
type Event interface {
	Visit(handler EventHandler)
}

type EventHandler interface {
	OnStatus(event StatusEvent)
	OnPlayers(event PlayersEvent)
	OnStatistics(event StatisticsEvent)
}

type StatusEvent struct {
	Text string
	// False if the text describes a failure
	Success bool
}

func (e StatusEvent) Visit(handler EventHandler) {
	handler.OnStatus(e)
}

type PlayersEvent struct {
	PlayerIDs []string
}

func (e PlayersEvent) Visit(handler EventHandler) {
	handler.OnPlayers(e)
}

type StatisticsEvent struct {
	PlayerID   string
	Statistics domain.PityStatistics
	FromCache  bool
}

func (e StatisticsEvent) Visit(handler EventHandler) {
	handler.OnStatistics(e)
}
