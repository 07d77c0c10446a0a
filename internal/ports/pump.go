package ports

import (
	"context"

	"github.com/Amund211/gacharecord/internal/worker"
)

// RunEventPump feeds worker events into the store until ctx is cancelled
func RunEventPump(ctx context.Context, session *worker.Session, handler worker.EventHandler) {
	for {
		select {
		case <-ctx.Done():
			return
		case event := <-session.Events():
			event.Visit(handler)
		}
	}
}
