package main

import (
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/Amund211/gacharecord/internal/domain"
	"github.com/Amund211/gacharecord/internal/worker"
)

const pollInterval = 100 * time.Millisecond

// foreground prints worker events for a single command and tracks when the command is done
type foreground struct {
	out io.Writer

	// The players command finishes on the player list, everything else on a status after statistics
	doneOnPlayers bool

	sawStatistics bool
	done          bool
	failure       string
}

func (f *foreground) OnStatus(event worker.StatusEvent) {
	if !event.Success {
		fmt.Fprintf(f.out, "Error: %s\n", event.Text)
		f.failure = event.Text
		f.done = true
		return
	}

	fmt.Fprintln(f.out, event.Text)
	if f.sawStatistics {
		f.done = true
	}
}

func (f *foreground) OnPlayers(event worker.PlayersEvent) {
	if !f.doneOnPlayers {
		return
	}

	if len(event.PlayerIDs) == 0 {
		fmt.Fprintln(f.out, "No saved players")
	}
	for _, playerID := range event.PlayerIDs {
		fmt.Fprintln(f.out, playerID)
	}
	f.done = true
}

func (f *foreground) OnStatistics(event worker.StatisticsEvent) {
	f.sawStatistics = true
	writeStatistics(f.out, event)
}

func writeStatistics(out io.Writer, event worker.StatisticsEvent) {
	source := "fresh"
	if event.FromCache {
		source = "saved"
	}
	fmt.Fprintf(out, "Player %s (%s data)\n", event.PlayerID, source)

	if len(event.Statistics) == 0 {
		fmt.Fprintln(out, "No pulls yet")
		return
	}

	categories := make([]domain.Category, 0, len(event.Statistics))
	for category := range event.Statistics {
		categories = append(categories, category)
	}
	slices.Sort(categories)

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "Convene\tTotal\t5-star\t4-star\tPity\t5-star history")
	for _, category := range categories {
		stats := event.Statistics[category]

		hits := make([]string, 0, len(stats.Detail))
		for _, hit := range stats.Detail {
			hits = append(hits, fmt.Sprintf("%s (%d)", hit.Name, hit.Count))
		}

		fmt.Fprintf(
			tw,
			"%s\t%d\t%d\t%d\t%d\t%s\n",
			category.DisplayName(),
			stats.Total,
			stats.FiveCount,
			stats.FourCount,
			stats.PullCount,
			strings.Join(hits, ", "),
		)
	}
	_ = tw.Flush()
}

// runForeground sends the command and polls for events until it is done
func runForeground(ctx context.Context, session *worker.Session, command worker.Command, f *foreground) error {
	if !session.Send(command) {
		return fmt.Errorf("worker is busy")
	}

	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		for {
			event, ok := session.Poll()
			if !ok {
				break
			}
			event.Visit(f)
			if f.done {
				if f.failure != "" {
					return fmt.Errorf("%s", f.failure)
				}
				return nil
			}
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// Type assertion
var _ worker.EventHandler = (*foreground)(nil)
