package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/annel0/session-replay/internal/eventbus"
)

var (
	eventsTypes   string
	eventsSources string
	eventsLimit   int
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Tail lifecycle events from the event bus",
	Long: `Подписывается на шину событий (eventbus.url, NATS JetStream) и печатает
события записи и воспроизведения до Ctrl+C или до --limit событий.`,
	Args: cobra.NoArgs,
	RunE: runEvents,
}

func init() {
	eventsCmd.Flags().StringVar(&eventsTypes, "types", "", "event types filter (comma-separated)")
	eventsCmd.Flags().StringVar(&eventsSources, "sources", "", "event sources filter (comma-separated)")
	eventsCmd.Flags().IntVar(&eventsLimit, "limit", 0, "stop after this many events (0 = follow)")
}

func parseStringList(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func runEvents(cmd *cobra.Command, _ []string) error {
	if cfg.EventBus.URL == "" {
		return fmt.Errorf("eventbus.url не задан: in-memory шина не видна другим процессам")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	bus, err := eventbus.NewFromConfig(cfg.EventBus)
	if err != nil {
		return err
	}
	defer bus.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := cmd.OutOrStdout()
	var (
		mu    sync.Mutex
		count int
	)
	filter := eventbus.Filter{Types: parseStringList(eventsTypes), Sources: parseStringList(eventsSources)}
	sub, err := bus.Subscribe(ctx, filter, func(_ context.Context, ev *eventbus.Envelope) {
		mu.Lock()
		defer mu.Unlock()
		if eventsLimit > 0 && count >= eventsLimit {
			return
		}
		printEvent(out, ev)
		count++
		if eventsLimit > 0 && count >= eventsLimit {
			cancel()
		}
	})
	if err != nil {
		return err
	}
	defer sub.Unsubscribe()

	<-ctx.Done()
	mu.Lock()
	fmt.Fprintf(out, "\nTotal events: %d\n", count)
	mu.Unlock()
	return nil
}

func printEvent(w io.Writer, ev *eventbus.Envelope) {
	fmt.Fprintf(w, "%s %-28s %-9s %s\n",
		ev.Timestamp.Format("15:04:05.000"), ev.EventType, ev.Source, ev.Payload)
}
