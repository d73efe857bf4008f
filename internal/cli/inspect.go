package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/annel0/session-replay/internal/logformat"
	"github.com/annel0/session-replay/internal/logging"
	"github.com/annel0/session-replay/internal/playback"
	"github.com/annel0/session-replay/internal/storage"
)

var inspectWatch bool

var inspectCmd = &cobra.Command{
	Use:   "inspect [log...]",
	Short: "Summarize objects and tracks of session logs",
	Long: `Разбирает логи и печатает объекты, их треки, число семплов и диапазон времени.
Без аргументов обрабатывает все логи хранилища. С --watch (только backend file)
повторяет вывод при каждом изменении лога на диске.`,
	RunE: runInspect,
}

func init() {
	inspectCmd.Flags().BoolVarP(&inspectWatch, "watch", "w", false, "re-inspect logs when files change")
}

// trackSummary число семплов и диапазон одного трека
type trackSummary struct {
	Kind             string
	Samples          int
	Earliest, Latest float64
}

type objectSummary struct {
	FullName string
	Key      bool
	Tracks   []trackSummary
}

type logSummary struct {
	Name             string
	Objects          []objectSummary
	Earliest, Latest float64
}

// summarize разбирает текст лога и строит треки тем же путем, что и плеер
func summarize(name, text string) (*logSummary, error) {
	records, err := logformat.Parse(text)
	if err != nil {
		return nil, err
	}
	objects, err := playback.Generate(records, playback.NewRegistry(), playback.PathResolver{})
	if err != nil {
		return nil, err
	}

	set := playback.NewObjectSet(name, false, objects)
	s := &logSummary{Name: name, Earliest: set.Earliest(), Latest: set.Latest()}
	for _, o := range objects {
		sum := objectSummary{FullName: o.FullName(), Key: o.Key}
		for _, tr := range o.Tracks() {
			sum.Tracks = append(sum.Tracks, trackSummary{
				Kind:     tr.Kind().String(),
				Samples:  tr.Len(),
				Earliest: tr.Earliest(),
				Latest:   tr.Latest(),
			})
		}
		s.Objects = append(s.Objects, sum)
	}
	return s, nil
}

func printSummary(w io.Writer, s *logSummary) {
	fmt.Fprintf(w, "%s: %d objects, [%.3f, %.3f]\n", s.Name, len(s.Objects), s.Earliest, s.Latest)
	for _, o := range s.Objects {
		key := ""
		if o.Key {
			key = " (key)"
		}
		fmt.Fprintf(w, "  %s%s\n", o.FullName, key)
		for _, t := range o.Tracks {
			fmt.Fprintf(w, "    %-10s %5d samples  [%.3f, %.3f]\n", t.Kind, t.Samples, t.Earliest, t.Latest)
		}
	}
}

func inspectLog(ctx context.Context, w io.Writer, store storage.LogStore, name string) error {
	text, err := store.Read(ctx, name)
	if err != nil {
		return err
	}
	s, err := summarize(name, text)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	printSummary(w, s)
	return nil
}

func runInspect(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	e, err := openEnv(ctx, cfg)
	if err != nil {
		return err
	}
	defer e.Close(ctx)

	names := args
	if len(names) == 0 {
		if names, err = e.store.List(ctx); err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var failed []string
	for _, name := range names {
		if err := inspectLog(ctx, out, e.store, name); err != nil {
			logging.Error("inspect: %v", err)
			failed = append(failed, name)
		}
	}

	if inspectWatch {
		return watchLogs(ctx, out, e.store, names)
	}
	if len(failed) > 0 {
		return fmt.Errorf("не удалось разобрать: %s", strings.Join(failed, ", "))
	}
	return nil
}

// watchLogs печатает сводку лога заново после каждого изменения его файла
// до SIGINT/SIGTERM. Пустой names означает все логи каталога.
func watchLogs(ctx context.Context, w io.Writer, store storage.LogStore, names []string) error {
	files, ok := store.(*storage.FileStore)
	if !ok {
		return fmt.Errorf("--watch поддерживается только для storage.backend=file")
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	watcher, err := newLogWatcher(files.Dir(), names)
	if err != nil {
		return err
	}
	defer watcher.Stop()

	fmt.Fprintf(w, "Watching %s (Ctrl+C to stop)\n", files.Dir())
	for {
		select {
		case <-ctx.Done():
			return nil
		case name := <-watcher.Changes():
			if err := inspectLog(ctx, w, store, name); err != nil {
				logging.Warn("inspect: %v", err)
			}
		}
	}
}
