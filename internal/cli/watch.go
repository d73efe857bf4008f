package cli

import (
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/annel0/session-replay/internal/logging"
)

const watchDebounce = 100 * time.Millisecond

// logWatcher сообщает имена логов, файлы которых изменились в каталоге
type logWatcher struct {
	fsWatcher  *fsnotify.Watcher
	names      map[string]bool // пусто: все логи
	changes    chan string
	done       chan struct{}
	debounce   map[string]*time.Timer
	debounceMu sync.Mutex
}

func newLogWatcher(dir string, names []string) (*logWatcher, error) {
	fsWatcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsWatcher.Add(dir); err != nil {
		_ = fsWatcher.Close()
		return nil, err
	}

	w := &logWatcher{
		fsWatcher: fsWatcher,
		names:     make(map[string]bool, len(names)),
		changes:   make(chan string, 16),
		done:      make(chan struct{}),
		debounce:  make(map[string]*time.Timer),
	}
	for _, n := range names {
		w.names[n] = true
	}

	go w.processEvents()
	return w, nil
}

// Changes канал имен измененных логов
func (w *logWatcher) Changes() <-chan string { return w.changes }

// Stop останавливает наблюдение и отменяет отложенные уведомления
func (w *logWatcher) Stop() {
	close(w.done)
	_ = w.fsWatcher.Close()

	w.debounceMu.Lock()
	for path, t := range w.debounce {
		t.Stop()
		delete(w.debounce, path)
	}
	w.debounceMu.Unlock()
}

func (w *logWatcher) processEvents() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			logging.Warn("watcher: %v", err)
		}
	}
}

// handleEvent FileStore пишет атомарно (tmp + rename), поэтому Rename важен наравне с Write/Create
func (w *logWatcher) handleEvent(event fsnotify.Event) {
	if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) == 0 {
		return
	}
	name := filepath.Base(event.Name)
	if strings.HasPrefix(name, ".") {
		return
	}
	if len(w.names) > 0 && !w.names[name] {
		return
	}

	w.debounceMu.Lock()
	defer w.debounceMu.Unlock()

	if timer, ok := w.debounce[name]; ok {
		timer.Stop()
	}
	w.debounce[name] = time.AfterFunc(watchDebounce, func() {
		w.debounceMu.Lock()
		delete(w.debounce, name)
		w.debounceMu.Unlock()

		select {
		case w.changes <- name:
		case <-w.done:
		}
	})
}
