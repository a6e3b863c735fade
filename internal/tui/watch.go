package tui

import (
	"path/filepath"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"
)

const watchDebounce = 100 * time.Millisecond

// watcher reports changes to one file. The directory is watched rather than
// the file itself so atomic replaces (rename over the target) are seen.
type watcher struct {
	path    string
	fsw     *fsnotify.Watcher
	changed chan struct{}
	log     logrus.FieldLogger

	mu        sync.Mutex
	debouncer *time.Timer
	done      chan struct{}
}

func newWatcher(path string, log logrus.FieldLogger) (*watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fsw.Add(filepath.Dir(path)); err != nil {
		fsw.Close()
		return nil, err
	}

	w := &watcher{
		path:    filepath.Clean(path),
		fsw:     fsw,
		changed: make(chan struct{}, 1),
		log:     log,
		done:    make(chan struct{}),
	}
	go w.loop()
	return w, nil
}

func (w *watcher) loop() {
	for {
		select {
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if event.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0 {
				w.debounced()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.Warnf("config watcher error: %v", err)
		case <-w.done:
			return
		}
	}
}

func (w *watcher) debounced() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.debouncer = time.AfterFunc(watchDebounce, func() {
		select {
		case w.changed <- struct{}{}:
		default:
		}
	})
}

// wait returns a command that blocks until the next change
func (w *watcher) wait() tea.Cmd {
	return func() tea.Msg {
		select {
		case <-w.changed:
			return ConfigChangedMsg{}
		case <-w.done:
			return nil
		}
	}
}

// Close stops watching
func (w *watcher) Close() error {
	w.mu.Lock()
	if w.debouncer != nil {
		w.debouncer.Stop()
	}
	w.mu.Unlock()
	close(w.done)
	return w.fsw.Close()
}
