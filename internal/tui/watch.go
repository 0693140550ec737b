package tui

import (
	"io/fs"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/fsnotify/fsnotify"
)

// changedMsg reports that something under the watched root changed.
type changedMsg struct{ path string }

// watchErrMsg reports a watcher failure; the browser keeps running.
type watchErrMsg struct{ err error }

// Watcher watches a directory tree recursively.
type Watcher struct {
	w *fsnotify.Watcher
}

// NewWatcher adds a watch for root and every directory below it.
func NewWatcher(root string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil // skip unreadable entries
		}
		if d.IsDir() {
			return w.Add(path)
		}
		return nil
	}); err != nil {
		w.Close()
		return nil, err
	}
	return &Watcher{w: w}, nil
}

// Close stops watching.
func (w *Watcher) Close() error { return w.w.Close() }

// next blocks until the next relevant event and reports it as a message.
func (w *Watcher) next() tea.Cmd {
	return func() tea.Msg {
		for {
			select {
			case event, ok := <-w.w.Events:
				if !ok {
					return nil
				}
				if event.Has(fsnotify.Chmod) && !event.Has(fsnotify.Write) {
					continue
				}
				// New directories need their own watch.
				if event.Has(fsnotify.Create) {
					if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
						_ = w.w.Add(event.Name)
					}
				}
				return changedMsg{path: event.Name}
			case err, ok := <-w.w.Errors:
				if !ok {
					return nil
				}
				return watchErrMsg{err: err}
			}
		}
	}
}
