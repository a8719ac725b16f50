package main

import (
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/fsnotify/fsnotify"
)

// Watcher watches the open document for changes with debouncing
type Watcher struct {
	watcher *fsnotify.Watcher
	done    chan struct{}
	mu      sync.Mutex
	timer   *time.Timer
	path    string
	delay   time.Duration
}

func NewWatcher() *Watcher {
	return &Watcher{
		done:  make(chan struct{}),
		delay: 100 * time.Millisecond,
	}
}

func (w *Watcher) Watch(path string, onChange func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	w.watcher = watcher

	if err := watcher.Add(path); err != nil {
		watcher.Close()
		return err
	}
	w.mu.Lock()
	w.path = path
	w.mu.Unlock()

	go func() {
		for {
			select {
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if event.Name != w.current() {
					continue
				}

				// Only react to write events
				if event.Op&fsnotify.Write == fsnotify.Write {
					w.debounce(onChange)
				}

				// Handle file recreation (some editors do this)
				if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 {
					// Re-add the watch after a brief delay
					time.Sleep(w.delay)
					if err := watcher.Add(event.Name); err != nil {
						log.Warn("Re-watch failed", "path", event.Name, "err", err)
						continue
					}
					w.debounce(onChange)
				}

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				log.Error("Watcher error", "err", err)

			case <-w.done:
				return
			}
		}
	}()

	return nil
}

// Switch moves the watch to another file.
func (w *Watcher) Switch(path string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.watcher == nil || path == w.path {
		return nil
	}
	if err := w.watcher.Add(path); err != nil {
		return err
	}
	if w.path != "" {
		_ = w.watcher.Remove(w.path)
	}
	w.path = path
	return nil
}

func (w *Watcher) current() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.path
}

func (w *Watcher) debounce(fn func()) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.timer != nil {
		w.timer.Stop()
	}

	w.timer = time.AfterFunc(w.delay, fn)
}

func (w *Watcher) Close() error {
	close(w.done)
	if w.watcher != nil {
		return w.watcher.Close()
	}
	return nil
}
