package settings

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonathan/slopescout/internal/scoring"
)

// defaultDebounce coalesces the burst of events editors emit for one save
const defaultDebounce = 250 * time.Millisecond

// Watcher rebuilds the snapshot whenever a configuration document changes and hands the
// new snapshot to OnReload. A rebuild that fails is reported to OnError and the caller
// keeps its current snapshot.
type Watcher struct {
	paths    Paths
	watcher  *fsnotify.Watcher
	files    map[string]bool
	debounce time.Duration

	OnReload func(*scoring.Snapshot)
	OnError  func(error)

	stop     chan struct{}
	stopOnce sync.Once
}

// NewWatcher watches the directories that hold the candidate document files. Directories
// are watched rather than files so that atomic rename-on-save is picked up.
func NewWatcher(paths Paths, onReload func(*scoring.Snapshot)) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}

	w := &Watcher{
		paths:    paths,
		watcher:  fw,
		files:    make(map[string]bool),
		debounce: defaultDebounce,
		OnReload: onReload,
		OnError: func(err error) {
			log.Printf("[settings] reload failed, keeping previous configuration: %v", err)
		},
		stop: make(chan struct{}),
	}

	dirs := make(map[string]bool)
	for _, name := range DocumentNames {
		for _, candidate := range paths.Location(name).Candidates() {
			abs, err := filepath.Abs(candidate)
			if err != nil {
				continue
			}
			w.files[abs] = true
			dirs[filepath.Dir(abs)] = true
		}
	}

	for dir := range dirs {
		// Directories that do not exist yet are skipped; documents there fall back to defaults.
		if err := fw.Add(dir); err != nil {
			log.Printf("[settings] not watching %s: %v", dir, err)
		}
	}

	return w, nil
}

// Start processes events in a background goroutine until ctx is done or Stop is called.
func (w *Watcher) Start(ctx context.Context) {
	go w.run(ctx)
}

// Stop ends the watch loop and releases the underlying watcher.
func (w *Watcher) Stop() {
	w.stopOnce.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) run(ctx context.Context) {
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			w.Stop()
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(event) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.reload()
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.OnError(fmt.Errorf("file watcher: %w", err))
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	abs, err := filepath.Abs(event.Name)
	if err != nil {
		return false
	}
	return w.files[abs]
}

func (w *Watcher) reload() {
	snap, err := Load(w.paths)
	if err != nil {
		w.OnError(err)
		return
	}
	log.Printf("[settings] configuration reloaded")
	if w.OnReload != nil {
		w.OnReload(snap)
	}
}
