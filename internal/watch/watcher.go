// Package watch regenerates a report when one of its input workbooks
// changes on disk.
package watch

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// DefaultDebounce is how long the watcher waits for a burst of writes to
// settle before running the handler. Spreadsheet editors save in several
// steps (temp file, rename, metadata) and each step is an event.
const DefaultDebounce = 500 * time.Millisecond

// Config lists the files to watch.
type Config struct {
	Files    []string      `json:"files"`
	Debounce time.Duration `json:"debounce"`
}

// Event records one handler run.
type Event struct {
	Time    time.Time `json:"time"`
	Paths   []string  `json:"paths"`
	Status  string    `json:"status"` // "processed", "error"
	Error   string    `json:"error,omitempty"`
	Elapsed string    `json:"elapsed"`
}

// Handler is called with the changed files once their events settle. Runs
// never overlap.
type Handler func(ctx context.Context, changed []string) error

// Watcher monitors input files and runs the handler on changes.
type Watcher struct {
	Config  Config
	Handler Handler

	mu      sync.Mutex
	events  []Event
	files   map[string]bool
	pending map[string]bool
	timer   *time.Timer
	stopped bool
	runs    chan []string
	watcher *fsnotify.Watcher
}

// New creates a watcher for the given files. Missing files are an error:
// a job must point at existing workbooks.
func New(cfg Config, handler Handler) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, errors.New("no file to watch")
	}
	if cfg.Debounce <= 0 {
		cfg.Debounce = DefaultDebounce
	}

	files := make(map[string]bool, len(cfg.Files))
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			return nil, fmt.Errorf("could not resolve %s: %w", f, err)
		}
		files[filepath.Clean(abs)] = true
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("could not create file watcher: %w", err)
	}
	return &Watcher{
		Config:  cfg,
		Handler: handler,
		files:   files,
		pending: make(map[string]bool),
		runs:    make(chan []string, 1),
		watcher: fsw,
	}, nil
}

// Dirs returns the directories holding the watched files. Directories are
// watched instead of the files so that editors replacing a file through a
// rename are still seen.
func (w *Watcher) Dirs() []string {
	seen := make(map[string]bool)
	var dirs []string
	for f := range w.files {
		d := filepath.Dir(f)
		if !seen[d] {
			seen[d] = true
			dirs = append(dirs, d)
		}
	}
	sort.Strings(dirs)
	return dirs
}

// Start watches until ctx is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	log := zerolog.Ctx(ctx)
	for _, d := range w.Dirs() {
		if err := w.watcher.Add(d); err != nil {
			w.watcher.Close()
			return fmt.Errorf("could not watch %s: %w", d, err)
		}
	}
	log.Info().Int("files", len(w.files)).Strs("dirs", w.Dirs()).Msg("watching inputs")

	for {
		select {
		case <-ctx.Done():
			w.stopTimer()
			log.Info().Msg("stopping watcher")
			return w.watcher.Close()
		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("watch error")
		case changed := <-w.runs:
			w.run(ctx, changed)
		}
	}
}

// Matches reports whether path is one of the watched files.
func (w *Watcher) Matches(path string) bool {
	abs, err := filepath.Abs(path)
	if err != nil {
		return false
	}
	return w.files[filepath.Clean(abs)]
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) {
		return
	}
	// Office lock files
	if base := filepath.Base(event.Name); strings.HasPrefix(base, "~$") || strings.HasPrefix(base, ".~") {
		return
	}
	if !w.Matches(event.Name) {
		return
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	abs, _ := filepath.Abs(event.Name)
	w.pending[filepath.Clean(abs)] = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.Config.Debounce, w.flush)
}

// flush hands the settled batch to the Start loop. A batch still waiting to
// run absorbs the new one.
func (w *Watcher) flush() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	changed := make([]string, 0, len(w.pending))
	for p := range w.pending {
		changed = append(changed, p)
	}
	w.pending = make(map[string]bool)
	w.mu.Unlock()
	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	select {
	case w.runs <- changed:
	default:
		// A run is already queued; fold these paths into the next burst.
		w.mu.Lock()
		for _, p := range changed {
			w.pending[p] = true
		}
		w.timer = time.AfterFunc(w.Config.Debounce, w.flush)
		w.mu.Unlock()
	}
}

func (w *Watcher) stopTimer() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stopped = true
	if w.timer != nil {
		w.timer.Stop()
	}
}

func (w *Watcher) run(ctx context.Context, changed []string) {
	log := zerolog.Ctx(ctx)
	start := time.Now()
	evt := Event{Time: start, Paths: changed, Status: "processed"}
	if w.Handler != nil {
		if err := w.Handler(ctx, changed); err != nil {
			evt.Status = "error"
			evt.Error = err.Error()
			log.Error().Err(err).Strs("changed", changed).Msg("regeneration failed")
		} else {
			log.Info().Strs("changed", changed).Dur("elapsed", time.Since(start)).Msg("report regenerated")
		}
	}
	evt.Elapsed = time.Since(start).Round(time.Millisecond).String()

	w.mu.Lock()
	w.events = append(w.events, evt)
	w.mu.Unlock()
}

// Events returns the recorded handler runs.
func (w *Watcher) Events() []Event {
	w.mu.Lock()
	defer w.mu.Unlock()
	events := make([]Event, len(w.events))
	copy(events, w.events)
	return events
}
