package vocabulary

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/fyrsmithlabs/habitlens/internal/insight"
)

// ErrWatcherFailed indicates the filesystem watcher failed to initialize.
var ErrWatcherFailed = errors.New("failed to initialize vocabulary watcher")

// defaultDebounce coalesces the bursts of events editors emit on save.
const defaultDebounce = 100 * time.Millisecond

// Event reports the outcome of a reload. On error Lexicon holds the
// previous lexicon unchanged.
type Event struct {
	Lexicon insight.Lexicon
	Err     error
	At      time.Time
}

// Watcher reloads a vocabulary file when it changes on disk.
type Watcher struct {
	path     string
	base     insight.Lexicon
	debounce time.Duration

	watcher *fsnotify.Watcher
	events  chan Event
	stop    chan struct{}
	once    sync.Once

	mu      sync.Mutex
	current insight.Lexicon
}

// NewWatcher watches path. Reloads apply the file on top of base, so
// vocabularies removed from the file fall back to base.
func NewWatcher(path string, base insight.Lexicon) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolving vocabulary path: %w", err)
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrWatcherFailed, err)
	}
	return &Watcher{
		path:     abs,
		base:     base,
		debounce: defaultDebounce,
		watcher:  fw,
		events:   make(chan Event, 4),
		stop:     make(chan struct{}),
		current:  base,
	}, nil
}

// Start loads the file once and begins watching its directory, which also
// catches editors that save by rename. The initial load error, if any, is
// returned and watching does not start.
func (w *Watcher) Start(ctx context.Context) (insight.Lexicon, error) {
	lex, err := Load(w.path, w.base)
	if err != nil {
		return w.base, err
	}
	w.setCurrent(lex)

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		return lex, fmt.Errorf("watching %s: %w", filepath.Dir(w.path), err)
	}
	go w.run(ctx)
	return lex, nil
}

// Events returns reload outcomes.
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Current returns the last successfully loaded lexicon.
func (w *Watcher) Current() insight.Lexicon {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

// Stop stops watching. It is safe to call more than once.
func (w *Watcher) Stop() {
	w.once.Do(func() {
		close(w.stop)
		_ = w.watcher.Close()
	})
}

func (w *Watcher) setCurrent(lex insight.Lexicon) {
	w.mu.Lock()
	w.current = lex
	w.mu.Unlock()
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.events)

	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-w.stop:
			return
		case <-ctx.Done():
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.emit(ctx, Event{Lexicon: w.Current(), Err: err, At: time.Now()})
		case <-fire:
			fire = nil
			w.emit(ctx, w.reload())
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	if filepath.Clean(ev.Name) != w.path {
		return false
	}
	return ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) reload() Event {
	lex, err := Load(w.path, w.base)
	if err != nil {
		return Event{Lexicon: w.Current(), Err: err, At: time.Now()}
	}
	w.setCurrent(lex)
	return Event{Lexicon: lex, At: time.Now()}
}

func (w *Watcher) emit(ctx context.Context, ev Event) {
	select {
	case w.events <- ev:
	case <-w.stop:
	case <-ctx.Done():
	}
}
