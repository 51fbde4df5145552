// Package watcher turns host connectivity and visibility signals into
// cache refreshes, session checks and app locking.
package watcher

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/couplefine/pkg/client/cache"
)

// Event is a host signal passed to Notify.
type Event int

const (
	Online Event = iota + 1
	Offline
	Visible
	Hidden
)

func (e Event) String() string {
	switch e {
	case Online:
		return "online"
	case Offline:
		return "offline"
	case Visible:
		return "visible"
	case Hidden:
		return "hidden"
	}
	return "unknown"
}

// Profile selects the refresh thresholds of a platform.
type Profile int

const (
	Desktop Profile = iota
	Mobile
)

// ErrClosed is returned by Notify after Close.
var ErrClosed = errors.New("watcher: closed")

// Refresher reloads the couple data.
type Refresher interface {
	LoadCoupleData(ctx context.Context) error
	LastSync() time.Time
}

type sessionNotifier interface {
	OnVisible()
}

type locker interface {
	Lock(ctx context.Context) error
}

// Options configures a Watcher. Session and Lock may be nil.
type Options struct {
	Store     *cache.Store
	Refresher Refresher
	Session   sessionNotifier
	Lock      locker
	Logger    *slog.Logger

	Profile Profile
	// MinInterval is the least time between a successful sync and the
	// next event-triggered refresh. Default 30s on desktop, 10s on mobile.
	MinInterval time.Duration
	// PeriodicInterval drives mobile refreshes while visible and online.
	// Default 60s; ignored on desktop.
	PeriodicInterval time.Duration

	Now func() time.Time
}

// Watcher processes events on its own goroutine. Refreshes run in the
// background so a slow load never delays later events.
type Watcher struct {
	opts Options
	log  *slog.Logger
	now  func() time.Time

	events chan Event
	done   chan struct{}
	once   sync.Once
	wg     sync.WaitGroup

	mu      sync.Mutex
	online  bool
	visible bool
	started bool
}

// New creates a Watcher that assumes the host starts online and visible.
func New(opts Options) *Watcher {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.MinInterval <= 0 {
		opts.MinInterval = 30 * time.Second
		if opts.Profile == Mobile {
			opts.MinInterval = 10 * time.Second
		}
	}
	if opts.PeriodicInterval <= 0 {
		opts.PeriodicInterval = 60 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Watcher{
		opts:    opts,
		log:     opts.Logger.With("component", "watcher"),
		now:     opts.Now,
		events:  make(chan Event, 16),
		done:    make(chan struct{}),
		online:  true,
		visible: true,
	}
}

// Start runs the event loop until ctx is done or Close is called.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.started {
		w.mu.Unlock()
		return
	}
	w.started = true
	w.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		defer cancel()
		w.run(ctx)
	}()
}

// Close stops the loop and waits for running refreshes.
func (w *Watcher) Close() {
	w.once.Do(func() { close(w.done) })
	w.wg.Wait()
}

// Notify queues ev for the event loop.
func (w *Watcher) Notify(ev Event) error {
	select {
	case <-w.done:
		return ErrClosed
	default:
	}
	select {
	case w.events <- ev:
		return nil
	case <-w.done:
		return ErrClosed
	}
}

// Online reports the last known connectivity.
func (w *Watcher) Online() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.online
}

// Visible reports the last known visibility.
func (w *Watcher) Visible() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.visible
}

func (w *Watcher) run(ctx context.Context) {
	var tick <-chan time.Time
	if w.opts.Profile == Mobile {
		t := time.NewTicker(w.opts.PeriodicInterval)
		defer t.Stop()
		tick = t.C
	}

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.done:
			return
		case ev := <-w.events:
			w.handle(ctx, ev)
		case <-tick:
			if w.Online() && w.Visible() {
				w.refresh(ctx, "periodic")
			}
		}
	}
}

func (w *Watcher) handle(ctx context.Context, ev Event) {
	w.log.Debug("host event", slog.String("event", ev.String()))

	switch ev {
	case Online, Offline:
		online := ev == Online
		w.mu.Lock()
		w.online = online
		w.mu.Unlock()
		if w.opts.Store != nil {
			w.opts.Store.Dispatch(cache.SetOnlineStatus{Online: online})
		}
		if online {
			w.maybeRefresh(ctx, ev)
		}
	case Visible:
		w.mu.Lock()
		w.visible = true
		w.mu.Unlock()
		if w.opts.Session != nil {
			w.opts.Session.OnVisible()
		}
		w.maybeRefresh(ctx, ev)
	case Hidden:
		w.mu.Lock()
		w.visible = false
		w.mu.Unlock()
		if w.opts.Lock != nil {
			if err := w.opts.Lock.Lock(ctx); err != nil {
				w.log.Warn("lock on hide", slog.String("error", err.Error()))
			}
		}
	}
}

// maybeRefresh refreshes unless the last successful sync is more recent
// than MinInterval.
func (w *Watcher) maybeRefresh(ctx context.Context, ev Event) {
	if !w.Online() {
		return
	}
	if last := w.opts.Refresher.LastSync(); !last.IsZero() {
		if since := w.now().Sub(last); since < w.opts.MinInterval {
			w.log.Debug("refresh skipped",
				slog.String("event", ev.String()),
				slog.Duration("since_last_sync", since))
			return
		}
	}
	w.refresh(ctx, ev.String())
}

func (w *Watcher) refresh(ctx context.Context, reason string) {
	w.wg.Add(1)
	go func() {
		defer w.wg.Done()
		if err := w.opts.Refresher.LoadCoupleData(ctx); err != nil && ctx.Err() == nil {
			w.log.Warn("refresh failed",
				slog.String("reason", reason),
				slog.String("error", err.Error()))
		}
	}()
}
