// Package app assembles the client SDK into one explicitly owned
// application context.
package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"sync"
	"time"

	"github.com/heartmarshall/couplefine/pkg/client/api"
	"github.com/heartmarshall/couplefine/pkg/client/applock"
	"github.com/heartmarshall/couplefine/pkg/client/cache"
	"github.com/heartmarshall/couplefine/pkg/client/realtime"
	"github.com/heartmarshall/couplefine/pkg/client/session"
	"github.com/heartmarshall/couplefine/pkg/client/storage"
	"github.com/heartmarshall/couplefine/pkg/client/syncer"
	"github.com/heartmarshall/couplefine/pkg/client/watcher"
)

// Options configures an App.
type Options struct {
	// ServerURL is the API base URL.
	ServerURL string
	// StatePath is the sqlite file holding tokens and the lock state.
	// Defaults to couplefine.db in the working directory.
	StatePath string
	// Version is the app version; a change wipes local state on Start.
	Version string
	// Lang selects the message language ("ko" or "en").
	Lang string

	Profile    watcher.Profile
	PushPolicy syncer.PushPolicy
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Tuning for tests; zero values keep the package defaults.
	Retry          api.RetryPolicy
	ReconnectDelay time.Duration
}

// App owns every client component. Build it with New, then call Start.
type App struct {
	log *slog.Logger
	tr  *Translator

	kv       *storage.Store
	api      *api.Client
	session  *session.Store
	store    *cache.Store
	realtime *realtime.Client
	sync     *syncer.Syncer
	watcher  *watcher.Watcher
	lock     *applock.Lock

	version string
	unsub   func()

	mu      sync.Mutex
	runCtx  context.Context
	started bool
}

// New opens local storage and builds the components. Nothing talks to the
// server until Start.
func New(ctx context.Context, opts Options) (*App, error) {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.StatePath == "" {
		opts.StatePath = filepath.Join(".", "couplefine.db")
	}

	tr, err := NewTranslator(opts.Lang)
	if err != nil {
		return nil, fmt.Errorf("app: messages: %w", err)
	}

	client, err := api.New(api.Options{
		BaseURL:    opts.ServerURL,
		HTTPClient: opts.HTTPClient,
		Logger:     opts.Logger,
		Retry:      opts.Retry,
	})
	if err != nil {
		return nil, err
	}

	kv, err := storage.Open(opts.StatePath)
	if err != nil {
		return nil, err
	}

	lock, err := applock.New(ctx, kv, opts.Logger)
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("app: lock: %w", err)
	}

	a := &App{
		log:     opts.Logger.With("component", "app"),
		tr:      tr,
		kv:      kv,
		api:     client,
		store:   cache.NewStore(),
		lock:    lock,
		version: opts.Version,
		runCtx:  context.Background(),
	}
	a.session = session.New(session.Options{API: client, Storage: kv, Logger: opts.Logger})

	a.realtime = realtime.New(realtime.Options{
		URL:            client.RealtimeURL(),
		Token:          a.session.AccessToken,
		Logger:         opts.Logger,
		ReconnectDelay: opts.ReconnectDelay,
	})

	a.sync = syncer.New(syncer.Options{
		Store:    a.store,
		API:      client,
		Realtime: a.realtime,
		Users:    a.session,
		Logger:   opts.Logger,
		Policy:   opts.PushPolicy,
	})
	a.watcher = watcher.New(watcher.Options{
		Store:     a.store,
		Refresher: a.sync,
		Session:   a.session,
		Lock:      lock,
		Logger:    opts.Logger,
		Profile:   opts.Profile,
	})

	a.unsub = a.session.Subscribe(a.onSession)
	a.realtime.OnConnectionChange(func(connected bool) {
		a.log.Info("realtime connection", slog.Bool("connected", connected))
	})
	return a, nil
}

// onSession mirrors the session user into the cache and follows sign-in
// and sign-out.
func (a *App) onSession(ev session.Event, snap session.Snapshot) {
	switch ev {
	case session.EventSignedOut:
		a.sync.Unsubscribe()
		a.store.Dispatch(cache.ResetState{}, cache.SetUser{User: nil})
		return
	case session.EventSignedIn:
		a.mu.Lock()
		ctx, started := a.runCtx, a.started
		a.mu.Unlock()
		if started {
			a.realtime.Start(ctx)
		}
	}
	if snap.User != nil {
		a.store.Dispatch(cache.SetUser{User: snap.User})
	}
}

// Start wipes local state after a version change, restores the session,
// loads the couple data and starts the background loops. A failed data
// load is logged; the app keeps running and retries on the next trigger.
func (a *App) Start(ctx context.Context) error {
	a.mu.Lock()
	if a.started {
		a.mu.Unlock()
		return nil
	}
	a.started = true
	a.runCtx = ctx
	a.mu.Unlock()

	if a.version != "" {
		wiped, err := a.kv.CheckAppVersion(ctx, a.version)
		if err != nil {
			return fmt.Errorf("app: version check: %w", err)
		}
		if wiped {
			a.log.Info("app version changed, local state cleared", slog.String("version", a.version))
		}
	}

	if err := a.session.RestoreSession(ctx); err != nil {
		a.log.Warn("session restore failed", slog.String("error", err.Error()))
	}
	a.session.Start(ctx)
	a.watcher.Start(ctx)

	if a.session.Snapshot().State != session.Authenticated {
		return nil
	}
	a.realtime.Start(ctx)
	if err := a.sync.LoadCoupleData(ctx); err != nil {
		a.log.Warn("initial load failed", slog.String("error", err.Error()))
	}
	return nil
}

// SignIn signs in and loads the couple data.
func (a *App) SignIn(ctx context.Context, email, password string) error {
	if err := a.session.SignIn(ctx, email, password); err != nil {
		return err
	}
	return a.sync.LoadCoupleData(ctx)
}

// SignUp registers, signs in and loads the (empty) couple data.
func (a *App) SignUp(ctx context.Context, email, password, displayName string) error {
	if err := a.session.SignUp(ctx, email, password, displayName); err != nil {
		return err
	}
	return a.sync.LoadCoupleData(ctx)
}

// SignOut ends the session and clears the cache.
func (a *App) SignOut(ctx context.Context) error {
	return a.session.SignOut(ctx)
}

// Message returns a localized, user-facing description of err.
func (a *App) Message(err error) string { return a.tr.Message(err) }

func (a *App) API() *api.Client { return a.api }

func (a *App) Session() *session.Store { return a.session }

func (a *App) Store() *cache.Store { return a.store }

func (a *App) Sync() *syncer.Syncer { return a.sync }

func (a *App) Watcher() *watcher.Watcher { return a.watcher }

func (a *App) Lock() *applock.Lock { return a.lock }

func (a *App) Realtime() *realtime.Client { return a.realtime }

// Close stops the background loops and closes local storage.
func (a *App) Close() error {
	a.unsub()
	a.watcher.Close()
	a.sync.Close()
	rtErr := a.realtime.Close()
	a.session.Close()
	return errors.Join(rtErr, a.kv.Close())
}
