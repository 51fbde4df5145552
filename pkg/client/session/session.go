// Package session tracks the signed-in user: it persists the token pair,
// restores it on start and refreshes it before it expires.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/pkg/client/api"
	"github.com/heartmarshall/couplefine/pkg/client/storage"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

// State is the session lifecycle state.
type State int

const (
	Unauthenticated State = iota
	Recovering
	Authenticated
	Refreshing
)

func (s State) String() string {
	switch s {
	case Unauthenticated:
		return "unauthenticated"
	case Recovering:
		return "recovering"
	case Authenticated:
		return "authenticated"
	case Refreshing:
		return "refreshing"
	}
	return "unknown"
}

// Event is emitted to subscribers on every session change.
type Event string

const (
	EventInitialSession Event = "INITIAL_SESSION"
	EventSignedIn       Event = "SIGNED_IN"
	EventSignedOut      Event = "SIGNED_OUT"
	EventTokenRefreshed Event = "TOKEN_REFRESHED"
	EventUserUpdated    Event = "USER_UPDATED"
)

// ErrNoSession is returned by calls that need a signed-in user.
var ErrNoSession = errors.New("session: not signed in")

// Tokens is the persisted token pair. ExpiresAt is unix seconds.
type Tokens struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    int64     `json:"expires_at"`
	UserID       uuid.UUID `json:"user_id"`
}

// Expiry returns ExpiresAt as a time.
func (t Tokens) Expiry() time.Time { return time.Unix(t.ExpiresAt, 0) }

// Snapshot is a copy of the session state.
type Snapshot struct {
	State  State
	Tokens *Tokens
	User   *wire.Profile
	// Placeholder is set while User comes from the stored backup.
	Placeholder bool
}

// API is the part of the HTTP client the session uses.
type API interface {
	SignUp(ctx context.Context, in wire.SignUpRequest) (*wire.AuthResponse, error)
	SignIn(ctx context.Context, email, password string) (*wire.AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*wire.AuthResponse, error)
	SignOut(ctx context.Context, refreshToken string) error
	SignOutAll(ctx context.Context) error
	RequestPasswordReset(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, token, newPassword string) error
	Me(ctx context.Context) (*wire.Profile, error)
	UpdateMe(ctx context.Context, in wire.UpdateProfileRequest) (*wire.Profile, error)
	SetAccessToken(token string)
}

type kv interface {
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, keys ...string) error
}

// Options configures a Store.
type Options struct {
	API     API
	Storage kv
	Logger  *slog.Logger

	CallTimeout      time.Duration // default 10s
	RefreshInterval  time.Duration // default 60s
	RefreshThreshold time.Duration // default 5m
	RetryDelay       time.Duration // default 2s

	Now func() time.Time
}

// Store owns the session. It is safe for concurrent use.
type Store struct {
	api   API
	kv    kv
	log   *slog.Logger
	opts  Options
	now   func() time.Time
	inFly atomic.Bool

	mu   sync.RWMutex
	snap Snapshot

	subMu  sync.Mutex
	nextID int
	subs   map[int]func(Event, Snapshot)

	runMu  sync.Mutex
	runCtx context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New creates a Store in the Unauthenticated state.
func New(opts Options) *Store {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 10 * time.Second
	}
	if opts.RefreshInterval <= 0 {
		opts.RefreshInterval = 60 * time.Second
	}
	if opts.RefreshThreshold <= 0 {
		opts.RefreshThreshold = 5 * time.Minute
	}
	if opts.RetryDelay <= 0 {
		opts.RetryDelay = 2 * time.Second
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Store{
		api:    opts.API,
		kv:     opts.Storage,
		log:    opts.Logger.With("component", "session"),
		opts:   opts,
		now:    opts.Now,
		subs:   map[int]func(Event, Snapshot){},
		runCtx: context.Background(),
	}
}

// Snapshot returns the current session.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap
}

// AccessToken returns the current access token or "".
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.Tokens == nil {
		return ""
	}
	return s.snap.Tokens.AccessToken
}

// UserID returns the signed-in user's id.
func (s *Store) UserID() (uuid.UUID, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.snap.User != nil {
		return s.snap.User.ID, true
	}
	if s.snap.Tokens != nil {
		return s.snap.Tokens.UserID, true
	}
	return uuid.Nil, false
}

// Subscribe registers fn for session events. Handlers run synchronously on
// the goroutine that changed the session.
func (s *Store) Subscribe(fn func(Event, Snapshot)) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		delete(s.subs, id)
		s.subMu.Unlock()
	}
}

func (s *Store) emit(ev Event) {
	snap := s.Snapshot()
	s.subMu.Lock()
	subs := make([]func(Event, Snapshot), 0, len(s.subs))
	for _, fn := range s.subs {
		subs = append(subs, fn)
	}
	s.subMu.Unlock()
	for _, fn := range subs {
		fn(ev, snap)
	}
}

func (s *Store) update(fn func(*Snapshot)) {
	s.mu.Lock()
	fn(&s.snap)
	s.mu.Unlock()
}

func (s *Store) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}

// RestoreSession loads the persisted token pair, exchanges it when it is
// close to expiry and loads the profile. Any failure leaves the store
// Unauthenticated with storage cleared. INITIAL_SESSION is always emitted.
func (s *Store) RestoreSession(ctx context.Context) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	defer s.emit(EventInitialSession)

	var tokens Tokens
	ok, err := s.kv.GetJSON(ctx, storage.KeyAuthTokens, &tokens)
	if err != nil || !ok || tokens.RefreshToken == "" {
		s.clear(ctx)
		if err != nil {
			return fmt.Errorf("session: read tokens: %w", err)
		}
		return nil
	}

	var backup wire.Profile
	hasBackup, _ := s.kv.GetJSON(ctx, storage.KeySessionBackup, &backup)
	s.update(func(snap *Snapshot) {
		snap.State = Recovering
		snap.Tokens = &tokens
		if hasBackup && backup.ID == tokens.UserID {
			snap.User = &backup
			snap.Placeholder = true
		}
	})
	s.api.SetAccessToken(tokens.AccessToken)

	if s.expiresSoon(tokens) {
		if _, err := s.exchange(ctx, tokens.RefreshToken); err != nil {
			s.clear(ctx)
			return fmt.Errorf("session: restore: %w", err)
		}
	}

	if err := s.RefreshUser(ctx); err != nil {
		s.clear(ctx)
		return fmt.Errorf("session: restore: %w", err)
	}
	s.update(func(snap *Snapshot) { snap.State = Authenticated })
	return nil
}

// RefreshUser replaces the user with the server profile. A missing profile
// is created with defaults; any other failure falls back to a profile built
// from the access token claims.
func (s *Store) RefreshUser(ctx context.Context) error {
	token := s.AccessToken()
	if token == "" {
		return ErrNoSession
	}

	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	p, err := s.api.Me(ctx)
	if errors.Is(err, api.ErrNotFound) {
		var email string
		if fallback, perr := profileFromToken(token, s.now()); perr == nil {
			email = fallback.Email
		}
		name := defaultDisplayName(email)
		p, err = s.api.UpdateMe(ctx, wire.UpdateProfileRequest{DisplayName: &name})
	}
	if err != nil {
		s.log.WarnContext(ctx, "profile fetch failed, using token claims", slog.String("error", err.Error()))
		fallback, perr := profileFromToken(token, s.now())
		if perr != nil {
			return fmt.Errorf("session: refresh user: %w", errors.Join(err, perr))
		}
		p = fallback
	}

	s.update(func(snap *Snapshot) {
		snap.User = p
		snap.Placeholder = false
	})
	if err := s.kv.SetJSON(ctx, storage.KeySessionBackup, p); err != nil {
		s.log.WarnContext(ctx, "save session backup", slog.String("error", err.Error()))
	}
	s.emit(EventUserUpdated)
	return nil
}

// SignIn authenticates with email and password.
func (s *Store) SignIn(ctx context.Context, email, password string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.api.SignIn(ctx, email, password)
	if err != nil {
		return err
	}
	return s.establish(ctx, resp, EventSignedIn)
}

// SignUp registers and signs in.
func (s *Store) SignUp(ctx context.Context, email, password, displayName string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()

	resp, err := s.api.SignUp(ctx, wire.SignUpRequest{Email: email, Password: password, DisplayName: displayName})
	if err != nil {
		return err
	}
	return s.establish(ctx, resp, EventSignedIn)
}

func (s *Store) establish(ctx context.Context, resp *wire.AuthResponse, ev Event) error {
	tokens := tokensFrom(resp)
	if err := s.kv.SetJSON(ctx, storage.KeyAuthTokens, tokens); err != nil {
		return fmt.Errorf("session: save tokens: %w", err)
	}
	s.api.SetAccessToken(tokens.AccessToken)
	s.update(func(snap *Snapshot) {
		snap.State = Authenticated
		snap.Tokens = &tokens
		snap.User = resp.Profile
		snap.Placeholder = false
	})

	if resp.Profile != nil {
		if err := s.kv.SetJSON(ctx, storage.KeySessionBackup, resp.Profile); err != nil {
			s.log.WarnContext(ctx, "save session backup", slog.String("error", err.Error()))
		}
	} else if err := s.RefreshUser(ctx); err != nil {
		return err
	}
	s.emit(ev)
	return nil
}

// SignOut revokes the refresh token on the server, best effort, and clears
// the local session.
func (s *Store) SignOut(ctx context.Context) error {
	snap := s.Snapshot()
	if snap.Tokens != nil {
		rctx, cancel := s.withTimeout(ctx)
		if err := s.api.SignOut(rctx, snap.Tokens.RefreshToken); err != nil {
			s.log.WarnContext(ctx, "server sign-out failed", slog.String("error", err.Error()))
		}
		cancel()
	}
	s.clear(ctx)
	s.emit(EventSignedOut)
	return nil
}

// SignOutAll revokes every session of the user, then clears the local one.
func (s *Store) SignOutAll(ctx context.Context) error {
	if s.AccessToken() == "" {
		return ErrNoSession
	}
	rctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.api.SignOutAll(rctx); err != nil {
		return err
	}
	s.clear(ctx)
	s.emit(EventSignedOut)
	return nil
}

// RequestPasswordReset asks for a reset mail.
func (s *Store) RequestPasswordReset(ctx context.Context, email string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	return s.api.RequestPasswordReset(ctx, email)
}

// ResetPassword sets a new password. The server revokes existing sessions,
// so a local session is cleared too.
func (s *Store) ResetPassword(ctx context.Context, token, newPassword string) error {
	rctx, cancel := s.withTimeout(ctx)
	defer cancel()
	if err := s.api.ResetPassword(rctx, token, newPassword); err != nil {
		return err
	}
	if s.Snapshot().State != Unauthenticated {
		s.clear(ctx)
		s.emit(EventSignedOut)
	}
	return nil
}

func (s *Store) clear(ctx context.Context) {
	s.api.SetAccessToken("")
	s.update(func(snap *Snapshot) { *snap = Snapshot{State: Unauthenticated} })
	if err := s.kv.Delete(context.WithoutCancel(ctx), storage.KeyAuthTokens, storage.KeySessionBackup); err != nil {
		s.log.WarnContext(ctx, "clear stored session", slog.String("error", err.Error()))
	}
}

// exchange trades refreshToken for a new pair and persists it.
func (s *Store) exchange(ctx context.Context, refreshToken string) (Tokens, error) {
	resp, err := s.api.Refresh(ctx, refreshToken)
	if err != nil {
		return Tokens{}, err
	}
	tokens := tokensFrom(resp)
	if err := s.kv.SetJSON(ctx, storage.KeyAuthTokens, tokens); err != nil {
		return Tokens{}, fmt.Errorf("session: save tokens: %w", err)
	}
	s.api.SetAccessToken(tokens.AccessToken)
	s.update(func(snap *Snapshot) { snap.Tokens = &tokens })
	return tokens, nil
}

func (s *Store) expiresSoon(t Tokens) bool {
	return t.Expiry().Sub(s.now()) <= s.opts.RefreshThreshold
}

func tokensFrom(resp *wire.AuthResponse) Tokens {
	return Tokens{
		AccessToken:  resp.Session.AccessToken,
		RefreshToken: resp.Session.RefreshToken,
		ExpiresAt:    resp.Session.ExpiresAt,
		UserID:       resp.UserID,
	}
}
