// Package syncer keeps the client cache in step with the server: full
// loads, mutations that patch the cache on success and realtime pushes.
package syncer

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
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/heartmarshall/couplefine/pkg/client/api"
	"github.com/heartmarshall/couplefine/pkg/client/cache"
	"github.com/heartmarshall/couplefine/pkg/client/realtime"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

// ViolationPageSize is how many violations a full load fetches.
const ViolationPageSize = 50

// Phase is the load lifecycle state.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseLoading
	PhaseReady
	PhaseError
)

func (p Phase) String() string {
	switch p {
	case PhaseIdle:
		return "idle"
	case PhaseLoading:
		return "loading"
	case PhaseReady:
		return "ready"
	case PhaseError:
		return "error"
	}
	return "unknown"
}

// API is the part of the HTTP client the syncer uses.
type API interface {
	CurrentCouple(ctx context.Context) (*wire.Couple, error)
	CreateCouple(ctx context.Context, name string) (*wire.Couple, error)
	JoinCouple(ctx context.Context, code string) (*wire.Couple, error)
	LeaveCouple(ctx context.Context) (string, error)
	RenameCouple(ctx context.Context, name string) (*wire.Couple, error)
	Partner(ctx context.Context) (*wire.Profile, error)

	Rules(ctx context.Context, all bool) ([]wire.Rule, error)
	CreateRule(ctx context.Context, in wire.CreateRuleRequest) (*wire.Rule, error)
	UpdateRule(ctx context.Context, id uuid.UUID, in wire.UpdateRuleRequest) (*wire.Rule, error)
	DeleteRule(ctx context.Context, id uuid.UUID) (*wire.Rule, error)

	Violations(ctx context.Context, q api.ViolationQuery) (*wire.ViolationPage, error)
	CreateViolation(ctx context.Context, in wire.CreateViolationRequest) (*wire.Violation, error)
	UpdateViolation(ctx context.Context, id uuid.UUID, in wire.UpdateViolationRequest) (*wire.Violation, error)
	DeleteViolation(ctx context.Context, id uuid.UUID) error

	Rewards(ctx context.Context, includeAchieved bool) ([]wire.Reward, error)
	CreateReward(ctx context.Context, in wire.CreateRewardRequest) (*wire.Reward, error)
	ClaimReward(ctx context.Context, id uuid.UUID) (*wire.Reward, error)
	DeleteReward(ctx context.Context, id uuid.UUID) error
}

// Users refreshes the signed-in profile after membership changes.
type Users interface {
	RefreshUser(ctx context.Context) error
}

// Options configures a Syncer. Realtime and Users may be nil.
type Options struct {
	Store    *cache.Store
	API      API
	Realtime *realtime.Client
	Users    Users
	Logger   *slog.Logger

	CallTimeout  time.Duration // per request, default 5s
	RefetchDelay time.Duration // default 1s
	Policy       PushPolicy    // default DefaultPushPolicy()

	Now func() time.Time
}

// Syncer owns the load lifecycle and the realtime subscriptions of one
// signed-in user.
type Syncer struct {
	store *cache.Store
	api   API
	rt    *realtime.Client
	users Users
	log   *slog.Logger
	opts  Options
	now   func() time.Time

	flight singleflight.Group

	mu       sync.RWMutex
	phase    Phase
	lastErr  error
	lastSync time.Time
	hasMore  bool

	ctx    context.Context
	cancel context.CancelFunc

	pushMu    sync.Mutex
	coupleID  uuid.UUID
	channels  []*realtime.Channel
	statuses  map[string]realtime.Status
	refetch   *time.Timer
	connected atomic.Bool
}

// New creates a Syncer in PhaseIdle.
func New(opts Options) *Syncer {
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Store == nil {
		opts.Store = cache.NewStore()
	}
	if opts.CallTimeout <= 0 {
		opts.CallTimeout = 5 * time.Second
	}
	if opts.RefetchDelay <= 0 {
		opts.RefetchDelay = time.Second
	}
	if opts.Policy == nil {
		opts.Policy = DefaultPushPolicy()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Syncer{
		store:    opts.Store,
		api:      opts.API,
		rt:       opts.Realtime,
		users:    opts.Users,
		log:      opts.Logger.With("component", "sync"),
		opts:     opts,
		now:      opts.Now,
		ctx:      ctx,
		cancel:   cancel,
		statuses: map[string]realtime.Status{},
	}
}

// Store returns the cache the syncer writes to.
func (s *Syncer) Store() *cache.Store { return s.store }

// Phase returns the current lifecycle phase and the error of the last
// failed load.
func (s *Syncer) Phase() (Phase, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.phase, s.lastErr
}

// LastSync returns when the last load succeeded, or the zero time.
func (s *Syncer) LastSync() time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastSync
}

// Close stops pending refetches and leaves every channel.
func (s *Syncer) Close() {
	s.cancel()
	s.Unsubscribe()
}

func (s *Syncer) call(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, s.opts.CallTimeout)
}

func (s *Syncer) setPhase(p Phase, err error) {
	s.mu.Lock()
	s.phase = p
	s.lastErr = err
	if p == PhaseReady {
		s.lastSync = s.now()
	}
	s.mu.Unlock()
}

// LoadCoupleData replaces the cached couple data with a fresh copy. A call
// made while a load is running waits for that load and shares its result.
func (s *Syncer) LoadCoupleData(ctx context.Context) error {
	ch := s.flight.DoChan("load", func() (any, error) {
		// The shared load must not die with the first caller's context.
		return nil, s.load(context.WithoutCancel(ctx))
	})
	select {
	case res := <-ch:
		return res.Err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (s *Syncer) load(ctx context.Context) error {
	s.setPhase(PhaseLoading, nil)

	couple, err := s.fetchCouple(ctx)
	switch {
	case errors.Is(err, api.ErrNotFound):
		s.store.Dispatch(cache.ResetState{})
		s.Unsubscribe()
		s.setPhase(PhaseReady, nil)
		return nil
	case err != nil:
		s.failLoad(err)
		return fmt.Errorf("sync: load couple: %w", err)
	}

	var (
		rules   []wire.Rule
		page    *wire.ViolationPage
		rewards []wire.Reward
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		cctx, cancel := s.call(gctx)
		defer cancel()
		var err error
		rules, err = s.api.Rules(cctx, false)
		if err != nil {
			return fmt.Errorf("rules: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cctx, cancel := s.call(gctx)
		defer cancel()
		var err error
		page, err = s.api.Violations(cctx, api.ViolationQuery{Limit: ViolationPageSize})
		if err != nil {
			return fmt.Errorf("violations: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		cctx, cancel := s.call(gctx)
		defer cancel()
		var err error
		rewards, err = s.api.Rewards(cctx, true)
		if err != nil {
			return fmt.Errorf("rewards: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		s.failLoad(err)
		return fmt.Errorf("sync: load: %w", err)
	}

	s.store.Dispatch(
		cache.SetCouple{Couple: couple},
		cache.SetRules{Rules: rules},
		cache.SetViolations{Violations: withViolators(page.Data, couple)},
		cache.SetRewards{Rewards: rewards},
	)
	s.mu.Lock()
	s.hasMore = page.HasMore
	s.mu.Unlock()
	s.setPhase(PhaseReady, nil)

	s.log.Debug("couple data loaded",
		slog.String("couple_id", couple.ID.String()),
		slog.Int("rules", len(rules)),
		slog.Int("violations", len(page.Data)),
		slog.Int("rewards", len(rewards)))

	if s.rt != nil {
		s.Subscribe(couple.ID)
	}
	return nil
}

// failLoad records a failed load. An unreachable server or a timeout on any
// call drops the cached couple data (the user stays); other errors leave the
// cache as the previous load left it.
func (s *Syncer) failLoad(err error) {
	if api.IsNetwork(err) || errors.Is(err, context.DeadlineExceeded) {
		s.store.Dispatch(cache.ResetState{})
	}
	s.setPhase(PhaseError, err)
}

// fetchCouple loads the couple and fills in any partner profile the server
// did not embed.
func (s *Syncer) fetchCouple(ctx context.Context) (*wire.Couple, error) {
	cctx, cancel := s.call(ctx)
	defer cancel()
	couple, err := s.api.CurrentCouple(cctx)
	if err != nil {
		return nil, err
	}
	if couple.Partner2ID != nil && (couple.Partner1 == nil || couple.Partner2 == nil) {
		pctx, cancel := s.call(ctx)
		defer cancel()
		partner, err := s.api.Partner(pctx)
		if err != nil {
			s.log.Warn("partner profile unavailable", slog.String("error", err.Error()))
			return couple, nil
		}
		switch partner.ID {
		case couple.Partner1ID:
			couple.Partner1 = partner
		case *couple.Partner2ID:
			couple.Partner2 = partner
		}
	}
	return couple, nil
}

// withViolators attaches the partner snapshot to violations that arrived
// without one.
func withViolators(vs []wire.Violation, c *wire.Couple) []wire.Violation {
	if c == nil {
		return vs
	}
	out := make([]wire.Violation, len(vs))
	for i, v := range vs {
		if v.Violator == nil {
			v.Violator = partnerProfile(c, v.ViolatorUserID)
		}
		out[i] = v
	}
	return out
}

func partnerProfile(c *wire.Couple, id uuid.UUID) *wire.Profile {
	switch {
	case c.Partner1 != nil && c.Partner1.ID == id:
		return c.Partner1
	case c.Partner2 != nil && c.Partner2.ID == id:
		return c.Partner2
	}
	return nil
}

// UserTotalFines returns the signed sum of the user's cached violations.
func (s *Syncer) UserTotalFines(userID uuid.UUID) int64 {
	return cache.UserTotalFines(s.store.State(), userID)
}

// RewardProgress returns the user's progress towards target in percent.
func (s *Syncer) RewardProgress(userID uuid.UUID, target int64) float64 {
	return cache.RewardProgress(s.store.State(), userID, target)
}
