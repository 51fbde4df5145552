package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"sync"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/robfig/cron/v3"

	postgres "github.com/heartmarshall/couplefine/internal/adapter/postgres"
	couplerepo "github.com/heartmarshall/couplefine/internal/adapter/postgres/couple"
	rewardrepo "github.com/heartmarshall/couplefine/internal/adapter/postgres/reward"
	rulerepo "github.com/heartmarshall/couplefine/internal/adapter/postgres/rule"
	"github.com/heartmarshall/couplefine/internal/adapter/postgres/token"
	userrepo "github.com/heartmarshall/couplefine/internal/adapter/postgres/user"
	violationrepo "github.com/heartmarshall/couplefine/internal/adapter/postgres/violation"
	redisbroker "github.com/heartmarshall/couplefine/internal/adapter/redis"
	"github.com/heartmarshall/couplefine/internal/auth"
	"github.com/heartmarshall/couplefine/internal/config"
	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/metrics"
	"github.com/heartmarshall/couplefine/internal/realtime"
	authsvc "github.com/heartmarshall/couplefine/internal/service/auth"
	"github.com/heartmarshall/couplefine/internal/service/couple"
	"github.com/heartmarshall/couplefine/internal/service/membership"
	"github.com/heartmarshall/couplefine/internal/service/profile"
	"github.com/heartmarshall/couplefine/internal/service/reward"
	"github.com/heartmarshall/couplefine/internal/service/rule"
	"github.com/heartmarshall/couplefine/internal/service/violation"
	"github.com/heartmarshall/couplefine/internal/transport/middleware"
	"github.com/heartmarshall/couplefine/internal/transport/rest"
)

// Server owns every long-lived component of the API process.
type Server struct {
	cfg *config.Config
	log *slog.Logger

	pool    *pgxpool.Pool
	broker  realtime.Broker
	hub     *realtime.Hub
	metrics *metrics.Metrics
	limiter *middleware.RateLimiter
	handler http.Handler

	auth    *authsvc.Service
	couples *couple.Service
}

// NewServer connects to the database (and redis when configured) and
// assembles repositories, services, the realtime hub and the router.
func NewServer(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Server, error) {
	pool, err := postgres.NewPool(ctx, cfg.Database)
	if err != nil {
		return nil, err
	}
	return newServer(ctx, cfg, logger, pool)
}

// NewServerWithPool is NewServer over an existing pool. The pool is closed
// by Close.
func NewServerWithPool(ctx context.Context, cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool) (*Server, error) {
	return newServer(ctx, cfg, logger, pool)
}

func newServer(ctx context.Context, cfg *config.Config, logger *slog.Logger, pool *pgxpool.Pool) (*Server, error) {
	s := &Server{cfg: cfg, log: logger, pool: pool, metrics: metrics.New()}

	extra := map[string]rest.Pinger{}
	switch cfg.Realtime.Broker {
	case config.BrokerRedis:
		b, err := redisbroker.New(ctx, cfg.Redis, cfg.Realtime.SendBuffer, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("app: redis broker: %w", err)
		}
		s.broker = b
		extra["redis"] = b
	default:
		s.broker = realtime.NewMemoryBroker(cfg.Realtime.SendBuffer)
	}

	txm := postgres.NewTxManager(pool)
	users := userrepo.New(pool)
	tokens := token.New(pool)
	couples := couplerepo.New(pool)
	rules := rulerepo.New(pool)
	violations := violationrepo.New(pool)
	rewards := rewardrepo.New(pool)

	members := membership.NewResolver(users, couples)
	pub := realtime.NewPublisher(s.broker, s.metrics)
	jwt := auth.NewJWTManager(cfg.Auth.JWTSecret, cfg.Auth.JWTIssuer, cfg.Auth.AccessTokenTTL)

	s.auth = authsvc.NewService(logger, users, tokens, txm, jwt, authsvc.NewLogMailer(logger), cfg.Auth)
	s.couples = couple.NewService(logger, couples, users, rules, rewards, violations, members, txm, pub)
	profiles := profile.NewService(logger, users, couples, txm, pub)
	ruleSvc := rule.NewService(logger, rules, members, txm, pub)
	violationSvc := violation.NewService(logger, violations, rules, couples, members, txm, pub)
	rewardSvc := reward.NewService(logger, rewards, couples, members, txm, pub)

	s.hub = realtime.NewHub(logger, s.broker, members, s.metrics, realtime.Options{
		HeartbeatTimeout: cfg.Realtime.HeartbeatTimeout,
		WriteTimeout:     cfg.Realtime.WriteTimeout,
		SendBuffer:       cfg.Realtime.SendBuffer,
		CheckOrigin:      originChecker(cfg.CORS.Origins()),
	})

	if cfg.RateLimit.Enabled {
		s.limiter = middleware.NewRateLimiter(max(1, int(cfg.RateLimit.RPS*60)), cfg.RateLimit.Burst, time.Minute)
	}

	opts := rest.RouterOptions{
		Logger:      logger,
		CORS:        cfg.CORS,
		Tokens:      s.auth,
		Profiles:    users,
		AuthLimiter: s.limiter,
	}
	if cfg.Metrics.Enabled {
		opts.Metrics = s.metrics
		opts.MetricsPath = cfg.Metrics.Path
	}

	s.handler = rest.NewRouter(rest.Handlers{
		Health:    rest.NewHealthHandler(pool, Version, extra),
		Auth:      rest.NewAuthHandler(s.auth, logger),
		Profile:   rest.NewProfileHandler(profiles, logger),
		Couple:    rest.NewCoupleHandler(s.couples, logger),
		Rule:      rest.NewRuleHandler(ruleSvc, logger),
		Violation: rest.NewViolationHandler(violationSvc, logger),
		Reward:    rest.NewRewardHandler(rewardSvc, logger),
		Realtime:  rest.NewRealtimeHandler(s.auth, s.hub, logger),
	}, opts)

	return s, nil
}

// Handler returns the HTTP API.
func (s *Server) Handler() http.Handler { return s.handler }

// Pool returns the database pool.
func (s *Server) Pool() *pgxpool.Pool { return s.pool }

// Start runs the realtime hub and, when enabled, the token cleanup
// schedule. The returned function stops both and waits for them.
func (s *Server) Start(ctx context.Context) (stop func(), err error) {
	ctx, cancel := context.WithCancel(ctx)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := s.hub.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.log.Error("realtime hub stopped", slog.String("error", err.Error()))
		}
	}()

	var c *cron.Cron
	if s.cfg.Cleanup.Enabled {
		c = cron.New()
		if _, err := c.AddFunc(s.cfg.Cleanup.Schedule, func() { s.runCleanup(ctx) }); err != nil {
			cancel()
			wg.Wait()
			return nil, fmt.Errorf("app: schedule cleanup: %w", err)
		}
		c.Start()
		s.log.Info("token cleanup scheduled", slog.String("schedule", s.cfg.Cleanup.Schedule))
	}

	return func() {
		if c != nil {
			<-c.Stop().Done()
		}
		cancel()
		wg.Wait()
	}, nil
}

// Run serves HTTP on the configured address until ctx is cancelled, then
// shuts down gracefully within Server.ShutdownTimeout.
func (s *Server) Run(ctx context.Context) error {
	stop, err := s.Start(ctx)
	if err != nil {
		return err
	}
	defer stop()

	srv := &http.Server{
		Addr:         s.cfg.Server.Addr(),
		Handler:      s.handler,
		ReadTimeout:  s.cfg.Server.ReadTimeout,
		WriteTimeout: s.cfg.Server.WriteTimeout,
		IdleTimeout:  s.cfg.Server.IdleTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		s.log.Info("http server listening", slog.String("addr", srv.Addr))
		serveErr <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("app: serve: %w", err)
		}
		return nil
	}

	s.log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("app: shutdown: %w", err)
	}
	return nil
}

// CleanupTokens deletes expired and revoked refresh tokens once.
func (s *Server) CleanupTokens(ctx context.Context) (int, error) {
	n, err := s.auth.CleanupExpiredTokens(ctx)
	if err != nil {
		return 0, err
	}
	s.metrics.TokensCleaned(n)
	return n, nil
}

// Reconcile checks every active couple's balance against its ledger.
func (s *Server) Reconcile(ctx context.Context) ([]domain.ReconcileReport, error) {
	return s.couples.ReconcileAll(ctx)
}

func (s *Server) runCleanup(ctx context.Context) {
	n, err := s.CleanupTokens(ctx)
	if err != nil {
		s.log.Error("token cleanup failed", slog.String("error", err.Error()))
		return
	}
	s.log.Info("token cleanup done", slog.Int("deleted", n))
}

// Close releases the limiter, broker and pool.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
	if err := s.broker.Close(); err != nil && !errors.Is(err, realtime.ErrBrokerClosed) {
		s.log.Warn("close broker", slog.String("error", err.Error()))
	}
	s.pool.Close()
}

func originChecker(origins []string) func(*http.Request) bool {
	if len(origins) == 0 || slices.Contains(origins, "*") {
		return nil
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || slices.Contains(origins, origin)
	}
}
