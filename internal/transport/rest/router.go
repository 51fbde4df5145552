package rest

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/config"
	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/transport/dataloader"
	"github.com/heartmarshall/couplefine/internal/transport/middleware"
	"github.com/heartmarshall/couplefine/pkg/ctxutil"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type profileBatcher interface {
	GetProfilesByIDs(ctx context.Context, ids []uuid.UUID) ([]domain.Profile, error)
}

type httpMetrics interface {
	ObserveHTTP(method, route string, status int, d time.Duration)
	Handler() http.Handler
}

// Handlers groups the REST handlers mounted by NewRouter.
type Handlers struct {
	Health    *HealthHandler
	Auth      *AuthHandler
	Profile   *ProfileHandler
	Couple    *CoupleHandler
	Rule      *RuleHandler
	Violation *ViolationHandler
	Reward    *RewardHandler
	Realtime  *RealtimeHandler
}

// RouterOptions carries the cross-cutting dependencies of the router.
// Metrics and AuthLimiter are optional.
type RouterOptions struct {
	Logger      *slog.Logger
	CORS        config.CORSConfig
	Tokens      tokenValidator
	Profiles    profileBatcher
	Metrics     httpMetrics
	MetricsPath string
	AuthLimiter *middleware.RateLimiter
}

// NewRouter builds the chi router serving the whole API.
func NewRouter(h Handlers, opts RouterOptions) http.Handler {
	r := chi.NewRouter()

	r.Use(chimw.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Recovery(opts.Logger))
	r.Use(middleware.Logger(opts.Logger))
	if opts.Metrics != nil {
		r.Use(middleware.Metrics(opts.Metrics))
	}
	r.Use(middleware.CORS(opts.CORS))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusNotFound, wire.CodeNotFound, "route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, wire.CodeBadRequest, "method not allowed", nil)
	})

	r.Get("/health", h.Health.Health)
	r.Get("/live", h.Health.Live)
	r.Get("/ready", h.Health.Ready)
	if opts.Metrics != nil {
		path := opts.MetricsPath
		if path == "" {
			path = "/metrics"
		}
		r.Method(http.MethodGet, path, opts.Metrics.Handler())
	}

	// The websocket endpoint authenticates its own query token.
	r.Get("/realtime", h.Realtime.Connect)

	r.Group(func(r chi.Router) {
		r.Use(middleware.Auth(opts.Tokens))
		r.Use(dataloader.Middleware(opts.Profiles))

		r.Route("/auth", func(r chi.Router) {
			if opts.AuthLimiter != nil {
				r.Use(opts.AuthLimiter.Handler)
			}
			r.Post("/signup", h.Auth.SignUp)
			r.Post("/signin", h.Auth.SignIn)
			r.Post("/refresh", h.Auth.Refresh)
			r.Post("/signout", h.Auth.SignOut)
			r.Post("/password/reset-request", h.Auth.RequestPasswordReset)
			r.Post("/password/reset", h.Auth.ResetPassword)
		})

		r.Group(func(r chi.Router) {
			r.Use(requireUser)

			r.Get("/me", h.Profile.GetMe)
			r.Patch("/me", h.Profile.UpdateMe)
			r.Get("/me/partner", h.Profile.GetPartner)

			r.Route("/couples", func(r chi.Router) {
				r.Post("/", h.Couple.Create)
				r.Post("/join", h.Couple.Join)
				r.Post("/leave", h.Couple.Leave)
				r.Get("/current", h.Couple.Get)
				r.Patch("/current", h.Couple.Rename)
				r.Get("/current/stats", h.Couple.Stats)
			})

			r.Route("/rules", func(r chi.Router) {
				r.Get("/", h.Rule.List)
				r.Post("/", h.Rule.Create)
				r.Patch("/{id}", h.Rule.Update)
				r.Delete("/{id}", h.Rule.Delete)
			})

			r.Route("/violations", func(r chi.Router) {
				r.Get("/", h.Violation.List)
				r.Post("/", h.Violation.Create)
				r.Get("/totals", h.Violation.Totals)
				r.Patch("/{id}", h.Violation.Update)
				r.Delete("/{id}", h.Violation.Delete)
			})

			r.Route("/rewards", func(r chi.Router) {
				r.Get("/", h.Reward.List)
				r.Post("/", h.Reward.Create)
				r.Post("/{id}/claim", h.Reward.Claim)
				r.Delete("/{id}", h.Reward.Delete)
			})
		})
	})

	return r
}

func requireUser(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := ctxutil.UserIDFromCtx(r.Context()); !ok {
			writeError(w, http.StatusUnauthorized, wire.CodeUnauthorized, "authentication required", nil)
			return
		}
		next.ServeHTTP(w, r)
	})
}
