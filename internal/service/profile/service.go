package profile

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// profileRepo defines the profile persistence needed by the profile service.
type profileRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, upd domain.ProfileUpdate) (*domain.Profile, error)
	GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
}

// coupleRepo resolves the caller's partner.
type coupleRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
}

// txManager defines the transaction manager interface needed by profile service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}

// publisher fans committed changes out to realtime subscribers.
type publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// Service implements profile operations for the authenticated user.
type Service struct {
	log      *slog.Logger
	profiles profileRepo
	couples  coupleRepo
	tx       txManager
	pub      publisher
	now      func() time.Time
}

// NewService creates a new profile service instance.
func NewService(
	logger *slog.Logger,
	profiles profileRepo,
	couples coupleRepo,
	tx txManager,
	pub publisher,
) *Service {
	return &Service{
		log:      logger.With("service", "profile"),
		profiles: profiles,
		couples:  couples,
		tx:       tx,
		pub:      pub,
		now:      time.Now,
	}
}

// publish schedules ev for delivery once the surrounding transaction commits.
func (s *Service) publish(ctx context.Context, ev domain.ChangeEvent) {
	s.tx.AfterCommit(ctx, func() {
		ev.CommitAt = s.now().UTC()
		if err := s.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
			s.log.WarnContext(ctx, "publish change failed",
				slog.String("table", ev.Table.String()),
				slog.String("error", err.Error()))
		}
	})
}
