package couple

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// coupleRepo defines the couple persistence needed by the couple service.
type coupleRepo interface {
	Create(ctx context.Context, c *domain.Couple) (*domain.Couple, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
	GetActiveByCodeForUpdate(ctx context.Context, code string) (*domain.Couple, error)
	Update(ctx context.Context, c *domain.Couple) (*domain.Couple, error)
	ListActiveIDs(ctx context.Context) ([]uuid.UUID, error)
}

// profileRepo links profiles to couples.
type profileRepo interface {
	GetProfile(ctx context.Context, id uuid.UUID) (*domain.Profile, error)
	SetCouple(ctx context.Context, id uuid.UUID, coupleID *uuid.UUID) (*domain.Profile, error)
}

// ruleRepo is used for default seeding and stats.
type ruleRepo interface {
	Count(ctx context.Context, coupleID uuid.UUID, activeOnly bool) (int, error)
	CreateBatch(ctx context.Context, rules []domain.Rule) ([]domain.Rule, error)
}

// rewardRepo is used for default seeding and stats.
type rewardRepo interface {
	Count(ctx context.Context, coupleID uuid.UUID, openOnly bool) (int, error)
	CreateBatch(ctx context.Context, rewards []domain.Reward) ([]domain.Reward, error)
}

// violationRepo is used for stats and reconciliation.
type violationRepo interface {
	CountSince(ctx context.Context, coupleID uuid.UUID, since time.Time) (int, error)
	List(ctx context.Context, coupleID uuid.UUID, f domain.ViolationFilter) (*domain.ViolationPage, error)
	ListAll(ctx context.Context, coupleID uuid.UUID) ([]domain.Violation, error)
	ForeignRuleRefs(ctx context.Context, coupleID uuid.UUID) ([]uuid.UUID, error)
}

// membership resolves the caller's couple.
type membership interface {
	Current(ctx context.Context) (uuid.UUID, *domain.Couple, error)
}

// txManager defines the transaction manager interface needed by couple service.
type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}

// publisher fans committed changes out to realtime subscribers.
type publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// Service implements couple lifecycle, stats and reconciliation.
type Service struct {
	log        *slog.Logger
	couples    coupleRepo
	profiles   profileRepo
	rules      ruleRepo
	rewards    rewardRepo
	violations violationRepo
	members    membership
	tx         txManager
	pub        publisher
	newCode    func() (string, error)
	now        func() time.Time
}

// NewService creates a new couple service instance.
func NewService(
	logger *slog.Logger,
	couples coupleRepo,
	profiles profileRepo,
	rules ruleRepo,
	rewards rewardRepo,
	violations violationRepo,
	members membership,
	tx txManager,
	pub publisher,
) *Service {
	return &Service{
		log:        logger.With("service", "couple"),
		couples:    couples,
		profiles:   profiles,
		rules:      rules,
		rewards:    rewards,
		violations: violations,
		members:    members,
		tx:         tx,
		pub:        pub,
		newCode:    GenerateCode,
		now:        time.Now,
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

func coupleEvent(typ domain.ChangeType, c, old *domain.Couple) domain.ChangeEvent {
	ev := domain.ChangeEvent{
		Table:    domain.TableCouples,
		Type:     typ,
		CoupleID: c.ID,
		Record:   c,
		Version:  c.Version,
	}
	if old != nil {
		ev.OldRecord = old
	}
	return ev
}

func profileEvent(coupleID uuid.UUID, p *domain.Profile) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:    domain.TableProfiles,
		Type:     domain.ChangeUpdate,
		CoupleID: coupleID,
		Record:   p,
		Version:  p.Version,
	}
}
