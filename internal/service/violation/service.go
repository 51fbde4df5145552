package violation

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

type violationRepo interface {
	Create(ctx context.Context, v *domain.Violation) (*domain.Violation, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Violation, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.ViolationUpdate, expectedVersion *int64) (*domain.Violation, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Violation, error)
	List(ctx context.Context, coupleID uuid.UUID, f domain.ViolationFilter) (*domain.ViolationPage, error)
	TotalsByViolator(ctx context.Context, coupleID uuid.UUID) ([]domain.UserTotal, error)
}

type ruleRepo interface {
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
}

type coupleRepo interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
	AddBalance(ctx context.Context, id uuid.UUID, delta int64) (*domain.Couple, error)
}

type membership interface {
	Current(ctx context.Context) (uuid.UUID, *domain.Couple, error)
}

type txManager interface {
	RunInTx(ctx context.Context, fn func(ctx context.Context) error) error
	AfterCommit(ctx context.Context, fn func())
}

type publisher interface {
	Publish(ctx context.Context, ev domain.ChangeEvent) error
}

// Service records violations and keeps the couple balance in step with them.
// Every balance change runs in the transaction that changes the violation.
type Service struct {
	log        *slog.Logger
	violations violationRepo
	rules      ruleRepo
	couples    coupleRepo
	members    membership
	tx         txManager
	pub        publisher
	now        func() time.Time
}

// NewService creates a new violation service instance.
func NewService(
	logger *slog.Logger,
	violations violationRepo,
	rules ruleRepo,
	couples coupleRepo,
	members membership,
	tx txManager,
	pub publisher,
) *Service {
	return &Service{
		log:        logger.With("service", "violation"),
		violations: violations,
		rules:      rules,
		couples:    couples,
		members:    members,
		tx:         tx,
		pub:        pub,
		now:        time.Now,
	}
}

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

func violationEvent(typ domain.ChangeType, v, old *domain.Violation) domain.ChangeEvent {
	ev := domain.ChangeEvent{
		Table:    domain.TableViolations,
		Type:     typ,
		CoupleID: v.CoupleID,
		Record:   v,
		Version:  v.Version,
	}
	if old != nil {
		ev.OldRecord = old
	}
	return ev
}

func balanceEvent(c *domain.Couple) domain.ChangeEvent {
	return domain.ChangeEvent{
		Table:    domain.TableCouples,
		Type:     domain.ChangeUpdate,
		CoupleID: c.ID,
		Record:   c,
		Version:  c.Version,
	}
}
