package rule

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

// ruleRepo defines the rule persistence needed by the rule service.
type ruleRepo interface {
	Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
	List(ctx context.Context, coupleID uuid.UUID, activeOnly bool) ([]domain.Rule, error)
	Update(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, expectedVersion *int64) (*domain.Rule, error)
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

// Service manages the couple's rule list.
type Service struct {
	log     *slog.Logger
	rules   ruleRepo
	members membership
	tx      txManager
	pub     publisher
	now     func() time.Time
}

// NewService creates a new rule service instance.
func NewService(logger *slog.Logger, rules ruleRepo, members membership, tx txManager, pub publisher) *Service {
	return &Service{
		log:     logger.With("service", "rule"),
		rules:   rules,
		members: members,
		tx:      tx,
		pub:     pub,
		now:     time.Now,
	}
}

func (s *Service) publish(ctx context.Context, typ domain.ChangeType, r, old *domain.Rule) {
	ev := domain.ChangeEvent{
		Table:    domain.TableRules,
		Type:     typ,
		CoupleID: r.CoupleID,
		Record:   r,
		Version:  r.Version,
	}
	if old != nil {
		ev.OldRecord = old
	}
	s.tx.AfterCommit(ctx, func() {
		ev.CommitAt = s.now().UTC()
		if err := s.pub.Publish(context.WithoutCancel(ctx), ev); err != nil {
			s.log.WarnContext(ctx, "publish change failed",
				slog.String("table", ev.Table.String()),
				slog.String("error", err.Error()))
		}
	})
}
