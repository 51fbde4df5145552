package reward

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/heartmarshall/couplefine/internal/domain"
)

type rewardRepo interface {
	Create(ctx context.Context, r *domain.Reward) (*domain.Reward, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
	List(ctx context.Context, coupleID uuid.UUID, includeAchieved bool) ([]domain.Reward, error)
	MarkAchieved(ctx context.Context, id uuid.UUID, at time.Time) (*domain.Reward, error)
	Delete(ctx context.Context, id uuid.UUID) (*domain.Reward, error)
}

type coupleRepo interface {
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
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

// Service manages savings goals and their redemption.
type Service struct {
	log     *slog.Logger
	rewards rewardRepo
	couples coupleRepo
	members membership
	tx      txManager
	pub     publisher
	now     func() time.Time
}

// NewService creates a new reward service instance.
func NewService(
	logger *slog.Logger,
	rewards rewardRepo,
	couples coupleRepo,
	members membership,
	tx txManager,
	pub publisher,
) *Service {
	return &Service{
		log:     logger.With("service", "reward"),
		rewards: rewards,
		couples: couples,
		members: members,
		tx:      tx,
		pub:     pub,
		now:     time.Now,
	}
}

func (s *Service) publish(ctx context.Context, typ domain.ChangeType, r, old *domain.Reward) {
	ev := domain.ChangeEvent{
		Table:    domain.TableRewards,
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
