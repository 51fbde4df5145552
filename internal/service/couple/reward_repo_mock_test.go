package couple

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ rewardRepo = &rewardRepoMock{}

type rewardRepoMock struct {
	CountFunc       func(ctx context.Context, coupleID uuid.UUID, openOnly bool) (int, error)
	CreateBatchFunc func(ctx context.Context, rewards []domain.Reward) ([]domain.Reward, error)

	calls struct {
		Count []struct {
			Ctx      context.Context
			CoupleID uuid.UUID
			OpenOnly bool
		}
		CreateBatch []struct {
			Ctx     context.Context
			Rewards []domain.Reward
		}
	}
	lockCount       sync.RWMutex
	lockCreateBatch sync.RWMutex
}

func (mock *rewardRepoMock) Count(ctx context.Context, coupleID uuid.UUID, openOnly bool) (int, error) {
	if mock.CountFunc == nil {
		panic("rewardRepoMock.CountFunc: method is nil but rewardRepo.Count was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		OpenOnly bool
	}{
		Ctx:      ctx,
		CoupleID: coupleID,
		OpenOnly: openOnly,
	}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, callInfo)
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, coupleID, openOnly)
}

func (mock *rewardRepoMock) CountCalls() []struct {
	Ctx      context.Context
	CoupleID uuid.UUID
	OpenOnly bool
} {
	var calls []struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		OpenOnly bool
	}
	mock.lockCount.RLock()
	calls = mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}

func (mock *rewardRepoMock) CreateBatch(ctx context.Context, rewards []domain.Reward) ([]domain.Reward, error) {
	if mock.CreateBatchFunc == nil {
		panic("rewardRepoMock.CreateBatchFunc: method is nil but rewardRepo.CreateBatch was just called")
	}
	callInfo := struct {
		Ctx     context.Context
		Rewards []domain.Reward
	}{
		Ctx:     ctx,
		Rewards: rewards,
	}
	mock.lockCreateBatch.Lock()
	mock.calls.CreateBatch = append(mock.calls.CreateBatch, callInfo)
	mock.lockCreateBatch.Unlock()
	return mock.CreateBatchFunc(ctx, rewards)
}

func (mock *rewardRepoMock) CreateBatchCalls() []struct {
	Ctx     context.Context
	Rewards []domain.Reward
} {
	var calls []struct {
		Ctx     context.Context
		Rewards []domain.Reward
	}
	mock.lockCreateBatch.RLock()
	calls = mock.calls.CreateBatch
	mock.lockCreateBatch.RUnlock()
	return calls
}
