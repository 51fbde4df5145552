package couple

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ ruleRepo = &ruleRepoMock{}

type ruleRepoMock struct {
	CountFunc       func(ctx context.Context, coupleID uuid.UUID, activeOnly bool) (int, error)
	CreateBatchFunc func(ctx context.Context, rules []domain.Rule) ([]domain.Rule, error)

	calls struct {
		Count []struct {
			Ctx        context.Context
			CoupleID   uuid.UUID
			ActiveOnly bool
		}
		CreateBatch []struct {
			Ctx   context.Context
			Rules []domain.Rule
		}
	}
	lockCount       sync.RWMutex
	lockCreateBatch sync.RWMutex
}

func (mock *ruleRepoMock) Count(ctx context.Context, coupleID uuid.UUID, activeOnly bool) (int, error) {
	if mock.CountFunc == nil {
		panic("ruleRepoMock.CountFunc: method is nil but ruleRepo.Count was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		CoupleID   uuid.UUID
		ActiveOnly bool
	}{
		Ctx:        ctx,
		CoupleID:   coupleID,
		ActiveOnly: activeOnly,
	}
	mock.lockCount.Lock()
	mock.calls.Count = append(mock.calls.Count, callInfo)
	mock.lockCount.Unlock()
	return mock.CountFunc(ctx, coupleID, activeOnly)
}

func (mock *ruleRepoMock) CountCalls() []struct {
	Ctx        context.Context
	CoupleID   uuid.UUID
	ActiveOnly bool
} {
	var calls []struct {
		Ctx        context.Context
		CoupleID   uuid.UUID
		ActiveOnly bool
	}
	mock.lockCount.RLock()
	calls = mock.calls.Count
	mock.lockCount.RUnlock()
	return calls
}

func (mock *ruleRepoMock) CreateBatch(ctx context.Context, rules []domain.Rule) ([]domain.Rule, error) {
	if mock.CreateBatchFunc == nil {
		panic("ruleRepoMock.CreateBatchFunc: method is nil but ruleRepo.CreateBatch was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Rules []domain.Rule
	}{
		Ctx:   ctx,
		Rules: rules,
	}
	mock.lockCreateBatch.Lock()
	mock.calls.CreateBatch = append(mock.calls.CreateBatch, callInfo)
	mock.lockCreateBatch.Unlock()
	return mock.CreateBatchFunc(ctx, rules)
}

func (mock *ruleRepoMock) CreateBatchCalls() []struct {
	Ctx   context.Context
	Rules []domain.Rule
} {
	var calls []struct {
		Ctx   context.Context
		Rules []domain.Rule
	}
	mock.lockCreateBatch.RLock()
	calls = mock.calls.CreateBatch
	mock.lockCreateBatch.RUnlock()
	return calls
}
