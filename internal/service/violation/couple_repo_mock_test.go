package violation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ coupleRepo = &coupleRepoMock{}

type coupleRepoMock struct {
	AddBalanceFunc       func(ctx context.Context, id uuid.UUID, delta int64) (*domain.Couple, error)
	GetByIDForUpdateFunc func(ctx context.Context, id uuid.UUID) (*domain.Couple, error)

	calls struct {
		AddBalance []struct {
			Ctx   context.Context
			ID    uuid.UUID
			Delta int64
		}
		GetByIDForUpdate []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockAddBalance       sync.RWMutex
	lockGetByIDForUpdate sync.RWMutex
}

func (mock *coupleRepoMock) AddBalance(ctx context.Context, id uuid.UUID, delta int64) (*domain.Couple, error) {
	if mock.AddBalanceFunc == nil {
		panic("coupleRepoMock.AddBalanceFunc: method is nil but coupleRepo.AddBalance was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		ID    uuid.UUID
		Delta int64
	}{
		Ctx:   ctx,
		ID:    id,
		Delta: delta,
	}
	mock.lockAddBalance.Lock()
	mock.calls.AddBalance = append(mock.calls.AddBalance, callInfo)
	mock.lockAddBalance.Unlock()
	return mock.AddBalanceFunc(ctx, id, delta)
}

func (mock *coupleRepoMock) AddBalanceCalls() []struct {
	Ctx   context.Context
	ID    uuid.UUID
	Delta int64
} {
	var calls []struct {
		Ctx   context.Context
		ID    uuid.UUID
		Delta int64
	}
	mock.lockAddBalance.RLock()
	calls = mock.calls.AddBalance
	mock.lockAddBalance.RUnlock()
	return calls
}

func (mock *coupleRepoMock) GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.Couple, error) {
	if mock.GetByIDForUpdateFunc == nil {
		panic("coupleRepoMock.GetByIDForUpdateFunc: method is nil but coupleRepo.GetByIDForUpdate was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockGetByIDForUpdate.Lock()
	mock.calls.GetByIDForUpdate = append(mock.calls.GetByIDForUpdate, callInfo)
	mock.lockGetByIDForUpdate.Unlock()
	return mock.GetByIDForUpdateFunc(ctx, id)
}

func (mock *coupleRepoMock) GetByIDForUpdateCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	var calls []struct {
		Ctx context.Context
		ID  uuid.UUID
	}
	mock.lockGetByIDForUpdate.RLock()
	calls = mock.calls.GetByIDForUpdate
	mock.lockGetByIDForUpdate.RUnlock()
	return calls
}
