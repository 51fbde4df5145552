package profile

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ coupleRepo = &coupleRepoMock{}

type coupleRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Couple, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockGetByID sync.RWMutex
}

func (mock *coupleRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Couple, error) {
	if mock.GetByIDFunc == nil {
		panic("coupleRepoMock.GetByIDFunc: method is nil but coupleRepo.GetByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockGetByID.Lock()
	mock.calls.GetByID = append(mock.calls.GetByID, callInfo)
	mock.lockGetByID.Unlock()
	return mock.GetByIDFunc(ctx, id)
}

func (mock *coupleRepoMock) GetByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	var calls []struct {
		Ctx context.Context
		ID  uuid.UUID
	}
	mock.lockGetByID.RLock()
	calls = mock.calls.GetByID
	mock.lockGetByID.RUnlock()
	return calls
}
