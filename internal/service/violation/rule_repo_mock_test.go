package violation

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ ruleRepo = &ruleRepoMock{}

type ruleRepoMock struct {
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Rule, error)

	calls struct {
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
	}
	lockGetByID sync.RWMutex
}

func (mock *ruleRepoMock) GetByID(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	if mock.GetByIDFunc == nil {
		panic("ruleRepoMock.GetByIDFunc: method is nil but ruleRepo.GetByID was just called")
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

func (mock *ruleRepoMock) GetByIDCalls() []struct {
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
