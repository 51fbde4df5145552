package couple

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ coupleRepo = &coupleRepoMock{}

type coupleRepoMock struct {
	CreateFunc                   func(ctx context.Context, c *domain.Couple) (*domain.Couple, error)
	GetActiveByCodeForUpdateFunc func(ctx context.Context, code string) (*domain.Couple, error)
	GetByIDFunc                  func(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
	GetByIDForUpdateFunc         func(ctx context.Context, id uuid.UUID) (*domain.Couple, error)
	ListActiveIDsFunc            func(ctx context.Context) ([]uuid.UUID, error)
	UpdateFunc                   func(ctx context.Context, c *domain.Couple) (*domain.Couple, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			C   *domain.Couple
		}
		GetActiveByCodeForUpdate []struct {
			Ctx  context.Context
			Code string
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		GetByIDForUpdate []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		ListActiveIDs []struct {
			Ctx context.Context
		}
		Update []struct {
			Ctx context.Context
			C   *domain.Couple
		}
	}
	lockCreate                   sync.RWMutex
	lockGetActiveByCodeForUpdate sync.RWMutex
	lockGetByID                  sync.RWMutex
	lockGetByIDForUpdate         sync.RWMutex
	lockListActiveIDs            sync.RWMutex
	lockUpdate                   sync.RWMutex
}

func (mock *coupleRepoMock) Create(ctx context.Context, c *domain.Couple) (*domain.Couple, error) {
	if mock.CreateFunc == nil {
		panic("coupleRepoMock.CreateFunc: method is nil but coupleRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		C   *domain.Couple
	}{
		Ctx: ctx,
		C:   c,
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, c)
}

func (mock *coupleRepoMock) CreateCalls() []struct {
	Ctx context.Context
	C   *domain.Couple
} {
	var calls []struct {
		Ctx context.Context
		C   *domain.Couple
	}
	mock.lockCreate.RLock()
	calls = mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *coupleRepoMock) GetActiveByCodeForUpdate(ctx context.Context, code string) (*domain.Couple, error) {
	if mock.GetActiveByCodeForUpdateFunc == nil {
		panic("coupleRepoMock.GetActiveByCodeForUpdateFunc: method is nil but coupleRepo.GetActiveByCodeForUpdate was just called")
	}
	callInfo := struct {
		Ctx  context.Context
		Code string
	}{
		Ctx:  ctx,
		Code: code,
	}
	mock.lockGetActiveByCodeForUpdate.Lock()
	mock.calls.GetActiveByCodeForUpdate = append(mock.calls.GetActiveByCodeForUpdate, callInfo)
	mock.lockGetActiveByCodeForUpdate.Unlock()
	return mock.GetActiveByCodeForUpdateFunc(ctx, code)
}

func (mock *coupleRepoMock) GetActiveByCodeForUpdateCalls() []struct {
	Ctx  context.Context
	Code string
} {
	var calls []struct {
		Ctx  context.Context
		Code string
	}
	mock.lockGetActiveByCodeForUpdate.RLock()
	calls = mock.calls.GetActiveByCodeForUpdate
	mock.lockGetActiveByCodeForUpdate.RUnlock()
	return calls
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

func (mock *coupleRepoMock) ListActiveIDs(ctx context.Context) ([]uuid.UUID, error) {
	if mock.ListActiveIDsFunc == nil {
		panic("coupleRepoMock.ListActiveIDsFunc: method is nil but coupleRepo.ListActiveIDs was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockListActiveIDs.Lock()
	mock.calls.ListActiveIDs = append(mock.calls.ListActiveIDs, callInfo)
	mock.lockListActiveIDs.Unlock()
	return mock.ListActiveIDsFunc(ctx)
}

func (mock *coupleRepoMock) ListActiveIDsCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockListActiveIDs.RLock()
	calls = mock.calls.ListActiveIDs
	mock.lockListActiveIDs.RUnlock()
	return calls
}

func (mock *coupleRepoMock) Update(ctx context.Context, c *domain.Couple) (*domain.Couple, error) {
	if mock.UpdateFunc == nil {
		panic("coupleRepoMock.UpdateFunc: method is nil but coupleRepo.Update was just called")
	}
	callInfo := struct {
		Ctx context.Context
		C   *domain.Couple
	}{
		Ctx: ctx,
		C:   c,
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, c)
}

func (mock *coupleRepoMock) UpdateCalls() []struct {
	Ctx context.Context
	C   *domain.Couple
} {
	var calls []struct {
		Ctx context.Context
		C   *domain.Couple
	}
	mock.lockUpdate.RLock()
	calls = mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}
