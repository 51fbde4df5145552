package rule

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ ruleRepo = &ruleRepoMock{}

type ruleRepoMock struct {
	CreateFunc  func(ctx context.Context, r *domain.Rule) (*domain.Rule, error)
	GetByIDFunc func(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
	ListFunc    func(ctx context.Context, coupleID uuid.UUID, activeOnly bool) ([]domain.Rule, error)
	UpdateFunc  func(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, expectedVersion *int64) (*domain.Rule, error)

	calls struct {
		Create []struct {
			Ctx context.Context
			R   *domain.Rule
		}
		GetByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		List []struct {
			Ctx        context.Context
			CoupleID   uuid.UUID
			ActiveOnly bool
		}
		Update []struct {
			Ctx             context.Context
			ID              uuid.UUID
			Upd             domain.RuleUpdate
			ExpectedVersion *int64
		}
	}
	lockCreate  sync.RWMutex
	lockGetByID sync.RWMutex
	lockList    sync.RWMutex
	lockUpdate  sync.RWMutex
}

func (mock *ruleRepoMock) Create(ctx context.Context, r *domain.Rule) (*domain.Rule, error) {
	if mock.CreateFunc == nil {
		panic("ruleRepoMock.CreateFunc: method is nil but ruleRepo.Create was just called")
	}
	callInfo := struct {
		Ctx context.Context
		R   *domain.Rule
	}{
		Ctx: ctx,
		R:   r,
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, r)
}

func (mock *ruleRepoMock) CreateCalls() []struct {
	Ctx context.Context
	R   *domain.Rule
} {
	var calls []struct {
		Ctx context.Context
		R   *domain.Rule
	}
	mock.lockCreate.RLock()
	calls = mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
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

func (mock *ruleRepoMock) List(ctx context.Context, coupleID uuid.UUID, activeOnly bool) ([]domain.Rule, error) {
	if mock.ListFunc == nil {
		panic("ruleRepoMock.ListFunc: method is nil but ruleRepo.List was just called")
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
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, coupleID, activeOnly)
}

func (mock *ruleRepoMock) ListCalls() []struct {
	Ctx        context.Context
	CoupleID   uuid.UUID
	ActiveOnly bool
} {
	var calls []struct {
		Ctx        context.Context
		CoupleID   uuid.UUID
		ActiveOnly bool
	}
	mock.lockList.RLock()
	calls = mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *ruleRepoMock) Update(ctx context.Context, id uuid.UUID, upd domain.RuleUpdate, expectedVersion *int64) (*domain.Rule, error) {
	if mock.UpdateFunc == nil {
		panic("ruleRepoMock.UpdateFunc: method is nil but ruleRepo.Update was just called")
	}
	callInfo := struct {
		Ctx             context.Context
		ID              uuid.UUID
		Upd             domain.RuleUpdate
		ExpectedVersion *int64
	}{
		Ctx:             ctx,
		ID:              id,
		Upd:             upd,
		ExpectedVersion: expectedVersion,
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, id, upd, expectedVersion)
}

func (mock *ruleRepoMock) UpdateCalls() []struct {
	Ctx             context.Context
	ID              uuid.UUID
	Upd             domain.RuleUpdate
	ExpectedVersion *int64
} {
	var calls []struct {
		Ctx             context.Context
		ID              uuid.UUID
		Upd             domain.RuleUpdate
		ExpectedVersion *int64
	}
	mock.lockUpdate.RLock()
	calls = mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}
