package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/rule"
)

var _ ruleService = &ruleServiceMock{}

type ruleServiceMock struct {
	CreateFunc func(ctx context.Context, input rule.CreateInput) (*domain.Rule, error)
	DeleteFunc func(ctx context.Context, id uuid.UUID) (*domain.Rule, error)
	ListFunc   func(ctx context.Context, activeOnly bool) ([]domain.Rule, error)
	UpdateFunc func(ctx context.Context, id uuid.UUID, input rule.UpdateInput) (*domain.Rule, error)

	calls struct {
		Create []struct {
			Ctx   context.Context
			Input rule.CreateInput
		}
		Delete []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		List []struct {
			Ctx        context.Context
			ActiveOnly bool
		}
		Update []struct {
			Ctx   context.Context
			ID    uuid.UUID
			Input rule.UpdateInput
		}
	}
	lockCreate sync.RWMutex
	lockDelete sync.RWMutex
	lockList   sync.RWMutex
	lockUpdate sync.RWMutex
}

func (mock *ruleServiceMock) Create(ctx context.Context, input rule.CreateInput) (*domain.Rule, error) {
	if mock.CreateFunc == nil {
		panic("ruleServiceMock.CreateFunc: method is nil but ruleService.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input rule.CreateInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, input)
}

func (mock *ruleServiceMock) CreateCalls() []struct {
	Ctx   context.Context
	Input rule.CreateInput
} {
	var calls []struct {
		Ctx   context.Context
		Input rule.CreateInput
	}
	mock.lockCreate.RLock()
	calls = mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *ruleServiceMock) Delete(ctx context.Context, id uuid.UUID) (*domain.Rule, error) {
	if mock.DeleteFunc == nil {
		panic("ruleServiceMock.DeleteFunc: method is nil but ruleService.Delete was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockDelete.Lock()
	mock.calls.Delete = append(mock.calls.Delete, callInfo)
	mock.lockDelete.Unlock()
	return mock.DeleteFunc(ctx, id)
}

func (mock *ruleServiceMock) DeleteCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	var calls []struct {
		Ctx context.Context
		ID  uuid.UUID
	}
	mock.lockDelete.RLock()
	calls = mock.calls.Delete
	mock.lockDelete.RUnlock()
	return calls
}

func (mock *ruleServiceMock) List(ctx context.Context, activeOnly bool) ([]domain.Rule, error) {
	if mock.ListFunc == nil {
		panic("ruleServiceMock.ListFunc: method is nil but ruleService.List was just called")
	}
	callInfo := struct {
		Ctx        context.Context
		ActiveOnly bool
	}{
		Ctx:        ctx,
		ActiveOnly: activeOnly,
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, activeOnly)
}

func (mock *ruleServiceMock) ListCalls() []struct {
	Ctx        context.Context
	ActiveOnly bool
} {
	var calls []struct {
		Ctx        context.Context
		ActiveOnly bool
	}
	mock.lockList.RLock()
	calls = mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *ruleServiceMock) Update(ctx context.Context, id uuid.UUID, input rule.UpdateInput) (*domain.Rule, error) {
	if mock.UpdateFunc == nil {
		panic("ruleServiceMock.UpdateFunc: method is nil but ruleService.Update was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		ID    uuid.UUID
		Input rule.UpdateInput
	}{
		Ctx:   ctx,
		ID:    id,
		Input: input,
	}
	mock.lockUpdate.Lock()
	mock.calls.Update = append(mock.calls.Update, callInfo)
	mock.lockUpdate.Unlock()
	return mock.UpdateFunc(ctx, id, input)
}

func (mock *ruleServiceMock) UpdateCalls() []struct {
	Ctx   context.Context
	ID    uuid.UUID
	Input rule.UpdateInput
} {
	var calls []struct {
		Ctx   context.Context
		ID    uuid.UUID
		Input rule.UpdateInput
	}
	mock.lockUpdate.RLock()
	calls = mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}
