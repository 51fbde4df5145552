package rest

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/violation"
)

var _ violationService = &violationServiceMock{}

type violationServiceMock struct {
	CreateFunc     func(ctx context.Context, input violation.CreateInput) (*domain.Violation, error)
	DeleteFunc     func(ctx context.Context, id uuid.UUID) (*domain.Violation, error)
	ListFunc       func(ctx context.Context, input violation.ListInput) (*domain.ViolationPage, error)
	UpdateFunc     func(ctx context.Context, id uuid.UUID, input violation.UpdateInput) (*domain.Violation, error)
	UserTotalsFunc func(ctx context.Context) ([]domain.UserTotal, error)

	calls struct {
		Create []struct {
			Ctx   context.Context
			Input violation.CreateInput
		}
		Delete []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		List []struct {
			Ctx   context.Context
			Input violation.ListInput
		}
		Update []struct {
			Ctx   context.Context
			ID    uuid.UUID
			Input violation.UpdateInput
		}
		UserTotals []struct {
			Ctx context.Context
		}
	}
	lockCreate     sync.RWMutex
	lockDelete     sync.RWMutex
	lockList       sync.RWMutex
	lockUpdate     sync.RWMutex
	lockUserTotals sync.RWMutex
}

func (mock *violationServiceMock) Create(ctx context.Context, input violation.CreateInput) (*domain.Violation, error) {
	if mock.CreateFunc == nil {
		panic("violationServiceMock.CreateFunc: method is nil but violationService.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input violation.CreateInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, input)
}

func (mock *violationServiceMock) CreateCalls() []struct {
	Ctx   context.Context
	Input violation.CreateInput
} {
	var calls []struct {
		Ctx   context.Context
		Input violation.CreateInput
	}
	mock.lockCreate.RLock()
	calls = mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *violationServiceMock) Delete(ctx context.Context, id uuid.UUID) (*domain.Violation, error) {
	if mock.DeleteFunc == nil {
		panic("violationServiceMock.DeleteFunc: method is nil but violationService.Delete was just called")
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

func (mock *violationServiceMock) DeleteCalls() []struct {
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

func (mock *violationServiceMock) List(ctx context.Context, input violation.ListInput) (*domain.ViolationPage, error) {
	if mock.ListFunc == nil {
		panic("violationServiceMock.ListFunc: method is nil but violationService.List was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input violation.ListInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, input)
}

func (mock *violationServiceMock) ListCalls() []struct {
	Ctx   context.Context
	Input violation.ListInput
} {
	var calls []struct {
		Ctx   context.Context
		Input violation.ListInput
	}
	mock.lockList.RLock()
	calls = mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *violationServiceMock) Update(ctx context.Context, id uuid.UUID, input violation.UpdateInput) (*domain.Violation, error) {
	if mock.UpdateFunc == nil {
		panic("violationServiceMock.UpdateFunc: method is nil but violationService.Update was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		ID    uuid.UUID
		Input violation.UpdateInput
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

func (mock *violationServiceMock) UpdateCalls() []struct {
	Ctx   context.Context
	ID    uuid.UUID
	Input violation.UpdateInput
} {
	var calls []struct {
		Ctx   context.Context
		ID    uuid.UUID
		Input violation.UpdateInput
	}
	mock.lockUpdate.RLock()
	calls = mock.calls.Update
	mock.lockUpdate.RUnlock()
	return calls
}

func (mock *violationServiceMock) UserTotals(ctx context.Context) ([]domain.UserTotal, error) {
	if mock.UserTotalsFunc == nil {
		panic("violationServiceMock.UserTotalsFunc: method is nil but violationService.UserTotals was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockUserTotals.Lock()
	mock.calls.UserTotals = append(mock.calls.UserTotals, callInfo)
	mock.lockUserTotals.Unlock()
	return mock.UserTotalsFunc(ctx)
}

func (mock *violationServiceMock) UserTotalsCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockUserTotals.RLock()
	calls = mock.calls.UserTotals
	mock.lockUserTotals.RUnlock()
	return calls
}
