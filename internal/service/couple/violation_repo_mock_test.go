package couple

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ violationRepo = &violationRepoMock{}

type violationRepoMock struct {
	CountSinceFunc      func(ctx context.Context, coupleID uuid.UUID, since time.Time) (int, error)
	ForeignRuleRefsFunc func(ctx context.Context, coupleID uuid.UUID) ([]uuid.UUID, error)
	ListFunc            func(ctx context.Context, coupleID uuid.UUID, f domain.ViolationFilter) (*domain.ViolationPage, error)
	ListAllFunc         func(ctx context.Context, coupleID uuid.UUID) ([]domain.Violation, error)

	calls struct {
		CountSince []struct {
			Ctx      context.Context
			CoupleID uuid.UUID
			Since    time.Time
		}
		ForeignRuleRefs []struct {
			Ctx      context.Context
			CoupleID uuid.UUID
		}
		List []struct {
			Ctx      context.Context
			CoupleID uuid.UUID
			F        domain.ViolationFilter
		}
		ListAll []struct {
			Ctx      context.Context
			CoupleID uuid.UUID
		}
	}
	lockCountSince      sync.RWMutex
	lockForeignRuleRefs sync.RWMutex
	lockList            sync.RWMutex
	lockListAll         sync.RWMutex
}

func (mock *violationRepoMock) CountSince(ctx context.Context, coupleID uuid.UUID, since time.Time) (int, error) {
	if mock.CountSinceFunc == nil {
		panic("violationRepoMock.CountSinceFunc: method is nil but violationRepo.CountSince was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		Since    time.Time
	}{
		Ctx:      ctx,
		CoupleID: coupleID,
		Since:    since,
	}
	mock.lockCountSince.Lock()
	mock.calls.CountSince = append(mock.calls.CountSince, callInfo)
	mock.lockCountSince.Unlock()
	return mock.CountSinceFunc(ctx, coupleID, since)
}

func (mock *violationRepoMock) CountSinceCalls() []struct {
	Ctx      context.Context
	CoupleID uuid.UUID
	Since    time.Time
} {
	var calls []struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		Since    time.Time
	}
	mock.lockCountSince.RLock()
	calls = mock.calls.CountSince
	mock.lockCountSince.RUnlock()
	return calls
}

func (mock *violationRepoMock) ForeignRuleRefs(ctx context.Context, coupleID uuid.UUID) ([]uuid.UUID, error) {
	if mock.ForeignRuleRefsFunc == nil {
		panic("violationRepoMock.ForeignRuleRefsFunc: method is nil but violationRepo.ForeignRuleRefs was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		CoupleID uuid.UUID
	}{
		Ctx:      ctx,
		CoupleID: coupleID,
	}
	mock.lockForeignRuleRefs.Lock()
	mock.calls.ForeignRuleRefs = append(mock.calls.ForeignRuleRefs, callInfo)
	mock.lockForeignRuleRefs.Unlock()
	return mock.ForeignRuleRefsFunc(ctx, coupleID)
}

func (mock *violationRepoMock) ForeignRuleRefsCalls() []struct {
	Ctx      context.Context
	CoupleID uuid.UUID
} {
	var calls []struct {
		Ctx      context.Context
		CoupleID uuid.UUID
	}
	mock.lockForeignRuleRefs.RLock()
	calls = mock.calls.ForeignRuleRefs
	mock.lockForeignRuleRefs.RUnlock()
	return calls
}

func (mock *violationRepoMock) List(ctx context.Context, coupleID uuid.UUID, f domain.ViolationFilter) (*domain.ViolationPage, error) {
	if mock.ListFunc == nil {
		panic("violationRepoMock.ListFunc: method is nil but violationRepo.List was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		F        domain.ViolationFilter
	}{
		Ctx:      ctx,
		CoupleID: coupleID,
		F:        f,
	}
	mock.lockList.Lock()
	mock.calls.List = append(mock.calls.List, callInfo)
	mock.lockList.Unlock()
	return mock.ListFunc(ctx, coupleID, f)
}

func (mock *violationRepoMock) ListCalls() []struct {
	Ctx      context.Context
	CoupleID uuid.UUID
	F        domain.ViolationFilter
} {
	var calls []struct {
		Ctx      context.Context
		CoupleID uuid.UUID
		F        domain.ViolationFilter
	}
	mock.lockList.RLock()
	calls = mock.calls.List
	mock.lockList.RUnlock()
	return calls
}

func (mock *violationRepoMock) ListAll(ctx context.Context, coupleID uuid.UUID) ([]domain.Violation, error) {
	if mock.ListAllFunc == nil {
		panic("violationRepoMock.ListAllFunc: method is nil but violationRepo.ListAll was just called")
	}
	callInfo := struct {
		Ctx      context.Context
		CoupleID uuid.UUID
	}{
		Ctx:      ctx,
		CoupleID: coupleID,
	}
	mock.lockListAll.Lock()
	mock.calls.ListAll = append(mock.calls.ListAll, callInfo)
	mock.lockListAll.Unlock()
	return mock.ListAllFunc(ctx, coupleID)
}

func (mock *violationRepoMock) ListAllCalls() []struct {
	Ctx      context.Context
	CoupleID uuid.UUID
} {
	var calls []struct {
		Ctx      context.Context
		CoupleID uuid.UUID
	}
	mock.lockListAll.RLock()
	calls = mock.calls.ListAll
	mock.lockListAll.RUnlock()
	return calls
}
