package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/couple"
)

var _ coupleService = &coupleServiceMock{}

type coupleServiceMock struct {
	CreateFunc func(ctx context.Context, input couple.CreateInput) (*domain.Couple, error)
	GetFunc    func(ctx context.Context) (*domain.Couple, error)
	JoinFunc   func(ctx context.Context, input couple.JoinInput) (*domain.Couple, error)
	LeaveFunc  func(ctx context.Context) (domain.LeaveOutcome, error)
	RenameFunc func(ctx context.Context, input couple.RenameInput) (*domain.Couple, error)
	StatsFunc  func(ctx context.Context) (*domain.DashboardStats, error)

	calls struct {
		Create []struct {
			Ctx   context.Context
			Input couple.CreateInput
		}
		Get []struct {
			Ctx context.Context
		}
		Join []struct {
			Ctx   context.Context
			Input couple.JoinInput
		}
		Leave []struct {
			Ctx context.Context
		}
		Rename []struct {
			Ctx   context.Context
			Input couple.RenameInput
		}
		Stats []struct {
			Ctx context.Context
		}
	}
	lockCreate sync.RWMutex
	lockGet    sync.RWMutex
	lockJoin   sync.RWMutex
	lockLeave  sync.RWMutex
	lockRename sync.RWMutex
	lockStats  sync.RWMutex
}

func (mock *coupleServiceMock) Create(ctx context.Context, input couple.CreateInput) (*domain.Couple, error) {
	if mock.CreateFunc == nil {
		panic("coupleServiceMock.CreateFunc: method is nil but coupleService.Create was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input couple.CreateInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockCreate.Lock()
	mock.calls.Create = append(mock.calls.Create, callInfo)
	mock.lockCreate.Unlock()
	return mock.CreateFunc(ctx, input)
}

func (mock *coupleServiceMock) CreateCalls() []struct {
	Ctx   context.Context
	Input couple.CreateInput
} {
	var calls []struct {
		Ctx   context.Context
		Input couple.CreateInput
	}
	mock.lockCreate.RLock()
	calls = mock.calls.Create
	mock.lockCreate.RUnlock()
	return calls
}

func (mock *coupleServiceMock) Get(ctx context.Context) (*domain.Couple, error) {
	if mock.GetFunc == nil {
		panic("coupleServiceMock.GetFunc: method is nil but coupleService.Get was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockGet.Lock()
	mock.calls.Get = append(mock.calls.Get, callInfo)
	mock.lockGet.Unlock()
	return mock.GetFunc(ctx)
}

func (mock *coupleServiceMock) GetCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockGet.RLock()
	calls = mock.calls.Get
	mock.lockGet.RUnlock()
	return calls
}

func (mock *coupleServiceMock) Join(ctx context.Context, input couple.JoinInput) (*domain.Couple, error) {
	if mock.JoinFunc == nil {
		panic("coupleServiceMock.JoinFunc: method is nil but coupleService.Join was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input couple.JoinInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockJoin.Lock()
	mock.calls.Join = append(mock.calls.Join, callInfo)
	mock.lockJoin.Unlock()
	return mock.JoinFunc(ctx, input)
}

func (mock *coupleServiceMock) JoinCalls() []struct {
	Ctx   context.Context
	Input couple.JoinInput
} {
	var calls []struct {
		Ctx   context.Context
		Input couple.JoinInput
	}
	mock.lockJoin.RLock()
	calls = mock.calls.Join
	mock.lockJoin.RUnlock()
	return calls
}

func (mock *coupleServiceMock) Leave(ctx context.Context) (domain.LeaveOutcome, error) {
	if mock.LeaveFunc == nil {
		panic("coupleServiceMock.LeaveFunc: method is nil but coupleService.Leave was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockLeave.Lock()
	mock.calls.Leave = append(mock.calls.Leave, callInfo)
	mock.lockLeave.Unlock()
	return mock.LeaveFunc(ctx)
}

func (mock *coupleServiceMock) LeaveCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockLeave.RLock()
	calls = mock.calls.Leave
	mock.lockLeave.RUnlock()
	return calls
}

func (mock *coupleServiceMock) Rename(ctx context.Context, input couple.RenameInput) (*domain.Couple, error) {
	if mock.RenameFunc == nil {
		panic("coupleServiceMock.RenameFunc: method is nil but coupleService.Rename was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input couple.RenameInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockRename.Lock()
	mock.calls.Rename = append(mock.calls.Rename, callInfo)
	mock.lockRename.Unlock()
	return mock.RenameFunc(ctx, input)
}

func (mock *coupleServiceMock) RenameCalls() []struct {
	Ctx   context.Context
	Input couple.RenameInput
} {
	var calls []struct {
		Ctx   context.Context
		Input couple.RenameInput
	}
	mock.lockRename.RLock()
	calls = mock.calls.Rename
	mock.lockRename.RUnlock()
	return calls
}

func (mock *coupleServiceMock) Stats(ctx context.Context) (*domain.DashboardStats, error) {
	if mock.StatsFunc == nil {
		panic("coupleServiceMock.StatsFunc: method is nil but coupleService.Stats was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockStats.Lock()
	mock.calls.Stats = append(mock.calls.Stats, callInfo)
	mock.lockStats.Unlock()
	return mock.StatsFunc(ctx)
}

func (mock *coupleServiceMock) StatsCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockStats.RLock()
	calls = mock.calls.Stats
	mock.lockStats.RUnlock()
	return calls
}
