package couple

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ membership = &membershipMock{}

type membershipMock struct {
	CurrentFunc func(ctx context.Context) (uuid.UUID, *domain.Couple, error)

	calls struct {
		Current []struct {
			Ctx context.Context
		}
	}
	lockCurrent sync.RWMutex
}

func (mock *membershipMock) Current(ctx context.Context) (uuid.UUID, *domain.Couple, error) {
	if mock.CurrentFunc == nil {
		panic("membershipMock.CurrentFunc: method is nil but membership.Current was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockCurrent.Lock()
	mock.calls.Current = append(mock.calls.Current, callInfo)
	mock.lockCurrent.Unlock()
	return mock.CurrentFunc(ctx)
}

func (mock *membershipMock) CurrentCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockCurrent.RLock()
	calls = mock.calls.Current
	mock.lockCurrent.RUnlock()
	return calls
}
