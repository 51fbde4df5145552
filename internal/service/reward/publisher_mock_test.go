package reward

import (
	"context"
	"sync"

	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ publisher = &publisherMock{}

type publisherMock struct {
	PublishFunc func(ctx context.Context, ev domain.ChangeEvent) error

	calls struct {
		Publish []struct {
			Ctx context.Context
			Ev  domain.ChangeEvent
		}
	}
	lockPublish sync.RWMutex
}

func (mock *publisherMock) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	if mock.PublishFunc == nil {
		panic("publisherMock.PublishFunc: method is nil but publisher.Publish was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Ev  domain.ChangeEvent
	}{
		Ctx: ctx,
		Ev:  ev,
	}
	mock.lockPublish.Lock()
	mock.calls.Publish = append(mock.calls.Publish, callInfo)
	mock.lockPublish.Unlock()
	return mock.PublishFunc(ctx, ev)
}

func (mock *publisherMock) PublishCalls() []struct {
	Ctx context.Context
	Ev  domain.ChangeEvent
} {
	var calls []struct {
		Ctx context.Context
		Ev  domain.ChangeEvent
	}
	mock.lockPublish.RLock()
	calls = mock.calls.Publish
	mock.lockPublish.RUnlock()
	return calls
}
