package auth

import (
	"context"
	"sync"
)

var _ mailer = &mailerMock{}

type mailerMock struct {
	SendPasswordResetFunc func(ctx context.Context, email string, link string) error

	calls struct {
		SendPasswordReset []struct {
			Ctx   context.Context
			Email string
			Link  string
		}
	}
	lockSendPasswordReset sync.RWMutex
}

func (mock *mailerMock) SendPasswordReset(ctx context.Context, email string, link string) error {
	if mock.SendPasswordResetFunc == nil {
		panic("mailerMock.SendPasswordResetFunc: method is nil but mailer.SendPasswordReset was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Email string
		Link  string
	}{
		Ctx:   ctx,
		Email: email,
		Link:  link,
	}
	mock.lockSendPasswordReset.Lock()
	mock.calls.SendPasswordReset = append(mock.calls.SendPasswordReset, callInfo)
	mock.lockSendPasswordReset.Unlock()
	return mock.SendPasswordResetFunc(ctx, email, link)
}

func (mock *mailerMock) SendPasswordResetCalls() []struct {
	Ctx   context.Context
	Email string
	Link  string
} {
	var calls []struct {
		Ctx   context.Context
		Email string
		Link  string
	}
	mock.lockSendPasswordReset.RLock()
	calls = mock.calls.SendPasswordReset
	mock.lockSendPasswordReset.RUnlock()
	return calls
}
