package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/service/profile"
)

var _ profileService = &profileServiceMock{}

type profileServiceMock struct {
	GetMeFunc      func(ctx context.Context) (*domain.Profile, error)
	GetPartnerFunc func(ctx context.Context) (*domain.Profile, error)
	UpdateMeFunc   func(ctx context.Context, input profile.UpdateMeInput) (*domain.Profile, error)

	calls struct {
		GetMe []struct {
			Ctx context.Context
		}
		GetPartner []struct {
			Ctx context.Context
		}
		UpdateMe []struct {
			Ctx   context.Context
			Input profile.UpdateMeInput
		}
	}
	lockGetMe      sync.RWMutex
	lockGetPartner sync.RWMutex
	lockUpdateMe   sync.RWMutex
}

func (mock *profileServiceMock) GetMe(ctx context.Context) (*domain.Profile, error) {
	if mock.GetMeFunc == nil {
		panic("profileServiceMock.GetMeFunc: method is nil but profileService.GetMe was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockGetMe.Lock()
	mock.calls.GetMe = append(mock.calls.GetMe, callInfo)
	mock.lockGetMe.Unlock()
	return mock.GetMeFunc(ctx)
}

func (mock *profileServiceMock) GetMeCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockGetMe.RLock()
	calls = mock.calls.GetMe
	mock.lockGetMe.RUnlock()
	return calls
}

func (mock *profileServiceMock) GetPartner(ctx context.Context) (*domain.Profile, error) {
	if mock.GetPartnerFunc == nil {
		panic("profileServiceMock.GetPartnerFunc: method is nil but profileService.GetPartner was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockGetPartner.Lock()
	mock.calls.GetPartner = append(mock.calls.GetPartner, callInfo)
	mock.lockGetPartner.Unlock()
	return mock.GetPartnerFunc(ctx)
}

func (mock *profileServiceMock) GetPartnerCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockGetPartner.RLock()
	calls = mock.calls.GetPartner
	mock.lockGetPartner.RUnlock()
	return calls
}

func (mock *profileServiceMock) UpdateMe(ctx context.Context, input profile.UpdateMeInput) (*domain.Profile, error) {
	if mock.UpdateMeFunc == nil {
		panic("profileServiceMock.UpdateMeFunc: method is nil but profileService.UpdateMe was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input profile.UpdateMeInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockUpdateMe.Lock()
	mock.calls.UpdateMe = append(mock.calls.UpdateMe, callInfo)
	mock.lockUpdateMe.Unlock()
	return mock.UpdateMeFunc(ctx, input)
}

func (mock *profileServiceMock) UpdateMeCalls() []struct {
	Ctx   context.Context
	Input profile.UpdateMeInput
} {
	var calls []struct {
		Ctx   context.Context
		Input profile.UpdateMeInput
	}
	mock.lockUpdateMe.RLock()
	calls = mock.calls.UpdateMe
	mock.lockUpdateMe.RUnlock()
	return calls
}
