package rest

import (
	"context"
	"sync"

	"github.com/heartmarshall/couplefine/internal/service/auth"
)

var _ authService = &authServiceMock{}

type authServiceMock struct {
	RefreshFunc              func(ctx context.Context, input auth.RefreshInput) (*auth.AuthResult, error)
	RequestPasswordResetFunc func(ctx context.Context, email string) error
	ResetPasswordFunc        func(ctx context.Context, input auth.ResetPasswordInput) error
	SignInFunc               func(ctx context.Context, input auth.SignInInput) (*auth.AuthResult, error)
	SignOutFunc              func(ctx context.Context, input auth.RefreshInput) error
	SignOutAllFunc           func(ctx context.Context) error
	SignUpFunc               func(ctx context.Context, input auth.SignUpInput) (*auth.AuthResult, error)

	calls struct {
		Refresh []struct {
			Ctx   context.Context
			Input auth.RefreshInput
		}
		RequestPasswordReset []struct {
			Ctx   context.Context
			Email string
		}
		ResetPassword []struct {
			Ctx   context.Context
			Input auth.ResetPasswordInput
		}
		SignIn []struct {
			Ctx   context.Context
			Input auth.SignInInput
		}
		SignOut []struct {
			Ctx   context.Context
			Input auth.RefreshInput
		}
		SignOutAll []struct {
			Ctx context.Context
		}
		SignUp []struct {
			Ctx   context.Context
			Input auth.SignUpInput
		}
	}
	lockRefresh              sync.RWMutex
	lockRequestPasswordReset sync.RWMutex
	lockResetPassword        sync.RWMutex
	lockSignIn               sync.RWMutex
	lockSignOut              sync.RWMutex
	lockSignOutAll           sync.RWMutex
	lockSignUp               sync.RWMutex
}

func (mock *authServiceMock) Refresh(ctx context.Context, input auth.RefreshInput) (*auth.AuthResult, error) {
	if mock.RefreshFunc == nil {
		panic("authServiceMock.RefreshFunc: method is nil but authService.Refresh was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input auth.RefreshInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockRefresh.Lock()
	mock.calls.Refresh = append(mock.calls.Refresh, callInfo)
	mock.lockRefresh.Unlock()
	return mock.RefreshFunc(ctx, input)
}

func (mock *authServiceMock) RefreshCalls() []struct {
	Ctx   context.Context
	Input auth.RefreshInput
} {
	var calls []struct {
		Ctx   context.Context
		Input auth.RefreshInput
	}
	mock.lockRefresh.RLock()
	calls = mock.calls.Refresh
	mock.lockRefresh.RUnlock()
	return calls
}

func (mock *authServiceMock) RequestPasswordReset(ctx context.Context, email string) error {
	if mock.RequestPasswordResetFunc == nil {
		panic("authServiceMock.RequestPasswordResetFunc: method is nil but authService.RequestPasswordReset was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Email string
	}{
		Ctx:   ctx,
		Email: email,
	}
	mock.lockRequestPasswordReset.Lock()
	mock.calls.RequestPasswordReset = append(mock.calls.RequestPasswordReset, callInfo)
	mock.lockRequestPasswordReset.Unlock()
	return mock.RequestPasswordResetFunc(ctx, email)
}

func (mock *authServiceMock) RequestPasswordResetCalls() []struct {
	Ctx   context.Context
	Email string
} {
	var calls []struct {
		Ctx   context.Context
		Email string
	}
	mock.lockRequestPasswordReset.RLock()
	calls = mock.calls.RequestPasswordReset
	mock.lockRequestPasswordReset.RUnlock()
	return calls
}

func (mock *authServiceMock) ResetPassword(ctx context.Context, input auth.ResetPasswordInput) error {
	if mock.ResetPasswordFunc == nil {
		panic("authServiceMock.ResetPasswordFunc: method is nil but authService.ResetPassword was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input auth.ResetPasswordInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockResetPassword.Lock()
	mock.calls.ResetPassword = append(mock.calls.ResetPassword, callInfo)
	mock.lockResetPassword.Unlock()
	return mock.ResetPasswordFunc(ctx, input)
}

func (mock *authServiceMock) ResetPasswordCalls() []struct {
	Ctx   context.Context
	Input auth.ResetPasswordInput
} {
	var calls []struct {
		Ctx   context.Context
		Input auth.ResetPasswordInput
	}
	mock.lockResetPassword.RLock()
	calls = mock.calls.ResetPassword
	mock.lockResetPassword.RUnlock()
	return calls
}

func (mock *authServiceMock) SignIn(ctx context.Context, input auth.SignInInput) (*auth.AuthResult, error) {
	if mock.SignInFunc == nil {
		panic("authServiceMock.SignInFunc: method is nil but authService.SignIn was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input auth.SignInInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockSignIn.Lock()
	mock.calls.SignIn = append(mock.calls.SignIn, callInfo)
	mock.lockSignIn.Unlock()
	return mock.SignInFunc(ctx, input)
}

func (mock *authServiceMock) SignInCalls() []struct {
	Ctx   context.Context
	Input auth.SignInInput
} {
	var calls []struct {
		Ctx   context.Context
		Input auth.SignInInput
	}
	mock.lockSignIn.RLock()
	calls = mock.calls.SignIn
	mock.lockSignIn.RUnlock()
	return calls
}

func (mock *authServiceMock) SignOut(ctx context.Context, input auth.RefreshInput) error {
	if mock.SignOutFunc == nil {
		panic("authServiceMock.SignOutFunc: method is nil but authService.SignOut was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input auth.RefreshInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockSignOut.Lock()
	mock.calls.SignOut = append(mock.calls.SignOut, callInfo)
	mock.lockSignOut.Unlock()
	return mock.SignOutFunc(ctx, input)
}

func (mock *authServiceMock) SignOutCalls() []struct {
	Ctx   context.Context
	Input auth.RefreshInput
} {
	var calls []struct {
		Ctx   context.Context
		Input auth.RefreshInput
	}
	mock.lockSignOut.RLock()
	calls = mock.calls.SignOut
	mock.lockSignOut.RUnlock()
	return calls
}

func (mock *authServiceMock) SignOutAll(ctx context.Context) error {
	if mock.SignOutAllFunc == nil {
		panic("authServiceMock.SignOutAllFunc: method is nil but authService.SignOutAll was just called")
	}
	callInfo := struct {
		Ctx context.Context
	}{
		Ctx: ctx,
	}
	mock.lockSignOutAll.Lock()
	mock.calls.SignOutAll = append(mock.calls.SignOutAll, callInfo)
	mock.lockSignOutAll.Unlock()
	return mock.SignOutAllFunc(ctx)
}

func (mock *authServiceMock) SignOutAllCalls() []struct {
	Ctx context.Context
} {
	var calls []struct {
		Ctx context.Context
	}
	mock.lockSignOutAll.RLock()
	calls = mock.calls.SignOutAll
	mock.lockSignOutAll.RUnlock()
	return calls
}

func (mock *authServiceMock) SignUp(ctx context.Context, input auth.SignUpInput) (*auth.AuthResult, error) {
	if mock.SignUpFunc == nil {
		panic("authServiceMock.SignUpFunc: method is nil but authService.SignUp was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Input auth.SignUpInput
	}{
		Ctx:   ctx,
		Input: input,
	}
	mock.lockSignUp.Lock()
	mock.calls.SignUp = append(mock.calls.SignUp, callInfo)
	mock.lockSignUp.Unlock()
	return mock.SignUpFunc(ctx, input)
}

func (mock *authServiceMock) SignUpCalls() []struct {
	Ctx   context.Context
	Input auth.SignUpInput
} {
	var calls []struct {
		Ctx   context.Context
		Input auth.SignUpInput
	}
	mock.lockSignUp.RLock()
	calls = mock.calls.SignUp
	mock.lockSignUp.RUnlock()
	return calls
}
