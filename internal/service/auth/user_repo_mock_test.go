package auth

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/heartmarshall/couplefine/internal/domain"
)

var _ userRepo = &userRepoMock{}

type userRepoMock struct {
	CreateProfileFunc  func(ctx context.Context, p *domain.Profile) (*domain.Profile, error)
	CreateUserFunc     func(ctx context.Context, u *domain.User) (*domain.User, error)
	GetUserByEmailFunc func(ctx context.Context, email string) (*domain.User, error)
	GetUserByIDFunc    func(ctx context.Context, id uuid.UUID) (*domain.User, error)
	UpdatePasswordFunc func(ctx context.Context, id uuid.UUID, passwordHash string) error

	calls struct {
		CreateProfile []struct {
			Ctx context.Context
			P   *domain.Profile
		}
		CreateUser []struct {
			Ctx context.Context
			U   *domain.User
		}
		GetUserByEmail []struct {
			Ctx   context.Context
			Email string
		}
		GetUserByID []struct {
			Ctx context.Context
			ID  uuid.UUID
		}
		UpdatePassword []struct {
			Ctx          context.Context
			ID           uuid.UUID
			PasswordHash string
		}
	}
	lockCreateProfile  sync.RWMutex
	lockCreateUser     sync.RWMutex
	lockGetUserByEmail sync.RWMutex
	lockGetUserByID    sync.RWMutex
	lockUpdatePassword sync.RWMutex
}

func (mock *userRepoMock) CreateProfile(ctx context.Context, p *domain.Profile) (*domain.Profile, error) {
	if mock.CreateProfileFunc == nil {
		panic("userRepoMock.CreateProfileFunc: method is nil but userRepo.CreateProfile was just called")
	}
	callInfo := struct {
		Ctx context.Context
		P   *domain.Profile
	}{
		Ctx: ctx,
		P:   p,
	}
	mock.lockCreateProfile.Lock()
	mock.calls.CreateProfile = append(mock.calls.CreateProfile, callInfo)
	mock.lockCreateProfile.Unlock()
	return mock.CreateProfileFunc(ctx, p)
}

func (mock *userRepoMock) CreateProfileCalls() []struct {
	Ctx context.Context
	P   *domain.Profile
} {
	var calls []struct {
		Ctx context.Context
		P   *domain.Profile
	}
	mock.lockCreateProfile.RLock()
	calls = mock.calls.CreateProfile
	mock.lockCreateProfile.RUnlock()
	return calls
}

func (mock *userRepoMock) CreateUser(ctx context.Context, u *domain.User) (*domain.User, error) {
	if mock.CreateUserFunc == nil {
		panic("userRepoMock.CreateUserFunc: method is nil but userRepo.CreateUser was just called")
	}
	callInfo := struct {
		Ctx context.Context
		U   *domain.User
	}{
		Ctx: ctx,
		U:   u,
	}
	mock.lockCreateUser.Lock()
	mock.calls.CreateUser = append(mock.calls.CreateUser, callInfo)
	mock.lockCreateUser.Unlock()
	return mock.CreateUserFunc(ctx, u)
}

func (mock *userRepoMock) CreateUserCalls() []struct {
	Ctx context.Context
	U   *domain.User
} {
	var calls []struct {
		Ctx context.Context
		U   *domain.User
	}
	mock.lockCreateUser.RLock()
	calls = mock.calls.CreateUser
	mock.lockCreateUser.RUnlock()
	return calls
}

func (mock *userRepoMock) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	if mock.GetUserByEmailFunc == nil {
		panic("userRepoMock.GetUserByEmailFunc: method is nil but userRepo.GetUserByEmail was just called")
	}
	callInfo := struct {
		Ctx   context.Context
		Email string
	}{
		Ctx:   ctx,
		Email: email,
	}
	mock.lockGetUserByEmail.Lock()
	mock.calls.GetUserByEmail = append(mock.calls.GetUserByEmail, callInfo)
	mock.lockGetUserByEmail.Unlock()
	return mock.GetUserByEmailFunc(ctx, email)
}

func (mock *userRepoMock) GetUserByEmailCalls() []struct {
	Ctx   context.Context
	Email string
} {
	var calls []struct {
		Ctx   context.Context
		Email string
	}
	mock.lockGetUserByEmail.RLock()
	calls = mock.calls.GetUserByEmail
	mock.lockGetUserByEmail.RUnlock()
	return calls
}

func (mock *userRepoMock) GetUserByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	if mock.GetUserByIDFunc == nil {
		panic("userRepoMock.GetUserByIDFunc: method is nil but userRepo.GetUserByID was just called")
	}
	callInfo := struct {
		Ctx context.Context
		ID  uuid.UUID
	}{
		Ctx: ctx,
		ID:  id,
	}
	mock.lockGetUserByID.Lock()
	mock.calls.GetUserByID = append(mock.calls.GetUserByID, callInfo)
	mock.lockGetUserByID.Unlock()
	return mock.GetUserByIDFunc(ctx, id)
}

func (mock *userRepoMock) GetUserByIDCalls() []struct {
	Ctx context.Context
	ID  uuid.UUID
} {
	var calls []struct {
		Ctx context.Context
		ID  uuid.UUID
	}
	mock.lockGetUserByID.RLock()
	calls = mock.calls.GetUserByID
	mock.lockGetUserByID.RUnlock()
	return calls
}

func (mock *userRepoMock) UpdatePassword(ctx context.Context, id uuid.UUID, passwordHash string) error {
	if mock.UpdatePasswordFunc == nil {
		panic("userRepoMock.UpdatePasswordFunc: method is nil but userRepo.UpdatePassword was just called")
	}
	callInfo := struct {
		Ctx          context.Context
		ID           uuid.UUID
		PasswordHash string
	}{
		Ctx:          ctx,
		ID:           id,
		PasswordHash: passwordHash,
	}
	mock.lockUpdatePassword.Lock()
	mock.calls.UpdatePassword = append(mock.calls.UpdatePassword, callInfo)
	mock.lockUpdatePassword.Unlock()
	return mock.UpdatePasswordFunc(ctx, id, passwordHash)
}

func (mock *userRepoMock) UpdatePasswordCalls() []struct {
	Ctx          context.Context
	ID           uuid.UUID
	PasswordHash string
} {
	var calls []struct {
		Ctx          context.Context
		ID           uuid.UUID
		PasswordHash string
	}
	mock.lockUpdatePassword.RLock()
	calls = mock.calls.UpdatePassword
	mock.lockUpdatePassword.RUnlock()
	return calls
}
