package rule

import (
	"context"
	"sync"
)

var _ txManager = &txManagerMock{}

type txManagerMock struct {
	AfterCommitFunc func(ctx context.Context, fn func())
	RunInTxFunc     func(ctx context.Context, fn func(ctx context.Context) error) error

	calls struct {
		AfterCommit []struct {
			Ctx context.Context
			Fn  func()
		}
		RunInTx []struct {
			Ctx context.Context
			Fn  func(ctx context.Context) error
		}
	}
	lockAfterCommit sync.RWMutex
	lockRunInTx     sync.RWMutex
}

func (mock *txManagerMock) AfterCommit(ctx context.Context, fn func()) {
	if mock.AfterCommitFunc == nil {
		panic("txManagerMock.AfterCommitFunc: method is nil but txManager.AfterCommit was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Fn  func()
	}{
		Ctx: ctx,
		Fn:  fn,
	}
	mock.lockAfterCommit.Lock()
	mock.calls.AfterCommit = append(mock.calls.AfterCommit, callInfo)
	mock.lockAfterCommit.Unlock()
	mock.AfterCommitFunc(ctx, fn)
}

func (mock *txManagerMock) AfterCommitCalls() []struct {
	Ctx context.Context
	Fn  func()
} {
	var calls []struct {
		Ctx context.Context
		Fn  func()
	}
	mock.lockAfterCommit.RLock()
	calls = mock.calls.AfterCommit
	mock.lockAfterCommit.RUnlock()
	return calls
}

func (mock *txManagerMock) RunInTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if mock.RunInTxFunc == nil {
		panic("txManagerMock.RunInTxFunc: method is nil but txManager.RunInTx was just called")
	}
	callInfo := struct {
		Ctx context.Context
		Fn  func(ctx context.Context) error
	}{
		Ctx: ctx,
		Fn:  fn,
	}
	mock.lockRunInTx.Lock()
	mock.calls.RunInTx = append(mock.calls.RunInTx, callInfo)
	mock.lockRunInTx.Unlock()
	return mock.RunInTxFunc(ctx, fn)
}

func (mock *txManagerMock) RunInTxCalls() []struct {
	Ctx context.Context
	Fn  func(ctx context.Context) error
} {
	var calls []struct {
		Ctx context.Context
		Fn  func(ctx context.Context) error
	}
	mock.lockRunInTx.RLock()
	calls = mock.calls.RunInTx
	mock.lockRunInTx.RUnlock()
	return calls
}
