package session

import (
	"context"
	"log/slog"
	"time"
)

// Refresh rotates the token pair. A failed exchange is retried once after
// RetryDelay; a second failure signs out. Cancellation of ctx returns its
// error and keeps the session. While a refresh is in flight further calls
// return immediately.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.inFly.CompareAndSwap(false, true) {
		s.log.DebugContext(ctx, "refresh already in flight")
		return nil
	}
	defer s.inFly.Store(false)

	snap := s.Snapshot()
	if snap.Tokens == nil {
		return ErrNoSession
	}
	s.update(func(sn *Snapshot) {
		if sn.State == Authenticated {
			sn.State = Refreshing
		}
	})

	err := s.tryExchange(ctx, snap.Tokens.RefreshToken)
	if err != nil {
		s.log.WarnContext(ctx, "token refresh failed, retrying", slog.String("error", err.Error()))
		t := time.NewTimer(s.opts.RetryDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			err = ctx.Err()
		case <-t.C:
			err = s.tryExchange(ctx, snap.Tokens.RefreshToken)
		}
	}
	if err != nil && ctx.Err() != nil {
		// Abandoned by the caller (app shutdown): the stored pair stays.
		s.update(func(sn *Snapshot) {
			if sn.State == Refreshing {
				sn.State = Authenticated
			}
		})
		s.log.DebugContext(ctx, "token refresh abandoned", slog.String("error", err.Error()))
		return err
	}
	if err != nil {
		s.log.WarnContext(ctx, "token refresh failed, signing out", slog.String("error", err.Error()))
		s.clear(ctx)
		s.emit(EventSignedOut)
		return err
	}

	s.update(func(sn *Snapshot) {
		if sn.State == Refreshing {
			sn.State = Authenticated
		}
	})
	s.emit(EventTokenRefreshed)
	return nil
}

func (s *Store) tryExchange(ctx context.Context, refreshToken string) error {
	ctx, cancel := s.withTimeout(ctx)
	defer cancel()
	_, err := s.exchange(ctx, refreshToken)
	return err
}

// CheckExpiry refreshes when the access token expires within
// RefreshThreshold.
func (s *Store) CheckExpiry(ctx context.Context) {
	snap := s.Snapshot()
	if snap.Tokens == nil || snap.State == Unauthenticated || snap.State == Recovering {
		return
	}
	if !s.expiresSoon(*snap.Tokens) {
		return
	}
	_ = s.Refresh(ctx)
}

// Start runs the periodic expiry check until ctx is done or Close.
func (s *Store) Start(ctx context.Context) {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	if s.cancel != nil {
		return
	}
	s.runCtx, s.cancel = context.WithCancel(ctx)

	s.wg.Add(1)
	go func(ctx context.Context) {
		defer s.wg.Done()
		ticker := time.NewTicker(s.opts.RefreshInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.CheckExpiry(ctx)
			}
		}
	}(s.runCtx)
}

// OnFocus triggers an out-of-band expiry check.
func (s *Store) OnFocus() { s.trigger() }

// OnVisible triggers an out-of-band expiry check.
func (s *Store) OnVisible() { s.trigger() }

func (s *Store) trigger() {
	s.runMu.Lock()
	defer s.runMu.Unlock()
	ctx := s.runCtx
	if ctx.Err() != nil {
		return
	}

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.CheckExpiry(ctx)
	}()
}

// Close stops the ticker and waits for in-flight checks.
func (s *Store) Close() {
	s.runMu.Lock()
	if s.cancel == nil {
		s.runCtx, s.cancel = context.WithCancel(context.Background())
	}
	s.cancel()
	s.runMu.Unlock()
	s.wg.Wait()
}
