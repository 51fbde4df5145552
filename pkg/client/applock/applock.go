// Package applock guards the client behind a 4-digit PIN.
package applock

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/heartmarshall/couplefine/pkg/client/storage"
)

const (
	salt          = "couple-fine-salt"
	MaxAttempts   = 5
	BlockDuration = 5 * time.Minute
)

var (
	ErrInvalidPin = errors.New("pin must be exactly 4 digits")
	ErrNoPin      = errors.New("no pin set")
	ErrWrongPin   = errors.New("wrong pin")
	ErrBlocked    = errors.New("too many failed attempts")
)

// WrongPinError reports how many attempts are left before a block.
type WrongPinError struct{ Remaining int }

func (e *WrongPinError) Error() string {
	return fmt.Sprintf("wrong pin, %d attempts remaining", e.Remaining)
}

func (e *WrongPinError) Is(target error) bool { return target == ErrWrongPin }

// BlockedError reports the time left until PIN entry is allowed again.
type BlockedError struct{ Remaining time.Duration }

func (e *BlockedError) Error() string {
	return fmt.Sprintf("too many failed attempts, try again in %s", e.Remaining.Round(time.Second))
}

func (e *BlockedError) Is(target error) bool { return target == ErrBlocked }

// State is the persisted lock state. HasPin is derived from the stored hash.
type State struct {
	IsLocked     bool       `json:"isLocked"`
	HasPin       bool       `json:"-"`
	AttemptCount int        `json:"attemptCount"`
	IsBlocked    bool       `json:"isBlocked"`
	BlockEndTime *time.Time `json:"blockEndTime"`
}

type kv interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
	GetJSON(ctx context.Context, key string, dst any) (bool, error)
	SetJSON(ctx context.Context, key string, v any) error
}

// Lock is the PIN lock. It is safe for concurrent use.
type Lock struct {
	store kv
	log   *slog.Logger
	now   func() time.Time

	mu    sync.Mutex
	state State
}

// New loads the persisted state. When a PIN exists the lock starts locked.
// Unreadable state falls back to unlocked defaults.
func New(ctx context.Context, store kv, logger *slog.Logger) (*Lock, error) {
	l := &Lock{store: store, log: logger.With("component", "applock"), now: time.Now}

	_, hasPin, err := store.Get(ctx, storage.KeyPinHash)
	if err != nil {
		return nil, fmt.Errorf("applock: read pin: %w", err)
	}

	var st State
	if _, err := store.GetJSON(ctx, storage.KeyLockState, &st); err != nil {
		l.log.WarnContext(ctx, "discarding unreadable lock state", slog.String("error", err.Error()))
		st = State{}
	}
	st.HasPin = hasPin
	st.IsLocked = hasPin
	l.state = st
	l.expireBlock()

	if err := l.persist(ctx); err != nil {
		return nil, err
	}
	return l, nil
}

// HashPin returns the stored form of pin.
func HashPin(pin string) string {
	sum := sha256.Sum256([]byte(pin + salt))
	return hex.EncodeToString(sum[:])
}

func validPin(pin string) bool {
	if len(pin) != 4 {
		return false
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// State returns the current state, clearing an expired block first.
func (l *Lock) State() State {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.expireBlock() {
		l.persistLocked()
	}
	return l.state
}

// SetPin stores a new PIN and unlocks.
func (l *Lock) SetPin(ctx context.Context, pin string) error {
	if !validPin(pin) {
		return ErrInvalidPin
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Set(ctx, storage.KeyPinHash, HashPin(pin)); err != nil {
		return fmt.Errorf("applock: store pin: %w", err)
	}
	l.state.HasPin = true
	l.state.IsLocked = false
	return l.persist(ctx)
}

// VerifyPin unlocks on a matching PIN. MaxAttempts consecutive failures
// block entry for BlockDuration.
func (l *Lock) VerifyPin(ctx context.Context, pin string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.expireBlock()
	if l.state.IsBlocked {
		return &BlockedError{Remaining: l.remainingLocked()}
	}

	stored, ok, err := l.store.Get(ctx, storage.KeyPinHash)
	if err != nil {
		return fmt.Errorf("applock: read pin: %w", err)
	}
	if !ok {
		return ErrNoPin
	}

	if HashPin(pin) == stored {
		l.state.IsLocked = false
		l.state.AttemptCount = 0
		l.state.IsBlocked = false
		l.state.BlockEndTime = nil
		return l.persist(ctx)
	}

	l.state.AttemptCount++
	var verr error
	if l.state.AttemptCount >= MaxAttempts {
		end := l.now().Add(BlockDuration)
		l.state.IsBlocked = true
		l.state.BlockEndTime = &end
		verr = &BlockedError{Remaining: BlockDuration}
	} else {
		verr = &WrongPinError{Remaining: MaxAttempts - l.state.AttemptCount}
	}
	if err := l.persist(ctx); err != nil {
		return err
	}
	return verr
}

// RemovePin deletes the PIN and resets the state.
func (l *Lock) RemovePin(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := l.store.Delete(ctx, storage.KeyPinHash); err != nil {
		return fmt.Errorf("applock: remove pin: %w", err)
	}
	l.state = State{}
	return l.persist(ctx)
}

// Lock locks the app when a PIN is set.
func (l *Lock) Lock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if !l.state.HasPin || l.state.IsLocked {
		return nil
	}
	l.state.IsLocked = true
	return l.persist(ctx)
}

// Unlock clears the locked flag without a PIN check.
func (l *Lock) Unlock(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.state.IsLocked = false
	return l.persist(ctx)
}

// RemainingBlockTime returns how long entry stays blocked.
func (l *Lock) RemainingBlockTime() time.Duration {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.remainingLocked()
}

// RemainingAttempts returns the failures left before a block.
func (l *Lock) RemainingAttempts() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return MaxAttempts - l.state.AttemptCount
}

func (l *Lock) remainingLocked() time.Duration {
	if !l.state.IsBlocked || l.state.BlockEndTime == nil {
		return 0
	}
	return max(0, l.state.BlockEndTime.Sub(l.now()))
}

// expireBlock clears a block whose end has passed. Callers hold mu.
func (l *Lock) expireBlock() bool {
	if !l.state.IsBlocked || l.state.BlockEndTime == nil || l.now().Before(*l.state.BlockEndTime) {
		return false
	}
	l.state.IsBlocked = false
	l.state.BlockEndTime = nil
	l.state.AttemptCount = 0
	return true
}

func (l *Lock) persist(ctx context.Context) error {
	if err := l.store.SetJSON(ctx, storage.KeyLockState, l.state); err != nil {
		return fmt.Errorf("applock: save state: %w", err)
	}
	return nil
}

func (l *Lock) persistLocked() {
	if err := l.persist(context.Background()); err != nil {
		l.log.Warn("save lock state", slog.String("error", err.Error()))
	}
}
