// Package realtime fans committed changes out to websocket subscribers using
// the Phoenix channel protocol.
package realtime

import (
	"context"
	"errors"
	"sync"

	"github.com/google/uuid"
)

// ErrBrokerClosed is returned by a broker after Close.
var ErrBrokerClosed = errors.New("realtime: broker closed")

// Message is one encoded change travelling through a Broker. Payload is a
// marshaled wire.Change.
type Message struct {
	CoupleID uuid.UUID `json:"couple_id"`
	Table    string    `json:"table"`
	Payload  []byte    `json:"payload"`
}

// Broker distributes messages to every subscriber, possibly across processes.
type Broker interface {
	Publish(ctx context.Context, msg Message) error
	// Subscribe returns a channel that is closed when ctx ends or the broker
	// is closed.
	Subscribe(ctx context.Context) (<-chan Message, error)
	Close() error
}

// MemoryBroker fans messages out within one process.
type MemoryBroker struct {
	mu     sync.RWMutex
	subs   map[chan Message]struct{}
	buffer int
	closed bool
}

// NewMemoryBroker creates a broker whose subscriber channels hold buffer
// messages. A subscriber that falls behind loses messages.
func NewMemoryBroker(buffer int) *MemoryBroker {
	if buffer <= 0 {
		buffer = 1
	}
	return &MemoryBroker{subs: make(map[chan Message]struct{}), buffer: buffer}
}

func (b *MemoryBroker) Publish(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return ErrBrokerClosed
	}
	for ch := range b.subs {
		select {
		case ch <- msg:
		default:
		}
	}
	return nil
}

func (b *MemoryBroker) Subscribe(ctx context.Context) (<-chan Message, error) {
	ch := make(chan Message, b.buffer)

	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil, ErrBrokerClosed
	}
	b.subs[ch] = struct{}{}
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.remove(ch)
	}()
	return ch, nil
}

func (b *MemoryBroker) remove(ch chan Message) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}

func (b *MemoryBroker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
	return nil
}
