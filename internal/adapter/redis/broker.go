// Package redis implements the realtime broker on Redis Pub/Sub so several
// server instances share one change feed.
package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/tidwall/gjson"

	"github.com/heartmarshall/couplefine/internal/config"
	"github.com/heartmarshall/couplefine/internal/realtime"
)

// Broker publishes realtime messages on one Redis channel.
type Broker struct {
	log     *slog.Logger
	client  *goredis.Client
	channel string
	buffer  int

	mu     sync.Mutex
	closed bool
}

// envelope is the JSON carried on the channel.
type envelope struct {
	CoupleID uuid.UUID       `json:"couple_id"`
	Table    string          `json:"table"`
	Payload  json.RawMessage `json:"payload"`
}

// New connects to Redis and verifies the connection with PING.
func New(ctx context.Context, cfg config.RedisConfig, buffer int, logger *slog.Logger) (*Broker, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis: ping %s: %w", cfg.Addr, err)
	}

	if buffer <= 0 {
		buffer = 256
	}
	return &Broker{
		log:     logger.With("component", "redis_broker"),
		client:  client,
		channel: cfg.Channel,
		buffer:  buffer,
	}, nil
}

func (b *Broker) isClosed() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.closed
}

func (b *Broker) Publish(ctx context.Context, msg realtime.Message) error {
	if b.isClosed() {
		return realtime.ErrBrokerClosed
	}

	data, err := json.Marshal(envelope{CoupleID: msg.CoupleID, Table: msg.Table, Payload: msg.Payload})
	if err != nil {
		return fmt.Errorf("redis: encode message: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("redis: publish: %w", err)
	}
	return nil
}

func (b *Broker) Subscribe(ctx context.Context) (<-chan realtime.Message, error) {
	if b.isClosed() {
		return nil, realtime.ErrBrokerClosed
	}

	ps := b.client.Subscribe(ctx, b.channel)
	// Wait for the subscription confirmation so no publish races past it.
	if _, err := ps.Receive(ctx); err != nil {
		_ = ps.Close()
		return nil, fmt.Errorf("redis: subscribe %s: %w", b.channel, err)
	}

	out := make(chan realtime.Message, b.buffer)
	go func() {
		defer close(out)
		defer ps.Close()

		in := ps.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-in:
				if !ok {
					return
				}
				msg, err := decode(m.Payload)
				if err != nil {
					b.log.Warn("drop malformed realtime message", slog.String("error", err.Error()))
					continue
				}
				select {
				case out <- msg:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, nil
}

func decode(raw string) (realtime.Message, error) {
	if !gjson.Valid(raw) {
		return realtime.Message{}, errors.New("invalid json")
	}
	res := gjson.GetMany(raw, "couple_id", "table", "payload")
	id, err := uuid.Parse(res[0].String())
	if err != nil {
		return realtime.Message{}, fmt.Errorf("couple_id: %w", err)
	}
	if res[1].String() == "" {
		return realtime.Message{}, errors.New("missing table")
	}
	if !res[2].IsObject() {
		return realtime.Message{}, errors.New("missing payload")
	}
	return realtime.Message{CoupleID: id, Table: res[1].String(), Payload: []byte(res[2].Raw)}, nil
}

// Close releases the Redis connection. Open subscriptions end.
func (b *Broker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	b.mu.Unlock()
	return b.client.Close()
}

// Ping checks Redis reachability for readiness probes.
func (b *Broker) Ping(ctx context.Context) error {
	return b.client.Ping(ctx).Err()
}
