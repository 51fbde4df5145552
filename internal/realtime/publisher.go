package realtime

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/internal/transport/presenter"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type eventCounter interface {
	EventPublished(table, typ string)
}

// Publisher encodes domain change events and hands them to a Broker.
type Publisher struct {
	broker  Broker
	counter eventCounter
}

// NewPublisher creates a Publisher. counter may be nil.
func NewPublisher(broker Broker, counter eventCounter) *Publisher {
	return &Publisher{broker: broker, counter: counter}
}

// Publish sends ev to every subscriber of its couple's table feed.
func (p *Publisher) Publish(ctx context.Context, ev domain.ChangeEvent) error {
	payload, err := EncodeChange(ev)
	if err != nil {
		return err
	}

	if err := p.broker.Publish(ctx, Message{
		CoupleID: ev.CoupleID,
		Table:    ev.Table.String(),
		Payload:  payload,
	}); err != nil {
		return fmt.Errorf("realtime.Publish: %w", err)
	}

	if p.counter != nil {
		p.counter.EventPublished(ev.Table.String(), ev.Type.String())
	}
	return nil
}

// EncodeChange marshals ev into a wire.Change payload.
func EncodeChange(ev domain.ChangeEvent) ([]byte, error) {
	record, err := encodeRecord(ev.Record)
	if err != nil {
		return nil, err
	}
	old, err := encodeRecord(ev.OldRecord)
	if err != nil {
		return nil, err
	}

	payload, err := json.Marshal(wire.Change{
		Table:           ev.Table.String(),
		Type:            ev.Type.String(),
		Record:          record,
		OldRecord:       old,
		Version:         ev.Version,
		CommitTimestamp: ev.CommitAt,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal change: %w", err)
	}
	return payload, nil
}

func encodeRecord(v any) (json.RawMessage, error) {
	if v == nil {
		return nil, nil
	}
	rec, err := presenter.Record(v)
	if err != nil {
		return nil, err
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, fmt.Errorf("marshal record: %w", err)
	}
	return raw, nil
}
