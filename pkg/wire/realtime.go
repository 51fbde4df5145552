package wire

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Phoenix channel events.
const (
	EventJoin      = "phx_join"
	EventLeave     = "phx_leave"
	EventReply     = "phx_reply"
	EventClose     = "phx_close"
	EventError     = "phx_error"
	EventHeartbeat = "heartbeat"
	EventChanges   = "postgres_changes"

	// TopicPhoenix carries heartbeats.
	TopicPhoenix = "phoenix"

	ReplyOK    = "ok"
	ReplyError = "error"
)

// Change types carried in Change.Type.
const (
	ChangeInsert = "INSERT"
	ChangeUpdate = "UPDATE"
	ChangeDelete = "DELETE"
)

const topicPrefix = "realtime:public:"

// Frame is one websocket message in either direction.
type Frame struct {
	Topic   string          `json:"topic"`
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
	Ref     *string         `json:"ref"`
}

// Reply is the payload of a phx_reply frame.
type Reply struct {
	Status   string         `json:"status"`
	Response map[string]any `json:"response"`
}

// Change is the payload of a postgres_changes frame. Record and OldRecord
// hold the row in its REST shape (Rule, Violation, ...).
type Change struct {
	Table           string          `json:"table"`
	Type            string          `json:"type"`
	Record          json.RawMessage `json:"record"`
	OldRecord       json.RawMessage `json:"old_record,omitempty"`
	Version         int64           `json:"version"`
	CommitTimestamp time.Time       `json:"commit_timestamp"`
}

// Topic returns the channel topic of one couple's table feed.
func Topic(table string, coupleID uuid.UUID) string {
	return topicPrefix + table + ":couple_id=eq." + coupleID.String()
}

// ParseTopic splits a table feed topic into table and couple id.
func ParseTopic(topic string) (string, uuid.UUID, error) {
	rest, ok := strings.CutPrefix(topic, topicPrefix)
	if !ok {
		return "", uuid.Nil, fmt.Errorf("topic %q: unknown prefix", topic)
	}
	table, filter, ok := strings.Cut(rest, ":")
	if !ok || table == "" {
		return "", uuid.Nil, fmt.Errorf("topic %q: missing filter", topic)
	}
	raw, ok := strings.CutPrefix(filter, "couple_id=eq.")
	if !ok {
		return "", uuid.Nil, fmt.Errorf("topic %q: unsupported filter", topic)
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", uuid.Nil, fmt.Errorf("topic %q: %w", topic, err)
	}
	return table, id, nil
}

// NewFrame marshals payload into a frame.
func NewFrame(topic, event string, payload any, ref *string) (Frame, error) {
	raw, err := json.Marshal(payload)
	if err != nil {
		return Frame{}, fmt.Errorf("marshal %s payload: %w", event, err)
	}
	return Frame{Topic: topic, Event: event, Payload: raw, Ref: ref}, nil
}
