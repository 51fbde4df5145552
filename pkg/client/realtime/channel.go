package realtime

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Status is a channel subscription state.
type Status string

const (
	StatusSubscribed   Status = "SUBSCRIBED"
	StatusChannelError Status = "CHANNEL_ERROR"
	StatusTimedOut     Status = "TIMED_OUT"
	StatusClosed       Status = "CLOSED"
)

// AllEvents matches every change type in Channel.On.
const AllEvents = "*"

// Channel is one topic subscription.
type Channel struct {
	client *Client
	topic  string
	table  string

	mu       sync.Mutex
	handlers map[string][]func(wire.Change)
	onStatus func(Status, error)
	wanted   bool
	joinRef  string
	timer    *time.Timer
	status   Status
}

// Topic returns the channel topic.
func (ch *Channel) Topic() string { return ch.topic }

// Status returns the last reported status.
func (ch *Channel) Status() Status {
	ch.mu.Lock()
	defer ch.mu.Unlock()
	return ch.status
}

// On registers fn for changes of the given type (wire.ChangeInsert, ...)
// or AllEvents.
func (ch *Channel) On(event string, fn func(wire.Change)) *Channel {
	ch.mu.Lock()
	ch.handlers[event] = append(ch.handlers[event], fn)
	ch.mu.Unlock()
	return ch
}

// Subscribe joins the topic now or on the next connect. fn receives every
// status transition.
func (ch *Channel) Subscribe(fn func(Status, error)) *Channel {
	ch.mu.Lock()
	ch.onStatus = fn
	ch.wanted = true
	ch.mu.Unlock()

	if ch.client.Connected() {
		ch.join()
	}
	return ch
}

// Unsubscribe leaves the topic and removes the channel from its client.
func (ch *Channel) Unsubscribe() error {
	ch.mu.Lock()
	was := ch.wanted
	ch.wanted = false
	ch.clearJoinLocked()
	ch.mu.Unlock()

	ch.client.forget(ch)

	var err error
	if was && ch.client.Connected() {
		ref := ch.client.nextRef()
		f, _ := wire.NewFrame(ch.topic, wire.EventLeave, map[string]any{}, &ref)
		err = ch.client.send(f)
	}
	ch.setStatus(StatusClosed, nil)
	return err
}

func (ch *Channel) join() {
	ch.mu.Lock()
	if !ch.wanted {
		ch.mu.Unlock()
		return
	}
	ref := ch.client.nextRef()
	ch.clearJoinLocked()
	ch.joinRef = ref
	ch.timer = time.AfterFunc(ch.client.opts.JoinTimeout, func() { ch.joinExpired(ref) })
	ch.mu.Unlock()

	f, _ := wire.NewFrame(ch.topic, wire.EventJoin, map[string]any{}, &ref)
	if err := ch.client.send(f); err != nil {
		ch.mu.Lock()
		ch.clearJoinLocked()
		ch.mu.Unlock()
		ch.setStatus(StatusChannelError, err)
	}
}

func (ch *Channel) clearJoinLocked() {
	ch.joinRef = ""
	if ch.timer != nil {
		ch.timer.Stop()
		ch.timer = nil
	}
}

func (ch *Channel) joinExpired(ref string) {
	ch.mu.Lock()
	if ch.joinRef != ref {
		ch.mu.Unlock()
		return
	}
	ch.clearJoinLocked()
	ch.mu.Unlock()
	ch.setStatus(StatusTimedOut, ErrJoinTimeout)
}

func (ch *Channel) reply(f wire.Frame) {
	ch.mu.Lock()
	if f.Ref == nil || ch.joinRef == "" || *f.Ref != ch.joinRef {
		ch.mu.Unlock()
		return
	}
	ch.clearJoinLocked()
	ch.mu.Unlock()

	if gjson.GetBytes(f.Payload, "status").String() == wire.ReplyOK {
		ch.setStatus(StatusSubscribed, nil)
		return
	}
	reason := gjson.GetBytes(f.Payload, "response.reason").String()
	ch.setStatus(StatusChannelError, fmt.Errorf("realtime: join %s refused: %s", ch.topic, reason))
}

// dispatch routes a change payload by its table and type before decoding it.
func (ch *Channel) dispatch(payload []byte) {
	fields := gjson.GetManyBytes(payload, "table", "type")
	table, typ := fields[0].String(), fields[1].String()
	if ch.table != "" && table != ch.table {
		ch.client.log.Debug("dropping change for another table",
			slog.String("topic", ch.topic), slog.String("table", table))
		return
	}

	ch.mu.Lock()
	fns := append(append([]func(wire.Change){}, ch.handlers[typ]...), ch.handlers[AllEvents]...)
	ch.mu.Unlock()
	if len(fns) == 0 {
		return
	}

	var change wire.Change
	if err := json.Unmarshal(payload, &change); err != nil {
		ch.client.log.Warn("undecodable change", slog.String("topic", ch.topic), slog.String("error", err.Error()))
		return
	}
	for _, fn := range fns {
		fn(change)
	}
}

func (ch *Channel) disconnected() {
	ch.mu.Lock()
	wanted := ch.wanted
	ch.clearJoinLocked()
	ch.mu.Unlock()
	if wanted {
		ch.setStatus(StatusChannelError, ErrDisconnected)
	}
}

func (ch *Channel) closed(err error) {
	ch.mu.Lock()
	was := ch.wanted
	ch.wanted = false
	ch.clearJoinLocked()
	ch.mu.Unlock()
	if was {
		ch.setStatus(StatusClosed, err)
	}
}

func (ch *Channel) setStatus(s Status, err error) {
	ch.mu.Lock()
	ch.status = s
	fn := ch.onStatus
	ch.mu.Unlock()
	if fn != nil {
		fn(s, err)
	}
}
