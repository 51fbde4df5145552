package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/tidwall/gjson"

	"github.com/heartmarshall/couplefine/internal/domain"
	"github.com/heartmarshall/couplefine/pkg/wire"
)

type memberChecker interface {
	IsMember(ctx context.Context, userID, coupleID uuid.UUID) (bool, error)
}

type sessionRecorder interface {
	SessionOpened()
	SessionClosed()
}

// Options tune sessions served by a Hub.
type Options struct {
	HeartbeatTimeout time.Duration
	WriteTimeout     time.Duration
	SendBuffer       int
	CheckOrigin      func(r *http.Request) bool
}

func (o Options) withDefaults() Options {
	if o.HeartbeatTimeout <= 0 {
		o.HeartbeatTimeout = 75 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
	if o.SendBuffer <= 0 {
		o.SendBuffer = 64
	}
	if o.CheckOrigin == nil {
		o.CheckOrigin = func(*http.Request) bool { return true }
	}
	return o
}

type feedKey struct {
	coupleID uuid.UUID
	table    string
}

func (k feedKey) topic() string { return wire.Topic(k.table, k.coupleID) }

// Hub routes broker messages to the websocket sessions joined to each
// couple's table feeds.
type Hub struct {
	log      *slog.Logger
	broker   Broker
	members  memberChecker
	recorder sessionRecorder
	opts     Options
	upgrader websocket.Upgrader

	mu       sync.RWMutex
	feeds    map[feedKey]map[*session]struct{}
	sessions map[*session]map[feedKey]struct{}
}

// NewHub creates a Hub. recorder may be nil.
func NewHub(logger *slog.Logger, broker Broker, members memberChecker, recorder sessionRecorder, opts Options) *Hub {
	opts = opts.withDefaults()
	return &Hub{
		log:      logger.With("component", "realtime"),
		broker:   broker,
		members:  members,
		recorder: recorder,
		opts:     opts,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     opts.CheckOrigin,
		},
		feeds:    make(map[feedKey]map[*session]struct{}),
		sessions: make(map[*session]map[feedKey]struct{}),
	}
}

// Run consumes the broker until ctx ends, then closes every session.
func (h *Hub) Run(ctx context.Context) error {
	msgs, err := h.broker.Subscribe(ctx)
	if err != nil {
		return fmt.Errorf("realtime.Run: subscribe: %w", err)
	}

	defer h.closeAll()
	for {
		select {
		case <-ctx.Done():
			return nil
		case msg, ok := <-msgs:
			if !ok {
				if ctx.Err() != nil {
					return nil
				}
				return ErrBrokerClosed
			}
			h.dispatch(msg)
		}
	}
}

// Serve upgrades the request and runs a session for userID until the
// connection ends.
func (h *Hub) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.WarnContext(r.Context(), "websocket upgrade failed", slog.String("error", err.Error()))
		return
	}

	s := newSession(h, conn, userID)
	h.register(s)
	defer h.unregister(s)

	go s.writePump()
	s.readPump(context.WithoutCancel(r.Context()))
}

// Sessions returns the number of connected sessions.
func (h *Hub) Sessions() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.sessions)
}

func (h *Hub) register(s *session) {
	h.mu.Lock()
	h.sessions[s] = make(map[feedKey]struct{})
	h.mu.Unlock()

	if h.recorder != nil {
		h.recorder.SessionOpened()
	}
	h.log.Debug("session opened", slog.String("user_id", s.userID.String()))
}

func (h *Hub) unregister(s *session) {
	s.close()

	h.mu.Lock()
	for key := range h.sessions[s] {
		h.removeLocked(s, key)
	}
	_, known := h.sessions[s]
	delete(h.sessions, s)
	h.mu.Unlock()

	if known && h.recorder != nil {
		h.recorder.SessionClosed()
	}
	h.log.Debug("session closed", slog.String("user_id", s.userID.String()))
}

func (h *Hub) subscribe(s *session, key feedKey) {
	h.mu.Lock()
	defer h.mu.Unlock()

	keys, ok := h.sessions[s]
	if !ok {
		return
	}
	keys[key] = struct{}{}
	subs := h.feeds[key]
	if subs == nil {
		subs = make(map[*session]struct{})
		h.feeds[key] = subs
	}
	subs[s] = struct{}{}
}

func (h *Hub) unsubscribe(s *session, key feedKey) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(s, key)
}

func (h *Hub) removeLocked(s *session, key feedKey) {
	if keys, ok := h.sessions[s]; ok {
		delete(keys, key)
	}
	if subs, ok := h.feeds[key]; ok {
		delete(subs, s)
		if len(subs) == 0 {
			delete(h.feeds, key)
		}
	}
}

func (h *Hub) dispatch(msg Message) {
	key := feedKey{coupleID: msg.CoupleID, table: msg.Table}

	frame := wire.Frame{
		Topic:   key.topic(),
		Event:   wire.EventChanges,
		Payload: json.RawMessage(msg.Payload),
	}
	data, err := json.Marshal(frame)
	if err != nil {
		h.log.Error("encode change frame", slog.String("error", err.Error()))
		return
	}

	h.mu.RLock()
	targets := make([]*session, 0, len(h.feeds[key]))
	for s := range h.feeds[key] {
		targets = append(targets, s)
	}
	h.mu.RUnlock()

	for _, s := range targets {
		if !s.enqueue(data) {
			h.log.Warn("slow realtime consumer disconnected",
				slog.String("user_id", s.userID.String()),
				slog.String("topic", frame.Topic),
			)
		}
	}

	if domain.Table(msg.Table) == domain.TableCouples {
		h.revokeFormerMembers(msg)
	}
}

// revokeFormerMembers drops every feed of the couple held by a user who is
// no longer one of its partners, telling them with phx_close.
func (h *Hub) revokeFormerMembers(msg Message) {
	rec := gjson.GetBytes(msg.Payload, "record")
	if !rec.Exists() {
		return
	}
	active := rec.Get("is_active").Bool() && gjson.GetBytes(msg.Payload, "type").String() != domain.ChangeDelete.String()
	p1 := rec.Get("partner_1_id").String()
	p2 := rec.Get("partner_2_id").String()

	isMember := func(id uuid.UUID) bool {
		if !active {
			return false
		}
		s := id.String()
		return s == p1 || (p2 != "" && s == p2)
	}

	type revoked struct {
		s   *session
		key feedKey
	}
	var drop []revoked

	h.mu.Lock()
	for key, subs := range h.feeds {
		if key.coupleID != msg.CoupleID {
			continue
		}
		for s := range subs {
			if !isMember(s.userID) {
				drop = append(drop, revoked{s: s, key: key})
			}
		}
	}
	for _, d := range drop {
		h.removeLocked(d.s, d.key)
	}
	h.mu.Unlock()

	for _, d := range drop {
		d.s.sendFrame(d.key.topic(), wire.EventClose, map[string]any{}, nil)
	}
}

func (h *Hub) closeAll() {
	h.mu.RLock()
	all := make([]*session, 0, len(h.sessions))
	for s := range h.sessions {
		all = append(all, s)
	}
	h.mu.RUnlock()

	for _, s := range all {
		s.close()
	}
}

// authorize resolves a join topic to a feed the user may read.
func (h *Hub) authorize(ctx context.Context, userID uuid.UUID, topic string) (feedKey, error) {
	table, coupleID, err := wire.ParseTopic(topic)
	if err != nil {
		return feedKey{}, err
	}
	if !domain.Table(table).IsValid() {
		return feedKey{}, fmt.Errorf("unknown table %q", table)
	}

	ok, err := h.members.IsMember(ctx, userID, coupleID)
	if err != nil {
		return feedKey{}, err
	}
	if !ok {
		return feedKey{}, errNotMember
	}
	return feedKey{coupleID: coupleID, table: table}, nil
}

var errNotMember = errors.New("not a member of this couple")
