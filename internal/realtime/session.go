package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

const maxFrameSize = 64 << 10

type session struct {
	hub    *Hub
	conn   *websocket.Conn
	userID uuid.UUID

	send      chan []byte
	done      chan struct{}
	closeOnce sync.Once
}

func newSession(h *Hub, conn *websocket.Conn, userID uuid.UUID) *session {
	return &session{
		hub:    h,
		conn:   conn,
		userID: userID,
		send:   make(chan []byte, h.opts.SendBuffer),
		done:   make(chan struct{}),
	}
}

// enqueue queues data for the writer. A full buffer closes the session and
// reports false.
func (s *session) enqueue(data []byte) bool {
	select {
	case <-s.done:
		return true
	default:
	}

	select {
	case s.send <- data:
		return true
	default:
		s.close()
		return false
	}
}

func (s *session) close() {
	s.closeOnce.Do(func() {
		close(s.done)
		_ = s.conn.Close()
	})
}

func (s *session) sendFrame(topic, event string, payload any, ref *string) {
	f, err := wire.NewFrame(topic, event, payload, ref)
	if err != nil {
		s.hub.log.Error("encode frame", slog.String("error", err.Error()))
		return
	}
	data, err := json.Marshal(f)
	if err != nil {
		s.hub.log.Error("encode frame", slog.String("error", err.Error()))
		return
	}
	s.enqueue(data)
}

func (s *session) reply(topic string, ref *string, status string, response map[string]any) {
	if response == nil {
		response = map[string]any{}
	}
	s.sendFrame(topic, wire.EventReply, wire.Reply{Status: status, Response: response}, ref)
}

func (s *session) readPump(ctx context.Context) {
	defer s.close()

	s.conn.SetReadLimit(maxFrameSize)
	timeout := s.hub.opts.HeartbeatTimeout
	_ = s.conn.SetReadDeadline(time.Now().Add(timeout))

	for {
		var f wire.Frame
		if err := s.conn.ReadJSON(&f); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				s.hub.log.Debug("realtime read ended", slog.String("error", err.Error()))
			}
			return
		}
		_ = s.conn.SetReadDeadline(time.Now().Add(timeout))
		s.handle(ctx, f)
	}
}

func (s *session) handle(ctx context.Context, f wire.Frame) {
	switch f.Event {
	case wire.EventHeartbeat:
		s.reply(wire.TopicPhoenix, f.Ref, wire.ReplyOK, nil)

	case wire.EventJoin:
		key, err := s.hub.authorize(ctx, s.userID, f.Topic)
		if err != nil {
			s.reply(f.Topic, f.Ref, wire.ReplyError, map[string]any{"reason": err.Error()})
			return
		}
		s.hub.subscribe(s, key)
		s.reply(f.Topic, f.Ref, wire.ReplyOK, nil)

	case wire.EventLeave:
		if table, coupleID, err := wire.ParseTopic(f.Topic); err == nil {
			s.hub.unsubscribe(s, feedKey{coupleID: coupleID, table: table})
		}
		s.reply(f.Topic, f.Ref, wire.ReplyOK, nil)

	default:
		s.reply(f.Topic, f.Ref, wire.ReplyError, map[string]any{"reason": "unknown event " + f.Event})
	}
}

func (s *session) writePump() {
	defer s.close()

	for {
		select {
		case <-s.done:
			return
		case data := <-s.send:
			_ = s.conn.SetWriteDeadline(time.Now().Add(s.hub.opts.WriteTimeout))
			if err := s.conn.WriteMessage(websocket.TextMessage, data); err != nil {
				return
			}
		}
	}
}
