// Package realtime subscribes to the server's per-couple change feeds over
// a Phoenix-style websocket protocol.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

var (
	ErrNotConnected   = errors.New("realtime: not connected")
	ErrDisconnected   = errors.New("realtime: connection lost")
	ErrJoinTimeout    = errors.New("realtime: join timed out")
	ErrClosedByServer = errors.New("realtime: channel closed by server")
)

// Options configures a Client.
type Options struct {
	// URL is the websocket endpoint, e.g. ws://host/realtime.
	URL string
	// Token returns the access token sent on every (re)connect.
	Token  func() string
	Logger *slog.Logger
	Dialer *websocket.Dialer

	HeartbeatInterval time.Duration // default 30s
	ReconnectDelay    time.Duration // default 5s
	JoinTimeout       time.Duration // default 10s
	WriteTimeout      time.Duration // default 10s
}

func (o *Options) defaults() {
	if o.Token == nil {
		o.Token = func() string { return "" }
	}
	if o.Logger == nil {
		o.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if o.Dialer == nil {
		o.Dialer = websocket.DefaultDialer
	}
	if o.HeartbeatInterval <= 0 {
		o.HeartbeatInterval = 30 * time.Second
	}
	if o.ReconnectDelay <= 0 {
		o.ReconnectDelay = 5 * time.Second
	}
	if o.JoinTimeout <= 0 {
		o.JoinTimeout = 10 * time.Second
	}
	if o.WriteTimeout <= 0 {
		o.WriteTimeout = 10 * time.Second
	}
}

// Client keeps one websocket open, reconnecting after ReconnectDelay and
// re-joining every subscribed channel.
type Client struct {
	opts Options
	log  *slog.Logger
	ref  atomic.Uint64

	mu       sync.Mutex
	conn     *websocket.Conn
	channels map[string]*Channel
	watchers []func(connected bool)
	cancel   context.CancelFunc
	done     chan struct{}

	writeMu   sync.Mutex
	connected atomic.Bool
}

// New creates a client. Nothing is dialed until Start.
func New(opts Options) *Client {
	opts.defaults()
	return &Client{
		opts:     opts,
		log:      opts.Logger.With("component", "realtime"),
		channels: map[string]*Channel{},
	}
}

// Start connects in the background. Calling it twice is a no-op.
func (c *Client) Start(ctx context.Context) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		return
	}
	ctx, c.cancel = context.WithCancel(ctx)
	c.done = make(chan struct{})
	go c.run(ctx)
}

// Close disconnects and closes every channel.
func (c *Client) Close() error {
	c.mu.Lock()
	cancel, done, conn := c.cancel, c.done, c.conn
	chans := c.channelList()
	c.channels = map[string]*Channel{}
	c.mu.Unlock()

	if cancel == nil {
		return nil
	}
	cancel()
	if conn != nil {
		conn.Close()
	}
	<-done

	for _, ch := range chans {
		ch.closed(nil)
	}
	return nil
}

// Connected reports whether the socket is open.
func (c *Client) Connected() bool { return c.connected.Load() }

// OnConnectionChange registers fn for socket open/close transitions.
func (c *Client) OnConnectionChange(fn func(connected bool)) {
	c.mu.Lock()
	c.watchers = append(c.watchers, fn)
	c.mu.Unlock()
}

// Channel returns the channel for topic, creating it on first use.
func (c *Client) Channel(topic string) *Channel {
	c.mu.Lock()
	defer c.mu.Unlock()
	if ch, ok := c.channels[topic]; ok {
		return ch
	}
	table, _, _ := wire.ParseTopic(topic)
	ch := &Channel{
		client:   c,
		topic:    topic,
		table:    table,
		handlers: map[string][]func(wire.Change){},
	}
	c.channels[topic] = ch
	return ch
}

// Channels returns the topics with an open channel.
func (c *Client) Channels() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.channels))
	for topic := range c.channels {
		out = append(out, topic)
	}
	return out
}

func (c *Client) channelList() []*Channel {
	out := make([]*Channel, 0, len(c.channels))
	for _, ch := range c.channels {
		out = append(out, ch)
	}
	return out
}

func (c *Client) forget(ch *Channel) {
	c.mu.Lock()
	if c.channels[ch.topic] == ch {
		delete(c.channels, ch.topic)
	}
	c.mu.Unlock()
}

func (c *Client) nextRef() string {
	return strconv.FormatUint(c.ref.Add(1), 10)
}

func (c *Client) run(ctx context.Context) {
	defer close(c.done)
	for {
		err := c.session(ctx)
		if ctx.Err() != nil {
			return
		}
		c.log.Warn("realtime disconnected",
			slog.String("error", err.Error()),
			slog.Duration("retry_in", c.opts.ReconnectDelay))

		t := time.NewTimer(c.opts.ReconnectDelay)
		select {
		case <-ctx.Done():
			t.Stop()
			return
		case <-t.C:
		}
	}
}

// session runs one connection until it fails.
func (c *Client) session(ctx context.Context) error {
	conn, _, err := c.opts.Dialer.DialContext(ctx, c.dialURL(), nil)
	if err != nil {
		return fmt.Errorf("dial: %w", err)
	}

	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	c.setConnected(true)
	c.log.Debug("realtime connected")

	defer func() {
		c.mu.Lock()
		c.conn = nil
		chans := c.channelList()
		c.mu.Unlock()
		conn.Close()
		c.setConnected(false)
		for _, ch := range chans {
			ch.disconnected()
		}
	}()

	// channels subscribed after this point join themselves
	c.mu.Lock()
	chans := c.channelList()
	c.mu.Unlock()
	for _, ch := range chans {
		ch.join()
	}

	hbCtx, stop := context.WithCancel(ctx)
	defer stop()
	go c.heartbeat(hbCtx, conn)

	for {
		var f wire.Frame
		if err := conn.ReadJSON(&f); err != nil {
			return err
		}
		c.route(f)
	}
}

func (c *Client) heartbeat(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(c.opts.HeartbeatInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			// unblock the reader
			conn.Close()
			return
		case <-ticker.C:
			ref := c.nextRef()
			f, _ := wire.NewFrame(wire.TopicPhoenix, wire.EventHeartbeat, map[string]any{}, &ref)
			if err := c.send(f); err != nil {
				c.log.Debug("heartbeat failed", slog.String("error", err.Error()))
				conn.Close()
				return
			}
		}
	}
}

func (c *Client) send(f wire.Frame) error {
	c.mu.Lock()
	conn := c.conn
	c.mu.Unlock()
	if conn == nil {
		return ErrNotConnected
	}

	c.writeMu.Lock()
	defer c.writeMu.Unlock()
	_ = conn.SetWriteDeadline(time.Now().Add(c.opts.WriteTimeout))
	return conn.WriteJSON(f)
}

func (c *Client) route(f wire.Frame) {
	if f.Topic == wire.TopicPhoenix {
		return
	}

	c.mu.Lock()
	ch := c.channels[f.Topic]
	c.mu.Unlock()
	if ch == nil {
		return
	}

	switch f.Event {
	case wire.EventReply:
		ch.reply(f)
	case wire.EventChanges:
		ch.dispatch(f.Payload)
	case wire.EventClose:
		c.forget(ch)
		ch.closed(ErrClosedByServer)
	case wire.EventError:
		ch.setStatus(StatusChannelError, errors.New("realtime: channel error"))
	}
}

func (c *Client) setConnected(v bool) {
	if c.connected.Swap(v) == v {
		return
	}
	c.mu.Lock()
	watchers := append([]func(bool){}, c.watchers...)
	c.mu.Unlock()
	for _, fn := range watchers {
		fn(v)
	}
}

func (c *Client) dialURL() string {
	u, err := url.Parse(c.opts.URL)
	if err != nil {
		return c.opts.URL
	}
	q := u.Query()
	if tok := c.opts.Token(); tok != "" {
		q.Set("access_token", tok)
	}
	q.Set("vsn", "1.0.0")
	u.RawQuery = q.Encode()
	return u.String()
}
