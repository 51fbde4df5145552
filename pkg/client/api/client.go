// Package api is a typed client for the couplefine HTTP API.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/heartmarshall/couplefine/pkg/wire"
)

// Options configures a Client.
type Options struct {
	BaseURL    string
	HTTPClient *http.Client
	Logger     *slog.Logger

	// Retry applies to safe and idempotent calls only. The zero value
	// means DefaultRetryPolicy.
	Retry RetryPolicy

	// BreakerThreshold consecutive transient failures open the breaker
	// for BreakerCooldown. Defaults 5 and 30s; negative disables it.
	BreakerThreshold int
	BreakerCooldown  time.Duration
}

// Client calls the API. It is safe for concurrent use.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	log     *slog.Logger
	retry   RetryPolicy
	breaker *Breaker

	mu    sync.RWMutex
	token string
}

// New creates a Client.
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("api: parse base url: %w", err)
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, fmt.Errorf("api: base url %q must be http or https", opts.BaseURL)
	}

	if opts.HTTPClient == nil {
		opts.HTTPClient = &http.Client{Timeout: 30 * time.Second}
	}
	if opts.Logger == nil {
		opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	if opts.Retry.MaxAttempts <= 0 {
		opts.Retry = DefaultRetryPolicy()
	}
	if opts.BreakerThreshold == 0 {
		opts.BreakerThreshold = 5
	}
	if opts.BreakerCooldown <= 0 {
		opts.BreakerCooldown = 30 * time.Second
	}

	return &Client{
		baseURL: base,
		http:    opts.HTTPClient,
		log:     opts.Logger.With("component", "api"),
		retry:   opts.Retry,
		breaker: NewBreaker(opts.BreakerThreshold, opts.BreakerCooldown),
	}, nil
}

// SetAccessToken sets the bearer token sent with every request. An empty
// token sends none.
func (c *Client) SetAccessToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AccessToken returns the current bearer token.
func (c *Client) AccessToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// Breaker exposes the circuit breaker state.
func (c *Client) Breaker() *Breaker { return c.breaker }

// RealtimeURL returns the websocket endpoint of the server.
func (c *Client) RealtimeURL() string {
	u := *c.baseURL
	if u.Scheme == "https" {
		u.Scheme = "wss"
	} else {
		u.Scheme = "ws"
	}
	u.Path = strings.TrimRight(u.Path, "/") + "/realtime"
	return u.String()
}

type request struct {
	method string
	path   string
	query  url.Values
	body   any
	out    any
	// idempotent marks a non-GET call as safe to retry.
	idempotent bool
}

func (r request) retryable() bool {
	return r.method == http.MethodGet || r.idempotent
}

func (c *Client) do(ctx context.Context, req request) error {
	var body []byte
	if req.body != nil {
		var err error
		if body, err = json.Marshal(req.body); err != nil {
			return fmt.Errorf("api: marshal %s %s: %w", req.method, req.path, err)
		}
	}

	attempts := 1
	if req.retryable() {
		attempts = c.retry.MaxAttempts
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if attempt > 1 {
			if err := sleep(ctx, c.retry.backoff(attempt)); err != nil {
				return err
			}
			c.log.DebugContext(ctx, "retrying request",
				slog.String("method", req.method),
				slog.String("path", req.path),
				slog.Int("attempt", attempt),
				slog.String("error", lastErr.Error()))
		}

		if err := c.breaker.Allow(); err != nil {
			return err
		}

		err := c.send(ctx, req, body)
		if err == nil {
			c.breaker.Success()
			return nil
		}
		if !transient(err) {
			c.breaker.Success()
			return err
		}
		c.breaker.Failure()
		lastErr = err

		if ctx.Err() != nil {
			return err
		}
	}
	return lastErr
}

func (c *Client) send(ctx context.Context, req request, body []byte) error {
	u := *c.baseURL
	u.Path += req.path
	if len(req.query) > 0 {
		u.RawQuery = req.query.Encode()
	}

	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	httpReq, err := http.NewRequestWithContext(ctx, req.method, u.String(), rd)
	if err != nil {
		return fmt.Errorf("api: build request: %w", err)
	}
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}
	if token := c.AccessToken(); token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		return &NetworkError{Op: req.method + " " + req.path, Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return decodeError(resp)
	}
	if req.out == nil || resp.StatusCode == http.StatusNoContent {
		io.Copy(io.Discard, resp.Body) //nolint:errcheck
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(req.out); err != nil {
		return fmt.Errorf("api: decode %s %s: %w", req.method, req.path, err)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	apiErr := &Error{Status: resp.StatusCode}
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body wire.Error
	if json.Unmarshal(raw, &body) == nil && body.Code != "" {
		apiErr.Code = body.Code
		apiErr.Message = body.Message
		apiErr.Fields = body.Fields
	} else if len(raw) > 0 {
		apiErr.Message = strings.TrimSpace(string(raw))
	}
	return apiErr
}

// NetworkError is a failure to reach the server.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string { return "api: " + e.Op + ": " + e.Err.Error() }
func (e *NetworkError) Unwrap() error { return e.Err }

// IsNetwork reports whether err is a transport failure or an open breaker.
func IsNetwork(err error) bool {
	var ne *NetworkError
	return errors.As(err, &ne) || errors.Is(err, ErrCircuitOpen)
}

func transient(err error) bool {
	var ne *NetworkError
	if errors.As(err, &ne) {
		return !errors.Is(err, context.Canceled)
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable()
	}
	return false
}
