//go:build e2e

package e2e_test

import (
	"context"
	"log/slog"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/heartmarshall/couplefine/internal/adapter/postgres/testhelper"
	"github.com/heartmarshall/couplefine/internal/app"
	"github.com/heartmarshall/couplefine/internal/config"
	clientapp "github.com/heartmarshall/couplefine/pkg/client/app"
	"github.com/heartmarshall/couplefine/pkg/client/cache"
)

const testPassword = "correct-horse-9"

// testLogWriter adapts testing.T to io.Writer for slog.
type testLogWriter struct{ t *testing.T }

func (w testLogWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(string(p))
	return len(p), nil
}

func testConfig() *config.Config {
	return &config.Config{
		Auth: config.AuthConfig{
			JWTSecret:        "test-secret-at-least-32-chars-long!!",
			JWTIssuer:        "couplefine-e2e",
			AccessTokenTTL:   15 * time.Minute,
			RefreshTokenTTL:  720 * time.Hour,
			PasswordHashCost: 4,
			ResetTokenTTL:    time.Hour,
			ResetURLBase:     "http://localhost/reset",
		},
		CORS: config.CORSConfig{
			AllowedOrigins: "*",
			AllowedMethods: "GET,POST,PATCH,DELETE,OPTIONS",
			AllowedHeaders: "Authorization,Content-Type",
		},
		Realtime: config.RealtimeConfig{
			Broker:           config.BrokerMemory,
			HeartbeatTimeout: 75 * time.Second,
			WriteTimeout:     10 * time.Second,
			SendBuffer:       64,
		},
	}
}

// setupTestServer runs the full server against the shared test database and
// returns its base URL.
func setupTestServer(t *testing.T) string {
	t.Helper()

	pool := testhelper.SetupTestDB(t)
	logger := slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn}))

	ctx, cancel := context.WithCancel(context.Background())
	srv, err := app.NewServerWithPool(ctx, testConfig(), logger, pool)
	require.NoError(t, err)
	stop, err := srv.Start(ctx)
	require.NoError(t, err)

	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		stop()
		cancel()
		srv.Close()
	})
	return ts.URL
}

// newClient signs up a fresh user and returns their started app.
func newClient(t *testing.T, serverURL, name string) *clientapp.App {
	t.Helper()
	ctx := context.Background()

	a, err := clientapp.New(ctx, clientapp.Options{
		ServerURL:      serverURL,
		StatePath:      filepath.Join(t.TempDir(), "state.db"),
		Version:        "e2e",
		Logger:         slog.New(slog.NewTextHandler(testLogWriter{t}, &slog.HandlerOptions{Level: slog.LevelWarn})),
		ReconnectDelay: 50 * time.Millisecond,
	})
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Close() })

	require.NoError(t, a.Start(ctx))
	email := name + "-" + uuid.NewString()[:8] + "@example.com"
	require.NoError(t, a.SignUp(ctx, email, testPassword, name))
	return a
}

func userID(t *testing.T, a *clientapp.App) uuid.UUID {
	t.Helper()
	id, ok := a.Session().UserID()
	require.True(t, ok)
	return id
}

// eventually waits for cond on a's cached state.
func eventually(t *testing.T, a *clientapp.App, cond func(cache.State) bool, msg string) {
	t.Helper()
	require.Eventually(t, func() bool { return cond(a.Store().State()) }, 10*time.Second, 20*time.Millisecond, msg)
}

// bothPartners reports whether the cached couple embeds both profiles.
func bothPartners(st cache.State) bool {
	c := st.Couple
	return c != nil && c.Partner2ID != nil &&
		c.Partner1 != nil && c.Partner1.ID == c.Partner1ID &&
		c.Partner2 != nil && c.Partner2.ID == *c.Partner2ID
}
