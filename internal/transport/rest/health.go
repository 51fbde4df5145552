package rest

import (
	"context"
	"net/http"
	"sort"
	"time"
)

const probeTimeout = 3 * time.Second

// Pinger is a dependency probed by readiness checks.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HealthHandler serves health check endpoints.
type HealthHandler struct {
	version string
	names   []string
	checks  map[string]Pinger
}

// NewHealthHandler creates a HealthHandler probing database and, when set,
// any extra named components such as the realtime broker.
func NewHealthHandler(db Pinger, version string, extra map[string]Pinger) *HealthHandler {
	checks := map[string]Pinger{"database": db}
	for name, p := range extra {
		if p != nil {
			checks[name] = p
		}
	}
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)
	return &HealthHandler{version: version, names: names, checks: checks}
}

// HealthResponse is the JSON response for /health and /ready.
type HealthResponse struct {
	Status     string                `json:"status"`
	Version    string                `json:"version,omitempty"`
	Components map[string]CompStatus `json:"components,omitempty"`
	Timestamp  time.Time             `json:"timestamp"`
}

// CompStatus is the status of an individual component.
type CompStatus struct {
	Status  string `json:"status"`
	Latency string `json:"latency,omitempty"`
}

// Live is the liveness probe. Always returns 200.
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now(),
	})
}

// Ready is the readiness probe: 200 when every component answers, 503 otherwise.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	_, ok := h.probe(r.Context())
	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{Status: status, Timestamp: time.Now()})
}

// Health is the full health check with per-component latency and the version.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	components, ok := h.probe(r.Context())
	status, code := "ok", http.StatusOK
	if !ok {
		status, code = "down", http.StatusServiceUnavailable
	}
	writeJSON(w, code, HealthResponse{
		Status:     status,
		Version:    h.version,
		Components: components,
		Timestamp:  time.Now(),
	})
}

func (h *HealthHandler) probe(ctx context.Context) (map[string]CompStatus, bool) {
	ctx, cancel := context.WithTimeout(ctx, probeTimeout)
	defer cancel()

	out := make(map[string]CompStatus, len(h.names))
	healthy := true
	for _, name := range h.names {
		start := time.Now()
		if err := h.checks[name].Ping(ctx); err != nil {
			out[name] = CompStatus{Status: "down"}
			healthy = false
			continue
		}
		out[name] = CompStatus{Status: "ok", Latency: time.Since(start).String()}
	}
	return out, healthy
}
