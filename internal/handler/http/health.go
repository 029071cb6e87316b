// Package http provides the HTTP surface of the summarizer: summary routes,
// health probes, metrics and the middleware chain in front of them.
package http

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"smart-summarizer/internal/handler/http/respond"
	"smart-summarizer/internal/observability/logging"
	"smart-summarizer/internal/usecase/summarize"
)

// healthCheckTimeout bounds a single engine probe.
const healthCheckTimeout = 5 * time.Second

// HealthResponse represents the JSON response for health check endpoints.
type HealthResponse struct {
	Status    string                 `json:"status"`    // "healthy" or "unhealthy"
	Timestamp string                 `json:"timestamp"` // ISO 8601 format
	Checks    map[string]CheckStatus `json:"checks"`    // Status of each check item
	Version   string                 `json:"version"`   // Application version
}

// CheckStatus represents the status of a single health check.
type CheckStatus struct {
	Status  string         `json:"status"`            // "healthy", "unhealthy" or "unknown"
	Message string         `json:"message,omitempty"` // Optional status message
	Details map[string]any `json:"details,omitempty"` // Optional additional details
}

// HealthHandler reports whether the summarization engine can serve requests.
// Engines that implement summarize.HealthChecker are probed; others are
// reported as "unknown" without failing the check.
type HealthHandler struct {
	Engine  summarize.Engine
	Backend string
	Version string
}

// ServeHTTP returns 200 OK if the engine is healthy, or 503 Service Unavailable otherwise.
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	check := h.checkEngine(ctx)
	status, code := "healthy", http.StatusOK
	if check.Status == "unhealthy" {
		status, code = "unhealthy", http.StatusServiceUnavailable
	}

	w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
	respond.JSON(w, code, HealthResponse{
		Status:    status,
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		Checks:    map[string]CheckStatus{"engine": check},
		Version:   h.Version,
	})
}

func (h *HealthHandler) checkEngine(ctx context.Context) CheckStatus {
	if h.Engine == nil {
		return CheckStatus{Status: "unhealthy", Message: "not configured"}
	}
	checker, ok := h.Engine.(summarize.HealthChecker)
	if !ok {
		return CheckStatus{
			Status:  "unknown",
			Message: "backend does not expose a health probe",
			Details: map[string]any{"backend": h.Backend},
		}
	}

	hs, err := checker.Health(ctx)
	if err != nil {
		logging.ForRequest(ctx).Warn("engine health check failed",
			slog.String("backend", h.Backend),
			slog.String("error", respond.SanitizeError(err)))
		return CheckStatus{Status: "unhealthy", Message: respond.SanitizeError(err)}
	}
	if hs == nil {
		return CheckStatus{Status: "unhealthy", Message: "no status returned"}
	}

	check := CheckStatus{
		Status:  "healthy",
		Message: hs.Message,
		Details: map[string]any{
			"backend":      hs.Backend,
			"latency_ms":   hs.Latency.Milliseconds(),
			"circuit_open": hs.CircuitOpen,
		},
	}
	if !hs.Healthy {
		check.Status = "unhealthy"
	}
	return check
}

// ReadyHandler handles readiness probe requests.
// Ready means the engine's circuit breaker admits traffic; a backend that is
// briefly unhealthy but not tripped still receives requests.
type ReadyHandler struct {
	Engine summarize.Engine
}

// ServeHTTP returns 200 OK when ready, or 503 Service Unavailable.
func (h *ReadyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "message": "engine not configured"})
		return
	}

	checker, ok := h.Engine.(summarize.HealthChecker)
	if !ok {
		respond.JSON(w, http.StatusOK, map[string]any{"ready": true})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
	defer cancel()

	hs, err := checker.Health(ctx)
	switch {
	case err != nil || hs == nil:
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "message": "health check failed"})
	case hs.CircuitOpen:
		respond.JSON(w, http.StatusServiceUnavailable, map[string]any{"ready": false, "message": "circuit breaker open"})
	default:
		respond.JSON(w, http.StatusOK, map[string]any{"ready": true})
	}
}

// LiveHandler handles liveness probe requests.
// It always returns 200 OK while the process is able to respond.
type LiveHandler struct{}

func (LiveHandler) ServeHTTP(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("alive"))
}
