package healthprobe

import (
	"encoding/json"
	"net/http"
	"sync/atomic"
	"time"
)

// HealthChecker provides liveness and readiness probes. Liveness only
// reports that the process is up; readiness flips once the pipeline has
// finished its startup sequence (storage connected, first poll scheduled).
type HealthChecker struct {
	startTime time.Time
	ready     atomic.Bool
}

// New creates a new HealthChecker.
func New() *HealthChecker {
	return &HealthChecker{
		startTime: time.Now().UTC(),
	}
}

// SetReady marks the service as ready to serve traffic.
func (h *HealthChecker) SetReady(ready bool) {
	h.ready.Store(ready)
}

// HealthResponse represents the health check response.
type HealthResponse struct {
	Status    string    `json:"status"`
	Uptime    string    `json:"uptime"`
	StartedAt time.Time `json:"started_at"`
	Message   string    `json:"message,omitempty"`
}

// Health returns an HTTP handler for liveness checks.
// Always returns 200 OK if the process is running.
func (h *HealthChecker) Health() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		h.writeResponse(w, http.StatusOK, HealthResponse{
			Status:    "healthy",
			Uptime:    time.Since(h.startTime).String(),
			StartedAt: h.startTime,
		})
	}
}

// Ready returns an HTTP handler for readiness checks.
// Returns 200 OK if ready, 503 Service Unavailable if not.
func (h *HealthChecker) Ready() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if !h.ready.Load() {
			h.writeResponse(w, http.StatusServiceUnavailable, HealthResponse{
				Status:    "not_ready",
				StartedAt: h.startTime,
				Message:   "service is starting",
			})
			return
		}

		h.writeResponse(w, http.StatusOK, HealthResponse{
			Status:    "ready",
			Uptime:    time.Since(h.startTime).String(),
			StartedAt: h.startTime,
		})
	}
}

func (h *HealthChecker) writeResponse(w http.ResponseWriter, status int, resp HealthResponse) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}
