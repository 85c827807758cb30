package healthprobe

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	hc := New()

	if hc == nil {
		t.Fatal("New() returned nil")
	}

	if time.Since(hc.startTime) > 1*time.Second {
		t.Errorf("Start time is too old: %v", hc.startTime)
	}

	if hc.ready.Load() {
		t.Error("HealthChecker should not be ready by default")
	}
}

func decodeProbe(t *testing.T, handler http.HandlerFunc, path string) (int, HealthResponse) {
	t.Helper()

	req := httptest.NewRequest(http.MethodGet, path, nil)
	w := httptest.NewRecorder()
	handler(w, req)

	resp := w.Result()
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %s, want application/json", ct)
	}

	var body HealthResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		t.Fatalf("Failed to decode probe response: %v", err)
	}

	return resp.StatusCode, body
}

func TestHealth_Handler(t *testing.T) {
	hc := New()

	status, body := decodeProbe(t, hc.Health(), "/health")

	if status != http.StatusOK {
		t.Errorf("Health handler status = %d, want %d", status, http.StatusOK)
	}
	if body.Status != "healthy" {
		t.Errorf("Status = %s, want healthy", body.Status)
	}
	if body.Uptime == "" {
		t.Error("Uptime is empty")
	}
	if body.StartedAt.IsZero() {
		t.Error("StartedAt is zero")
	}
}

func TestHealth_AlwaysReturnsOK(t *testing.T) {
	// Liveness ignores the ready flag entirely.
	hc := New()

	for _, ready := range []bool{false, true} {
		hc.SetReady(ready)

		status, _ := decodeProbe(t, hc.Health(), "/health")
		if status != http.StatusOK {
			t.Errorf("Health status = %d, want %d (ready=%v)", status, http.StatusOK, ready)
		}
	}
}

func TestReady_StateChanges(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	status, body := decodeProbe(t, handler, "/ready")
	if status != http.StatusServiceUnavailable {
		t.Errorf("Initial ready status = %d, want %d", status, http.StatusServiceUnavailable)
	}
	if body.Status != "not_ready" {
		t.Errorf("Status = %s, want not_ready", body.Status)
	}
	if body.Message == "" {
		t.Error("Message is empty for not_ready state")
	}

	hc.SetReady(true)
	status, body = decodeProbe(t, handler, "/ready")
	if status != http.StatusOK {
		t.Errorf("Ready status after SetReady(true) = %d, want %d", status, http.StatusOK)
	}
	if body.Status != "ready" {
		t.Errorf("Status = %s, want ready", body.Status)
	}
	if body.Uptime == "" {
		t.Error("Uptime is empty")
	}

	hc.SetReady(false)
	status, _ = decodeProbe(t, handler, "/ready")
	if status != http.StatusServiceUnavailable {
		t.Errorf("Ready status after SetReady(false) = %d, want %d", status, http.StatusServiceUnavailable)
	}
}

func TestHealthChecker_ConcurrentAccess(t *testing.T) {
	hc := New()
	handler := hc.Ready()

	done := make(chan bool)

	go func() {
		for i := 0; i < 100; i++ {
			hc.SetReady(i%2 == 0)
		}
		done <- true
	}()

	go func() {
		for i := 0; i < 100; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ready", nil)
			w := httptest.NewRecorder()
			handler(w, req)
		}
		done <- true
	}()

	<-done
	<-done
}
