package monitoring

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMonitorLifecycle(t *testing.T) {
	m := NewMonitor(nil)

	if !m.IsHealthy() || m.GetStatusSummary() != "No runs yet" {
		t.Errorf("fresh monitor: healthy=%v summary=%q", m.IsHealthy(), m.GetStatusSummary())
	}

	m.RecordSuccess("3 updates summarized", time.Second)
	if !m.IsHealthy() || !strings.Contains(m.GetStatusSummary(), "3 updates summarized") {
		t.Errorf("after success: healthy=%v summary=%q", m.IsHealthy(), m.GetStatusSummary())
	}

	m.RecordPartialFailure(errors.New("feed failed"), time.Second)
	if !m.IsHealthy() {
		t.Error("partial failure should not change health")
	}

	m.RecordCriticalFailure(errors.New("boom"), time.Second)
	if m.IsHealthy() || !strings.HasPrefix(m.GetStatusSummary(), "❌ Last run failed") {
		t.Errorf("after critical failure: healthy=%v summary=%q", m.IsHealthy(), m.GetStatusSummary())
	}
}

func TestHealthHandlers(t *testing.T) {
	m := NewMonitor(nil)
	h := NewHealthServer(m, 0, nil).Handler()

	tests := []struct {
		name       string
		setup      func()
		path       string
		wantStatus int
		wantPrefix string
	}{
		{"healthy before runs", func() {}, "/health", http.StatusOK, "OK - No runs yet"},
		{"status before runs", func() {}, "/status", http.StatusOK, "No runs yet"},
		{"unhealthy after failure", func() { m.RecordCriticalFailure(errors.New("down"), 0) }, "/health", http.StatusServiceUnavailable, "Service unhealthy"},
		{"status always 200", func() {}, "/status", http.StatusOK, "❌"},
		{"unknown path", func() {}, "/metrics", http.StatusNotFound, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.setup()
			rec := httptest.NewRecorder()
			h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
			if !strings.HasPrefix(rec.Body.String(), tt.wantPrefix) {
				t.Errorf("body = %q, want prefix %q", rec.Body.String(), tt.wantPrefix)
			}
		})
	}
}
