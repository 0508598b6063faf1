package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"digest-stack/shared/logging"

	"github.com/sirupsen/logrus"
)

type HealthServer struct {
	monitor *Monitor
	server  *http.Server
	logger  logrus.FieldLogger
}

func NewHealthServer(monitor *Monitor, port int, logger logrus.FieldLogger) *HealthServer {
	h := &HealthServer{
		monitor: monitor,
		logger:  logging.OrDiscard(logger),
	}
	h.server = &http.Server{
		Addr:              ":" + strconv.Itoa(port),
		Handler:           h.Handler(),
		ReadHeaderTimeout: 5 * time.Second,
	}
	return h
}

// Handler serves /health and /status.
func (h *HealthServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/health", h.healthHandler)
	mux.HandleFunc("/status", h.statusHandler)
	return mux
}

func (h *HealthServer) Start() {
	h.logger.WithField("addr", h.server.Addr).Info("Health check server starting")
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			h.logger.WithError(err).Error("Health server error")
		}
	}()
}

func (h *HealthServer) Shutdown(ctx context.Context) error {
	return h.server.Shutdown(ctx)
}

func (h *HealthServer) healthHandler(w http.ResponseWriter, r *http.Request) {
	if h.monitor.IsHealthy() {
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, "OK - %s", h.monitor.GetStatusSummary())
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
		fmt.Fprintf(w, "Service unhealthy - %s", h.monitor.GetStatusSummary())
	}
}

func (h *HealthServer) statusHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, "%s", h.monitor.GetStatusSummary())
}
