package monitoring

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"cinemai/shared/logging"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type HealthServer struct {
	monitor *Monitor
	addr    string
	server  *http.Server
}

func NewHealthServer(monitor *Monitor, port string) *HealthServer {
	if port == "" || port == "0" {
		port = "8080"
	}
	return &HealthServer{
		monitor: monitor,
		addr:    ":" + port,
	}
}

// Routes registers /health, /status and /metrics on r.
func (h *HealthServer) Routes(r chi.Router) {
	r.Get("/health", h.healthHandler)
	r.Get("/status", h.statusHandler)
	r.Method(http.MethodGet, "/metrics", promhttp.Handler())
}

// Start serves the health routes on their own listener in the background.
func (h *HealthServer) Start() {
	r := chi.NewRouter()
	h.Routes(r)
	h.server = &http.Server{Addr: h.addr, Handler: r, ReadHeaderTimeout: 5 * time.Second}

	logging.Info().Str("addr", h.addr).Msg("health check server starting")
	go func() {
		if err := h.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logging.Error().Err(err).Msg("health server error")
		}
	}()
}

func (h *HealthServer) Shutdown(ctx context.Context) error {
	if h.server == nil {
		return nil
	}
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
