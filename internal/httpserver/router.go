package httpserver

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// Pinger はヘルスチェック対象の依存先
type Pinger interface {
	PingContext(ctx context.Context) error
}

type serviceStatus struct {
	Status  string `json:"status"`
	Details string `json:"details,omitempty"`
}

type healthResponse struct {
	Status   string                   `json:"status"`
	Uptime   string                   `json:"uptime"`
	Services map[string]serviceStatus `json:"services"`
}

// NewRouter は /healthz と /metrics を持つルーターを返す
func NewRouter(services map[string]Pinger, metrics http.Handler, upSince time.Time, logger *zap.SugaredLogger) http.Handler {
	r := chi.NewRouter()
	r.Get("/healthz", healthHandler(services, upSince, logger))
	if metrics != nil {
		r.Method(http.MethodGet, "/metrics", metrics)
	}
	return r
}

func healthHandler(services map[string]Pinger, upSince time.Time, logger *zap.SugaredLogger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp := healthResponse{
			Status:   "ok",
			Uptime:   time.Since(upSince).Round(time.Second).String(),
			Services: make(map[string]serviceStatus, len(services)),
		}

		for name, pinger := range services {
			status := serviceStatus{Status: "ok"}
			if err := pinger.PingContext(r.Context()); err != nil {
				status = serviceStatus{Status: "down", Details: err.Error()}
				resp.Status = "down"
				logger.Warnw("Health check failed", "service", name, "error", err)
			}
			resp.Services[name] = status
		}

		w.Header().Set("Content-Type", "application/json")
		if resp.Status != "ok" {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(resp)
	}
}
