package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/kyaraz/halkaarz/internal/version"
)

const pingTimeout = 5 * time.Second

type healthResponse struct {
	Status     string            `json:"status"`
	Version    version.BuildInfo `json:"version"`
	Components map[string]string `json:"components"`
	IPOs       int               `json:"ipos"`
	LastSyncAt *time.Time        `json:"last_sync_at,omitempty"`
	Clients    int               `json:"stream_clients"`
}

// health reports readiness. The database and the job scheduler must both be
// up for a 200; anything else answers 503 so the orchestrator restarts us.
func (a *api) health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), pingTimeout)
	defer cancel()

	resp := healthResponse{
		Status:     "ok",
		Version:    version.Info(),
		Components: map[string]string{"database": "ok", "scheduler": "ok"},
		Clients:    a.deps.Hub.ClientCount(),
	}

	if err := a.deps.DB.Ping(ctx); err != nil {
		a.logger.Warn("health check: database ping failed", "error", err)
		resp.Components["database"] = "down"
		resp.Status = "down"
	}
	if !a.deps.Jobs.Running() {
		resp.Components["scheduler"] = "down"
		resp.Status = "down"
	}

	stats := a.deps.Registry.Stats()
	resp.IPOs = stats.IPOs
	if !stats.LastSyncAt.IsZero() {
		t := stats.LastSyncAt
		resp.LastSyncAt = &t
	}

	status := http.StatusOK
	if resp.Status != "ok" {
		status = http.StatusServiceUnavailable
	}
	writeJSON(w, status, resp)
}
