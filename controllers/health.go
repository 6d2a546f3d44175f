package controllers

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	helloapihttp "github.com/sagarc03/helloapi/http"
)

const readyTimeout = 2 * time.Second

// Pinger is a dependency the service needs to be ready, such as the
// incident database.
type Pinger interface {
	Ping(ctx context.Context) error
}

type HealthResponse struct {
	Status string `json:"status"`
}

// HealthController serves liveness and readiness probes.
type HealthController struct {
	pingers []Pinger
}

func NewHealthController(pingers ...Pinger) *HealthController {
	return &HealthController{pingers: pingers}
}

func (c *HealthController) Routes() []helloapihttp.Route {
	return []helloapihttp.Route{
		{Method: http.MethodGet, Pattern: "/health", Name: "health.live", Action: c.live},
		{Method: http.MethodGet, Pattern: "/health/ready", Name: "health.ready", Action: c.ready},
	}
}

func (c *HealthController) live(w http.ResponseWriter, _ *http.Request) error {
	return helloapihttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}

func (c *HealthController) ready(w http.ResponseWriter, r *http.Request) error {
	ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
	defer cancel()

	for _, p := range c.pingers {
		if err := p.Ping(ctx); err != nil {
			slog.WarnContext(r.Context(), "readiness check failed", "error", err)
			return helloapihttp.WriteJSON(w, http.StatusServiceUnavailable, HealthResponse{Status: "unavailable"})
		}
	}

	return helloapihttp.WriteJSON(w, http.StatusOK, HealthResponse{Status: "ready"})
}
