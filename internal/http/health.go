package http

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/mrlokans/wordbook/internal/notebooks"
)

const healthCheckTimeout = 3 * time.Second

type HealthResponse struct {
	Status      string            `json:"status"`
	Time        string            `json:"time"`
	Version     string            `json:"version,omitempty"`
	LastRefresh string            `json:"last_refresh,omitempty"`
	Checks      map[string]string `json:"checks"`
}

type HealthController struct {
	db        DatabasePinger
	backend   BackendPinger
	notebooks *notebooks.Store
	version   string
}

func NewHealthController(db DatabasePinger, backend BackendPinger, store *notebooks.Store, version string) *HealthController {
	return &HealthController{
		db:        db,
		backend:   backend,
		notebooks: store,
		version:   version,
	}
}

// Status reports local database and backend reachability. A database failure
// is unhealthy; an unreachable backend only degrades the UI.
func (h *HealthController) Status(c *gin.Context) {
	ctx, cancel := context.WithTimeout(c.Request.Context(), healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	status := "healthy"

	if h.db != nil {
		if err := h.db.Ping(ctx); err != nil {
			checks["database"] = "error: " + err.Error()
			status = "unhealthy"
		} else {
			checks["database"] = "ok"
		}
	} else {
		checks["database"] = "not configured"
	}

	if h.backend != nil {
		if err := h.backend.Ping(ctx); err != nil {
			checks["backend"] = "error: " + err.Error()
			if status == "healthy" {
				status = "degraded"
			}
		} else {
			checks["backend"] = "ok"
		}
	}

	health := HealthResponse{
		Status:  status,
		Time:    time.Now().Format(time.RFC3339),
		Version: h.version,
		Checks:  checks,
	}
	if h.notebooks != nil {
		if last := h.notebooks.LastRefresh(); !last.IsZero() {
			health.LastRefresh = last.Format(time.RFC3339)
		}
	}

	statusCode := http.StatusOK
	if status == "unhealthy" {
		statusCode = http.StatusServiceUnavailable
	}

	c.IndentedJSON(statusCode, health)
}
