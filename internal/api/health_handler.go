package api

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/taskwell/taskwell-api/internal/api/shared"
)

// Pinger reports database connectivity. *sql.DB satisfies it.
type Pinger interface {
	PingContext(ctx context.Context) error
}

// SidecarHealth reports sidecar gateway availability.
type SidecarHealth interface {
	Healthz(ctx context.Context) error
}

// readinessTimeout bounds how long a readiness probe may spend on its
// dependency checks.
const readinessTimeout = 5 * time.Second

// HealthHandler serves liveness and readiness probes.
type HealthHandler struct {
	db      Pinger
	sidecar SidecarHealth
	logger  *slog.Logger
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(db Pinger, sidecar SidecarHealth, log *slog.Logger) *HealthHandler {
	if log == nil {
		// ALLOW-PANIC: Constructor enforcing required dependency
		panic("logger cannot be nil for HealthHandler")
	}

	return &HealthHandler{
		db:      db,
		sidecar: sidecar,
		logger:  log.With(slog.String("component", "health_handler")),
	}
}

// Liveness handles GET /healthz requests. It reports only that the process
// is up; dependencies are not probed.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	shared.RespondWithJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// Readiness handles GET /readyz requests. It probes the database and the
// sidecar gateway, reporting 503 with per-dependency detail when either
// is unavailable.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
	defer cancel()

	checks := map[string]string{
		"database": "ok",
		"sidecar":  "ok",
	}
	healthy := true

	if err := h.db.PingContext(ctx); err != nil {
		h.logger.Warn("readiness check failed for database", slog.String("error", err.Error()))
		checks["database"] = "unavailable"
		healthy = false
	}

	if err := h.sidecar.Healthz(ctx); err != nil {
		h.logger.Warn("readiness check failed for sidecar", slog.String("error", err.Error()))
		checks["sidecar"] = "unavailable"
		healthy = false
	}

	status := http.StatusOK
	overall := "ready"
	if !healthy {
		status = http.StatusServiceUnavailable
		overall = "degraded"
	}

	shared.RespondWithJSON(w, r, status, map[string]any{
		"status": overall,
		"checks": checks,
	})
}
