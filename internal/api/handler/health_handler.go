package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	goredis "github.com/redis/go-redis/v9"

	"github.com/facecheck/attendance-system/internal/core/ports"
)

// HealthHandler serves the service banner and the liveness probe.
type HealthHandler struct {
	timezone string
	backend  string
}

func NewHealthHandler(timezone, backend string) *HealthHandler {
	return &HealthHandler{timezone: timezone, backend: backend}
}

// Info is the root banner: which backend and timezone this instance runs on.
func (h *HealthHandler) Info(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{
		"status":   "ok",
		"service":  "attendance-system",
		"timezone": h.timezone,
		"backend":  h.backend,
	})
}

// Liveness reports that the process is up.
func (h *HealthHandler) Liveness(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// ReadinessHandler checks the dependencies the instance actually uses: the
// attendance store always, Redis only when a guard client is configured.
type ReadinessHandler struct {
	diag ports.StoreDiagnostics
	rdb  *goredis.Client
}

func NewReadinessHandler(diag ports.StoreDiagnostics, rdb *goredis.Client) *ReadinessHandler {
	return &ReadinessHandler{diag: diag, rdb: rdb}
}

func (h *ReadinessHandler) Readiness(c echo.Context) error {
	ctx := c.Request().Context()
	checks := map[string]string{}
	healthy := true

	if _, err := h.diag.Probe(ctx); err != nil {
		checks["store"] = err.Error()
		healthy = false
	} else {
		checks["store"] = "ok"
	}

	if h.rdb != nil {
		if err := h.rdb.Ping(ctx).Err(); err != nil {
			checks["redis"] = err.Error()
			healthy = false
		} else {
			checks["redis"] = "ok"
		}
	}

	status := http.StatusOK
	if !healthy {
		status = http.StatusServiceUnavailable
	}
	return c.JSON(status, checks)
}

// StorageDebugHandler exposes the active backend's probe detail.
type StorageDebugHandler struct {
	diag ports.StoreDiagnostics
}

func NewStorageDebugHandler(diag ports.StoreDiagnostics) *StorageDebugHandler {
	return &StorageDebugHandler{diag: diag}
}

func (h *StorageDebugHandler) Probe(c echo.Context) error {
	info, err := h.diag.Probe(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, info)
}
