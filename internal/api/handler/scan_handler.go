package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/facecheck/attendance-system/internal/api/metrics"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// ScanHandler triggers the morning reminder scan, typically from a cron hook.
type ScanHandler struct {
	roster ports.RosterService
	now    func() time.Time
}

func NewScanHandler(roster ports.RosterService) *ScanHandler {
	return &ScanHandler{roster: roster, now: time.Now}
}

func (h *ScanHandler) MorningScan(c echo.Context) error {
	result, err := h.roster.Scan(c.Request().Context(), h.now())
	if err != nil {
		return err
	}

	metrics.ScansTotal.WithLabelValues(string(result.Status)).Inc()
	metrics.RemindersSentTotal.Add(float64(result.Reminded))

	return c.JSON(http.StatusOK, result)
}
