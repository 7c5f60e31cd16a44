package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/facecheck/attendance-system/internal/api/metrics"
	"github.com/facecheck/attendance-system/internal/core/domain"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// CheckinHandler handles direct check-in submissions.
type CheckinHandler struct {
	service ports.CheckinService
}

func NewCheckinHandler(service ports.CheckinService) *CheckinHandler {
	return &CheckinHandler{service: service}
}

type checkinRequest struct {
	Name string `json:"name" validate:"required"`
	When string `json:"when"`
}

type checkinResponse struct {
	Status    string `json:"status"`
	Late      bool   `json:"late"`
	Date      string `json:"date"`
	CheckedAt string `json:"checked_at,omitempty"`
}

// CheckIn accepts {"name": ..., "when": ...} and runs the check-in flow.
func (h *CheckinHandler) CheckIn(c echo.Context) error {
	var req checkinRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if err := c.Validate(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	result, err := h.service.CheckIn(c.Request().Context(), ports.CheckinInput{
		Name: req.Name,
		When: req.When,
	})
	if err != nil {
		metrics.CheckinsErrorsTotal.WithLabelValues(errorReason(err)).Inc()
		return err
	}

	switch result.Status {
	case ports.CheckinDuplicate:
		metrics.CheckinsDuplicateTotal.Inc()
	default:
		metrics.CheckinsTotal.WithLabelValues(classification(result.Late)).Inc()
	}

	resp := checkinResponse{
		Status: string(result.Status),
		Late:   result.Late,
		Date:   result.Date,
	}
	if !result.CheckedAt.IsZero() {
		resp.CheckedAt = result.CheckedAt.Format(time.RFC3339)
	}
	return c.JSON(http.StatusOK, resp)
}

func classification(late bool) string {
	if late {
		return "late"
	}
	return "on_time"
}

func errorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnknownIdentity):
		return "unknown_identity"
	case errors.Is(err, domain.ErrEmptyName), errors.Is(err, domain.ErrMalformedTimestamp):
		return "bad_input"
	case errors.Is(err, domain.ErrNotificationFailed):
		return "notify_failed"
	case errors.Is(err, domain.ErrStorageUnavailable):
		return "storage"
	default:
		return "internal"
	}
}
