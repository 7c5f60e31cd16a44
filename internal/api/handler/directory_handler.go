package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/facecheck/attendance-system/internal/core/ports"
)

const defaultPushText = "test message"

// DirectoryHandler exposes the binding directory and a manual push probe.
type DirectoryHandler struct {
	directory ports.DirectoryService
	notifier  ports.Notifier
}

func NewDirectoryHandler(directory ports.DirectoryService, notifier ports.Notifier) *DirectoryHandler {
	return &DirectoryHandler{directory: directory, notifier: notifier}
}

// ListBindings returns the directory snapshot in both directions.
func (h *DirectoryHandler) ListBindings(c echo.Context) error {
	snap, err := h.directory.Snapshot(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, snap)
}

// Push sends a test message to a bound name: GET /push?name=Alice&text=hi.
func (h *DirectoryHandler) Push(c echo.Context) error {
	name := c.QueryParam("name")
	if name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name query parameter is required")
	}
	text := c.QueryParam("text")
	if text == "" {
		text = defaultPushText
	}

	ctx := c.Request().Context()
	accountID, err := h.directory.Resolve(ctx, name)
	if err != nil {
		return err
	}
	if err := h.notifier.Push(ctx, accountID, text); err != nil {
		return err
	}
	return c.JSON(http.StatusOK, map[string]string{"status": "ok", "to": name})
}
