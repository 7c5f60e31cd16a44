package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/facecheck/attendance-system/internal/api/handler"
	"github.com/facecheck/attendance-system/internal/api/middleware"
	"github.com/facecheck/attendance-system/internal/core/ports"
)

// Dependencies carries everything the router wires into handlers.
type Dependencies struct {
	Directory ports.DirectoryService
	Checkin   ports.CheckinService
	Roster    ports.RosterService
	Responder ports.BindingResponder
	Notifier  ports.Notifier
	Diag      ports.StoreDiagnostics

	// Redis is optional; readiness skips it when nil.
	Redis *goredis.Client

	ChannelSecret string
	APIKey        string
	Timezone      string
	Backend       string

	Log zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("attendance"))

	// --- Handlers ---
	healthHandler := handler.NewHealthHandler(deps.Timezone, deps.Backend)
	readinessHandler := handler.NewReadinessHandler(deps.Diag, deps.Redis)
	storageHandler := handler.NewStorageDebugHandler(deps.Diag)
	directoryHandler := handler.NewDirectoryHandler(deps.Directory, deps.Notifier)
	checkinHandler := handler.NewCheckinHandler(deps.Checkin)
	scanHandler := handler.NewScanHandler(deps.Roster)
	webhookHandler := handler.NewWebhookHandler(deps.ChannelSecret, deps.Responder, deps.Notifier, deps.Log)

	// --- Public routes ---
	e.GET("/", healthHandler.Info)
	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/users", directoryHandler.ListBindings)
	e.GET("/push", directoryHandler.Push)
	e.GET("/debug/storage", storageHandler.Probe)

	// Webhook authenticates itself via the platform signature.
	e.POST("/webhook", webhookHandler.Receive)

	// --- Operator routes (shared-secret header) ---
	guarded := e.Group("", middleware.APIKey(deps.APIKey))
	guarded.POST("/checkin", checkinHandler.CheckIn)
	guarded.POST("/cron/morning_scan", scanHandler.MorningScan)

	return e
}
