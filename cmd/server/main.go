package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	goredis "github.com/redis/go-redis/v9"

	"github.com/facecheck/attendance-system/internal/api"
	"github.com/facecheck/attendance-system/internal/core/ports"
	"github.com/facecheck/attendance-system/internal/core/service"
	redisdb "github.com/facecheck/attendance-system/internal/infrastructure/db/redis"
	"github.com/facecheck/attendance-system/internal/infrastructure/line"
	"github.com/facecheck/attendance-system/internal/infrastructure/queue"
	filestore "github.com/facecheck/attendance-system/internal/infrastructure/store/file"
	sheetsstore "github.com/facecheck/attendance-system/internal/infrastructure/store/sheets"
	"github.com/facecheck/attendance-system/internal/pkg/config"
	"github.com/facecheck/attendance-system/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

func main() {
	// Local development convenience; in deployment the environment is real.
	_ = godotenv.Load()

	cfg := config.Load()
	log := logger.Init(logger.Options{
		Level:   cfg.LogLevel,
		Service: "attendance-system",
		Pretty:  cfg.Env == "development",
	})

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("configuration invalid")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	loc := cfg.Location()
	cutoff := service.ParseCutoff(cfg.LateCutoff)

	// Storage backend: spreadsheet when fully configured, local files
	// otherwise.
	var (
		store   ports.AttendanceStore
		diag    ports.StoreDiagnostics
		backend string
	)
	if cfg.UseSheets() {
		s, err := sheetsstore.NewStore(ctx, []byte(cfg.Sheets.ServiceAccountJSON), cfg.Sheets.SpreadsheetID, loc)
		if err != nil {
			log.Fatal().Err(err).Msg("sheets store init failed")
		}
		store, diag, backend = s, s, "sheets"
	} else {
		s := filestore.NewStore(cfg.File.DataDir, loc)
		store, diag, backend = s, s, "file"
	}
	log.Info().Str("backend", backend).Str("timezone", cfg.Timezone).Msg("storage configured")

	// Redis guard is optional; without it the store read is the only dedup.
	var (
		rdb   *goredis.Client
		guard service.CheckinGuard
	)
	if cfg.Redis.Addr != "" {
		client, err := redisdb.Connect(ctx, cfg.Redis.Addr, cfg.Redis.DB)
		if err != nil {
			log.Fatal().Err(err).Msg("redis connect failed")
		}
		defer client.Close()
		rdb = client
		guard = redisdb.NewCheckinGuard(client)
		log.Info().Str("addr", cfg.Redis.Addr).Msg("checkin guard enabled")
	}

	notifier := line.NewClient(cfg.Line.APIBase, cfg.Line.AccessToken, log)
	fanout := queue.NewFanout(0, notifier, log)

	directory := service.NewDirectoryService(store, log)
	checkin := service.NewCheckinService(directory, store, notifier, guard, loc, cutoff, log)
	roster := service.NewRosterService(directory, store, fanout, loc, cutoff, cfg.OnlyWeekdays, log)
	responder := service.NewBindingService(directory, notifier, log)

	e := api.NewRouter(api.Dependencies{
		Directory:     directory,
		Checkin:       checkin,
		Roster:        roster,
		Responder:     responder,
		Notifier:      notifier,
		Diag:          diag,
		Redis:         rdb,
		ChannelSecret: cfg.Line.ChannelSecret,
		APIKey:        cfg.APIKey,
		Timezone:      cfg.Timezone,
		Backend:       backend,
		Log:           log,
	})

	go func() {
		if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server stopped")
		}
	}()
	log.Info().Str("port", cfg.Port).Msg("server started")

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("graceful shutdown failed")
	}
}
