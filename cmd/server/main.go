package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/Josepmarimon/bau-assist-sub002/internal/app"
	"github.com/Josepmarimon/bau-assist-sub002/internal/config"
	"github.com/Josepmarimon/bau-assist-sub002/internal/handler"
	"github.com/Josepmarimon/bau-assist-sub002/internal/logger"
	"github.com/Josepmarimon/bau-assist-sub002/internal/router"
	"github.com/Josepmarimon/bau-assist-sub002/internal/validator"
	"github.com/Josepmarimon/bau-assist-sub002/internal/worker"
	"github.com/rs/zerolog"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	hostname, _ := os.Hostname()
	log = logger.EnableRollbar(log, logger.RollbarOptions{
		Token:       cfg.RollbarToken,
		Environment: cfg.AppEnv,
		ServerHost:  hostname,
	})
	defer logger.FlushRollbar()

	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting BAU Assist API")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup(cfg.SemesterWeeks)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Connect & Wire ────────────────────────────────────────────────
	a, err := app.New(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to start application")
	}
	defer a.Close()
	s := a.Services

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Auth:         handler.NewAuthHandler(s.Auth),
		Calendar:     handler.NewCalendarHandler(s.Calendar),
		Subject:      handler.NewSubjectHandler(s.Subjects),
		Teacher:      handler.NewTeacherHandler(s.Teachers),
		Classroom:    handler.NewClassroomHandler(s.Classrooms, s.Inventory),
		StudentGroup: handler.NewStudentGroupHandler(s.StudentGroups),
		Inventory:    handler.NewInventoryHandler(s.Inventory, s.Licenses),
		Profile:      handler.NewProfileHandler(s.Profiles),
		Assignment:   handler.NewAssignmentHandler(s.Assignments, s.Calendar),
		Occupancy:    handler.NewOccupancyHandler(s.Occupancy, s.Calendar),
		Dashboard:    handler.NewDashboardHandler(s.Dashboard),
		Import:       handler.NewImportHandler(s.Imports, s.Calendar, cfg.MaxUploadBytes),
		Export:       handler.NewExportHandler(s.Exports, s.Calendar),
		Dedupe:       handler.NewDedupeHandler(s.Dedupe),
		WS:           handler.NewWSHandler(s.Activity, a.Metrics.WSClients, log, cfg.AllowedOrigins),
		System:       handler.NewSystemHandler(a.Pool, a.Redis, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	var workers sync.WaitGroup

	importWorker := worker.NewImportWorker(s.Imports, a.Redis, log)
	auditWorker := worker.NewAuditWorker(a.Pool, a.Redis, a.Metrics.AuditEntries, log)

	workers.Add(2)
	go func() { defer workers.Done(); importWorker.Start(workerCtx) }()
	go func() { defer workers.Done(); auditWorker.Start(workerCtx) }()

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(ctx, s.Auth, handlers, a.Metrics, cfg, log)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for the audit buffer to flush.
	workerCancel()
	done := make(chan struct{})
	go func() { workers.Wait(); close(done) }()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		log.Warn().Msg("Workers did not stop in time")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
