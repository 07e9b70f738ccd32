package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/careguardpe-bit/careguard-backend/internal/config"
	"github.com/careguardpe-bit/careguard-backend/internal/infra"
	"github.com/careguardpe-bit/careguard-backend/internal/repository"
	"github.com/careguardpe-bit/careguard-backend/internal/router"
	"github.com/careguardpe-bit/careguard-backend/internal/worker"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Structured logger: dev: pretty, prod: JSON
	if cfg.Env != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	if err := infra.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("failed to run migrations")
	}

	db, err := infra.NewDatabase(cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to postgres")
	}

	rdb, err := infra.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to redis")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Confirmation emails: the worker is wired here (composition root) so the
	// pool has access to every infrastructure dependency.
	var (
		sender worker.Sender
		mailCB *infra.CircuitBreaker
	)
	if cfg.MailEnabled() {
		sender = infra.NewMailer(cfg)
		mailCB = infra.NewCircuitBreaker(infra.CircuitBreakerConfig{Name: "smtp"})
	} else {
		log.Warn().Msg("SMTP_HOST not set: confirmation emails disabled")
	}

	usuarioRepo := repository.NewUsuarioRepository(db)
	postulacionRepo := repository.NewPostulacionRepository(db)
	dispatcher := worker.NewDispatcher(rdb)

	workers := worker.StartWorkerPool(ctx, rdb, map[string]worker.JobHandler{
		worker.QueueConfirmacion: worker.NewConfirmacionWorker(postulacionRepo, usuarioRepo, sender, mailCB, cfg.PDFStoragePath),
	}, cfg.WorkerPoolSize)

	reaper := worker.NewOrphanReaper(
		infra.NewDocumentStore(cfg.UploadDir),
		repository.NewDocumentoRepository(db),
		time.Duration(cfg.OrphanGraceMinutes)*time.Minute,
	)
	reaperCron, err := reaper.Start(cfg.OrphanReaperSchedule)
	if err != nil {
		log.Fatal().Err(err).Str("schedule", cfg.OrphanReaperSchedule).Msg("invalid orphan reaper schedule")
	}

	r := router.New(cfg, db, rdb, dispatcher, mailCB)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Graceful shutdown on SIGINT / SIGTERM
	go func() {
		log.Info().Str("env", cfg.Env).Msgf("Careguard backend listening on :%d", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server…")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("forced shutdown")
	}

	<-reaperCron.Stop().Done()
	cancel()
	workers.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	_ = rdb.Close()
	log.Info().Msg("server exited")
}
