package app

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"imagevault/internal/catalog"
	"imagevault/internal/config"
	"imagevault/internal/hub"
	"imagevault/internal/ingest"
	"imagevault/internal/library"
	"imagevault/internal/logger"
	"imagevault/internal/routes"
	"imagevault/internal/server"
	"imagevault/internal/store"
)

// App wires the catalog, store, pipeline and server lifecycle together for
// the long-lived host process.
type App struct {
	config    *config.Config
	log       zerolog.Logger
	catalog   *catalog.Catalog
	store     *store.ContentStore
	library   *library.Library
	pipeline  *ingest.Pipeline
	events    *hub.Hub
	lifecycle *server.Lifecycle
}

// New loads configuration and constructs every component. The database is
// opened (and migrated) here; the HTTP listener is not started yet.
func New() (*App, error) {
	cfg := config.Load()
	log := logger.New(cfg.LogLevel)

	if err := os.MkdirAll(filepath.Dir(cfg.DatabasePath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	cat, err := catalog.Open(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}

	contentStore := store.New(cfg.ImagesDirectory)
	lib := library.New(cat, log)
	pipeline := ingest.New(cat, contentStore, log)
	events := hub.New(log)

	handler := routes.Setup(routes.Deps{
		Config:   cfg,
		Catalog:  cat,
		Library:  lib,
		Pipeline: pipeline,
		Events:   events,
		HostNet:  server.InterfaceHostNetwork{},
		Log:      log,
	})

	lifecycle := server.NewLifecycle(cfg.Port, handler, server.ProcessReaper{}, log)

	return &App{
		config:    cfg,
		log:       log,
		catalog:   cat,
		store:     contentStore,
		library:   lib,
		pipeline:  pipeline,
		events:    events,
		lifecycle: lifecycle,
	}, nil
}

// Lifecycle exposes the server controls to the hosting shell.
func (a *App) Lifecycle() *server.Lifecycle {
	return a.lifecycle
}

// Pipeline exposes the ingestion pipeline to local callers.
func (a *App) Pipeline() *ingest.Pipeline {
	return a.pipeline
}

// Run starts the server and blocks until SIGINT or SIGTERM, then stops it.
func (a *App) Run() error {
	if err := a.store.EnsureRoot(); err != nil {
		return err
	}

	if a.config.StartupSweep {
		report, err := a.library.Sweep(a.store.Root())
		if err != nil {
			a.log.Warn().Err(err).Msg("startup consistency sweep failed")
		} else {
			a.log.Info().
				Int("orphan_blobs", len(report.OrphanBlobs)).
				Int("dangling_rows", len(report.DanglingRows)).
				Msg("startup consistency sweep finished")
		}
	}

	go a.events.Run()

	msg, err := a.lifecycle.Start()
	if err != nil {
		return err
	}
	a.log.Info().Str("status", msg).Int("port", a.config.Port).
		Str("images", a.config.ImagesDirectory).
		Str("database", a.config.DatabasePath).
		Msg("imagevault up")

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	return a.Shutdown()
}

// Shutdown stops the listener, the event hub and the catalog. Safe to call
// even when the server never started.
func (a *App) Shutdown() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := a.lifecycle.Stop(ctx); err != nil {
		a.log.Error().Err(err).Msg("failed to stop server")
	}
	a.events.Stop()
	return a.catalog.Close()
}
