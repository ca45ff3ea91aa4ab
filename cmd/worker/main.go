package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"
	"golang.org/x/sync/errgroup"

	"docgen/internal/adapter/repo"
	"docgen/internal/adapter/templates"
	"docgen/internal/engine"
	"docgen/internal/infra"
	"docgen/internal/providers/render"
	"docgen/internal/storage"
)

func main() {
	_ = godotenv.Load()

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv, "worker")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pool, err := infra.NewDBPool(ctx, cfg)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: db connection failed")
	}
	defer pool.Close()

	runner := infra.NewSQLRunner(pool, logger)
	requests := repo.NewRequestRepository(runner)
	catalog := templates.NewCatalog(runner)

	storagePath := cfg.StoragePath
	if !filepath.IsAbs(storagePath) {
		if abs, err := filepath.Abs(storagePath); err == nil {
			storagePath = abs
		}
	}
	contents, err := storage.NewFileStore(storagePath)
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure storage")
	}

	renderer, err := render.NewClient(render.Options{
		BaseURL:        cfg.RendererBaseURL,
		HTTPClient:     &http.Client{Timeout: cfg.RendererTimeout},
		Logger:         &logger,
		RequestTimeout: cfg.RendererTimeout,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("worker: failed to configure renderer client")
	}

	clock := engine.SystemClock()
	executor := engine.NewExecutor(cfg.WorkerID, requests, catalog, catalog, renderer, contents, clock, logger)
	worker := engine.NewWorker(engine.WorkerOptions{
		WorkerID:     cfg.WorkerID,
		Concurrency:  cfg.WorkerConcurrency,
		PollInterval: cfg.PollInterval,
		ClaimTimeout: cfg.ClaimTimeout,
		ClaimLimit:   cfg.ClaimBatchLimit,
	}, requests, executor, clock, logger)
	cleaner := engine.NewCleanupScheduler(requests, clock, logger, cfg.CleanupInterval, cfg.RetentionWindow)

	group, ctx := errgroup.WithContext(ctx)
	group.Go(func() error { return worker.Run(ctx) })
	group.Go(func() error { return cleaner.Run(ctx) })

	if err := group.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		logger.Fatal().Err(err).Msg("worker: stopped with error")
	}
	logger.Info().Msg("worker: stopped")
}
