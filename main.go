package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"resumebuilder/config"
	"resumebuilder/config/database"
	"resumebuilder/internal/resume/repository"
	"resumebuilder/internal/resume/seed"
	"resumebuilder/internal/resume/service"
	"resumebuilder/pkg/identity"
	"resumebuilder/pkg/logger"
	"resumebuilder/router"
	"resumebuilder/socket"
	"resumebuilder/store"
)

func main() {
	cfg, envErr := config.Load()
	logger.Init(cfg.LogLevel)
	defer logger.Log.Sync()
	if envErr != nil {
		logger.Sugar.Infof("No .env file loaded (%v), using environment variables from OS", envErr)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The seed is data: a YAML file when configured, the built-in sample otherwise.
	seedFile := seed.Sample()
	if cfg.SeedPath != "" {
		f, err := seed.LoadFile(cfg.SeedPath)
		if err != nil {
			logger.Sugar.Fatalf("Failed to load seed: %v", err)
		}
		seedFile = f
	}
	ids := identity.NewUUIDv7()
	initial, err := seedFile.Build(ids, time.Now())
	if err != nil {
		logger.Sugar.Fatalf("Invalid seed: %v", err)
	}

	resumes := store.New(initial,
		store.WithIdentity(ids),
		store.WithLogger(logger.Log.Named("store")),
	)

	sink, closeSink := openSink(ctx, cfg)
	defer closeSink()

	hub := socket.NewHub(resumes, sink)
	hubStopped := hub.Start(ctx, cfg.SaveInterval)

	svc := service.NewResumeService(hub, cfg.JWTSecret, cfg.TokenTTL)
	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           router.Setup(hub, svc, router.Options{JWTSecret: cfg.JWTSecret, CORSOrigin: cfg.CORSOrigin}),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Log.Info("Resume builder listening", zap.String("addr", cfg.Addr), zap.Int("resumes", len(initial.Documents)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Sugar.Fatalf("server failed: %v", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Sugar.Errorf("shutdown error: %v", err)
	}

	// The final export must land before the deferred sink close.
	select {
	case <-hubStopped:
	case <-shutdownCtx.Done():
		logger.Sugar.Warn("Hub did not stop in time; last snapshot may not be exported")
	}
}

// openSink builds the snapshot export target named by SNAPSHOT_BACKEND.
func openSink(ctx context.Context, cfg config.Config) (repository.SnapshotSink, func()) {
	switch cfg.SnapshotBackend {
	case config.BackendPostgres:
		db, err := database.Connect(cfg.DatabaseURL)
		if err != nil {
			logger.Sugar.Fatalf("Snapshot export: %v", err)
		}
		repo := repository.NewSnapshotRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			logger.Sugar.Fatalf("Snapshot export: %v", err)
		}
		logger.Sugar.Info("Exporting snapshots to PostgreSQL")
		return repo, func() { db.Close() }

	case config.BackendRedis:
		sink, err := repository.NewRedisSink(cfg.RedisURL, cfg.SnapshotTTL)
		if err != nil {
			logger.Sugar.Fatalf("Snapshot export: %v", err)
		}
		logger.Sugar.Info("Exporting snapshots to Redis")
		return sink, func() { sink.Close() }

	default:
		return nil, func() {}
	}
}
