package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/terra-clan/swim-timer/internal/api"
	"github.com/terra-clan/swim-timer/internal/config"
	"github.com/terra-clan/swim-timer/internal/publish"
	"github.com/terra-clan/swim-timer/internal/race"
	"github.com/terra-clan/swim-timer/internal/roster"
	"github.com/terra-clan/swim-timer/internal/storage"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Setup structured logging
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.Log.Level,
	}))
	slog.SetDefault(logger)

	slog.Info("starting swim-timer",
		"host", cfg.Server.Host,
		"port", cfg.Server.Port,
		"roster", cfg.Race.RosterPath,
	)

	// Build the roster catalog
	brackets, err := roster.LoadBrackets(cfg.Race.BracketsFile)
	if err != nil {
		slog.Error("failed to load age brackets", "file", cfg.Race.BracketsFile, "error", err)
		os.Exit(1)
	}

	rows, err := roster.ReadCSVFile(cfg.Race.RosterPath)
	if err != nil {
		slog.Error("failed to read roster", "path", cfg.Race.RosterPath, "error", err)
		os.Exit(1)
	}

	catalog, err := roster.NewCatalog(rows, brackets)
	if err != nil {
		var verr *roster.ValidationError
		if errors.As(err, &verr) {
			for _, row := range verr.Rows {
				slog.Error("invalid roster row", "line", row.Line, "id", row.ID, "problems", row.Problems)
			}
		}
		slog.Error("failed to build roster", "error", err)
		os.Exit(1)
	}
	slog.Info("roster loaded",
		"participants", catalog.Len(),
		"race_categories", catalog.RaceCategories(),
	)

	engine := race.NewEngine(catalog)
	if cfg.Race.RaceCategory != "" {
		if err := engine.SelectCategory(cfg.Race.RaceCategory); err != nil {
			slog.Error("failed to select race category", "race_category", cfg.Race.RaceCategory, "error", err)
			os.Exit(1)
		}
	}

	// Create context for initialization
	initCtx, initCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer initCancel()

	// Register publication sinks
	registry, closers, err := setupSinks(initCtx, cfg)
	if err != nil {
		slog.Error("failed to set up result sinks", "error", err)
		os.Exit(1)
	}
	defer func() {
		for _, c := range closers {
			if err := c(); err != nil {
				slog.Error("sink close error", "error", err)
			}
		}
	}()

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start background workers
	worker := publish.NewWorker(engine, registry, cfg.Publish.Interval)
	worker.Start(ctx)

	feed := api.NewFeed(engine, cfg.Feed.Interval)
	go feed.Run(ctx)

	// Setup HTTP server
	server := api.NewServer(cfg.Server, engine, registry, feed)
	httpServer := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      server.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		slog.Info("HTTP server starting", "addr", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("HTTP server error", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.Info("shutting down gracefully...")

	// Stop background workers
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	// Publish whatever changed since the last tick
	if _, err := worker.Flush(shutdownCtx); err != nil {
		slog.Error("final publish failed", "error", err)
	}

	slog.Info("swim-timer stopped")
}

// setupSinks registers every enabled result sink and returns their close functions
func setupSinks(ctx context.Context, cfg *config.Config) (*publish.Registry, []func() error, error) {
	registry := publish.NewRegistry()
	var closers []func() error

	if cfg.Redis.Enabled {
		sink, err := publish.NewRedisSink(cfg.Redis.Address, cfg.Redis.Password, cfg.Redis.DB, cfg.Redis.Prefix)
		if err != nil {
			return nil, closers, fmt.Errorf("redis: %w", err)
		}
		registry.Register("redis", sink)
		closers = append(closers, sink.Close)
	}

	if cfg.Database.Enabled {
		slog.Info("running database migrations", "dir", cfg.Database.MigrationsDir)
		if err := storage.MigrateFromDSN(ctx, cfg.Database.DSN, cfg.Database.MigrationsDir); err != nil {
			return nil, closers, fmt.Errorf("migrations: %w", err)
		}

		repo, err := storage.NewPostgresRepository(ctx, storage.PostgresConfig{
			DSN:          cfg.Database.DSN,
			MaxOpenConns: int32(cfg.Database.MaxOpenConns),
			MaxIdleConns: int32(cfg.Database.MaxIdleConns),
		})
		if err != nil {
			return nil, closers, fmt.Errorf("postgres: %w", err)
		}
		slog.Info("database connected successfully")
		registry.Register("postgres", publish.NewPostgresSink(repo))
		closers = append(closers, repo.Close)
	}

	if cfg.S3.Enabled {
		sink, err := publish.NewObjectSink(ctx, publish.ObjectSinkConfig{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			Bucket:          cfg.S3.Bucket,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			Prefix:          cfg.S3.Prefix,
		})
		if err != nil {
			return nil, closers, fmt.Errorf("s3: %w", err)
		}
		registry.Register("s3", sink)
	}

	slog.Info("result sinks registered", "sinks", registry.List())
	return registry, closers, nil
}
