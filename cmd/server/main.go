package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	"github.com/playperu/reveal/internal/config"
	"github.com/playperu/reveal/internal/database"
	"github.com/playperu/reveal/internal/experience"
	"github.com/playperu/reveal/internal/handler/health"
	"github.com/playperu/reveal/internal/migrations"
	"github.com/playperu/reveal/internal/relay"
	"github.com/playperu/reveal/internal/server"
	"github.com/playperu/reveal/internal/session"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx, os.Stdout); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, stdout io.Writer) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(stdout, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))

	// --- Experiences ---
	catalog, err := experience.LoadDir(cfg.ExperienceDir)
	if err != nil {
		logger.Error("invalid experience configuration", "dir", cfg.ExperienceDir, "error", err)
		return fmt.Errorf("loading experiences: %w", err)
	}
	logger.Info("loaded experiences", "dir", cfg.ExperienceDir, "slugs", catalog.Slugs())

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	applied, err := migrations.Run(ctx, db)
	if err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath, "migrations_applied", applied)

	// --- Metrics ---
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := server.NewMetrics(reg)

	broker := server.NewBroker()
	sinks := session.Sinks{broker, metrics}
	checks := map[string]health.Checker{
		"sqlite": dbChecker{db},
		"experiences": health.CheckerFunc(func(context.Context) error {
			if catalog.Len() == 0 {
				return errors.New("no experiences loaded")
			}
			return nil
		}),
	}

	g, gctx := errgroup.WithContext(ctx)

	// --- Redis (optional) ---
	if cfg.RedisURL != "" {
		rdb, err := relay.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		pub := relay.NewPublisher(rdb, logger, cfg.SignalBuffer)
		sinks = append(sinks, pub)
		checks["redis"] = relay.Checker{Client: rdb}
		g.Go(func() error { return pub.Run(gctx) })
	}

	sessions := server.NewRegistry(catalog, sinks, logger, metrics)
	defer sessions.Close()

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Store:    server.NewSQLiteStore(db),
		Sessions: sessions,
		Broker:   broker,
		Metrics:  metrics,
		SPADir:   cfg.SPADir,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})

	// --- Run ---
	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		return srv.Shutdown(context.Background())
	})

	return g.Wait()
}

// dbChecker adapts *sql.DB to health.Checker.
type dbChecker struct{ db *sql.DB }

func (d dbChecker) Check(ctx context.Context) error { return d.db.PingContext(ctx) }
