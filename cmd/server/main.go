package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/harkle-the-cake/dhbw-capturethecode/internal/arena"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/config"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/database"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/feed"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/handler/health"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/migrations"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/random"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/roster"
	"github.com/harkle-the-cake/dhbw-capturethecode/internal/server"
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

	// --- SQLite ---
	db, err := database.Open(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("connecting to sqlite: %w", err)
	}
	defer db.Close()

	if err := migrations.Run(db); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}
	logger.Info("connected to sqlite", "path", cfg.DBPath)
	rosters := roster.NewStore(db)

	checks := map[string]health.Checker{"sqlite": rosters}

	// --- Event feed ---
	broker := feed.NewBroker()
	publishers := feed.Multi{broker}

	var redisFeed *feed.Redis
	if cfg.RedisURL != "" {
		rdb, err := feed.Open(ctx, cfg.RedisURL)
		if err != nil {
			return fmt.Errorf("connecting to redis: %w", err)
		}
		defer rdb.Close()
		logger.Info("connected to redis")

		redisFeed = feed.NewRedis(rdb, logger)
		publishers = append(publishers, redisFeed)
		checks["redis"] = redisFeed
	}

	// --- Matches ---
	seed := cfg.Seed
	if seed == 0 {
		if seed, err = random.NewSeed(); err != nil {
			return err
		}
	}
	logger.Info("match randomness seeded", "seed", seed)

	reg, err := arena.New(arena.Options{
		RoundLimit: cfg.RoundLimit,
		TickDelay:  cfg.TickDelay,
		Seeds:      random.NewSeeds(seed),
		Publisher:  publishers,
		Logger:     logger,
	})
	if err != nil {
		return fmt.Errorf("creating match registry: %w", err)
	}

	// --- HTTP Server ---
	srv := server.New(cfg.HTTPAddr, logger, server.Deps{
		Rosters:    rosters,
		Arena:      reg,
		Broker:     broker,
		AdminToken: cfg.AdminToken,
	}, func(r chi.Router) {
		r.Mount("/healthz", health.NewHandler(logger, checks).Routes())
	})
	if cfg.AdminToken == "" {
		logger.Warn("ADMIN_TOKEN not set, admin api disabled")
	}

	// --- Run ---
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("starting http server", "addr", cfg.HTTPAddr)
		return srv.Run(gctx)
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down http server")
		err := srv.Shutdown(context.Background())
		reg.Close()
		return err
	})

	if redisFeed != nil {
		g.Go(func() error {
			return redisFeed.Run(gctx)
		})
	}

	return g.Wait()
}
