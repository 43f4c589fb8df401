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

	"golang.org/x/sync/errgroup"

	"bookcatalog/internal/ratelimit"
	"bookcatalog/internal/util"
	"bookcatalog/pkg/events"
	"bookcatalog/pkg/store"
	"bookcatalog/services/catalog/internal/app"
	"bookcatalog/services/catalog/internal/config"
	"bookcatalog/services/catalog/internal/server"
)

func main() {
	cfg, err := config.Load(config.PathFromEnv())
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := util.InitLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dataStore, err := openStore(cfg)
	if err != nil {
		util.Fatal("failed to open store", "store", cfg.Store, "err", err)
	}
	defer dataStore.Close()

	if cfg.SeedPath != "" {
		books, err := store.LoadSeed(cfg.SeedPath)
		if err != nil {
			util.Fatal("failed to load seed", "path", cfg.SeedPath, "err", err)
		}
		n, err := store.Seed(ctx, dataStore, books)
		if err != nil {
			util.Fatal("failed to seed store", "err", err)
		}
		slog.Info("catalog seeded", "books", n)
	}

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.EventStream != "" {
		publisher, err = events.NewRedisStreamPublisher(events.RedisStreamConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			Stream:   cfg.EventStream,
			MaxLen:   cfg.EventStreamMaxLen,
		})
		if err != nil {
			util.Fatal("failed to init event publisher", "err", err)
		}
	}
	defer publisher.Close()

	appCore, err := app.New(app.Config{Store: dataStore, Publisher: publisher})
	if err != nil {
		util.Fatal("failed to init app", "err", err)
	}

	trusted, err := util.NewTrustedProxies(cfg.TrustedProxies)
	if err != nil {
		util.Fatal("failed to parse trusted proxies", "err", err)
	}
	serverCfg := server.Config{App: appCore, TrustedProxies: trusted}
	if cfg.WriteRateLimitPerMinute > 0 {
		limiter, err := ratelimit.NewRedisFixedWindowLimiter(cfg.RedisAddr, cfg.RedisPassword, "catalog:ratelimit:write", cfg.WriteRateLimitPerMinute, time.Minute)
		if err != nil {
			util.Fatal("failed to init rate limiter", "err", err)
		}
		defer limiter.Close()
		serverCfg.WriteLimiter = limiter
	}
	httpServer, err := server.New(serverCfg)
	if err != nil {
		util.Fatal("failed to init server", "err", err)
	}

	addr := ":" + cfg.Port
	srv := &http.Server{
		Addr:         addr,
		Handler:      httpServer.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("catalog server listening", "addr", addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.ShutdownTimeoutSeconds)*time.Second)
		defer cancel()
		slog.Info("catalog server shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	if err := g.Wait(); err != nil {
		logger.Error("server error", "err", err)
	}
}

func openStore(cfg config.FileConfig) (store.Store, error) {
	switch cfg.Store {
	case config.StorePostgres:
		return store.NewGormStore(cfg.DatabaseURL)
	default:
		return store.NewMemoryStore(), nil
	}
}
