package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/deveshsoni7/SlotSwapper/internal/api/handler"
	"github.com/deveshsoni7/SlotSwapper/internal/api/router"
	"github.com/deveshsoni7/SlotSwapper/internal/app"
	"github.com/deveshsoni7/SlotSwapper/internal/auth"
	"github.com/deveshsoni7/SlotSwapper/internal/config"
	"github.com/deveshsoni7/SlotSwapper/internal/redis"
	"github.com/deveshsoni7/SlotSwapper/internal/repository"
	"github.com/deveshsoni7/SlotSwapper/internal/service"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger := app.NewLogger(cfg.Environment)
	defer logger.Sync()

	logger.Info("Starting slotswapper",
		zap.String("environment", cfg.Environment),
		zap.Int("port", cfg.Port),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pool, err := pgxpool.New(ctx, cfg.DBDSN)
	if err != nil {
		logger.Fatal("Failed to create connection pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.Ping(ctx); err != nil {
		logger.Fatal("Database unreachable", zap.Error(err))
	}

	migrator, err := app.NewMigrator(pool, cfg.MigrationsDir)
	if err != nil {
		logger.Fatal("Failed to create migrator", zap.Error(err))
	}
	if err := migrator.Run(ctx); err != nil {
		logger.Fatal("Failed to apply migrations", zap.Error(err))
	}
	migrator.Close()

	// Redis is optional: without it the rate limiter runs in-process.
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = redis.NewClient(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, logger)
		if err != nil {
			logger.Warn("Redis unavailable, rate limiting falls back to in-process", zap.Error(err))
			rdb = nil
		}
	}

	tokens := auth.NewManager(cfg.JWTSecret)

	repo := repository.NewRepository(pool)
	authService := service.NewAuthService(repo.Users, tokens, logger)
	slotService := service.NewSlotService(repo.Slots, logger)
	swapService := service.NewSwapService(repo.Slots, repo.Swaps, repo.Tx, logger)

	h := handler.NewHandler(authService, slotService, swapService)
	engine := router.Setup(cfg, h, tokens, rdb, logger)

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      engine,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("HTTP server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("Server stopped with error", zap.Error(err))
	}

	if rdb != nil {
		rdb.Close()
	}

	logger.Info("Server stopped")
}
