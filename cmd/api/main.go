package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/artisanmarket/cart-backend/api/routes"
	"github.com/artisanmarket/cart-backend/pkg/config"
	"github.com/artisanmarket/cart-backend/pkg/logger"
)

func main() {
	logg := logger.New(logger.Options{ServiceName: "cart-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}

	logg = logger.New(logger.Options{
		ServiceName: "cart-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		Format:      cfg.App.LogFormat,
		WarnStack:   cfg.App.LogWarnStack,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	deps, err := bootstrap(ctx, cfg, logg, prometheus.DefaultRegisterer)
	if err != nil {
		logg.Error(ctx, "failed to bootstrap dependencies", err)
		os.Exit(1)
	}
	defer func() {
		if err := deps.Close(); err != nil {
			logg.Error(context.Background(), "error closing dependencies", err)
		}
	}()

	port := os.Getenv("PORT")
	if port == "" {
		port = cfg.App.Port
	}
	addr := ":" + port
	ctx = logg.WithFields(ctx, map[string]any{
		"env":          cfg.App.Env,
		"addr":         addr,
		"cart_backend": cfg.Cart.BackendKind().String(),
		"lock_mode":    cfg.Cart.LockKind().String(),
	})

	if deps.scheduler != nil {
		go func() {
			if err := deps.scheduler.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logg.Error(ctx, "background scheduler stopped unexpectedly", err)
			}
		}()
	}

	server := &http.Server{
		Addr:         addr,
		Handler:      routes.NewRouter(cfg, logg, deps.dbPinger(), deps.redis, deps.cart, prometheus.DefaultGatherer),
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
	}

	serveErr := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting cart api server")
		serveErr <- server.ListenAndServe()
	}()

	select {
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-ctx.Done():
		logg.Info(ctx, "shutdown signal received")
		shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cfg.HTTP.ShutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "graceful shutdown failed", err)
		}
	}
	logg.Info(ctx, "cart api stopped")
}
