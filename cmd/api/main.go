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

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"voxablog/cmd/app"
	"voxablog/internal/config"
	handlers "voxablog/internal/handler"
	"voxablog/internal/logging"
	"voxablog/internal/middleware"
	"voxablog/internal/tracing"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	// setting up config
	cfg := config.LoadConfig()

	logger := logging.New(os.Stdout, cfg.Log)
	slog.SetDefault(logger)

	if cfg.JWTSecretKey == "" {
		return errors.New("JWT_SECRET_KEY is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := tracing.Init(ctx, cfg.Tracing)
	if err != nil {
		return err
	}
	defer func() {
		c, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = shutdownTracing(c)
	}()

	deps, cleanup, err := app.App(ctx, cfg)
	defer cleanup()
	if err != nil {
		return err
	}

	handler := handlers.NewHandlers(deps.Services, cfg)

	router := handlers.NewRouter(handler, middleware.AuthMiddleware(deps.Services.Auth), deps.Metrics.Handler())
	router.Use(middleware.RouteMiddleware)

	// logging and metrics sit outside the router so unmatched requests are
	// recorded too
	handlerChain := middleware.Chain(
		router,
		middleware.LoggingMiddleware(logger),
		middleware.MetricsMiddleware(deps.Metrics),
		middleware.RecoveryMiddleware,
		middleware.CORSMiddleware,
	)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.ServerPort),
		Handler:           otelhttp.NewHandler(handlerChain, "http.server"),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.MinIO.UploadTimeout + 30*time.Second,
		WriteTimeout:      cfg.MinIO.UploadTimeout + 30*time.Second,
		IdleTimeout:       90 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		slog.Info("server started", "address", srv.Addr, "database", cfg.DB.DbNAME)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	return srv.Shutdown(shutdownCtx)
}
