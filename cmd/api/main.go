// Package main is the entry point for the MaizeCast API server.
//
// It loads configuration (resolving secrets from SSM in deployed
// environments), connects the Postgres history store, builds the predictor
// client and interpretation engine, wires the domain handlers into the core
// chassis, and serves HTTP with graceful shutdown on SIGINT/SIGTERM.
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

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatch"
	"github.com/aws/aws-sdk-go-v2/service/sqs"

	"maizecast/internal/api/handlers"
	"maizecast/internal/config"
	"maizecast/internal/core"
	"maizecast/internal/db"
	"maizecast/internal/export"
	"maizecast/internal/interpret"
	"maizecast/internal/predictor"
	"maizecast/internal/telemetry"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		os.Exit(1)
	}
}

// run encapsulates the startup lifecycle so that main() can cleanly exit on error.
func run() error {
	cfg, err := config.LoadConfig(config.NewSSMProvider(os.Getenv("AWS_REGION")))
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}

	logger := newLogger(cfg.LogLevel)
	logger.Info("maizecast API starting",
		"environment", cfg.Environment,
		"version", cfg.Build.Version,
		"commit", cfg.Build.Commit,
		"port", cfg.Server.Port,
	)

	ctx := context.Background()

	// History store.
	pool, err := db.NewPool(ctx, cfg.Database)
	if err != nil {
		return fmt.Errorf("connecting database: %w", err)
	}
	store := db.NewHistoryStore(pool)

	// Predictor client. An empty base URL selects the deterministic stub,
	// which is only acceptable for local development.
	pred := predictor.New(predictor.Config{
		BaseURL:               cfg.Predictor.BaseURL,
		APIKey:                cfg.Predictor.APIKey.Unmask(),
		Timeout:               cfg.Predictor.Timeout,
		MaxRetries:            cfg.Predictor.MaxRetries,
		RetryBaseDelay:        cfg.Predictor.RetryBaseDelay,
		PestBinarizeThreshold: cfg.Predictor.PestBinarizeThreshold,
		Logger:                logger,
	})
	if cfg.Predictor.BaseURL == "" && cfg.Environment != "local" {
		logger.Warn("no predictor base URL configured, using the built-in stub")
	}

	engine := interpret.NewEngine(interpret.Config{
		MaxExpectedRange: cfg.Engine.MaxExpectedRange,
	}, logger)

	// AWS-backed dependencies: metrics and the async export queue. Both are
	// optional; the service degrades to no-op metrics and sync-only export.
	var awsCfg aws.Config
	awsLoaded := false
	if cfg.Observability.EnableMetrics || cfg.AWS.ExportQueueURL != "" {
		awsCfg, err = awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(cfg.AWS.Region))
		if err != nil {
			return fmt.Errorf("loading AWS configuration: %w", err)
		}
		awsLoaded = true
	}

	metrics := telemetry.New(nil, cfg.Observability.MetricNamespace, logger)
	if cfg.Observability.EnableMetrics && awsLoaded {
		cwClient := cloudwatch.NewFromConfig(awsCfg, func(o *cloudwatch.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		metrics = telemetry.New(cwClient, cfg.Observability.MetricNamespace, logger)
	}

	var queue *export.Publisher
	if cfg.AWS.ExportQueueURL != "" {
		sqsClient := sqs.NewFromConfig(awsCfg, func(o *sqs.Options) {
			if cfg.AWS.EndpointURL != "" {
				o.BaseEndpoint = aws.String(cfg.AWS.EndpointURL)
			}
		})
		queue = export.NewPublisher(sqsClient, cfg.AWS.ExportQueueURL, logger)
	} else {
		logger.Info("SQS export queue not configured, async export disabled")
	}

	// Core chassis.
	srv, err := core.NewServer(cfg, logger)
	if err != nil {
		return fmt.Errorf("creating server: %w", err)
	}
	srv.History = store
	srv.Predictor = pred
	srv.Metrics = metrics
	srv.HealthProbes = []core.HealthProbe{
		core.ProbeFunc{ProbeName: "database", CheckFunc: pool.Ping},
		core.ProbeFunc{ProbeName: "predictor", CheckFunc: func(ctx context.Context) error {
			_, err := pred.ModelInfo(ctx)
			return err
		}},
	}

	// Domain handlers.
	predictionHandler := handlers.NewPredictionHandler(store, pred, engine, srv.Validator, metrics, logger)
	historyHandler := newHistoryHandler(store, queue, metrics, logger)
	modelHandler := handlers.NewModelHandler(pred, logger)
	referenceHandler := handlers.NewReferenceHandler()

	srv.V1RouteRegistrars = append(srv.V1RouteRegistrars,
		predictionHandler.RegisterRoutes,
		historyHandler.RegisterRoutes,
		modelHandler.RegisterRoutes,
		referenceHandler.RegisterRoutes,
	)

	srv.MountRoutes()

	return serveHTTP(srv, cfg, logger)
}

// newHistoryHandler keeps the nil-queue case an honest nil interface. A typed
// nil *export.Publisher inside types.ExportQueue would defeat the handler's
// queue == nil check.
func newHistoryHandler(store *db.HistoryRepository, queue *export.Publisher, metrics telemetry.Metrics, logger *slog.Logger) *handlers.HistoryHandler {
	if queue == nil {
		return handlers.NewHistoryHandler(store, nil, metrics, logger)
	}
	return handlers.NewHistoryHandler(store, queue, metrics, logger)
}

// serveHTTP runs the HTTP server until a shutdown signal or server error.
func serveHTTP(srv *core.Server, cfg *config.Config, logger *slog.Logger) error {
	addr := ":" + cfg.Server.Port

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.ReadTimeout,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       120 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		logger.Info("HTTP server listening", "addr", addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serverErr <- err
		}
		close(serverErr)
	}()

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-shutdown:
		logger.Info("shutdown signal received", "signal", sig.String())
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
	}

	logger.Info("initiating graceful shutdown")
	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logger.Error("HTTP server shutdown error", "error", err)
	}

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server resource shutdown error", "error", err)
		return fmt.Errorf("server shutdown: %w", err)
	}

	logger.Info("server stopped cleanly")
	return nil
}

// newLogger creates a structured slog.Logger configured for the given log level.
func newLogger(level string) *slog.Logger {
	var lvl slog.Level
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "warn":
		lvl = slog.LevelWarn
	case "error":
		lvl = slog.LevelError
	default:
		lvl = slog.LevelInfo
	}

	return slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: lvl}))
}
