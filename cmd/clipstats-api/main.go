package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clipstats/clipstats/internal/api"
	"github.com/clipstats/clipstats/internal/auth"
	"github.com/clipstats/clipstats/internal/config"
	"github.com/clipstats/clipstats/internal/metricsdb"
	"github.com/clipstats/clipstats/internal/nl2sql"
	"github.com/clipstats/clipstats/internal/observability"
	"github.com/clipstats/clipstats/internal/pipeline"
	"github.com/clipstats/clipstats/internal/schema"
)

func main() {
	cfg, err := config.LoadFromEnv("clipstats-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, err := metricsdb.Open(context.Background(), metricsdb.DBConfig{
		Driver:          cfg.DB.Driver,
		DSN:             cfg.DB.DSN,
		MaxOpenConns:    cfg.DB.MaxOpenConns,
		MaxIdleConns:    cfg.DB.MaxIdleConns,
		ConnMaxIdleTime: cfg.DB.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.DB.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open metrics db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	executor := metricsdb.NewExecutor(db, cfg.DB.StatementTimeout)

	deps := api.Dependencies{
		Logger:            logger,
		Readiness:         executor.HealthCheck,
		DependencyTimeout: time.Second,
	}

	if cfg.AI.APIKey != "" {
		translator, err := nl2sql.NewOpenAITranslator(nl2sql.OpenAIConfig{
			BaseURL:      cfg.AI.BaseURL,
			APIKey:       cfg.AI.APIKey,
			Model:        cfg.AI.Model,
			SystemPrompt: schema.Prompt(),
			Temperature:  cfg.AI.Temperature,
			MaxTokens:    cfg.AI.MaxTokens,
			Timeout:      cfg.AI.Timeout,
		})
		if err != nil {
			logger.Error("failed to initialize question translator", slog.Any("error", err))
			os.Exit(1)
		}
		answerer, err := pipeline.New(translator, executor, logger)
		if err != nil {
			logger.Error("failed to build answer pipeline", slog.Any("error", err))
			os.Exit(1)
		}
		deps.Answerer = answerer
	} else {
		logger.Warn("AI API key not configured; /v1/ask is disabled")
	}

	if cfg.Auth.Required {
		validator, err := auth.NewStaticAPIKeyValidator(cfg.Auth.StaticKeys)
		if err != nil {
			logger.Error("failed to parse static auth keys", slog.Any("error", err))
			os.Exit(1)
		}
		deps.AuthMiddleware = auth.Middleware(logger, validator)
	}

	handler := api.NewHandler(cfg, deps)
	server := &http.Server{
		Addr:         cfg.HTTP.Address,
		Handler:      handler,
		ReadTimeout:  cfg.HTTP.ReadTimeout,
		WriteTimeout: cfg.HTTP.WriteTimeout,
		IdleTimeout:  cfg.HTTP.IdleTimeout,
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		logger.Info("starting api server", slog.String("addr", cfg.HTTP.Address))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("api server failed", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	logger.Info("shutting down api server")
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown failed", slog.Any("error", err))
		_ = server.Close()
		os.Exit(1)
	}
}
