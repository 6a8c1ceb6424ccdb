package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/clipstats/clipstats/internal/config"
	"github.com/clipstats/clipstats/internal/dataset"
	"github.com/clipstats/clipstats/internal/metricsdb"
	"github.com/clipstats/clipstats/internal/observability"
)

func main() {
	source := flag.String("source", "", "dump source: local path or s3://bucket/key (defaults to CLIPSTATS_DATASET_SOURCE)")
	format := flag.String("format", "", "dump format: json|parquet (defaults to the source extension)")
	flag.Parse()

	cfg, err := config.LoadFromEnv("clipstats-loader")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}
	logger := observability.NewLogger(cfg, os.Stdout)

	dumpSource := strings.TrimSpace(*source)
	if dumpSource == "" {
		dumpSource = cfg.Dataset.Source
	}
	if dumpSource == "" {
		logger.Error("dump source is required: pass -source or set CLIPSTATS_DATASET_SOURCE")
		os.Exit(1)
	}

	dumpFormat := strings.ToLower(strings.TrimSpace(*format))
	if dumpFormat == "" {
		switch filepath.Ext(dumpSource) {
		case ".parquet":
			dumpFormat = "parquet"
		default:
			dumpFormat = "json"
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	db, err := metricsdb.Open(ctx, metricsdb.DBConfig{
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

	data, err := dataset.Fetch(ctx, cfg.Dataset, dumpSource)
	if err != nil {
		logger.Error("failed to fetch dump", slog.Any("error", err), slog.String("source", dumpSource))
		os.Exit(1)
	}

	loader := dataset.NewLoader(db, logger, cfg.Dataset.BatchSize)

	var stats dataset.LoadStats
	switch dumpFormat {
	case "json":
		videos, err := dataset.ParseJSON(data)
		if err != nil {
			logger.Error("failed to parse json dump", slog.Any("error", err))
			os.Exit(1)
		}
		stats, err = loader.LoadVideos(ctx, videos)
		if err != nil {
			logger.Error("failed to load videos", slog.Any("error", err))
			os.Exit(1)
		}
	case "parquet":
		snapshots, err := dataset.ParseParquet(data)
		if err != nil {
			logger.Error("failed to parse parquet dump", slog.Any("error", err))
			os.Exit(1)
		}
		stats, err = loader.LoadSnapshots(ctx, snapshots)
		if err != nil {
			logger.Error("failed to load snapshots", slog.Any("error", err))
			os.Exit(1)
		}
	default:
		logger.Error("unsupported dump format", slog.String("format", dumpFormat))
		os.Exit(1)
	}

	logger.Info("dump loaded",
		slog.String("source", dumpSource),
		slog.String("format", dumpFormat),
		slog.Int("videos", stats.Videos),
		slog.Int("snapshots", stats.Snapshots),
	)
}
