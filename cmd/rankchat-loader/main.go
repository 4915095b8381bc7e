package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rankchat/rankchat/internal/config"
	"github.com/rankchat/rankchat/internal/ingest"
	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
	s3store "github.com/rankchat/rankchat/internal/storage/s3"
)

func main() {
	cfg, err := config.LoadFromEnv("rankchat-loader")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := reports.Open(ctx, reports.DBConfig{
		DSN:             cfg.Database.DSN,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxIdleTime: cfg.Database.ConnMaxIdleTime,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	})
	if err != nil {
		logger.Error("failed to open reports db", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	objectStore, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.ObjectStore.Endpoint,
		Region:           cfg.ObjectStore.Region,
		Bucket:           cfg.ObjectStore.Bucket,
		AccessKeyID:      cfg.ObjectStore.AccessKeyID,
		SecretAccessKey:  cfg.ObjectStore.SecretAccessKey,
		UseSSL:           cfg.ObjectStore.UseSSL,
		Prefix:           cfg.ObjectStore.Prefix,
		AutoCreateBucket: cfg.ObjectStore.AutoCreateBucket,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	repo := reports.NewRepository(db)
	service := &ingest.Service{
		Store:     objectStore,
		Inserter:  repo,
		Cache:     reports.NewEntityCache(repo, cfg.Resolver.EntityCacheTTL),
		Logger:    logger,
		Prefix:    cfg.Loader.ReportPrefix,
		BatchSize: cfg.Loader.BatchSize,
		LoadedBy:  cfg.Loader.LoadedBy,
	}

	start := time.Now()
	summary, err := service.Run(ctx)
	if err != nil {
		logger.Error("report load failed", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("report load finished",
		slog.Int("files_seen", summary.FilesSeen),
		slog.Int("files_loaded", summary.FilesLoaded),
		slog.Int("files_skipped", summary.FilesSkipped),
		slog.Int("rows_decoded", summary.RowsDecoded),
		slog.Int("rows_inserted", summary.RowsInserted),
		slog.Duration("elapsed", time.Since(start)),
	)
}
