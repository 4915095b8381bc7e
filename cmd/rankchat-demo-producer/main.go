package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/rankchat/rankchat/internal/demo/producer"
	s3store "github.com/rankchat/rankchat/internal/storage/s3"
)

func main() {
	cfg, err := producer.LoadConfigFromEnv(os.LookupEnv)
	if err != nil {
		slog.Error("failed to load demo producer config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	store, err := s3store.New(ctx, s3store.Config{
		Endpoint:         cfg.Endpoint,
		Region:           cfg.Region,
		Bucket:           cfg.Bucket,
		AccessKeyID:      cfg.AccessKeyID,
		SecretAccessKey:  cfg.SecretAccessKey,
		UseSSL:           cfg.UseSSL,
		Prefix:           cfg.Prefix,
		AutoCreateBucket: true,
	})
	if err != nil {
		logger.Error("failed to initialize object store", slog.Any("error", err))
		os.Exit(1)
	}

	service, err := producer.NewService(cfg, logger, store)
	if err != nil {
		logger.Error("failed to initialize demo producer", slog.Any("error", err))
		os.Exit(1)
	}

	uploaded, err := service.Run(ctx)
	if err != nil {
		logger.Error("demo producer stopped with error", slog.Any("error", err))
		os.Exit(1)
	}
	logger.Info("demo reports uploaded", slog.Int("files", uploaded))
}
