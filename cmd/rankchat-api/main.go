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

	"github.com/rankchat/rankchat/internal/api"
	"github.com/rankchat/rankchat/internal/auth"
	"github.com/rankchat/rankchat/internal/config"
	"github.com/rankchat/rankchat/internal/conversation"
	"github.com/rankchat/rankchat/internal/llm"
	"github.com/rankchat/rankchat/internal/observability"
	"github.com/rankchat/rankchat/internal/reports"
	"github.com/rankchat/rankchat/internal/resolve"
)

func main() {
	cfg, err := config.LoadFromEnv("rankchat-api")
	if err != nil {
		slog.Error("failed to load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg, os.Stdout)
	db, err := reports.Open(context.Background(), reports.DBConfig{
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

	reportsRepo := reports.NewRepository(db)
	engine := reports.NewEngine(db, cfg.Database.QueryTimeout)
	entityCache := reports.NewEntityCache(reportsRepo, cfg.Resolver.EntityCacheTTL)
	conversationRepo := conversation.NewRepository(db)

	aiClient, err := llm.NewOpenAIClient(llm.OpenAIConfig{
		BaseURL:     cfg.AI.BaseURL,
		APIKey:      cfg.AI.APIKey,
		Model:       cfg.AI.Model,
		Temperature: cfg.AI.Temperature,
	})
	if err != nil {
		logger.Error("failed to initialize llm client", slog.Any("error", err))
		os.Exit(1)
	}

	workflow := &resolve.Workflow{
		Formatter:    resolve.NewFormatter(aiClient, cfg.AI.FormatTimeout),
		Generator:    resolve.NewGenerator(aiClient, cfg.AI.GenerateTimeout),
		Validator:    resolve.NewSQLValidator(),
		Executor:     engine,
		Answers:      resolve.NewAnswerComposer(aiClient, cfg.AI.AnswerTimeout),
		Store:        conversationRepo,
		Entities:     entityCache,
		Logger:       logger,
		Schema:       reports.SchemaContext,
		HistoryTurns: cfg.Resolver.HistoryTurns,
		RowLimit:     cfg.Resolver.DefaultRowLimit,
	}

	deps := api.Dependencies{
		Logger:       logger,
		Resolver:     workflow,
		History:      conversationRepo,
		Entities:     entityCache,
		HistoryLimit: cfg.Resolver.HistoryTurns,
		Readiness: api.CombineReadinessChecks(
			reportsRepo.HealthCheck,
			api.CheckAIConfig(cfg),
		),
		DependencyTimeout: time.Second,
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
