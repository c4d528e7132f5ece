package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"campus-agent/chat"
	"campus-agent/config"
	"campus-agent/database"
	"campus-agent/faq"
	"campus-agent/knowledge"
	"campus-agent/web"

	"go.uber.org/zap"
)

func main() {
	ctx := context.Background()

	// Initialize logger with default level to load config
	tempLogger, err := config.InitLogger("info")
	if err != nil {
		fmt.Printf("Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	cfg := config.Load(tempLogger)

	// Re-initialize logger with configured level
	logger, err := config.InitLogger(cfg.LogLevel)
	if err != nil {
		fmt.Printf("Failed to re-initialize logger with configured level: %v\n", err)
		os.Exit(1)
	}
	defer config.Cleanup()

	store, err := database.NewPostgresStore(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer store.Close()

	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal("Failed to ensure database schema", zap.Error(err))
	}

	knowledgeService, err := knowledge.NewService(cfg, store, logger)
	if err != nil {
		logger.Fatal("Failed to initialize knowledge service", zap.Error(err))
	}

	matcher, err := faq.NewMatcher(cfg)
	if err != nil {
		logger.Fatal("Failed to load FAQ catalog", zap.Error(err))
	}

	llmClient := chat.NewClient(cfg, logger)
	assembler := chat.NewAssembler(knowledgeService, matcher, cfg, logger)
	chatService := chat.NewService(store, assembler, llmClient, cfg, logger)

	server := web.NewServer(chatService, knowledgeService, matcher, logger, cfg)

	// Shut down cleanly on SIGINT/SIGTERM.
	runCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(runCtx, cfg.ListenAddr); err != nil {
		logger.Error("Server shutdown with error", zap.Error(err))
	}
}
