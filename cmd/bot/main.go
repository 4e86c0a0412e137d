package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/xaenox/calbot/internal/assistant"
	"github.com/xaenox/calbot/internal/bot"
	"github.com/xaenox/calbot/internal/calendar"
	"github.com/xaenox/calbot/internal/files"
	"github.com/xaenox/calbot/internal/server"
	"github.com/xaenox/calbot/internal/storage"
	"github.com/xaenox/calbot/internal/telegram"
	"github.com/xaenox/calbot/internal/vision"
	"github.com/xaenox/calbot/pkg/config"
)

func main() {
	// Initialize logger
	logger, _ := zap.NewProduction()
	defer logger.Sync()

	// Load configuration
	cfg, err := config.LoadConfig("config.yaml")
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err), zap.String("path", "config.yaml"))
	}

	location, err := time.LoadLocation(cfg.Calendar.Timezone)
	if err != nil {
		logger.Fatal("Invalid timezone", zap.Error(err), zap.String("timezone", cfg.Calendar.Timezone))
	}

	// Initialize storage
	var store storage.Storage
	if cfg.Database.UseInMemory {
		logger.Info("Using in-memory storage")
		store = storage.NewMemoryStorage()
	} else {
		logger.Info("Using PostgreSQL storage")
		store, err = storage.NewPostgresStorage(storage.DatabaseConfig{
			Host:     cfg.Database.Host,
			Port:     cfg.Database.Port,
			User:     cfg.Database.User,
			Password: cfg.Database.Password,
			DBName:   cfg.Database.DBName,
			SSLMode:  cfg.Database.SSLMode,
		})
		if err != nil {
			logger.Fatal("Failed to initialize storage", zap.Error(err))
		}
	}
	defer store.Close()

	// One OpenAI client serves both intent resolution and vision
	// extraction.
	openaiClient := openai.NewClient(cfg.OpenAI.APIKey)
	resolver := assistant.NewResolver(
		openaiClient,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)
	extractor := vision.NewExtractor(openaiClient, cfg.OpenAI.VisionModel, logger)

	ctx := context.Background()
	events, err := calendar.NewService(ctx, calendar.Config{
		ClientID:     cfg.Google.ClientID,
		ClientSecret: cfg.Google.ClientSecret,
		RefreshToken: cfg.Google.RefreshToken,
		CalendarID:   cfg.Calendar.ID,
		Timezone:     cfg.Calendar.Timezone,
	})
	if err != nil {
		logger.Fatal("Failed to create calendar service", zap.Error(err))
	}

	fileStore := files.NewStore(store, cfg.Files.PublicBaseURL)

	// Without a bot token the webhook answers 500 but the calendar
	// endpoint keeps working.
	var b *bot.Bot
	if cfg.Telegram.Token != "" {
		messenger, err := telegram.New(cfg.Telegram.Token, cfg.Files.MaxDownloadBytes, logger)
		if err != nil {
			logger.Fatal("Failed to create telegram client", zap.Error(err))
		}
		b = bot.New(store, messenger, fileStore, extractor, resolver, events, location, logger)
	} else {
		logger.Warn("TELEGRAM_TOKEN not configured, webhook disabled")
	}

	srv := server.New(cfg.Telegram.Token, b, events, store, logger)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      srv.Router(),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		logger.Info("Server listening", zap.String("port", cfg.Server.Port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Error("Server shutdown error", zap.Error(err))
	}
}
