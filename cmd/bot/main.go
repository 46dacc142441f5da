package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/chatrelay/telegram-ai-bot/internal/api"
	"github.com/chatrelay/telegram-ai-bot/internal/config"
	"github.com/chatrelay/telegram-ai-bot/internal/core"
	"github.com/chatrelay/telegram-ai-bot/internal/session"
	"github.com/chatrelay/telegram-ai-bot/internal/store"
	"github.com/chatrelay/telegram-ai-bot/internal/telegram"
)

func main() {
	// Load configuration
	config.LoadConfig()

	// Setup logging
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	if config.AppConfig.LogLevel == "DEBUG" {
		log.Println("Bot starting in DEBUG mode")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Config/log store: Google Sheets when a spreadsheet is configured,
	// local SQLite otherwise.
	var configLog store.ConfigLog
	if config.AppConfig.SpreadsheetID != "" {
		sheetsStore, err := store.NewSheetsStore(ctx,
			config.AppConfig.SheetsCredentialsFile, config.AppConfig.SpreadsheetID)
		if err != nil {
			log.Fatalf("Failed to initialize sheets store: %v", err)
		}
		configLog = sheetsStore
		log.Printf("Using Google Sheets store (spreadsheet %s)", config.AppConfig.SpreadsheetID)
	} else {
		sqliteStore, err := store.NewSQLiteStore(config.AppConfig.DatabaseURL)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer sqliteStore.Close()
		configLog = sqliteStore
		log.Printf("No SPREADSHEET_ID set, using local SQLite store at %s", config.AppConfig.DatabaseURL)
	}

	// Initialize session store
	sessions, err := session.NewStore(config.AppConfig.MaxTrackedUsers, config.AppConfig.MaxHistoryTurns)
	if err != nil {
		log.Fatalf("Failed to initialize session store: %v", err)
	}

	// Initialize LLM service
	llmService := core.NewLLMService()
	defer llmService.Close()

	// Initialize mail service
	mailService := core.NewMailService(
		config.AppConfig.SMTPHost,
		config.AppConfig.SMTPPort,
		config.AppConfig.EmailUser,
		config.AppConfig.EmailPass,
		configLog,
	)

	// Command router and transport
	botService := core.NewService(sessions, llmService, mailService, configLog)
	client := telegram.NewClient(config.AppConfig.TelegramBotToken)
	dispatcher := telegram.NewDispatcher(client, botService)

	if config.AppConfig.WebhookListenAddr == "" {
		runPoller(ctx, client, dispatcher)
	} else {
		runWebhookServer(ctx, dispatcher)
	}

	log.Println("Bot exiting gracefully")
}

func runPoller(ctx context.Context, client *telegram.Client, dispatcher *telegram.Dispatcher) {
	poller := telegram.NewPoller(client, dispatcher)
	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatalf("Polling loop failed: %v", err)
	}
}

func runWebhookServer(ctx context.Context, dispatcher *telegram.Dispatcher) {
	apiHandler := api.NewAPIHandler(dispatcher, config.AppConfig.WebhookSecret)
	router := api.NewRouter(apiHandler)

	srv := &http.Server{
		Addr:         config.AppConfig.WebhookListenAddr,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 60 * time.Second, // LLM calls can take time
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Printf("Starting webhook server on %s. Press Ctrl+C to quit.", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Could not listen on %s: %v\n", srv.Addr, err)
		}
	}()

	<-ctx.Done() // Block until a shutdown signal is received
	log.Println("Shutting down server...")

	// Give active connections time to finish.
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
		os.Exit(1)
	}
}
