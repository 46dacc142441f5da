package config

import (
	"log"
	"os"
	"strconv"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

type Config struct {
	TelegramBotToken string
	GeminiAPIKey     string

	SMTPHost  string
	SMTPPort  int
	EmailUser string // sender address, also the SMTP login
	EmailPass string

	SheetsCredentialsFile string
	SpreadsheetID         string
	DatabaseURL           string // SQLite fallback when no spreadsheet is configured

	MaxHistoryTurns int
	MaxTrackedUsers int

	WebhookListenAddr string // empty means long-polling mode
	WebhookSecret     string
	LogLevel          string
}

var AppConfig Config

func LoadConfig() {
	err := godotenv.Load() // Load .env file if it exists
	if err != nil {
		log.Println("No .env file found, relying on environment variables")
	}

	AppConfig = Config{
		TelegramBotToken:      getEnv("TELEGRAM_BOT_TOKEN", ""),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		SMTPHost:              getEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:              getEnvAsInt("SMTP_PORT", 465),
		EmailUser:             getEnv("EMAIL_USER", ""),
		EmailPass:             getEnv("EMAIL_PASS", ""),
		SheetsCredentialsFile: getEnv("SHEETS_CREDENTIALS_FILE", "telegram-bot-key.json"),
		SpreadsheetID:         getEnv("SPREADSHEET_ID", ""),
		DatabaseURL:           getEnv("DATABASE_URL", "botdata.db"),
		MaxHistoryTurns:       getEnvAsInt("MAX_HISTORY_TURNS", 40),
		MaxTrackedUsers:       getEnvAsInt("MAX_TRACKED_USERS", 1024),
		WebhookListenAddr:     getEnv("WEBHOOK_LISTEN_ADDR", ""),
		WebhookSecret:         getEnv("WEBHOOK_SECRET", ""),
		LogLevel:              getEnv("LOG_LEVEL", "INFO"),
	}

	if AppConfig.TelegramBotToken == "" {
		log.Fatal("TELEGRAM_BOT_TOKEN environment variable is required")
	}

	if AppConfig.GeminiAPIKey == "" {
		log.Fatal("GEMINI_API_KEY environment variable is required")
	}

	if AppConfig.WebhookListenAddr != "" && AppConfig.WebhookSecret == "" {
		AppConfig.WebhookSecret = uuid.NewString()
		log.Printf("WEBHOOK_SECRET not set, generated one for this run: %s", AppConfig.WebhookSecret)
	}
}

func getEnv(key string, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}
