package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/Annany2002/sqlprompt/internal/logger"
	"github.com/joho/godotenv"
)

var (
	customLog = logger.NewLogger()
)

// Config holds application configuration values
type Config struct {
	ServerPort         string
	JWTSecret          string
	JWTExpiration      time.Duration
	AdminPasswordHash  string
	AllowedOrigins     []string
	RateLimitPerMinute int

	LLMBaseURL     string
	LLMAPIKey      string
	LLMModel       string
	LLMTemperature float64
	LLMTimeout     time.Duration

	QueryTimeout     time.Duration
	FuzzyThreshold   int
	SchemaTableLimit int

	HistoryDbDir  string
	HistoryDbFile string

	// SQLiteTargetDir is the only directory sqlite targets may be opened from. Empty disables them.
	SQLiteTargetDir string

	// QueryEndpoint points the form UI at a remote /query backend. Empty means in-process.
	QueryEndpoint string
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig() (*Config, error) {
	customLog.Println("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			customLog.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8000")
	jwtSecret := getEnv("JWT_SECRET", "")
	llmAPIKey := getEnv("LLM_API_KEY", "")

	if jwtSecret == "" {
		return nil, errors.New("JWT_SECRET environment variable must be set")
	}
	if llmAPIKey == "" {
		return nil, errors.New("LLM_API_KEY environment variable must be set")
	}

	temperature, err := strconv.ParseFloat(getEnv("LLM_TEMPERATURE", "0"), 64)
	if err != nil || temperature < 0 {
		customLog.Warnf("Invalid LLM_TEMPERATURE. Using 0. Error: %v", err)
		temperature = 0
	}

	cfg := &Config{
		ServerPort:         strings.TrimPrefix(port, ":"),
		JWTSecret:          jwtSecret,
		JWTExpiration:      time.Hour * time.Duration(getPositiveInt("JWT_EXPIRATION_HOURS", 24)),
		AdminPasswordHash:  getEnv("ADMIN_PASSWORD_HASH", "-"),
		AllowedOrigins:     splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173")),
		RateLimitPerMinute: getPositiveInt("RATE_LIMIT_PER_MINUTE", 30),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "https://api.groq.com/openai"),
		LLMAPIKey:          llmAPIKey,
		LLMModel:           getEnv("LLM_MODEL", "llama3-70b-8192"),
		LLMTemperature:     temperature,
		LLMTimeout:         time.Second * time.Duration(getPositiveInt("LLM_TIMEOUT_SECONDS", 30)),
		QueryTimeout:       time.Second * time.Duration(getPositiveInt("QUERY_TIMEOUT_SECONDS", 60)),
		FuzzyThreshold:     getPositiveInt("FUZZY_THRESHOLD", 70),
		SchemaTableLimit:   getPositiveInt("SCHEMA_TABLE_LIMIT", 50),
		HistoryDbDir:       getEnv("HISTORY_DB_DIR", "data"),
		HistoryDbFile:      getEnv("HISTORY_DB_FILE", "history.db"),
		SQLiteTargetDir:    getEnv("SQLITE_TARGET_DIR", "-"),
		QueryEndpoint:      getEnv("QUERY_ENDPOINT", "-"),
	}
	// "-" marks optional values that default to disabled.
	if cfg.AdminPasswordHash == "-" {
		cfg.AdminPasswordHash = ""
		customLog.Warnln("ADMIN_PASSWORD_HASH is not set; history API login is disabled.")
	}
	if cfg.QueryEndpoint == "-" {
		cfg.QueryEndpoint = ""
	}
	if cfg.SQLiteTargetDir == "-" {
		cfg.SQLiteTargetDir = ""
		customLog.Println("SQLITE_TARGET_DIR is not set; sqlite targets are disabled.")
	}

	customLog.Printf("Configuration loaded successfully. Port: %s, Model: %s, LLM: %s", cfg.ServerPort, cfg.LLMModel, cfg.LLMBaseURL)
	return cfg, nil
}

// getEnv reads an environment variable or returns a default value.
// An empty fallback marks the variable as critical.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	if fallback == "" {
		customLog.Warnf("Critical environment variable '%s' is missing and has no fallback.", key)
	}
	return fallback
}

func getPositiveInt(key string, fallback int) int {
	raw := getEnv(key, strconv.Itoa(fallback))
	value, err := strconv.Atoi(raw)
	if err != nil || value <= 0 {
		customLog.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	var out []string
	for _, item := range strings.Split(raw, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
