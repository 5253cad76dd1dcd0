package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application
type Config struct {
	AppMode  string
	Port     string
	Database DatabaseConfig
	JWT      JWTConfig
	Lending  LendingConfig
	SMTP     SMTPConfig
	Notify   NotifyConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string

	MaxIdleConns    int
	MaxOpenConns    int
	ConnMaxLifetime time.Duration
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	AccessTokenMins  int
	RefreshTokenDays int
}

// LendingConfig holds the lending policy knobs
type LendingConfig struct {
	FinePerDay       float64
	LegacyAccumulate bool
	LoanPeriodDays   int
}

// SMTPConfig holds outbound mail configuration. An empty Host disables mail.
type SMTPConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
}

// NotifyConfig holds notification delivery configuration
type NotifyConfig struct {
	WebhookURL string
}

// Global config instance
var AppConfig *Config

// Load reads configuration from .env file and environment variables
func Load() (*Config, error) {
	// Load .env file (ignore error if file doesn't exist in production)
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using environment variables")
	}

	// Get APP_MODE (default to "dev") - trim spaces for Windows compatibility
	appMode := strings.TrimSpace(getEnv("APP_MODE", "dev"))
	if appMode != "dev" && appMode != "prod" {
		return nil, fmt.Errorf("invalid APP_MODE: '%s' (must be 'dev' or 'prod')", appMode)
	}

	config := &Config{
		AppMode:  appMode,
		Port:     getEnv("PORT", "3000"),
		Database: loadDatabaseConfig(appMode),
		JWT:      loadJWTConfig(appMode),
		Lending:  loadLendingConfig(),
		SMTP:     loadSMTPConfig(),
		Notify:   loadNotifyConfig(),
	}

	// Set global config
	AppConfig = config

	log.Printf("✅ Configuration loaded successfully [MODE: %s]", appMode)
	return config, nil
}

// loadDatabaseConfig loads database config based on mode
func loadDatabaseConfig(mode string) DatabaseConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	idle, err := strconv.Atoi(getEnv("DB_MAX_IDLE_CONNS", "10"))
	if err != nil || idle < 1 {
		idle = 10
	}
	open, err := strconv.Atoi(getEnv("DB_MAX_OPEN_CONNS", "50"))
	if err != nil || open < idle {
		open = 50
	}
	lifetimeMins, err := strconv.Atoi(getEnv("DB_CONN_MAX_LIFETIME_MINUTES", "60"))
	if err != nil || lifetimeMins < 1 {
		lifetimeMins = 60
	}

	return DatabaseConfig{
		Host:     getEnv(prefix+"DB_HOST", "localhost"),
		Port:     getEnv(prefix+"DB_PORT", "3306"),
		User:     getEnv(prefix+"DB_USER", "root"),
		Password: getEnv(prefix+"DB_PASS", ""),
		DBName:   getEnv(prefix+"DB_NAME", "librelend"),

		MaxIdleConns:    idle,
		MaxOpenConns:    open,
		ConnMaxLifetime: time.Duration(lifetimeMins) * time.Minute,
	}
}

// loadJWTConfig loads JWT config based on mode
func loadJWTConfig(mode string) JWTConfig {
	prefix := "DEV_"
	if mode == "prod" {
		prefix = "PROD_"
	}

	accessMins, _ := strconv.Atoi(getEnv("ACCESS_TOKEN_MINUTES", "15"))
	refreshDays, _ := strconv.Atoi(getEnv("REFRESH_TOKEN_DAYS", "7"))

	return JWTConfig{
		Secret:           getEnv(prefix+"JWT_SECRET", "default_secret"),
		RefreshSecret:    getEnv(prefix+"JWT_REFRESH_SECRET", "default_refresh_secret"),
		AccessTokenMins:  accessMins,
		RefreshTokenDays: refreshDays,
	}
}

// loadLendingConfig loads the lending policy
func loadLendingConfig() LendingConfig {
	finePerDay, err := strconv.ParseFloat(getEnv("FINE_PER_DAY", "5000"), 64)
	if err != nil || finePerDay <= 0 {
		finePerDay = 5000
	}

	legacy, _ := strconv.ParseBool(getEnv("FINE_LEGACY_ACCUMULATE", "false"))

	loanDays, err := strconv.Atoi(getEnv("LOAN_PERIOD_DAYS", "14"))
	if err != nil || loanDays <= 0 {
		loanDays = 14
	}

	return LendingConfig{
		FinePerDay:       finePerDay,
		LegacyAccumulate: legacy,
		LoanPeriodDays:   loanDays,
	}
}

// loadSMTPConfig loads outbound mail config
func loadSMTPConfig() SMTPConfig {
	return SMTPConfig{
		Host:     getEnv("SMTP_HOST", ""),
		Port:     getEnv("SMTP_PORT", "587"),
		Username: getEnv("SMTP_USERNAME", ""),
		Password: getEnv("SMTP_PASSWORD", ""),
		From:     getEnv("SMTP_FROM", "library@librelend.local"),
	}
}

// loadNotifyConfig loads notification delivery config
func loadNotifyConfig() NotifyConfig {
	return NotifyConfig{
		WebhookURL: getEnv("NOTIFY_WEBHOOK_URL", ""),
	}
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// IsDev returns true if running in development mode
func (c *Config) IsDev() bool {
	return c.AppMode == "dev"
}

// IsProd returns true if running in production mode
func (c *Config) IsProd() bool {
	return c.AppMode == "prod"
}

// GetAllowedOrigins returns allowed origins for CORS
func (c *Config) GetAllowedOrigins() string {
	origins := getEnv("ALLOWED_ORIGINS", "")
	if origins == "" && c.IsDev() {
		return "*"
	}
	return origins
}
