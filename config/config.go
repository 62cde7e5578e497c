package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Config holds every environment-driven setting, loaded once at startup.
type Config struct {
	Port       string
	Env        string
	AppVersion string

	// Storage
	StorageBackend string // "local" or "remote"
	DBHost         string
	DBPort         string
	DBUser         string
	DBPassword     string
	DBName         string
	RemoteStoreURL string
	RemoteStoreKey string

	// Uploads
	UploadDir string

	// Email
	ResendAPIKey string
	MailFrom     string
	AdminEmail   string

	// Admin
	AdminPassword string

	// Payments
	PaymentCheckoutURL string

	// Integrations (optional; empty disables the integration)
	KafkaBroker      string
	RedisHost        string
	RedisPassword    string
	ElasticsearchURL string
	SentryDSN        string
}

func Load() (*Config, error) {
	// .env is optional; real deployments set the environment directly
	_ = godotenv.Load()

	cfg := &Config{
		Port:       getEnv("PORT", "8080"),
		Env:        getEnv("APP_ENV", "development"),
		AppVersion: getEnv("APP_VERSION", "dev"),

		StorageBackend: getEnv("STORAGE_BACKEND", "local"),
		DBHost:         getEnv("DB_HOST", "localhost"),
		DBPort:         getEnv("DB_PORT", "5432"),
		DBUser:         getEnv("DB_USER", "postgres"),
		DBPassword:     os.Getenv("DB_PASSWORD"),
		DBName:         getEnv("DB_NAME", "vocal_excellence"),
		RemoteStoreURL: os.Getenv("REMOTE_STORE_URL"),
		RemoteStoreKey: os.Getenv("REMOTE_STORE_KEY"),

		UploadDir: getEnv("UPLOAD_DIR", "uploads"),

		ResendAPIKey: os.Getenv("RESEND_API_KEY"),
		MailFrom:     getEnv("MAIL_FROM", "Vocal Excellence <noreply@vocalexcellence.com>"),
		AdminEmail:   os.Getenv("ADMIN_EMAIL"),

		AdminPassword: os.Getenv("ADMIN_PASSWORD"),

		PaymentCheckoutURL: os.Getenv("PAYMENT_CHECKOUT_URL"),

		KafkaBroker:      os.Getenv("KAFKA_BROKER"),
		RedisHost:        os.Getenv("REDIS_HOST"),
		RedisPassword:    os.Getenv("REDIS_PASSWORD"),
		ElasticsearchURL: os.Getenv("ELASTICSEARCH_URL"),
		SentryDSN:        os.Getenv("SENTRY_DSN"),
	}

	if cfg.StorageBackend != "local" && cfg.StorageBackend != "remote" {
		return nil, fmt.Errorf("STORAGE_BACKEND must be \"local\" or \"remote\", got %q", cfg.StorageBackend)
	}
	if cfg.StorageBackend == "remote" {
		if cfg.RemoteStoreURL == "" {
			return nil, fmt.Errorf("REMOTE_STORE_URL is required when STORAGE_BACKEND=remote")
		}
		if cfg.RemoteStoreKey == "" {
			return nil, fmt.Errorf("REMOTE_STORE_KEY is required when STORAGE_BACKEND=remote")
		}
	}

	return cfg, nil
}

// DatabaseDSN builds the Postgres DSN from the individual DB_* variables.
func (c *Config) DatabaseDSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort,
	)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
