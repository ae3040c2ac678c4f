package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/comment-moderation-api/internal/moderation"
	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Server configuration
	Server ServerConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration, used for moderation notifications
	Redis RedisConfig

	// Moderation policy
	Moderation ModerationConfig

	// Akismet client settings
	Akismet AkismetConfig

	// Admin authentication
	Admin AdminConfig

	// Comment rate limiting
	RateLimit RateLimitConfig

	// Logging configuration
	Log LogConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	PublicURL       string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MaxOpenConns   int
	MaxIdleConns   int
	MaxLifetime    time.Duration
	MigrationsPath string
}

// RedisConfig holds Redis settings. An empty Addr disables notifications.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Channel  string
}

// ModerationConfig holds the moderation policy settings
type ModerationConfig struct {
	CloseAfterDays    int
	ModerateAfterDays int
	BadWords          []string
	UseAkismet        bool
	AkismetAction     string
	SpamCheckFailure  string
}

// AkismetConfig holds Akismet API settings
type AkismetConfig struct {
	APIKey     string
	BlogURL    string
	Endpoint   string
	Timeout    time.Duration
	MaxRetries int
	IsTest     bool
}

// AdminConfig holds admin token settings
type AdminConfig struct {
	JWTSecret     string
	TokenTTLHours int
}

// RateLimitConfig holds per-client comment submission limits
type RateLimitConfig struct {
	CommentsPerMinute int
	Burst             int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string
	Format string // "json" or "pretty"
}

// Load reads configuration from environment variables, after loading .env if present
func Load() (*Config, error) {
	// .env is optional, so a missing file is not an error
	_ = godotenv.Load()

	cfg := &Config{
		Server: ServerConfig{
			Port:            getEnv("PORT", "8080"),
			PublicURL:       getEnv("PUBLIC_URL", "http://localhost:8080"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 30*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnv("DB_PORT", "5432"),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "comments"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxOpenConns:   getIntEnv("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns:   getIntEnv("DB_MAX_IDLE_CONNS", 5),
			MaxLifetime:    getDurationEnv("DB_MAX_LIFETIME", 5*time.Minute),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./migrations"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
			Channel:  getEnv("REDIS_CHANNEL", "comments:moderation"),
		},
		Moderation: ModerationConfig{
			CloseAfterDays:    getIntEnv("MODERATION_CLOSE_AFTER_DAYS", 0),
			ModerateAfterDays: getIntEnv("MODERATION_MODERATE_AFTER_DAYS", 0),
			BadWords:          getListEnv("MODERATION_BAD_WORDS"),
			UseAkismet:        getBoolEnv("MODERATION_USE_AKISMET", false),
			AkismetAction:     getEnv("MODERATION_AKISMET_ACTION", "soft_delete"),
			SpamCheckFailure:  getEnv("MODERATION_SPAM_CHECK_FAILURE", "error"),
		},
		Akismet: AkismetConfig{
			APIKey:     getEnv("AKISMET_API_KEY", ""),
			BlogURL:    getEnv("AKISMET_BLOG_URL", ""),
			Endpoint:   getEnv("AKISMET_ENDPOINT", ""),
			Timeout:    getDurationEnv("AKISMET_TIMEOUT", 5*time.Second),
			MaxRetries: getIntEnv("AKISMET_MAX_RETRIES", 0),
			IsTest:     getBoolEnv("AKISMET_IS_TEST", false),
		},
		Admin: AdminConfig{
			JWTSecret:     getEnv("ADMIN_JWT_SECRET", "change-this-secret-key"),
			TokenTTLHours: getIntEnv("ADMIN_TOKEN_TTL_HOURS", 12),
		},
		RateLimit: RateLimitConfig{
			CommentsPerMinute: getIntEnv("COMMENT_RATE_PER_MINUTE", 6),
			Burst:             getIntEnv("COMMENT_RATE_BURST", 3),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	// Validate required configuration
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Database.Host == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	if c.Database.Name == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	if err := c.Policy().Validate(); err != nil {
		return fmt.Errorf("invalid moderation settings: %w", err)
	}
	if c.Moderation.UseAkismet {
		if c.Akismet.APIKey == "" {
			return fmt.Errorf("AKISMET_API_KEY is required when MODERATION_USE_AKISMET is set")
		}
		if c.Akismet.BlogURL == "" {
			return fmt.Errorf("AKISMET_BLOG_URL is required when MODERATION_USE_AKISMET is set")
		}
	}
	if c.Akismet.MaxRetries < 0 {
		return fmt.Errorf("AKISMET_MAX_RETRIES must not be negative")
	}
	if c.Admin.JWTSecret == "" {
		return fmt.Errorf("ADMIN_JWT_SECRET is required")
	}
	return nil
}

// Policy converts the moderation settings into a moderation policy
func (c *Config) Policy() moderation.Policy {
	return moderation.Policy{
		CloseAfterDays:    c.Moderation.CloseAfterDays,
		ModerateAfterDays: c.Moderation.ModerateAfterDays,
		BadWords:          c.Moderation.BadWords,
		UseAkismet:        c.Moderation.UseAkismet,
		AkismetAction:     moderation.ActionMode(c.Moderation.AkismetAction),
		OnSpamCheckError:  moderation.FailureMode(c.Moderation.SpamCheckFailure),
	}
}

// GetDSN returns the PostgreSQL connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getListEnv(key string) []string {
	value := os.Getenv(key)
	if value == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
