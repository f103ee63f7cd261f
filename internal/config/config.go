package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port            string        `json:"port"`
	Env             string        `json:"env"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
	HTTPTimeout     time.Duration `json:"http_timeout"`
	CORSOrigins     string        `json:"cors_origins"`
	PublicBaseURL   string        `json:"public_base_url"`

	// Database
	DatabaseDSN string `json:"database_dsn"`

	// Redis configuration
	RedisURL       string        `json:"redis_url"`
	RedisPrefix    string        `json:"redis_prefix"`
	CacheTTL       time.Duration `json:"cache_ttl"`
	MaxConcurrency int           `json:"max_concurrency"`

	// CloudFlare R2 Configuration
	R2Endpoint  string `json:"r2_endpoint"`
	R2AccessKey string `json:"r2_access_key"`
	R2SecretKey string `json:"r2_secret_key"`
	R2Bucket    string `json:"r2_bucket"`
	R2AccountID string `json:"r2_account_id"`
	R2PublicURL string `json:"r2_public_url"`

	// AI Configuration
	AIApiKey  string        `json:"ai_api_key"`
	AIModel   string        `json:"ai_model"`
	AITimeout time.Duration `json:"ai_timeout"`

	// Uploads
	StoragePath  string `json:"storage_path"`
	MaxImageSize int64  `json:"max_image_size"`
	MaxVideoSize int64  `json:"max_video_size"`

	// Logging
	LogLevel  string `json:"log_level"`
	LogFile   string `json:"log_file"`
	LogPretty bool   `json:"log_pretty"`

	// Security
	JWTSecret     string        `json:"-"`
	TokenTTL      time.Duration `json:"token_ttl"`
	CookieSecret  string        `json:"-"`
	AdminEmail    string        `json:"admin_email"`
	AdminPassword string        `json:"-"`

	// RSS import
	FeedTimeout          time.Duration `json:"feed_timeout"`
	FeedRetries          int           `json:"feed_retries"`
	FeedRatePerSecond    float64       `json:"feed_rate_per_second"`
	FeedMaxBodyBytes     int           `json:"feed_max_body_bytes"`
	SchedulerEnabled     bool          `json:"scheduler_enabled"`
	PublishCheckInterval time.Duration `json:"publish_check_interval"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("PORT", "8080")
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("SHUTDOWN_TIMEOUT", 10*time.Second)
	v.SetDefault("HTTP_TIMEOUT", 30*time.Second)
	v.SetDefault("CORS_ORIGINS", "*")
	v.SetDefault("PUBLIC_BASE_URL", "")

	v.SetDefault("DATABASE_DSN", "./data/khabar.db")

	v.SetDefault("REDIS_URL", "")
	v.SetDefault("REDIS_PREFIX", "khabar:rss:")
	v.SetDefault("CACHE_TTL", 720*time.Hour) // 30 days
	v.SetDefault("MAX_CONCURRENCY", 5)

	v.SetDefault("R2_ENDPOINT", "")
	v.SetDefault("R2_ACCESS_KEY", "")
	v.SetDefault("R2_SECRET_ACCESS_KEY", "")
	v.SetDefault("R2_BUCKET", "khabar-media")
	v.SetDefault("CLOUDFLARE_ACCOUNT_ID", "")
	v.SetDefault("R2_PUBLIC_URL", "")

	v.SetDefault("AI_API_KEY", "")
	v.SetDefault("AI_MODEL", "gemini-pro")
	v.SetDefault("AI_TIMEOUT", 60*time.Second)

	v.SetDefault("STORAGE_PATH", "./data/uploads")
	v.SetDefault("MAX_IMAGE_SIZE", int64(10<<20))  // 10MB
	v.SetDefault("MAX_VIDEO_SIZE", int64(200<<20)) // 200MB

	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("LOG_PRETTY", false)

	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", 24*time.Hour)
	v.SetDefault("COOKIE_SECRET", "")
	v.SetDefault("ADMIN_EMAIL", "")
	v.SetDefault("ADMIN_PASSWORD", "")

	v.SetDefault("FEED_TIMEOUT", 20*time.Second)
	v.SetDefault("FEED_RETRIES", 2)
	v.SetDefault("FEED_RATE_PER_SECOND", 2.0)
	v.SetDefault("FEED_MAX_BODY_BYTES", 10<<20) // 10MB
	v.SetDefault("SCHEDULER_ENABLED", true)
	v.SetDefault("PUBLISH_CHECK_INTERVAL", time.Minute)
}

// Load reads configuration from .env, an optional config file and the
// environment (environment wins), then validates it.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:            v.GetString("PORT"),
		Env:             v.GetString("APP_ENV"),
		ShutdownTimeout: v.GetDuration("SHUTDOWN_TIMEOUT"),
		HTTPTimeout:     v.GetDuration("HTTP_TIMEOUT"),
		CORSOrigins:     v.GetString("CORS_ORIGINS"),
		PublicBaseURL:   strings.TrimRight(v.GetString("PUBLIC_BASE_URL"), "/"),

		DatabaseDSN: v.GetString("DATABASE_DSN"),

		RedisURL:       v.GetString("REDIS_URL"),
		RedisPrefix:    v.GetString("REDIS_PREFIX"),
		CacheTTL:       v.GetDuration("CACHE_TTL"),
		MaxConcurrency: v.GetInt("MAX_CONCURRENCY"),

		R2Endpoint:  v.GetString("R2_ENDPOINT"),
		R2AccessKey: v.GetString("R2_ACCESS_KEY"),
		R2SecretKey: v.GetString("R2_SECRET_ACCESS_KEY"),
		R2Bucket:    v.GetString("R2_BUCKET"),
		R2AccountID: v.GetString("CLOUDFLARE_ACCOUNT_ID"),
		R2PublicURL: strings.TrimRight(v.GetString("R2_PUBLIC_URL"), "/"),

		AIApiKey:  v.GetString("AI_API_KEY"),
		AIModel:   v.GetString("AI_MODEL"),
		AITimeout: v.GetDuration("AI_TIMEOUT"),

		StoragePath:  v.GetString("STORAGE_PATH"),
		MaxImageSize: v.GetInt64("MAX_IMAGE_SIZE"),
		MaxVideoSize: v.GetInt64("MAX_VIDEO_SIZE"),

		LogLevel:  v.GetString("LOG_LEVEL"),
		LogFile:   v.GetString("LOG_FILE"),
		LogPretty: v.GetBool("LOG_PRETTY"),

		JWTSecret:     v.GetString("JWT_SECRET"),
		TokenTTL:      v.GetDuration("TOKEN_TTL"),
		CookieSecret:  v.GetString("COOKIE_SECRET"),
		AdminEmail:    v.GetString("ADMIN_EMAIL"),
		AdminPassword: v.GetString("ADMIN_PASSWORD"),

		FeedTimeout:          v.GetDuration("FEED_TIMEOUT"),
		FeedRetries:          v.GetInt("FEED_RETRIES"),
		FeedRatePerSecond:    v.GetFloat64("FEED_RATE_PER_SECOND"),
		FeedMaxBodyBytes:     v.GetInt("FEED_MAX_BODY_BYTES"),
		SchedulerEnabled:     v.GetBool("SCHEDULER_ENABLED"),
		PublishCheckInterval: v.GetDuration("PUBLISH_CHECK_INTERVAL"),
	}

	if cfg.Env == "development" && cfg.JWTSecret == "" {
		cfg.JWTSecret = "development-only-secret"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// IsProduction reports whether the app runs with APP_ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// R2Enabled reports whether uploads go to object storage.
func (c *Config) R2Enabled() bool {
	return c.R2AccessKey != "" && c.R2SecretKey != "" && (c.R2Endpoint != "" || c.R2AccountID != "")
}

// Validate validates the configuration
func (c *Config) Validate() error {
	var errs []error
	if c.JWTSecret == "" {
		errs = append(errs, errors.New("JWT_SECRET is required"))
	} else if c.IsProduction() && len(c.JWTSecret) < 32 {
		errs = append(errs, errors.New("JWT_SECRET must be at least 32 characters in production"))
	}
	if c.TokenTTL <= 0 {
		errs = append(errs, errors.New("TOKEN_TTL must be positive"))
	}
	if c.FeedTimeout <= 0 {
		errs = append(errs, errors.New("FEED_TIMEOUT must be positive"))
	}
	if c.FeedRetries < 0 {
		errs = append(errs, errors.New("FEED_RETRIES must not be negative"))
	}
	if c.MaxConcurrency < 1 {
		errs = append(errs, errors.New("MAX_CONCURRENCY must be at least 1"))
	}
	if c.PublishCheckInterval < time.Second {
		errs = append(errs, errors.New("PUBLISH_CHECK_INTERVAL must be at least 1s"))
	}
	if c.DatabaseDSN == "" {
		errs = append(errs, errors.New("DATABASE_DSN is required"))
	}
	return errors.Join(errs...)
}
