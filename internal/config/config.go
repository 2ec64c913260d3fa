// Package config provides configuration loading, validation, and management
// for Maintain. It reads defaults, an optional YAML file, a .env file and
// MAINTAIN_* environment variables.
package config

import "time"

// Config defines the application configuration for all components:
// logging, HTTP server, database, AI integration, YouTube, Telegram,
// caching, scheduling and bot texts.
type Config struct {
	Logger    LoggerConfig    `mapstructure:"logger"`
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	YouTube   YouTubeConfig   `mapstructure:"youtube"`
	Telegram  TelegramConfig  `mapstructure:"telegram"`
	Cache     CacheConfig     `mapstructure:"cache"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Messages  MessagesConfig  `mapstructure:"messages"`
}

// LoggerConfig controls slog output.
type LoggerConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
	JSON  bool   `mapstructure:"json"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr               string        `mapstructure:"addr"                 validate:"required"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins"`
	Production         bool          `mapstructure:"production"`
	CookieSecure       bool          `mapstructure:"cookie_secure"`
	RecommendRateLimit int           `mapstructure:"recommend_rate_limit" validate:"min=0"`
	ReadTimeout        time.Duration `mapstructure:"read_timeout"         validate:"min=1s"`
	WriteTimeout       time.Duration `mapstructure:"write_timeout"        validate:"min=1s"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout"     validate:"min=1s"`
}

// DatabaseConfig selects the SQL dialect and pool settings.
type DatabaseConfig struct {
	Driver          string        `mapstructure:"driver"            validate:"oneof=postgres sqlite"`
	DSN             string        `mapstructure:"dsn"               validate:"required"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"    validate:"min=1"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"    validate:"min=0"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// GeminiConfig holds settings for the recommendation model.
type GeminiConfig struct {
	APIKey            string        `mapstructure:"api_key"`
	ModelName         string        `mapstructure:"model_name"          validate:"required"`
	Temperature       float32       `mapstructure:"temperature"         validate:"min=0,max=2"`
	TopP              float32       `mapstructure:"top_p"               validate:"min=0,max=1"`
	TopK              float32       `mapstructure:"top_k"               validate:"min=0"`
	MaxOutputTokens   int32         `mapstructure:"max_output_tokens"   validate:"min=1"`
	MaxRetries        int           `mapstructure:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int           `mapstructure:"retry_delay_seconds" validate:"min=0"`
	Timeout           time.Duration `mapstructure:"timeout"             validate:"min=1s"`
}

// YouTubeConfig configures the trending proxy.
type YouTubeConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"    validate:"required,url"`
	RegionCode string        `mapstructure:"region_code" validate:"len=2"`
	Timeout    time.Duration `mapstructure:"timeout"     validate:"min=1s"`
}

// TelegramConfig configures the bot transport.
type TelegramConfig struct {
	Token        string `mapstructure:"token"`
	DefaultCount int    `mapstructure:"default_count" validate:"min=1,max=20"`
	MaxCount     int    `mapstructure:"max_count"     validate:"min=1,max=20,gtefield=DefaultCount"`
}

// CacheConfig selects the temporary-data cache backend.
type CacheConfig struct {
	RedisURL string        `mapstructure:"redis_url"`
	TTL      time.Duration `mapstructure:"ttl" validate:"min=1m"`
	LinkTTL  time.Duration `mapstructure:"link_ttl" validate:"min=1m"`
}

// SchedulerConfig holds the configuration for scheduled tasks.
type SchedulerConfig struct {
	Tasks map[string]TaskConfig `mapstructure:"tasks" validate:"dive"`
}

// TaskConfig is a single cron-scheduled task.
type TaskConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Schedule string `mapstructure:"schedule" validate:"required_if=Enabled true"`
}

// MessagesConfig holds user-facing bot texts.
type MessagesConfig struct {
	Welcome        string `mapstructure:"welcome"         validate:"required"`
	Help           string `mapstructure:"help"            validate:"required"`
	MoodSet        string `mapstructure:"mood_set"        validate:"required"`
	InvalidMood    string `mapstructure:"invalid_mood"    validate:"required"`
	Processing     string `mapstructure:"processing"      validate:"required"`
	NoResults      string `mapstructure:"no_results"      validate:"required"`
	Error          string `mapstructure:"error"           validate:"required"`
	ProfileStart   string `mapstructure:"profile_start"   validate:"required"`
	ProfileSaved   string `mapstructure:"profile_saved"   validate:"required"`
	ProfileReset   string `mapstructure:"profile_reset"   validate:"required"`
	ProfileSkipped string `mapstructure:"profile_skipped" validate:"required"`
	ProfileInvalid string `mapstructure:"profile_invalid" validate:"required"`
	FallbackNotice string `mapstructure:"fallback_notice" validate:"required"`
	LinkSuccess    string `mapstructure:"link_success"    validate:"required"`
	LinkInvalid    string `mapstructure:"link_invalid"    validate:"required"`
}
