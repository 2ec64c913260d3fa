package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override (MAINTAIN_GEMINI_API_KEY).
const EnvPrefix = "MAINTAIN"

// legacyEnv maps config keys to the unprefixed variable names deployments
// already export.
var legacyEnv = map[string]string{
	"gemini.api_key":  "GOOGLE_GEMINI_API_KEY",
	"telegram.token":  "TELEGRAM_BOT_TOKEN",
	"youtube.api_key": "YOUTUBE_API_KEY",
	"database.dsn":    "DATABASE_URL",
	"cache.redis_url": "REDIS_URL",
}

// LoadConfig reads configuration from:
//  1. built-in defaults
//  2. the YAML file at path (optional)
//  3. a .env file in the working directory (optional)
//  4. MAINTAIN_* and legacy environment variables
//
// The result is validated before it is returned.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("Failed to load .env file", "error", err)
	}

	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		envKey := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, envKey, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind env for %s: %w", key, err)
		}
	}

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
			}
			slog.Debug("Loaded configuration file", "path", path)
		} else if !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to stat config file %s: %w", path, err)
		} else {
			slog.Debug("Configuration file not found, using defaults and environment", "path", path)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode configuration: %w", err)
	}

	if err := validateConfig(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
