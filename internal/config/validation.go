package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
)

// ErrTelegramTokenMissing is returned by RequireTelegram when no bot token is set.
var ErrTelegramTokenMissing = errors.New("telegram bot token is required (MAINTAIN_TELEGRAM_TOKEN or TELEGRAM_BOT_TOKEN)")

func validateConfig(cfg *Config) error {
	validate := validator.New(validator.WithRequiredStructEnabled())
	if err := validate.Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed on '%s'", fe.Namespace(), fe.Tag()))
			}
			return fmt.Errorf("invalid configuration: %s", strings.Join(msgs, "; "))
		}
		return fmt.Errorf("invalid configuration: %w", err)
	}
	if !strings.Contains(cfg.Messages.MoodSet, "%s") {
		return errors.New("invalid configuration: messages.mood_set must contain a %s placeholder")
	}
	return nil
}

// RequireTelegram reports whether the bot can be started with this configuration.
func (c *Config) RequireTelegram() error {
	if strings.TrimSpace(c.Telegram.Token) == "" {
		return ErrTelegramTokenMissing
	}
	return nil
}
