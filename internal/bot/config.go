package bot

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/example/hostelhunt/internal/hunt"
)

// Config represents the configuration for the bot
type Config struct {
	TelegramToken string  `env:"TELEGRAM_TOKEN,required,notEmpty"`
	AuthToken     string  `env:"HUNT_AUTH_TOKEN,required,notEmpty"`
	MasterID      int64   `env:"MASTER_ID" envDefault:"0"`
	AdminIDs      []int64 `env:"ADMIN_LIST" envSeparator:","`

	// Inclusive range of accepted student IDs
	StudentIDMin int `env:"STUDENT_ID_MIN" envDefault:"1000000"`
	StudentIDMax int `env:"STUDENT_ID_MAX" envDefault:"1006000"`

	HintInterval         time.Duration `env:"HINT_INTERVAL" envDefault:"1h"`
	TokenRefreshInterval time.Duration `env:"TOKEN_REFRESH_INTERVAL" envDefault:"5m"`

	BroadcastEnabled bool          `env:"BROADCAST_ENABLED" envDefault:"false"`
	BroadcastDelay   time.Duration `env:"BROADCAST_DELAY" envDefault:"50ms"`

	// Long polling is used when WebhookURL is empty
	WebhookURL string `env:"WEBHOOK_URL"`
	Port       int    `env:"PORT" envDefault:"5000"`

	LogLevel slog.Level `env:"LOG_LEVEL" envDefault:"info"`
}

// LoadConfig reads the bot configuration from the environment
func LoadConfig() (Config, error) {
	cfg, err := env.ParseAs[Config]()
	if err != nil {
		return Config{}, fmt.Errorf("failed to parse bot config: %w", err)
	}
	if cfg.StudentIDMin > cfg.StudentIDMax {
		return Config{}, fmt.Errorf("STUDENT_ID_MIN %d is greater than STUDENT_ID_MAX %d", cfg.StudentIDMin, cfg.StudentIDMax)
	}
	return cfg, nil
}

// Hunt returns the game rules part of the configuration
func (c Config) Hunt() hunt.Config {
	return hunt.Config{
		AuthToken:    c.AuthToken,
		StudentIDMin: c.StudentIDMin,
		StudentIDMax: c.StudentIDMax,
		HintInterval: c.HintInterval,
		AdminIDs:     c.AdminIDs,
		MasterID:     c.MasterID,
	}
}
