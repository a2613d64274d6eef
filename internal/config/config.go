package config

import (
	"fmt"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

// Config holds application configuration loaded from environment variables.
// A local .env file, if present, is loaded first.
type Config struct {
	BotToken    string        `envconfig:"BOT_TOKEN" required:"true"`
	DBPath      string        `envconfig:"DB_PATH" default:"./data/hippo.db"`
	DefaultTZ   string        `envconfig:"DEFAULT_TZ" default:"Asia/Singapore"`
	LogLevel    string        `envconfig:"LOG_LEVEL" default:"info"` // debug|info|warn|error
	HTTPAddr    string        `envconfig:"HTTP_ADDR" default:":8080"`
	CheckPeriod time.Duration `envconfig:"CHECK_PERIOD" default:"60s"`
}

// Load reads environment variables into Config.
func Load() (Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return cfg, err
	}
	if cfg.CheckPeriod < time.Second {
		return cfg, fmt.Errorf("CHECK_PERIOD too small: %s", cfg.CheckPeriod)
	}
	if _, err := time.LoadLocation(cfg.DefaultTZ); err != nil {
		return cfg, fmt.Errorf("DEFAULT_TZ: %w", err)
	}
	return cfg, nil
}
