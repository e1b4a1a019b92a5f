package config

import (
	"fmt"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from the environment at startup.
type Config struct {
	Port     string `env:"GREENCOP_PORT" env-default:"8080"`
	DBPath   string `env:"GREENCOP_DB_PATH" env-default:"greencop.db"`
	LogLevel string `env:"GREENCOP_LOG_LEVEL" env-default:"info"`

	// Game rules: points granted per reporting and per collection event.
	ReportPoints  int `env:"GREENCOP_REPORT_POINTS" env-default:"10"`
	CollectPoints int `env:"GREENCOP_COLLECT_POINTS" env-default:"15"`
}

func Load() (Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read env: %w", err)
	}
	if cfg.ReportPoints <= 0 {
		return Config{}, fmt.Errorf("GREENCOP_REPORT_POINTS must be positive, got %d", cfg.ReportPoints)
	}
	if cfg.CollectPoints <= 0 {
		return Config{}, fmt.Errorf("GREENCOP_COLLECT_POINTS must be positive, got %d", cfg.CollectPoints)
	}
	return cfg, nil
}
