package config

import (
	"github.com/caarlos0/env/v9"

	apperrors "github.com/ksyq12/sgrenew/internal/errors"
)

// Env holds the process-level settings read from the environment.
// Command-line flags override these values.
type Env struct {
	ConfigPath  string `env:"SGRENEW_CONFIG" envDefault:"config.ini"`
	LockFile    string `env:"SGRENEW_LOCK_FILE" envDefault:"/var/lock/sgrenew.lock"`
	MetricsFile string `env:"SGRENEW_METRICS_FILE"`
}

// LoadEnv parses Env from the environment.
func LoadEnv() (Env, error) {
	var e Env
	if err := env.Parse(&e); err != nil {
		return Env{}, apperrors.Wrap(apperrors.ErrCodeConfig, "failed to parse environment", err)
	}
	return e, nil
}
