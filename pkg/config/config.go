package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
)

const (
	DefaultPath    = "app_config.json"
	DefaultTimeout = 5000 * time.Millisecond

	keyOnStartTimeout = "on_start_timeout"
	keyOnStopTimeout  = "on_stop_timeout"
)

// CoreConfig holds the orchestrator timeouts. Each timeout applies to every
// service in its phase independently.
type CoreConfig struct {
	// OnStartTimeout bounds each service's start hook.
	OnStartTimeout time.Duration `mapstructure:"on_start_timeout" validate:"gte=0s"`
	// OnStopTimeout bounds each service's stop hook.
	OnStopTimeout time.Duration `mapstructure:"on_stop_timeout" validate:"gte=0s"`
}

// Default returns the 5000 ms / 5000 ms policy.
func Default() CoreConfig {
	return CoreConfig{
		OnStartTimeout: DefaultTimeout,
		OnStopTimeout:  DefaultTimeout,
	}
}

var validate = validator.New()

// Validate checks the struct tags on cfg.
func Validate(cfg *CoreConfig) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("invalid core config: %w", err)
	}
	return nil
}
