package ymodem

import (
	"errors"
	"fmt"
	"time"

	"github.com/Sab1e-dev/ElenaWatchDevTools/logger"
)

// DefaultResponseTimeout is the default wait for each expected control byte.
const DefaultResponseTimeout = 10 * time.Second

// Response timeout range limits.
const (
	MinResponseTimeout = 100 * time.Millisecond
	MaxResponseTimeout = 120 * time.Second
)

// Config holds the tunable parameters of a Sender.
type Config struct {
	// responseTimeout bounds every control-byte wait in the session.
	responseTimeout time.Duration

	logger logger.Logger
}

// NewConfig creates a Sender configuration with the given functional
// options applied in order.
func NewConfig(opts ...Option) (*Config, error) {
	cfg := &Config{
		responseTimeout: DefaultResponseTimeout,
		logger:          logger.GetLogger(),
	}

	for _, opt := range opts {
		if err := opt.apply(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// ResponseTimeout returns the per-wait control-byte timeout.
func (cfg *Config) ResponseTimeout() time.Duration { return cfg.responseTimeout }

// GetLogger returns the configured logger.
func (cfg *Config) GetLogger() logger.Logger { return cfg.logger }

// Option is a functional option for configuring a Sender.
type Option interface {
	apply(*Config) error
}

type optFunc func(*Config) error

func (f optFunc) apply(cfg *Config) error { return f(cfg) }

// WithResponseTimeout sets the timeout applied to every control-byte wait.
// Must be in [MinResponseTimeout, MaxResponseTimeout].
func WithResponseTimeout(d time.Duration) Option {
	return optFunc(func(cfg *Config) error {
		if d < MinResponseTimeout || d > MaxResponseTimeout {
			return fmt.Errorf("ymodem: response timeout %v out of range [%v, %v]",
				d, MinResponseTimeout, MaxResponseTimeout)
		}
		cfg.responseTimeout = d

		return nil
	})
}

// WithLogger sets the logger for the Sender.
func WithLogger(l logger.Logger) Option {
	return optFunc(func(cfg *Config) error {
		if l == nil {
			return errors.New("ymodem: logger must not be nil")
		}
		cfg.logger = l

		return nil
	})
}
