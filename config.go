package x402

import (
	"errors"
	"log/slog"
	"time"

	"github.com/PlaiPin/x402-payer/retry"
)

// ErrNilLogger is returned by WithLogger when passed a nil logger.
var ErrNilLogger = errors.New("x402: logger must not be nil")

// Config holds the Driver's ambient settings: timeouts, retry policy, and logging.
type Config struct {
	FacilitatorURL string
	UnpaidTimeout  time.Duration
	PaidTimeout    time.Duration
	RPCTimeout     time.Duration
	RetryConfig    retry.Config
	Logger         *slog.Logger
}

// Option configures a Driver at construction time.
type Option func(*Config) error

func defaultConfig() Config {
	return Config{
		UnpaidTimeout: 10 * time.Second,
		PaidTimeout:   10 * time.Second,
		RPCTimeout:    10 * time.Second,
		RetryConfig:   retry.DefaultConfig,
		Logger:        slog.Default(),
	}
}

// WithFacilitatorURL sets the facilitator base URL used for the /supported probe.
func WithFacilitatorURL(url string) Option {
	return func(c *Config) error {
		c.FacilitatorURL = url
		return nil
	}
}

// WithTimeouts overrides the three independent exchange timeouts.
func WithTimeouts(unpaid, paid, rpc time.Duration) Option {
	return func(c *Config) error {
		c.UnpaidTimeout = unpaid
		c.PaidTimeout = paid
		c.RPCTimeout = rpc
		return nil
	}
}

// WithRetryConfig overrides the retry policy applied to C7/C8 RPC calls.
func WithRetryConfig(rc retry.Config) Option {
	return func(c *Config) error {
		c.RetryConfig = rc
		return nil
	}
}

// WithLogger sets the structured logger used for state-transition and error logs.
// A nil logger is rejected at construction rather than silently falling back,
// so a caller cannot accidentally suppress logging by passing a typed nil.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Config) error {
		if logger == nil {
			return ErrNilLogger
		}
		c.Logger = logger
		return nil
	}
}
