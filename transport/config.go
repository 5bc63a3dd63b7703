package transport

import (
	"fmt"
	"time"

	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/resilience"
)

const defaultTimeout = 30 * time.Second

// HTTP/2 modes.
const (
	HTTP2Auto = ""
	HTTP2TLS  = "h2"
	HTTP2H2C  = "h2c"
)

// Config configures the net/http transport.
type Config struct {
	// Name identifies the transport in logs, metrics and breaker events.
	Name string `yaml:"name" mapstructure:"name"`

	// Timeout bounds a single attempt. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// HTTP2 selects "" (net/http negotiation), "h2" (explicit HTTP/2 over
	// TLS) or "h2c" (cleartext HTTP/2).
	HTTP2 string `yaml:"http2" mapstructure:"http2" validate:"omitempty,oneof=h2 h2c"`

	// CookieJar keeps cookies between requests, scoped by public suffix.
	CookieJar bool `yaml:"cookie_jar" mapstructure:"cookie_jar"`

	// MaxIdleConnsPerHost overrides the idle connection pool size.
	MaxIdleConnsPerHost int `yaml:"max_idle_conns_per_host" mapstructure:"max_idle_conns_per_host" validate:"gte=0"`

	// DisableRedirects returns 3xx responses instead of following them.
	DisableRedirects bool `yaml:"disable_redirects" mapstructure:"disable_redirects"`

	// Auth configures credentials applied to every request.
	Auth *AuthConfig `yaml:"auth" mapstructure:"auth"`

	// TLS configures TLS settings for the transport.
	TLS *TLSConfig `yaml:"tls" mapstructure:"tls"`

	// Retry configures retry behavior. Nil disables retry.
	Retry *resilience.RetryConfig `yaml:"retry" mapstructure:"retry"`

	// CircuitBreaker configures circuit breaker behavior. Nil disables it.
	CircuitBreaker *resilience.CircuitBreakerConfig `yaml:"circuit_breaker" mapstructure:"circuit_breaker"`

	// RateLimiter configures rate limiting. Nil disables it.
	RateLimiter *resilience.RateLimiterConfig `yaml:"rate_limiter" mapstructure:"rate_limiter"`
}

// ApplyDefaults fills in zero-value fields.
func (c *Config) ApplyDefaults() {
	if c.Timeout == 0 {
		c.Timeout = defaultTimeout
	}
	if c.Name == "" {
		c.Name = "http"
	}
	if c.Retry != nil && c.Retry.RetryIf == nil {
		c.Retry.RetryIf = IsRetryable
	}
	if c.CircuitBreaker != nil && c.CircuitBreaker.Name == "" {
		c.CircuitBreaker.Name = c.Name
	}
	if c.RateLimiter != nil && c.RateLimiter.Name == "" {
		c.RateLimiter.Name = c.Name
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Timeout < 0 {
		return fmt.Errorf("transport: timeout must not be negative")
	}
	switch c.HTTP2 {
	case HTTP2Auto, HTTP2TLS, HTTP2H2C:
	default:
		return fmt.Errorf("transport: unknown http2 mode %q", c.HTTP2)
	}
	if err := c.TLS.Validate(); err != nil {
		return err
	}
	return c.Auth.Validate()
}

// DefaultRetryConfig returns a retry config that retries transport
// failures and 429/5xx responses.
func DefaultRetryConfig() *resilience.RetryConfig {
	cfg := resilience.DefaultRetryConfig()
	cfg.RetryIf = IsRetryable
	return &cfg
}

// DefaultCircuitBreakerConfig returns a default circuit breaker config.
func DefaultCircuitBreakerConfig(name string) *resilience.CircuitBreakerConfig {
	cfg := resilience.DefaultCircuitBreakerConfig(name)
	return &cfg
}

// DefaultRateLimiterConfig returns a default rate limiter config.
func DefaultRateLimiterConfig(name string) *resilience.RateLimiterConfig {
	cfg := resilience.DefaultRateLimiterConfig(name)
	return &cfg
}

// IsRetryable reports whether an attempt that ended with err is worth
// repeating: retryable client errors and 429/5xx responses.
func IsRetryable(err error) bool {
	var se *statusError
	if asStatusError(err, &se) {
		return true
	}
	return errors.IsRetryable(err)
}
