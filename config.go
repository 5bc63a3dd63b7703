package restclient

import (
	"fmt"
	"sort"

	"github.com/kbukum/restclient/config"
	"github.com/kbukum/restclient/errors"
	"github.com/kbukum/restclient/logger"
	"github.com/kbukum/restclient/observability"
	"github.com/kbukum/restclient/transport"
)

// Config describes one client.
//
//	clients:
//	  todos:
//	    base_url: https://jsonplaceholder.typicode.com
//	    accept: [application/json]
//	    tracing: true
//	    transport:
//	      timeout: 5s
//	      retry:
//	        max_attempts: 3
type Config struct {
	// Name identifies the client in logs and telemetry. Defaults to the key
	// in ClientsConfig.Clients.
	Name                string              `yaml:"name" mapstructure:"name"`
	BaseURL             string              `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	DefaultHeaders      map[string][]string `yaml:"default_headers" mapstructure:"default_headers"`
	DefaultURIVariables map[string]any      `yaml:"default_uri_variables" mapstructure:"default_uri_variables"`
	DefaultContext      map[string]any      `yaml:"default_context" mapstructure:"default_context"`
	Accept              []string            `yaml:"accept" mapstructure:"accept"`

	// Logging logs every request through the client logger.
	Logging bool `yaml:"logging" mapstructure:"logging"`
	// Tracing wraps requests in OpenTelemetry client spans.
	Tracing bool `yaml:"tracing" mapstructure:"tracing"`
	// Metrics records OpenTelemetry request metrics.
	Metrics bool `yaml:"metrics" mapstructure:"metrics"`
	// RequestIDHeader, when set, stamps every request with a request id.
	RequestIDHeader string `yaml:"request_id_header" mapstructure:"request_id_header"`

	Transport transport.Config `yaml:"transport" mapstructure:"transport"`
}

// ApplyDefaults fills unset fields.
func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = "restclient"
	}
	if c.Transport.Name == "" {
		c.Transport.Name = c.Name
	}
	c.Transport.ApplyDefaults()
}

// Validate checks the client configuration.
func (c *Config) Validate() error {
	if err := config.Validate(c); err != nil {
		return err
	}
	return c.Transport.Validate()
}

// ClientsConfig is the application configuration for a set of named clients.
type ClientsConfig struct {
	config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
	Clients              map[string]Config `yaml:"clients" mapstructure:"clients"`
}

// ApplyDefaults fills unset fields of the service and of every client.
func (c *ClientsConfig) ApplyDefaults() {
	c.ServiceConfig.ApplyDefaults()
	for name, cc := range c.Clients {
		if cc.Name == "" {
			cc.Name = name
		}
		cc.ApplyDefaults()
		c.Clients[name] = cc
	}
}

// Validate checks the service and every client.
func (c *ClientsConfig) Validate() error {
	if err := c.ServiceConfig.Validate(); err != nil {
		return err
	}
	for _, name := range c.Names() {
		cc := c.Clients[name]
		if err := cc.Validate(); err != nil {
			return fmt.Errorf("clients.%s: %w", name, err)
		}
	}
	return nil
}

// Names returns the configured client names in sorted order.
func (c *ClientsConfig) Names() []string {
	names := make([]string, 0, len(c.Clients))
	for name := range c.Clients {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// LoadClientsConfig loads, defaults and validates the configuration of
// appName.
func LoadClientsConfig(appName string, opts ...config.LoaderOption) (*ClientsConfig, error) {
	var cfg ClientsConfig
	if err := config.LoadConfig(appName, &cfg, opts...); err != nil {
		return nil, err
	}
	if cfg.Name == "" {
		cfg.Name = appName
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// NewFromConfig builds a client backed by a net/http transport configured
// from cfg. opts are applied after the configuration.
func NewFromConfig(cfg Config, opts ...Option) (*Client, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		if _, ok := errors.AsAppError(err); ok {
			return nil, err
		}
		return nil, errors.Configuration(err.Error()).WithCause(err)
	}

	log := logger.Get(cfg.Name)
	httpTransport, err := transport.NewHTTP(cfg.Transport, transport.WithTransportLogger(log))
	if err != nil {
		return nil, err
	}

	middleware, err := configMiddleware(cfg, log)
	if err != nil {
		return nil, err
	}

	b := NewBuilder().
		Name(cfg.Name).
		BaseURL(cfg.BaseURL).
		DefaultHeaders(cfg.DefaultHeaders).
		DefaultURIVariables(cfg.DefaultURIVariables).
		DefaultContext(cfg.DefaultContext).
		Transport(httpTransport).
		Use(middleware...).
		Logger(log)
	if len(cfg.Accept) > 0 {
		b.DefaultAccept(cfg.Accept...)
	}
	for _, opt := range opts {
		opt(b)
	}
	return b.Build(), nil
}

// configMiddleware returns the middleware enabled by cfg, outermost first.
func configMiddleware(cfg Config, log *logger.Logger) ([]transport.Middleware, error) {
	var mw []transport.Middleware
	if cfg.RequestIDHeader != "" {
		mw = append(mw, transport.WithRequestID(cfg.RequestIDHeader))
	}
	if cfg.Tracing {
		mw = append(mw, transport.WithTracing(cfg.Name))
	}
	if cfg.Metrics {
		metrics, err := observability.NewClientMetrics(observability.Meter(observability.InstrumentationName))
		if err != nil {
			return nil, errors.Configuration(err.Error()).WithCause(err)
		}
		mw = append(mw, transport.WithMetrics(cfg.Name, metrics))
	}
	if cfg.Logging {
		mw = append(mw, transport.WithLogging(log))
	}
	return mw, nil
}
