package config

import (
	"fmt"
	"slices"

	"github.com/kbukum/restclient/logger"
)

// Environments accepted by ServiceConfig.Validate.
var Environments = []string{"development", "staging", "production"}

// ServiceConfig holds the fields shared by every application that loads
// restclient configuration. Embed it in the application config:
//
//	type AppConfig struct {
//	    config.ServiceConfig `yaml:",inline" mapstructure:",squash"`
//	    Clients map[string]restclient.Config `yaml:"clients" mapstructure:"clients"`
//	}
type ServiceConfig struct {
	Name        string        `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string        `yaml:"environment" mapstructure:"environment"`
	Version     string        `yaml:"version" mapstructure:"version"`
	Debug       bool          `yaml:"debug" mapstructure:"debug"`
	Logging     logger.Config `yaml:"logging" mapstructure:"logging"`
}

// ApplyDefaults fills unset fields. Development turns on debug logging.
func (c *ServiceConfig) ApplyDefaults() {
	if c.Environment == "" {
		c.Environment = "development"
	}
	if c.Environment == "development" {
		c.Debug = true
		if c.Logging.Level == "" {
			c.Logging.Level = "debug"
		}
	}
	c.Logging.ApplyDefaults()
}

// Validate checks the shared fields.
func (c *ServiceConfig) Validate() error {
	if err := Validate(c); err != nil {
		return err
	}
	if !slices.Contains(Environments, c.Environment) {
		return fmt.Errorf("environment must be one of %v (got: %s)", Environments, c.Environment)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging: %w", err)
	}
	return nil
}

// NewLogger builds a logger from the logging section, tagged with the
// service name.
func (c *ServiceConfig) NewLogger() *logger.Logger {
	cfg := c.Logging
	cfg.ApplyDefaults()
	return logger.New(&cfg, c.Name)
}
