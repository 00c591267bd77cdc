package config

import (
	"fmt"

	"github.com/kbukum/cradle/connection"
	"github.com/kbukum/cradle/httpclient"
	"github.com/kbukum/cradle/logger"
	"github.com/kbukum/cradle/observability"
	"github.com/kbukum/cradle/util"
	"github.com/kbukum/cradle/validation"
)

// Config is the complete client configuration.
type Config struct {
	Name        string               `yaml:"name" mapstructure:"name" validate:"required"`
	Environment string               `yaml:"environment" mapstructure:"environment" validate:"oneof=development staging production"`
	Logging     logger.Config        `yaml:"logging" mapstructure:"logging"`
	Connection  connection.Options   `yaml:"connection" mapstructure:"connection"`
	Client      httpclient.Config    `yaml:"client" mapstructure:"client"`
	Telemetry   observability.Config `yaml:"telemetry" mapstructure:"telemetry"`
}

// ApplyDefaults applies default values to every section.
// An empty connection host falls back to connection.Localhost().
func (c *Config) ApplyDefaults() {
	c.Environment = util.Coalesce(c.Environment, "development")
	c.Logging.ApplyDefaults()
	c.Client.ApplyDefaults()
	c.Telemetry.ApplyDefaults()

	if c.Connection.Host == "" {
		local := connection.Localhost()
		c.Connection.Host = local.Host
		if c.Connection.Port == 0 {
			c.Connection.Port = local.Port
		}
	}
}

// Validate validates every section. Struct tags of nested sections,
// including the client section, are checked by validation.Validate.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	return nil
}

// Load resolves, reads and validates the configuration for serviceName.
// Name defaults to serviceName when the sources leave it empty.
func Load(serviceName string, opts ...LoaderOption) (*Config, error) {
	var cfg Config
	if err := LoadConfig(serviceName, &cfg, opts...); err != nil {
		return nil, err
	}
	cfg.Name = util.Coalesce(cfg.Name, serviceName)
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
