package httpclient

import (
	"fmt"
	"time"

	"github.com/kbukum/cradle/util"
	"github.com/kbukum/cradle/validation"
	"github.com/kbukum/cradle/version"
)

const (
	defaultTimeout = 30 * time.Second
)

// PathMode selects how request paths are sanitized.
type PathMode string

const (
	// PathModeLegacy removes embedded schemes and deletes every run of two or
	// more slashes. A path such as "a//b" becomes "ab".
	PathModeLegacy PathMode = "legacy"
	// PathModeClean removes embedded schemes and collapses slash runs into one.
	PathModeClean PathMode = "clean"
)

// Config configures the request executor.
type Config struct {
	// Timeout bounds a whole round trip, including reading the body. Defaults to 30s.
	Timeout time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`

	// UserAgent is the client identifier sent with every request.
	// Defaults to version.UserAgent().
	UserAgent string `yaml:"user_agent" mapstructure:"user_agent"`

	// PathMode selects path sanitization. Defaults to PathModeLegacy.
	PathMode PathMode `yaml:"path_mode" mapstructure:"path_mode" validate:"omitempty,oneof=legacy clean"`

	// Headers are default headers applied to all requests. User-Agent,
	// Authorization and Content-Type are owned by the request and any
	// configured value for them is dropped.
	Headers map[string]string `yaml:"headers" mapstructure:"headers"`

	// FollowRedirects controls whether 3xx responses are followed. Defaults to true.
	FollowRedirects *bool `yaml:"follow_redirects" mapstructure:"follow_redirects"`
}

// ApplyDefaults fills in zero-value fields with sensible defaults.
func (c *Config) ApplyDefaults() {
	if c.Timeout <= 0 {
		c.Timeout = defaultTimeout
	}
	c.UserAgent = util.Coalesce(c.UserAgent, version.UserAgent())
	c.PathMode = util.Coalesce(c.PathMode, PathModeLegacy)
	if c.FollowRedirects == nil {
		c.FollowRedirects = util.Ptr(true)
	}
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if err := validation.Validate(c); err != nil {
		return fmt.Errorf("httpclient: %w", err)
	}
	return nil
}
