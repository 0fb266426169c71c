package docseal

import "github.com/sirupsen/logrus"

// serviceConfig holds configuration for a Service.
type serviceConfig struct {
	logger *logrus.Entry
}

// Option configures a Service.
type Option func(*serviceConfig)

// WithLogger sets the logger entry used for diagnostics. Without it the
// Service logs at the level of the registry's Config.LogLevel.
func WithLogger(logger *logrus.Entry) Option {
	return func(c *serviceConfig) {
		c.logger = logger
	}
}
