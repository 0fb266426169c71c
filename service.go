package docseal

import "github.com/sirupsen/logrus"

// Service signs, verifies, encrypts and decrypts documents with the keys of
// one KeyRegistry. It holds no mutable state and is safe for concurrent
// use.
type Service struct {
	registry *KeyRegistry
	logger   *logrus.Entry
}

// New creates a Service over registry. A nil registry behaves like an
// empty one: signing passes documents through and decryption fails with
// ErrNoHolderKey.
func New(registry *KeyRegistry, opts ...Option) *Service {
	if registry == nil {
		// An empty Config always validates.
		registry, _ = NewKeyRegistry(Config{})
	}

	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = SetupLogger(registry.logLevel, "envelope")
	}

	return &Service{registry: registry, logger: cfg.logger}
}

// Registry returns the registry the service was built with.
func (s *Service) Registry() *KeyRegistry {
	return s.registry
}
