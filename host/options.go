package host

import (
	"log/slog"

	"github.com/tetratelabs/wazero"
)

// Option defines a functional option for configuring the LocalManager.
type Option func(*managerConfig)

type managerConfig struct {
	logger *slog.Logger
	cache  wazero.CompilationCache
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *managerConfig) {
		c.logger = l
	}
}

// WithCompilationCache configures the manager with a compilation cache.
func WithCompilationCache(cache wazero.CompilationCache) Option {
	return func(c *managerConfig) {
		c.cache = cache
	}
}
