package worker

import (
	"github.com/okian/perfdash/pkg/logger"
)

type options struct {
	name   string
	logger logger.Logger
}

// Option configures a worker or pool.
type Option func(*options)

// WithName sets the worker name for identification and logging.
func WithName(name string) Option {
	return func(o *options) {
		if name != "" {
			o.name = name
		}
	}
}

// WithLogger sets a custom logger.
func WithLogger(l logger.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}
