package cache

// Option applies a configuration option to an LRU.
type Option func(*config)

type config struct {
	maxSize int
}

// WithMaxSize sets the maximum number of entries.
// If maxSize > 0: bounded mode with least-recently-used eviction.
// If maxSize <= 0: unbounded mode.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
