package service

import (
	"time"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/adapters/repository"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithLogger sets a custom logger for the service.
func WithLogger(l logger.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithSources sets the dataset files loaded on Start and Reload.
func WithSources(src dataset.Sources) Option {
	return func(s *Service) {
		s.sources = src
	}
}

// WithValuePolicy sets how unparseable metric values are averaged.
func WithValuePolicy(p series.ValuePolicy) Option {
	return func(s *Service) {
		s.policy = p
	}
}

// WithLocation sets the location record dates are interpreted in.
func WithLocation(loc *time.Location) Option {
	return func(s *Service) {
		if loc != nil {
			s.loc = loc
		}
	}
}

// WithCacheSize bounds the chart cache. Zero or less means unbounded.
func WithCacheSize(size int) Option {
	return func(s *Service) {
		s.cacheSize = size
	}
}

// WithReloadInterval reloads the dataset files periodically. Zero disables it.
func WithReloadInterval(d time.Duration) Option {
	return func(s *Service) {
		if d >= 0 {
			s.reloadInterval = d
		}
	}
}

// WithStore replaces the default in-memory store.
func WithStore(st repository.Store) Option {
	return func(s *Service) {
		if st != nil {
			s.store = st
		}
	}
}

// WithWarmup precomputes every chart after each reload using workers
// goroutines fed by a queue of queueSize jobs. Zero workers disables it.
func WithWarmup(workers, queueSize int) Option {
	return func(s *Service) {
		s.warmWorkers = workers
		s.warmQueueSize = queueSize
	}
}
