// Package service provides the core business service behind the HTTP API
// and the report CLI.
package service

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/okian/perfdash/internal/adapters/cache"
	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/adapters/mq/queue"
	"github.com/okian/perfdash/internal/adapters/mq/worker"
	"github.com/okian/perfdash/internal/adapters/repository"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/internal/domain/types"
	"github.com/okian/perfdash/pkg/logger"
	"github.com/okian/perfdash/pkg/metrics"
)

const defaultCacheSize = 256

// Service loads datasets and serves consolidated charts.
type Service struct {
	mu sync.RWMutex

	// Core components
	store  repository.Store
	loader *dataset.Loader
	charts cache.Cache[types.Chart]

	// Cache warm-up
	warmQueue  atomic.Pointer[queue.InMemoryQueue[ChartRequest]]
	warmPool   *worker.Pool[ChartRequest]
	warmCancel context.CancelFunc

	// Configuration
	sources        dataset.Sources
	policy         series.ValuePolicy
	loc            *time.Location
	cacheSize      int
	reloadInterval time.Duration
	warmWorkers    int
	warmQueueSize  int

	// State
	started   bool
	startedAt time.Time
	stopCh    chan struct{}
	loopDone  chan struct{}
	reloadMu  sync.Mutex
	reloads   atomic.Int64
	failures  atomic.Int64

	logger logger.Logger
}

// New constructs a Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		policy:    series.ValueAsZero,
		loc:       time.UTC,
		cacheSize: defaultCacheSize,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Start loads the datasets and, when configured, starts the reload loop.
// A failed initial load aborts Start.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}
	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting perfdash service...")

	if s.store == nil {
		s.store = repository.NewMemoryStore(repository.WithLogger(s.logger.Named("repository")))
	}
	s.loader = dataset.NewLoader(dataset.WithLogger(s.logger.Named("dataset")))
	s.charts = cache.NewLRU[types.Chart](cache.WithMaxSize(s.cacheSize))
	s.startWarmup()

	if err := s.reload(ctx); err != nil {
		s.detachWarmup()(ctx)
		return fmt.Errorf("initial dataset load: %w", err)
	}

	s.stopCh = make(chan struct{})
	s.loopDone = make(chan struct{})
	if s.reloadInterval > 0 {
		go s.reloadLoop(s.stopCh, s.loopDone)
	} else {
		close(s.loopDone)
	}

	s.started = true
	s.startedAt = time.Now()
	s.logger.Info(ctx, "perfdash service started",
		logger.String("version", s.store.Version(ctx)),
		logger.String("value_policy", s.policy.String()),
		logger.String("timezone", s.loc.String()),
		logger.Int("cacheSize", s.cacheSize),
		logger.Duration("reloadInterval", s.reloadInterval),
		logger.Int("warmWorkers", s.warmWorkers),
	)
	return nil
}

// Stop halts the reload loop.
func (s *Service) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.logger.Info(context.Background(), "stopping perfdash service...")
	close(s.stopCh)
	done := s.loopDone
	stopWarmup := s.detachWarmup()
	s.started = false
	s.mu.Unlock()

	<-done
	stopWarmup(context.Background())
	s.logger.Info(context.Background(), "perfdash service stopped")
}

// Reload re-reads the dataset files and publishes them as a new version.
// On failure the previous version keeps serving.
func (s *Service) Reload(ctx context.Context) error {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return ErrNotStarted
	}
	return s.reload(ctx)
}

func (s *Service) reload(ctx context.Context) error {
	s.reloadMu.Lock()
	defer s.reloadMu.Unlock()

	start := time.Now()
	ds, err := s.loader.Load(ctx, s.sources)
	ms := float64(time.Since(start).Microseconds()) / 1000.0
	if err != nil {
		s.failures.Add(1)
		metrics.RecordDatasetReload("error", ms)
		metrics.RecordError("dataset", "load_failed")
		s.logger.Error(ctx, "dataset reload failed", logger.Error(err))
		return err
	}

	s.store.Replace(ctx, ds)
	s.charts.Purge(ctx)
	s.reloads.Add(1)
	metrics.RecordDatasetReload("ok", ms)
	s.enqueueWarmup(ctx)
	return nil
}

func (s *Service) reloadLoop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(s.reloadInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), s.reloadInterval)
			_ = s.reload(ctx)
			cancel()
		}
	}
}

// Players returns the roster in first-seen order.
func (s *Service) Players(ctx context.Context) ([]string, error) {
	st, err := s.readyStore()
	if err != nil {
		return nil, err
	}
	return st.Players(ctx), nil
}

// Annotation resolves a chart date label against the schedule.
func (s *Service) Annotation(ctx context.Context, date string) (types.Annotation, error) {
	st, err := s.readyStore()
	if err != nil {
		return types.Annotation{}, err
	}
	idx := st.Schedule(ctx)
	a := types.Annotation{Date: date, Label: idx.Label(date)}
	e, ok := idx.Lookup(date)
	if !ok {
		return a, fmt.Errorf("%w: %s", ErrNotScheduled, date)
	}
	a.Type = string(e.Type)
	a.Scheduled = true
	return a, nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":         s.started,
		"value_policy":    s.policy.String(),
		"timezone":        s.loc.String(),
		"cache_size":      s.cacheSize,
		"reload_interval": s.reloadInterval.String(),
		"reloads":         s.reloads.Load(),
		"reload_failures": s.failures.Load(),
		"warm_workers":    s.warmWorkers,
	}

	if s.started {
		stats["version"] = s.store.Version(ctx)
		stats["records"] = s.store.Count(ctx)
		stats["cached_charts"] = s.charts.Len()
		stats["uptime"] = time.Since(s.startedAt).Round(time.Second).String()
		if q := s.warmQueue.Load(); q != nil {
			stats["warm_queue"] = q.Len(ctx)
		}
		if ms, ok := s.store.(interface{ LoadedAt(context.Context) time.Time }); ok {
			stats["loaded_at"] = ms.LoadedAt(ctx)
		}

		var mem runtime.MemStats
		runtime.ReadMemStats(&mem)
		metrics.UpdateSystemMemoryUsage(mem.HeapInuse)
		metrics.UpdateSystemGoroutineCount(runtime.NumGoroutine())
	}

	return stats
}

func (s *Service) readyStore() (repository.Store, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.started {
		return nil, ErrNotStarted
	}
	return s.store, nil
}
