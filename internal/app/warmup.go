package service

import (
	"context"
	"errors"

	"github.com/okian/perfdash/internal/adapters/mq/queue"
	"github.com/okian/perfdash/internal/adapters/mq/worker"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/pkg/logger"
	"github.com/okian/perfdash/pkg/metrics"
)

var (
	warmDataTypes     = []model.DataType{model.ForcePlate, model.TrackingData}               //nolint:gochecknoglobals // fixed warm-up matrix
	warmGranularities = []series.Granularity{series.Daily, series.Weekly, series.Monthly} //nolint:gochecknoglobals // fixed warm-up matrix
)

// startWarmup starts the warm-up pool when enabled. Callers hold s.mu.
func (s *Service) startWarmup() {
	if s.warmWorkers <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	s.warmCancel = cancel
	q := queue.NewInMemoryQueue[ChartRequest](queue.WithCapacity(s.warmQueueSize))
	s.warmQueue.Store(q)
	s.warmPool = worker.NewPool[ChartRequest](s.warmWorkers, q, s.warmChart,
		worker.WithLogger(s.logger.Named("warmup")),
	)
	s.warmPool.Start(ctx)
}

// detachWarmup clears the warm-up state and returns a func that abandons
// queued jobs and waits for the workers to exit. Callers hold s.mu and
// must run the returned func after releasing it.
func (s *Service) detachWarmup() func(context.Context) {
	pool, cancel := s.warmPool, s.warmCancel
	s.warmPool, s.warmCancel = nil, nil
	s.warmQueue.Store(nil)
	if pool == nil {
		return func(context.Context) {}
	}
	return func(ctx context.Context) {
		cancel()
		if err := pool.Shutdown(ctx); err != nil {
			s.logger.Warn(ctx, "warm-up pool shutdown failed", logger.Error(err))
		}
	}
}

// enqueueWarmup queues every player, data type and granularity of the
// current version. A full queue drops the remainder.
func (s *Service) enqueueWarmup(ctx context.Context) {
	q := s.warmQueue.Load()
	if q == nil {
		return
	}
	queued := 0
	for _, player := range s.store.Players(ctx) {
		for _, dt := range warmDataTypes {
			for _, g := range warmGranularities {
				if !q.Enqueue(ctx, ChartRequest{Player: player, DataType: dt, Granularity: g}) {
					metrics.RecordWarmJob("dropped")
					s.logger.Warn(ctx, "warm-up queue full", logger.Int("queued", queued))
					return
				}
				metrics.RecordWarmJob("enqueued")
				queued++
			}
		}
	}
	s.logger.Debug(ctx, "warm-up queued", logger.Int("jobs", queued))
}

// warmChart builds and caches one chart. Players without data of a type
// and jobs outliving the service are not failures.
func (s *Service) warmChart(ctx context.Context, req ChartRequest) error {
	_, err := s.Chart(ctx, req)
	if errors.Is(err, ErrNoData) || errors.Is(err, ErrNotStarted) || errors.Is(err, context.Canceled) {
		return nil
	}
	return err
}
