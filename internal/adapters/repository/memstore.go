package repository

import (
	"context"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/schedule"
	"github.com/okian/perfdash/pkg/logger"
	"github.com/okian/perfdash/pkg/metrics"
)

// snapshot is an immutable, indexed view of one dataset.
type snapshot struct {
	version  string
	loadedAt time.Time
	players  []string
	forces   map[string][]model.Force
	tracking map[string][]model.Tracking
	schedule *schedule.Index
	counts   Counts
}

// MemoryStore is an in-memory Store. Readers never block: Replace builds a
// fresh snapshot and publishes it with a single atomic store.
type MemoryStore struct {
	log  logger.Logger
	snap atomic.Pointer[snapshot]
}

var _ Store = (*MemoryStore)(nil)

// NewMemoryStore creates an empty store.
func NewMemoryStore(opts ...Option) *MemoryStore {
	s := &MemoryStore{log: logger.Nop()}
	for _, opt := range opts {
		opt(s)
	}
	s.snap.Store(buildSnapshot(dataset.Dataset{}))
	return s
}

// Replace implements Store.
func (s *MemoryStore) Replace(ctx context.Context, ds dataset.Dataset) {
	start := time.Now()
	snap := buildSnapshot(ds)
	s.snap.Store(snap)

	metrics.UpdateDatasetRecords("force_plate", snap.counts.Forces)
	metrics.UpdateDatasetRecords("tracking", snap.counts.Tracking)
	metrics.UpdateDatasetRecords("schedule", snap.counts.Schedule)
	metrics.UpdateDatasetPlayers(snap.counts.Players)

	s.log.Debug(ctx, "snapshot published",
		logger.String("version", snap.version),
		logger.Int("players", snap.counts.Players),
		logger.Duration("took", time.Since(start)),
	)
}

// Version implements Store.
func (s *MemoryStore) Version(_ context.Context) string {
	return s.snap.Load().version
}

// LoadedAt returns when the current snapshot was read from disk.
func (s *MemoryStore) LoadedAt(_ context.Context) time.Time {
	return s.snap.Load().loadedAt
}

// Players implements Store.
func (s *MemoryStore) Players(_ context.Context) []string {
	p := s.snap.Load().players
	out := make([]string, len(p))
	copy(out, p)
	return out
}

// Forces implements Store.
func (s *MemoryStore) Forces(_ context.Context, player string) ([]model.Force, error) {
	return lookup(s.snap.Load().forces, player)
}

// Tracking implements Store.
func (s *MemoryStore) Tracking(_ context.Context, player string) ([]model.Tracking, error) {
	return lookup(s.snap.Load().tracking, player)
}

// Schedule implements Store.
func (s *MemoryStore) Schedule(_ context.Context) *schedule.Index {
	return s.snap.Load().schedule
}

// Count implements Store.
func (s *MemoryStore) Count(_ context.Context) Counts {
	return s.snap.Load().counts
}

func lookup[T any](byPlayer map[string][]T, player string) ([]T, error) {
	key := strings.TrimSpace(player)
	if key == "" {
		metrics.RecordError("repository", "empty_player")
		return nil, ErrEmptyPlayer
	}
	rows, ok := byPlayer[key]
	if !ok {
		metrics.RecordError("repository", "not_found")
		return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
	}
	out := make([]T, len(rows))
	copy(out, rows)
	return out, nil
}

func buildSnapshot(ds dataset.Dataset) *snapshot {
	snap := &snapshot{
		version:  ds.Version,
		loadedAt: ds.LoadedAt,
		forces:   make(map[string][]model.Force),
		tracking: make(map[string][]model.Tracking),
		schedule: schedule.NewIndex(ds.Schedule),
	}
	seen := make(map[string]struct{})
	addPlayer := func(name string) string {
		key := strings.TrimSpace(name)
		if key == "" {
			return ""
		}
		if _, ok := seen[key]; !ok {
			seen[key] = struct{}{}
			snap.players = append(snap.players, key)
		}
		return key
	}
	for _, f := range ds.Forces {
		if key := addPlayer(f.Player); key != "" {
			snap.forces[key] = append(snap.forces[key], f)
		}
	}
	for _, t := range ds.Tracking {
		if key := addPlayer(t.Player); key != "" {
			snap.tracking[key] = append(snap.tracking[key], t)
		}
	}
	snap.counts = Counts{
		Forces:   len(ds.Forces),
		Tracking: len(ds.Tracking),
		Schedule: snap.schedule.Len(),
		Players:  len(snap.players),
	}
	return snap
}
