// Package dataset reads force plate, tracking and schedule files into domain models.
package dataset

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/pkg/logger"
)

// Sources names the files to load. An empty path leaves that dataset empty.
type Sources struct {
	ForcePlate string
	Tracking   string
	Schedule   string
}

// Dataset is one consistent snapshot of every source.
type Dataset struct {
	Version  string
	LoadedAt time.Time
	Forces   []model.Force
	Tracking []model.Tracking
	Schedule []model.ScheduleEntry
}

// Loader reads Sources into a Dataset.
type Loader struct {
	log   logger.Logger
	sheet string
	now   func() time.Time
}

// Option configures a Loader.
type Option func(*Loader)

// WithLogger sets the loader's logger.
func WithLogger(l logger.Logger) Option {
	return func(ld *Loader) {
		if l != nil {
			ld.log = l
		}
	}
}

// WithSheet reads a named worksheet from XLSX files instead of the first one.
func WithSheet(name string) Option {
	return func(ld *Loader) { ld.sheet = name }
}

// WithClock overrides the LoadedAt clock.
func WithClock(now func() time.Time) Option {
	return func(ld *Loader) {
		if now != nil {
			ld.now = now
		}
	}
}

// NewLoader creates a Loader.
func NewLoader(opts ...Option) *Loader {
	ld := &Loader{log: logger.Nop(), now: time.Now}
	for _, opt := range opts {
		opt(ld)
	}
	return ld
}

// Load reads every configured source. Any failure aborts the whole load so a
// Dataset is never partially populated.
func (ld *Loader) Load(ctx context.Context, src Sources) (Dataset, error) {
	ds := Dataset{Version: uuid.NewString(), LoadedAt: ld.now()}

	var err error
	if ds.Forces, err = load(ctx, ld, src.ForcePlate, decodeForces); err != nil {
		return Dataset{}, fmt.Errorf("force plate: %w", err)
	}
	if ds.Tracking, err = load(ctx, ld, src.Tracking, decodeTracking); err != nil {
		return Dataset{}, fmt.Errorf("tracking: %w", err)
	}
	if ds.Schedule, err = load(ctx, ld, src.Schedule, decodeSchedule); err != nil {
		return Dataset{}, fmt.Errorf("schedule: %w", err)
	}

	ld.log.Info(ctx, "dataset loaded",
		logger.String("version", ds.Version),
		logger.Int("force_records", len(ds.Forces)),
		logger.Int("tracking_records", len(ds.Tracking)),
		logger.Int("schedule_entries", len(ds.Schedule)),
	)
	return ds, nil
}

func load[T any](ctx context.Context, ld *Loader, path string, decode func([][]string) ([]T, error)) ([]T, error) {
	if path == "" {
		return nil, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	rows, err := readTable(path, ld.sheet)
	if err != nil {
		return nil, err
	}
	out, err := decode(rows)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	ld.log.Debug(ctx, "dataset file decoded", logger.String("path", path), logger.Int("records", len(out)))
	return out, nil
}
