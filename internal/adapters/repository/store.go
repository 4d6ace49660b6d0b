// Package repository holds the loaded datasets and answers per-player queries.
package repository

import (
	"context"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/schedule"
)

// Counts reports the size of the current snapshot.
type Counts struct {
	Forces   int `json:"force_records"`
	Tracking int `json:"tracking_records"`
	Schedule int `json:"schedule_entries"`
	Players  int `json:"players"`
}

// Store provides read access to one dataset snapshot at a time.
type Store interface {
	// Replace atomically swaps in a new dataset.
	Replace(ctx context.Context, ds dataset.Dataset)

	// Version identifies the current snapshot. Empty before the first Replace.
	Version(ctx context.Context) string

	// Players returns the roster in first-seen order across force then tracking rows.
	Players(ctx context.Context) []string

	// Forces returns a player's force rows in file order.
	// Returns ErrNotFound when the player has none.
	Forces(ctx context.Context, player string) ([]model.Force, error)

	// Tracking returns a player's tracking rows in file order.
	// Returns ErrNotFound when the player has none.
	Tracking(ctx context.Context, player string) ([]model.Tracking, error)

	// Schedule returns the schedule index of the current snapshot.
	Schedule(ctx context.Context) *schedule.Index

	// Count returns snapshot sizes.
	Count(ctx context.Context) Counts
}
