// Package sampledata generates synthetic force plate, tracking and schedule
// datasets for demos and load checks.
package sampledata

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strconv"
	"time"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/timebucket"
	"github.com/okian/perfdash/pkg/logger"
)

// Default generation constants.
const (
	defaultDays    = 56
	defaultPlayers = 6

	// Force plate tests happen every forceEvery days.
	forceEvery = 3

	eccentricMin   = 1600.0
	eccentricRange = 900.0
	concentricLift = 1.05
	jumpMin        = 0.30
	jumpRange      = 0.25
	accelMin       = 6
	accelRange     = 14
	distanceMin    = 2500.0
	distanceRange  = 4000.0

	// Share of rows with a blank metric cell.
	blankRate = 0.08
)

// ErrInvalidConfig reports an unusable generator configuration.
var ErrInvalidConfig = errors.New("invalid sample config")

var roster = []string{ //nolint:gochecknoglobals // fictional names for generated rows
	"Avery Brooks", "Jordan Ellis", "Casey Morgan", "Riley Chen", "Quinn Adeyemi",
	"Taylor Novak", "Morgan Silva", "Drew Okafor", "Jamie Laurent", "Skyler Haas",
}

// Config controls generation.
type Config struct {
	Players int
	Start   time.Time
	Days    int
	Seed    uint64
	Logger  logger.Logger
}

// Generate builds a reproducible dataset: the same Config always yields the
// same rows.
func Generate(ctx context.Context, cfg Config) (dataset.Dataset, error) {
	if cfg.Players == 0 {
		cfg.Players = defaultPlayers
	}
	if cfg.Days == 0 {
		cfg.Days = defaultDays
	}
	if cfg.Start.IsZero() {
		cfg.Start = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	}
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Players < 0 || cfg.Players > len(roster) {
		return dataset.Dataset{}, fmt.Errorf("%w: players must be between 1 and %d", ErrInvalidConfig, len(roster))
	}
	if cfg.Days < 0 {
		return dataset.Dataset{}, fmt.Errorf("%w: days must be positive", ErrInvalidConfig)
	}

	g := &generator{rng: rand.New(rand.NewPCG(cfg.Seed, cfg.Seed^0x9e3779b97f4a7c15))}
	var ds dataset.Dataset
	for d := 0; d < cfg.Days; d++ {
		if err := ctx.Err(); err != nil {
			return dataset.Dataset{}, err
		}
		day := cfg.Start.AddDate(0, 0, d)
		date := day.Format(timebucket.DayLayout)

		ds.Schedule = append(ds.Schedule, model.ScheduleEntry{
			ID:   len(ds.Schedule) + 1,
			Date: date,
			Type: sessionType(day),
		})
		for _, player := range roster[:cfg.Players] {
			ds.Tracking = append(ds.Tracking, g.tracking(len(ds.Tracking)+1, date, player))
			if d%forceEvery == 0 {
				for _, leg := range []string{model.LegRight, model.LegLeft} {
					ds.Forces = append(ds.Forces, g.force(len(ds.Forces)+1, date, leg, player))
				}
			}
		}
	}

	cfg.Logger.Info(ctx, "generated sample dataset",
		logger.Int("players", cfg.Players),
		logger.Int("days", cfg.Days),
		logger.Int("force_records", len(ds.Forces)),
		logger.Int("tracking_records", len(ds.Tracking)),
	)
	return ds, nil
}

// Games are played on Saturdays.
func sessionType(day time.Time) model.GameType {
	if day.Weekday() == time.Saturday {
		return model.Game
	}
	return model.Practice
}

type generator struct {
	rng *rand.Rand
}

func (g *generator) force(id int, date, leg, player string) model.Force {
	ecc := eccentricMin + g.rng.Float64()*eccentricRange
	f := model.Force{
		ID:                  id,
		Date:                date,
		PeakEccentricForce:  g.num(ecc, 1),
		PeakConcentricForce: g.num(ecc*concentricLift, 1),
		Leg:                 leg,
		Player:              player,
	}
	if !g.blank() {
		f.JumpHeight = g.num(jumpMin+g.rng.Float64()*jumpRange, 2)
	}
	return f
}

func (g *generator) tracking(id int, date, player string) model.Tracking {
	t := model.Tracking{
		ID:        id,
		Date:      date,
		HighDecel: strconv.Itoa(accelMin + g.rng.IntN(accelRange)),
		Player:    player,
	}
	if !g.blank() {
		t.HighAccel = strconv.Itoa(accelMin + g.rng.IntN(accelRange))
	}
	if !g.blank() {
		t.Distance = g.num(distanceMin+g.rng.Float64()*distanceRange, 0)
	}
	return t
}

func (g *generator) blank() bool { return g.rng.Float64() < blankRate }

func (g *generator) num(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}
