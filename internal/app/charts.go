package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/okian/perfdash/internal/adapters/cache"
	"github.com/okian/perfdash/internal/adapters/repository"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/schedule"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/internal/domain/types"
	"github.com/okian/perfdash/pkg/logger"
	"github.com/okian/perfdash/pkg/metrics"
)

// Y-axis units shown by the dashboard.
const (
	unitNewtons = "NEWTONS"
	unitInches  = "INCHES"
)

// ChartRequest selects one chart.
type ChartRequest struct {
	Player      string
	DataType    model.DataType
	Granularity series.Granularity
}

// panelSpec describes one panel: which rows it plots and which metrics.
type panelSpec[R series.Dated] struct {
	title   string
	unit    string
	keep    func(R) bool
	metrics []series.Metric[R]
}

func forcePanels() []panelSpec[model.Force] {
	peak := pick(model.ForceMetrics, model.PeakEccentricForce, model.PeakConcentricForce)
	jump := pick(model.ForceMetrics, model.JumpHeight)
	onLeg := func(leg string) func(model.Force) bool {
		return func(f model.Force) bool { return f.Leg == leg }
	}
	jumpOnLeg := func(leg string) func(model.Force) bool {
		return func(f model.Force) bool { return f.Leg == leg && f.JumpHeight != "" }
	}
	return []panelSpec[model.Force]{
		{title: "Peak Force - Right Leg", unit: unitNewtons, keep: onLeg(model.LegRight), metrics: peak},
		{title: "Jump Height - Right Leg", unit: unitNewtons, keep: jumpOnLeg(model.LegRight), metrics: jump},
		{title: "Peak Force - Left Leg", unit: unitNewtons, keep: onLeg(model.LegLeft), metrics: peak},
		{title: "Jump Height - Left Leg", unit: unitNewtons, keep: jumpOnLeg(model.LegLeft), metrics: jump},
	}
}

func trackingPanels() []panelSpec[model.Tracking] {
	return []panelSpec[model.Tracking]{
		{
			title:   "Acceleration and Deceleration",
			unit:    unitNewtons,
			keep:    func(t model.Tracking) bool { return t.HighAccel != "" },
			metrics: pick(model.TrackingMetrics, model.HighAccel, model.HighDecel),
		},
		{
			title:   "Distance",
			unit:    unitInches,
			keep:    func(t model.Tracking) bool { return t.Distance != "" },
			metrics: pick(model.TrackingMetrics, model.Distance),
		},
	}
}

// pick returns the metrics with the given names, in the order given.
func pick[R any](all []series.Metric[R], names ...string) []series.Metric[R] {
	out := make([]series.Metric[R], 0, len(names))
	for _, n := range names {
		i := slices.IndexFunc(all, func(m series.Metric[R]) bool { return m.Name == n })
		if i >= 0 {
			out = append(out, all[i])
		}
	}
	return out
}

func forceAttrs(f model.Force) map[string]string {
	return map[string]string{"Player": f.Player, "Leg": f.Leg}
}

func trackingAttrs(t model.Tracking) map[string]string {
	return map[string]string{"Player": t.Player}
}

// Chart builds every panel for the requested player, data type and
// granularity. Results are cached per dataset version.
func (s *Service) Chart(ctx context.Context, req ChartRequest) (types.Chart, error) {
	st, err := s.readyStore()
	if err != nil {
		return types.Chart{}, err
	}

	version := st.Version(ctx)
	key := cache.Key(version, req.Player, string(req.DataType), string(req.Granularity))
	if c, ok := s.charts.Get(ctx, key); ok {
		return c, nil
	}

	start := time.Now()
	chart := types.Chart{
		Player:      req.Player,
		DataType:    string(req.DataType),
		Granularity: string(req.Granularity),
		Version:     version,
	}
	idx := st.Schedule(ctx)

	switch req.DataType {
	case model.ForcePlate:
		rows, err := st.Forces(ctx, req.Player)
		if err != nil {
			return types.Chart{}, s.noData(err, req)
		}
		chart.Panels, chart.Fallback, err = buildPanels(ctx, s, rows, forcePanels(), req, idx, forceAttrs)
		if err != nil {
			return types.Chart{}, err
		}
	case model.TrackingData:
		rows, err := st.Tracking(ctx, req.Player)
		if err != nil {
			return types.Chart{}, s.noData(err, req)
		}
		chart.Panels, chart.Fallback, err = buildPanels(ctx, s, rows, trackingPanels(), req, idx, trackingAttrs)
		if err != nil {
			return types.Chart{}, err
		}
	default:
		return types.Chart{}, fmt.Errorf("%w: %q", model.ErrUnknownDataType, req.DataType)
	}

	if chart.Fallback {
		metrics.RecordGranularityFallback(string(req.Granularity))
	}
	metrics.RecordConsolidation(string(req.Granularity), string(req.DataType),
		float64(time.Since(start).Microseconds())/1000.0)

	s.charts.Put(ctx, key, chart)
	return chart, nil
}

func (s *Service) noData(err error, req ChartRequest) error {
	if errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("%w: %s data not available for %s", ErrNoData, req.DataType, req.Player)
	}
	return err
}

func buildPanels[R series.Dated](
	ctx context.Context,
	s *Service,
	rows []R,
	specs []panelSpec[R],
	req ChartRequest,
	idx *schedule.Index,
	attrs func(R) map[string]string,
) ([]types.Panel, bool, error) {
	opts := []series.Option{
		series.WithLocation(s.loc),
		series.WithValuePolicy(s.policy),
	}
	fallback := false
	panels := make([]types.Panel, 0, len(specs))
	for i, spec := range specs {
		panelOpts := opts
		// Only the first panel logs an unsupported granularity.
		if i == 0 {
			panelOpts = append(slices.Clip(opts), series.WithLogger(s.logger))
		}

		var kept []R
		for _, r := range rows {
			if spec.keep(r) {
				kept = append(kept, r)
			}
		}
		res, err := series.Consolidate(ctx, kept, req.Granularity, spec.metrics, panelOpts...)
		if err != nil {
			metrics.RecordError("consolidate", "invalid_date")
			s.logger.Warn(ctx, "chart consolidation failed",
				logger.String("player", req.Player),
				logger.String("panel", spec.title),
				logger.Error(err),
			)
			return nil, false, fmt.Errorf("%s: %w", spec.title, err)
		}
		metrics.RecordInvalidValues(string(req.DataType), res.InvalidValues)
		fallback = fallback || res.Fallback

		perRecord := len(res.Points) == len(res.Records) && (res.Granularity == series.Daily || res.Fallback)
		points := make([]types.Point, len(res.Points))
		for j, p := range res.Points {
			points[j] = types.Point{
				Date:   p.Date,
				Label:  idx.Label(p.Date),
				Count:  p.Count,
				Values: p.Values,
			}
			if perRecord {
				points[j].Attrs = attrs(res.Records[j])
			}
		}

		names := make([]string, len(spec.metrics))
		for j, m := range spec.metrics {
			names[j] = m.Name
		}
		panels = append(panels, types.Panel{Title: spec.title, Unit: spec.unit, Series: names, Points: points})
	}
	return panels, fallback, nil
}
