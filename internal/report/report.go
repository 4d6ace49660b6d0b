// Package report implements the terminal client for the dashboard: it loads
// the dataset files directly and prints roster and chart series.
package report

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"github.com/okian/perfdash/internal/adapters/dataset"
	app "github.com/okian/perfdash/internal/app"
	"github.com/okian/perfdash/internal/domain/model"
	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/internal/domain/timebucket"
	"github.com/okian/perfdash/internal/domain/types"
	"github.com/okian/perfdash/internal/sampledata"
	"github.com/okian/perfdash/pkg/logger"
)

// flags shared by every subcommand.
type flags struct {
	force       string
	tracking    string
	schedule    string
	valuePolicy string
	timezone    string
	json        bool
}

// client is the subset of the service the commands call.
type client interface {
	Players(ctx context.Context) ([]string, error)
	Chart(ctx context.Context, req app.ChartRequest) (types.Chart, error)
}

// runner carries per-invocation state. The service is started by the
// subcommand that needs it, which stops it before returning.
type runner struct {
	f   flags
	log logger.Logger
	svc *app.Service
}

// NewRootCmd builds the report command tree writing to out.
func NewRootCmd(out io.Writer, log logger.Logger) *cobra.Command {
	if log == nil {
		log = logger.Nop()
	}
	r := &runner{log: log}

	root := &cobra.Command{
		Use:           "report",
		Short:         "Print athlete performance series from dataset files",
		Long:          "Load force plate, tracking and schedule files and print consolidated chart series",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(out)
	root.SetErr(out)

	pf := root.PersistentFlags()
	pf.StringVar(&r.f.force, "force", "", "Force plate file (.csv or .xlsx)")
	pf.StringVar(&r.f.tracking, "tracking", "", "Tracking file (.csv or .xlsx)")
	pf.StringVar(&r.f.schedule, "schedule", "", "Schedule file (.csv or .xlsx)")
	pf.StringVar(&r.f.valuePolicy, "value-policy", "zero", "How unparseable values are averaged: zero or skip")
	pf.StringVar(&r.f.timezone, "timezone", "UTC", "IANA timezone dates are bucketed in")
	pf.BoolVar(&r.f.json, "json", false, "Output in JSON format")

	root.AddCommand(newPlayersCmd(r), newChartCmd(r), newSampleCmd(r))
	return root
}

// JSONRequested reports whether --json appears in args. Used to format
// errors raised before flags are parsed.
func JSONRequested(args []string) bool {
	for _, a := range args {
		if a == "--json" || a == "--json=true" {
			return true
		}
	}
	return false
}

func (r *runner) start(ctx context.Context) error {
	if r.f.force == "" && r.f.tracking == "" {
		return fmt.Errorf("at least one of --force or --tracking is required")
	}
	policy, err := series.ParseValuePolicy(r.f.valuePolicy)
	if err != nil {
		return err
	}
	loc, err := time.LoadLocation(r.f.timezone)
	if err != nil {
		return fmt.Errorf("timezone %q: %w", r.f.timezone, err)
	}
	svc := app.New(
		app.WithLogger(r.log),
		app.WithSources(dataset.Sources{
			ForcePlate: r.f.force,
			Tracking:   r.f.tracking,
			Schedule:   r.f.schedule,
		}),
		app.WithValuePolicy(policy),
		app.WithLocation(loc),
	)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	r.svc = svc
	return nil
}

func newPlayersCmd(r *runner) *cobra.Command {
	return &cobra.Command{
		Use:   "players",
		Short: "List players found in the dataset",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if err := r.start(cmd.Context()); err != nil {
				return err
			}
			defer r.svc.Stop()
			return runPlayers(cmd.Context(), cmd.OutOrStdout(), r.svc, r.f.json)
		},
	}
}

func runPlayers(ctx context.Context, w io.Writer, c client, asJSON bool) error {
	players, err := c.Players(ctx)
	if err != nil {
		return err
	}
	if players == nil {
		players = []string{}
	}
	if asJSON {
		return printJSON(w, types.Players{Players: players})
	}
	printPlayers(w, players)
	return nil
}

func newChartCmd(r *runner) *cobra.Command {
	var player, data, granularity string
	cmd := &cobra.Command{
		Use:   "chart",
		Short: "Print every panel for one player",
		Long:  "Consolidate one player's series at daily, weekly or monthly resolution and print each panel",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			dt, err := model.ParseDataType(data)
			if err != nil {
				return err
			}
			if err := r.start(cmd.Context()); err != nil {
				return err
			}
			defer r.svc.Stop()
			// Unknown granularities are passed through and served daily.
			g, _ := series.ParseGranularity(granularity)
			return runChart(cmd.Context(), cmd.OutOrStdout(), r.svc, app.ChartRequest{
				Player:      player,
				DataType:    dt,
				Granularity: g,
			}, r.f.json)
		},
	}
	cmd.Flags().StringVarP(&player, "player", "p", "", "Player name")
	cmd.Flags().StringVarP(&data, "data", "d", "force", "Data type: force or tracking")
	cmd.Flags().StringVarP(&granularity, "granularity", "g", "daily", "daily, weekly or monthly")
	_ = cmd.MarkFlagRequired("player")
	return cmd
}

func runChart(ctx context.Context, w io.Writer, c client, req app.ChartRequest, asJSON bool) error {
	chart, err := c.Chart(ctx, req)
	if err != nil {
		return err
	}
	if asJSON {
		return printJSON(w, chart)
	}
	printChart(w, chart)
	return nil
}

func newSampleCmd(r *runner) *cobra.Command {
	var (
		out, format, start string
		players, days      int
		seed               uint64
	)
	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write a synthetic dataset",
		Long:  "Generate reproducible force plate, tracking and schedule files for demos",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			from, err := time.Parse(timebucket.DayLayout, start)
			if err != nil {
				return fmt.Errorf("start %q: %w", start, err)
			}
			ds, err := sampledata.Generate(cmd.Context(), sampledata.Config{
				Players: players,
				Start:   from,
				Days:    days,
				Seed:    seed,
				Logger:  r.log,
			})
			if err != nil {
				return err
			}
			src, err := dataset.WriteDataset(out, format, ds)
			if err != nil {
				return err
			}
			return printSources(cmd.OutOrStdout(), src, r.f.json)
		},
	}
	cmd.Flags().StringVarP(&out, "out", "o", "data", "Output directory")
	cmd.Flags().StringVar(&format, "format", "csv", "File format: csv or xlsx")
	cmd.Flags().StringVar(&start, "start", "2024-01-01", "First day (YYYY-MM-DD)")
	cmd.Flags().IntVar(&players, "players", 6, "Number of players")
	cmd.Flags().IntVar(&days, "days", 56, "Number of days")
	cmd.Flags().Uint64Var(&seed, "seed", 1, "Random seed")
	return cmd
}

func printSources(w io.Writer, src dataset.Sources, asJSON bool) error {
	files := map[string]string{
		"force_plate": src.ForcePlate,
		"tracking":    src.Tracking,
		"schedule":    src.Schedule,
	}
	if asJSON {
		return printJSON(w, files)
	}
	fmt.Fprintln(w, titleStyle.Render("Sample dataset"))
	fmt.Fprintln(w, "  force plate: "+src.ForcePlate)
	fmt.Fprintln(w, "  tracking:    "+src.Tracking)
	fmt.Fprintln(w, "  schedule:    "+src.Schedule)
	return nil
}
