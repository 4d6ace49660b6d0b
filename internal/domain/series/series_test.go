package series_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/okian/perfdash/internal/domain/series"
	"github.com/okian/perfdash/internal/domain/timebucket"
	"github.com/okian/perfdash/pkg/logger"
	. "github.com/smartystreets/goconvey/convey"
)

// row is a minimal dated record used across the series tests.
type row struct {
	ID     int
	Date   string
	Force  string
	Height string
	Player string
}

func (r row) RecordDate() string { return r.Date }

var rowMetrics = []series.Metric[row]{
	{Name: "Peak_Eccentric_Force", Value: func(r row) string { return r.Force }},
	{Name: "Jump_Height", Value: func(r row) string { return r.Height }},
}

// captureLogger records Warn calls.
type captureLogger struct {
	warns []string
}

func (c *captureLogger) Info(context.Context, string, ...logger.Field)  {}
func (c *captureLogger) Error(context.Context, string, ...logger.Field) {}
func (c *captureLogger) Debug(context.Context, string, ...logger.Field) {}
func (c *captureLogger) Fatal(context.Context, string, ...logger.Field) {}
func (c *captureLogger) Warn(_ context.Context, msg string, _ ...logger.Field) {
	c.warns = append(c.warns, msg)
}
func (c *captureLogger) Named(string) logger.Logger { return c }

func TestParseGranularity(t *testing.T) {
	Convey("Given granularity selector strings", t, func() {
		Convey("Then known values should normalize", func() {
			for in, want := range map[string]series.Granularity{
				"daily": series.Daily, "WEEKLY": series.Weekly, " Monthly ": series.Monthly, "": series.Daily,
			} {
				g, err := series.ParseGranularity(in)
				So(err, ShouldBeNil)
				So(g, ShouldEqual, want)
				So(g.Valid(), ShouldBeTrue)
			}
		})

		Convey("Then unknown values should be returned with an error", func() {
			g, err := series.ParseGranularity("hourly")
			So(errors.Is(err, series.ErrUnsupportedGranularity), ShouldBeTrue)
			So(g, ShouldEqual, series.Granularity("hourly"))
			So(g.Valid(), ShouldBeFalse)
		})
	})

	Convey("Given value policy strings", t, func() {
		p, err := series.ParseValuePolicy("skip")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, series.ValueSkip)
		So(p.String(), ShouldEqual, "skip")

		p, err = series.ParseValuePolicy("")
		So(err, ShouldBeNil)
		So(p, ShouldEqual, series.ValueAsZero)

		_, err = series.ParseValuePolicy("drop")
		So(errors.Is(err, series.ErrUnknownValuePolicy), ShouldBeTrue)
	})
}

func TestSortByDate(t *testing.T) {
	Convey("Given an unsorted record set", t, func() {
		in := []row{
			{ID: 1, Date: "2024-03-02"},
			{ID: 2, Date: "2024-01-01"},
			{ID: 3, Date: "2024-03-02"},
			{ID: 4, Date: "2024-02-10"},
		}

		Convey("When sorting by date", func() {
			out, err := series.SortByDate(in, time.UTC)

			Convey("Then records should be ascending and ties stable", func() {
				So(err, ShouldBeNil)
				ids := make([]int, len(out))
				for i, r := range out {
					ids[i] = r.ID
				}
				So(ids, ShouldResemble, []int{2, 4, 1, 3})
			})

			Convey("And the input should not be modified", func() {
				So(in[0].ID, ShouldEqual, 1)
				So(in[1].ID, ShouldEqual, 2)
			})
		})

		Convey("When a date is unparseable", func() {
			in[2].Date = "someday"
			out, err := series.SortByDate(in, time.UTC)

			Convey("Then the sort should be rejected", func() {
				So(out, ShouldBeNil)
				So(errors.Is(err, timebucket.ErrInvalidDate), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "record 2")
			})
		})
	})
}

func TestGroupBy(t *testing.T) {
	Convey("Given records spread across three weeks", t, func() {
		in := []row{
			{ID: 1, Date: "2024-01-09"},
			{ID: 2, Date: "2024-01-01"},
			{ID: 3, Date: "2024-01-10"},
			{ID: 4, Date: "2024-01-16"},
			{ID: 5, Date: "2024-01-07"},
		}

		Convey("When grouping by week", func() {
			buckets, err := series.GroupBy(in, series.WeekKeyFunc[row](time.UTC))
			So(err, ShouldBeNil)

			Convey("Then buckets should appear in first-seen order", func() {
				labels := make([]string, len(buckets))
				for i, b := range buckets {
					labels[i] = b.Label
				}
				So(labels, ShouldResemble, []string{"2024-01-08", "2024-01-01", "2024-01-15"})
			})

			Convey("And records should keep encounter order inside a bucket", func() {
				So(buckets[0].Records[0].ID, ShouldEqual, 1)
				So(buckets[0].Records[1].ID, ShouldEqual, 3)
				So(buckets[1].Records[0].ID, ShouldEqual, 2)
				So(buckets[1].Records[1].ID, ShouldEqual, 5)
			})

			Convey("And the buckets should partition the input exactly", func() {
				seen := map[int]int{}
				total := 0
				for _, b := range buckets {
					So(len(b.Records), ShouldBeGreaterThan, 0)
					for _, r := range b.Records {
						seen[r.ID]++
						total++
					}
				}
				So(total, ShouldEqual, len(in))
				for _, r := range in {
					So(seen[r.ID], ShouldEqual, 1)
				}
			})

			Convey("And each bucket should carry its start instant", func() {
				So(buckets[1].Start.Equal(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)), ShouldBeTrue)
			})
		})

		Convey("When grouping by month", func() {
			in = append(in, row{ID: 6, Date: "2024-02-29"})
			buckets, err := series.GroupBy(in, series.MonthKeyFunc[row](time.UTC))

			Convey("Then two month buckets should exist", func() {
				So(err, ShouldBeNil)
				So(len(buckets), ShouldEqual, 2)
				So(buckets[0].Label, ShouldEqual, "01-2024")
				So(len(buckets[0].Records), ShouldEqual, 5)
				So(buckets[1].Label, ShouldEqual, "02-2024")
			})
		})

		Convey("When a record has an invalid date", func() {
			in[3].Date = "??"
			_, err := series.GroupBy(in, series.WeekKeyFunc[row](time.UTC))

			Convey("Then grouping should fail naming the record", func() {
				So(errors.Is(err, timebucket.ErrInvalidDate), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "group record 3")
			})
		})
	})
}

func TestAggregate(t *testing.T) {
	Convey("Given a bucket with an unparseable value", t, func() {
		buckets := []series.Bucket[row]{{
			BucketKey: series.BucketKey{Label: "2024-01-01"},
			Records: []row{
				{Date: "2024-01-01", Force: "10", Height: "abc"},
				{Date: "2024-01-02", Force: "abc", Height: "30"},
				{Date: "2024-01-03", Force: "20", Height: ""},
			},
		}}

		Convey("When aggregating with the zero policy", func() {
			points, invalid := series.Aggregate(buckets, rowMetrics, series.ValueAsZero)

			Convey("Then the bad value should contribute 0 but still count", func() {
				So(len(points), ShouldEqual, 1)
				So(points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 10)
				So(points[0].Values["Jump_Height"], ShouldEqual, 10)
				So(points[0].Count, ShouldEqual, 3)
				So(invalid, ShouldEqual, 3)
			})
		})

		Convey("When aggregating with the skip policy", func() {
			points, invalid := series.Aggregate(buckets, rowMetrics, series.ValueSkip)

			Convey("Then bad values should leave both sum and divisor", func() {
				So(points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 15)
				So(points[0].Values["Jump_Height"], ShouldEqual, 30)
				So(invalid, ShouldEqual, 3)
			})
		})

		Convey("When a metric has no parseable value under skip", func() {
			buckets[0].Records = []row{{Date: "2024-01-01", Force: "x", Height: "1"}}
			points, _ := series.Aggregate(buckets, rowMetrics, series.ValueSkip)

			Convey("Then the metric should be absent rather than NaN", func() {
				_, ok := points[0].Value("Peak_Eccentric_Force")
				So(ok, ShouldBeFalse)
				v, ok := points[0].Value("Jump_Height")
				So(ok, ShouldBeTrue)
				So(v, ShouldEqual, 1)
			})
		})

		Convey("When values are non-finite", func() {
			buckets[0].Records = []row{
				{Date: "2024-01-01", Force: "NaN", Height: "inf"},
				{Date: "2024-01-02", Force: "4", Height: "-Infinity"},
				{Date: "2024-01-03", Force: "+Inf", Height: "2"},
			}

			Convey("Then the zero policy counts them as 0", func() {
				points, invalid := series.Aggregate(buckets, rowMetrics, series.ValueAsZero)
				So(invalid, ShouldEqual, 4)
				So(points[0].Values["Peak_Eccentric_Force"], ShouldAlmostEqual, 4.0/3.0)
				So(points[0].Values["Jump_Height"], ShouldAlmostEqual, 2.0/3.0)
			})

			Convey("Then the skip policy leaves them out", func() {
				points, invalid := series.Aggregate(buckets, rowMetrics, series.ValueSkip)
				So(invalid, ShouldEqual, 4)
				So(points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 4)
				So(points[0].Values["Jump_Height"], ShouldEqual, 2)
			})

			Convey("Then daily points stay finite too", func() {
				res, err := series.Consolidate(context.Background(), buckets[0].Records, series.Daily, rowMetrics)
				So(err, ShouldBeNil)
				So(res.InvalidValues, ShouldEqual, 4)
				So(res.Points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 0)
				So(res.Points[0].Values["Jump_Height"], ShouldEqual, 0)
			})
		})

		Convey("When there are no buckets", func() {
			points, invalid := series.Aggregate[row](nil, rowMetrics, series.ValueAsZero)

			Convey("Then nothing should be emitted", func() {
				So(points, ShouldBeEmpty)
				So(invalid, ShouldEqual, 0)
			})
		})
	})
}

func TestConsolidate(t *testing.T) {
	ctx := context.Background()

	Convey("Given two records in the same ISO week", t, func() {
		in := []row{
			{Date: "2024-01-01", Force: "10", Height: "1"},
			{Date: "2024-01-02", Force: "20", Height: "3"},
		}

		Convey("When consolidating weekly", func() {
			res, err := series.Consolidate(ctx, in, series.Weekly, rowMetrics)

			Convey("Then one point labelled with the Monday should hold the mean", func() {
				So(err, ShouldBeNil)
				So(len(res.Points), ShouldEqual, 1)
				So(res.Points[0].Date, ShouldEqual, "2024-01-01")
				So(res.Points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 15)
				So(res.Points[0].Values["Jump_Height"], ShouldEqual, 2)
				So(res.Fallback, ShouldBeFalse)
			})
		})
	})

	Convey("Given records in January and February", t, func() {
		in := []row{
			{Date: "2024-02-15", Force: "7", Height: "2"},
			{Date: "2024-01-15", Force: "5", Height: "1"},
		}

		Convey("When consolidating monthly", func() {
			res, err := series.Consolidate(ctx, in, series.Monthly, rowMetrics)

			Convey("Then each month should hold the identity mean in calendar order", func() {
				So(err, ShouldBeNil)
				So(len(res.Points), ShouldEqual, 2)
				So(res.Points[0].Date, ShouldEqual, "01-2024")
				So(res.Points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 5)
				So(res.Points[1].Date, ShouldEqual, "02-2024")
				So(res.Points[1].Values["Peak_Eccentric_Force"], ShouldEqual, 7)
			})
		})
	})

	Convey("Given an unsorted daily record set", t, func() {
		in := []row{
			{ID: 1, Date: "2024-03-02", Force: "1"},
			{ID: 2, Date: "2024-01-01", Force: "2"},
		}

		Convey("When consolidating daily", func() {
			res, err := series.Consolidate(ctx, in, series.Daily, rowMetrics)

			Convey("Then the same records should come back ascending", func() {
				So(err, ShouldBeNil)
				So(len(res.Records), ShouldEqual, 2)
				So(res.Records[0], ShouldResemble, in[1])
				So(res.Records[1], ShouldResemble, in[0])
			})

			Convey("And each record should become its own point with its raw label", func() {
				So(len(res.Points), ShouldEqual, 2)
				So(res.Points[0].Date, ShouldEqual, "2024-01-01")
				So(res.Points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 2)
				So(res.Points[1].Date, ShouldEqual, "2024-03-02")
			})

			Convey("And the caller's slice should be untouched", func() {
				So(in[0].ID, ShouldEqual, 1)
			})
		})
	})

	Convey("Given records spanning several weeks out of order", t, func() {
		in := []row{
			{Date: "2024-01-20", Force: "30"},
			{Date: "2024-01-02", Force: "10"},
			{Date: "2024-01-21", Force: "50"},
			{Date: "2024-01-03", Force: "20"},
			{Date: "2024-01-10", Force: "5"},
		}

		Convey("When consolidating weekly", func() {
			res, err := series.Consolidate(ctx, in, series.Weekly, rowMetrics)

			Convey("Then buckets should be chronological with exact means", func() {
				So(err, ShouldBeNil)
				So(len(res.Points), ShouldEqual, 3)
				So(res.Points[0].Date, ShouldEqual, "2024-01-01")
				So(res.Points[0].Values["Peak_Eccentric_Force"], ShouldEqual, 15)
				So(res.Points[1].Date, ShouldEqual, "2024-01-08")
				So(res.Points[1].Values["Peak_Eccentric_Force"], ShouldEqual, 5)
				So(res.Points[2].Date, ShouldEqual, "2024-01-15")
				So(res.Points[2].Values["Peak_Eccentric_Force"], ShouldEqual, 40)
			})

			Convey("And bucket counts should add up to the input size", func() {
				total := 0
				for _, p := range res.Points {
					total += p.Count
				}
				So(total, ShouldEqual, len(in))
			})
		})
	})

	Convey("Given an unsupported granularity", t, func() {
		in := []row{
			{Date: "2024-03-02", Force: "1"},
			{Date: "2024-01-01", Force: "2"},
		}
		log := &captureLogger{}

		Convey("When consolidating", func() {
			res, err := series.Consolidate(ctx, in, series.Granularity("hourly"), rowMetrics, series.WithLogger(log))

			Convey("Then records should pass through sorted and flagged", func() {
				So(err, ShouldBeNil)
				So(res.Fallback, ShouldBeTrue)
				So(len(res.Records), ShouldEqual, 2)
				So(res.Records[0].Date, ShouldEqual, "2024-01-01")
				So(len(res.Points), ShouldEqual, 2)
			})

			Convey("And the condition should be logged", func() {
				So(len(log.warns), ShouldEqual, 1)
				So(log.warns[0], ShouldContainSubstring, "unsupported granularity")
			})
		})
	})

	Convey("Given a record with an invalid date", t, func() {
		in := []row{{Date: "2024-01-01"}, {Date: "31st of never"}}

		Convey("Then every granularity should reject the set", func() {
			for _, g := range []series.Granularity{series.Daily, series.Weekly, series.Monthly} {
				_, err := series.Consolidate(ctx, in, g, rowMetrics)
				So(errors.Is(err, timebucket.ErrInvalidDate), ShouldBeTrue)
			}
		})
	})

	Convey("Given an empty record set", t, func() {
		Convey("Then every granularity should return no points", func() {
			for _, g := range []series.Granularity{series.Daily, series.Weekly, series.Monthly} {
				res, err := series.Consolidate(ctx, []row{}, g, rowMetrics)
				So(err, ShouldBeNil)
				So(res.Points, ShouldBeEmpty)
			}
		})
	})

	Convey("Given dates interpreted in a configured location", t, func() {
		loc := time.FixedZone("UTC+9", 9*60*60)
		in := []row{{Date: "2024-01-07", Force: "4"}}

		Convey("Then Sunday should still fall into the previous Monday", func() {
			res, err := series.Consolidate(ctx, in, series.Weekly, rowMetrics, series.WithLocation(loc), series.WithValuePolicy(series.ValueSkip))
			So(err, ShouldBeNil)
			So(res.Points[0].Date, ShouldEqual, "2024-01-01")
			So(res.Points[0].Start.Location(), ShouldEqual, loc)
		})
	})
}
