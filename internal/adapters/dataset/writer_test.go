package dataset_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

func TestWriteDataset(t *testing.T) {
	ds := dataset.Dataset{
		Forces: []model.Force{
			{ID: 1, Date: "2024-01-01", PeakEccentricForce: "2000", PeakConcentricForce: "2100", JumpHeight: "0.41", Leg: model.LegRight, Player: "Ja Morant"},
			{ID: 2, Date: "2024-01-01", PeakEccentricForce: "1900", PeakConcentricForce: "2050", Leg: model.LegLeft, Player: "Ja Morant"},
		},
		Tracking: []model.Tracking{
			{ID: 1, Date: "2024-01-02", HighAccel: "12", HighDecel: "10", Distance: "3500", Player: "Desmond Bane"},
		},
		Schedule: []model.ScheduleEntry{
			{ID: 1, Date: "2024-01-02", Type: model.Game},
		},
	}

	for _, format := range []string{"csv", "xlsx"} {
		Convey("Given a dataset written as "+format, t, func() {
			dir := filepath.Join(t.TempDir(), "out")
			src, err := dataset.WriteDataset(dir, format, ds)
			So(err, ShouldBeNil)
			So(filepath.Ext(src.ForcePlate), ShouldEqual, "."+format)

			Convey("When loading it back", func() {
				got, err := dataset.NewLoader().Load(context.Background(), src)

				Convey("Then every record should round-trip", func() {
					So(err, ShouldBeNil)
					So(got.Forces, ShouldResemble, ds.Forces)
					So(got.Tracking, ShouldResemble, ds.Tracking)
					So(got.Schedule, ShouldResemble, ds.Schedule)
				})
			})
		})
	}

	Convey("Given an unsupported format", t, func() {
		_, err := dataset.WriteDataset(t.TempDir(), "json", ds)

		Convey("Then writing should fail", func() {
			So(errors.Is(err, dataset.ErrUnsupportedFormat), ShouldBeTrue)
		})
	})
}
