package dataset_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/okian/perfdash/internal/adapters/dataset"
	"github.com/okian/perfdash/internal/domain/model"
	. "github.com/smartystreets/goconvey/convey"
)

const forceCSV = "\ufeffID,Date,Peak_Eccentric_Force,Peak_Concentric_Force,Jump_Height,Leg,Player\n" +
	"1,2024-01-02,2000,2100,0.41,Right,Ja Morant\n" +
	"2,2024-01-01, 1900,2050,,Left,Ja Morant\n" +
	",,,,,,\n" +
	"x,2024-01-03,1800,2000,0.39,Right,Desmond Bane\n"

const trackingCSV = "ID,Date,High_Accel,High_Decel,Distance,Player\n" +
	"1,2024-01-02,12,10,3500,Desmond Bane\n" +
	"2,2024-01-03,14,11,\n"

const scheduleCSV = "ID,Date,Type\n" +
	"1,2024-01-02,Game\n" +
	"2,2024-01-03,0\n" +
	"3,2024-01-04,1\n"

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(body), 0o600); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return p
}

func writeWorkbook(t *testing.T, dir, name string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
	p := filepath.Join(dir, name)
	if err := f.SaveAs(p); err != nil {
		t.Fatalf("save workbook: %v", err)
	}
	return p
}

func TestLoadCSV(t *testing.T) {
	Convey("Given CSV files for every dataset", t, func() {
		dir := t.TempDir()
		src := dataset.Sources{
			ForcePlate: writeFile(t, dir, "force_plate.csv", forceCSV),
			Tracking:   writeFile(t, dir, "tracking.csv", trackingCSV),
			Schedule:   writeFile(t, dir, "schedule.csv", scheduleCSV),
		}
		at := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		ld := dataset.NewLoader(dataset.WithClock(func() time.Time { return at }))

		Convey("When loading", func() {
			ds, err := ld.Load(context.Background(), src)
			So(err, ShouldBeNil)

			Convey("Then force rows should decode in file order without the blank row", func() {
				So(len(ds.Forces), ShouldEqual, 3)
				So(ds.Forces[0], ShouldResemble, model.Force{
					ID: 1, Date: "2024-01-02", PeakEccentricForce: "2000", PeakConcentricForce: "2100",
					JumpHeight: "0.41", Leg: "Right", Player: "Ja Morant",
				})
				So(ds.Forces[1].PeakEccentricForce, ShouldEqual, "1900")
				So(ds.Forces[1].JumpHeight, ShouldEqual, "")
			})

			Convey("And a non-numeric ID should fall back to the row number", func() {
				So(ds.Forces[2].ID, ShouldEqual, 3)
			})

			Convey("And short tracking rows should yield empty fields", func() {
				So(len(ds.Tracking), ShouldEqual, 2)
				So(ds.Tracking[1].Distance, ShouldEqual, "")
				So(ds.Tracking[1].Player, ShouldEqual, "")
			})

			Convey("And schedule types should accept names and ordinals", func() {
				So(ds.Schedule[0].Type, ShouldEqual, model.Game)
				So(ds.Schedule[1].Type, ShouldEqual, model.Practice)
				So(ds.Schedule[2].Type, ShouldEqual, model.Game)
			})

			Convey("And the snapshot should be versioned and stamped", func() {
				So(ds.Version, ShouldNotBeBlank)
				So(ds.LoadedAt.Equal(at), ShouldBeTrue)
			})
		})

		Convey("When loading twice", func() {
			a, errA := ld.Load(context.Background(), src)
			b, errB := ld.Load(context.Background(), src)

			Convey("Then each load should get its own version", func() {
				So(errA, ShouldBeNil)
				So(errB, ShouldBeNil)
				So(a.Version, ShouldNotEqual, b.Version)
			})
		})
	})
}

func TestLoadXLSX(t *testing.T) {
	Convey("Given a force plate workbook", t, func() {
		dir := t.TempDir()
		path := writeWorkbook(t, dir, "force_plate.xlsx", [][]any{
			{"ID", "Date", "Peak_Eccentric_Force", "Peak_Concentric_Force", "Jump_Height", "Leg", "Player"},
			{1, "2024-02-01", 2000, 2100, 0.4, "Left", "Ja Morant"},
			{},
			{2, "2024-02-08", 2200, 2300, 0.5, "Right", "Ja Morant"},
		})

		Convey("When loading it", func() {
			ds, err := dataset.NewLoader().Load(context.Background(), dataset.Sources{ForcePlate: path})

			Convey("Then rows should decode like CSV", func() {
				So(err, ShouldBeNil)
				So(len(ds.Forces), ShouldEqual, 2)
				So(ds.Forces[0].Date, ShouldEqual, "2024-02-01")
				So(ds.Forces[0].PeakEccentricForce, ShouldEqual, "2000")
				So(ds.Forces[1].Leg, ShouldEqual, "Right")
				So(ds.Tracking, ShouldBeEmpty)
				So(ds.Schedule, ShouldBeEmpty)
			})
		})

		Convey("When dates are stored as date-formatted cells", func() {
			f := excelize.NewFile()
			sheet := f.GetSheetName(0)
			header := []any{"ID", "Date", "High_Accel", "High_Decel", "Distance", "Player"}
			So(f.SetSheetRow(sheet, "A1", &header), ShouldBeNil)
			So(f.SetSheetRow(sheet, "A2", &[]any{1, nil, 12, 10, 3500, "Desmond Bane"}), ShouldBeNil)
			So(f.SetSheetRow(sheet, "A3", &[]any{2, nil, 14, 11, 3600.5, "Desmond Bane"}), ShouldBeNil)
			So(f.SetSheetRow(sheet, "A4", &[]any{3, "2024-01-05", 9, 8, 3000, "Desmond Bane"}), ShouldBeNil)
			So(f.SetCellValue(sheet, "B2", time.Date(2024, time.January, 3, 0, 0, 0, 0, time.UTC)), ShouldBeNil)
			So(f.SetCellValue(sheet, "B3", time.Date(2024, time.January, 4, 18, 30, 0, 0, time.UTC)), ShouldBeNil)
			style, err := f.NewStyle(&excelize.Style{NumFmt: 14})
			So(err, ShouldBeNil)
			So(f.SetCellStyle(sheet, "B2", "B3", style), ShouldBeNil)
			trackingPath := filepath.Join(dir, "tracking.xlsx")
			So(f.SaveAs(trackingPath), ShouldBeNil)

			ds, err := dataset.NewLoader().Load(context.Background(), dataset.Sources{Tracking: trackingPath})

			Convey("Then the serials should load as record dates", func() {
				So(err, ShouldBeNil)
				So(ds.Tracking, ShouldHaveLength, 3)
				So(ds.Tracking[0].Date, ShouldEqual, "2024-01-03")
				So(ds.Tracking[1].Date, ShouldEqual, "2024-01-04 18:30:00")
				So(ds.Tracking[2].Date, ShouldEqual, "2024-01-05")
				So(ds.Tracking[1].Distance, ShouldEqual, "3600.5")
			})
		})

		Convey("When a named sheet does not exist", func() {
			_, err := dataset.NewLoader(dataset.WithSheet("Nope")).Load(context.Background(), dataset.Sources{ForcePlate: path})

			Convey("Then loading should fail", func() {
				So(err, ShouldNotBeNil)
			})
		})
	})
}

func TestLoadErrors(t *testing.T) {
	Convey("Given malformed sources", t, func() {
		dir := t.TempDir()
		ld := dataset.NewLoader()

		Convey("When a required column is missing", func() {
			p := writeFile(t, dir, "tracking.csv", "ID,Date,High_Accel,Player\n1,2024-01-01,3,Ja\n")
			_, err := ld.Load(context.Background(), dataset.Sources{Tracking: p})

			Convey("Then the error should name the column", func() {
				So(errors.Is(err, dataset.ErrMissingColumn), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, "High_Decel")
				So(err.Error(), ShouldStartWith, "tracking:")
			})
		})

		Convey("When the extension is unknown", func() {
			p := writeFile(t, dir, "schedule.json", "[]")
			_, err := ld.Load(context.Background(), dataset.Sources{Schedule: p})

			Convey("Then the format should be rejected", func() {
				So(errors.Is(err, dataset.ErrUnsupportedFormat), ShouldBeTrue)
			})
		})

		Convey("When the file is empty", func() {
			p := writeFile(t, dir, "force.csv", "")
			_, err := ld.Load(context.Background(), dataset.Sources{ForcePlate: p})

			Convey("Then it should report a missing header", func() {
				So(errors.Is(err, dataset.ErrEmptyFile), ShouldBeTrue)
			})
		})

		Convey("When the file does not exist", func() {
			_, err := ld.Load(context.Background(), dataset.Sources{ForcePlate: filepath.Join(dir, "missing.csv")})

			Convey("Then the open error should surface", func() {
				So(errors.Is(err, os.ErrNotExist), ShouldBeTrue)
			})
		})

		Convey("When the context is already cancelled", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()
			p := writeFile(t, dir, "force.csv", forceCSV)
			_, err := ld.Load(ctx, dataset.Sources{ForcePlate: p})

			Convey("Then loading should stop", func() {
				So(errors.Is(err, context.Canceled), ShouldBeTrue)
			})
		})
	})
}
