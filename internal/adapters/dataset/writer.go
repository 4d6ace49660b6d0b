package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/perfdash/internal/domain/model"
)

const defaultSheet = "Sheet1"

// WriteDataset writes ds as three files under dir in the given format
// ("csv" or "xlsx") and returns their paths.
func WriteDataset(dir, format string, ds Dataset) (Sources, error) {
	ext := "." + strings.ToLower(strings.TrimPrefix(format, "."))
	if ext != ".csv" && ext != ".xlsx" {
		return Sources{}, fmt.Errorf("%w: %s", ErrUnsupportedFormat, format)
	}
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return Sources{}, fmt.Errorf("create %s: %w", dir, err)
	}
	src := Sources{
		ForcePlate: filepath.Join(dir, "force_plate"+ext),
		Tracking:   filepath.Join(dir, "tracking"+ext),
		Schedule:   filepath.Join(dir, "schedule"+ext),
	}
	if err := writeTable(src.ForcePlate, encodeForces(ds.Forces)); err != nil {
		return Sources{}, err
	}
	if err := writeTable(src.Tracking, encodeTracking(ds.Tracking)); err != nil {
		return Sources{}, err
	}
	if err := writeTable(src.Schedule, encodeSchedule(ds.Schedule)); err != nil {
		return Sources{}, err
	}
	return src, nil
}

// writeTable is the inverse of readTable.
func writeTable(path string, rows [][]string) error {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return writeCSV(path, rows)
	case ".xlsx", ".xlsm":
		return writeXLSX(path, rows)
	default:
		return fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func writeCSV(path string, rows [][]string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	w := csv.NewWriter(f)
	if err := w.WriteAll(rows); err != nil {
		_ = f.Close()
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func writeXLSX(path string, rows [][]string) error {
	f := excelize.NewFile()
	defer f.Close()

	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		vals := make([]any, len(row))
		for j, v := range row {
			vals[j] = v
		}
		if err := f.SetSheetRow(defaultSheet, cell, &vals); err != nil {
			return fmt.Errorf("write %s row %d: %w", path, i+1, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	return nil
}

func encodeForces(fs []model.Force) [][]string {
	rows := make([][]string, 0, len(fs)+1)
	rows = append(rows, append([]string{"ID"}, forceColumns...))
	for _, f := range fs {
		rows = append(rows, []string{
			strconv.Itoa(f.ID), f.Date, f.PeakEccentricForce, f.PeakConcentricForce, f.JumpHeight, f.Leg, f.Player,
		})
	}
	return rows
}

func encodeTracking(ts []model.Tracking) [][]string {
	rows := make([][]string, 0, len(ts)+1)
	rows = append(rows, append([]string{"ID"}, trackingColumns...))
	for _, t := range ts {
		rows = append(rows, []string{
			strconv.Itoa(t.ID), t.Date, t.HighAccel, t.HighDecel, t.Distance, t.Player,
		})
	}
	return rows
}

func encodeSchedule(es []model.ScheduleEntry) [][]string {
	rows := make([][]string, 0, len(es)+1)
	rows = append(rows, []string{"ID", "Date", "Type"})
	for _, e := range es {
		rows = append(rows, []string{strconv.Itoa(e.ID), e.Date, string(e.Type)})
	}
	return rows
}
