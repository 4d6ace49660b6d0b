package dataset

import (
	"encoding/csv"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/okian/perfdash/internal/domain/timebucket"
)

const dateColumn = "Date"

// maxExcelSerial is 9999-12-31, the last date a worksheet can hold.
const maxExcelSerial = 2958465

// readTable returns every row of a CSV file or of the first worksheet of an
// XLSX workbook. The format follows the file extension.
func readTable(path, sheet string) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		return readCSV(path)
	case ".xlsx", ".xlsm":
		return readXLSX(path, sheet)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, path)
	}
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return rows, nil
}

func readXLSX(path, sheet string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()

	if sheet == "" {
		sheets := f.GetSheetList()
		if len(sheets) == 0 {
			return nil, fmt.Errorf("%w: %s has no sheets", ErrEmptyFile, path)
		}
		sheet = sheets[0]
	}
	// Raw values keep date cells as serials instead of their display format.
	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read %s sheet %q: %w", path, sheet, err)
	}
	date1904 := false
	if props, err := f.GetWorkbookProps(); err == nil && props.Date1904 != nil {
		date1904 = *props.Date1904
	}
	serialDates(rows, dateColumn, date1904)
	return rows, nil
}

// serialDates rewrites Excel date serials in col as record date strings.
// Cells holding text dates are left as they are.
func serialDates(rows [][]string, col string, date1904 bool) {
	if len(rows) == 0 {
		return
	}
	idx := slices.IndexFunc(rows[0], func(name string) bool {
		return strings.TrimSpace(strings.TrimPrefix(name, utf8BOM)) == col
	})
	if idx < 0 {
		return
	}
	for _, row := range rows[1:] {
		if idx >= len(row) {
			continue
		}
		serial, err := strconv.ParseFloat(strings.TrimSpace(row[idx]), 64)
		if err != nil || serial <= 0 || serial > maxExcelSerial {
			continue
		}
		t, err := excelize.ExcelDateToTime(serial, date1904)
		if err != nil {
			continue
		}
		layout := timebucket.DayLayout
		if !t.Equal(timebucket.Midnight(t)) {
			layout = timebucket.DateTimeLayout
		}
		row[idx] = t.Format(layout)
	}
}
