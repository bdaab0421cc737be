// Package export renders attendance sheets as XLSX workbooks.
package export

import (
	"fmt"
	"io"

	"github.com/xuri/excelize/v2"

	"academy/internal/attendance"
	"academy/internal/model"
)

// SheetName is the name of the single worksheet written.
const SheetName = "Attendance"

var weekdays = []string{"Sun", "Mon", "Tue", "Wed", "Thu", "Fri", "Sat"}

// MonthlySheet writes sheet as a calendar: a title row, a weekday header,
// one row per week with "day P" or "day A" cells, then the totals.
func MonthlySheet(w io.Writer, sheet *attendance.Sheet) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return err
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return err
	}

	title := fmt.Sprintf("%s - %s", sheet.StudentName, sheet.Grid.Month.Token())
	if err := f.SetCellValue(SheetName, "A1", title); err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, "A2", &weekdays); err != nil {
		return err
	}
	if err := f.SetCellStyle(SheetName, "A1", "G2", bold); err != nil {
		return err
	}

	row := 3
	for _, week := range sheet.Grid.Weeks() {
		for i, cell := range week {
			if cell.Blank() {
				continue
			}
			st, _ := sheet.Status(cell.Date)
			name, err := excelize.CoordinatesToCellName(i+1, row)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(SheetName, name, fmt.Sprintf("%d %s", cell.Day, mark(st))); err != nil {
				return err
			}
		}
		row++
	}

	sum := sheet.Summary()
	totals := []any{"Present", sum.Present, "Absent", sum.Absent, "Total", sum.Total}
	start, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return err
	}
	if err := f.SetSheetRow(SheetName, start, &totals); err != nil {
		return err
	}
	_, err = f.WriteTo(w)
	return err
}

func mark(st model.Status) string {
	if st == model.Present {
		return "P"
	}
	return "A"
}
