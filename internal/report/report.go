// Package report renders attendance data as downloadable CSV or XLSX
// tables.
package report

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// Format is an export file format.
type Format string

const (
	FormatCSV   Format = "csv"
	FormatExcel Format = "excel"
)

// ParseFormat accepts "csv" (the default for an empty value) and "excel".
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "csv":
		return FormatCSV, nil
	case "excel", "xlsx":
		return FormatExcel, nil
	}
	return "", fmt.Errorf("unsupported format %q", s)
}

// ContentType is the MIME type served for f.
func (f Format) ContentType() string {
	if f == FormatExcel {
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	return "text/csv; charset=utf-8"
}

// Extension is the file extension for f, without the dot.
func (f Format) Extension() string {
	if f == FormatExcel {
		return "xlsx"
	}
	return "csv"
}

// Type selects which rows a report holds.
type Type string

const (
	TypeAttendance Type = "attendance"
	TypeTimesheet  Type = "timesheet"
)

// ParseType accepts "attendance" (the default) and "timesheet".
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "attendance":
		return TypeAttendance, nil
	case "timesheet", "timesheets":
		return TypeTimesheet, nil
	}
	return "", fmt.Errorf("unsupported reportType %q", s)
}

// Filename builds the Content-Disposition file name.
func Filename(t Type, startDate, endDate string, f Format) string {
	return fmt.Sprintf("%s-report-%s-to-%s.%s", t, startDate, endDate, f.Extension())
}

// Table is a header row plus data rows of equal width.
type Table struct {
	Header []string
	Rows   [][]string
}

// SheetName is the single worksheet of an XLSX export.
const SheetName = "Report"

var attendanceHeader = []string{
	"Employee ID", "Employee Name", "Email", "Event Type", "Captured At",
	"Latitude", "Longitude", "Accuracy (m)", "Address",
}

var timesheetHeader = []string{
	"Date", "Employee ID", "Employee Name", "Email", "Clock In", "Clock Out", "Hours Worked",
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

func formatFloat(v float64) string { return strconv.FormatFloat(v, 'f', -1, 64) }

// AttendanceTable renders one row per event, timestamps in loc.
func AttendanceTable(events []model.AttendanceEvent, loc *time.Location) Table {
	t := Table{Header: attendanceHeader, Rows: make([][]string, 0, len(events))}
	for _, ev := range events {
		t.Rows = append(t.Rows, []string{
			deref(ev.EmployeeCode),
			ev.EmployeeName,
			ev.EmployeeEmail,
			string(ev.EventType),
			ev.CapturedAt.In(loc).Format(time.RFC3339),
			formatFloat(ev.LocationLat),
			formatFloat(ev.LocationLng),
			formatFloat(ev.AccuracyMeters),
			deref(ev.Address),
		})
	}
	return t
}

// TimesheetTable renders one row per derived day.  Open days leave the
// clock-out and hours cells empty.
func TimesheetTable(rows []model.Timesheet, loc *time.Location) Table {
	t := Table{Header: timesheetHeader, Rows: make([][]string, 0, len(rows))}
	for _, ts := range rows {
		out, hours := "", ""
		if ts.ClockOut != nil {
			out = ts.ClockOut.CapturedAt.In(loc).Format(time.RFC3339)
		}
		if ts.HoursWorked != nil {
			hours = strconv.FormatFloat(*ts.HoursWorked, 'f', 2, 64)
		}
		t.Rows = append(t.Rows, []string{
			ts.Date,
			deref(ts.ClockIn.EmployeeCode),
			ts.EmployeeName,
			ts.ClockIn.EmployeeEmail,
			ts.ClockIn.CapturedAt.In(loc).Format(time.RFC3339),
			out,
			hours,
		})
	}
	return t
}

func quote(field string) string {
	return `"` + strings.ReplaceAll(field, `"`, `""`) + `"`
}

// RenderCSV writes t with every field quoted and "\n" line endings.
func RenderCSV(w io.Writer, t Table) error {
	var b strings.Builder
	writeRow := func(row []string) {
		for i, f := range row {
			if i > 0 {
				b.WriteByte(',')
			}
			b.WriteString(quote(f))
		}
		b.WriteByte('\n')
	}
	writeRow(t.Header)
	for _, r := range t.Rows {
		writeRow(r)
	}
	_, err := io.WriteString(w, b.String())
	return err
}

// RenderXLSX writes t as a single-sheet workbook.
func RenderXLSX(w io.Writer, t Table) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	if err := f.SetSheetName(f.GetSheetName(0), SheetName); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}
	write := func(rowIdx int, values []string) error {
		cell, err := excelize.CoordinatesToCellName(1, rowIdx)
		if err != nil {
			return err
		}
		row := make([]any, len(values))
		for i, v := range values {
			row[i] = v
		}
		return f.SetSheetRow(SheetName, cell, &row)
	}
	if err := write(1, t.Header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	for i, r := range t.Rows {
		if err := write(i+2, r); err != nil {
			return fmt.Errorf("write row %d: %w", i+1, err)
		}
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// Render dispatches on f.
func Render(w io.Writer, f Format, t Table) error {
	if f == FormatExcel {
		return RenderXLSX(w, t)
	}
	return RenderCSV(w, t)
}
