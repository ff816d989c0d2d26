package report

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

func sampleEvents() []model.AttendanceEvent {
	code := "E-1"
	addr := `12 "Main" St`
	base := time.Date(2024, 3, 4, 9, 0, 0, 0, time.UTC)
	return []model.AttendanceEvent{
		{EmployeeName: "Ada", EmployeeEmail: "ada@example.com", EmployeeCode: &code, EventType: model.ClockIn, CapturedAt: base, LocationLat: 51.5, LocationLng: -0.12, AccuracyMeters: 5, Address: &addr},
		{EmployeeName: "Ada", EmployeeEmail: "ada@example.com", EmployeeCode: &code, EventType: model.ClockOut, CapturedAt: base.Add(8 * time.Hour), LocationLat: 51.5, LocationLng: -0.12, AccuracyMeters: 5},
		{EmployeeName: "Bob", EmployeeEmail: "bob@example.com", EventType: model.ClockIn, CapturedAt: base.Add(time.Hour), LocationLat: 1, LocationLng: 2, AccuracyMeters: 0},
	}
}

func TestRenderCSVQuotesEveryField(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderCSV(&buf, AttendanceTable(sampleEvents(), time.UTC)); err != nil {
		t.Fatalf("render: %v", err)
	}
	out := buf.String()
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header + 3 rows, got %d lines:\n%s", len(lines), out)
	}
	if !strings.HasPrefix(lines[0], `"Employee ID","Employee Name","Email"`) {
		t.Fatalf("unexpected header %q", lines[0])
	}
	want := `"E-1","Ada","ada@example.com","CLOCK_IN","2024-03-04T09:00:00Z","51.5","-0.12","5","12 ""Main"" St"`
	if lines[1] != want {
		t.Fatalf("row 1:\n got %s\nwant %s", lines[1], want)
	}
	if strings.Contains(out, "\r") {
		t.Fatalf("csv must not contain CR")
	}
}

func TestAttendanceTableUsesCompanyZone(t *testing.T) {
	loc := time.FixedZone("UTC+2", 2*3600)
	tbl := AttendanceTable(sampleEvents()[:1], loc)
	if got := tbl.Rows[0][4]; got != "2024-03-04T11:00:00+02:00" {
		t.Fatalf("captured at = %s", got)
	}
}

func TestRenderXLSXIsRealWorkbook(t *testing.T) {
	var buf bytes.Buffer
	if err := RenderXLSX(&buf, AttendanceTable(sampleEvents(), time.UTC)); err != nil {
		t.Fatalf("render: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("PK")) {
		t.Fatalf("xlsx should be a zip archive")
	}
	f, err := excelize.OpenReader(bytes.NewReader(buf.Bytes()))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer func() { _ = f.Close() }()

	rows, err := f.GetRows(SheetName)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("want 4 rows, got %d", len(rows))
	}
	if rows[0][0] != "Employee ID" || rows[3][1] != "Bob" {
		t.Fatalf("unexpected content: %v", rows)
	}
}

func TestTimesheetTableOpenDay(t *testing.T) {
	evs := sampleEvents()
	hours := 8.0
	out := evs[1]
	rows := []model.Timesheet{
		{Date: "2024-03-04", EmployeeName: "Ada", ClockIn: evs[0], ClockOut: &out, HoursWorked: &hours},
		{Date: "2024-03-04", EmployeeName: "Bob", ClockIn: evs[2]},
	}
	tbl := TimesheetTable(rows, time.UTC)
	if tbl.Rows[0][6] != "8.00" {
		t.Fatalf("hours = %q", tbl.Rows[0][6])
	}
	if tbl.Rows[1][5] != "" || tbl.Rows[1][6] != "" {
		t.Fatalf("open day should leave clock out empty: %v", tbl.Rows[1])
	}
}

func TestParseAndFilename(t *testing.T) {
	f, err := ParseFormat("")
	if err != nil || f != FormatCSV {
		t.Fatalf("default format = %v, %v", f, err)
	}
	if _, err := ParseFormat("pdf"); err == nil {
		t.Fatalf("pdf should be rejected")
	}
	typ, err := ParseType("")
	if err != nil || typ != TypeAttendance {
		t.Fatalf("default type = %v, %v", typ, err)
	}
	if got := Filename(TypeTimesheet, "2024-01-01", "2024-02-01", FormatExcel); got != "timesheet-report-2024-01-01-to-2024-02-01.xlsx" {
		t.Fatalf("filename = %s", got)
	}
	if FormatExcel.ContentType() != "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet" {
		t.Fatalf("excel content type")
	}
}
