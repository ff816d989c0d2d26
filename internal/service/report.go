package service

import (
	"bytes"
	"context"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/report"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// ExportInput is the query of GET /reports/export.
type ExportInput struct {
	Range      DateRange
	Format     string
	ReportType string
	EmployeeID string
}

// Export is a rendered report ready to be served.
type Export struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders attendance and timesheet exports.
type ReportService struct {
	Events    *repository.AttendanceRepo
	Companies *repository.CompanyRepo
}

func NewReportService(events *repository.AttendanceRepo, companies *repository.CompanyRepo) *ReportService {
	return &ReportService{Events: events, Companies: companies}
}

// Export renders company events in [start, end) as CSV or XLSX.
func (s *ReportService) Export(ctx context.Context, actor *Actor, in ExportInput) (*Export, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	format, err := report.ParseFormat(in.Format)
	if err != nil {
		return nil, validationf("format must be csv or excel")
	}
	typ, err := report.ParseType(in.ReportType)
	if err != nil {
		return nil, validationf("reportType must be attendance or timesheet")
	}
	_, loc, err := companyLocation(ctx, s.Companies, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	start, end, err := in.Range.Bounds(loc)
	if err != nil {
		return nil, err
	}

	events, err := s.Events.List(ctx, repository.EventFilter{
		CompanyID:  actor.CompanyID,
		EmployeeID: optional(in.EmployeeID),
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, internal("list events", err)
	}

	var table report.Table
	if typ == report.TypeTimesheet {
		table = report.TimesheetTable(DeriveRange(events, loc), loc)
	} else {
		table = report.AttendanceTable(events, loc)
	}

	var buf bytes.Buffer
	if err := report.Render(&buf, format, table); err != nil {
		return nil, internal("render report", err)
	}
	return &Export{
		Filename:    report.Filename(typ, strings.TrimSpace(in.Range.StartDate), strings.TrimSpace(in.Range.EndDate), format),
		ContentType: format.ContentType(),
		Body:        buf.Bytes(),
	}, nil
}
