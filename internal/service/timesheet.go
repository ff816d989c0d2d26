package service

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// DeriveDay pairs the first CLOCK_IN of events with the first CLOCK_OUT
// that follows it.  events must belong to one employee and one day; they
// are sorted here.  It returns nil when there is no CLOCK_IN.
func DeriveDay(date string, events []model.AttendanceEvent) *model.Timesheet {
	sorted := make([]model.AttendanceEvent, len(events))
	copy(sorted, events)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].CapturedAt.Before(sorted[j].CapturedAt) })

	in := -1
	for i, ev := range sorted {
		if ev.EventType == model.ClockIn {
			in = i
			break
		}
	}
	if in < 0 {
		return nil
	}
	ts := &model.Timesheet{
		Date:              date,
		EmployeeProfileID: sorted[in].EmployeeProfileID,
		EmployeeName:      sorted[in].EmployeeName,
		ClockIn:           sorted[in],
	}
	for _, ev := range sorted[in+1:] {
		if ev.EventType == model.ClockOut {
			out := ev
			ts.ClockOut = &out
			hours := ts.Duration().Hours()
			ts.HoursWorked = &hours
			break
		}
	}
	return ts
}

// DeriveRange groups events by employee and calendar day in loc and
// derives one timesheet per group.  Rows are ordered by date, then
// employee name.
func DeriveRange(events []model.AttendanceEvent, loc *time.Location) []model.Timesheet {
	type key struct{ employee, date string }
	groups := map[key][]model.AttendanceEvent{}
	var order []key
	for _, ev := range events {
		k := key{ev.EmployeeProfileID, ev.CapturedAt.In(loc).Format(dateLayout)}
		if _, ok := groups[k]; !ok {
			order = append(order, k)
		}
		groups[k] = append(groups[k], ev)
	}

	out := []model.Timesheet{}
	for _, k := range order {
		if ts := DeriveDay(k.date, groups[k]); ts != nil {
			out = append(out, *ts)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		if out[i].EmployeeName != out[j].EmployeeName {
			return out[i].EmployeeName < out[j].EmployeeName
		}
		return out[i].EmployeeProfileID < out[j].EmployeeProfileID
	})
	return out
}

// TimesheetService derives timesheets from stored events.
type TimesheetService struct {
	Events    *repository.AttendanceRepo
	Companies *repository.CompanyRepo
}

func NewTimesheetService(events *repository.AttendanceRepo, companies *repository.CompanyRepo) *TimesheetService {
	return &TimesheetService{Events: events, Companies: companies}
}

// Derive returns the timesheets of a single day (YYYY-MM-DD in the company
// time zone), optionally for one employee.
func (s *TimesheetService) Derive(ctx context.Context, actor *Actor, date, employeeID string) ([]model.Timesheet, error) {
	date = strings.TrimSpace(date)
	if date == "" {
		return nil, validationf("date is required")
	}
	d, err := time.Parse(dateLayout, date)
	if err != nil {
		return nil, validationf("date must be YYYY-MM-DD")
	}
	return s.Range(ctx, actor, DateRange{StartDate: date, EndDate: d.AddDate(0, 0, 1).Format(dateLayout)}, employeeID)
}

// Range returns one timesheet per employee and day with events in r.
func (s *TimesheetService) Range(ctx context.Context, actor *Actor, r DateRange, employeeID string) ([]model.Timesheet, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	_, loc, err := companyLocation(ctx, s.Companies, actor.CompanyID)
	if err != nil {
		return nil, err
	}
	start, end, err := r.Bounds(loc)
	if err != nil {
		return nil, err
	}
	events, err := s.Events.List(ctx, repository.EventFilter{
		CompanyID:  actor.CompanyID,
		EmployeeID: optional(employeeID),
		Start:      start,
		End:        end,
	})
	if err != nil {
		return nil, internal("list events", err)
	}
	return DeriveRange(events, loc), nil
}
