package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/audit"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/obs"
	"github.com/mrjaketay/timeApp-sub001/internal/queue"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// RecordInput is a clock event submitted from the app.
type RecordInput struct {
	EventType      string
	Lat, Lng       float64
	AccuracyMeters float64
	Address        string
}

// AttendanceService records and reads clock events.
type AttendanceService struct {
	Events    *repository.AttendanceRepo
	Employees *repository.EmployeeRepo
	Companies *repository.CompanyRepo
	Publisher queue.Publisher
	Now       func() time.Time
}

func NewAttendanceService(events *repository.AttendanceRepo, emp *repository.EmployeeRepo, comp *repository.CompanyRepo, pub queue.Publisher) *AttendanceService {
	return &AttendanceService{Events: events, Employees: emp, Companies: comp, Publisher: pub, Now: func() time.Time { return time.Now().UTC() }}
}

func validateLocation(lat, lng, accuracy float64) error {
	if lat < -90 || lat > 90 {
		return validationf("locationLat must be between -90 and 90")
	}
	if lng < -180 || lng > 180 {
		return validationf("locationLng must be between -180 and 180")
	}
	if accuracy < 0 {
		return validationf("accuracyMeters must not be negative")
	}
	return nil
}

func recordedEvent(ev *model.AttendanceEvent) queue.AttendanceRecordedEvent {
	return queue.AttendanceRecordedEvent{
		EventID:           ev.ID,
		EmployeeProfileID: ev.EmployeeProfileID,
		EventType:         string(ev.EventType),
		Source:            string(ev.Source),
		CapturedAt:        ev.CapturedAt,
	}
}

// profileFor resolves the actor to the active employee profile in its
// tenant with the same email.
func (s *AttendanceService) profileFor(ctx context.Context, actor *Actor) (*model.EmployeeProfile, error) {
	if !actor.HasCompany() {
		return nil, notFound(MsgEmployeeNotFound)
	}
	p, err := s.Employees.FindActiveByEmail(ctx, actor.CompanyID, actor.Email)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, notFound(MsgEmployeeNotFound)
		}
		return nil, internal("load employee", err)
	}
	return p, nil
}

// RecordEvent stores a CLOCK_IN or CLOCK_OUT for the caller.  Events are
// kept as submitted; alternation is not enforced.
func (s *AttendanceService) RecordEvent(ctx context.Context, actor *Actor, in RecordInput) (*model.AttendanceEvent, error) {
	if actor == nil {
		return nil, unauthorized()
	}
	et := model.EventType(strings.ToUpper(strings.TrimSpace(in.EventType)))
	if !et.Valid() {
		return nil, validationf("eventType must be CLOCK_IN or CLOCK_OUT")
	}
	if err := validateLocation(in.Lat, in.Lng, in.AccuracyMeters); err != nil {
		return nil, err
	}
	p, err := s.profileFor(ctx, actor)
	if err != nil {
		return nil, err
	}

	ev := &model.AttendanceEvent{
		EmployeeProfileID: p.ID,
		CompanyID:         p.CompanyID,
		EventType:         et,
		CapturedAt:        s.Now(),
		LocationLat:       in.Lat,
		LocationLng:       in.Lng,
		AccuracyMeters:    in.AccuracyMeters,
		Address:           optional(in.Address),
		Source:            model.SourceApp,
		EmployeeName:      p.Name,
		EmployeeEmail:     p.Email,
		EmployeeCode:      p.EmployeeID,
	}
	if err := s.Events.Create(ctx, ev); err != nil {
		return nil, internal("record event", err)
	}

	obs.AttendanceEvents.WithLabelValues(string(ev.EventType), string(ev.Source)).Inc()
	_ = audit.LogEvent(ctx, "attendance.recorded", map[string]any{"event_id": ev.ID, "employee_profile_id": p.ID, "event_type": ev.EventType, "source": ev.Source})
	queue.Emit(ctx, s.Publisher, queue.AttendanceRecorded, ev.CompanyID, recordedEvent(ev))
	return ev, nil
}

// LastEvent returns the caller's newest event, or nil when the caller has
// no profile or no events yet.
func (s *AttendanceService) LastEvent(ctx context.Context, actor *Actor) (*model.AttendanceEvent, error) {
	if actor == nil {
		return nil, unauthorized()
	}
	p, err := s.profileFor(ctx, actor)
	if err != nil {
		if KindOf(err) == KindNotFound {
			return nil, nil
		}
		return nil, err
	}
	ev, err := s.Events.LastForEmployee(ctx, p.CompanyID, p.ID)
	if err != nil {
		if errors.Is(err, repository.ErrEventNotFound) {
			return nil, nil
		}
		return nil, internal("load last event", err)
	}
	return ev, nil
}

// DateRange is a half-open [Start, End) range of calendar days as given
// by the caller (YYYY-MM-DD) and resolved in a company's time zone.
type DateRange struct {
	StartDate string
	EndDate   string
}

const dateLayout = "2006-01-02"

// Bounds parses the range in loc.  Both dates are required and end must be
// after start.
func (r DateRange) Bounds(loc *time.Location) (time.Time, time.Time, error) {
	if strings.TrimSpace(r.StartDate) == "" || strings.TrimSpace(r.EndDate) == "" {
		return time.Time{}, time.Time{}, validationf("startDate and endDate are required")
	}
	start, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.StartDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("startDate must be YYYY-MM-DD")
	}
	end, err := time.ParseInLocation(dateLayout, strings.TrimSpace(r.EndDate), loc)
	if err != nil {
		return time.Time{}, time.Time{}, validationf("endDate must be YYYY-MM-DD")
	}
	if !end.After(start) {
		return time.Time{}, time.Time{}, validationf("endDate must be after startDate")
	}
	return start, end, nil
}

// companyLocation loads the actor's company time zone.
func companyLocation(ctx context.Context, companies *repository.CompanyRepo, companyID string) (*model.Company, *time.Location, error) {
	c, err := companies.GetByID(ctx, companyID)
	if err != nil {
		if errors.Is(err, repository.ErrCompanyNotFound) {
			return nil, nil, unauthorized()
		}
		return nil, nil, internal("load company", err)
	}
	return c, c.Location(), nil
}

// List returns company events in the range, ascending.  An empty
// employeeID means every employee.
func (s *AttendanceService) List(ctx context.Context, actor *Actor, r DateRange, employeeID string) ([]model.AttendanceEvent, error) {
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
	return events, nil
}
