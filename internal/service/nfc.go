package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/audit"
	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/obs"
	"github.com/mrjaketay/timeApp-sub001/internal/queue"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

// NFCService binds physical cards to employees and turns taps into
// attendance events.
type NFCService struct {
	db         *sql.DB
	Cards      *repository.NFCRepo
	Employees  *repository.EmployeeRepo
	Attendance *repository.AttendanceRepo
	Events     queue.Publisher
	Now        func() time.Time
}

func NewNFCService(db *sql.DB, cards *repository.NFCRepo, emp *repository.EmployeeRepo, att *repository.AttendanceRepo, events queue.Publisher) *NFCService {
	return &NFCService{db: db, Cards: cards, Employees: emp, Attendance: att, Events: events, Now: func() time.Time { return time.Now().UTC() }}
}

var uidStripper = strings.NewReplacer(":", "", "-", "", " ", "")

// NormalizeUID upper-cases uid and drops the separators readers commonly
// print between bytes.
func NormalizeUID(uid string) string {
	return strings.ToUpper(uidStripper.Replace(strings.TrimSpace(uid)))
}

// Register binds uid to an active employee of the actor's company.
func (s *NFCService) Register(ctx context.Context, actor *Actor, uid, employeeProfileID string) (*model.NFCCard, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	uid = NormalizeUID(uid)
	if uid == "" {
		return nil, validationf("uid is required")
	}
	employeeProfileID = strings.TrimSpace(employeeProfileID)
	if employeeProfileID == "" {
		return nil, validationf("employeeProfileId is required")
	}

	taken, err := s.Cards.UIDExists(ctx, uid)
	if err != nil {
		return nil, internal("check uid", err)
	}
	if taken {
		return nil, conflict(MsgCardRegistered)
	}

	emp, err := s.Employees.GetInCompany(ctx, actor.CompanyID, employeeProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, notFound(MsgEmployeeNotFound)
		}
		return nil, internal("load employee", err)
	}
	if !emp.IsActive {
		return nil, notFound(MsgEmployeeNotFound)
	}

	card := &model.NFCCard{
		UID:               uid,
		EmployeeProfileID: emp.ID,
		CompanyID:         actor.CompanyID,
		RegisteredBy:      actor.UserID,
		RegisteredAt:      s.Now(),
		EmployeeName:      emp.Name,
	}
	if err := s.Cards.Create(ctx, card); err != nil {
		if errors.Is(err, repository.ErrCardExists) {
			return nil, conflict(MsgCardRegistered)
		}
		return nil, internal("create card", err)
	}

	_ = audit.LogEvent(ctx, "nfc.registered", map[string]any{"card_id": card.ID, "uid": card.UID, "employee_profile_id": emp.ID})
	queue.Emit(ctx, s.Events, queue.NFCCardRegistered, card.CompanyID, queue.NFCCardRegisteredEvent{
		CardID: card.ID, UID: card.UID, EmployeeProfileID: emp.ID, RegisteredBy: actor.UserID,
	})
	return card, nil
}

// List returns the company's cards.
func (s *NFCService) List(ctx context.Context, actor *Actor) ([]model.NFCCard, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	cards, err := s.Cards.ListByCompany(ctx, actor.CompanyID)
	if err != nil {
		return nil, internal("list cards", err)
	}
	return cards, nil
}

// Deactivate disables a card of the actor's company.
func (s *NFCService) Deactivate(ctx context.Context, actor *Actor, cardID string) error {
	if err := requireEmployer(actor); err != nil {
		return err
	}
	if err := s.Cards.Deactivate(ctx, actor.CompanyID, cardID); err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return notFound(MsgCardNotFound)
		}
		return internal("deactivate card", err)
	}
	_ = audit.LogEvent(ctx, "nfc.deactivated", map[string]any{"card_id": cardID, "company_id": actor.CompanyID})
	return nil
}

// TapInput is a reading from a kiosk.
type TapInput struct {
	UID            string
	Lat, Lng       float64
	AccuracyMeters float64
	Address        string
}

// Tap records the opposite of the employee's last event: CLOCK_OUT after a
// CLOCK_IN, CLOCK_IN otherwise.
func (s *NFCService) Tap(ctx context.Context, actor *Actor, in TapInput) (*model.AttendanceEvent, error) {
	if err := requireEmployer(actor); err != nil {
		return nil, err
	}
	uid := NormalizeUID(in.UID)
	if uid == "" {
		return nil, validationf("uid is required")
	}
	if err := validateLocation(in.Lat, in.Lng, in.AccuracyMeters); err != nil {
		return nil, err
	}

	card, err := s.Cards.GetActiveByUID(ctx, actor.CompanyID, uid)
	if err != nil {
		if errors.Is(err, repository.ErrCardNotFound) {
			return nil, notFound(MsgCardNotFound)
		}
		return nil, internal("load card", err)
	}
	emp, err := s.Employees.GetInCompany(ctx, actor.CompanyID, card.EmployeeProfileID)
	if err != nil {
		if errors.Is(err, repository.ErrEmployeeNotFound) {
			return nil, notFound(MsgEmployeeNotFound)
		}
		return nil, internal("load employee", err)
	}
	if !emp.IsActive {
		return nil, notFound(MsgEmployeeNotFound)
	}

	now := s.Now()
	ev := &model.AttendanceEvent{
		EmployeeProfileID: emp.ID,
		CompanyID:         actor.CompanyID,
		CapturedAt:        now,
		LocationLat:       in.Lat,
		LocationLng:       in.Lng,
		AccuracyMeters:    in.AccuracyMeters,
		Address:           optional(in.Address),
		Source:            model.SourceNFC,
		NFCCardID:         &card.ID,
		EmployeeName:      emp.Name,
		EmployeeEmail:     emp.Email,
		EmployeeCode:      emp.EmployeeID,
	}
	// The card row lock orders concurrent taps so each one sees the event
	// the previous tap recorded.
	err = database.WithTx(ctx, s.db, func(tx *sql.Tx) error {
		if err := s.Cards.LockActiveTx(ctx, tx, card.ID); err != nil {
			if errors.Is(err, repository.ErrCardNotFound) {
				return notFound(MsgCardNotFound)
			}
			return internal("lock card", err)
		}
		last, err := s.Attendance.LastForEmployeeTx(ctx, tx, actor.CompanyID, emp.ID)
		switch {
		case errors.Is(err, repository.ErrEventNotFound):
			ev.EventType = model.ClockIn
		case err != nil:
			return internal("load last event", err)
		default:
			ev.EventType = NextEventType(last.EventType)
		}
		if err := s.Attendance.CreateTx(ctx, tx, ev); err != nil {
			return internal("record tap", err)
		}
		if err := s.Cards.TouchTx(ctx, tx, card.ID, now); err != nil {
			return internal("touch card", err)
		}
		return nil
	})
	if err != nil {
		return nil, classify("record tap", err)
	}

	obs.AttendanceEvents.WithLabelValues(string(ev.EventType), string(ev.Source)).Inc()
	_ = audit.LogEvent(ctx, "attendance.recorded", map[string]any{"event_id": ev.ID, "employee_profile_id": emp.ID, "event_type": ev.EventType, "source": ev.Source})
	queue.Emit(ctx, s.Events, queue.AttendanceRecorded, ev.CompanyID, recordedEvent(ev))
	return ev, nil
}

// NextEventType is what a toggle records after last.
func NextEventType(last model.EventType) model.EventType {
	if last == model.ClockIn {
		return model.ClockOut
	}
	return model.ClockIn
}
