package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// EventFilter selects attendance events.  Zero-valued optional fields are
// ignored; CompanyID is always applied.
type EventFilter struct {
	CompanyID  string
	EmployeeID *string
	Start      time.Time // inclusive
	End        time.Time // exclusive
}

// Where renders the filter into a WHERE clause over alias "a" and its
// positional args.
func (f EventFilter) Where() (string, []any) {
	where := []string{"a.company_id = ?"}
	args := []any{f.CompanyID}
	if f.EmployeeID != nil && *f.EmployeeID != "" {
		where = append(where, "a.employee_profile_id = ?")
		args = append(args, *f.EmployeeID)
	}
	if !f.Start.IsZero() {
		where = append(where, "a.captured_at >= ?")
		args = append(args, f.Start.UTC())
	}
	if !f.End.IsZero() {
		where = append(where, "a.captured_at < ?")
		args = append(args, f.End.UTC())
	}
	return strings.Join(where, " AND "), args
}

// AttendanceRepo stores immutable clock events.  There is intentionally no
// update or delete.
type AttendanceRepo struct {
	db *sql.DB
}

func NewAttendanceRepo(db *sql.DB) *AttendanceRepo { return &AttendanceRepo{db: db} }


// Create inserts ev outside a transaction.
func (r *AttendanceRepo) Create(ctx context.Context, ev *model.AttendanceEvent) error {
	return r.create(ctx, r.db, ev)
}

// CreateTx inserts ev inside tx.
func (r *AttendanceRepo) CreateTx(ctx context.Context, tx *sql.Tx, ev *model.AttendanceEvent) error {
	return r.create(ctx, tx, ev)
}

func (r *AttendanceRepo) create(ctx context.Context, q querier, ev *model.AttendanceEvent) error {
	ev.ID = ids.New()
	if ev.Source == "" {
		ev.Source = model.SourceApp
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO attendance_events
		 (id, employee_profile_id, company_id, event_type, captured_at, location_lat, location_lng, accuracy_meters, address, source, nfc_card_id)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		ev.ID, ev.EmployeeProfileID, ev.CompanyID, string(ev.EventType), ev.CapturedAt.UTC(),
		ev.LocationLat, ev.LocationLng, ev.AccuracyMeters, nullString(ev.Address), string(ev.Source), nullString(ev.NFCCardID))
	return err
}

const eventSelect = `SELECT a.id, a.employee_profile_id, a.company_id, a.event_type, a.captured_at,
	a.location_lat, a.location_lng, a.accuracy_meters, a.address, a.source, a.nfc_card_id,
	e.name, e.email, e.employee_id
	FROM attendance_events a JOIN employee_profiles e ON e.id = a.employee_profile_id`

// LastForEmployee returns the newest event by captured_at, or
// ErrEventNotFound.
func (r *AttendanceRepo) LastForEmployee(ctx context.Context, companyID, employeeID string) (*model.AttendanceEvent, error) {
	return r.lastForEmployee(ctx, r.db, companyID, employeeID)
}

// LastForEmployeeTx is LastForEmployee inside tx.
func (r *AttendanceRepo) LastForEmployeeTx(ctx context.Context, tx *sql.Tx, companyID, employeeID string) (*model.AttendanceEvent, error) {
	return r.lastForEmployee(ctx, tx, companyID, employeeID)
}

func (r *AttendanceRepo) lastForEmployee(ctx context.Context, q querier, companyID, employeeID string) (*model.AttendanceEvent, error) {
	return scanEvent(q.QueryRowContext(ctx,
		eventSelect+" WHERE a.company_id = ? AND a.employee_profile_id = ? ORDER BY a.captured_at DESC, a.id DESC LIMIT 1",
		companyID, employeeID))
}

// List returns events matching f ordered by captured_at ascending.
func (r *AttendanceRepo) List(ctx context.Context, f EventFilter) ([]model.AttendanceEvent, error) {
	cond, args := f.Where()
	rows, err := r.db.QueryContext(ctx, eventSelect+" WHERE "+cond+" ORDER BY a.captured_at ASC, a.id ASC", args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.AttendanceEvent{}
	for rows.Next() {
		ev, err := scanEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *ev)
	}
	return out, rows.Err()
}

func scanEvent(row rowScanner) (*model.AttendanceEvent, error) {
	var (
		ev                  model.AttendanceEvent
		eventType, source   string
		addr, cardID, empID sql.NullString
	)
	err := row.Scan(&ev.ID, &ev.EmployeeProfileID, &ev.CompanyID, &eventType, &ev.CapturedAt,
		&ev.LocationLat, &ev.LocationLng, &ev.AccuracyMeters, &addr, &source, &cardID,
		&ev.EmployeeName, &ev.EmployeeEmail, &empID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEventNotFound
		}
		return nil, err
	}
	ev.EventType = model.EventType(eventType)
	ev.Source = model.EventSource(source)
	ev.Address = stringPtr(addr)
	ev.NFCCardID = stringPtr(cardID)
	ev.EmployeeCode = stringPtr(empID)
	ev.CapturedAt = ev.CapturedAt.UTC()
	return &ev, nil
}
