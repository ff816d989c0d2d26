package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"

	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/queue"
	"github.com/mrjaketay/timeApp-sub001/internal/repository"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() {
		if err := mock.ExpectationsWereMet(); err != nil {
			t.Errorf("unmet expectations: %v", err)
		}
		db.Close()
	})
	return db, mock
}

func wantKind(t *testing.T, err error, k Kind) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %s error, got nil", k)
	}
	if got := KindOf(err); got != k {
		t.Fatalf("kind = %s, want %s (err: %v)", got, k, err)
	}
}

var now = time.Date(2024, 3, 10, 12, 0, 0, 0, time.UTC)

var companyCols = []string{"id", "name", "slug", "timezone", "invitation_message", "created_at"}

var invitationCols = []string{"id", "token", "company_id", "invited_by", "email", "name", "employee_id",
	"phone", "address", "status", "expires_at", "accepted_at", "created_at"}

func invitationRow(status string, expires time.Time, employeeID any) *sqlmock.Rows {
	return sqlmock.NewRows(invitationCols).AddRow("inv-1", "tok", "co-1", "u-1", "ana@example.com", "Ana",
		employeeID, nil, nil, status, expires, nil, now.Add(-time.Hour))
}

func newInvitationService(db *sql.DB) *InvitationService {
	s := NewInvitationService(db, repository.NewInvitationRepo(db), repository.NewEmployeeRepo(db),
		repository.NewCompanyRepo(db), queue.NopPublisher{}, 7*24*time.Hour)
	s.Now = func() time.Time { return now }
	return s
}

const lockInvitation = `FROM invitations WHERE token = \? LIMIT 1 FOR UPDATE`

func TestAcceptCreatesProfile(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInvitation).WithArgs("tok").
		WillReturnRows(invitationRow("PENDING", now.Add(time.Hour), "E-7"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM employee_profiles WHERE company_id = \?`).
		WithArgs("co-1", "ana@example.com", "E-7").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT company_id FROM employee_profiles WHERE employee_id = \?`).
		WithArgs("E-7").
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}))
	mock.ExpectExec(`INSERT INTO employee_profiles`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE invitations SET status = 'ACCEPTED'`).
		WithArgs(now, "inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	p, err := s.Accept(context.Background(), " tok ")
	if err != nil {
		t.Fatalf("Accept: %v", err)
	}
	if p.ID == "" || p.CompanyID != "co-1" || !p.IsActive {
		t.Fatalf("unexpected profile: %+v", p)
	}
	if p.EmployeeID == nil || *p.EmployeeID != "E-7" {
		t.Fatalf("employee id not carried over: %v", p.EmployeeID)
	}
}

func TestAcceptAlreadyAccepted(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInvitation).WithArgs("tok").
		WillReturnRows(invitationRow("ACCEPTED", now.Add(time.Hour), nil))
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), "tok")
	wantKind(t, err, KindConflict)
}

func TestAcceptEmployeeIDTakenElsewhere(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInvitation).WithArgs("tok").
		WillReturnRows(invitationRow("PENDING", now.Add(time.Hour), "E-7"))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM employee_profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`SELECT company_id FROM employee_profiles WHERE employee_id = \?`).
		WithArgs("E-7").
		WillReturnRows(sqlmock.NewRows([]string{"company_id"}).AddRow("co-2"))
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), "tok")
	wantKind(t, err, KindConflict)
	var se *Error
	if !errors.As(err, &se) || se.Msg != MsgEmployeeIDTaken {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestAcceptLazilyExpires(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInvitation).WithArgs("tok").
		WillReturnRows(invitationRow("PENDING", now.Add(-time.Minute), nil))
	mock.ExpectExec(`UPDATE invitations SET status = 'EXPIRED' WHERE id = \? AND status = 'PENDING'`).
		WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	_, err := s.Accept(context.Background(), "tok")
	wantKind(t, err, KindExpired)
}

func TestAcceptUnknownToken(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectBegin()
	mock.ExpectQuery(lockInvitation).WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(invitationCols))
	mock.ExpectRollback()

	_, err := s.Accept(context.Background(), "nope")
	wantKind(t, err, KindNotFound)

	_, err = s.Accept(context.Background(), "  ")
	wantKind(t, err, KindValidation)
}

func TestValidateReturnsViewWithExpiry(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectQuery(`FROM invitations WHERE token = \? LIMIT 1`).WithArgs("tok").
		WillReturnRows(invitationRow("PENDING", now.Add(-time.Minute), nil))
	mock.ExpectQuery(`FROM companies WHERE id = \?`).WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "slug", "timezone", "invitation_message", "created_at"}).
			AddRow("co-1", "Acme", "acme", "UTC", "Welcome aboard", now))
	mock.ExpectExec(`UPDATE invitations SET status = 'EXPIRED'`).WithArgs("inv-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	view, err := s.Validate(context.Background(), "tok")
	wantKind(t, err, KindExpired)
	if view == nil || view.Status != model.InvitationExpired {
		t.Fatalf("expected expired view, got %+v", view)
	}
	if view.Company.Name != "Acme" || view.Company.InvitationMessage != "Welcome aboard" {
		t.Fatalf("unexpected company summary: %+v", view.Company)
	}
}

func TestValidateKeepsExpiredInvitation(t *testing.T) {
	db, mock := newMock(t)
	s := newInvitationService(db)

	mock.ExpectQuery(`FROM invitations WHERE token = \? LIMIT 1`).WithArgs("tok").
		WillReturnRows(invitationRow("EXPIRED", now.Add(-time.Hour), nil))
	mock.ExpectQuery(`FROM companies WHERE id = \?`).WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("co-1", "Acme", "acme", "UTC", nil, now))

	view, err := s.Validate(context.Background(), "tok")
	wantKind(t, err, KindExpired)
	if view == nil || view.Status != model.InvitationExpired || view.Company.Name != "Acme" {
		t.Fatalf("expected expired view with company, got %+v", view)
	}
}

func TestCreateInvitationRequiresEmployer(t *testing.T) {
	db, _ := newMock(t)
	s := newInvitationService(db)

	employee := &Actor{UserID: "u-2", Role: model.RoleEmployee, CompanyID: "co-1"}
	_, err := s.Create(context.Background(), employee, CreateInvitationInput{Name: "Ana", Email: "ana@example.com"})
	wantKind(t, err, KindUnauthorized)

	orphan := &Actor{UserID: "u-1", Role: model.RoleEmployer}
	_, err = s.Create(context.Background(), orphan, CreateInvitationInput{Name: "Ana", Email: "ana@example.com"})
	wantKind(t, err, KindUnauthorized)
}

func TestCreateInvitationValidates(t *testing.T) {
	db, _ := newMock(t)
	s := newInvitationService(db)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	_, err := s.Create(context.Background(), employer, CreateInvitationInput{Email: "ana@example.com"})
	wantKind(t, err, KindValidation)
	_, err = s.Create(context.Background(), employer, CreateInvitationInput{Name: "Ana", Email: "not-an-email"})
	wantKind(t, err, KindValidation)
}

func newNFCService(db *sql.DB) *NFCService {
	s := NewNFCService(db, repository.NewNFCRepo(db), repository.NewEmployeeRepo(db),
		repository.NewAttendanceRepo(db), queue.NopPublisher{})
	s.Now = func() time.Time { return now }
	return s
}

func TestRegisterCardConflictWinsOverMissingEmployee(t *testing.T) {
	db, mock := newMock(t)
	s := newNFCService(db)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM nfc_cards WHERE uid = \?`).WithArgs("04A1B2C3").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(1))

	_, err := s.Register(context.Background(), employer, "04:a1:b2:c3", "missing")
	wantKind(t, err, KindConflict)
}

func TestRegisterCardUnknownEmployee(t *testing.T) {
	db, mock := newMock(t)
	s := newNFCService(db)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM nfc_cards WHERE uid = \?`).WithArgs("04A1").
		WillReturnRows(sqlmock.NewRows([]string{"n"}).AddRow(0))
	mock.ExpectQuery(`FROM employee_profiles WHERE id = \? AND company_id = \?`).WithArgs("emp-9", "co-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := s.Register(context.Background(), employer, "04a1", "emp-9")
	wantKind(t, err, KindNotFound)
}

func TestRegisterCardGuards(t *testing.T) {
	db, _ := newMock(t)
	s := newNFCService(db)

	_, err := s.Register(context.Background(), &Actor{Role: model.RoleEmployee, CompanyID: "co-1"}, "04A1", "emp-1")
	wantKind(t, err, KindUnauthorized)

	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}
	_, err = s.Register(context.Background(), employer, " :- ", "emp-1")
	wantKind(t, err, KindValidation)
	_, err = s.Register(context.Background(), employer, "04A1", " ")
	wantKind(t, err, KindValidation)
}

func TestNormalizeUID(t *testing.T) {
	cases := map[string]string{
		"04:a1:b2":    "04A1B2",
		" 04-A1 b2 ":  "04A1B2",
		"deadbeef":    "DEADBEEF",
		"":            "",
	}
	for in, want := range cases {
		if got := NormalizeUID(in); got != want {
			t.Errorf("NormalizeUID(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNextEventTypeAlternates(t *testing.T) {
	if NextEventType(model.ClockIn) != model.ClockOut {
		t.Fatal("after CLOCK_IN expected CLOCK_OUT")
	}
	if NextEventType(model.ClockOut) != model.ClockIn {
		t.Fatal("after CLOCK_OUT expected CLOCK_IN")
	}
}

func TestValidateLocation(t *testing.T) {
	if err := validateLocation(45, 170, 5); err != nil {
		t.Fatalf("valid location rejected: %v", err)
	}
	wantKind(t, validateLocation(91, 0, 0), KindValidation)
	wantKind(t, validateLocation(0, -181, 0), KindValidation)
	wantKind(t, validateLocation(0, 0, -1), KindValidation)
}

func TestDateRangeBounds(t *testing.T) {
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Skipf("tzdata unavailable: %v", err)
	}
	start, end, err := DateRange{StartDate: "2024-03-01", EndDate: "2024-03-02"}.Bounds(loc)
	if err != nil {
		t.Fatalf("Bounds: %v", err)
	}
	if !start.Equal(time.Date(2024, 3, 1, 5, 0, 0, 0, time.UTC)) {
		t.Fatalf("start = %v", start.UTC())
	}
	if end.Sub(start) != 24*time.Hour {
		t.Fatalf("span = %v", end.Sub(start))
	}

	_, _, err = DateRange{StartDate: "2024-03-02"}.Bounds(loc)
	wantKind(t, err, KindValidation)
	_, _, err = DateRange{StartDate: "03/01/2024", EndDate: "2024-03-02"}.Bounds(loc)
	wantKind(t, err, KindValidation)
	_, _, err = DateRange{StartDate: "2024-03-02", EndDate: "2024-03-02"}.Bounds(loc)
	wantKind(t, err, KindValidation)
}

func event(id, emp string, typ model.EventType, at time.Time) model.AttendanceEvent {
	return model.AttendanceEvent{ID: id, EmployeeProfileID: emp, EmployeeName: "N-" + emp, EventType: typ, CapturedAt: at}
}

func TestDeriveDayPairsFirstInWithFollowingOut(t *testing.T) {
	day := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	events := []model.AttendanceEvent{
		event("e3", "emp-1", model.ClockOut, day.Add(17*time.Hour)),
		event("e0", "emp-1", model.ClockOut, day.Add(7*time.Hour)),
		event("e1", "emp-1", model.ClockIn, day.Add(9*time.Hour)),
		event("e2", "emp-1", model.ClockIn, day.Add(10*time.Hour)),
	}
	ts := DeriveDay("2024-03-01", events)
	if ts == nil {
		t.Fatal("expected a timesheet")
	}
	if ts.ClockIn.ID != "e1" || ts.ClockOut == nil || ts.ClockOut.ID != "e3" {
		t.Fatalf("unexpected pairing: in=%s out=%v", ts.ClockIn.ID, ts.ClockOut)
	}
	if ts.HoursWorked == nil || *ts.HoursWorked != 8 {
		t.Fatalf("hours = %v", ts.HoursWorked)
	}
	if events[0].ID != "e3" {
		t.Fatal("input slice was reordered")
	}
}

func TestDeriveDayOpenAndEmpty(t *testing.T) {
	day := time.Date(2024, 3, 1, 9, 0, 0, 0, time.UTC)
	open := DeriveDay("2024-03-01", []model.AttendanceEvent{event("e1", "emp-1", model.ClockIn, day)})
	if open == nil || open.ClockOut != nil || open.HoursWorked != nil {
		t.Fatalf("expected open day, got %+v", open)
	}
	if DeriveDay("2024-03-01", []model.AttendanceEvent{event("e1", "emp-1", model.ClockOut, day)}) != nil {
		t.Fatal("a day without CLOCK_IN must not yield a timesheet")
	}
}

func TestDeriveRangeGroupsByLocalDay(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	// 03:00 UTC on the 2nd is still the 1st at UTC-5.
	events := []model.AttendanceEvent{
		event("b1", "emp-b", model.ClockIn, time.Date(2024, 3, 1, 14, 0, 0, 0, time.UTC)),
		event("a1", "emp-a", model.ClockIn, time.Date(2024, 3, 1, 22, 0, 0, 0, time.UTC)),
		event("a2", "emp-a", model.ClockOut, time.Date(2024, 3, 2, 3, 0, 0, 0, time.UTC)),
		event("a3", "emp-a", model.ClockIn, time.Date(2024, 3, 2, 14, 0, 0, 0, time.UTC)),
	}
	out := DeriveRange(events, loc)
	if len(out) != 3 {
		t.Fatalf("got %d timesheets, want 3", len(out))
	}
	if out[0].Date != "2024-03-01" || out[0].EmployeeProfileID != "emp-a" {
		t.Fatalf("first row = %s/%s", out[0].Date, out[0].EmployeeProfileID)
	}
	if out[0].ClockOut == nil || out[0].ClockOut.ID != "a2" {
		t.Fatal("late clock-out should close the local day")
	}
	if out[1].EmployeeProfileID != "emp-b" || out[2].Date != "2024-03-02" {
		t.Fatalf("unexpected order: %+v", out)
	}
}

func TestSearchShortQueriesAndRoles(t *testing.T) {
	db, _ := newMock(t)
	s := NewSearchService(repository.NewSearchRepo(db), 0)
	if s.Limit != defaultSearchLimit {
		t.Fatalf("limit = %d", s.Limit)
	}
	ctx := context.Background()
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	_, err := s.Search(ctx, employer, "seats", "ab")
	wantKind(t, err, KindNotFound)

	for _, tc := range []struct {
		actor *Actor
		kind  string
		q     string
	}{
		{employer, "employees", "a"},
		{nil, "employees", "ana"},
		{&Actor{Role: model.RoleEmployee, CompanyID: "co-1"}, "employees", "ana"},
		{employer, "users", "ana"},
		{&Actor{Role: model.RoleEmployer}, "employees", "ana"},
	} {
		got, err := s.Search(ctx, tc.actor, tc.kind, tc.q)
		if err != nil {
			t.Fatalf("Search(%s, %q): %v", tc.kind, tc.q, err)
		}
		if got == nil || len(got) != 0 {
			t.Fatalf("Search(%s, %q) = %v, want empty list", tc.kind, tc.q, got)
		}
	}
}

func TestSearchDedupesAndCaps(t *testing.T) {
	db, mock := newMock(t)
	s := NewSearchService(repository.NewSearchRepo(db), 2)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	mock.ExpectQuery(`FROM employee_profiles`).
		WillReturnRows(sqlmock.NewRows([]string{"id", "label", "detail"}).
			AddRow("e1", "Ana", "ana@example.com").
			AddRow("e1", "Ana", "ana@example.com").
			AddRow("e2", "Bo", nil).
			AddRow("e3", "Cy", "cy@example.com"))

	got, err := s.Search(context.Background(), employer, "employees", "  AN ")
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d suggestions, want 2", len(got))
	}
	if got[0].Text != "Ana (ana@example.com)" || got[1].Text != "Bo" || got[1].Type != "employees" {
		t.Fatalf("unexpected suggestions: %+v", got)
	}
}

func TestSuggestionText(t *testing.T) {
	row := repository.SearchRow{ID: "c1", Label: "04A1", Detail: "Ana"}
	if uidWithHolder(row) != "04A1 - Ana" {
		t.Fatalf("card text = %q", uidWithHolder(row))
	}
	if labelOnly(row) != "04A1" {
		t.Fatal("labelOnly should drop detail")
	}
}

func TestClassifyKeepsServiceErrors(t *testing.T) {
	if KindOf(classify("op", conflict("x"))) != KindConflict {
		t.Fatal("service error lost its kind")
	}
	err := classify("op", errors.New("boom"))
	if KindOf(err) != KindInternal {
		t.Fatal("plain errors must become internal")
	}
}

var dupKey = &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}

var employeeCols = []string{"id", "company_id", "name", "email", "employee_id", "phone", "address",
	"salary_rate", "employment_start_date", "is_active", "created_at"}

func employeeRow() *sqlmock.Rows {
	return sqlmock.NewRows(employeeCols).
		AddRow("emp-1", "co-1", "Ana", "ana@example.com", "E-7", nil, nil, nil, nil, true, now.Add(-24*time.Hour))
}

var eventCols = []string{"id", "employee_profile_id", "company_id", "event_type", "captured_at", "location_lat",
	"location_lng", "accuracy_meters", "address", "source", "nfc_card_id", "name", "email", "employee_id"}

func newIdentityService(db *sql.DB) *IdentityService {
	return NewIdentityService(db, repository.NewUserRepo(db), repository.NewCompanyRepo(db), repository.NewEmployeeRepo(db), 4)
}

func TestRegisterEmployerCreatesCompanyInOneTransaction(t *testing.T) {
	db, mock := newMock(t)
	s := newIdentityService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).
		WithArgs(sqlmock.AnyArg(), "Jo Boss", "jo@acme.test", sqlmock.AnyArg(), "EMPLOYER", sqlmock.AnyArg(), true).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO companies`).
		WithArgs(sqlmock.AnyArg(), "Acme Inc", "acme-inc", "UTC", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`INSERT INTO company_memberships`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), "EMPLOYER").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reg, err := s.Register(context.Background(), RegisterInput{
		Name: " Jo Boss ", Email: "Jo@Acme.test", Password: "correct horse", CompanyName: "Acme Inc", Role: "employer",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.User == nil || reg.User.Role != model.RoleEmployer || reg.User.Email != "jo@acme.test" {
		t.Fatalf("unexpected user: %+v", reg.User)
	}
	if reg.Company == nil || reg.Company.Slug != "acme-inc" || reg.Company.Timezone != "UTC" {
		t.Fatalf("unexpected company: %+v", reg.Company)
	}
}

func TestRegisterEmployeeJoinsProfileCompany(t *testing.T) {
	db, mock := newMock(t)
	s := newIdentityService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectQuery(`FROM employee_profiles WHERE email = \? AND is_active = TRUE`).
		WithArgs("ana@example.com").
		WillReturnRows(employeeRow())
	mock.ExpectQuery(`FROM companies WHERE id = \?`).WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("co-1", "Acme", "acme", "UTC", nil, now))
	mock.ExpectExec(`INSERT INTO company_memberships`).
		WithArgs(sqlmock.AnyArg(), sqlmock.AnyArg(), "co-1", "EMPLOYEE").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()

	reg, err := s.Register(context.Background(), RegisterInput{
		Name: "Ana", Email: "ana@example.com", Password: "correct horse", Role: "EMPLOYEE",
	})
	if err != nil {
		t.Fatalf("Register: %v", err)
	}
	if reg.Company == nil || reg.Company.ID != "co-1" {
		t.Fatalf("expected link to co-1, got %+v", reg.Company)
	}
}

func TestRegisterDuplicateEmail(t *testing.T) {
	db, mock := newMock(t)
	s := newIdentityService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnError(dupKey)
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), RegisterInput{
		Name: "Jo", Email: "jo@acme.test", Password: "correct horse", CompanyName: "Acme", Role: "EMPLOYER",
	})
	wantKind(t, err, KindConflict)
	var se *Error
	if !errors.As(err, &se) || se.Msg != MsgEmailRegistered {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterCompanySlugExhausted(t *testing.T) {
	db, mock := newMock(t)
	s := newIdentityService(db)

	mock.ExpectBegin()
	mock.ExpectExec(`INSERT INTO users`).WillReturnResult(sqlmock.NewResult(1, 1))
	for i := 0; i < 20; i++ {
		mock.ExpectExec(`INSERT INTO companies`).WillReturnError(dupKey)
	}
	mock.ExpectRollback()

	_, err := s.Register(context.Background(), RegisterInput{
		Name: "Jo", Email: "jo@acme.test", Password: "correct horse", CompanyName: "Acme", Role: "EMPLOYER",
	})
	wantKind(t, err, KindConflict)
	var se *Error
	if !errors.As(err, &se) || se.Msg != MsgCompanyNameTaken {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestRegisterRejectsAdminRole(t *testing.T) {
	db, _ := newMock(t)
	s := newIdentityService(db)

	_, err := s.Register(context.Background(), RegisterInput{
		Name: "Jo", Email: "jo@acme.test", Password: "correct horse", Role: "ADMIN",
	})
	wantKind(t, err, KindValidation)
}

func newAttendanceService(db *sql.DB) *AttendanceService {
	s := NewAttendanceService(repository.NewAttendanceRepo(db), repository.NewEmployeeRepo(db),
		repository.NewCompanyRepo(db), queue.NopPublisher{})
	s.Now = func() time.Time { return now }
	return s
}

func TestRecordEventResolvesCallerProfile(t *testing.T) {
	db, mock := newMock(t)
	s := newAttendanceService(db)
	actor := &Actor{UserID: "u-2", Email: "Ana@Example.com", Role: model.RoleEmployee, CompanyID: "co-1"}

	mock.ExpectQuery(`FROM employee_profiles WHERE company_id = \? AND email = \? AND is_active = TRUE`).
		WithArgs("co-1", "ana@example.com").
		WillReturnRows(employeeRow())
	mock.ExpectExec(`INSERT INTO attendance_events`).
		WithArgs(sqlmock.AnyArg(), "emp-1", "co-1", "CLOCK_IN", now, 45.0, 7.0, 5.0,
			sqlmock.AnyArg(), "APP", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	ev, err := s.RecordEvent(context.Background(), actor, RecordInput{EventType: "clock_in", Lat: 45, Lng: 7, AccuracyMeters: 5})
	if err != nil {
		t.Fatalf("RecordEvent: %v", err)
	}
	if ev.EmployeeProfileID != "emp-1" || ev.Source != model.SourceApp || ev.EventType != model.ClockIn {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if !ev.CapturedAt.Equal(now) {
		t.Fatalf("captured at %v, want server time %v", ev.CapturedAt, now)
	}
}

func TestRecordEventWithoutProfile(t *testing.T) {
	db, mock := newMock(t)
	s := newAttendanceService(db)
	actor := &Actor{UserID: "u-2", Email: "ghost@example.com", Role: model.RoleEmployee, CompanyID: "co-1"}

	mock.ExpectQuery(`FROM employee_profiles WHERE company_id = \? AND email = \?`).
		WithArgs("co-1", "ghost@example.com").
		WillReturnRows(sqlmock.NewRows(employeeCols))

	_, err := s.RecordEvent(context.Background(), actor, RecordInput{EventType: "CLOCK_OUT"})
	wantKind(t, err, KindNotFound)
}

var cardCols = []string{"id", "uid", "employee_profile_id", "company_id", "registered_by", "is_active",
	"registered_at", "last_used_at", "name"}

func expectTapLookups(mock sqlmock.Sqlmock) {
	mock.ExpectQuery(`WHERE c.uid = \? AND c.company_id = \? AND c.is_active = TRUE`).
		WithArgs("04A1B2", "co-1").
		WillReturnRows(sqlmock.NewRows(cardCols).
			AddRow("card-1", "04A1B2", "emp-1", "co-1", "u-1", true, now.Add(-time.Hour), nil, "Ana"))
	mock.ExpectQuery(`FROM employee_profiles WHERE id = \? AND company_id = \?`).
		WithArgs("emp-1", "co-1").
		WillReturnRows(employeeRow())
}

func TestTapAlternatesUnderCardLock(t *testing.T) {
	db, mock := newMock(t)
	s := newNFCService(db)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	expectTapLookups(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM nfc_cards WHERE id = \? AND is_active = TRUE FOR UPDATE`).
		WithArgs("card-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow("card-1"))
	mock.ExpectQuery(`WHERE a.company_id = \? AND a.employee_profile_id = \? ORDER BY a.captured_at DESC`).
		WithArgs("co-1", "emp-1").
		WillReturnRows(sqlmock.NewRows(eventCols).AddRow("ev-0", "emp-1", "co-1", "CLOCK_IN", now.Add(-4*time.Hour),
			45.0, 7.0, 5.0, nil, "NFC", "card-1", "Ana", "ana@example.com", "E-7"))
	mock.ExpectExec(`INSERT INTO attendance_events`).
		WithArgs(sqlmock.AnyArg(), "emp-1", "co-1", "CLOCK_OUT", now, 45.0, 7.0, 5.0,
			sqlmock.AnyArg(), "NFC", "card-1").
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectExec(`UPDATE nfc_cards SET last_used_at = \? WHERE id = \?`).
		WithArgs(now, "card-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	ev, err := s.Tap(context.Background(), employer, TapInput{UID: "04:a1:b2", Lat: 45, Lng: 7, AccuracyMeters: 5})
	if err != nil {
		t.Fatalf("Tap: %v", err)
	}
	if ev.EventType != model.ClockOut || ev.Source != model.SourceNFC {
		t.Fatalf("unexpected event: %+v", ev)
	}
	if ev.NFCCardID == nil || *ev.NFCCardID != "card-1" {
		t.Fatalf("card not recorded: %v", ev.NFCCardID)
	}
}

func TestTapCardDeactivatedBeforeLock(t *testing.T) {
	db, mock := newMock(t)
	s := newNFCService(db)
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	expectTapLookups(mock)
	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT id FROM nfc_cards WHERE id = \? AND is_active = TRUE FOR UPDATE`).
		WithArgs("card-1").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))
	mock.ExpectRollback()

	_, err := s.Tap(context.Background(), employer, TapInput{UID: "04A1B2"})
	wantKind(t, err, KindNotFound)
}

func TestExportAttendanceCSV(t *testing.T) {
	db, mock := newMock(t)
	s := NewReportService(repository.NewAttendanceRepo(db), repository.NewCompanyRepo(db))
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}
	day := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	mock.ExpectQuery(`FROM companies WHERE id = \?`).WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("co-1", "Acme", "acme", "UTC", nil, now))
	mock.ExpectQuery(`WHERE a.company_id = \? AND a.employee_profile_id = \? AND a.captured_at >= \? AND a.captured_at < \? ORDER BY a.captured_at ASC`).
		WithArgs("co-1", "emp-1", day, day.Add(24*time.Hour)).
		WillReturnRows(sqlmock.NewRows(eventCols).
			AddRow("ev-1", "emp-1", "co-1", "CLOCK_IN", day.Add(9*time.Hour), 45.0, 7.0, 5.0, "Main St", "APP", nil, "Ana", "ana@example.com", "E-7").
			AddRow("ev-2", "emp-1", "co-1", "CLOCK_OUT", day.Add(13*time.Hour), 45.0, 7.0, 5.0, nil, "APP", nil, "Ana", "ana@example.com", "E-7").
			AddRow("ev-3", "emp-1", "co-1", "CLOCK_IN", day.Add(14*time.Hour), 45.0, 7.0, 5.0, nil, "NFC", "card-1", "Ana", "ana@example.com", "E-7"))

	out, err := s.Export(context.Background(), employer, ExportInput{
		Range:      DateRange{StartDate: "2024-01-01", EndDate: "2024-01-02"},
		Format:     "csv",
		ReportType: "attendance",
		EmployeeID: "emp-1",
	})
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if out.Filename != "attendance-report-2024-01-01-to-2024-01-02.csv" {
		t.Fatalf("filename = %q", out.Filename)
	}
	lines := strings.Split(strings.TrimSuffix(string(out.Body), "\n"), "\n")
	if len(lines) != 4 {
		t.Fatalf("want header and 3 rows, got %d lines:\n%s", len(lines), out.Body)
	}
	if !strings.HasPrefix(lines[0], `"Employee ID","Employee Name"`) {
		t.Fatalf("header = %s", lines[0])
	}
	wantTimes := []string{"2024-01-01T09:00:00Z", "2024-01-01T13:00:00Z", "2024-01-01T14:00:00Z"}
	for i, ts := range wantTimes {
		if !strings.Contains(lines[i+1], `"`+ts+`"`) {
			t.Fatalf("row %d out of order: %s", i+1, lines[i+1])
		}
	}
	if !strings.Contains(lines[1], `"E-7","Ana","ana@example.com","CLOCK_IN"`) || !strings.HasSuffix(lines[1], `"Main St"`) {
		t.Fatalf("row 1 = %s", lines[1])
	}
}

func TestExportRejectsEmptyRange(t *testing.T) {
	db, mock := newMock(t)
	s := NewReportService(repository.NewAttendanceRepo(db), repository.NewCompanyRepo(db))
	employer := &Actor{UserID: "u-1", Role: model.RoleEmployer, CompanyID: "co-1"}

	mock.ExpectQuery(`FROM companies WHERE id = \?`).WithArgs("co-1").
		WillReturnRows(sqlmock.NewRows(companyCols).AddRow("co-1", "Acme", "acme", "UTC", nil, now))

	_, err := s.Export(context.Background(), employer, ExportInput{
		Range: DateRange{StartDate: "2024-01-02", EndDate: "2024-01-02"},
	})
	wantKind(t, err, KindValidation)
}
