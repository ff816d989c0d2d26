package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// EmployeeRepo encapsulates queries on employee_profiles.
type EmployeeRepo struct {
	db *sql.DB
}

func NewEmployeeRepo(db *sql.DB) *EmployeeRepo { return &EmployeeRepo{db: db} }


const employeeColumns = `id, company_id, name, email, employee_id, phone, address,
	salary_rate, employment_start_date, is_active, created_at`

// Create inserts a profile outside a transaction.
func (r *EmployeeRepo) Create(ctx context.Context, p *model.EmployeeProfile) error {
	return r.create(ctx, r.db, p)
}

// CreateTx inserts a profile inside tx.  Unique violations on
// (company_id, email) or employee_id map to ErrConflict.
func (r *EmployeeRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.EmployeeProfile) error {
	return r.create(ctx, tx, p)
}

func (r *EmployeeRepo) create(ctx context.Context, q querier, p *model.EmployeeProfile) error {
	p.ID = ids.New()
	p.Email = strings.ToLower(strings.TrimSpace(p.Email))
	var salary sql.NullFloat64
	if p.SalaryRate != nil {
		salary = sql.NullFloat64{Float64: *p.SalaryRate, Valid: true}
	}
	var start sql.NullTime
	if p.EmploymentStartDate != nil {
		start = sql.NullTime{Time: *p.EmploymentStartDate, Valid: true}
	}
	_, err := q.ExecContext(ctx,
		`INSERT INTO employee_profiles
		 (id, company_id, name, email, employee_id, phone, address, salary_rate, employment_start_date, is_active)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.ID, p.CompanyID, p.Name, p.Email, nullString(p.EmployeeID), nullString(p.Phone), nullString(p.Address),
		salary, start, p.IsActive)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetInCompany returns the profile only when it belongs to companyID.
func (r *EmployeeRepo) GetInCompany(ctx context.Context, companyID, id string) (*model.EmployeeProfile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employee_profiles WHERE id = ? AND company_id = ?", id, companyID)
	return scanEmployee(row)
}

// FindActiveByEmail resolves a signed-in user to their profile in a company.
func (r *EmployeeRepo) FindActiveByEmail(ctx context.Context, companyID, email string) (*model.EmployeeProfile, error) {
	row := r.db.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employee_profiles WHERE company_id = ? AND email = ? AND is_active = TRUE LIMIT 1",
		companyID, strings.ToLower(strings.TrimSpace(email)))
	return scanEmployee(row)
}

// FindActiveByEmailAnyTx looks across companies, oldest profile first.
// Registration uses it to attach a new EMPLOYEE account to its employer.
func (r *EmployeeRepo) FindActiveByEmailAnyTx(ctx context.Context, tx *sql.Tx, email string) (*model.EmployeeProfile, error) {
	row := tx.QueryRowContext(ctx,
		"SELECT "+employeeColumns+" FROM employee_profiles WHERE email = ? AND is_active = TRUE ORDER BY created_at ASC, id ASC LIMIT 1",
		strings.ToLower(strings.TrimSpace(email)))
	return scanEmployee(row)
}

// ExistsInCompany reports whether companyID already has a profile with the
// given email or (when set) employee id.
func (r *EmployeeRepo) ExistsInCompany(ctx context.Context, companyID, email string, employeeID *string) (bool, error) {
	return r.existsInCompany(ctx, r.db, companyID, email, employeeID)
}

// ExistsInCompanyTx is ExistsInCompany inside tx.
func (r *EmployeeRepo) ExistsInCompanyTx(ctx context.Context, tx *sql.Tx, companyID, email string, employeeID *string) (bool, error) {
	return r.existsInCompany(ctx, tx, companyID, email, employeeID)
}

func (r *EmployeeRepo) existsInCompany(ctx context.Context, q querier, companyID, email string, employeeID *string) (bool, error) {
	query := "SELECT COUNT(*) FROM employee_profiles WHERE company_id = ? AND (email = ?"
	args := []any{companyID, strings.ToLower(strings.TrimSpace(email))}
	if employeeID != nil && *employeeID != "" {
		query += " OR employee_id = ?"
		args = append(args, *employeeID)
	}
	query += ")"
	var n int
	if err := q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// EmployeeIDOwner returns the company owning employeeID, or "" when the id
// is free.
func (r *EmployeeRepo) EmployeeIDOwner(ctx context.Context, employeeID string) (string, error) {
	return r.employeeIDOwner(ctx, r.db, employeeID)
}

// EmployeeIDOwnerTx is EmployeeIDOwner inside tx.
func (r *EmployeeRepo) EmployeeIDOwnerTx(ctx context.Context, tx *sql.Tx, employeeID string) (string, error) {
	return r.employeeIDOwner(ctx, tx, employeeID)
}

func (r *EmployeeRepo) employeeIDOwner(ctx context.Context, q querier, employeeID string) (string, error) {
	var companyID string
	err := q.QueryRowContext(ctx,
		"SELECT company_id FROM employee_profiles WHERE employee_id = ? LIMIT 1", employeeID).Scan(&companyID)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	return companyID, err
}

// List returns company profiles ordered by name.  active filters on
// is_active when non-nil.
func (r *EmployeeRepo) List(ctx context.Context, companyID string, active *bool) ([]model.EmployeeProfile, error) {
	query := "SELECT " + employeeColumns + " FROM employee_profiles WHERE company_id = ?"
	args := []any{companyID}
	if active != nil {
		query += " AND is_active = ?"
		args = append(args, *active)
	}
	query += " ORDER BY name ASC, id ASC"
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.EmployeeProfile{}
	for rows.Next() {
		p, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}

// Deactivate flips is_active off.  Returns ErrEmployeeNotFound when no row
// in companyID matches.
func (r *EmployeeRepo) Deactivate(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE employee_profiles SET is_active = FALSE WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrEmployeeNotFound
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanEmployee(row rowScanner) (*model.EmployeeProfile, error) {
	var (
		p                  model.EmployeeProfile
		empID, phone, addr sql.NullString
		salary             sql.NullFloat64
		start              sql.NullTime
	)
	err := row.Scan(&p.ID, &p.CompanyID, &p.Name, &p.Email, &empID, &phone, &addr, &salary, &start, &p.IsActive, &p.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrEmployeeNotFound
		}
		return nil, err
	}
	p.EmployeeID = stringPtr(empID)
	p.Phone = stringPtr(phone)
	p.Address = stringPtr(addr)
	if salary.Valid {
		v := salary.Float64
		p.SalaryRate = &v
	}
	p.EmploymentStartDate = timePtr(start)
	return &p, nil
}
