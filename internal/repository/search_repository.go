package repository

import (
	"context"
	"database/sql"
	"strings"
)

// SearchQuery is a typeahead lookup.  Term is already trimmed and
// lower-cased; CompanyID is empty for global (admin) lookups.
type SearchQuery struct {
	Term      string
	CompanyID string
	Limit     int
}

// SearchRow is one raw match: Label is the primary text and Detail an
// optional secondary part (email, employee name).
type SearchRow struct {
	ID     string
	Label  string
	Detail string
}

// SearchRepo runs LIKE lookups for the typeahead endpoints.
type SearchRepo struct {
	db *sql.DB
}

func NewSearchRepo(db *sql.DB) *SearchRepo { return &SearchRepo{db: db} }

// likePattern escapes LIKE wildcards in term and wraps it for substring
// matching.
func likePattern(term string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return "%" + r.Replace(term) + "%"
}

// likeAny builds "(LOWER(f1) LIKE ? OR LOWER(f2) LIKE ? ...)" and the
// matching args.
func likeAny(term string, fields ...string) (string, []any) {
	pattern := likePattern(term)
	parts := make([]string, 0, len(fields))
	args := make([]any, 0, len(fields))
	for _, f := range fields {
		parts = append(parts, "LOWER("+f+") LIKE ?")
		args = append(args, pattern)
	}
	return "(" + strings.Join(parts, " OR ") + ")", args
}

func (r *SearchRepo) run(ctx context.Context, query string, args []any) ([]SearchRow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []SearchRow{}
	for rows.Next() {
		var (
			row    SearchRow
			detail sql.NullString
		)
		if err := rows.Scan(&row.ID, &row.Label, &detail); err != nil {
			return nil, err
		}
		row.Detail = detail.String
		out = append(out, row)
	}
	return out, rows.Err()
}

// AttendanceSubjects matches employees of the company that have at least
// one recorded event.
func (r *SearchRepo) AttendanceSubjects(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	cond, args := likeAny(q.Term, "e.name", "e.email", "e.employee_id")
	query := `SELECT e.id, e.name, e.email FROM employee_profiles e
		WHERE e.company_id = ? AND ` + cond + `
		AND EXISTS (SELECT 1 FROM attendance_events a WHERE a.employee_profile_id = e.id)
		ORDER BY e.name ASC LIMIT ?`
	return r.run(ctx, query, append(append([]any{q.CompanyID}, args...), q.Limit))
}

// Employees matches company profiles by name, email or employee id.
func (r *SearchRepo) Employees(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	cond, args := likeAny(q.Term, "e.name", "e.email", "e.employee_id")
	query := `SELECT e.id, e.name, e.email FROM employee_profiles e
		WHERE e.company_id = ? AND ` + cond + ` ORDER BY e.name ASC LIMIT ?`
	return r.run(ctx, query, append(append([]any{q.CompanyID}, args...), q.Limit))
}

// Cards matches company cards by uid or holder name.
func (r *SearchRepo) Cards(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	cond, args := likeAny(q.Term, "c.uid", "e.name")
	query := `SELECT c.id, c.uid, e.name FROM nfc_cards c
		JOIN employee_profiles e ON e.id = c.employee_profile_id
		WHERE c.company_id = ? AND ` + cond + ` ORDER BY c.uid ASC LIMIT ?`
	return r.run(ctx, query, append(append([]any{q.CompanyID}, args...), q.Limit))
}

// Companies matches every tenant by name or slug.
func (r *SearchRepo) Companies(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	cond, args := likeAny(q.Term, "name", "slug")
	query := `SELECT id, name, NULL FROM companies WHERE ` + cond + ` ORDER BY name ASC LIMIT ?`
	return r.run(ctx, query, append(args, q.Limit))
}

// Users matches every account by name or email.
func (r *SearchRepo) Users(ctx context.Context, q SearchQuery) ([]SearchRow, error) {
	cond, args := likeAny(q.Term, "name", "email")
	query := `SELECT id, name, email FROM users WHERE ` + cond + ` ORDER BY name ASC LIMIT ?`
	return r.run(ctx, query, append(args, q.Limit))
}
