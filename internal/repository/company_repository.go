package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// CompanyRepo stores tenants and the memberships that link users to them.
type CompanyRepo struct {
	db *sql.DB
}

func NewCompanyRepo(db *sql.DB) *CompanyRepo { return &CompanyRepo{db: db} }


const maxSlugAttempts = 20

var slugStrip = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lower-cases name and collapses everything but letters and digits
// into single dashes.
func Slugify(name string) string {
	s := slugStrip.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "-")
	s = strings.Trim(s, "-")
	if s == "" {
		s = "company"
	}
	return s
}

// CreateTx inserts a company.  When the slug is taken it retries with a
// numeric suffix (acme, acme-2, acme-3, ...).
func (r *CompanyRepo) CreateTx(ctx context.Context, tx *sql.Tx, c *model.Company) error {
	c.ID = ids.New()
	if c.Timezone == "" {
		c.Timezone = "UTC"
	}
	base := Slugify(c.Name)
	for attempt := 1; attempt <= maxSlugAttempts; attempt++ {
		slug := base
		if attempt > 1 {
			slug = fmt.Sprintf("%s-%d", base, attempt)
		}
		_, err := tx.ExecContext(ctx,
			"INSERT INTO companies (id, name, slug, timezone, invitation_message) VALUES (?,?,?,?,?)",
			c.ID, c.Name, slug, c.Timezone, c.InvitationMessage)
		if err == nil {
			c.Slug = slug
			return nil
		}
		if !database.IsDuplicateKey(err) {
			return err
		}
	}
	return ErrConflict
}

// GetByID fetches a company by id.
func (r *CompanyRepo) GetByID(ctx context.Context, id string) (*model.Company, error) {
	return r.getByID(ctx, r.db, id)
}

// GetByIDTx is GetByID inside tx.
func (r *CompanyRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Company, error) {
	return r.getByID(ctx, tx, id)
}

func (r *CompanyRepo) getByID(ctx context.Context, q querier, id string) (*model.Company, error) {
	const query = "SELECT id, name, slug, timezone, invitation_message, created_at FROM companies WHERE id = ?"
	var c model.Company
	var msg sql.NullString
	if err := q.QueryRowContext(ctx, query, id).Scan(&c.ID, &c.Name, &c.Slug, &c.Timezone, &msg, &c.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCompanyNotFound
		}
		return nil, err
	}
	c.InvitationMessage = msg.String
	return &c, nil
}

// AddMemberTx links a user to a company.  Linking the same pair twice is a
// conflict.
func (r *CompanyRepo) AddMemberTx(ctx context.Context, tx *sql.Tx, m *model.CompanyMembership) error {
	m.ID = ids.New()
	_, err := tx.ExecContext(ctx,
		"INSERT INTO company_memberships (id, user_id, company_id, role) VALUES (?,?,?,?)",
		m.ID, m.UserID, m.CompanyID, string(m.Role))
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// FirstMembership returns the user's oldest membership, which is the
// active tenant.
func (r *CompanyRepo) FirstMembership(ctx context.Context, userID string) (*model.CompanyMembership, error) {
	const q = `SELECT id, user_id, company_id, role, created_at
	           FROM company_memberships WHERE user_id = ?
	           ORDER BY created_at ASC, id ASC LIMIT 1`
	var (
		m    model.CompanyMembership
		role string
	)
	if err := r.db.QueryRowContext(ctx, q, userID).Scan(&m.ID, &m.UserID, &m.CompanyID, &role, &m.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNoMembership
		}
		return nil, err
	}
	m.Role = model.Role(role)
	return &m, nil
}
