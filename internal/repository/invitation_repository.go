package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// InvitationRepo persists employee invitations.
type InvitationRepo struct {
	db *sql.DB
}

func NewInvitationRepo(db *sql.DB) *InvitationRepo { return &InvitationRepo{db: db} }


const invitationColumns = `id, token, company_id, invited_by, email, name, employee_id, phone, address,
	status, expires_at, accepted_at, created_at`

// Create inserts a PENDING invitation.  inv.Token and inv.ExpiresAt must be
// set by the caller.
func (r *InvitationRepo) Create(ctx context.Context, inv *model.Invitation) error {
	inv.ID = ids.New()
	inv.Email = strings.ToLower(strings.TrimSpace(inv.Email))
	inv.Status = model.InvitationPending
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO invitations
		 (id, token, company_id, invited_by, email, name, employee_id, phone, address, status, expires_at)
		 VALUES (?,?,?,?,?,?,?,?,?,?,?)`,
		inv.ID, inv.Token, inv.CompanyID, inv.InvitedBy, inv.Email, inv.Name,
		nullString(inv.EmployeeID), nullString(inv.Phone), nullString(inv.Address),
		string(inv.Status), inv.ExpiresAt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrConflict
		}
		return err
	}
	return nil
}

// GetByToken looks an invitation up by its token.
func (r *InvitationRepo) GetByToken(ctx context.Context, token string) (*model.Invitation, error) {
	return scanInvitation(r.db.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE token = ? LIMIT 1", token))
}

// GetByTokenForUpdateTx locks the invitation row until tx ends so that two
// concurrent accepts serialize.
func (r *InvitationRepo) GetByTokenForUpdateTx(ctx context.Context, tx *sql.Tx, token string) (*model.Invitation, error) {
	return scanInvitation(tx.QueryRowContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE token = ? LIMIT 1 FOR UPDATE", token))
}

// MarkExpired moves a PENDING invitation to EXPIRED.  It is a no-op for any
// other status, so repeated calls are harmless.
func (r *InvitationRepo) MarkExpired(ctx context.Context, id string) (bool, error) {
	return r.markExpired(ctx, r.db, id)
}

// MarkExpiredTx is MarkExpired inside tx.
func (r *InvitationRepo) MarkExpiredTx(ctx context.Context, tx *sql.Tx, id string) (bool, error) {
	return r.markExpired(ctx, tx, id)
}

func (r *InvitationRepo) markExpired(ctx context.Context, q querier, id string) (bool, error) {
	res, err := q.ExecContext(ctx,
		"UPDATE invitations SET status = 'EXPIRED' WHERE id = ? AND status = 'PENDING'", id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// MarkAcceptedTx moves a PENDING invitation to ACCEPTED.  Zero affected rows
// means another transaction got there first and is reported as
// ErrConflict.
func (r *InvitationRepo) MarkAcceptedTx(ctx context.Context, tx *sql.Tx, id string, at time.Time) error {
	res, err := tx.ExecContext(ctx,
		"UPDATE invitations SET status = 'ACCEPTED', accepted_at = ? WHERE id = ? AND status = 'PENDING'", at, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrConflict
	}
	return nil
}

// ListByCompany returns a company's invitations, newest first.
func (r *InvitationRepo) ListByCompany(ctx context.Context, companyID string) ([]model.Invitation, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+invitationColumns+" FROM invitations WHERE company_id = ? ORDER BY created_at DESC, id DESC", companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.Invitation{}
	for rows.Next() {
		inv, err := scanInvitation(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *inv)
	}
	return out, rows.Err()
}

func scanInvitation(row rowScanner) (*model.Invitation, error) {
	var (
		inv                model.Invitation
		empID, phone, addr sql.NullString
		status             string
		acceptedAt         sql.NullTime
	)
	err := row.Scan(&inv.ID, &inv.Token, &inv.CompanyID, &inv.InvitedBy, &inv.Email, &inv.Name,
		&empID, &phone, &addr, &status, &inv.ExpiresAt, &acceptedAt, &inv.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvitationNotFound
		}
		return nil, err
	}
	inv.EmployeeID = stringPtr(empID)
	inv.Phone = stringPtr(phone)
	inv.Address = stringPtr(addr)
	inv.Status = model.InvitationStatus(status)
	inv.AcceptedAt = timePtr(acceptedAt)
	return &inv, nil
}
