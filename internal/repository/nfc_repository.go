package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
)

// NFCRepo stores card registrations.  UIDs are unique across companies.
type NFCRepo struct {
	db *sql.DB
}

func NewNFCRepo(db *sql.DB) *NFCRepo { return &NFCRepo{db: db} }


// UIDExists reports whether uid is registered in any company, active or not.
func (r *NFCRepo) UIDExists(ctx context.Context, uid string) (bool, error) {
	var n int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM nfc_cards WHERE uid = ?", uid).Scan(&n); err != nil {
		return false, err
	}
	return n > 0, nil
}

// Create inserts an active card.  A concurrent registration of the same uid
// trips the unique index and yields ErrCardExists.
func (r *NFCRepo) Create(ctx context.Context, card *model.NFCCard) error {
	card.ID = ids.New()
	card.IsActive = true
	if card.RegisteredAt.IsZero() {
		card.RegisteredAt = time.Now().UTC()
	}
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO nfc_cards (id, uid, employee_profile_id, company_id, registered_by, is_active, registered_at)
		 VALUES (?,?,?,?,?,?,?)`,
		card.ID, card.UID, card.EmployeeProfileID, card.CompanyID, card.RegisteredBy, true, card.RegisteredAt)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrCardExists
		}
		return err
	}
	return nil
}

const cardSelect = `SELECT c.id, c.uid, c.employee_profile_id, c.company_id, c.registered_by, c.is_active,
	c.registered_at, c.last_used_at, e.name
	FROM nfc_cards c JOIN employee_profiles e ON e.id = c.employee_profile_id`

// GetActiveByUID finds an active card in companyID.
func (r *NFCRepo) GetActiveByUID(ctx context.Context, companyID, uid string) (*model.NFCCard, error) {
	return scanCard(r.db.QueryRowContext(ctx,
		cardSelect+" WHERE c.uid = ? AND c.company_id = ? AND c.is_active = TRUE", uid, companyID))
}

// ListByCompany returns every card in companyID, newest first.
func (r *NFCRepo) ListByCompany(ctx context.Context, companyID string) ([]model.NFCCard, error) {
	rows, err := r.db.QueryContext(ctx, cardSelect+" WHERE c.company_id = ? ORDER BY c.registered_at DESC, c.id DESC", companyID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []model.NFCCard{}
	for rows.Next() {
		card, err := scanCard(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *card)
	}
	return out, rows.Err()
}

// Deactivate disables a card in companyID.
func (r *NFCRepo) Deactivate(ctx context.Context, companyID, id string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE nfc_cards SET is_active = FALSE WHERE id = ? AND company_id = ?", id, companyID)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrCardNotFound
	}
	return nil
}

// LockActiveTx locks an active card row until tx ends so taps of one card
// serialize.  A card deactivated in the meantime yields ErrCardNotFound.
func (r *NFCRepo) LockActiveTx(ctx context.Context, tx *sql.Tx, id string) error {
	var got string
	err := tx.QueryRowContext(ctx,
		"SELECT id FROM nfc_cards WHERE id = ? AND is_active = TRUE FOR UPDATE", id).Scan(&got)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrCardNotFound
	}
	return err
}

// TouchTx records a tap on the card.
func (r *NFCRepo) TouchTx(ctx context.Context, tx *sql.Tx, id string, at time.Time) error {
	_, err := tx.ExecContext(ctx, "UPDATE nfc_cards SET last_used_at = ? WHERE id = ?", at, id)
	return err
}

func scanCard(row rowScanner) (*model.NFCCard, error) {
	var (
		c        model.NFCCard
		lastUsed sql.NullTime
	)
	err := row.Scan(&c.ID, &c.UID, &c.EmployeeProfileID, &c.CompanyID, &c.RegisteredBy, &c.IsActive,
		&c.RegisteredAt, &lastUsed, &c.EmployeeName)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrCardNotFound
		}
		return nil, err
	}
	c.LastUsedAt = timePtr(lastUsed)
	return &c, nil
}
