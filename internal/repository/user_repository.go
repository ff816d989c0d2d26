package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/mrjaketay/timeApp-sub001/internal/database"
	"github.com/mrjaketay/timeApp-sub001/internal/ids"
	"github.com/mrjaketay/timeApp-sub001/internal/model"
	"github.com/mrjaketay/timeApp-sub001/internal/utils"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,password_hash,role,onboarding_step,is_active,created_at,updated_at"

// CreateTx hashes password, inserts the user and fills u.ID.  A duplicate
// email yields ErrEmailExists.
func (r *UserRepo) CreateTx(ctx context.Context, tx *sql.Tx, u *model.User, password string, cost int) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	u.ID = ids.New()
	u.PasswordHash = hash
	u.IsActive = true
	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, name, email, password_hash, role, onboarding_step, is_active) VALUES (?,?,?,?,?,?,?)",
		u.ID, u.Name, u.Email, hash, string(u.Role), u.OnboardingStep, true)
	if err != nil {
		if database.IsDuplicateKey(err) {
			return ErrEmailExists
		}
		return err
	}
	return nil
}

// GetByEmail fetches a user by normalized email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
}

func scanUser(row *sql.Row) (*model.User, error) {
	var (
		u    model.User
		role string
	)
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &role, &u.OnboardingStep, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	u.Role = model.Role(role)
	return &u, nil
}
