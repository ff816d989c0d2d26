// Package repository holds the MySQL data access layer.  Repositories
// return the sentinels below; callers compare with errors.Is.
package repository

import (
    "context"
    "database/sql"
    "errors"
    "time"
)

// ErrConflict is returned when a write would violate a uniqueness rule.
var ErrConflict = errors.New("conflict")

var (
    ErrUserNotFound       = errors.New("user not found")
    ErrEmailExists        = errors.New("email already exists")
    ErrCompanyNotFound    = errors.New("company not found")
    ErrNoMembership       = errors.New("user has no company membership")
    ErrEmployeeNotFound   = errors.New("employee not found")
    ErrInvitationNotFound = errors.New("invitation not found")
    ErrCardNotFound       = errors.New("nfc card not found")
    ErrCardExists         = errors.New("nfc card already registered")
    ErrEventNotFound      = errors.New("attendance event not found")
)

// querier is satisfied by both *sql.DB and *sql.Tx so lookups can run
// inside or outside a transaction.
type querier interface {
    ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
    QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
    QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func nullString(s *string) sql.NullString {
    if s == nil || *s == "" {
        return sql.NullString{}
    }
    return sql.NullString{String: *s, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
    if !ns.Valid {
        return nil
    }
    s := ns.String
    return &s
}

func timePtr(nt sql.NullTime) *time.Time {
    if !nt.Valid {
        return nil
    }
    t := nt.Time
    return &t
}
