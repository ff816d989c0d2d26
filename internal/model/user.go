package model

import "time"

// User represents an account able to sign in, stored in the `users`
// table.  Employees who only clock in through a card never need a User;
// see EmployeeProfile.
//
// Fields:
//  ID             – ULID primary key.
//  Name           – display name.
//  Email          – unique, lower-cased email address.
//  PasswordHash   – bcrypt hash, never serialized.
//  Role           – ADMIN, EMPLOYER or EMPLOYEE.
//  OnboardingStep – progress through the first-run flow.
//  IsActive       – whether the account may sign in.
type User struct {
    ID             string    `json:"id"`             // users.id
    Name           string    `json:"name"`           // users.name
    Email          string    `json:"email"`          // users.email
    PasswordHash   string    `json:"-"`              // users.password_hash
    Role           Role      `json:"role"`           // users.role
    OnboardingStep int       `json:"onboardingStep"` // users.onboarding_step
    IsActive       bool      `json:"isActive"`       // users.is_active
    CreatedAt      time.Time `json:"createdAt"`      // users.created_at
    UpdatedAt      time.Time `json:"updatedAt"`      // users.updated_at
}

// RefreshToken models an entry in the `refresh_tokens` table.  Only the
// SHA‑256 hash of the token handed to the client is stored.
type RefreshToken struct {
    ID        string     // refresh_tokens.id
    UserID    string     // refresh_tokens.user_id
    TokenHash string     // refresh_tokens.token_hash
    ExpiresAt time.Time  // refresh_tokens.expires_at
    RevokedAt *time.Time // refresh_tokens.revoked_at (nullable)
    CreatedAt time.Time  // refresh_tokens.created_at
}
