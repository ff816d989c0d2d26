package model

import (
    "fmt"
    "strings"
)

// Role is the closed set of account roles.  Values are stored verbatim in
// users.role, company_memberships.role and the JWT "role" claim.
type Role string

const (
    RoleAdmin    Role = "ADMIN"
    RoleEmployer Role = "EMPLOYER"
    RoleEmployee Role = "EMPLOYEE"
)

// ParseRole normalizes s and reports an error for anything outside the enum.
func ParseRole(s string) (Role, error) {
    switch r := Role(strings.ToUpper(strings.TrimSpace(s))); r {
    case RoleAdmin, RoleEmployer, RoleEmployee:
        return r, nil
    }
    return "", fmt.Errorf("unknown role %q", s)
}

// Valid reports whether r is one of the defined roles.
func (r Role) Valid() bool {
    _, err := ParseRole(string(r))
    return err == nil
}

func (r Role) String() string { return string(r) }
