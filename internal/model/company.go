package model

import "time"

// Company is the tenant boundary.  Every employee, card, event and
// invitation row references exactly one company.
type Company struct {
    ID                string    `json:"id"`                // companies.id
    Name              string    `json:"name"`              // companies.name
    Slug              string    `json:"slug"`              // companies.slug (unique)
    Timezone          string    `json:"timezone"`          // companies.timezone (IANA name)
    InvitationMessage string    `json:"invitationMessage"` // companies.invitation_message
    CreatedAt         time.Time `json:"createdAt"`         // companies.created_at
}

// Location returns the company's time zone, falling back to UTC when the
// stored name is empty or unknown.
func (c Company) Location() *time.Location {
    if c.Timezone == "" {
        return time.UTC
    }
    loc, err := time.LoadLocation(c.Timezone)
    if err != nil {
        return time.UTC
    }
    return loc
}

// CompanyMembership joins a user to a company.  The earliest membership of
// a user is its active tenant.
type CompanyMembership struct {
    ID        string    `json:"id"`        // company_memberships.id
    UserID    string    `json:"userId"`    // company_memberships.user_id
    CompanyID string    `json:"companyId"` // company_memberships.company_id
    Role      Role      `json:"role"`      // company_memberships.role
    CreatedAt time.Time `json:"createdAt"` // company_memberships.created_at
}
