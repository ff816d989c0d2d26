package model

import "time"

// InvitationStatus is the lifecycle state of an invitation.
type InvitationStatus string

const (
    InvitationPending  InvitationStatus = "PENDING"
    InvitationAccepted InvitationStatus = "ACCEPTED"
    InvitationExpired  InvitationStatus = "EXPIRED"
)

// Invitation grants a one-time right to create an EmployeeProfile in a
// company.  PENDING moves to ACCEPTED once, or to EXPIRED the first time it
// is looked at after ExpiresAt.
type Invitation struct {
    ID         string           `json:"id"`                   // invitations.id
    Token      string           `json:"-"`                    // invitations.token (unique)
    CompanyID  string           `json:"companyId"`            // invitations.company_id
    InvitedBy  string           `json:"invitedBy"`            // invitations.invited_by
    Email      string           `json:"email"`                // invitations.email
    Name       string           `json:"name"`                 // invitations.name
    EmployeeID *string          `json:"employeeId,omitempty"` // invitations.employee_id
    Phone      *string          `json:"phone,omitempty"`      // invitations.phone
    Address    *string          `json:"address,omitempty"`    // invitations.address
    Status     InvitationStatus `json:"status"`               // invitations.status
    ExpiresAt  time.Time        `json:"expiresAt"`            // invitations.expires_at
    AcceptedAt *time.Time       `json:"acceptedAt,omitempty"` // invitations.accepted_at
    CreatedAt  time.Time        `json:"createdAt"`            // invitations.created_at
}

// IsExpired reports whether a still-pending invitation is past its expiry.
func (i *Invitation) IsExpired(now time.Time) bool {
    return i.Status == InvitationPending && now.After(i.ExpiresAt)
}
