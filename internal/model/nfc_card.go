package model

import "time"

// NFCCard binds a physical card UID to one employee profile.  The UID is
// unique across every company.
type NFCCard struct {
    ID                string     `json:"id"`                   // nfc_cards.id
    UID               string     `json:"uid"`                  // nfc_cards.uid (unique)
    EmployeeProfileID string     `json:"employeeProfileId"`    // nfc_cards.employee_profile_id
    CompanyID         string     `json:"companyId"`            // nfc_cards.company_id
    RegisteredBy      string     `json:"registeredBy"`         // nfc_cards.registered_by
    IsActive          bool       `json:"isActive"`             // nfc_cards.is_active
    RegisteredAt      time.Time  `json:"registeredAt"`         // nfc_cards.registered_at
    LastUsedAt        *time.Time `json:"lastUsedAt,omitempty"` // nfc_cards.last_used_at
    EmployeeName      string     `json:"employeeName,omitempty"`
}
