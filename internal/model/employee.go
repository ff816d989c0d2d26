package model

import "time"

// EmployeeProfile is the subject of clock events.  It is owned by a company
// and carries no credential of its own.
//
// EmployeeID is the human-assigned badge number.  It is unique across all
// companies; employers namespace it by convention.
type EmployeeProfile struct {
    ID                  string     `json:"id"`                            // employee_profiles.id
    CompanyID           string     `json:"companyId"`                     // employee_profiles.company_id
    Name                string     `json:"name"`                          // employee_profiles.name
    Email               string     `json:"email"`                         // employee_profiles.email
    EmployeeID          *string    `json:"employeeId,omitempty"`          // employee_profiles.employee_id (nullable, globally unique)
    Phone               *string    `json:"phone,omitempty"`               // employee_profiles.phone
    Address             *string    `json:"address,omitempty"`             // employee_profiles.address
    SalaryRate          *float64   `json:"salaryRate,omitempty"`          // employee_profiles.salary_rate
    EmploymentStartDate *time.Time `json:"employmentStartDate,omitempty"` // employee_profiles.employment_start_date
    IsActive            bool       `json:"isActive"`                      // employee_profiles.is_active
    CreatedAt           time.Time  `json:"createdAt"`                     // employee_profiles.created_at
}
