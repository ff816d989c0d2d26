package model

import "time"

// Timesheet is one employee's derived day: the first clock-in and the
// first clock-out after it.  It is never stored.
type Timesheet struct {
    Date              string           `json:"date"` // YYYY-MM-DD in the company time zone
    EmployeeProfileID string           `json:"employeeProfileId"`
    EmployeeName      string           `json:"employeeName,omitempty"`
    ClockIn           AttendanceEvent  `json:"clockIn"`
    ClockOut          *AttendanceEvent `json:"clockOut,omitempty"`
    HoursWorked       *float64         `json:"hoursWorked,omitempty"`
}

// Duration returns the worked span, or zero while the day is open.
func (t Timesheet) Duration() time.Duration {
    if t.ClockOut == nil {
        return 0
    }
    return t.ClockOut.CapturedAt.Sub(t.ClockIn.CapturedAt)
}
