package model

import "time"

// EventType distinguishes clock-in from clock-out events.
type EventType string

const (
    ClockIn  EventType = "CLOCK_IN"
    ClockOut EventType = "CLOCK_OUT"
)

// Valid reports whether t is CLOCK_IN or CLOCK_OUT.
func (t EventType) Valid() bool { return t == ClockIn || t == ClockOut }

// EventSource records how an event was captured.
type EventSource string

const (
    SourceApp EventSource = "APP"
    SourceNFC EventSource = "NFC"
)

// AttendanceEvent is an immutable, geotagged clock event.  Rows are
// inserted once and never updated.
type AttendanceEvent struct {
    ID                string      `json:"id"`                  // attendance_events.id
    EmployeeProfileID string      `json:"employeeProfileId"`   // attendance_events.employee_profile_id
    CompanyID         string      `json:"companyId"`           // attendance_events.company_id
    EventType         EventType   `json:"eventType"`           // attendance_events.event_type
    CapturedAt        time.Time   `json:"capturedAt"`          // attendance_events.captured_at
    LocationLat       float64     `json:"locationLat"`         // attendance_events.location_lat
    LocationLng       float64     `json:"locationLng"`         // attendance_events.location_lng
    AccuracyMeters    float64     `json:"accuracyMeters"`      // attendance_events.accuracy_meters
    Address           *string     `json:"address,omitempty"`   // attendance_events.address
    Source            EventSource `json:"source"`              // attendance_events.source
    NFCCardID         *string     `json:"nfcCardId,omitempty"` // attendance_events.nfc_card_id

    // Joined from employee_profiles for reports.
    EmployeeName  string  `json:"employeeName,omitempty"`
    EmployeeEmail string  `json:"employeeEmail,omitempty"`
    EmployeeCode  *string `json:"employeeCode,omitempty"`
}
