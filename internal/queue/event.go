// Package queue defines the domain events published to RabbitMQ and the
// publisher and consumer that move them.
package queue

import (
    "encoding/json"
    "time"
)

const (
    // Exchange is the durable topic exchange every event is published to.
    Exchange = "timeapp.events"
    // AuditQueue receives every event (binding "#") for the audit trail.
    AuditQueue = "timeapp.audit"
)

// Routing keys.
const (
    InvitationCreated  = "invitation.created"
    InvitationAccepted = "invitation.accepted"
    NFCCardRegistered  = "nfc.registered"
    AttendanceRecorded = "attendance.recorded"
)

// Envelope wraps every event on the wire.
type Envelope struct {
    Type       string          `json:"type"`
    CompanyID  string          `json:"company_id"`
    OccurredAt time.Time       `json:"occurred_at"`
    Data       json.RawMessage `json:"data"`
}

// NewEnvelope marshals data under the given routing key.
func NewEnvelope(eventType, companyID string, data any) (Envelope, error) {
    raw, err := json.Marshal(data)
    if err != nil {
        return Envelope{}, err
    }
    return Envelope{Type: eventType, CompanyID: companyID, OccurredAt: time.Now().UTC(), Data: raw}, nil
}

// InvitationCreatedEvent carries what a mailer needs to send the invite.
type InvitationCreatedEvent struct {
    InvitationID string    `json:"invitation_id"`
    Email        string    `json:"email"`
    Name         string    `json:"name"`
    Token        string    `json:"token"`
    ExpiresAt    time.Time `json:"expires_at"`
}

// InvitationAcceptedEvent is emitted after the profile has been created.
type InvitationAcceptedEvent struct {
    InvitationID      string `json:"invitation_id"`
    EmployeeProfileID string `json:"employee_profile_id"`
    Email             string `json:"email"`
}

// NFCCardRegisteredEvent is emitted when a card is bound to an employee.
type NFCCardRegisteredEvent struct {
    CardID            string `json:"card_id"`
    UID               string `json:"uid"`
    EmployeeProfileID string `json:"employee_profile_id"`
    RegisteredBy      string `json:"registered_by"`
}

// AttendanceRecordedEvent is emitted for every clock event.
type AttendanceRecordedEvent struct {
    EventID           string    `json:"event_id"`
    EmployeeProfileID string    `json:"employee_profile_id"`
    EventType         string    `json:"event_type"`
    Source            string    `json:"source"`
    CapturedAt        time.Time `json:"captured_at"`
}
