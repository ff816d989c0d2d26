package queue

import (
    "context"
    "encoding/json"

    "github.com/mrjaketay/timeApp-sub001/internal/audit"
)

// secretFields are payload keys that never reach an audit line.  The
// invitation token alone is enough to accept an invitation.
var secretFields = map[string]bool{"token": true}

// AuditHandler writes one audit line per consumed event.
func AuditHandler(ctx context.Context, ev Envelope) error {
    fields := map[string]any{
        "company_id":  ev.CompanyID,
        "occurred_at": ev.OccurredAt,
    }
    if data := auditData(ev.Data); data != nil {
        fields["data"] = data
    }
    return audit.LogEvent(ctx, "event."+ev.Type, fields)
}

func auditData(raw json.RawMessage) map[string]any {
    var m map[string]any
    if len(raw) == 0 || json.Unmarshal(raw, &m) != nil {
        return nil
    }
    for k := range m {
        if secretFields[k] {
            delete(m, k)
        }
    }
    return m
}
