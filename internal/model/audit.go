package model

import "time"

// AuditEntry is one immutable record of a privileged action. Entries are
// append-only; nothing in this service updates or deletes them.
type AuditEntry struct {
	ID        int64          `json:"id"`
	UserID    int64          `json:"user_id"`
	Action    string         `json:"action"`
	Resource  string         `json:"resource"`
	Payload   map[string]any `json:"payload,omitempty"`
	CreatedAt time.Time      `json:"created_at"`
}

type AuditListResponse struct {
	Entries []AuditEntry `json:"entries"`
	Count   int          `json:"count"`
}
