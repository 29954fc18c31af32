package models

import "time"

// AuditRecord is one append-only entry describing a rejected or failed
// transition attempt. Records are never updated or deleted.
type AuditRecord struct {
	ID         int64     `json:"id"`
	OccurredAt time.Time `json:"occurred_at"`
	VacuumID   int64     `json:"vacuum_id"`
	Action     Action    `json:"action"`
	Message    string    `json:"message"`
}
