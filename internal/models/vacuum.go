package models

import "time"

// Status is the operating state of a vacuum.
type Status string

const (
	StatusStopped     Status = "STOPPED"
	StatusRunning     Status = "RUNNING"
	StatusDischarging Status = "DISCHARGING"
)

// KnownStatus reports whether s is one of the defined states.
func KnownStatus(s Status) bool {
	switch s {
	case StatusStopped, StatusRunning, StatusDischarging:
		return true
	}
	return false
}

// Vacuum is a managed unit. Version is the optimistic-concurrency token:
// every successful update bumps it, and a write against a stale version
// is rejected by the repository.
type Vacuum struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Status    Status    `json:"status"`
	AddedBy   int       `json:"added_by"`
	Active    bool      `json:"active"`
	Cycle     int       `json:"cycle"` // completed RUNNING activations since last discharge
	Version   int64     `json:"-"`
	CreatedAt time.Time `json:"created_at"`
}
