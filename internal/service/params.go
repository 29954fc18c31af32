package service

import (
	"time"

	"controlling_vacuums/internal/models"
)

// SearchFilter narrows vacuum listings. Zero fields mean "no constraint";
// results are always limited to the calling owner.
type SearchFilter struct {
	Name     string          // substring match on name
	Statuses []models.Status // any of these statuses
	From     time.Time       // creation-time lower bound, inclusive
	To       time.Time       // creation-time upper bound, inclusive
}

// Rejection is a synchronous refusal of a request. The reason is
// user-facing and written verbatim to the audit trail.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string { return r.Reason }
