// Package model defines domain entities used by services and repositories.
package model

import (
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/calendar"
)

// Status is an account lifecycle state.
type Status string

const (
	StatusActive  Status = "active"
	StatusBanned  Status = "banned"
	StatusDeleted Status = "deleted"
	StatusUnknown Status = "unknown"
)

// ParseStatus maps a stored value onto a known status; anything else is StatusUnknown.
func ParseStatus(s string) Status {
	switch Status(s) {
	case StatusActive, StatusBanned, StatusDeleted:
		return Status(s)
	default:
		return StatusUnknown
	}
}

// Identity is an account as seen by the decision core. It is owned by the
// account subsystem; the core only reads it.
type Identity struct {
	ID           uuid.UUID
	Status       Status
	IsAdmin      bool
	Organization *string // nil until the user picks one
	CreatedAt    time.Time
}

// OrganizationName returns the organization or "" when unset.
func (i Identity) OrganizationName() string {
	if i.Organization == nil {
		return ""
	}
	return *i.Organization
}

// EnrollmentWindow is the inclusive date range during which members of an
// organization may use the service.
type EnrollmentWindow struct {
	Organization string
	StartDate    calendar.Date
	EndDate      calendar.Date
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// ActiveOn reports whether StartDate <= d <= EndDate.
func (w EnrollmentWindow) ActiveOn(d calendar.Date) bool {
	return d.Between(w.StartDate, w.EndDate)
}

// UsageEvent records one quota-consuming action.
type UsageEvent struct {
	ID         string // ULID
	IdentityID uuid.UUID
	OccurredAt time.Time
}

// DeletionCooldownRecord blocks re-registration of a hashed email until ExpiresAt.
// Only one-way hashes are stored.
type DeletionCooldownRecord struct {
	EmailHash     string
	UserAgentHash *string
	IPHash        *string
	ExpiresAt     time.Time
	CreatedAt     time.Time
}

// Expired reports whether the record is no longer in force at now.
func (r DeletionCooldownRecord) Expired(now time.Time) bool {
	return now.After(r.ExpiresAt)
}
