// Package gatev1 defines the fortunegate.v1.AccessGate wire contract: request
// and response messages, the service descriptor, and a typed client.
package gatev1

import "time"

// Identity is the caller's account snapshot.
type Identity struct {
	ID           string `json:"id"`
	Status       string `json:"status"`
	IsAdmin      bool   `json:"is_admin,omitempty"`
	Organization string `json:"organization,omitempty"`
}

// Window is an enrollment window; dates are YYYY-MM-DD, both inclusive.
type Window struct {
	Organization string     `json:"organization"`
	StartDate    string     `json:"start_date"`
	EndDate      string     `json:"end_date"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Decision is an access decision.
type Decision struct {
	CanAccess       bool       `json:"can_access"`
	Outcome         string     `json:"outcome"`
	Reason          string     `json:"reason,omitempty"`
	Message         string     `json:"message,omitempty"`
	Identity        *Identity  `json:"identity,omitempty"`
	Window          *Window    `json:"window,omitempty"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

type CheckAccessRequest struct{}

type CheckQuotaRequest struct {
	Organization string `json:"organization"`
}

type QuotaResponse struct {
	CanUse          bool       `json:"can_use"`
	NextAvailableAt *time.Time `json:"next_available_at,omitempty"`
}

type RecordUsageRequest struct{}

// RecordUsageResponse reports the stored event. Recorded is false for
// administrators, whose usage is not tracked.
type RecordUsageResponse struct {
	Recorded   bool       `json:"recorded"`
	EventID    string     `json:"event_id,omitempty"`
	OccurredAt *time.Time `json:"occurred_at,omitempty"`
}

type CooldownRequest struct {
	Email string `json:"email"`
}

type CooldownResponse struct {
	Restricted bool       `json:"restricted"`
	Message    string     `json:"message,omitempty"`
	ExpiresAt  *time.Time `json:"expires_at,omitempty"`
}

// PlaceCooldownRequest starts a cooldown. Empty UserAgent and IP are taken
// from the call's metadata and peer address.
type PlaceCooldownRequest struct {
	Email     string `json:"email"`
	UserAgent string `json:"user_agent,omitempty"`
	IP        string `json:"ip,omitempty"`
}

type PlaceCooldownResponse struct {
	ExpiresAt time.Time `json:"expires_at"`
}

type ListWindowsRequest struct{}

type ListWindowsResponse struct {
	Windows []*Window `json:"windows"`
}

type PutWindowRequest struct {
	Window *Window `json:"window"`
}

type PutWindowResponse struct {
	Window *Window `json:"window"`
}

type DeleteWindowRequest struct {
	Organization string `json:"organization"`
}

type DeleteWindowResponse struct{}
