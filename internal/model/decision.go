package model

import "time"

// Outcome is the terminal state of an access decision.
type Outcome int

const (
	Denied Outcome = iota
	Granted
)

func (o Outcome) String() string {
	if o == Granted {
		return "granted"
	}
	return "denied"
}

// Reason is a machine-checkable denial code.
type Reason string

const (
	ReasonNone                Reason = ""
	ReasonNotFound            Reason = "not_found"
	ReasonBlocked             Reason = "blocked"
	ReasonDeleted             Reason = "deleted"
	ReasonStatusUnknown       Reason = "status_unknown"
	ReasonOrganizationNotSet  Reason = "organization_not_set"
	ReasonWindowNotConfigured Reason = "window_not_configured"
	ReasonOutsideWindow       Reason = "outside_window"
	ReasonQuotaExhausted      Reason = "quota_exhausted"
)

var reasonMessages = map[Reason]string{
	ReasonNotFound:            "account not found",
	ReasonBlocked:             "account is blocked",
	ReasonDeleted:             "account has been deleted",
	ReasonStatusUnknown:       "account status is not recognized",
	ReasonOrganizationNotSet:  "organization is not set; choose one to continue",
	ReasonWindowNotConfigured: "enrollment window is not configured for your organization",
	ReasonOutsideWindow:       "today is outside your organization's enrollment window",
	ReasonQuotaExhausted:      "daily quota exhausted; try again after the next reset",
}

// Message returns the human-readable explanation for r.
func (r Reason) Message() string { return reasonMessages[r] }

// AccessDecision is the result of CheckAccess / CheckFullAccess.
// Identity is populated whenever the identity could be resolved, including
// on denials, so callers can render a partial profile (e.g. prompt for an
// organization). Window carries the bounds for window-related outcomes.
type AccessDecision struct {
	Outcome         Outcome
	Reason          Reason
	Message         string
	Identity        *Identity
	Window          *EnrollmentWindow
	NextAvailableAt *time.Time
}

// CanAccess reports whether the decision granted access.
func (d AccessDecision) CanAccess() bool { return d.Outcome == Granted }

// Grant builds a granted decision.
func Grant(id *Identity, w *EnrollmentWindow) AccessDecision {
	return AccessDecision{Outcome: Granted, Identity: id, Window: w}
}

// Deny builds a denied decision with the reason's default message.
func Deny(r Reason, id *Identity, w *EnrollmentWindow) AccessDecision {
	return AccessDecision{Outcome: Denied, Reason: r, Message: r.Message(), Identity: id, Window: w}
}

// QuotaStatus is the raw answer of the usage tracker.
type QuotaStatus struct {
	Used            bool
	NextAvailableAt *time.Time
}

// QuotaDecision is the quota-only sub-decision.
type QuotaDecision struct {
	CanUse          bool
	NextAvailableAt *time.Time
}

// CooldownStatus is the answer to "may this email register now".
type CooldownStatus struct {
	Restricted bool
	Message    string
	ExpiresAt  *time.Time
}
