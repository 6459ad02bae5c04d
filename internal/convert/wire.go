// Package convert maps domain types to and from the AccessGate wire messages.
package convert

import (
	"fmt"
	"strings"
	"time"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/server/grpc/gatev1"
)

// --- helpers ---

func tsPtr(t *time.Time) *time.Time {
	if t == nil || t.IsZero() {
		return nil
	}
	v := t.UTC()
	return &v
}

func ts(t time.Time) *time.Time { return tsPtr(&t) }

// --- Identity ---

// ToWireIdentity converts an identity snapshot; nil stays nil.
func ToWireIdentity(id *model.Identity) *gatev1.Identity {
	if id == nil {
		return nil
	}
	return &gatev1.Identity{
		ID:           id.ID.String(),
		Status:       string(id.Status),
		IsAdmin:      id.IsAdmin,
		Organization: id.OrganizationName(),
	}
}

// --- Windows ---

// ToWireWindow converts an enrollment window; nil stays nil.
func ToWireWindow(w *model.EnrollmentWindow) *gatev1.Window {
	if w == nil {
		return nil
	}
	return &gatev1.Window{
		Organization: w.Organization,
		StartDate:    w.StartDate.String(),
		EndDate:      w.EndDate.String(),
		UpdatedAt:    ts(w.UpdatedAt),
	}
}

// ToWireWindows converts a list of windows.
func ToWireWindows(ws []model.EnrollmentWindow) []*gatev1.Window {
	out := make([]*gatev1.Window, 0, len(ws))
	for i := range ws {
		out = append(out, ToWireWindow(&ws[i]))
	}
	return out
}

// FromWireWindow parses a window sent by an administrator. Malformed input
// is reported as errs.ErrValidation.
func FromWireWindow(in *gatev1.Window) (model.EnrollmentWindow, error) {
	if in == nil {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: window is required", errs.ErrValidation)
	}
	start, err := calendar.ParseDate(strings.TrimSpace(in.StartDate))
	if err != nil {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: start_date: %v", errs.ErrValidation, err)
	}
	end, err := calendar.ParseDate(strings.TrimSpace(in.EndDate))
	if err != nil {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: end_date: %v", errs.ErrValidation, err)
	}
	return model.EnrollmentWindow{
		Organization: strings.TrimSpace(in.Organization),
		StartDate:    start,
		EndDate:      end,
	}, nil
}

// --- Decisions ---

// ToWireDecision converts an access decision.
func ToWireDecision(d model.AccessDecision) *gatev1.Decision {
	return &gatev1.Decision{
		CanAccess:       d.CanAccess(),
		Outcome:         d.Outcome.String(),
		Reason:          string(d.Reason),
		Message:         d.Message,
		Identity:        ToWireIdentity(d.Identity),
		Window:          ToWireWindow(d.Window),
		NextAvailableAt: tsPtr(d.NextAvailableAt),
	}
}

// ToWireQuota converts a quota sub-decision.
func ToWireQuota(q model.QuotaDecision) *gatev1.QuotaResponse {
	return &gatev1.QuotaResponse{CanUse: q.CanUse, NextAvailableAt: tsPtr(q.NextAvailableAt)}
}

// ToWireUsage converts the result of RecordUsage; a nil event means nothing was recorded.
func ToWireUsage(ev *model.UsageEvent) *gatev1.RecordUsageResponse {
	if ev == nil {
		return &gatev1.RecordUsageResponse{}
	}
	return &gatev1.RecordUsageResponse{Recorded: true, EventID: ev.ID, OccurredAt: ts(ev.OccurredAt)}
}

// ToWireCooldown converts a cooldown check result.
func ToWireCooldown(c model.CooldownStatus) *gatev1.CooldownResponse {
	return &gatev1.CooldownResponse{Restricted: c.Restricted, Message: c.Message, ExpiresAt: tsPtr(c.ExpiresAt)}
}
