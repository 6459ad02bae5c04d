package convert

import (
	"errors"
	"testing"
	"time"

	u "github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/server/grpc/gatev1"
)

func TestToWireDecision_Denied(t *testing.T) {
	t.Parallel()

	org := "acme"
	kst := time.FixedZone("KST", 9*3600)
	next := time.Date(2025, 5, 11, 0, 0, 0, 0, kst)
	id := &model.Identity{ID: u.Must(u.NewV4()), Status: model.StatusActive, Organization: &org}
	w := &model.EnrollmentWindow{
		Organization: "acme",
		StartDate:    calendar.NewDate(2025, time.May, 1),
		EndDate:      calendar.NewDate(2025, time.May, 31),
	}
	d := model.Deny(model.ReasonQuotaExhausted, id, w)
	d.NextAvailableAt = &next

	got := ToWireDecision(d)
	if got.CanAccess || got.Outcome != "denied" || got.Reason != "quota_exhausted" {
		t.Fatalf("decision header mismatch: %+v", got)
	}
	if got.Identity == nil || got.Identity.ID != id.ID.String() || got.Identity.Organization != "acme" {
		t.Fatalf("identity mismatch: %+v", got.Identity)
	}
	if got.Window == nil || got.Window.StartDate != "2025-05-01" || got.Window.EndDate != "2025-05-31" {
		t.Fatalf("window mismatch: %+v", got.Window)
	}
	if got.Window.UpdatedAt != nil {
		t.Fatalf("zero timestamps must be omitted")
	}
	if got.NextAvailableAt == nil || !got.NextAvailableAt.Equal(next) || got.NextAvailableAt.Location() != time.UTC {
		t.Fatalf("next available must be the same instant in UTC: %v", got.NextAvailableAt)
	}
}

func TestToWireDecision_GrantedAdmin(t *testing.T) {
	t.Parallel()

	d := model.Grant(&model.Identity{ID: u.Must(u.NewV4()), Status: model.StatusActive, IsAdmin: true}, nil)
	got := ToWireDecision(d)
	if !got.CanAccess || got.Outcome != "granted" || got.Reason != "" || got.Window != nil || got.NextAvailableAt != nil {
		t.Fatalf("unexpected: %+v", got)
	}
	if !got.Identity.IsAdmin || got.Identity.Organization != "" {
		t.Fatalf("identity: %+v", got.Identity)
	}
}

func TestFromWireWindow(t *testing.T) {
	t.Parallel()

	w, err := FromWireWindow(&gatev1.Window{Organization: " acme ", StartDate: "2025-03-01", EndDate: " 2025-03-31"})
	if err != nil {
		t.Fatalf("FromWireWindow: %v", err)
	}
	if w.Organization != "acme" || w.StartDate != calendar.NewDate(2025, time.March, 1) || w.EndDate != calendar.NewDate(2025, time.March, 31) {
		t.Fatalf("mismatch: %+v", w)
	}

	bad := []*gatev1.Window{
		nil,
		{Organization: "acme", StartDate: "03/01/2025", EndDate: "2025-03-31"},
		{Organization: "acme", StartDate: "2025-03-01", EndDate: ""},
	}
	for i, in := range bad {
		if _, err := FromWireWindow(in); !errors.Is(err, errs.ErrValidation) {
			t.Fatalf("case %d: want ErrValidation, got %v", i, err)
		}
	}
}

func TestToWireWindows(t *testing.T) {
	t.Parallel()

	ws := []model.EnrollmentWindow{
		{Organization: "a", StartDate: calendar.NewDate(2025, 1, 1), EndDate: calendar.NewDate(2025, 1, 2)},
		{Organization: "b", StartDate: calendar.NewDate(2025, 2, 1), EndDate: calendar.NewDate(2025, 2, 2)},
	}
	got := ToWireWindows(ws)
	if len(got) != 2 || got[0].Organization != "a" || got[1].Organization != "b" {
		t.Fatalf("unexpected: %+v", got)
	}
	if out := ToWireWindows(nil); out == nil || len(out) != 0 {
		t.Fatalf("empty input must give an empty, non-nil slice")
	}
}

func TestToWireUsageQuotaCooldown(t *testing.T) {
	t.Parallel()

	if r := ToWireUsage(nil); r.Recorded || r.EventID != "" {
		t.Fatalf("nil event: %+v", r)
	}
	at := time.Date(2025, 5, 10, 9, 0, 0, 0, time.UTC)
	if r := ToWireUsage(&model.UsageEvent{ID: "01J", OccurredAt: at}); !r.Recorded || r.EventID != "01J" || !r.OccurredAt.Equal(at) {
		t.Fatalf("event: %+v", r)
	}

	if q := ToWireQuota(model.QuotaDecision{CanUse: true}); !q.CanUse || q.NextAvailableAt != nil {
		t.Fatalf("quota: %+v", q)
	}

	c := ToWireCooldown(model.CooldownStatus{Restricted: true, Message: "wait", ExpiresAt: &at})
	if !c.Restricted || c.Message != "wait" || !c.ExpiresAt.Equal(at) {
		t.Fatalf("cooldown: %+v", c)
	}
}
