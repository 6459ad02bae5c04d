package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/metrics"
	"github.com/and161185/fortune-gate/internal/model"
)

// AccessService composes status, enrollment, quota and cooldown checks into
// the decisions consumed by the transport layer.
type AccessService interface {
	// CheckAccess runs the status, admin, organization and enrollment steps.
	CheckAccess(ctx context.Context, id uuid.UUID) (model.AccessDecision, error)
	// CheckQuota answers only the daily-quota question.
	CheckQuota(ctx context.Context, id uuid.UUID, organization string) (model.QuotaDecision, error)
	// CheckFullAccess runs CheckAccess followed by the quota step.
	CheckFullAccess(ctx context.Context, id uuid.UUID) (model.AccessDecision, error)
	// RecordUsage consumes today's allotment; nil event for administrators.
	RecordUsage(ctx context.Context, id uuid.UUID) (*model.UsageEvent, error)
	// CheckDeletionCooldown reports whether the email may register now.
	CheckDeletionCooldown(ctx context.Context, email string) (model.CooldownStatus, error)
	// PlaceDeletionCooldown starts the re-registration cooldown for a deleted account.
	PlaceDeletionCooldown(ctx context.Context, email, userAgent, ip string) (time.Time, error)
	// RequireAdmin returns nil only for an active administrator.
	RequireAdmin(ctx context.Context, id uuid.UUID) error
}

type AccessServiceImpl struct {
	gate      StatusGate
	windows   EnrollmentRegistry
	quota     QuotaTracker
	cooldowns CooldownRegistry
	clock     calendar.Clock
	log       *zap.Logger
	metrics   *metrics.Metrics
}

// NewAccessService wires the decision services together.
func NewAccessService(
	gate StatusGate,
	windows EnrollmentRegistry,
	quota QuotaTracker,
	cooldowns CooldownRegistry,
	clock calendar.Clock,
	log *zap.Logger,
	m *metrics.Metrics,
) *AccessServiceImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &AccessServiceImpl{
		gate:      gate,
		windows:   windows,
		quota:     quota,
		cooldowns: cooldowns,
		clock:     clock,
		log:       log,
		metrics:   m,
	}
}

// CheckAccess decides whether the identity may act today, ignoring quota.
func (s *AccessServiceImpl) CheckAccess(ctx context.Context, id uuid.UUID) (model.AccessDecision, error) {
	d, err := s.checkAccess(ctx, id, calendar.Today(s.clock))
	if err != nil {
		return model.AccessDecision{}, err
	}
	s.observe("access", d)
	return d, nil
}

// CheckFullAccess decides whether the identity may act now, quota included.
// "Today" is fixed once so a decision straddling midnight stays consistent.
func (s *AccessServiceImpl) CheckFullAccess(ctx context.Context, id uuid.UUID) (model.AccessDecision, error) {
	today := calendar.Today(s.clock)
	d, err := s.checkAccess(ctx, id, today)
	if err != nil {
		return model.AccessDecision{}, err
	}
	if !d.CanAccess() || d.Identity.IsAdmin {
		s.observe("full", d)
		return d, nil
	}

	q := s.quota.HasUsedOn(ctx, id, false, today)
	if q.Used {
		d = model.Deny(model.ReasonQuotaExhausted, d.Identity, d.Window)
		d.NextAvailableAt = q.NextAvailableAt
		if q.NextAvailableAt != nil {
			d.Message = fmt.Sprintf("%s (available again at %s)",
				d.Message, q.NextAvailableAt.In(s.clock.Location()).Format(time.RFC3339))
		}
	}
	s.observe("full", d)
	return d, nil
}

// checkAccess evaluates, in order: status veto, admin bypass, organization,
// enrollment window. The first denial wins.
func (s *AccessServiceImpl) checkAccess(ctx context.Context, id uuid.UUID, today calendar.Date) (model.AccessDecision, error) {
	ident, err := s.gate.Resolve(ctx, id)
	if err != nil {
		if errors.Is(err, errs.ErrNotFound) {
			return model.Deny(model.ReasonNotFound, nil, nil), nil
		}
		return model.AccessDecision{}, fmt.Errorf("resolve identity: %w", err)
	}

	switch ident.Status {
	case model.StatusActive:
	case model.StatusBanned:
		return model.Deny(model.ReasonBlocked, ident, nil), nil
	case model.StatusDeleted:
		return model.Deny(model.ReasonDeleted, ident, nil), nil
	default:
		return model.Deny(model.ReasonStatusUnknown, ident, nil), nil
	}

	if ident.IsAdmin {
		return model.Grant(ident, nil), nil
	}

	org := ident.OrganizationName()
	if strings.TrimSpace(org) == "" {
		return model.Deny(model.ReasonOrganizationNotSet, ident, nil), nil
	}

	w := s.windowFor(ctx, org, today)
	if w == nil {
		return model.Deny(model.ReasonWindowNotConfigured, ident, nil), nil
	}
	if !w.ActiveOn(today) {
		d := model.Deny(model.ReasonOutsideWindow, ident, w)
		d.Message = fmt.Sprintf("%s (%s to %s)", d.Message, w.StartDate, w.EndDate)
		return d, nil
	}
	return model.Grant(ident, w), nil
}

// windowFor returns the organization's window active today and otherwise
// its configured window, so the caller can tell "outside the window" from
// "no window at all".
func (s *AccessServiceImpl) windowFor(ctx context.Context, org string, today calendar.Date) *model.EnrollmentWindow {
	if w := s.windows.WindowFor(ctx, org, today); w != nil {
		return w
	}
	return s.windows.Lookup(ctx, org)
}

// CheckQuota is the quota-only sub-decision for callers that already hold an
// access grant. Administrators can always use the service.
func (s *AccessServiceImpl) CheckQuota(ctx context.Context, id uuid.UUID, organization string) (model.QuotaDecision, error) {
	ident, err := s.gate.Resolve(ctx, id)
	if err != nil {
		return model.QuotaDecision{}, fmt.Errorf("resolve identity: %w", err)
	}
	qd, err := s.quotaFor(ctx, ident, organization, calendar.Today(s.clock))
	if err != nil {
		return model.QuotaDecision{}, err
	}
	outcome := model.Denied
	if qd.CanUse {
		outcome = model.Granted
	}
	s.metrics.Decision("quota", outcome.String(), "")
	return qd, nil
}

func (s *AccessServiceImpl) quotaFor(ctx context.Context, ident *model.Identity, organization string, today calendar.Date) (model.QuotaDecision, error) {
	if !ident.IsAdmin && strings.TrimSpace(organization) == "" {
		return model.QuotaDecision{}, fmt.Errorf("%w: organization is required", errs.ErrValidation)
	}
	q := s.quota.HasUsedOn(ctx, ident.ID, ident.IsAdmin, today)
	return model.QuotaDecision{CanUse: !q.Used, NextAvailableAt: q.NextAvailableAt}, nil
}

// RecordUsage re-runs the access decision and the quota check, then stores a
// usage event. The check and the insert are not atomic: two concurrent calls
// for one identity may both pass.
func (s *AccessServiceImpl) RecordUsage(ctx context.Context, id uuid.UUID) (*model.UsageEvent, error) {
	now := s.clock.Now()
	today := calendar.DateOf(now.In(s.clock.Location()))

	d, err := s.checkAccess(ctx, id, today)
	if err != nil {
		return nil, err
	}
	if !d.CanAccess() {
		s.observe("record", d)
		return nil, denialError(d)
	}
	ident := d.Identity
	if ident.IsAdmin {
		return nil, nil
	}

	qd, err := s.quotaFor(ctx, ident, ident.OrganizationName(), today)
	if err != nil {
		return nil, err
	}
	if !qd.CanUse {
		if qd.NextAvailableAt != nil {
			return nil, fmt.Errorf("%w: next available at %s", errs.ErrQuotaExhausted, qd.NextAvailableAt.Format(time.RFC3339))
		}
		return nil, errs.ErrQuotaExhausted
	}

	ev, err := s.quota.Record(ctx, id, now)
	if err != nil {
		return nil, err
	}
	s.log.Debug("usage recorded", zap.String("identity", id.String()), zap.String("event", ev.ID))
	return &ev, nil
}

// denialError turns a denied decision into the error RecordUsage reports.
func denialError(d model.AccessDecision) error {
	switch d.Reason {
	case model.ReasonNotFound:
		return fmt.Errorf("resolve identity: %w", errs.ErrNotFound)
	case model.ReasonOrganizationNotSet:
		return fmt.Errorf("%w: %s", errs.ErrValidation, d.Message)
	default:
		return fmt.Errorf("%w: %s", errs.ErrForbidden, d.Message)
	}
}

// CheckDeletionCooldown delegates to the cooldown registry.
func (s *AccessServiceImpl) CheckDeletionCooldown(ctx context.Context, email string) (model.CooldownStatus, error) {
	return s.cooldowns.CheckRestricted(ctx, email)
}

// PlaceDeletionCooldown delegates to the cooldown registry.
func (s *AccessServiceImpl) PlaceDeletionCooldown(ctx context.Context, email, userAgent, ip string) (time.Time, error) {
	return s.cooldowns.Place(ctx, email, userAgent, ip)
}

// RequireAdmin resolves the identity and checks it is an active administrator.
func (s *AccessServiceImpl) RequireAdmin(ctx context.Context, id uuid.UUID) error {
	ident, err := s.gate.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if ident.Status != model.StatusActive || !ident.IsAdmin {
		return errs.ErrForbidden
	}
	return nil
}

func (s *AccessServiceImpl) observe(kind string, d model.AccessDecision) {
	s.metrics.Decision(kind, d.Outcome.String(), string(d.Reason))
	if !d.CanAccess() {
		fields := []zap.Field{zap.String("kind", kind), zap.String("reason", string(d.Reason))}
		if d.Identity != nil {
			fields = append(fields, zap.String("identity", d.Identity.ID.String()))
		}
		s.log.Debug("access denied", fields...)
	}
}
