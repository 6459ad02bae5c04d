package service

import (
	"context"
	"fmt"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.uber.org/zap"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/ids"
	"github.com/and161185/fortune-gate/internal/metrics"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/repository"
)

// QuotaTracker records usage and answers the once-per-calendar-day question.
type QuotaTracker interface {
	// HasUsedOn reports whether the identity consumed its allotment on d. Never fails.
	HasUsedOn(ctx context.Context, id uuid.UUID, isAdmin bool, d calendar.Date) model.QuotaStatus
	// Record stores a usage event at the given instant.
	Record(ctx context.Context, id uuid.UUID, at time.Time) (model.UsageEvent, error)
	// Purge removes events older than before.
	Purge(ctx context.Context, before time.Time) (int64, error)
}

type QuotaTrackerImpl struct {
	events  repository.UsageEventRepository
	clock   calendar.Clock
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewQuotaTracker constructs a QuotaTracker. Days are delimited by the clock's location.
func NewQuotaTracker(events repository.UsageEventRepository, clock calendar.Clock, log *zap.Logger, m *metrics.Metrics) *QuotaTrackerImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &QuotaTrackerImpl{events: events, clock: clock, log: log, metrics: m}
}

// HasUsedOn looks up the latest event inside d's local day. Administrators
// are never gated. A failed read is reported as "not used".
func (q *QuotaTrackerImpl) HasUsedOn(ctx context.Context, id uuid.UUID, isAdmin bool, d calendar.Date) model.QuotaStatus {
	if isAdmin {
		return model.QuotaStatus{}
	}
	from, to := calendar.DayRange(d, q.clock.Location())
	ev, err := q.events.MostRecentInRange(ctx, id, from, to)
	if err != nil {
		q.log.Warn("quota lookup failed; treating as unused",
			zap.String("identity", id.String()), zap.String("date", d.String()), zap.Error(err))
		q.metrics.FailOpen("quota")
		return model.QuotaStatus{}
	}
	if ev == nil {
		return model.QuotaStatus{}
	}
	next := q.nextAvailableAt(ev.OccurredAt)
	return model.QuotaStatus{Used: true, NextAvailableAt: &next}
}

// nextAvailableAt is the first local midnight after the event, or after now
// when that midnight has already passed. The result is never in the past.
func (q *QuotaTrackerImpl) nextAvailableAt(eventAt time.Time) time.Time {
	loc := q.clock.Location()
	next := calendar.NextMidnightAfter(eventAt, loc)
	if now := q.clock.Now(); !next.After(now) {
		next = calendar.NextMidnightAfter(now, loc)
	}
	return next
}

// Record stores a usage event. Failures are returned: the action that needed
// the slot must not look free.
func (q *QuotaTrackerImpl) Record(ctx context.Context, id uuid.UUID, at time.Time) (model.UsageEvent, error) {
	if id == uuid.Nil {
		return model.UsageEvent{}, fmt.Errorf("%w: empty identity id", errs.ErrValidation)
	}
	ev := model.UsageEvent{ID: ids.New(at), IdentityID: id, OccurredAt: at}
	if err := q.events.Insert(ctx, ev); err != nil {
		return model.UsageEvent{}, fmt.Errorf("record usage: %w", err)
	}
	q.metrics.UsageRecorded()
	return ev, nil
}

// Purge deletes events that occurred before the cutoff.
func (q *QuotaTrackerImpl) Purge(ctx context.Context, before time.Time) (int64, error) {
	n, err := q.events.DeleteBefore(ctx, before)
	if err != nil {
		return 0, fmt.Errorf("purge usage: %w", err)
	}
	return n, nil
}
