package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/metrics"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/repository"
)

// EnrollmentRegistry answers which organizations may use the service on a date
// and lets administrators manage the windows.
type EnrollmentRegistry interface {
	// ActiveWindowsOn returns windows covering d ordered by organization. Never fails.
	ActiveWindowsOn(ctx context.Context, d calendar.Date) []model.EnrollmentWindow
	// WindowFor returns the organization's window if it covers d, else nil.
	WindowFor(ctx context.Context, org string, d calendar.Date) *model.EnrollmentWindow
	// Lookup returns the organization's configured window regardless of date, else nil.
	Lookup(ctx context.Context, org string) *model.EnrollmentWindow
	// List returns all configured windows.
	List(ctx context.Context) ([]model.EnrollmentWindow, error)
	// Put creates or replaces an organization's window.
	Put(ctx context.Context, w model.EnrollmentWindow) (model.EnrollmentWindow, error)
	// Delete removes an organization's window.
	Delete(ctx context.Context, org string) error
}

type EnrollmentRegistryImpl struct {
	repo    repository.EnrollmentWindowRepository
	log     *zap.Logger
	metrics *metrics.Metrics
}

// NewEnrollmentRegistry constructs an EnrollmentRegistry.
func NewEnrollmentRegistry(repo repository.EnrollmentWindowRepository, log *zap.Logger, m *metrics.Metrics) *EnrollmentRegistryImpl {
	if log == nil {
		log = zap.NewNop()
	}
	return &EnrollmentRegistryImpl{repo: repo, log: log, metrics: m}
}

// ActiveWindowsOn queries windows with start <= d <= end. Store failures
// resolve to an empty list, the same state as "nothing configured yet".
func (r *EnrollmentRegistryImpl) ActiveWindowsOn(ctx context.Context, d calendar.Date) []model.EnrollmentWindow {
	ws, err := r.repo.FindActiveOn(ctx, d)
	if err != nil {
		r.log.Warn("enrollment lookup failed; treating as not configured",
			zap.String("date", d.String()), zap.Error(err))
		r.metrics.FailOpen("enrollment")
		return []model.EnrollmentWindow{}
	}
	out := make([]model.EnrollmentWindow, 0, len(ws))
	for _, w := range ws {
		// The store predicate is trusted for selection but re-checked so a
		// lenient backend cannot widen the window.
		if w.ActiveOn(d) {
			out = append(out, w)
		}
	}
	return out
}

// WindowFor returns the organization's window active on d, or nil.
func (r *EnrollmentRegistryImpl) WindowFor(ctx context.Context, org string, d calendar.Date) *model.EnrollmentWindow {
	for _, w := range r.ActiveWindowsOn(ctx, d) {
		if w.Organization == org {
			return &w
		}
	}
	return nil
}

// Lookup returns the organization's window regardless of date, or nil.
func (r *EnrollmentRegistryImpl) Lookup(ctx context.Context, org string) *model.EnrollmentWindow {
	w, err := r.repo.GetByOrganization(ctx, org)
	if err != nil {
		if !errors.Is(err, errs.ErrNotFound) {
			r.log.Warn("enrollment window lookup failed; treating as not configured",
				zap.String("organization", org), zap.Error(err))
			r.metrics.FailOpen("enrollment")
		}
		return nil
	}
	return w
}

// List returns every window ordered by organization.
func (r *EnrollmentRegistryImpl) List(ctx context.Context) ([]model.EnrollmentWindow, error) {
	ws, err := r.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list windows: %w", err)
	}
	return ws, nil
}

// Put validates and stores a window.
// Validation rules:
// - organization not blank
// - both dates set
// - start <= end
func (r *EnrollmentRegistryImpl) Put(ctx context.Context, w model.EnrollmentWindow) (model.EnrollmentWindow, error) {
	w.Organization = strings.TrimSpace(w.Organization)
	if w.Organization == "" {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: empty organization", errs.ErrValidation)
	}
	if w.StartDate.IsZero() || w.EndDate.IsZero() {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: start and end dates are required", errs.ErrValidation)
	}
	if w.EndDate.Before(w.StartDate) {
		return model.EnrollmentWindow{}, fmt.Errorf("%w: start %s after end %s", errs.ErrValidation, w.StartDate, w.EndDate)
	}
	out, err := r.repo.Upsert(ctx, w)
	if err != nil {
		return model.EnrollmentWindow{}, fmt.Errorf("put window: %w", err)
	}
	r.log.Info("enrollment window saved",
		zap.String("organization", out.Organization),
		zap.String("start", out.StartDate.String()),
		zap.String("end", out.EndDate.String()))
	return out, nil
}

// Delete removes a window; errs.ErrNotFound when there is none.
func (r *EnrollmentRegistryImpl) Delete(ctx context.Context, org string) error {
	org = strings.TrimSpace(org)
	if org == "" {
		return fmt.Errorf("%w: empty organization", errs.ErrValidation)
	}
	if err := r.repo.Delete(ctx, org); err != nil {
		return fmt.Errorf("delete window: %w", err)
	}
	r.log.Info("enrollment window deleted", zap.String("organization", org))
	return nil
}
