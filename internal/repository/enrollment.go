package repository

import (
	"context"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/model"
)

// EnrollmentWindowRepository stores per-organization enrollment windows.
type EnrollmentWindowRepository interface {
	// FindActiveOn returns windows with start_date <= d <= end_date, ordered by organization.
	FindActiveOn(ctx context.Context, d calendar.Date) ([]model.EnrollmentWindow, error)
	// GetByOrganization returns the window of one organization; errs.ErrNotFound when absent.
	GetByOrganization(ctx context.Context, org string) (*model.EnrollmentWindow, error)
	// List returns all windows ordered by organization.
	List(ctx context.Context) ([]model.EnrollmentWindow, error)
	// Upsert creates or replaces the window keyed by organization.
	Upsert(ctx context.Context, w model.EnrollmentWindow) (model.EnrollmentWindow, error)
	// Delete removes the window of an organization; errs.ErrNotFound when absent.
	Delete(ctx context.Context, org string) error
}
