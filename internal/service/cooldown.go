package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/crypto"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/metrics"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/repository"
)

// DefaultCooldown is how long a deleted account's email stays blocked.
const DefaultCooldown = 24 * time.Hour

// CooldownRegistry blocks re-registration of recently deleted emails.
type CooldownRegistry interface {
	// CheckRestricted reports whether the email is inside a cooldown.
	CheckRestricted(ctx context.Context, email string) (model.CooldownStatus, error)
	// Place starts (or restarts) a cooldown and returns its expiry.
	Place(ctx context.Context, email, userAgent, ip string) (time.Time, error)
	// PurgeExpired removes all expired cooldowns.
	PurgeExpired(ctx context.Context) (int64, error)
}

type CooldownRegistryImpl struct {
	repo     repository.DeletionCooldownRepository
	clock    calendar.Clock
	duration time.Duration
	log      *zap.Logger
	metrics  *metrics.Metrics
}

// NewCooldownRegistry constructs a CooldownRegistry. A non-positive duration means DefaultCooldown.
func NewCooldownRegistry(repo repository.DeletionCooldownRepository, clock calendar.Clock, duration time.Duration, log *zap.Logger, m *metrics.Metrics) *CooldownRegistryImpl {
	if duration <= 0 {
		duration = DefaultCooldown
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &CooldownRegistryImpl{repo: repo, clock: clock, duration: duration, log: log, metrics: m}
}

// CheckRestricted looks up the hashed email. Expired records are deleted on
// sight. Store errors resolve to "not restricted" so a degraded store does
// not lock out legitimate users; only a blank email is an error.
func (c *CooldownRegistryImpl) CheckRestricted(ctx context.Context, email string) (model.CooldownStatus, error) {
	if crypto.NormalizeEmail(email) == "" {
		return model.CooldownStatus{}, fmt.Errorf("%w: empty email", errs.ErrValidation)
	}
	hash := crypto.HashEmail(email)

	rec, err := c.repo.FindByEmailHash(ctx, hash)
	if err != nil {
		c.log.Warn("cooldown lookup failed; treating as not restricted", zap.Error(err))
		c.metrics.FailOpen("cooldown")
		return model.CooldownStatus{}, nil
	}
	if rec == nil {
		c.metrics.CooldownCheck("free")
		return model.CooldownStatus{}, nil
	}

	if rec.Expired(c.clock.Now()) {
		if err := c.repo.DeleteByEmailHash(ctx, hash); err != nil {
			c.log.Warn("stale cooldown cleanup failed", zap.Error(err))
		}
		c.metrics.CooldownCheck("expired")
		return model.CooldownStatus{}, nil
	}

	c.metrics.CooldownCheck("restricted")
	exp := rec.ExpiresAt
	return model.CooldownStatus{
		Restricted: true,
		Message: fmt.Sprintf("this email belonged to an account deleted recently; it can register again %s after deletion",
			humanDuration(c.duration)),
		ExpiresAt: &exp,
	}, nil
}

// Place records a cooldown keyed by the email hash. Repeated placements
// overwrite the previous record and restart the window. Failures are
// returned: the deletion must not complete without the cooldown.
func (c *CooldownRegistryImpl) Place(ctx context.Context, email, userAgent, ip string) (time.Time, error) {
	if crypto.NormalizeEmail(email) == "" {
		return time.Time{}, fmt.Errorf("%w: empty email", errs.ErrValidation)
	}
	now := c.clock.Now()
	rec := model.DeletionCooldownRecord{
		EmailHash:     crypto.HashEmail(email),
		UserAgentHash: crypto.HashOptional(userAgent),
		IPHash:        crypto.HashOptional(ip),
		ExpiresAt:     now.Add(c.duration),
		CreatedAt:     now,
	}
	if err := c.repo.Upsert(ctx, rec); err != nil {
		return time.Time{}, fmt.Errorf("place cooldown: %w", err)
	}
	return rec.ExpiresAt, nil
}

// PurgeExpired removes cooldowns whose expiry has passed.
func (c *CooldownRegistryImpl) PurgeExpired(ctx context.Context) (int64, error) {
	n, err := c.repo.DeleteExpired(ctx, c.clock.Now())
	if err != nil {
		return 0, fmt.Errorf("purge cooldowns: %w", err)
	}
	return n, nil
}

func humanDuration(d time.Duration) string {
	switch {
	case d == time.Hour:
		return "1 hour"
	case d%time.Hour == 0:
		return fmt.Sprintf("%d hours", int64(d/time.Hour))
	case d == time.Minute:
		return "1 minute"
	case d%time.Minute == 0:
		return fmt.Sprintf("%d minutes", int64(d/time.Minute))
	default:
		return d.String()
	}
}
