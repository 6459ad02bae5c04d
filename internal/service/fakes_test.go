package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/uuid/v5"

	"github.com/and161185/fortune-gate/internal/calendar"
	"github.com/and161185/fortune-gate/internal/errs"
	"github.com/and161185/fortune-gate/internal/model"
	"github.com/and161185/fortune-gate/internal/repository"
)

/************ clock ************/

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
	loc *time.Location
}

func newClock(now time.Time) *fakeClock { return &fakeClock{now: now, loc: now.Location()} }

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}
func (c *fakeClock) Location() *time.Location { return c.loc }
func (c *fakeClock) Set(t time.Time) {
	c.mu.Lock()
	c.now = t
	c.mu.Unlock()
}
func (c *fakeClock) Advance(d time.Duration) { c.Set(c.Now().Add(d)) }

var _ calendar.Clock = (*fakeClock)(nil)

/************ identities ************/

type fakeIdentities struct {
	mu    sync.Mutex
	byID  map[uuid.UUID]*model.Identity
	err   error
	calls int
}

var _ repository.IdentityRepository = (*fakeIdentities)(nil)

func newIdentities(ids ...*model.Identity) *fakeIdentities {
	f := &fakeIdentities{byID: map[uuid.UUID]*model.Identity{}}
	for _, it := range ids {
		f.byID[it.ID] = it
	}
	return f
}

func (f *fakeIdentities) GetByID(_ context.Context, id uuid.UUID) (*model.Identity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	it, ok := f.byID[id]
	if !ok {
		return nil, errs.ErrNotFound
	}
	cp := *it
	return &cp, nil
}

/************ enrollment windows ************/

type fakeWindows struct {
	byOrg map[string]model.EnrollmentWindow

	findErr   error
	getErr    error
	listErr   error
	upsertErr error
	deleteErr error

	mu        sync.Mutex
	findCalls int
	getCalls  int
}

var _ repository.EnrollmentWindowRepository = (*fakeWindows)(nil)

func newWindows(ws ...model.EnrollmentWindow) *fakeWindows {
	f := &fakeWindows{byOrg: map[string]model.EnrollmentWindow{}}
	for _, w := range ws {
		f.byOrg[w.Organization] = w
	}
	return f
}

func (f *fakeWindows) sorted() []model.EnrollmentWindow {
	out := make([]model.EnrollmentWindow, 0, len(f.byOrg))
	for _, w := range f.byOrg {
		out = append(out, w)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Organization < out[j].Organization })
	return out
}

func (f *fakeWindows) FindActiveOn(_ context.Context, d calendar.Date) ([]model.EnrollmentWindow, error) {
	f.mu.Lock()
	f.findCalls++
	f.mu.Unlock()
	if f.findErr != nil {
		return nil, f.findErr
	}
	var out []model.EnrollmentWindow
	for _, w := range f.sorted() {
		if !d.Before(w.StartDate) && !d.After(w.EndDate) {
			out = append(out, w)
		}
	}
	return out, nil
}

func (f *fakeWindows) GetByOrganization(_ context.Context, org string) (*model.EnrollmentWindow, error) {
	f.mu.Lock()
	f.getCalls++
	f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	w, ok := f.byOrg[org]
	if !ok {
		return nil, errs.ErrNotFound
	}
	return &w, nil
}

func (f *fakeWindows) List(_ context.Context) ([]model.EnrollmentWindow, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.sorted(), nil
}

func (f *fakeWindows) Upsert(_ context.Context, w model.EnrollmentWindow) (model.EnrollmentWindow, error) {
	if f.upsertErr != nil {
		return model.EnrollmentWindow{}, f.upsertErr
	}
	f.byOrg[w.Organization] = w
	return w, nil
}

func (f *fakeWindows) Delete(_ context.Context, org string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	if _, ok := f.byOrg[org]; !ok {
		return errs.ErrNotFound
	}
	delete(f.byOrg, org)
	return nil
}

/************ usage events ************/

type fakeUsage struct {
	mu        sync.Mutex
	events    []model.UsageEvent
	readErr   error
	insertErr error
	purgeErr  error

	lastFrom, lastTo time.Time
}

var _ repository.UsageEventRepository = (*fakeUsage)(nil)

func (f *fakeUsage) MostRecentInRange(_ context.Context, id uuid.UUID, from, to time.Time) (*model.UsageEvent, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastFrom, f.lastTo = from, to
	if f.readErr != nil {
		return nil, f.readErr
	}
	var best *model.UsageEvent
	for i := range f.events {
		ev := f.events[i]
		if ev.IdentityID != id || ev.OccurredAt.Before(from) || !ev.OccurredAt.Before(to) {
			continue
		}
		if best == nil || ev.OccurredAt.After(best.OccurredAt) {
			best = &ev
		}
	}
	return best, nil
}

func (f *fakeUsage) Insert(_ context.Context, ev model.UsageEvent) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.insertErr != nil {
		return f.insertErr
	}
	f.events = append(f.events, ev)
	return nil
}

func (f *fakeUsage) DeleteBefore(_ context.Context, t time.Time) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.purgeErr != nil {
		return 0, f.purgeErr
	}
	kept := f.events[:0]
	var n int64
	for _, ev := range f.events {
		if ev.OccurredAt.Before(t) {
			n++
			continue
		}
		kept = append(kept, ev)
	}
	f.events = kept
	return n, nil
}

func (f *fakeUsage) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.events)
}

/************ cooldowns ************/

type fakeCooldowns struct {
	byHash map[string]model.DeletionCooldownRecord

	findErr   error
	upsertErr error
	deleteErr error

	deleted []string
}

var _ repository.DeletionCooldownRepository = (*fakeCooldowns)(nil)

func newCooldowns() *fakeCooldowns {
	return &fakeCooldowns{byHash: map[string]model.DeletionCooldownRecord{}}
}

func (f *fakeCooldowns) FindByEmailHash(_ context.Context, h string) (*model.DeletionCooldownRecord, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	rec, ok := f.byHash[h]
	if !ok {
		return nil, nil
	}
	return &rec, nil
}

func (f *fakeCooldowns) Upsert(_ context.Context, rec model.DeletionCooldownRecord) error {
	if f.upsertErr != nil {
		return f.upsertErr
	}
	f.byHash[rec.EmailHash] = rec
	return nil
}

func (f *fakeCooldowns) DeleteByEmailHash(_ context.Context, h string) error {
	if f.deleteErr != nil {
		return f.deleteErr
	}
	f.deleted = append(f.deleted, h)
	delete(f.byHash, h)
	return nil
}

func (f *fakeCooldowns) DeleteExpired(_ context.Context, now time.Time) (int64, error) {
	var n int64
	for h, rec := range f.byHash {
		if rec.ExpiresAt.Before(now) {
			delete(f.byHash, h)
			n++
		}
	}
	return n, nil
}

/************ helpers ************/

func strp(s string) *string { return &s }

func identity(status model.Status, admin bool, org *string) *model.Identity {
	return &model.Identity{ID: uuid.Must(uuid.NewV4()), Status: status, IsAdmin: admin, Organization: org}
}

func window(org string, start, end calendar.Date) model.EnrollmentWindow {
	return model.EnrollmentWindow{Organization: org, StartDate: start, EndDate: end}
}
