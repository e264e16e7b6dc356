package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/noah-isme/clinic-scheduling-api/internal/models"
	"github.com/noah-isme/clinic-scheduling-api/pkg/jobs"
	"github.com/noah-isme/clinic-scheduling-api/pkg/mailer"
)

type bookingRepoFake struct {
	items     map[string]*models.Booking
	seq       int
	listErr   error
	createErr error
	updateErr error
}

func newBookingRepoFake(items ...models.Booking) *bookingRepoFake {
	repo := &bookingRepoFake{items: map[string]*models.Booking{}}
	for i := range items {
		b := items[i]
		repo.items[b.ID] = &b
	}
	return repo
}

func (r *bookingRepoFake) Create(ctx context.Context, booking *models.Booking) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.seq++
	booking.ID = fmt.Sprintf("booking-%d", r.seq)
	booking.CreatedAt = time.Now().UTC()
	cp := *booking
	r.items[booking.ID] = &cp
	return nil
}

func (r *bookingRepoFake) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	b, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *b
	return &cp, nil
}

func (r *bookingRepoFake) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	if r.listErr != nil {
		return nil, 0, r.listErr
	}
	var out []models.Booking
	for _, b := range r.items {
		if filter.TherapistID != "" && b.TherapistID != filter.TherapistID {
			continue
		}
		if filter.ClientID != "" && b.ClientID != filter.ClientID {
			continue
		}
		if filter.Status != nil && b.Status != *filter.Status {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionStart.Before(out[j].SessionStart) })
	return out, len(out), nil
}

func (r *bookingRepoFake) ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.Booking, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.Booking
	for _, b := range r.items {
		if b.TherapistID != therapistID {
			continue
		}
		if b.SessionStart.Before(from) || !b.SessionStart.Before(to) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionStart.Before(out[j].SessionStart) })
	return out, nil
}

func (r *bookingRepoFake) UpdateSchedule(ctx context.Context, id string, sessionStart time.Time, status models.BookingStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	b, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.SessionStart = sessionStart
	b.Status = status
	return nil
}

func (r *bookingRepoFake) UpdateStatus(ctx context.Context, id string, status models.BookingStatus) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	b, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	b.Status = status
	return nil
}

type therapistRepoFake struct {
	items     map[string]*models.Therapist
	findErr   error
	updateErr error
}

func newTherapistRepoFake(items ...models.Therapist) *therapistRepoFake {
	repo := &therapistRepoFake{items: map[string]*models.Therapist{}}
	for i := range items {
		t := items[i]
		repo.items[t.ID] = &t
	}
	return repo
}

func (r *therapistRepoFake) FindByID(ctx context.Context, id string) (*models.Therapist, error) {
	if r.findErr != nil {
		return nil, r.findErr
	}
	t, ok := r.items[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	cp := *t
	return &cp, nil
}

func (r *therapistRepoFake) UpdateRating(ctx context.Context, id string, rating float64, reviewCount int) error {
	if r.updateErr != nil {
		return r.updateErr
	}
	t, ok := r.items[id]
	if !ok {
		return sql.ErrNoRows
	}
	t.Rating = rating
	t.ReviewCount = reviewCount
	return nil
}

type ruleRepoFake struct {
	rules    map[string][]models.AvailabilityRule
	listErr  error
	storeErr error
	reads    int
}

func (r *ruleRepoFake) ListByTherapist(ctx context.Context, therapistID string) ([]models.AvailabilityRule, error) {
	r.reads++
	if r.listErr != nil {
		return nil, r.listErr
	}
	return r.rules[therapistID], nil
}

func (r *ruleRepoFake) ReplaceForTherapist(ctx context.Context, therapistID string, rules []models.AvailabilityRule) error {
	if r.storeErr != nil {
		return r.storeErr
	}
	if r.rules == nil {
		r.rules = map[string][]models.AvailabilityRule{}
	}
	r.rules[therapistID] = append([]models.AvailabilityRule(nil), rules...)
	return nil
}

type busyRepoFake struct {
	items   []models.BusyInterval
	listErr error
}

func (r *busyRepoFake) Create(ctx context.Context, interval *models.BusyInterval) error {
	interval.ID = fmt.Sprintf("busy-%d", len(r.items)+1)
	r.items = append(r.items, *interval)
	return nil
}

func (r *busyRepoFake) Delete(ctx context.Context, therapistID, id string) error {
	for i, item := range r.items {
		if item.ID == id && item.TherapistID == therapistID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return sql.ErrNoRows
}

func (r *busyRepoFake) ListByTherapistRange(ctx context.Context, therapistID string, from, to time.Time) ([]models.BusyInterval, error) {
	if r.listErr != nil {
		return nil, r.listErr
	}
	var out []models.BusyInterval
	for _, item := range r.items {
		if item.TherapistID == therapistID && Overlaps(item.Start, item.End, from, to) {
			out = append(out, item)
		}
	}
	return out, nil
}

type memoryCache struct {
	data        map[string][]byte
	invalidated []string
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string, dest interface{}) (bool, error) {
	raw, ok := c.data[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, dest)
}

func (c *memoryCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.data[key] = raw
	return nil
}

func (c *memoryCache) Invalidate(ctx context.Context, pattern string) error {
	c.invalidated = append(c.invalidated, pattern)
	for key := range c.data {
		if key == pattern || (strings.HasSuffix(pattern, "*") && strings.HasPrefix(key, strings.TrimSuffix(pattern, "*"))) {
			delete(c.data, key)
		}
	}
	return nil
}

type recordingNotifier struct {
	mu     sync.Mutex
	events []BookingEvent
	err    error
}

func (n *recordingNotifier) BookingChanged(ctx context.Context, event BookingEvent, booking models.Booking) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, event)
	return n.err
}

type dispatcherFake struct {
	jobs []jobs.Job
	err  error
}

func (d *dispatcherFake) Enqueue(job jobs.Job) error {
	if d.err != nil {
		return d.err
	}
	d.jobs = append(d.jobs, job)
	return nil
}

type mailerFake struct {
	enabled bool
	sent    []mailer.Message
	err     error
}

func (m *mailerFake) Enabled() bool { return m.enabled }

func (m *mailerFake) Send(ctx context.Context, msg mailer.Message) error {
	if m.err != nil {
		return m.err
	}
	m.sent = append(m.sent, msg)
	return nil
}
