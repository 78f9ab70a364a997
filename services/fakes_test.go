package services

import (
	"context"
	"errors"
	"sync"

	"gatherly-api/models"

	"gorm.io/gorm"
)

// fakeCatalog returns its venues in insertion order, ignoring geometry.
type fakeCatalog struct {
	venues    []models.Venue
	overrides map[string]models.VenueOverride
	searchErr error
	lastQuery models.VenueQuery
}

func (f *fakeCatalog) Search(_ context.Context, q models.VenueQuery) ([]models.Venue, error) {
	f.lastQuery = q
	if f.searchErr != nil {
		return nil, f.searchErr
	}
	out := make([]models.Venue, 0, len(f.venues))
	for _, v := range f.venues {
		if v.Rating < q.MinRating {
			continue
		}
		out = append(out, v)
		if q.Limit > 0 && len(out) == q.Limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCatalog) GetByID(_ context.Context, venueID string) (*models.Venue, error) {
	for _, v := range f.venues {
		if v.ID == venueID {
			venue := v
			return &venue, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeCatalog) ApplyDisplayOverrides(_ context.Context, venue models.Venue) (models.Venue, error) {
	if o, ok := f.overrides[venue.ID]; ok && o.Name != "" {
		venue.Name = o.Name
	}
	return venue, nil
}

// recordingNotifier captures lifecycle events.
type recordingNotifier struct {
	mu        sync.Mutex
	started   []models.VotingStartedEvent
	closed    []models.PlanClosedEvent
	cancelled []models.PlanCancelledEvent
	fail      bool
}

var errNotifierDown = errors.New("notifier down")

func (n *recordingNotifier) VotingStarted(_ context.Context, e models.VotingStartedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.started = append(n.started, e)
	if n.fail {
		return errNotifierDown
	}
	return nil
}

func (n *recordingNotifier) PlanClosed(_ context.Context, e models.PlanClosedEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = append(n.closed, e)
	if n.fail {
		return errNotifierDown
	}
	return nil
}

func (n *recordingNotifier) PlanCancelled(_ context.Context, e models.PlanCancelledEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.cancelled = append(n.cancelled, e)
	if n.fail {
		return errNotifierDown
	}
	return nil
}

// memoryCache is a map-backed ShortlistCache.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string]*models.ShortlistResult
	deletes int
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: make(map[string]*models.ShortlistResult)}
}

func (c *memoryCache) Get(_ context.Context, planID string) (*models.ShortlistResult, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	r, ok := c.entries[planID]
	return r, ok, nil
}

func (c *memoryCache) Set(_ context.Context, planID string, result *models.ShortlistResult) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[planID] = result
	return nil
}

func (c *memoryCache) Delete(_ context.Context, planID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, planID)
	c.deletes++
	return nil
}

func floatPtr(f float64) *float64 { return &f }

func strPtr(s string) *string { return &s }
