package services

import (
	"context"
	"time"

	"gatherly-api/models"
)

// Catalog is the venue catalog the engine searches. The gorm
// VenueRepository implements it.
type Catalog interface {
	Search(ctx context.Context, q models.VenueQuery) ([]models.Venue, error)
	GetByID(ctx context.Context, venueID string) (*models.Venue, error)
	ApplyDisplayOverrides(ctx context.Context, venue models.Venue) (models.Venue, error)
}

// VenueReadModel merges catalog venues with their display overrides.
type VenueReadModel struct {
	catalog Catalog
	now     func() time.Time
}

func NewVenueReadModel(catalog Catalog) *VenueReadModel {
	return &VenueReadModel{catalog: catalog, now: time.Now}
}

// Lookup returns the raw catalog venue.
func (m *VenueReadModel) Lookup(ctx context.Context, venueID string) (*models.Venue, error) {
	venue, err := m.catalog.GetByID(ctx, venueID)
	if err != nil {
		return nil, storeError("lookupVenue", err, "venue not found")
	}
	return venue, nil
}

// Resolve loads a venue by id and returns its display view.
func (m *VenueReadModel) Resolve(ctx context.Context, venueID string) (*models.VenueView, error) {
	venue, err := m.catalog.GetByID(ctx, venueID)
	if err != nil {
		return nil, storeError("resolveVenue", err, "venue not found")
	}
	view, err := m.View(ctx, *venue)
	if err != nil {
		return nil, err
	}
	return &view, nil
}

// View applies overrides to an already loaded venue.
func (m *VenueReadModel) View(ctx context.Context, venue models.Venue) (models.VenueView, error) {
	merged, err := m.catalog.ApplyDisplayOverrides(ctx, venue)
	if err != nil {
		return models.VenueView{}, storeError("venueView", err, "venue not found")
	}
	return toVenueView(merged, m.now()), nil
}

func toVenueView(v models.Venue, now time.Time) models.VenueView {
	return models.VenueView{
		ID:            v.ID,
		Name:          v.Name,
		Address:       v.Address,
		Latitude:      v.Latitude,
		Longitude:     v.Longitude,
		Rating:        v.Rating,
		Categories:    v.Categories,
		PriceTier:     v.PriceTier,
		OpeningHours:  v.OpeningHours,
		PhotoURL:      v.PhotoURL,
		PartnerActive: v.PartnerActive(now),
	}
}
