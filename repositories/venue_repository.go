package repositories

import (
	"context"
	"errors"

	"gatherly-api/models"
	"gatherly-api/utils"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// VenueRepository is the gorm-backed venue catalog.
type VenueRepository struct {
	db *gorm.DB
}

func NewVenueRepository(db *gorm.DB) *VenueRepository {
	return &VenueRepository{db: db}
}

// Search returns venues within the query radius, best rated first.
// Venues without coordinates are included only when the query names their
// city. The bounding box narrows the SQL scan; the exact radius and the
// category are checked here.
func (r *VenueRepository) Search(ctx context.Context, q models.VenueQuery) ([]models.Venue, error) {
	box := utils.BoundingBoxAround(q.Center, q.RadiusMeters)

	located := r.db.Where("latitude BETWEEN ? AND ? AND longitude BETWEEN ? AND ?",
		box.MinLat, box.MaxLat, box.MinLng, box.MaxLng)
	if q.CityID != nil && *q.CityID != "" {
		located = located.Or("(latitude IS NULL OR longitude IS NULL) AND city_id = ?", *q.CityID)
	}

	var rows []models.Venue
	err := r.db.WithContext(ctx).
		Where("rating >= ?", q.MinRating).
		Where(located).
		Order("rating DESC, id ASC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}

	venues := make([]models.Venue, 0, len(rows))
	for _, venue := range rows {
		if q.Category != "" && !venue.Categories.ContainsFold(q.Category) {
			continue
		}
		if point, ok := venue.Location(); ok && utils.DistanceMeters(q.Center, point) > q.RadiusMeters {
			continue
		}
		venues = append(venues, venue)
		if q.Limit > 0 && len(venues) == q.Limit {
			break
		}
	}

	return venues, nil
}

// GetByID retrieves a venue
func (r *VenueRepository) GetByID(ctx context.Context, venueID string) (*models.Venue, error) {
	var venue models.Venue
	if err := r.db.WithContext(ctx).First(&venue, "id = ?", venueID).Error; err != nil {
		return nil, err
	}
	return &venue, nil
}

// ApplyDisplayOverrides returns a copy of the venue with any manual name,
// address or opening-hours corrections applied.
func (r *VenueRepository) ApplyDisplayOverrides(ctx context.Context, venue models.Venue) (models.Venue, error) {
	var override models.VenueOverride
	err := r.db.WithContext(ctx).First(&override, "venue_id = ?", venue.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return venue, nil
		}
		return venue, err
	}

	if override.Name != "" {
		venue.Name = override.Name
	}
	if override.Address != "" {
		venue.Address = override.Address
	}
	if override.OpeningHours != "" {
		venue.OpeningHours = override.OpeningHours
	}
	return venue, nil
}

// UpsertVenues inserts or refreshes catalog rows by id
func (r *VenueRepository) UpsertVenues(ctx context.Context, venues []models.Venue) error {
	if len(venues) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(&venues).Error
}

// UpsertOverride stores display corrections for a venue
func (r *VenueRepository) UpsertOverride(ctx context.Context, override *models.VenueOverride) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "venue_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"name", "address", "opening_hours", "updated_at"}),
	}).Create(override).Error
}
