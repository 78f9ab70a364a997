package database

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"gatherly-api/models"
	"gatherly-api/repositories"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

// VenueSeed is the YAML layout of a venue catalog seed file.
type VenueSeed struct {
	Venues    []seedVenue    `yaml:"venues"`
	Overrides []seedOverride `yaml:"overrides"`
}

type seedVenue struct {
	ID           string     `yaml:"id"`
	Name         string     `yaml:"name"`
	Address      string     `yaml:"address"`
	CityID       string     `yaml:"city_id"`
	Latitude     *float64   `yaml:"latitude"`
	Longitude    *float64   `yaml:"longitude"`
	Rating       float64    `yaml:"rating"`
	Categories   []string   `yaml:"categories"`
	PriceTier    string     `yaml:"price_tier"`
	Partner      bool       `yaml:"partner"`
	PartnerUntil *time.Time `yaml:"partner_until"`
	OpeningHours string     `yaml:"opening_hours"`
	PhotoURL     string     `yaml:"photo_url"`
}

type seedOverride struct {
	VenueID      string `yaml:"venue_id"`
	Name         string `yaml:"name"`
	Address      string `yaml:"address"`
	OpeningHours string `yaml:"opening_hours"`
}

// LoadVenueSeed parses a seed file. Unknown keys are rejected so typos do
// not silently drop data.
func LoadVenueSeed(path string) (*VenueSeed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()

	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)

	var seed VenueSeed
	if err := dec.Decode(&seed); err != nil {
		return nil, fmt.Errorf("failed to parse seed file %s: %w", path, err)
	}

	for i, v := range seed.Venues {
		if v.ID == "" || v.Name == "" {
			return nil, fmt.Errorf("seed venue #%d: id and name are required", i+1)
		}
		if (v.Latitude == nil) != (v.Longitude == nil) {
			return nil, fmt.Errorf("seed venue %s: latitude and longitude must be given together", v.ID)
		}
		if v.Rating < 0 || v.Rating > 5 {
			return nil, fmt.Errorf("seed venue %s: rating must be within 0..5", v.ID)
		}
	}
	return &seed, nil
}

// Catalog converts the seed into catalog rows.
func (s *VenueSeed) Catalog() ([]models.Venue, []models.VenueOverride) {
	venues := make([]models.Venue, 0, len(s.Venues))
	for _, v := range s.Venues {
		venue := models.Venue{
			ID:           v.ID,
			Name:         v.Name,
			Address:      v.Address,
			Latitude:     v.Latitude,
			Longitude:    v.Longitude,
			Rating:       v.Rating,
			Categories:   lowerAll(v.Categories),
			PriceTier:    v.PriceTier,
			IsPartner:    v.Partner,
			PartnerUntil: v.PartnerUntil,
			OpeningHours: v.OpeningHours,
			PhotoURL:     v.PhotoURL,
		}
		if v.CityID != "" {
			city := v.CityID
			venue.CityID = &city
		}
		venues = append(venues, venue)
	}

	overrides := make([]models.VenueOverride, 0, len(s.Overrides))
	for _, o := range s.Overrides {
		overrides = append(overrides, models.VenueOverride{
			VenueID:      o.VenueID,
			Name:         o.Name,
			Address:      o.Address,
			OpeningHours: o.OpeningHours,
		})
	}
	return venues, overrides
}

// SeedVenues upserts the catalog from a YAML seed file. Re-running with the
// same file is harmless.
func SeedVenues(ctx context.Context, db *gorm.DB, path string) (int, error) {
	seed, err := LoadVenueSeed(path)
	if err != nil {
		return 0, err
	}

	venues, overrides := seed.Catalog()
	repo := repositories.NewVenueRepository(db)

	if err := repo.UpsertVenues(ctx, venues); err != nil {
		return 0, fmt.Errorf("failed to seed venues: %w", err)
	}
	for i := range overrides {
		if err := repo.UpsertOverride(ctx, &overrides[i]); err != nil {
			return 0, fmt.Errorf("failed to seed override for %s: %w", overrides[i].VenueID, err)
		}
	}
	return len(venues), nil
}

func lowerAll(values []string) models.StringSlice {
	out := make(models.StringSlice, 0, len(values))
	for _, v := range values {
		if v = strings.ToLower(strings.TrimSpace(v)); v != "" {
			out = append(out, v)
		}
	}
	return out
}
