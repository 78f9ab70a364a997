// File: /models/venue.go
package models

import (
	"time"
)

// Venue is a catalog entry a plan can be held at.
type Venue struct {
	ID           string      `json:"id" gorm:"primaryKey;size:191"`
	Name         string      `json:"name" gorm:"not null;size:255"`
	Address      string      `json:"address" gorm:"size:500"`
	CityID       *string     `json:"city_id,omitempty" gorm:"size:191;index"`
	Latitude     *float64    `json:"latitude,omitempty" gorm:"index:idx_venues_lat_lng"`
	Longitude    *float64    `json:"longitude,omitempty" gorm:"index:idx_venues_lat_lng"`
	Rating       float64     `json:"rating" gorm:"default:0;index"`
	Categories   StringSlice `json:"categories" gorm:"type:json"`
	PriceTier    string      `json:"price_tier,omitempty" gorm:"size:16"`
	IsPartner    bool        `json:"is_partner" gorm:"default:false"`
	PartnerUntil *time.Time  `json:"partner_until,omitempty"`
	OpeningHours string      `json:"opening_hours,omitempty" gorm:"size:255"`
	PhotoURL     string      `json:"photo_url,omitempty" gorm:"size:500"`
	CreatedAt    time.Time   `json:"created_at"`
	UpdatedAt    time.Time   `json:"updated_at"`
}

// Location returns the venue's coordinates, if known.
func (v *Venue) Location() (GeoPoint, bool) {
	if v.Latitude == nil || v.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *v.Latitude, Lng: *v.Longitude}, true
}

// PartnerActive reports whether the venue has a live partner listing at now.
func (v *Venue) PartnerActive(now time.Time) bool {
	if !v.IsPartner {
		return false
	}
	return v.PartnerUntil == nil || v.PartnerUntil.After(now)
}

// VenueOverride holds manual display corrections for a venue. Empty fields
// leave the catalog value untouched.
type VenueOverride struct {
	VenueID      string    `json:"venue_id" gorm:"primaryKey;size:191"`
	Name         string    `json:"name,omitempty" gorm:"size:255"`
	Address      string    `json:"address,omitempty" gorm:"size:500"`
	OpeningHours string    `json:"opening_hours,omitempty" gorm:"size:255"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// VenueQuery is a catalog search.
type VenueQuery struct {
	Center       GeoPoint
	RadiusMeters float64
	Category     string
	MinRating    float64
	CityID       *string
	Limit        int
}

// VenueView is a venue prepared for display, overrides applied.
type VenueView struct {
	ID            string      `json:"id"`
	Name          string      `json:"name"`
	Address       string      `json:"address"`
	Latitude      *float64    `json:"latitude,omitempty"`
	Longitude     *float64    `json:"longitude,omitempty"`
	Rating        float64     `json:"rating"`
	Categories    StringSlice `json:"categories"`
	PriceTier     string      `json:"price_tier,omitempty"`
	OpeningHours  string      `json:"opening_hours,omitempty"`
	PhotoURL      string      `json:"photo_url,omitempty"`
	PartnerActive bool        `json:"partner_active"`
}

// ScoreBreakdown shows how a shortlist candidate was ranked.
type ScoreBreakdown struct {
	DistanceMeters  *float64 `json:"distance_meters,omitempty"`
	DistanceScore   float64  `json:"distance_score"`
	RatingScore     float64  `json:"rating_score"`
	PreferenceScore float64  `json:"preference_score"`
	PartnerBonus    float64  `json:"partner_bonus"`
	TotalScore      float64  `json:"total_score"`
}

// ShortlistEntry is one ranked candidate.
type ShortlistEntry struct {
	VenueID string         `json:"venue_id"`
	Venue   VenueView      `json:"venue"`
	Score   ScoreBreakdown `json:"score"`
}

// Meeting point sources.
const (
	MeetingPointExplicit = "explicit"
	MeetingPointMidpoint = "midpoint"
	MeetingPointDefault  = "default"
)

// ShortlistResult is ephemeral; it is regenerated on demand and only cached.
type ShortlistResult struct {
	PlanID             string           `json:"plan_id"`
	MeetingPoint       GeoPoint         `json:"meeting_point"`
	MeetingPointSource string           `json:"meeting_point_source"`
	RadiusMeters       float64          `json:"radius_meters"`
	Entries            []ShortlistEntry `json:"entries"`
	GeneratedAt        time.Time        `json:"generated_at"`
}
