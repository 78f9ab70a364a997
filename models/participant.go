package models

import (
	"strings"
	"time"

	"gorm.io/datatypes"
)

// PreferencesVersion is the current layout of Preferences.
const PreferencesVersion = 1

// Alcohol stances.
const (
	AlcoholAny = "any"
	AlcoholYes = "yes"
	AlcoholNo  = "no"
)

// Preferences is a participant's closed, versioned preference bag. A zero
// Version means the participant stated no preferences.
type Preferences struct {
	Version      int      `json:"v"`
	Format       string   `json:"format,omitempty"`
	Budget       string   `json:"budget,omitempty"`
	Cuisines     []string `json:"cuisines,omitempty"`
	Alcohol      string   `json:"alcohol,omitempty"`
	Quiet        *bool    `json:"quiet,omitempty"`
	Outdoor      *bool    `json:"outdoor,omitempty"`
	KidsFriendly *bool    `json:"kids_friendly,omitempty"`
}

// IsZero reports whether no preferences were stated.
func (p Preferences) IsZero() bool {
	return p.Version == 0
}

// Normalize stamps the current version and lower-cases tag fields.
func (p Preferences) Normalize() Preferences {
	p.Version = PreferencesVersion
	p.Format = strings.ToLower(strings.TrimSpace(p.Format))
	p.Budget = strings.ToLower(strings.TrimSpace(p.Budget))
	p.Alcohol = strings.ToLower(strings.TrimSpace(p.Alcohol))
	cuisines := make([]string, 0, len(p.Cuisines))
	for _, c := range p.Cuisines {
		if c = strings.ToLower(strings.TrimSpace(c)); c != "" {
			cuisines = append(cuisines, c)
		}
	}
	p.Cuisines = cuisines
	return p
}

// Participant is a user attached to a plan; (PlanID, UserID) is unique.
type Participant struct {
	ID          string                          `json:"id" gorm:"primaryKey;size:191"`
	PlanID      string                          `json:"plan_id" gorm:"not null;size:191;uniqueIndex:idx_participants_plan_user"`
	UserID      string                          `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_participants_plan_user"`
	Preferences datatypes.JSONType[Preferences] `json:"preferences"`
	Latitude    *float64                        `json:"latitude,omitempty"`
	Longitude   *float64                        `json:"longitude,omitempty"`
	JoinedAt    time.Time                       `json:"joined_at"`
}

// Prefs returns the participant's preference bag.
func (p *Participant) Prefs() Preferences {
	return p.Preferences.Data()
}

// Location returns the participant's location, if supplied.
func (p *Participant) Location() (GeoPoint, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *p.Latitude, Lng: *p.Longitude}, true
}

// JoinPlanRequest for POST /plans/:id/join
type JoinPlanRequest struct {
	Preferences *Preferences `json:"preferences"`
	Latitude    *float64     `json:"latitude"`
	Longitude   *float64     `json:"longitude"`
}
