// File: /models/plan.go
package models

import (
	"time"
)

type PlanStatus string

const (
	PlanStatusOpen      PlanStatus = "open"
	PlanStatusVoting    PlanStatus = "voting"
	PlanStatusClosed    PlanStatus = "closed"
	PlanStatusCancelled PlanStatus = "cancelled"
)

// Area tags understood by the shortlist generator.
const (
	AreaMidpoint   = "midpoint"
	AreaCityCenter = "city-center"
)

// Budget tiers.
const (
	BudgetLow    = "low"
	BudgetMedium = "medium"
	BudgetHigh   = "high"
)

// Plan is one planned get-together. Status changes only through the
// lifecycle service; WinningVenueID is set iff Status is closed and
// VotingEndsAt iff Status is voting.
type Plan struct {
	ID             string     `json:"id" gorm:"primaryKey;size:191"`
	ChatID         int64      `json:"chat_id" gorm:"index"`
	InitiatorID    string     `json:"initiator_id" gorm:"not null;size:191"`
	Date           string     `json:"date" gorm:"not null;size:10"` // YYYY-MM-DD
	Time           string     `json:"time" gorm:"not null;size:5"`  // HH:MM
	Area           string     `json:"area,omitempty" gorm:"size:64"`
	CityID         *string    `json:"city_id,omitempty" gorm:"size:191"`
	Latitude       *float64   `json:"latitude,omitempty"`
	Longitude      *float64   `json:"longitude,omitempty"`
	Budget         string     `json:"budget,omitempty" gorm:"size:16"`
	Format         string     `json:"format,omitempty" gorm:"size:64"`
	Status         PlanStatus `json:"status" gorm:"not null;size:16;default:'open';index:idx_plans_status_deadline"`
	VotingEndsAt   *time.Time `json:"voting_ends_at,omitempty" gorm:"index:idx_plans_status_deadline"`
	WinningVenueID *string    `json:"winning_venue_id,omitempty" gorm:"size:191"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	Participants []Participant `json:"participants,omitempty" gorm:"foreignKey:PlanID;constraint:OnDelete:CASCADE"`
}

// Location returns the plan's fixed location, if it has one.
func (p *Plan) Location() (GeoPoint, bool) {
	if p.Latitude == nil || p.Longitude == nil {
		return GeoPoint{}, false
	}
	return GeoPoint{Lat: *p.Latitude, Lng: *p.Longitude}, true
}

// IsActive reports whether the plan still accepts participants.
func (p *Plan) IsActive() bool {
	return p.Status == PlanStatusOpen || p.Status == PlanStatusVoting
}

// CreatePlanRequest for POST /plans
type CreatePlanRequest struct {
	ChatID    int64    `json:"chat_id"`
	Date      string   `json:"date" binding:"required"`
	Time      string   `json:"time" binding:"required"`
	Area      string   `json:"area"`
	CityID    *string  `json:"city_id"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Budget    string   `json:"budget"`
	Format    string   `json:"format"`

	// Filled from the authenticated caller, never from the body.
	InitiatorID string `json:"-"`
}

// PlanDetails is the read model returned by GET /plans/:id
type PlanDetails struct {
	Plan         Plan          `json:"plan"`
	Participants []Participant `json:"participants"`
	Round        *Vote         `json:"round,omitempty"`
	VoteCount    int           `json:"vote_count"`
	WinningVenue *VenueView    `json:"winning_venue,omitempty"`
}

// CloseResult is returned by closing a plan.
type CloseResult struct {
	Plan      Plan      `json:"plan"`
	Winner    VenueView `json:"winner"`
	VoteCount int       `json:"vote_count"`
}
