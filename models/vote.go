package models

import (
	"time"
)

type VoteStatus string

const (
	VoteStatusOpen   VoteStatus = "open"
	VoteStatusClosed VoteStatus = "closed"
)

// Vote is one voting round of a plan. OpenPlanID mirrors PlanID while the
// round is open and is NULL afterwards; its unique index keeps at most one
// open round per plan.
type Vote struct {
	ID            string     `json:"id" gorm:"primaryKey;size:191"`
	PlanID        string     `json:"plan_id" gorm:"not null;size:191;index"`
	OpenPlanID    *string    `json:"-" gorm:"size:191;uniqueIndex:idx_votes_open_plan"`
	Status        VoteStatus `json:"status" gorm:"not null;size:16;default:'open'"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
	WinnerVenueID *string    `json:"winner_venue_id,omitempty" gorm:"size:191"`
}

// VoteCast is one user's current choice within a round; (VoteID, UserID)
// is unique.
type VoteCast struct {
	ID      string    `json:"id" gorm:"primaryKey;size:191"`
	VoteID  string    `json:"vote_id" gorm:"not null;size:191;uniqueIndex:idx_vote_casts_vote_user"`
	PlanID  string    `json:"plan_id" gorm:"not null;size:191;index"`
	UserID  string    `json:"user_id" gorm:"not null;size:191;uniqueIndex:idx_vote_casts_vote_user"`
	VenueID string    `json:"venue_id" gorm:"not null;size:191;index"`
	CastAt  time.Time `json:"cast_at"`
}

// VenueTally is the accumulated count for one venue in a round.
type VenueTally struct {
	VenueID     string    `json:"venue_id"`
	Count       int       `json:"count"`
	FirstCastAt time.Time `json:"first_cast_at"`
}

// StartVotingRequest for POST /plans/:id/voting
type StartVotingRequest struct {
	DurationHours int `json:"duration_hours"`
}

// CastVoteRequest for POST /plans/:id/votes
type CastVoteRequest struct {
	VenueID string `json:"venue_id" binding:"required"`
}

// VoteResults is the ranked tally of a plan's latest round.
type VoteResults struct {
	PlanID     string       `json:"plan_id"`
	Round      Vote         `json:"round"`
	Tally      []VenueTally `json:"tally"`
	TotalVotes int          `json:"total_votes"`
	Leader     *VenueTally  `json:"leader,omitempty"`
}
