package models

import (
	"time"
)

// VotingStartedEvent is emitted when a plan enters voting.
type VotingStartedEvent struct {
	PlanID       string    `json:"plan_id"`
	ChatID       int64     `json:"chat_id"`
	VoteID       string    `json:"vote_id"`
	VotingEndsAt time.Time `json:"voting_ends_at"`
	VenueIDs     []string  `json:"venue_ids"`
	OccurredAt   time.Time `json:"occurred_at"`
}

// PlanClosedEvent is emitted when a plan is closed with a winner.
type PlanClosedEvent struct {
	PlanID      string    `json:"plan_id"`
	ChatID      int64     `json:"chat_id"`
	InitiatorID string    `json:"initiator_id"`
	Date        string    `json:"date"`
	Time        string    `json:"time"`
	Winner      VenueView `json:"winner"`
	VoteCount   int       `json:"vote_count"`
	AutoClosed  bool      `json:"auto_closed"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// PlanCancelledEvent is emitted when a plan is cancelled.
type PlanCancelledEvent struct {
	PlanID     string    `json:"plan_id"`
	ChatID     int64     `json:"chat_id"`
	Reason     string    `json:"reason"`
	OccurredAt time.Time `json:"occurred_at"`
}
