package services

import (
	"testing"
	"time"

	"gatherly-api/models"
)

func castsFor(base time.Time, votes ...ballot) []models.VoteCast {
	casts := make([]models.VoteCast, len(votes))
	for i, v := range votes {
		casts[i] = models.VoteCast{
			ID:      string(rune('a' + i)),
			UserID:  string(rune('A' + i)),
			VenueID: v.venue,
			CastAt:  base.Add(v.offset),
		}
	}
	return casts
}

type ballot struct {
	venue  string
	offset time.Duration
}

func TestTallyTieBreak(t *testing.T) {
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		casts      []ballot
		wantWinner string
		wantOrder  []string
	}{
		{
			name: "strict maximum wins",
			casts: []ballot{
				{"venue-b", 0},
				{"venue-a", time.Minute},
				{"venue-a", 2 * time.Minute},
			},
			wantWinner: "venue-a",
			wantOrder:  []string{"venue-a", "venue-b"},
		},
		{
			name: "A:3 B:3 C:1 goes to the earliest first cast",
			casts: []ballot{
				{"venue-c", 0},
				{"venue-b", time.Minute},
				{"venue-a", 2 * time.Minute},
				{"venue-b", 3 * time.Minute},
				{"venue-a", 4 * time.Minute},
				{"venue-a", 5 * time.Minute},
				{"venue-b", 6 * time.Minute},
			},
			wantWinner: "venue-b",
			wantOrder:  []string{"venue-b", "venue-a", "venue-c"},
		},
		{
			name: "identical timestamps fall back to venue id",
			casts: []ballot{
				{"venue-z", 0},
				{"venue-y", 0},
			},
			wantWinner: "venue-y",
			wantOrder:  []string{"venue-y", "venue-z"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tally := Tally(castsFor(base, tt.casts...))
			if len(tally) != len(tt.wantOrder) {
				t.Fatalf("got %d venues, want %d", len(tally), len(tt.wantOrder))
			}
			for i, id := range tt.wantOrder {
				if tally[i].VenueID != id {
					t.Errorf("rank %d = %s, want %s", i, tally[i].VenueID, id)
				}
			}

			winner, ok := PickWinner(tally)
			if !ok {
				t.Fatal("expected a winner")
			}
			if winner.VenueID != tt.wantWinner {
				t.Fatalf("winner = %s, want %s", winner.VenueID, tt.wantWinner)
			}
		})
	}
}

func TestTallyIsIndependentOfInputOrder(t *testing.T) {
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	casts := castsFor(base,
		ballot{"venue-a", time.Minute},
		ballot{"venue-b", 0},
		ballot{"venue-a", 2 * time.Minute},
		ballot{"venue-b", 3 * time.Minute},
	)

	reversed := make([]models.VoteCast, len(casts))
	for i := range casts {
		reversed[len(casts)-1-i] = casts[i]
	}

	for i := 0; i < 5; i++ {
		first, _ := PickWinner(Tally(casts))
		second, _ := PickWinner(Tally(reversed))
		if first.VenueID != "venue-b" || second.VenueID != "venue-b" {
			t.Fatalf("winners %s / %s, want venue-b", first.VenueID, second.VenueID)
		}
	}
}

func TestTallyCountsAndFirstCast(t *testing.T) {
	base := time.Date(2026, 5, 1, 18, 0, 0, 0, time.UTC)
	tally := Tally(castsFor(base,
		ballot{"venue-a", 5 * time.Minute},
		ballot{"venue-a", time.Minute},
	))

	if len(tally) != 1 || tally[0].Count != 2 {
		t.Fatalf("unexpected tally %+v", tally)
	}
	if !tally[0].FirstCastAt.Equal(base.Add(time.Minute)) {
		t.Fatalf("FirstCastAt = %v", tally[0].FirstCastAt)
	}
	if totalVotes(tally) != 2 {
		t.Fatalf("totalVotes = %d", totalVotes(tally))
	}
}

func TestPickWinnerEmpty(t *testing.T) {
	if _, ok := PickWinner(Tally(nil)); ok {
		t.Fatal("empty tally must have no winner")
	}
}
