package services

import (
	"sort"

	"gatherly-api/models"
)

// Tally counts a round's casts per venue, ranked with the winner rule:
// higher count first, then the venue whose earliest current cast came
// first, then venue id.
func Tally(casts []models.VoteCast) []models.VenueTally {
	byVenue := make(map[string]*models.VenueTally)
	for _, cast := range casts {
		t, ok := byVenue[cast.VenueID]
		if !ok {
			t = &models.VenueTally{VenueID: cast.VenueID, FirstCastAt: cast.CastAt}
			byVenue[cast.VenueID] = t
		}
		t.Count++
		if cast.CastAt.Before(t.FirstCastAt) {
			t.FirstCastAt = cast.CastAt
		}
	}

	ranked := make([]models.VenueTally, 0, len(byVenue))
	for _, t := range byVenue {
		ranked = append(ranked, *t)
	}
	sort.Slice(ranked, func(i, j int) bool {
		a, b := ranked[i], ranked[j]
		if a.Count != b.Count {
			return a.Count > b.Count
		}
		if !a.FirstCastAt.Equal(b.FirstCastAt) {
			return a.FirstCastAt.Before(b.FirstCastAt)
		}
		return a.VenueID < b.VenueID
	})
	return ranked
}

// PickWinner returns the leader of a ranked tally, or false when nobody
// voted.
func PickWinner(tally []models.VenueTally) (models.VenueTally, bool) {
	if len(tally) == 0 {
		return models.VenueTally{}, false
	}
	return tally[0], true
}

func totalVotes(tally []models.VenueTally) int {
	total := 0
	for _, t := range tally {
		total += t.Count
	}
	return total
}
