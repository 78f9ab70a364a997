package utils

import (
	"time"
)

func IsValidLatitude(lat float64) bool {
	return lat >= -90 && lat <= 90
}

func IsValidLongitude(lng float64) bool {
	return lng >= -180 && lng <= 180
}

// IsValidCoordinatePair checks that lat/lng are either both present and in
// range, or both absent.
func IsValidCoordinatePair(lat, lng *float64) bool {
	if lat == nil && lng == nil {
		return true
	}
	if lat == nil || lng == nil {
		return false
	}
	return IsValidLatitude(*lat) && IsValidLongitude(*lng)
}

// IsValidPlanDate accepts YYYY-MM-DD.
func IsValidPlanDate(date string) bool {
	_, err := time.Parse("2006-01-02", date)
	return err == nil
}

// IsValidPlanTime accepts 24h HH:MM.
func IsValidPlanTime(clock string) bool {
	_, err := time.Parse("15:04", clock)
	return err == nil && len(clock) == 5
}

func IsValidBudget(budget string) bool {
	switch budget {
	case "", "low", "medium", "high":
		return true
	}
	return false
}

func IsValidAlcoholStance(stance string) bool {
	switch stance {
	case "", "any", "yes", "no":
		return true
	}
	return false
}
