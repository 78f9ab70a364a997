package utils

import (
	"math"

	"gatherly-api/models"
)

const earthRadiusMeters = 6371000.0

// DistanceMeters calculates distance between two points using Haversine formula
func DistanceMeters(a, b models.GeoPoint) float64 {
	dLat := (b.Lat - a.Lat) * math.Pi / 180
	dLng := (b.Lng - a.Lng) * math.Pi / 180

	h := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(a.Lat*math.Pi/180)*math.Cos(b.Lat*math.Pi/180)*
			math.Sin(dLng/2)*math.Sin(dLng/2)

	c := 2 * math.Atan2(math.Sqrt(h), math.Sqrt(1-h))

	return earthRadiusMeters * c
}

// Centroid returns the arithmetic mean of the points' latitudes and
// longitudes. It is unweighted and does not handle the antimeridian.
func Centroid(points []models.GeoPoint) (models.GeoPoint, bool) {
	if len(points) == 0 {
		return models.GeoPoint{}, false
	}

	var sumLat, sumLng float64
	for _, p := range points {
		sumLat += p.Lat
		sumLng += p.Lng
	}

	n := float64(len(points))
	return models.GeoPoint{Lat: sumLat / n, Lng: sumLng / n}, true
}

// BoundingBox is an axis-aligned lat/lng rectangle.
type BoundingBox struct {
	MinLat, MaxLat float64
	MinLng, MaxLng float64
}

// BoundingBoxAround returns a box that contains every point within radius
// meters of center. It is a prefilter; callers still check exact distance.
func BoundingBoxAround(center models.GeoPoint, radiusMeters float64) BoundingBox {
	latDelta := radiusMeters / earthRadiusMeters * 180 / math.Pi

	cosLat := math.Cos(center.Lat * math.Pi / 180)
	lngDelta := 180.0
	if cosLat > 1e-9 {
		lngDelta = math.Min(180, latDelta/cosLat)
	}

	return BoundingBox{
		MinLat: math.Max(-90, center.Lat-latDelta),
		MaxLat: math.Min(90, center.Lat+latDelta),
		MinLng: math.Max(-180, center.Lng-lngDelta),
		MaxLng: math.Min(180, center.Lng+lngDelta),
	}
}

// Contains reports whether p lies within the box.
func (b BoundingBox) Contains(p models.GeoPoint) bool {
	return p.Lat >= b.MinLat && p.Lat <= b.MaxLat &&
		p.Lng >= b.MinLng && p.Lng <= b.MaxLng
}

// RoundToDecimal rounds a float to specified decimal places
func RoundToDecimal(val float64, precision int) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}
