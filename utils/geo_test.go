package utils

import (
	"math"
	"testing"

	"gatherly-api/models"
)

func approxEqual(a, b, tolerance float64) bool {
	return math.Abs(a-b) <= tolerance
}

func TestDistanceMeters(t *testing.T) {
	tests := []struct {
		name      string
		a, b      models.GeoPoint
		want      float64
		tolerance float64
	}{
		{"same point", models.GeoPoint{Lat: 47.01, Lng: 28.86}, models.GeoPoint{Lat: 47.01, Lng: 28.86}, 0, 1e-9},
		{"one degree of latitude", models.GeoPoint{Lat: 0, Lng: 0}, models.GeoPoint{Lat: 1, Lng: 0}, 111195, 5},
		{"one degree of longitude at equator", models.GeoPoint{Lat: 0, Lng: 0}, models.GeoPoint{Lat: 0, Lng: 1}, 111195, 5},
		{"paris to london", models.GeoPoint{Lat: 48.8566, Lng: 2.3522}, models.GeoPoint{Lat: 51.5074, Lng: -0.1278}, 343500, 1500},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := DistanceMeters(tt.a, tt.b)
			if !approxEqual(got, tt.want, tt.tolerance) {
				t.Fatalf("DistanceMeters = %.2f, want %.2f ± %.2f", got, tt.want, tt.tolerance)
			}
			if back := DistanceMeters(tt.b, tt.a); !approxEqual(back, got, 1e-6) {
				t.Fatalf("distance is not symmetric: %.6f vs %.6f", got, back)
			}
		})
	}
}

func TestCentroid(t *testing.T) {
	got, ok := Centroid([]models.GeoPoint{{Lat: 47.00, Lng: 28.85}, {Lat: 47.02, Lng: 28.87}})
	if !ok {
		t.Fatal("expected a centroid")
	}
	if !approxEqual(got.Lat, 47.01, 1e-9) || !approxEqual(got.Lng, 28.86, 1e-9) {
		t.Fatalf("centroid = %+v, want (47.01, 28.86)", got)
	}

	if _, ok := Centroid(nil); ok {
		t.Fatal("expected no centroid for empty input")
	}
}

func TestBoundingBoxAroundContainsRadius(t *testing.T) {
	center := models.GeoPoint{Lat: 47.0105, Lng: 28.8638}
	box := BoundingBoxAround(center, 5000)

	if !box.Contains(center) {
		t.Fatal("box must contain its center")
	}

	// Points just inside the radius in each cardinal direction.
	latStep := 4990.0 / earthRadiusMeters * 180 / math.Pi
	lngStep := latStep / math.Cos(center.Lat*math.Pi/180)
	inside := []models.GeoPoint{
		{Lat: center.Lat + latStep, Lng: center.Lng},
		{Lat: center.Lat - latStep, Lng: center.Lng},
		{Lat: center.Lat, Lng: center.Lng + lngStep},
		{Lat: center.Lat, Lng: center.Lng - lngStep},
	}
	for _, p := range inside {
		if DistanceMeters(center, p) > 5000 {
			t.Fatalf("test point %+v is outside the radius", p)
		}
		if !box.Contains(p) {
			t.Fatalf("box %+v does not contain %+v", box, p)
		}
	}

	if box.Contains(models.GeoPoint{Lat: center.Lat + 0.1, Lng: center.Lng}) {
		t.Fatal("box should exclude a point ~11km north")
	}
}

func TestBoundingBoxClampsAtPoles(t *testing.T) {
	box := BoundingBoxAround(models.GeoPoint{Lat: 89.99, Lng: 0}, 10000)
	if box.MaxLat != 90 {
		t.Fatalf("expected MaxLat clamped to 90, got %v", box.MaxLat)
	}
	if box.MinLng < -180 || box.MaxLng > 180 {
		t.Fatalf("longitude out of range: %+v", box)
	}
}
