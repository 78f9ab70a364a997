package controllers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"gatherly-api/models"
	"gatherly-api/services"

	"github.com/gin-gonic/gin"
)

type stubResolver map[string]models.VenueView

func (s stubResolver) Resolve(_ context.Context, venueID string) (*models.VenueView, error) {
	view, ok := s[venueID]
	if !ok {
		return nil, &services.Error{Kind: services.KindNotFound, Op: "resolveVenue", Message: "venue not found"}
	}
	return &view, nil
}

func TestGetVenue(t *testing.T) {
	r := gin.New()
	vc := NewVenueController(stubResolver{"v1": {ID: "v1", Name: "Oaza Lounge"}})
	r.GET("/venues/:id", vc.GetVenue)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venues/v1", nil))
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var body struct {
		Venue models.VenueView `json:"venue"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body.Venue.Name != "Oaza Lounge" {
		t.Fatalf("venue = %+v", body.Venue)
	}

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/venues/missing", nil))
	if w.Code != http.StatusNotFound {
		t.Fatalf("missing venue status = %d", w.Code)
	}
}
