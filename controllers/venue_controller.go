package controllers

import (
	"context"
	"net/http"

	"gatherly-api/models"

	"github.com/gin-gonic/gin"
)

// VenueResolver returns display-ready venues.
type VenueResolver interface {
	Resolve(ctx context.Context, venueID string) (*models.VenueView, error)
}

type VenueController struct {
	venues VenueResolver
}

func NewVenueController(venues VenueResolver) *VenueController {
	return &VenueController{venues: venues}
}

func (vc *VenueController) GetVenue(c *gin.Context) {
	venue, err := vc.venues.Resolve(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"venue": venue})
}
