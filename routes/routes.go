package routes

import (
	"net/http"

	"gatherly-api/config"
	"gatherly-api/controllers"
	"gatherly-api/middleware"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func SetupRoutes(r *gin.Engine, cfg *config.Config, planController *controllers.PlanController, venueController *controllers.VenueController) {
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
			"status":  "healthy",
		})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API version 1
	v1 := r.Group("/api/v1")
	v1.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	v1.Use(middleware.RateLimit(cfg.RateLimitPerMinute, cfg.RateLimitBurst))
	v1.Use(middleware.ValidateJSON())

	plans := v1.Group("/plans")
	{
		plans.POST("", planController.CreatePlan)
		plans.GET("", planController.ListPlans)
		plans.GET("/:id", planController.GetPlan)

		plans.POST("/:id/join", planController.JoinPlan)
		plans.DELETE("/:id/leave", planController.LeavePlan)

		plans.GET("/:id/shortlist", planController.GetShortlist)
		plans.POST("/:id/voting", planController.StartVoting)

		plans.POST("/:id/votes", planController.CastVote)
		plans.DELETE("/:id/votes", planController.RetractVote)
		plans.GET("/:id/results", planController.GetResults)

		plans.POST("/:id/close", planController.ClosePlan)
		plans.POST("/:id/cancel", planController.CancelPlan)
	}

	venues := v1.Group("/venues")
	{
		venues.GET("/:id", venueController.GetVenue)
	}
}
