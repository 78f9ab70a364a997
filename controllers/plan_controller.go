package controllers

import (
	"context"
	"net/http"
	"strconv"

	"gatherly-api/middleware"
	"gatherly-api/models"
	"gatherly-api/utils"

	"github.com/gin-gonic/gin"
)

// PlanEngine is the lifecycle API the handlers drive. *services.PlanService
// implements it.
type PlanEngine interface {
	CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error)
	GetPlanDetails(ctx context.Context, planID string) (*models.PlanDetails, error)
	ListPlansForChat(ctx context.Context, chatID int64) ([]models.Plan, error)
	JoinPlan(ctx context.Context, planID, userID string, req models.JoinPlanRequest) (*models.Participant, error)
	LeavePlan(ctx context.Context, planID, userID string) error
	GetShortlist(ctx context.Context, planID string, refresh bool) (*models.ShortlistResult, error)
	StartVoting(ctx context.Context, planID string, durationHours int) (*models.Vote, error)
	CastVote(ctx context.Context, planID, userID, venueID string) (*models.VoteCast, error)
	RetractVote(ctx context.Context, planID, userID string) error
	GetResults(ctx context.Context, planID string) (*models.VoteResults, error)
	ClosePlan(ctx context.Context, planID, requesterID string) (*models.CloseResult, error)
	CancelPlan(ctx context.Context, planID, requesterID string) (*models.Plan, error)
}

type PlanController struct {
	plans PlanEngine
}

func NewPlanController(plans PlanEngine) *PlanController {
	return &PlanController{plans: plans}
}

func (pc *PlanController) CreatePlan(c *gin.Context) {
	var req models.CreatePlanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}
	req.InitiatorID = c.GetString(middleware.UserIDKey)

	plan, err := pc.plans.CreatePlan(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"plan": plan})
}

func (pc *PlanController) GetPlan(c *gin.Context) {
	details, err := pc.plans.GetPlanDetails(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, details)
}

// ListPlans handles GET /plans?chat_id=
func (pc *PlanController) ListPlans(c *gin.Context) {
	chatID, err := strconv.ParseInt(c.Query("chat_id"), 10, 64)
	if err != nil {
		utils.SendValidationError(c, "chat_id query parameter must be an integer")
		return
	}

	plans, err := pc.plans.ListPlansForChat(c.Request.Context(), chatID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plans": plans, "count": len(plans)})
}

func (pc *PlanController) JoinPlan(c *gin.Context) {
	var req models.JoinPlanRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
	}

	participant, err := pc.plans.JoinPlan(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participant": participant})
}

func (pc *PlanController) LeavePlan(c *gin.Context) {
	if err := pc.plans.LeavePlan(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey)); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Left the plan", nil)
}

// GetShortlist handles GET /plans/:id/shortlist[?refresh=true]
func (pc *PlanController) GetShortlist(c *gin.Context) {
	refresh, _ := strconv.ParseBool(c.DefaultQuery("refresh", "false"))

	shortlist, err := pc.plans.GetShortlist(c.Request.Context(), c.Param("id"), refresh)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"shortlist": shortlist})
}

func (pc *PlanController) StartVoting(c *gin.Context) {
	var req models.StartVotingRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			utils.SendValidationError(c, err.Error())
			return
		}
	}

	round, err := pc.plans.StartVoting(c.Request.Context(), c.Param("id"), req.DurationHours)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"round": round})
}

func (pc *PlanController) CastVote(c *gin.Context) {
	var req models.CastVoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.SendValidationError(c, err.Error())
		return
	}

	vote, err := pc.plans.CastVote(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey), req.VenueID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"vote": vote})
}

func (pc *PlanController) RetractVote(c *gin.Context) {
	if err := pc.plans.RetractVote(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey)); err != nil {
		respondError(c, err)
		return
	}

	utils.SendSuccess(c, "Vote retracted", nil)
}

func (pc *PlanController) GetResults(c *gin.Context) {
	results, err := pc.plans.GetResults(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"results": results})
}

func (pc *PlanController) ClosePlan(c *gin.Context) {
	result, err := pc.plans.ClosePlan(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (pc *PlanController) CancelPlan(c *gin.Context) {
	plan, err := pc.plans.CancelPlan(c.Request.Context(), c.Param("id"), c.GetString(middleware.UserIDKey))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"plan": plan})
}
