package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"gatherly-api/logger"
	"gatherly-api/metrics"
	"gatherly-api/models"
	"gatherly-api/repositories"
	"gatherly-api/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	defaultVotingHours = 6
	maxVotingHours     = 7 * 24
	chatPlansLimit     = 50
	expiredSweepBatch  = 100
)

// PlanStore persists plans and participants. Implemented by
// repositories.PlanRepository.
type PlanStore interface {
	Create(ctx context.Context, plan *models.Plan, initiator *models.Participant) error
	GetByID(ctx context.Context, planID string) (*models.Plan, error)
	ListByChat(ctx context.Context, chatID int64, limit int) ([]models.Plan, error)
	ListExpiredVoting(ctx context.Context, now time.Time, limit int) ([]models.Plan, error)
	ListParticipants(ctx context.Context, planID string) ([]models.Participant, error)
	GetParticipant(ctx context.Context, planID, userID string) (*models.Participant, error)
	UpsertParticipant(ctx context.Context, participant *models.Participant) error
	DeleteParticipant(ctx context.Context, planID, userID string) (bool, error)
	OpenVoting(ctx context.Context, planID string, round *models.Vote, endsAt time.Time) error
	Finalize(ctx context.Context, p repositories.FinalizeParams) error
}

// VoteStore persists rounds and casts. Implemented by
// repositories.VoteRepository.
type VoteStore interface {
	GetOpenRound(ctx context.Context, planID string) (*models.Vote, error)
	LatestRound(ctx context.Context, planID string) (*models.Vote, error)
	GetCast(ctx context.Context, voteID, userID string) (*models.VoteCast, error)
	UpsertCast(ctx context.Context, cast *models.VoteCast) error
	DeleteCast(ctx context.Context, voteID, userID string) (bool, error)
	ListCasts(ctx context.Context, voteID string) ([]models.VoteCast, error)
	CountCasts(ctx context.Context, voteID string) (int64, error)
}

// ShortlistCache keeps the last generated shortlist per plan.
type ShortlistCache interface {
	Get(ctx context.Context, planID string) (*models.ShortlistResult, bool, error)
	Set(ctx context.Context, planID string, result *models.ShortlistResult) error
	Delete(ctx context.Context, planID string) error
}

// SweepResult summarizes one pass over expired voting plans.
type SweepResult struct {
	Closed    int
	Cancelled int
	Skipped   int
	Failed    int
}

// PlanService drives the plan state machine: open -> voting -> closed, with
// cancellation possible from open or voting.
type PlanService struct {
	plans      PlanStore
	votes      VoteStore
	shortlists *ShortlistService
	venues     *VenueReadModel
	cache      ShortlistCache
	notifier   Notifier
	logger     *logger.Logger
	now        func() time.Time
}

func NewPlanService(
	plans PlanStore,
	votes VoteStore,
	shortlists *ShortlistService,
	venues *VenueReadModel,
	cache ShortlistCache,
	notifier Notifier,
	log *logger.Logger,
) *PlanService {
	if notifier == nil {
		notifier = NoopNotifier{}
	}
	return &PlanService{
		plans:      plans,
		votes:      votes,
		shortlists: shortlists,
		venues:     venues,
		cache:      cache,
		notifier:   notifier,
		logger:     log,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// CreatePlan inserts an open plan and auto-joins its initiator.
func (s *PlanService) CreatePlan(ctx context.Context, req models.CreatePlanRequest) (*models.Plan, error) {
	const op = "createPlan"

	if req.InitiatorID == "" {
		return nil, validation(op, "initiator is required")
	}
	if !utils.IsValidPlanDate(req.Date) {
		return nil, validation(op, "date must be YYYY-MM-DD")
	}
	if !utils.IsValidPlanTime(req.Time) {
		return nil, validation(op, "time must be HH:MM")
	}
	budget := strings.ToLower(strings.TrimSpace(req.Budget))
	if !utils.IsValidBudget(budget) {
		return nil, validation(op, "budget must be one of low, medium, high")
	}
	if !utils.IsValidCoordinatePair(req.Latitude, req.Longitude) {
		return nil, validation(op, "latitude and longitude must be given together and be in range")
	}

	now := s.now()
	plan := &models.Plan{
		ID:          uuid.New().String(),
		ChatID:      req.ChatID,
		InitiatorID: req.InitiatorID,
		Date:        req.Date,
		Time:        req.Time,
		Area:        strings.ToLower(strings.TrimSpace(req.Area)),
		CityID:      req.CityID,
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		Budget:      budget,
		Format:      strings.ToLower(strings.TrimSpace(req.Format)),
		Status:      models.PlanStatusOpen,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	initiator := &models.Participant{
		ID:       uuid.New().String(),
		PlanID:   plan.ID,
		UserID:   req.InitiatorID,
		JoinedAt: now,
	}

	if err := s.plans.Create(ctx, plan, initiator); err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	metrics.PlansCreated.Inc()
	s.logger.ForPlan(plan.ID).Info("plan created",
		zap.String("initiator_id", plan.InitiatorID),
		zap.Int64("chat_id", plan.ChatID),
	)
	return plan, nil
}

// JoinPlan adds the user to an open or voting plan. Joining again replaces
// the stored preferences and location.
func (s *PlanService) JoinPlan(ctx context.Context, planID, userID string, req models.JoinPlanRequest) (*models.Participant, error) {
	const op = "joinPlan"

	if userID == "" {
		return nil, validation(op, "user is required")
	}
	if !utils.IsValidCoordinatePair(req.Latitude, req.Longitude) {
		return nil, validation(op, "latitude and longitude must be given together and be in range")
	}

	var prefs models.Preferences
	if req.Preferences != nil {
		prefs = req.Preferences.Normalize()
		if !utils.IsValidBudget(prefs.Budget) {
			return nil, validation(op, "budget must be one of low, medium, high")
		}
		if !utils.IsValidAlcoholStance(prefs.Alcohol) {
			return nil, validation(op, "alcohol must be one of any, yes, no")
		}
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}
	if !plan.IsActive() {
		return nil, invalidState(op, "plan is %s", plan.Status)
	}

	participant := &models.Participant{
		ID:          uuid.New().String(),
		PlanID:      planID,
		UserID:      userID,
		Preferences: datatypes.NewJSONType(prefs),
		Latitude:    req.Latitude,
		Longitude:   req.Longitude,
		JoinedAt:    s.now(),
	}
	if err := s.plans.UpsertParticipant(ctx, participant); err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	// The voting pool is frozen; only an open plan's shortlist goes stale.
	if plan.Status == models.PlanStatusOpen {
		s.evictShortlist(ctx, planID)
	}

	stored, err := s.plans.GetParticipant(ctx, planID, userID)
	if err != nil {
		return nil, storeError(op, err, "participant not found")
	}
	return stored, nil
}

// LeavePlan removes a participant and their vote in the open round.
func (s *PlanService) LeavePlan(ctx context.Context, planID, userID string) error {
	const op = "leavePlan"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return storeError(op, err, "plan not found")
	}
	if !plan.IsActive() {
		return invalidState(op, "plan is %s", plan.Status)
	}
	if plan.InitiatorID == userID {
		return forbidden(op, "the initiator cannot leave; cancel the plan instead")
	}

	removed, err := s.plans.DeleteParticipant(ctx, planID, userID)
	if err != nil {
		return storeError(op, err, "participant not found")
	}
	if !removed {
		return notFound(op, "not a participant of this plan")
	}

	if plan.Status == models.PlanStatusOpen {
		s.evictShortlist(ctx, planID)
	}
	return nil
}

// GetShortlist returns the cached shortlist for the plan, generating it when
// missing or when refresh is set.
func (s *PlanService) GetShortlist(ctx context.Context, planID string, refresh bool) (*models.ShortlistResult, error) {
	const op = "getShortlist"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	if !refresh {
		cached, ok, err := s.cache.Get(ctx, planID)
		switch {
		case err != nil:
			s.logger.ForPlan(planID).Warn("shortlist cache read failed", zap.Error(err))
		case ok:
			metrics.ShortlistCacheLookups.WithLabelValues("hit").Inc()
			return cached, nil
		default:
			metrics.ShortlistCacheLookups.WithLabelValues("miss").Inc()
		}
	}

	return s.generateShortlist(ctx, plan)
}

func (s *PlanService) generateShortlist(ctx context.Context, plan *models.Plan) (*models.ShortlistResult, error) {
	participants, err := s.plans.ListParticipants(ctx, plan.ID)
	if err != nil {
		return nil, storeError("generateShortlist", err, "plan not found")
	}

	result, err := s.shortlists.Generate(ctx, plan, participants)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, plan.ID, result); err != nil {
		s.logger.ForPlan(plan.ID).Warn("shortlist cache write failed", zap.Error(err))
	}
	return result, nil
}

// StartVoting opens a round on an open plan. A zero duration means the
// default of six hours.
func (s *PlanService) StartVoting(ctx context.Context, planID string, durationHours int) (*models.Vote, error) {
	const op = "startVoting"

	if durationHours == 0 {
		durationHours = defaultVotingHours
	}
	if durationHours < 0 || durationHours > maxVotingHours {
		return nil, validation(op, "duration_hours must be between 1 and %d", maxVotingHours)
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}
	if plan.Status != models.PlanStatusOpen {
		return nil, invalidState(op, "plan is %s; voting starts only from open", plan.Status)
	}

	// The pool shown to voters is regenerated, never served stale.
	pool, err := s.generateShortlist(ctx, plan)
	if err != nil {
		return nil, err
	}

	now := s.now()
	endsAt := now.Add(time.Duration(durationHours) * time.Hour)
	round := &models.Vote{
		ID:         uuid.New().String(),
		PlanID:     planID,
		OpenPlanID: &plan.ID,
		Status:     models.VoteStatusOpen,
		StartedAt:  now,
	}
	if err := s.plans.OpenVoting(ctx, planID, round, endsAt); err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	metrics.RecordTransition(string(models.PlanStatusVoting))
	s.logger.ForPlan(planID).Info("voting started",
		zap.String("vote_id", round.ID),
		zap.Time("voting_ends_at", endsAt),
	)

	venueIDs := make([]string, len(pool.Entries))
	for i, entry := range pool.Entries {
		venueIDs[i] = entry.VenueID
	}
	s.notify(planID, "voting_started", s.notifier.VotingStarted(ctx, models.VotingStartedEvent{
		PlanID:       planID,
		ChatID:       plan.ChatID,
		VoteID:       round.ID,
		VotingEndsAt: endsAt,
		VenueIDs:     venueIDs,
		OccurredAt:   now,
	}))

	return round, nil
}

// CastVote records the user's current choice in the open round. Voting the
// same venue again keeps the original cast time.
func (s *PlanService) CastVote(ctx context.Context, planID, userID, venueID string) (*models.VoteCast, error) {
	const op = "castVote"

	if venueID == "" {
		return nil, validation(op, "venue_id is required")
	}

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}
	if plan.Status != models.PlanStatusVoting {
		return nil, invalidState(op, "plan is %s; votes are accepted only while voting", plan.Status)
	}

	if _, err := s.plans.GetParticipant(ctx, planID, userID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, forbidden(op, "join the plan before voting")
		}
		return nil, storeError(op, err, "participant not found")
	}

	round, err := s.votes.GetOpenRound(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidState(op, "no open voting round")
		}
		return nil, storeError(op, err, "round not found")
	}

	// Any venue the catalog knows is a legal target, shortlisted or not.
	if _, err := s.venues.Lookup(ctx, venueID); err != nil {
		return nil, err
	}

	existing, err := s.votes.GetCast(ctx, round.ID, userID)
	switch {
	case err == nil && existing.VenueID == venueID:
		return existing, nil
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storeError(op, err, "vote not found")
	}

	cast := &models.VoteCast{
		ID:      uuid.New().String(),
		VoteID:  round.ID,
		PlanID:  planID,
		UserID:  userID,
		VenueID: venueID,
		CastAt:  s.now(),
	}
	if err := s.votes.UpsertCast(ctx, cast); err != nil {
		return nil, storeError(op, err, "round not found")
	}
	metrics.VotesCast.Inc()

	stored, err := s.votes.GetCast(ctx, round.ID, userID)
	if err != nil {
		return nil, storeError(op, err, "vote not found")
	}
	return stored, nil
}

// RetractVote removes the user's choice from the open round.
func (s *PlanService) RetractVote(ctx context.Context, planID, userID string) error {
	const op = "retractVote"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return storeError(op, err, "plan not found")
	}
	if plan.Status != models.PlanStatusVoting {
		return invalidState(op, "plan is %s", plan.Status)
	}

	round, err := s.votes.GetOpenRound(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return invalidState(op, "no open voting round")
		}
		return storeError(op, err, "round not found")
	}

	removed, err := s.votes.DeleteCast(ctx, round.ID, userID)
	if err != nil {
		return storeError(op, err, "vote not found")
	}
	if !removed {
		return notFound(op, "no vote to retract")
	}
	return nil
}

// GetResults tallies the plan's latest round. While voting it is a live
// snapshot.
func (s *PlanService) GetResults(ctx context.Context, planID string) (*models.VoteResults, error) {
	const op = "getResults"

	if _, err := s.plans.GetByID(ctx, planID); err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	round, err := s.votes.LatestRound(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "voting has not started")
	}

	casts, err := s.votes.ListCasts(ctx, round.ID)
	if err != nil {
		return nil, storeError(op, err, "round not found")
	}

	tally := Tally(casts)
	results := &models.VoteResults{
		PlanID:     planID,
		Round:      *round,
		Tally:      tally,
		TotalVotes: totalVotes(tally),
	}
	if leader, ok := PickWinner(tally); ok {
		results.Leader = &leader
	}
	return results, nil
}

// ClosePlan resolves the open round and closes the plan. Only the
// initiator may close.
func (s *PlanService) ClosePlan(ctx context.Context, planID, requesterID string) (*models.CloseResult, error) {
	const op = "closePlan"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}
	if plan.InitiatorID != requesterID {
		return nil, forbidden(op, "only the initiator can close the plan")
	}
	switch plan.Status {
	case models.PlanStatusClosed, models.PlanStatusCancelled:
		return nil, invalidState(op, "plan is already %s", plan.Status)
	case models.PlanStatusOpen:
		return nil, invalidState(op, "start voting first")
	}

	round, err := s.votes.GetOpenRound(ctx, planID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, invalidState(op, "start voting first")
		}
		return nil, storeError(op, err, "round not found")
	}

	return s.finishRound(ctx, op, plan, round, false)
}

func (s *PlanService) finishRound(ctx context.Context, op string, plan *models.Plan, round *models.Vote, auto bool) (*models.CloseResult, error) {
	casts, err := s.votes.ListCasts(ctx, round.ID)
	if err != nil {
		return nil, storeError(op, err, "round not found")
	}
	winner, ok := PickWinner(Tally(casts))
	if !ok {
		return nil, invalidState(op, "no votes cast")
	}

	view, err := s.venues.Resolve(ctx, winner.VenueID)
	switch {
	case err == nil:
	case KindOf(err) == KindNotFound:
		// Removed from the catalog mid-vote; the id still stands.
		view = &models.VenueView{ID: winner.VenueID}
	default:
		return nil, err
	}

	now := s.now()
	err = s.plans.Finalize(ctx, repositories.FinalizeParams{
		PlanID:        plan.ID,
		RoundID:       round.ID,
		WinnerVenueID: &winner.VenueID,
		From:          []models.PlanStatus{models.PlanStatusVoting},
		To:            models.PlanStatusClosed,
		At:            now,
	})
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	plan.Status = models.PlanStatusClosed
	plan.WinningVenueID = &winner.VenueID
	plan.VotingEndsAt = nil
	s.evictShortlist(ctx, plan.ID)

	metrics.RecordTransition(string(models.PlanStatusClosed))
	s.logger.ForPlan(plan.ID).Info("plan closed",
		zap.String("winner_venue_id", winner.VenueID),
		zap.Int("votes", winner.Count),
		zap.Bool("auto", auto),
	)
	s.notify(plan.ID, "closed", s.notifier.PlanClosed(ctx, models.PlanClosedEvent{
		PlanID:      plan.ID,
		ChatID:      plan.ChatID,
		InitiatorID: plan.InitiatorID,
		Date:        plan.Date,
		Time:        plan.Time,
		Winner:      *view,
		VoteCount:   winner.Count,
		AutoClosed:  auto,
		OccurredAt:  now,
	}))

	return &models.CloseResult{Plan: *plan, Winner: *view, VoteCount: winner.Count}, nil
}

// CancelPlan abandons an open or voting plan. Only the initiator may cancel.
func (s *PlanService) CancelPlan(ctx context.Context, planID, requesterID string) (*models.Plan, error) {
	const op = "cancelPlan"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}
	if plan.InitiatorID != requesterID {
		return nil, forbidden(op, "only the initiator can cancel the plan")
	}
	if !plan.IsActive() {
		return nil, invalidState(op, "plan is already %s", plan.Status)
	}

	if err := s.cancel(ctx, op, plan, "cancelled by initiator"); err != nil {
		return nil, err
	}
	return plan, nil
}

func (s *PlanService) cancel(ctx context.Context, op string, plan *models.Plan, reason string) error {
	var roundID string
	if plan.Status == models.PlanStatusVoting {
		round, err := s.votes.GetOpenRound(ctx, plan.ID)
		switch {
		case err == nil:
			roundID = round.ID
		case !errors.Is(err, gorm.ErrRecordNotFound):
			return storeError(op, err, "round not found")
		}
	}

	now := s.now()
	err := s.plans.Finalize(ctx, repositories.FinalizeParams{
		PlanID:  plan.ID,
		RoundID: roundID,
		From:    []models.PlanStatus{plan.Status},
		To:      models.PlanStatusCancelled,
		At:      now,
	})
	if err != nil {
		return storeError(op, err, "plan not found")
	}

	plan.Status = models.PlanStatusCancelled
	plan.VotingEndsAt = nil
	s.evictShortlist(ctx, plan.ID)

	metrics.RecordTransition(string(models.PlanStatusCancelled))
	s.logger.ForPlan(plan.ID).Info("plan cancelled", zap.String("reason", reason))
	s.notify(plan.ID, "cancelled", s.notifier.PlanCancelled(ctx, models.PlanCancelledEvent{
		PlanID:     plan.ID,
		ChatID:     plan.ChatID,
		Reason:     reason,
		OccurredAt: now,
	}))
	return nil
}

// GetPlanDetails assembles the plan with its participants, latest round and
// winning venue.
func (s *PlanService) GetPlanDetails(ctx context.Context, planID string) (*models.PlanDetails, error) {
	const op = "getPlanDetails"

	plan, err := s.plans.GetByID(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	participants, err := s.plans.ListParticipants(ctx, planID)
	if err != nil {
		return nil, storeError(op, err, "plan not found")
	}

	details := &models.PlanDetails{Plan: *plan, Participants: participants}

	round, err := s.votes.LatestRound(ctx, planID)
	switch {
	case err == nil:
		count, err := s.votes.CountCasts(ctx, round.ID)
		if err != nil {
			return nil, storeError(op, err, "round not found")
		}
		details.Round = round
		details.VoteCount = int(count)
	case !errors.Is(err, gorm.ErrRecordNotFound):
		return nil, storeError(op, err, "round not found")
	}

	if plan.WinningVenueID != nil {
		view, err := s.venues.Resolve(ctx, *plan.WinningVenueID)
		switch {
		case err == nil:
			details.WinningVenue = view
		case KindOf(err) == KindNotFound:
			details.WinningVenue = &models.VenueView{ID: *plan.WinningVenueID}
		default:
			return nil, err
		}
	}

	return details, nil
}

// ListPlansForChat returns the most recent plans started from a chat.
func (s *PlanService) ListPlansForChat(ctx context.Context, chatID int64) ([]models.Plan, error) {
	plans, err := s.plans.ListByChat(ctx, chatID, chatPlansLimit)
	if err != nil {
		return nil, storeError("listPlansForChat", err, "no plans found")
	}
	return plans, nil
}

// AutoCloseExpired closes every voting plan whose deadline has passed.
// Plans that got no votes are cancelled. A plan the initiator closed in the
// meantime is skipped.
func (s *PlanService) AutoCloseExpired(ctx context.Context, now time.Time) (SweepResult, error) {
	const op = "autoCloseExpired"
	var result SweepResult

	plans, err := s.plans.ListExpiredVoting(ctx, now, expiredSweepBatch)
	if err != nil {
		return result, storeError(op, err, "no plans found")
	}

	for i := range plans {
		plan := &plans[i]
		log := s.logger.ForPlan(plan.ID)

		round, err := s.votes.GetOpenRound(ctx, plan.ID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				result.Skipped++
				continue
			}
			log.Error("failed to load open round", zap.Error(err))
			result.Failed++
			continue
		}

		count, err := s.votes.CountCasts(ctx, round.ID)
		if err != nil {
			log.Error("failed to count votes", zap.Error(err))
			result.Failed++
			continue
		}

		if count == 0 {
			err = s.cancel(ctx, op, plan, "voting ended without votes")
			if err == nil {
				result.Cancelled++
			}
		} else {
			_, err = s.finishRound(ctx, op, plan, round, true)
			if err == nil {
				result.Closed++
			}
		}

		switch {
		case err == nil:
		case errors.Is(err, ErrInvalidState):
			// Closed or cancelled concurrently.
			result.Skipped++
		default:
			log.Error("auto close failed", zap.Error(err))
			result.Failed++
		}
	}

	return result, nil
}

func (s *PlanService) evictShortlist(ctx context.Context, planID string) {
	if err := s.cache.Delete(ctx, planID); err != nil {
		s.logger.ForPlan(planID).Warn("shortlist cache eviction failed", zap.Error(err))
	}
}

func (s *PlanService) notify(planID, event string, err error) {
	if err != nil {
		s.logger.ForPlan(planID).Warn("lifecycle notification failed",
			zap.String("event", event),
			zap.Error(err),
		)
	}
}
