package services

import (
	"context"
	"math"
	"sort"
	"time"

	"gatherly-api/logger"
	"gatherly-api/metrics"
	"gatherly-api/models"
	"gatherly-api/utils"

	"go.uber.org/zap"
)

// ShortlistConfig holds the shortlist generator's tuning knobs.
type ShortlistConfig struct {
	DefaultCenter          models.GeoPoint
	CityCenterRadiusMeters float64
	DefaultRadiusMeters    float64
	MinRating              float64
	CandidateLimit         int
	TopN                   int
}

// DefaultShortlistConfig returns the standard knobs around a city center.
func DefaultShortlistConfig(center models.GeoPoint) ShortlistConfig {
	return ShortlistConfig{
		DefaultCenter:          center,
		CityCenterRadiusMeters: 5000,
		DefaultRadiusMeters:    10000,
		MinRating:              3.5,
		CandidateLimit:         50,
		TopN:                   5,
	}
}

// Scoring weights. Each component is on a 0-100 scale except the partner
// bonus, which is 0 or 10.
const (
	weightDistance   = 0.3
	weightRating     = 0.4
	weightPreference = 0.2
	weightPartner    = 0.1

	basePreferenceScore   = 50.0
	planFormatMatchBonus  = 20.0
	participantFormatBump = 5.0
	participantBudgetBump = 3.0
	cuisineOverlapBump    = 2.0
	partnerBonusValue     = 10.0
)

type ShortlistService struct {
	catalog   Catalog
	readModel *VenueReadModel
	cfg       ShortlistConfig
	logger    *logger.Logger
	now       func() time.Time
}

func NewShortlistService(catalog Catalog, readModel *VenueReadModel, cfg ShortlistConfig, log *logger.Logger) *ShortlistService {
	return &ShortlistService{
		catalog:   catalog,
		readModel: readModel,
		cfg:       cfg,
		logger:    log,
		now:       time.Now,
	}
}

type scoredVenue struct {
	venue   models.Venue
	located bool
	score   models.ScoreBreakdown
}

// Generate ranks catalog venues around the plan's meeting point and returns
// the top candidates. Ties keep catalog order.
func (s *ShortlistService) Generate(ctx context.Context, plan *models.Plan, participants []models.Participant) (*models.ShortlistResult, error) {
	const op = "generateShortlist"

	if len(participants) == 0 {
		return nil, invalidState(op, "cannot shortlist for an empty plan")
	}

	start := time.Now()
	meetingPoint, source := MeetingPoint(plan, participants, s.cfg.DefaultCenter)
	radius := s.radiusFor(plan)

	candidates, err := s.catalog.Search(ctx, models.VenueQuery{
		Center:       meetingPoint,
		RadiusMeters: radius,
		Category:     plan.Format,
		MinRating:    s.cfg.MinRating,
		CityID:       plan.CityID,
		Limit:        s.cfg.CandidateLimit,
	})
	if err != nil {
		metrics.RecordShortlist("error", time.Since(start).Seconds(), 0)
		s.logger.Warn("catalog search failed", zap.String("plan_id", plan.ID), zap.Error(err))
		return nil, storeError(op, err, "no venues found")
	}

	now := s.now()
	scored := make([]scoredVenue, len(candidates))
	for i, venue := range candidates {
		_, located := venue.Location()
		scored[i] = scoredVenue{
			venue:   venue,
			located: located,
			score:   ScoreVenue(venue, meetingPoint, plan, participants, now),
		}
	}

	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].located != scored[j].located {
			return scored[i].located
		}
		return scored[i].score.TotalScore > scored[j].score.TotalScore
	})

	if len(scored) > s.cfg.TopN {
		scored = scored[:s.cfg.TopN]
	}

	entries := make([]models.ShortlistEntry, 0, len(scored))
	for _, sv := range scored {
		view, err := s.readModel.View(ctx, sv.venue)
		if err != nil {
			metrics.RecordShortlist("error", time.Since(start).Seconds(), 0)
			return nil, err
		}
		entries = append(entries, models.ShortlistEntry{
			VenueID: sv.venue.ID,
			Venue:   view,
			Score:   sv.score,
		})
	}

	metrics.RecordShortlist("ok", time.Since(start).Seconds(), len(candidates))
	s.logger.Debug("shortlist generated",
		zap.String("plan_id", plan.ID),
		zap.String("meeting_point_source", source),
		zap.Int("candidates", len(candidates)),
		zap.Int("entries", len(entries)),
	)

	return &models.ShortlistResult{
		PlanID:             plan.ID,
		MeetingPoint:       meetingPoint,
		MeetingPointSource: source,
		RadiusMeters:       radius,
		Entries:            entries,
		GeneratedAt:        now,
	}, nil
}

func (s *ShortlistService) radiusFor(plan *models.Plan) float64 {
	if plan.Area == models.AreaCityCenter {
		return s.cfg.CityCenterRadiusMeters
	}
	return s.cfg.DefaultRadiusMeters
}

// MeetingPoint picks the point to search around: the plan's fixed location,
// else the centroid of participant locations when the plan asks for a
// midpoint and at least two participants shared one, else fallback.
func MeetingPoint(plan *models.Plan, participants []models.Participant, fallback models.GeoPoint) (models.GeoPoint, string) {
	if point, ok := plan.Location(); ok {
		return point, models.MeetingPointExplicit
	}

	if plan.Area == models.AreaMidpoint {
		points := make([]models.GeoPoint, 0, len(participants))
		for i := range participants {
			if point, ok := participants[i].Location(); ok {
				points = append(points, point)
			}
		}
		if len(points) >= 2 {
			if center, ok := utils.Centroid(points); ok {
				return center, models.MeetingPointMidpoint
			}
		}
	}

	return fallback, models.MeetingPointDefault
}

// ScoreVenue computes the weighted score of one candidate. A venue without
// coordinates scores zero across the board.
func ScoreVenue(venue models.Venue, meetingPoint models.GeoPoint, plan *models.Plan, participants []models.Participant, now time.Time) models.ScoreBreakdown {
	location, ok := venue.Location()
	if !ok {
		return models.ScoreBreakdown{}
	}

	distance := utils.DistanceMeters(meetingPoint, location)
	distanceScore := math.Max(0, 100-distance/50)
	ratingScore := venue.Rating * 20
	prefScore := preferenceScore(venue, plan, participants)

	partnerBonus := 0.0
	if venue.PartnerActive(now) {
		partnerBonus = partnerBonusValue
	}

	return models.ScoreBreakdown{
		DistanceMeters:  &distance,
		DistanceScore:   distanceScore,
		RatingScore:     ratingScore,
		PreferenceScore: prefScore,
		PartnerBonus:    partnerBonus,
		TotalScore: weightDistance*distanceScore +
			weightRating*ratingScore +
			weightPreference*prefScore +
			weightPartner*partnerBonus,
	}
}

func preferenceScore(venue models.Venue, plan *models.Plan, participants []models.Participant) float64 {
	score := basePreferenceScore
	if venue.Categories.ContainsFold(plan.Format) {
		score += planFormatMatchBonus
	}

	for i := range participants {
		prefs := participants[i].Prefs()
		if prefs.IsZero() {
			continue
		}
		if venue.Categories.ContainsFold(prefs.Format) {
			score += participantFormatBump
		}
		if prefs.Budget != "" && prefs.Budget == plan.Budget {
			score += participantBudgetBump
		}
		for _, cuisine := range prefs.Cuisines {
			if venue.Categories.ContainsFold(cuisine) {
				score += cuisineOverlapBump
			}
		}
	}

	return math.Min(100, score)
}
