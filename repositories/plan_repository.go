package repositories

import (
	"context"
	"errors"
	"time"

	"gatherly-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// ErrConflict is returned when a guarded write finds the row no longer in
// the expected state, or a uniqueness constraint rejects it.
var ErrConflict = errors.New("conflicting state change")

type PlanRepository struct {
	db *gorm.DB
}

func NewPlanRepository(db *gorm.DB) *PlanRepository {
	return &PlanRepository{db: db}
}

// Create inserts the plan and its initiator participant atomically
func (r *PlanRepository) Create(ctx context.Context, plan *models.Plan, initiator *models.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(plan).Error; err != nil {
			return err
		}
		return tx.Create(initiator).Error
	})
}

// GetByID retrieves a plan without associations
func (r *PlanRepository) GetByID(ctx context.Context, planID string) (*models.Plan, error) {
	var plan models.Plan
	if err := r.db.WithContext(ctx).First(&plan, "id = ?", planID).Error; err != nil {
		return nil, err
	}
	return &plan, nil
}

// ListByChat returns the plans started from a chat, newest first
func (r *PlanRepository) ListByChat(ctx context.Context, chatID int64, limit int) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Where("chat_id = ?", chatID).
		Order("created_at DESC").
		Limit(limit).
		Find(&plans).Error
	return plans, err
}

// ListExpiredVoting returns voting plans whose deadline has passed
func (r *PlanRepository) ListExpiredVoting(ctx context.Context, now time.Time, limit int) ([]models.Plan, error) {
	var plans []models.Plan
	err := r.db.WithContext(ctx).
		Where("status = ? AND voting_ends_at <= ?", string(models.PlanStatusVoting), now).
		Order("voting_ends_at ASC").
		Limit(limit).
		Find(&plans).Error
	return plans, err
}

// ListParticipants returns the plan's participants in join order
func (r *PlanRepository) ListParticipants(ctx context.Context, planID string) ([]models.Participant, error) {
	var participants []models.Participant
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	return participants, err
}

// GetParticipant retrieves one participant of a plan
func (r *PlanRepository) GetParticipant(ctx context.Context, planID, userID string) (*models.Participant, error) {
	var participant models.Participant
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND user_id = ?", planID, userID).
		First(&participant).Error
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

// UpsertParticipant creates the participant or, when (plan_id, user_id)
// already exists, overwrites its preferences and location. The unique index
// makes concurrent joins collapse into one row.
func (r *PlanRepository) UpsertParticipant(ctx context.Context, participant *models.Participant) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "plan_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"preferences", "latitude", "longitude"}),
	}).Create(participant).Error
}

// DeleteParticipant removes a participant and their casts in the plan's
// open round. It reports whether a participant row existed.
func (r *PlanRepository) DeleteParticipant(ctx context.Context, planID, userID string) (bool, error) {
	var removed bool
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("plan_id = ? AND user_id = ?", planID, userID).Delete(&models.Participant{})
		if res.Error != nil {
			return res.Error
		}
		removed = res.RowsAffected > 0

		openRounds := tx.Model(&models.Vote{}).Select("id").
			Where("plan_id = ? AND status = ?", planID, string(models.VoteStatusOpen))
		return tx.Where("user_id = ? AND vote_id IN (?)", userID, openRounds).
			Delete(&models.VoteCast{}).Error
	})
	return removed, err
}

// OpenVoting moves an open plan into voting and inserts its round. It
// returns ErrConflict when the plan is no longer open or another round is
// already open.
func (r *PlanRepository) OpenVoting(ctx context.Context, planID string, round *models.Vote, endsAt time.Time) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&models.Plan{}).
			Where("id = ? AND status = ?", planID, string(models.PlanStatusOpen)).
			Updates(map[string]interface{}{
				"status":         string(models.PlanStatusVoting),
				"voting_ends_at": endsAt,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}

		if err := tx.Create(round).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrConflict
			}
			return err
		}
		return nil
	})
}

// FinalizeParams describes a terminal transition of a plan.
type FinalizeParams struct {
	PlanID        string
	RoundID       string // empty when the plan has no open round
	WinnerVenueID *string
	From          []models.PlanStatus
	To            models.PlanStatus
	At            time.Time
}

// Finalize closes the open round (if any) and moves the plan to its
// terminal status in one transaction. Both writes are guarded by the
// expected current status, so a concurrent close makes this return
// ErrConflict instead of applying a second winner.
func (r *PlanRepository) Finalize(ctx context.Context, p FinalizeParams) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if p.RoundID != "" {
			res := tx.Model(&models.Vote{}).
				Where("id = ? AND status = ?", p.RoundID, string(models.VoteStatusOpen)).
				Updates(map[string]interface{}{
					"status":          string(models.VoteStatusClosed),
					"ended_at":        p.At,
					"winner_venue_id": p.WinnerVenueID,
					"open_plan_id":    nil,
				})
			if res.Error != nil {
				return res.Error
			}
			if res.RowsAffected == 0 {
				return ErrConflict
			}
		}

		res := tx.Model(&models.Plan{}).
			Where("id = ? AND status IN ?", p.PlanID, statusStrings(p.From)).
			Updates(map[string]interface{}{
				"status":           string(p.To),
				"winning_venue_id": p.WinnerVenueID,
				"voting_ends_at":   nil,
			})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrConflict
		}
		return nil
	})
}

func statusStrings(statuses []models.PlanStatus) []string {
	out := make([]string, len(statuses))
	for i, s := range statuses {
		out[i] = string(s)
	}
	return out
}
