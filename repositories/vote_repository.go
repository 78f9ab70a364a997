package repositories

import (
	"context"

	"gatherly-api/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type VoteRepository struct {
	db *gorm.DB
}

func NewVoteRepository(db *gorm.DB) *VoteRepository {
	return &VoteRepository{db: db}
}

// GetOpenRound retrieves the plan's open round
func (r *VoteRepository) GetOpenRound(ctx context.Context, planID string) (*models.Vote, error) {
	var round models.Vote
	err := r.db.WithContext(ctx).
		Where("plan_id = ? AND status = ?", planID, string(models.VoteStatusOpen)).
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// LatestRound retrieves the most recently started round of a plan
func (r *VoteRepository) LatestRound(ctx context.Context, planID string) (*models.Vote, error) {
	var round models.Vote
	err := r.db.WithContext(ctx).
		Where("plan_id = ?", planID).
		Order("started_at DESC, id DESC").
		First(&round).Error
	if err != nil {
		return nil, err
	}
	return &round, nil
}

// GetCast retrieves a user's current choice in a round
func (r *VoteRepository) GetCast(ctx context.Context, voteID, userID string) (*models.VoteCast, error) {
	var cast models.VoteCast
	err := r.db.WithContext(ctx).
		Where("vote_id = ? AND user_id = ?", voteID, userID).
		First(&cast).Error
	if err != nil {
		return nil, err
	}
	return &cast, nil
}

// UpsertCast records the user's choice, replacing any previous one in the
// same round. Last write wins.
func (r *VoteRepository) UpsertCast(ctx context.Context, cast *models.VoteCast) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "vote_id"}, {Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"venue_id", "cast_at"}),
	}).Create(cast).Error
}

// DeleteCast removes a user's choice. It reports whether one existed.
func (r *VoteRepository) DeleteCast(ctx context.Context, voteID, userID string) (bool, error) {
	res := r.db.WithContext(ctx).
		Where("vote_id = ? AND user_id = ?", voteID, userID).
		Delete(&models.VoteCast{})
	return res.RowsAffected > 0, res.Error
}

// ListCasts returns a round's casts, oldest first
func (r *VoteRepository) ListCasts(ctx context.Context, voteID string) ([]models.VoteCast, error) {
	var casts []models.VoteCast
	err := r.db.WithContext(ctx).
		Where("vote_id = ?", voteID).
		Order("cast_at ASC, id ASC").
		Find(&casts).Error
	return casts, err
}

// CountCasts counts the casts in a round
func (r *VoteRepository) CountCasts(ctx context.Context, voteID string) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&models.VoteCast{}).
		Where("vote_id = ?", voteID).
		Count(&count).Error
	return count, err
}
