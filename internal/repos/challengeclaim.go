package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openchain-academy/academy-backend/internal/logger"
	"github.com/openchain-academy/academy-backend/internal/types"
)

type ChallengeClaimRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeClaim, error)
	GetByUserAndChallengeID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, challengeID string) (*types.ChallengeClaim, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.ChallengeClaim) error
	FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type challengeClaimRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewChallengeClaimRepo(db *gorm.DB, baseLog *logger.Logger) ChallengeClaimRepo {
	repoLog := baseLog.With("repo", "ChallengeClaimRepo")
	return &challengeClaimRepo{db: db, log: repoLog}
}

func (r *challengeClaimRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.ChallengeClaim, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.ChallengeClaim
	if userID == uuid.Nil {
		return results, nil
	}

	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}

func (r *challengeClaimRepo) GetByUserAndChallengeID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, challengeID string) (*types.ChallengeClaim, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || challengeID == "" {
		return nil, nil
	}

	var results []*types.ChallengeClaim
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", userID, challengeID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *challengeClaimRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.ChallengeClaim) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique user_id + challenge_id
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND challenge_id = ?", row.UserID, row.ChallengeID).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *challengeClaimRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if len(userIDs) == 0 {
		return nil
	}

	if err := transaction.WithContext(ctx).
		Unscoped().
		Where("user_id IN ?", userIDs).
		Delete(&types.ChallengeClaim{}).Error; err != nil {
		return err
	}
	return nil
}
