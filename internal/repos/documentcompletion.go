package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/openchain-academy/academy-backend/internal/logger"
	"github.com/openchain-academy/academy-backend/internal/types"
)

type DocumentCompletionRepo interface {
	GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DocumentCompletion, error)
	GetByUserAndDocumentID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, documentID string) (*types.DocumentCompletion, error)
	Upsert(ctx context.Context, tx *gorm.DB, row *types.DocumentCompletion) error
	FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error
}

type documentCompletionRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentCompletionRepo(db *gorm.DB, baseLog *logger.Logger) DocumentCompletionRepo {
	repoLog := baseLog.With("repo", "DocumentCompletionRepo")
	return &documentCompletionRepo{db: db, log: repoLog}
}

func (r *documentCompletionRepo) GetByUserID(ctx context.Context, tx *gorm.DB, userID uuid.UUID) ([]*types.DocumentCompletion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var results []*types.DocumentCompletion
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

func (r *documentCompletionRepo) GetByUserAndDocumentID(ctx context.Context, tx *gorm.DB, userID uuid.UUID, documentID string) (*types.DocumentCompletion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if userID == uuid.Nil || documentID == "" {
		return nil, nil
	}

	var results []*types.DocumentCompletion
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND document_id = ?", userID, documentID).
		Limit(1).
		Find(&results).Error; err != nil {
		return nil, err
	}
	if len(results) == 0 {
		return nil, nil
	}
	return results[0], nil
}

func (r *documentCompletionRepo) Upsert(ctx context.Context, tx *gorm.DB, row *types.DocumentCompletion) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if row == nil {
		return nil
	}

	// Upsert by unique user_id + document_id
	if err := transaction.WithContext(ctx).
		Where("user_id = ? AND document_id = ?", row.UserID, row.DocumentID).
		FirstOrCreate(row).Error; err != nil {
		return err
	}
	return nil
}

func (r *documentCompletionRepo) FullDeleteByUserIDs(ctx context.Context, tx *gorm.DB, userIDs []uuid.UUID) error {
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
		Delete(&types.DocumentCompletion{}).Error; err != nil {
		return err
	}
	return nil
}
