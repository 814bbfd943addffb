package repository

import (
	"context"

	"anihub/internal/httpapi/models"

	"gorm.io/gorm"
)

type LikeRepository interface {
	Create(ctx context.Context, like *models.CommentLike) error
	Delete(ctx context.Context, userID string, commentID int64) (bool, error)
	Exists(ctx context.Context, userID string, commentID int64) (bool, error)
	CountByComment(ctx context.Context, commentID int64) (int64, error)
}

type likeRepository struct {
	db *gorm.DB
}

func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

// Create inserts the like. A duplicate (user_id, comment_id) surfaces as
// gorm.ErrDuplicatedKey.
func (r *likeRepository) Create(ctx context.Context, like *models.CommentLike) error {
	return r.db.WithContext(ctx).Create(like).Error
}

// Delete reports whether a row was actually removed.
func (r *likeRepository) Delete(ctx context.Context, userID string, commentID int64) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Delete(&models.CommentLike{})
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, userID string, commentID int64) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("user_id = ? AND comment_id = ?", userID, commentID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *likeRepository) CountByComment(ctx context.Context, commentID int64) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&models.CommentLike{}).
		Where("comment_id = ?", commentID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
