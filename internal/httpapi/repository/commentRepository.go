package repository

import (
	"context"

	"anihub/internal/httpapi/models"

	"gorm.io/gorm"
)

type CommentRepository interface {
	Create(ctx context.Context, comment *models.Comment) error
	GetByID(ctx context.Context, commentID int64) (*models.Comment, error)
	Delete(ctx context.Context, commentID int64) error
	ListByAnime(ctx context.Context, animeID int64) ([]models.Comment, error)
}

type commentRepository struct {
	db *gorm.DB
}

func NewCommentRepository(db *gorm.DB) CommentRepository {
	return &commentRepository{db: db}
}

func (r *commentRepository) Create(ctx context.Context, comment *models.Comment) error {
	return r.db.WithContext(ctx).Create(comment).Error
}

func (r *commentRepository) GetByID(ctx context.Context, commentID int64) (*models.Comment, error) {
	var comment models.Comment
	err := r.db.WithContext(ctx).
		Preload("User").
		First(&comment, commentID).Error
	if err != nil {
		return nil, err
	}
	return &comment, nil
}

func (r *commentRepository) Delete(ctx context.Context, commentID int64) error {
	return r.db.WithContext(ctx).Delete(&models.Comment{}, commentID).Error
}

// ListByAnime returns comments newest first, with author and likes loaded
// so the service can report like counts and per-user like state.
func (r *commentRepository) ListByAnime(ctx context.Context, animeID int64) ([]models.Comment, error) {
	var comments []models.Comment
	err := r.db.WithContext(ctx).
		Where("anime_id = ?", animeID).
		Preload("User").
		Preload("Likes").
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, err
	}
	return comments, nil
}
