package repository

import (
	"context"
	"fmt"

	"anihub/internal/httpapi/models"

	"gorm.io/gorm"
)

type CollectionRepository interface {
	Add(ctx context.Context, entry *models.CollectionEntry) error
	Remove(ctx context.Context, userID string, animeID int64) error
	List(ctx context.Context, userID string) ([]models.CollectionEntry, error)
	Get(ctx context.Context, userID string, animeID int64) (*models.CollectionEntry, error)
}

type collectionRepository struct {
	db *gorm.DB
}

func NewCollectionRepository(db *gorm.DB) CollectionRepository {
	return &collectionRepository{db: db}
}

// Add inserts the entry. A duplicate (user_id, anime_id) surfaces as
// gorm.ErrDuplicatedKey for the service to translate; the unique index is
// the authority, not an existence pre-check.
func (r *collectionRepository) Add(ctx context.Context, entry *models.CollectionEntry) error {
	return r.db.WithContext(ctx).Create(entry).Error
}

// Remove is idempotent: deleting an absent entry is not an error.
func (r *collectionRepository) Remove(ctx context.Context, userID string, animeID int64) error {
	result := r.db.WithContext(ctx).
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		Delete(&models.CollectionEntry{})
	if result.Error != nil {
		return fmt.Errorf("remove from collection: %w", result.Error)
	}
	return nil
}

func (r *collectionRepository) List(ctx context.Context, userID string) ([]models.CollectionEntry, error) {
	var entries []models.CollectionEntry
	if err := r.db.WithContext(ctx).
		Preload("Anime").
		Where("user_id = ?", userID).
		Order("added_at DESC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list collection: %w", err)
	}
	return entries, nil
}

func (r *collectionRepository) Get(ctx context.Context, userID string, animeID int64) (*models.CollectionEntry, error) {
	var entry models.CollectionEntry
	if err := r.db.WithContext(ctx).
		Preload("Anime").
		Where("user_id = ? AND anime_id = ?", userID, animeID).
		First(&entry).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}
