package repository

import (
	"context"
	"fmt"

	"anihub/internal/httpapi/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type AnimeRepository interface {
	GetByID(ctx context.Context, id int64) (*models.Anime, error)
	Upsert(ctx context.Context, anime *models.Anime) error
	SearchByTitle(ctx context.Context, query string, limit int) ([]models.Anime, error)
}

type animeRepository struct {
	db *gorm.DB
}

func NewAnimeRepository(db *gorm.DB) AnimeRepository {
	return &animeRepository{db: db}
}

func (r *animeRepository) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	var a models.Anime
	if err := r.db.WithContext(ctx).First(&a, id).Error; err != nil {
		return nil, err
	}
	return &a, nil
}

// Upsert creates the row on first sight of an id and overwrites every
// metadata column (plus last_fetched) on conflict. A single statement, so
// concurrent refreshes of the same id stay last-write-wins without
// corrupting the row.
func (r *animeRepository) Upsert(ctx context.Context, anime *models.Anime) error {
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "title_english", "synopsis", "image_url", "trailer_url",
			"score", "episodes", "year", "status", "rating", "season",
			"genres", "last_fetched", "updated_at",
		}),
	}).Create(anime).Error
	if err != nil {
		return fmt.Errorf("upsert anime %d: %w", anime.ID, err)
	}
	return nil
}

// SearchByTitle performs case-insensitive partial match on title and
// title_english, best-scored first.
func (r *animeRepository) SearchByTitle(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	var list []models.Anime
	p := "%" + query + "%"
	err := r.db.WithContext(ctx).
		Where("title ILIKE ? OR COALESCE(title_english,'') ILIKE ?", p, p).
		Order("score DESC NULLS LAST").
		Limit(limit).
		Find(&list).Error
	if err != nil {
		return nil, fmt.Errorf("search anime by title: %w", err)
	}
	return list, nil
}
