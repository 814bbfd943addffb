package dto

import (
	"time"

	"anihub/internal/httpapi/models"
)

type AddCollectionRequest struct {
	AnimeID int64 `json:"anime_id" binding:"required,gt=0"`
}

type CollectionEntryResponse struct {
	ID      int64         `json:"id"`
	AnimeID int64         `json:"anime_id"`
	AddedAt time.Time     `json:"added_at"`
	Anime   *models.Anime `json:"anime,omitempty"`
}

func FromModelToCollectionEntryResponse(e *models.CollectionEntry) *CollectionEntryResponse {
	return &CollectionEntryResponse{
		ID:      e.ID,
		AnimeID: e.AnimeID,
		AddedAt: e.AddedAt,
		Anime:   e.Anime,
	}
}
