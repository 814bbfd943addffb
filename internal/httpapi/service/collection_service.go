package service

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/models"
	"anihub/internal/httpapi/repository"
)

var ErrAlreadyInCollection = errors.New("anime already in collection")

type CollectionService interface {
	Add(ctx context.Context, userID string, animeID int64) (*dto.CollectionEntryResponse, error)
	Remove(ctx context.Context, userID string, animeID int64) error
	List(ctx context.Context, userID string) ([]dto.CollectionEntryResponse, error)
}

type collectionService struct {
	collectionRepo repository.CollectionRepository
	animeRepo      repository.AnimeRepository
	animeService   AnimeService
}

func NewCollectionService(
	collectionRepo repository.CollectionRepository,
	animeRepo repository.AnimeRepository,
	animeService AnimeService,
) CollectionService {
	return &collectionService{
		collectionRepo: collectionRepo,
		animeRepo:      animeRepo,
		animeService:   animeService,
	}
}

// Add bookmarks an anime for the user. A present-but-stale cached record is
// used as-is; the write path never forces a refresh. Only a record that was
// never cached is populated through the anime service first.
func (s *collectionService) Add(ctx context.Context, userID string, animeID int64) (*dto.CollectionEntryResponse, error) {
	_, err := s.animeRepo.GetByID(ctx, animeID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		if _, err := s.animeService.GetAnime(ctx, animeID); err != nil {
			return nil, err
		}
	} else if err != nil {
		return nil, err
	}

	entry := &models.CollectionEntry{
		UserID:  userID,
		AnimeID: animeID,
	}
	if err := s.collectionRepo.Add(ctx, entry); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, ErrAlreadyInCollection
		}
		return nil, err
	}

	// Reload to denormalize the anime row into the response
	entry, err = s.collectionRepo.Get(ctx, userID, animeID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCollectionEntryResponse(entry), nil
}

// Remove is idempotent: removing an anime that is not in the collection
// succeeds without error.
func (s *collectionService) Remove(ctx context.Context, userID string, animeID int64) error {
	return s.collectionRepo.Remove(ctx, userID, animeID)
}

func (s *collectionService) List(ctx context.Context, userID string) ([]dto.CollectionEntryResponse, error) {
	entries, err := s.collectionRepo.List(ctx, userID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CollectionEntryResponse, 0, len(entries))
	for i := range entries {
		responses = append(responses, *dto.FromModelToCollectionEntryResponse(&entries[i]))
	}
	return responses, nil
}
