package service

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/models"
	"anihub/internal/httpapi/repository"
)

var (
	ErrCommentNotFound = errors.New("comment not found")
	ErrNotCommentOwner = errors.New("you don't have permission to modify this comment")
	ErrEmptyContent    = errors.New("comment content is required")
)

type CommentService interface {
	CreateComment(ctx context.Context, userID string, animeID int64, content string) (*dto.CommentResponse, error)
	DeleteComment(ctx context.Context, commentID int64, userID string) error
	ListComments(ctx context.Context, animeID int64, viewerID string) ([]dto.CommentResponse, error)
	ToggleLike(ctx context.Context, userID string, commentID int64) (*dto.ToggleLikeResponse, error)
}

type commentService struct {
	commentRepo repository.CommentRepository
	likeRepo    repository.LikeRepository
	animeRepo   repository.AnimeRepository
}

func NewCommentService(
	commentRepo repository.CommentRepository,
	likeRepo repository.LikeRepository,
	animeRepo repository.AnimeRepository,
) CommentService {
	return &commentService{
		commentRepo: commentRepo,
		likeRepo:    likeRepo,
		animeRepo:   animeRepo,
	}
}

// CreateComment creates a new comment with zero initial likes.
func (s *commentService) CreateComment(ctx context.Context, userID string, animeID int64, content string) (*dto.CommentResponse, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, ErrEmptyContent
	}

	// Comments attach to cached anime rows; posting happens from the detail
	// page which has already populated the cache.
	if _, err := s.animeRepo.GetByID(ctx, animeID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAnimeNotFound
		}
		return nil, err
	}

	comment := &models.Comment{
		UserID:  userID,
		AnimeID: animeID,
		Content: content,
	}
	if err := s.commentRepo.Create(ctx, comment); err != nil {
		return nil, err
	}

	// Reload with user data
	comment, err := s.commentRepo.GetByID(ctx, comment.ID)
	if err != nil {
		return nil, err
	}
	return dto.FromModelToCommentResponse(comment, userID), nil
}

// DeleteComment deletes a comment. Only the author may delete it.
func (s *commentService) DeleteComment(ctx context.Context, commentID int64, userID string) error {
	comment, err := s.commentRepo.GetByID(ctx, commentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrCommentNotFound
		}
		return err
	}

	if comment.UserID != userID {
		return ErrNotCommentOwner
	}

	return s.commentRepo.Delete(ctx, commentID)
}

// ListComments returns an anime's comments newest first. viewerID may be
// empty; it only switches the is_liked_by_user flag on.
func (s *commentService) ListComments(ctx context.Context, animeID int64, viewerID string) ([]dto.CommentResponse, error) {
	comments, err := s.commentRepo.ListByAnime(ctx, animeID)
	if err != nil {
		return nil, err
	}

	responses := make([]dto.CommentResponse, 0, len(comments))
	for i := range comments {
		responses = append(responses, *dto.FromModelToCommentResponse(&comments[i], viewerID))
	}
	return responses, nil
}

// ToggleLike flips the caller's like on a comment. The existence check is a
// fast path only: a double-submit race resolves through the unique
// constraint, never through a second row.
func (s *commentService) ToggleLike(ctx context.Context, userID string, commentID int64) (*dto.ToggleLikeResponse, error) {
	if _, err := s.commentRepo.GetByID(ctx, commentID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCommentNotFound
		}
		return nil, err
	}

	liked, err := s.likeRepo.Exists(ctx, userID, commentID)
	if err != nil {
		return nil, err
	}

	if liked {
		if _, err := s.likeRepo.Delete(ctx, userID, commentID); err != nil {
			return nil, err
		}
		return s.likeResult(ctx, commentID, false)
	}

	like := &models.CommentLike{UserID: userID, CommentID: commentID}
	if err := s.likeRepo.Create(ctx, like); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// Lost a double-submit race: the like exists, so this toggle
			// removes it.
			if _, err := s.likeRepo.Delete(ctx, userID, commentID); err != nil {
				return nil, err
			}
			return s.likeResult(ctx, commentID, false)
		}
		return nil, err
	}
	return s.likeResult(ctx, commentID, true)
}

func (s *commentService) likeResult(ctx context.Context, commentID int64, liked bool) (*dto.ToggleLikeResponse, error) {
	count, err := s.likeRepo.CountByComment(ctx, commentID)
	if err != nil {
		return nil, err
	}
	return &dto.ToggleLikeResponse{Liked: liked, LikeCount: count}, nil
}
