package dto

import (
	"time"

	"anihub/internal/httpapi/models"
)

// CreateCommentDTO for creating a comment
type CreateCommentDTO struct {
	AnimeID int64  `json:"anime_id" binding:"required,gt=0"`
	Content string `json:"content" binding:"required,min=1,max=5000"`
}

// CommentResponse for returning comment information
type CommentResponse struct {
	ID            int64     `json:"id"`
	Username      string    `json:"username"`
	Content       string    `json:"content"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
	LikeCount     int       `json:"like_count"`
	IsLikedByUser bool      `json:"is_liked_by_user"`
}

// FromModelToCommentResponse converts a Comment model to CommentResponse
// DTO. viewerID may be empty for anonymous requests, in which case
// is_liked_by_user is always false.
func FromModelToCommentResponse(comment *models.Comment, viewerID string) *CommentResponse {
	liked := false
	if viewerID != "" {
		for _, like := range comment.Likes {
			if like.UserID == viewerID {
				liked = true
				break
			}
		}
	}
	return &CommentResponse{
		ID:            comment.ID,
		Username:      comment.User.Username,
		Content:       comment.Content,
		CreatedAt:     comment.CreatedAt,
		UpdatedAt:     comment.UpdatedAt,
		LikeCount:     len(comment.Likes),
		IsLikedByUser: liked,
	}
}

type ToggleLikeResponse struct {
	Liked     bool  `json:"liked"`
	LikeCount int64 `json:"like_count"`
}
