package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/middleware"
	"anihub/internal/httpapi/service"
)

type CommentHandler struct {
	commentService service.CommentService
}

func NewCommentHandler(commentService service.CommentService) *CommentHandler {
	return &CommentHandler{commentService: commentService}
}

// RegisterPublicRoutes registers routes readable without authentication.
// The parent group carries the optional-auth middleware so like-state is
// personalized when a token is present.
func (h *CommentHandler) RegisterPublicRoutes(router *gin.RouterGroup) {
	router.GET("", h.ListByAnime)
}

// RegisterProtectedRoutes registers write routes (parent group is
// authenticated).
func (h *CommentHandler) RegisterProtectedRoutes(router *gin.RouterGroup) {
	router.POST("", h.Create)
	router.DELETE("/:id", h.Delete)
	router.POST("/:id/like", h.ToggleLike)
}

// ListByAnime lists an anime's comments with like counts
// GET /api/comments?anime_id=1
func (h *CommentHandler) ListByAnime(c *gin.Context) {
	animeID, err := strconv.ParseInt(c.Query("anime_id"), 10, 64)
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id is required"})
		return
	}

	// empty for anonymous callers
	viewerID := middleware.UserID(c)

	comments, err := h.commentService.ListComments(c.Request.Context(), animeID, viewerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch comments"})
		return
	}

	c.JSON(http.StatusOK, comments)
}

// Create posts a new comment
// POST /api/comments
func (h *CommentHandler) Create(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.CreateCommentDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	comment, err := h.commentService.CreateComment(c.Request.Context(), userID, req.AnimeID, req.Content)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmptyContent):
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAnimeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		}
		return
	}

	c.JSON(http.StatusCreated, comment)
}

// Delete removes the caller's own comment
// DELETE /api/comments/:id
func (h *CommentHandler) Delete(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	if err := h.commentService.DeleteComment(c.Request.Context(), commentID, userID); err != nil {
		switch {
		case errors.Is(err, service.ErrCommentNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrNotCommentOwner):
			c.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to delete comment"})
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "comment deleted successfully"})
}

// ToggleLike flips the caller's like on a comment
// POST /api/comments/:id/like
func (h *CommentHandler) ToggleLike(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	commentID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || commentID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid comment id"})
		return
	}

	result, err := h.commentService.ToggleLike(c.Request.Context(), userID, commentID)
	if err != nil {
		if errors.Is(err, service.ErrCommentNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to toggle like"})
		return
	}

	c.JSON(http.StatusOK, result)
}
