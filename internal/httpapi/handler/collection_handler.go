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

type CollectionHandler struct {
	collectionService service.CollectionService
}

func NewCollectionHandler(collectionService service.CollectionService) *CollectionHandler {
	return &CollectionHandler{collectionService: collectionService}
}

// RegisterRoutes registers collection routes (parent group is authenticated)
func (h *CollectionHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("", h.List)
	router.POST("", h.Add)
	router.DELETE("/:anime_id", h.Remove)
}

// List returns the caller's collection, newest first
// GET /api/collection
func (h *CollectionHandler) List(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	entries, err := h.collectionService.List(c.Request.Context(), userID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch collection"})
		return
	}

	c.JSON(http.StatusOK, entries)
}

// Add bookmarks an anime for the caller
// POST /api/collection
func (h *CollectionHandler) Add(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	var req dto.AddCollectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "anime_id is required"})
		return
	}

	entry, err := h.collectionService.Add(c.Request.Context(), userID, req.AnimeID)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrAlreadyInCollection):
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
		case errors.Is(err, service.ErrAnimeNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to add to collection"})
		}
		return
	}

	c.JSON(http.StatusCreated, entry)
}

// Remove deletes a bookmark; removing an absent one still succeeds
// DELETE /api/collection/:anime_id
func (h *CollectionHandler) Remove(c *gin.Context) {
	userID := middleware.UserID(c)
	if userID == "" {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "user not authenticated"})
		return
	}

	animeID, err := strconv.ParseInt(c.Param("anime_id"), 10, 64)
	if err != nil || animeID <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	if err := h.collectionService.Remove(c.Request.Context(), userID, animeID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to remove from collection"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
