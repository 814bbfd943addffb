package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"anihub/internal/httpapi/service"
	"anihub/internal/upstream"
)

type AnimeHandler struct {
	animeService service.AnimeService
}

func NewAnimeHandler(animeService service.AnimeService) *AnimeHandler {
	return &AnimeHandler{animeService: animeService}
}

// RegisterRoutes registers public anime routes
func (h *AnimeHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.GET("/search", h.Search)
	router.GET("/top", h.Top)
	router.GET("/seasonal", h.Seasonal)
	router.GET("/:id", h.Get)
	router.GET("/:id/recommendations", h.Recommendations)
}

// Get returns the cached anime detail, refreshing from upstream when the
// local copy is missing or stale.
// GET /api/anime/:id
func (h *AnimeHandler) Get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	anime, err := h.animeService.GetAnime(c.Request.Context(), id)
	if err != nil {
		respondAnimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, anime)
}

// Recommendations returns related titles; failures degrade to an empty list
// GET /api/anime/:id/recommendations
func (h *AnimeHandler) Recommendations(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid anime id"})
		return
	}

	items, _ := h.animeService.Recommendations(c.Request.Context(), id)
	c.JSON(http.StatusOK, gin.H{"results": items})
}

// Search checks the local store first, then the upstream API
// GET /api/anime/search?q=...&page=1
func (h *AnimeHandler) Search(c *gin.Context) {
	query := c.Query("q")
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	resp, err := h.animeService.Search(c.Request.Context(), query, page)
	if err != nil {
		respondAnimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Top is an upstream passthrough
// GET /api/anime/top?page=1
func (h *AnimeHandler) Top(c *gin.Context) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	if page < 1 {
		page = 1
	}

	resp, err := h.animeService.Top(c.Request.Context(), page)
	if err != nil {
		respondAnimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Seasonal lists a season's titles, defaulting to the current season
// GET /api/anime/seasonal?year=2026&season=winter
func (h *AnimeHandler) Seasonal(c *gin.Context) {
	year, _ := strconv.Atoi(c.DefaultQuery("year", "0"))
	season := c.Query("season")

	resp, err := h.animeService.Seasonal(c.Request.Context(), year, season)
	if err != nil {
		respondAnimeError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// respondAnimeError maps service errors onto HTTP statuses. Upstream
// failures surface as a generic 500; no upstream detail leaks to the
// client.
func respondAnimeError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrAnimeNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "anime not found"})
	case errors.Is(err, service.ErrEmptyQuery):
		c.JSON(http.StatusBadRequest, gin.H{"error": "search query is required"})
	default:
		var uerr *upstream.Error
		if errors.As(err, &uerr) {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to fetch anime data"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
	}
}
