package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/models"
	"anihub/internal/httpapi/service"
)

// MockCollectionService mocks the CollectionService interface
type MockCollectionService struct {
	mock.Mock
}

func (m *MockCollectionService) Add(ctx context.Context, userID string, animeID int64) (*dto.CollectionEntryResponse, error) {
	args := m.Called(ctx, userID, animeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.CollectionEntryResponse), args.Error(1)
}

func (m *MockCollectionService) Remove(ctx context.Context, userID string, animeID int64) error {
	args := m.Called(ctx, userID, animeID)
	return args.Error(0)
}

func (m *MockCollectionService) List(ctx context.Context, userID string) ([]dto.CollectionEntryResponse, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]dto.CollectionEntryResponse), args.Error(1)
}

const testUserID = "3f6cfd15-11b1-4f4c-9a8f-6f1f8a4ab001"

// asUser injects the authenticated identity the way the auth middleware
// does after validating a token.
func asUser(userID string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if userID != "" {
			c.Set("userID", userID)
		}
		c.Next()
	}
}

func setupCollectionRouter(mockService *MockCollectionService, userID string) *gin.Engine {
	router := setupRouter()
	group := router.Group("/api/collection", asUser(userID))
	NewCollectionHandler(mockService).RegisterRoutes(group)
	return router
}

func TestCollectionList_HandlerSuccess(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	entries := []dto.CollectionEntryResponse{
		{ID: 1, AnimeID: 1, AddedAt: time.Now(), Anime: &models.Anime{ID: 1, Title: "Cowboy Bebop"}},
	}
	mockService.On("List", mock.Anything, testUserID).Return(entries, nil)

	w := getRequest(router, "/api/collection")

	assert.Equal(t, http.StatusOK, w.Code)

	var resp []dto.CollectionEntryResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	require.Len(t, resp, 1)
	assert.Equal(t, "Cowboy Bebop", resp[0].Anime.Title)
}

func TestCollectionList_Unauthenticated(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, "")

	w := getRequest(router, "/api/collection")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	mockService.AssertNotCalled(t, "List", mock.Anything, mock.Anything)
}

func TestCollectionAdd_HandlerSuccess(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	entry := &dto.CollectionEntryResponse{ID: 10, AnimeID: 1, Anime: &models.Anime{ID: 1, Title: "Cowboy Bebop"}}
	mockService.On("Add", mock.Anything, testUserID, int64(1)).Return(entry, nil)

	w := postJSON(router, "/api/collection", dto.AddCollectionRequest{AnimeID: 1})

	assert.Equal(t, http.StatusCreated, w.Code)

	var resp dto.CollectionEntryResponse
	json.Unmarshal(w.Body.Bytes(), &resp)
	assert.Equal(t, int64(1), resp.AnimeID)
	mockService.AssertExpectations(t)
}

func TestCollectionAdd_Conflict(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	mockService.On("Add", mock.Anything, testUserID, int64(1)).Return(nil, service.ErrAlreadyInCollection)

	w := postJSON(router, "/api/collection", dto.AddCollectionRequest{AnimeID: 1})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestCollectionAdd_AnimeNotFound(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	mockService.On("Add", mock.Anything, testUserID, int64(999999)).Return(nil, service.ErrAnimeNotFound)

	w := postJSON(router, "/api/collection", dto.AddCollectionRequest{AnimeID: 999999})

	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCollectionAdd_MissingAnimeID(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	w := postJSON(router, "/api/collection", map[string]interface{}{})

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Add", mock.Anything, mock.Anything, mock.Anything)
}

func TestCollectionRemove_HandlerSuccess(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	mockService.On("Remove", mock.Anything, testUserID, int64(42)).Return(nil)

	req, _ := http.NewRequest(http.MethodDelete, "/api/collection/42", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"success": true}`, w.Body.String())
}

func TestCollectionRemove_InvalidID(t *testing.T) {
	mockService := new(MockCollectionService)
	router := setupCollectionRouter(mockService, testUserID)

	req, _ := http.NewRequest(http.MethodDelete, "/api/collection/abc", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	mockService.AssertNotCalled(t, "Remove", mock.Anything, mock.Anything, mock.Anything)
}
