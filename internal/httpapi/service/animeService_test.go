package service

import (
	"context"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/models"
	"anihub/internal/upstream"
)

// MockAnimeRepository mocks the AnimeRepository interface
type MockAnimeRepository struct {
	mock.Mock
}

func (m *MockAnimeRepository) GetByID(ctx context.Context, id int64) (*models.Anime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Anime), args.Error(1)
}

func (m *MockAnimeRepository) Upsert(ctx context.Context, anime *models.Anime) error {
	args := m.Called(ctx, anime)
	return args.Error(0)
}

func (m *MockAnimeRepository) SearchByTitle(ctx context.Context, query string, limit int) ([]models.Anime, error) {
	args := m.Called(ctx, query, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Anime), args.Error(1)
}

// MockFetcher mocks the Fetcher interface
type MockFetcher struct {
	mock.Mock
}

func (m *MockFetcher) GetAnimeByID(ctx context.Context, id int64) (*upstream.Anime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Anime), args.Error(1)
}

func (m *MockFetcher) GetTopAnime(ctx context.Context, page int) (*upstream.Page, error) {
	args := m.Called(ctx, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Page), args.Error(1)
}

func (m *MockFetcher) SearchAnime(ctx context.Context, query string, page int) (*upstream.Page, error) {
	args := m.Called(ctx, query, page)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Page), args.Error(1)
}

func (m *MockFetcher) GetRecommendations(ctx context.Context, id int64) ([]upstream.Anime, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]upstream.Anime), args.Error(1)
}

func (m *MockFetcher) GetSeasonalAnime(ctx context.Context, year int, season string) (*upstream.Page, error) {
	args := m.Called(ctx, year, season)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*upstream.Page), args.Error(1)
}

const testFreshness = 7 * 24 * time.Hour

func newTestAnimeService(repo *MockAnimeRepository, fetcher *MockFetcher, at time.Time) *animeService {
	svc := NewAnimeService(repo, fetcher, nil, testFreshness, time.Hour, nil).(*animeService)
	svc.now = func() time.Time { return at }
	return svc
}

func TestGetAnime_FreshRecordSkipsUpstream(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, now)

	cached := &models.Anime{
		ID:          1,
		Title:       "Cowboy Bebop",
		LastFetched: now.Add(-6 * 24 * time.Hour),
	}
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(cached, nil)

	got, err := svc.GetAnime(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, cached, got)
	mockFetcher.AssertNotCalled(t, "GetAnimeByID", mock.Anything, mock.Anything)
	mockRepo.AssertExpectations(t)
}

func TestGetAnime_StaleRecordRefreshesAndUpserts(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, now)

	stale := &models.Anime{
		ID:          1,
		Title:       "Cowboy Bebop",
		LastFetched: now.Add(-8 * 24 * time.Hour),
	}
	score := 8.8
	episodes := 26
	fetched := &upstream.Anime{
		MalID:    1,
		Title:    "Cowboy Bebop",
		Score:    &score,
		Episodes: &episodes,
		Genres:   []upstream.Genre{{MalID: 1, Name: "Action"}},
	}

	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(stale, nil)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(1)).Return(fetched, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Anime")).Return(nil)

	got, err := svc.GetAnime(context.Background(), 1)

	require.NoError(t, err)
	assert.Equal(t, int64(1), got.ID)
	assert.Equal(t, "Cowboy Bebop", got.Title)
	require.NotNil(t, got.Score)
	assert.Equal(t, 8.8, *got.Score)
	assert.Equal(t, now, got.LastFetched)
	assert.JSONEq(t, `[{"mal_id": 1, "name": "Action"}]`, got.Genres)
	mockRepo.AssertExpectations(t)
	mockFetcher.AssertExpectations(t)
}

func TestGetAnime_RecordExactlyAtWindowIsStale(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, now)

	boundary := &models.Anime{ID: 1, Title: "Cowboy Bebop", LastFetched: now.Add(-testFreshness)}
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(boundary, nil)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(1)).Return(&upstream.Anime{MalID: 1, Title: "Cowboy Bebop"}, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Anime")).Return(nil)

	_, err := svc.GetAnime(context.Background(), 1)

	require.NoError(t, err)
	mockFetcher.AssertExpectations(t)
}

func TestGetAnime_MissingRecordFetchesAndUpserts(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, now)

	mockRepo.On("GetByID", mock.Anything, int64(20)).Return(nil, gorm.ErrRecordNotFound)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(20)).Return(&upstream.Anime{MalID: 20, Title: "Naruto"}, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Anime")).Return(nil)

	got, err := svc.GetAnime(context.Background(), 20)

	require.NoError(t, err)
	assert.Equal(t, "Naruto", got.Title)
	mockRepo.AssertExpectations(t)
	mockFetcher.AssertExpectations(t)
}

func TestGetAnime_UpstreamNotFound(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	mockRepo.On("GetByID", mock.Anything, int64(999999)).Return(nil, gorm.ErrRecordNotFound)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(999999)).
		Return(nil, &upstream.Error{StatusCode: http.StatusNotFound})

	got, err := svc.GetAnime(context.Background(), 999999)

	assert.Nil(t, got)
	assert.Equal(t, ErrAnimeNotFound, err)
}

func TestGetAnime_StaleCopyNotServedOnRefreshFailure(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	now := time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, now)

	stale := &models.Anime{ID: 1, Title: "Cowboy Bebop", LastFetched: now.Add(-30 * 24 * time.Hour)}
	upstreamErr := &upstream.Error{StatusCode: http.StatusInternalServerError}
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(stale, nil)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(1)).Return(nil, upstreamErr)

	got, err := svc.GetAnime(context.Background(), 1)

	assert.Nil(t, got)
	assert.Equal(t, upstreamErr, err)
	mockRepo.AssertNotCalled(t, "Upsert", mock.Anything, mock.Anything)
}

func TestGetAnime_InvalidID(t *testing.T) {
	svc := newTestAnimeService(new(MockAnimeRepository), new(MockFetcher), time.Now())

	got, err := svc.GetAnime(context.Background(), 0)

	assert.Nil(t, got)
	assert.Equal(t, ErrAnimeNotFound, err)
}

func TestGetAnime_UpsertFailure(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	dbErr := errors.New("connection reset")
	mockRepo.On("GetByID", mock.Anything, int64(1)).Return(nil, gorm.ErrRecordNotFound)
	mockFetcher.On("GetAnimeByID", mock.Anything, int64(1)).Return(&upstream.Anime{MalID: 1, Title: "Cowboy Bebop"}, nil)
	mockRepo.On("Upsert", mock.Anything, mock.AnythingOfType("*models.Anime")).Return(dbErr)

	got, err := svc.GetAnime(context.Background(), 1)

	assert.Nil(t, got)
	assert.Equal(t, dbErr, err)
}

func TestSearch_LocalHitSkipsUpstream(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	local := []models.Anime{{ID: 1, Title: "Cowboy Bebop"}}
	mockRepo.On("SearchByTitle", mock.Anything, "bebop", 20).Return(local, nil)

	resp, err := svc.Search(context.Background(), "  bebop  ", 1)

	require.NoError(t, err)
	assert.Equal(t, dto.SourceCache, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(1), resp.Results[0].ID)
	assert.Nil(t, resp.Pagination)
	mockFetcher.AssertNotCalled(t, "SearchAnime", mock.Anything, mock.Anything, mock.Anything)
}

func TestSearch_LocalMissFallsThroughToUpstream(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	mockRepo.On("SearchByTitle", mock.Anything, "frieren", 20).Return([]models.Anime{}, nil)
	mockFetcher.On("SearchAnime", mock.Anything, "frieren", 2).Return(&upstream.Page{
		Data:       []upstream.Anime{{MalID: 52991, Title: "Sousou no Frieren"}},
		Pagination: upstream.Pagination{CurrentPage: 2, LastVisiblePage: 3, HasNextPage: true},
	}, nil)

	resp, err := svc.Search(context.Background(), "frieren", 2)

	require.NoError(t, err)
	assert.Equal(t, dto.SourceAPI, resp.Source)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(52991), resp.Results[0].ID)
	require.NotNil(t, resp.Pagination)
	assert.True(t, resp.Pagination.HasNextPage)
	mockRepo.AssertExpectations(t)
	mockFetcher.AssertExpectations(t)
}

func TestSearch_EmptyQuery(t *testing.T) {
	svc := newTestAnimeService(new(MockAnimeRepository), new(MockFetcher), time.Now())

	resp, err := svc.Search(context.Background(), "   ", 1)

	assert.Nil(t, resp)
	assert.Equal(t, ErrEmptyQuery, err)
}

func TestTop_PassthroughWithoutRedis(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	mockFetcher.On("GetTopAnime", mock.Anything, 1).Return(&upstream.Page{
		Data:       []upstream.Anime{{MalID: 5114, Title: "Fullmetal Alchemist: Brotherhood"}},
		Pagination: upstream.Pagination{CurrentPage: 1, HasNextPage: true},
	}, nil)

	resp, err := svc.Top(context.Background(), 0)

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	assert.Equal(t, int64(5114), resp.Results[0].ID)
	mockFetcher.AssertExpectations(t)
}

func TestSeasonal_DefaultsToCurrentSeason(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	at := time.Date(2024, time.November, 1, 0, 0, 0, 0, time.UTC)
	svc := newTestAnimeService(mockRepo, mockFetcher, at)

	mockFetcher.On("GetSeasonalAnime", mock.Anything, 2024, "fall").Return(&upstream.Page{
		Data: []upstream.Anime{{MalID: 56784, Title: "Dandadan"}},
	}, nil)

	resp, err := svc.Seasonal(context.Background(), 0, "")

	require.NoError(t, err)
	require.Len(t, resp.Results, 1)
	mockFetcher.AssertExpectations(t)
}

func TestRecommendations_MapsEntries(t *testing.T) {
	mockRepo := new(MockAnimeRepository)
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(mockRepo, mockFetcher, time.Now())

	mockFetcher.On("GetRecommendations", mock.Anything, int64(1)).Return([]upstream.Anime{
		{MalID: 205, Title: "Samurai Champloo"},
		{MalID: 889, Title: "Black Lagoon"},
	}, nil)

	items, err := svc.Recommendations(context.Background(), 1)

	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "Samurai Champloo", items[0].Title)
}

func TestRecommendations_SwallowsErrors(t *testing.T) {
	mockFetcher := new(MockFetcher)
	svc := newTestAnimeService(new(MockAnimeRepository), mockFetcher, time.Now())

	mockFetcher.On("GetRecommendations", mock.Anything, int64(1)).
		Return(nil, errors.New("upstream down"))

	items, err := svc.Recommendations(context.Background(), 1)

	assert.NoError(t, err)
	assert.Empty(t, items)
}
