package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"anihub/internal/httpapi/dto"
	"anihub/internal/httpapi/models"
	"anihub/internal/httpapi/repository"
	"anihub/internal/upstream"
)

var (
	ErrAnimeNotFound = errors.New("anime not found")
	ErrEmptyQuery    = errors.New("search query is required")
)

// Fetcher is the slice of the upstream client the anime service depends on.
type Fetcher interface {
	GetAnimeByID(ctx context.Context, id int64) (*upstream.Anime, error)
	GetTopAnime(ctx context.Context, page int) (*upstream.Page, error)
	SearchAnime(ctx context.Context, query string, page int) (*upstream.Page, error)
	GetRecommendations(ctx context.Context, id int64) ([]upstream.Anime, error)
	GetSeasonalAnime(ctx context.Context, year int, season string) (*upstream.Page, error)
}

type AnimeService interface {
	// GetAnime is the freshness-gated cache read: serve the local row when
	// it is younger than the freshness window, refresh from upstream
	// otherwise.
	GetAnime(ctx context.Context, id int64) (*models.Anime, error)
	Search(ctx context.Context, query string, page int) (*dto.SearchResponse, error)
	Top(ctx context.Context, page int) (*dto.ListResponse, error)
	Seasonal(ctx context.Context, year int, season string) (*dto.ListResponse, error)
	Recommendations(ctx context.Context, id int64) ([]dto.SearchItem, error)
}

type animeService struct {
	repo      repository.AnimeRepository
	client    Fetcher
	redis     *redis.Client // optional, nil disables the list cache
	freshness time.Duration
	listTTL   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewAnimeService(
	repo repository.AnimeRepository,
	client Fetcher,
	rdb *redis.Client,
	freshness, listTTL time.Duration,
	logger *slog.Logger,
) AnimeService {
	if logger == nil {
		logger = slog.Default()
	}
	return &animeService{
		repo:      repo,
		client:    client,
		redis:     rdb,
		freshness: freshness,
		listTTL:   listTTL,
		logger:    logger,
		now:       time.Now,
	}
}

// GetAnime returns the cached record when it is fresh, otherwise refreshes
// from upstream and upserts. A refresh failure is fatal for the request
// even when a stale copy exists: stale data is never served.
func (s *animeService) GetAnime(ctx context.Context, id int64) (*models.Anime, error) {
	if id <= 0 {
		return nil, ErrAnimeNotFound
	}

	cached, err := s.repo.GetByID(ctx, id)
	if err == nil && s.now().Sub(cached.LastFetched) < s.freshness {
		return cached, nil
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	fetched, err := s.client.GetAnimeByID(ctx, id)
	if err != nil {
		var uerr *upstream.Error
		if errors.As(err, &uerr) && uerr.StatusCode == http.StatusNotFound {
			return nil, ErrAnimeNotFound
		}
		return nil, err
	}

	record := fromUpstreamAnime(fetched, s.now())
	if err := s.repo.Upsert(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Search tries the local store first and falls through to the upstream
// search only when nothing cached matches.
func (s *animeService) Search(ctx context.Context, query string, page int) (*dto.SearchResponse, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrEmptyQuery
	}

	local, err := s.repo.SearchByTitle(ctx, query, 20)
	if err != nil {
		return nil, err
	}
	if len(local) > 0 {
		items := make([]dto.SearchItem, 0, len(local))
		for i := range local {
			items = append(items, dto.FromModelToSearchItem(&local[i]))
		}
		return &dto.SearchResponse{Results: items, Source: dto.SourceCache}, nil
	}

	upstreamPage, err := s.client.SearchAnime(ctx, query, page)
	if err != nil {
		return nil, err
	}
	items := make([]dto.SearchItem, 0, len(upstreamPage.Data))
	for i := range upstreamPage.Data {
		items = append(items, dto.FromUpstreamToSearchItem(&upstreamPage.Data[i]))
	}
	return &dto.SearchResponse{
		Results:    items,
		Pagination: &upstreamPage.Pagination,
		Source:     dto.SourceAPI,
	}, nil
}

// Top is an upstream passthrough behind a short-TTL Redis cache.
func (s *animeService) Top(ctx context.Context, page int) (*dto.ListResponse, error) {
	if page < 1 {
		page = 1
	}
	key := fmt.Sprintf("anihub:top:%d", page)

	if resp := s.cacheGetList(ctx, key); resp != nil {
		return resp, nil
	}

	upstreamPage, err := s.client.GetTopAnime(ctx, page)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUpstreamToListResponse(upstreamPage)
	s.cacheSetList(ctx, key, resp)
	return resp, nil
}

// Seasonal is an upstream passthrough behind the same Redis cache.
func (s *animeService) Seasonal(ctx context.Context, year int, season string) (*dto.ListResponse, error) {
	if year <= 0 {
		year = s.now().Year()
	}
	if season == "" {
		season = upstream.CurrentSeason(s.now())
	}
	key := fmt.Sprintf("anihub:seasonal:%d:%s", year, season)

	if resp := s.cacheGetList(ctx, key); resp != nil {
		return resp, nil
	}

	upstreamPage, err := s.client.GetSeasonalAnime(ctx, year, season)
	if err != nil {
		return nil, err
	}
	resp := dto.FromUpstreamToListResponse(upstreamPage)
	s.cacheSetList(ctx, key, resp)
	return resp, nil
}

// Recommendations never fails: the upstream client already degrades to an
// empty list, and callers render nothing for an empty result.
func (s *animeService) Recommendations(ctx context.Context, id int64) ([]dto.SearchItem, error) {
	entries, err := s.client.GetRecommendations(ctx, id)
	if err != nil {
		return []dto.SearchItem{}, nil
	}
	items := make([]dto.SearchItem, 0, len(entries))
	for i := range entries {
		items = append(items, dto.FromUpstreamToSearchItem(&entries[i]))
	}
	return items, nil
}

func (s *animeService) cacheGetList(ctx context.Context, key string) *dto.ListResponse {
	if s.redis == nil {
		return nil
	}
	raw, err := s.redis.Get(ctx, key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			s.logger.Warn("redis get failed", "key", key, "error", err)
		}
		return nil
	}
	var resp dto.ListResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		s.logger.Warn("redis cache entry corrupt", "key", key, "error", err)
		return nil
	}
	return &resp
}

func (s *animeService) cacheSetList(ctx context.Context, key string, resp *dto.ListResponse) {
	if s.redis == nil {
		return
	}
	raw, err := json.Marshal(resp)
	if err != nil {
		return
	}
	if err := s.redis.Set(ctx, key, raw, s.listTTL).Err(); err != nil {
		s.logger.Warn("redis set failed", "key", key, "error", err)
	}
}

// fromUpstreamAnime maps the upstream payload onto the local cache row,
// stamping last_fetched with the refresh time.
func fromUpstreamAnime(a *upstream.Anime, now time.Time) *models.Anime {
	genres := a.Genres
	if genres == nil {
		genres = []upstream.Genre{}
	}
	genresJSON, _ := json.Marshal(genres)

	return &models.Anime{
		ID:           a.MalID,
		Title:        a.Title,
		TitleEnglish: a.TitleEnglish,
		Synopsis:     a.Synopsis,
		ImageURL:     a.ImageURL(),
		TrailerURL:   a.TrailerURL(),
		Score:        a.Score,
		Episodes:     a.Episodes,
		Year:         a.Year,
		Status:       a.Status,
		Rating:       a.Rating,
		Season:       a.Season,
		Genres:       string(genresJSON),
		LastFetched:  now,
	}
}
