package dto

import (
	"anihub/internal/httpapi/models"
	"anihub/internal/upstream"
)

// Source values reported on search responses.
const (
	SourceCache = "cache"
	SourceAPI   = "api"
)

// SearchItem is the compact listing shape shared by search, top and
// seasonal responses.
type SearchItem struct {
	ID           int64    `json:"id"`
	Title        string   `json:"title"`
	TitleEnglish *string  `json:"title_english,omitempty"`
	ImageURL     *string  `json:"image_url,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Year         *int     `json:"year,omitempty"`
	Episodes     *int     `json:"episodes,omitempty"`
}

type SearchResponse struct {
	Results    []SearchItem         `json:"results"`
	Pagination *upstream.Pagination `json:"pagination,omitempty"`
	Source     string               `json:"source"`
}

type ListResponse struct {
	Results    []SearchItem        `json:"results"`
	Pagination upstream.Pagination `json:"pagination"`
}

func FromModelToSearchItem(a *models.Anime) SearchItem {
	return SearchItem{
		ID:           a.ID,
		Title:        a.Title,
		TitleEnglish: a.TitleEnglish,
		ImageURL:     a.ImageURL,
		Score:        a.Score,
		Year:         a.Year,
		Episodes:     a.Episodes,
	}
}

func FromUpstreamToSearchItem(a *upstream.Anime) SearchItem {
	return SearchItem{
		ID:           a.MalID,
		Title:        a.Title,
		TitleEnglish: a.TitleEnglish,
		ImageURL:     a.ImageURL(),
		Score:        a.Score,
		Year:         a.Year,
		Episodes:     a.Episodes,
	}
}

func FromUpstreamToListResponse(page *upstream.Page) *ListResponse {
	items := make([]SearchItem, 0, len(page.Data))
	for i := range page.Data {
		items = append(items, FromUpstreamToSearchItem(&page.Data[i]))
	}
	return &ListResponse{Results: items, Pagination: page.Pagination}
}
