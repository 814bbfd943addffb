package upstream

import "fmt"

// Error is returned for any non-2xx upstream response that was not resolved
// by the retry loop, and for transport failures.
type Error struct {
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("upstream request failed: %s", e.Body)
	}
	return fmt.Sprintf("upstream returned HTTP %d", e.StatusCode)
}

// Anime is a single entry as returned by the Jikan v4 API.
type Anime struct {
	MalID        int64    `json:"mal_id"`
	Title        string   `json:"title"`
	TitleEnglish *string  `json:"title_english,omitempty"`
	Synopsis     *string  `json:"synopsis,omitempty"`
	Images       *Images  `json:"images,omitempty"`
	Trailer      *Trailer `json:"trailer,omitempty"`
	Score        *float64 `json:"score,omitempty"`
	Episodes     *int     `json:"episodes,omitempty"`
	Status       *string  `json:"status,omitempty"`
	Rating       *string  `json:"rating,omitempty"`
	Year         *int     `json:"year,omitempty"`
	Season       *string  `json:"season,omitempty"`
	Genres       []Genre  `json:"genres,omitempty"`
}

type Images struct {
	JPG *ImageSet `json:"jpg,omitempty"`
}

type ImageSet struct {
	ImageURL      string `json:"image_url,omitempty"`
	LargeImageURL string `json:"large_image_url,omitempty"`
}

type Trailer struct {
	URL      string `json:"url,omitempty"`
	EmbedURL string `json:"embed_url,omitempty"`
}

type Genre struct {
	MalID int64  `json:"mal_id"`
	Name  string `json:"name"`
}

// Pagination is the list envelope shared by top, search and seasonal calls.
type Pagination struct {
	CurrentPage     int  `json:"current_page"`
	LastVisiblePage int  `json:"last_visible_page"`
	HasNextPage     bool `json:"has_next_page"`
}

// Page is a paginated list of anime.
type Page struct {
	Data       []Anime    `json:"data"`
	Pagination Pagination `json:"pagination"`
}

// ImageURL picks the best available cover image, preferring the large one.
func (a *Anime) ImageURL() *string {
	if a.Images == nil || a.Images.JPG == nil {
		return nil
	}
	if a.Images.JPG.LargeImageURL != "" {
		u := a.Images.JPG.LargeImageURL
		return &u
	}
	if a.Images.JPG.ImageURL != "" {
		u := a.Images.JPG.ImageURL
		return &u
	}
	return nil
}

// TrailerURL prefers the embeddable trailer URL over the plain one.
func (a *Anime) TrailerURL() *string {
	if a.Trailer == nil {
		return nil
	}
	if a.Trailer.EmbedURL != "" {
		u := a.Trailer.EmbedURL
		return &u
	}
	if a.Trailer.URL != "" {
		u := a.Trailer.URL
		return &u
	}
	return nil
}

type envelope struct {
	Data       Anime       `json:"data"`
	Pagination *Pagination `json:"pagination,omitempty"`
}

type recommendationEntry struct {
	Entry Anime `json:"entry"`
}

type recommendationsResponse struct {
	Data []recommendationEntry `json:"data"`
}
