package models

import "time"

// Anime is the locally cached projection of upstream metadata. The ID is the
// upstream MAL id and is used directly as the primary key, so identity is
// stable across refreshes. Rows are never deleted; staleness only triggers
// an overwrite.
type Anime struct {
	ID           int64      `json:"id" gorm:"primaryKey;autoIncrement:false"`
	Title        string     `json:"title" gorm:"not null"`
	TitleEnglish *string    `json:"title_english,omitempty"`
	Synopsis     *string    `json:"synopsis,omitempty" gorm:"type:text"`
	ImageURL     *string    `json:"image_url,omitempty"`
	TrailerURL   *string    `json:"trailer_url,omitempty"`
	Score        *float64   `json:"score,omitempty" gorm:"type:decimal(4,2)"`
	Episodes     *int       `json:"episodes,omitempty"`
	Year         *int       `json:"year,omitempty"`
	Status       *string    `json:"status,omitempty"`
	Rating       *string    `json:"rating,omitempty"`
	Season       *string    `json:"season,omitempty"`
	Genres       string     `json:"genres" gorm:"type:text;default:'[]'"`
	LastFetched  time.Time  `json:"last_fetched" gorm:"not null;index"`
	CreatedAt    *time.Time `json:"created_at,omitempty" gorm:"autoCreateTime"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty" gorm:"autoUpdateTime"`
}

func (Anime) TableName() string {
	return "anime"
}
