package models

import "time"

// CollectionEntry is a user's bookmark of an anime. The (user_id, anime_id)
// pair is unique: at most one entry per user per anime, enforced by the
// database rather than application checks.
type CollectionEntry struct {
	ID      int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	UserID  string    `gorm:"type:uuid;not null;uniqueIndex:idx_collection_user_anime" json:"user_id"`
	AnimeID int64     `gorm:"not null;uniqueIndex:idx_collection_user_anime" json:"anime_id"`
	AddedAt time.Time `gorm:"autoCreateTime" json:"added_at"`

	// Associations
	User  *User  `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;" json:"user,omitempty"`
	Anime *Anime `gorm:"foreignKey:AnimeID" json:"anime,omitempty"`
}

func (CollectionEntry) TableName() string {
	return "collection_entries"
}
