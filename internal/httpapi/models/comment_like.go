package models

import "time"

// CommentLike toggles between absent and present per (user_id, comment_id);
// the unique index is the authority against double-submit races.
type CommentLike struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	UserID    string    `json:"user_id" gorm:"type:uuid;not null;uniqueIndex:idx_like_user_comment"`
	CommentID int64     `json:"comment_id" gorm:"not null;uniqueIndex:idx_like_user_comment"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`

	User User `json:"user,omitempty" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE;"`
}

func (CommentLike) TableName() string {
	return "comment_likes"
}
