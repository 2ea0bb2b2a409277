package model

import "time"

// Comment belongs to exactly one post and is immutable once created.
type Comment struct {
	ID        uint64 `gorm:"primaryKey"`
	Text      string `gorm:"type:text;not null"`
	AuthorID  uint64 `gorm:"not null;index"`
	Author    User   `gorm:"foreignKey:AuthorID"`
	PostID    uint64 `gorm:"not null;index:idx_post_time"`
	CreatedAt time.Time `gorm:"index:idx_post_time"`
}
