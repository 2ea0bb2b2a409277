package model

import "time"

type Post struct {
	ID       uint64  `gorm:"primaryKey"`
	Text     string  `gorm:"type:text;not null"`
	AuthorID uint64  `gorm:"not null;index:idx_author_time"`
	Author   User    `gorm:"foreignKey:AuthorID"`
	GroupID  *uint64 `gorm:"index"`
	Group    *Group  `gorm:"foreignKey:GroupID"`
	Image    string  `gorm:"size:255"`
	// CreatedAt is the listing sort key. AuthorID is never reassigned
	// after creation.
	CreatedAt time.Time `gorm:"index:idx_author_time"`
	UpdatedAt time.Time
}
