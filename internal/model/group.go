package model

import "time"

// Group is a named topic posts may optionally belong to. Groups are
// created by an operator (seed scripts, fixtures), never over HTTP.
type Group struct {
	ID          uint64 `gorm:"primaryKey"`
	Title       string `gorm:"size:200;not null"`
	Slug        string `gorm:"uniqueIndex;size:64;not null"`
	Description string `gorm:"type:text"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
