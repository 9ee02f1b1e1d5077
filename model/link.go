package model

import "time"

type Link struct {
	Slug        string `gorm:"primaryKey"`
	UserID      string `gorm:"index;not null"`
	Destination string `gorm:"not null"`
	Hits        int64  `gorm:"default:0"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
