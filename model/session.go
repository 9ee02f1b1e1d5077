package model

import "time"

// Session is one authenticated device login. The row, not the tokens
// minted against it, is the authority on whether a login is still
// good. Valid only ever flips true -> false.
type Session struct {
	ID        string `gorm:"primaryKey"`
	UserID    string `gorm:"index;not null"`
	Valid     bool   `gorm:"default:true"`
	IP        string
	UserAgent string
	CreatedAt time.Time
	UpdatedAt time.Time
}
