// Package model contains the gorm models used throughout the application
package model

import "time"

type User struct {
	ID           string `gorm:"primaryKey"`
	Name         string `gorm:"not null"`
	Email        string `gorm:"unique;not null"`
	PasswordHash string `gorm:"not null"`
	Verified     bool   `gorm:"default:false"`
	CreatedAt    time.Time
	UpdatedAt    time.Time

	Sessions           []Session           `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Links              []Link              `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	VerificationTokens []VerificationToken `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
}
