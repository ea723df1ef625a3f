package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Session is an opaque bearer token handed out at login. Email is
// denormalised so admin views can list sessions without a join.
type Session struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	Token  string `gorm:"uniqueIndex;not null" json:"-"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	Email  string `gorm:"not null" json:"email"`

	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (s *Session) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	return nil
}

// Expired reports whether the session lapsed before now.
func (s *Session) Expired(now time.Time) bool {
	return now.After(s.ExpiresAt)
}
