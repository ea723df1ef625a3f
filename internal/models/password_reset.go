package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PasswordReset is a single-use token emailed to users who forgot their
// password. Used stays false until the token is redeemed.
type PasswordReset struct {
	ID     string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID string `gorm:"type:uuid;index;not null" json:"userId"`
	Email  string `gorm:"index;not null" json:"email"`
	Token  string `gorm:"uniqueIndex;not null" json:"-"`

	Used      bool      `gorm:"default:false" json:"used"`
	ExpiresAt time.Time `gorm:"index" json:"expiresAt"`
	CreatedAt time.Time `json:"createdAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (p *PasswordReset) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	return nil
}
