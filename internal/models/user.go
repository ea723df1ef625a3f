package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// User is a viewer account. Password always holds a bcrypt hash.
type User struct {
	ID       string `gorm:"primaryKey;type:uuid" json:"id"`
	Email    string `gorm:"uniqueIndex;not null" json:"email"`
	Password string `gorm:"not null" json:"-"`

	DisplayName string `json:"displayName"`
	AvatarURL   string `json:"avatarUrl"`

	IsVerified          bool       `gorm:"default:false" json:"isVerified"`
	VerificationCode    *string    `json:"-"`
	VerificationExpires *time.Time `json:"-"`

	IsAdmin   bool   `gorm:"default:false" json:"isAdmin"`
	Banned    bool   `gorm:"default:false" json:"banned"`
	BanReason string `json:"banReason,omitempty"`

	Sessions []Session `gorm:"foreignKey:UserID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.NewString()
	}
	return nil
}
