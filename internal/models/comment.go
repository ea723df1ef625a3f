package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Comment is a user remark on a movie, optionally replying to another
// comment via ParentID.
type Comment struct {
	ID       string  `gorm:"primaryKey;type:uuid" json:"id"`
	MovieID  string  `gorm:"type:uuid;index;not null" json:"movieId"`
	UserID   string  `gorm:"type:uuid;index;not null" json:"userId"`
	ParentID *string `gorm:"type:uuid;index" json:"parentId,omitempty"`

	UserName string `json:"userName"`
	Content  string `gorm:"not null" json:"content"`
	Likes    int    `gorm:"default:0" json:"likes"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (c *Comment) BeforeCreate(tx *gorm.DB) error {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	return nil
}
