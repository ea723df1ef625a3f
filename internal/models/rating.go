package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Rating is one user's star score for one movie. The composite unique
// index makes repeated submissions an upsert rather than a duplicate.
type Rating struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	MovieID string `gorm:"type:uuid;uniqueIndex:idx_movie_user_rating;not null" json:"movieId"`
	UserID  string `gorm:"type:uuid;uniqueIndex:idx_movie_user_rating;not null" json:"userId"`

	Score int `gorm:"not null" json:"score"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (r *Rating) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
