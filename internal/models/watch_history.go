package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchHistory tracks playback progress so viewers can resume where
// they stopped. One row per user and movie pair, updated in place.
type WatchHistory struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;uniqueIndex:idx_user_movie_history;not null" json:"userId"`
	MovieID string `gorm:"type:uuid;uniqueIndex:idx_user_movie_history;not null" json:"movieId"`

	ProgressSeconds int       `gorm:"default:0" json:"progressSeconds"`
	Completed       bool      `gorm:"default:false" json:"completed"`
	LastWatched     time.Time `gorm:"index" json:"lastWatched"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (w *WatchHistory) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
