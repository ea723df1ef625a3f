package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// WatchlistItem marks a movie a user saved for later. One row per
// user and movie pair.
type WatchlistItem struct {
	ID      string `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  string `gorm:"type:uuid;uniqueIndex:idx_user_movie_watchlist;not null" json:"userId"`
	MovieID string `gorm:"type:uuid;uniqueIndex:idx_user_movie_watchlist;not null" json:"movieId"`

	CreatedAt time.Time `json:"addedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (w *WatchlistItem) BeforeCreate(tx *gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}
