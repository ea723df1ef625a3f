package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Movie status values.
const (
	MovieStatusActive   = "active"
	MovieStatusArchived = "archived"
)

// Movie is a catalogue entry with bilingual titles and descriptions.
type Movie struct {
	ID string `gorm:"primaryKey;type:uuid" json:"id"`

	TitleAr       string `gorm:"not null" json:"titleAr"`
	TitleEn       string `json:"titleEn"`
	DescriptionAr string `json:"descriptionAr"`
	DescriptionEn string `json:"descriptionEn"`

	VideoURL     string `gorm:"not null" json:"videoUrl"`
	PosterURL    string `json:"posterUrl"`
	ThumbnailURL string `json:"thumbnailUrl"`

	Duration int    `json:"duration"`
	Year     int    `json:"year"`
	Genre    string `gorm:"index" json:"genre"`
	Category string `gorm:"index" json:"category"`

	Trending bool  `gorm:"default:false" json:"trending"`
	Featured bool  `gorm:"default:false" json:"featured"`
	Views    int64 `gorm:"default:0" json:"views"`

	Status    string `gorm:"index;default:active" json:"status"`
	CreatedBy string `gorm:"type:uuid" json:"createdBy"`

	Ratings  []Rating  `gorm:"foreignKey:MovieID" json:"-"`
	Comments []Comment `gorm:"foreignKey:MovieID" json:"-"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (m *Movie) BeforeCreate(tx *gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}
