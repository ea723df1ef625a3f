package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Report status values.
const (
	ReportStatusPending  = "pending"
	ReportStatusReviewed = "reviewed"
	ReportStatusResolved = "resolved"
	ReportStatusRejected = "rejected"
)

// Report is a user-submitted problem report, optionally tied to a movie.
type Report struct {
	ID      string  `gorm:"primaryKey;type:uuid" json:"id"`
	UserID  *string `gorm:"type:uuid;index" json:"userId,omitempty"`
	MovieID *string `gorm:"type:uuid;index" json:"movieId,omitempty"`

	Category    string `gorm:"index;not null" json:"category"`
	Description string `gorm:"not null" json:"description"`
	ContactInfo string `json:"contactInfo,omitempty"`

	Status     string     `gorm:"index;default:pending" json:"status"`
	AdminNotes string     `json:"adminNotes,omitempty"`
	ResolvedBy *string    `gorm:"type:uuid" json:"resolvedBy,omitempty"`
	ResolvedAt *time.Time `json:"resolvedAt,omitempty"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (r *Report) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.NewString()
	}
	return nil
}
