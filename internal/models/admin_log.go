package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AdminLog records a privileged action for the audit trail. Writes are
// best-effort and never block the action they describe.
type AdminLog struct {
	ID         string `gorm:"primaryKey;type:uuid" json:"id"`
	AdminID    string `gorm:"type:uuid;index" json:"adminId"`
	AdminEmail string `json:"adminEmail"`

	Action     string         `gorm:"index;not null" json:"action"`
	TargetType string         `json:"targetType"`
	TargetID   string         `json:"targetId"`
	Details    datatypes.JSON `json:"details,omitempty"`
	IPAddress  string         `json:"ipAddress"`

	CreatedAt time.Time `gorm:"index" json:"createdAt"`
}

// BeforeCreate ensures a UUID is present before persisting.
func (a *AdminLog) BeforeCreate(tx *gorm.DB) error {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	return nil
}
