package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Base contains common columns for all tables
type Base struct {
	ID        string     `gorm:"type:uuid;primary_key" json:"id"`
	CreatedAt time.Time  `json:"createdAt"`
	UpdatedAt time.Time  `json:"updatedAt"`
	DeletedAt *time.Time `gorm:"index;default:NULL" json:"-" validate:"omitempty"`
	IsDeleted bool       `gorm:"default:false" json:"isDeleted"`
}

// BeforeCreate will set a UUID rather than numeric ID
func (base *Base) BeforeCreate(tx *gorm.DB) error {
	if base.ID == "" {
		base.ID = uuid.New().String()
	}
	return nil
}

// GetID lets generic services read the primary key without reflection.
func (base Base) GetID() string {
	return base.ID
}

// Publish status constants
type PublishStatus string

const (
	PublishStatusDraft     PublishStatus = "DRAFT"
	PublishStatusQueued    PublishStatus = "QUEUED"
	PublishStatusPublished PublishStatus = "PUBLISHED"
	PublishStatusFailed    PublishStatus = "FAILED"
)

// IsValidPublishStatus checks if a given status is valid
func IsValidPublishStatus(s PublishStatus) bool {
	switch s {
	case PublishStatusDraft, PublishStatusQueued, PublishStatusPublished, PublishStatusFailed:
		return true
	default:
		return false
	}
}
