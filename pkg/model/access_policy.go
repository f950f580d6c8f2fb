package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AccessPolicy is a named rule document. Entries reference it by ID; the
// rules themselves are never evaluated by the registry.
type AccessPolicy struct {
	ID          uuid.UUID      `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Name        string         `gorm:"column:name" json:"name"`
	Description *string        `gorm:"column:description" json:"description"`
	Rules       datatypes.JSON `gorm:"column:rules" json:"rules"`
	CreatedBy   string         `gorm:"column:created_by" json:"created_by"`
	CreatedAt   time.Time      `gorm:"column:created_at" json:"created_at"`
}

func (AccessPolicy) TableName() string {
	return "access_policies"
}
