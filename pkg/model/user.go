package model

import (
	"time"

	"github.com/google/uuid"
)

// DefaultRole is assigned to every newly registered account.
const DefaultRole = "consumer"

// User is an account able to obtain bearer tokens.
type User struct {
	ID             uuid.UUID `gorm:"column:id;type:uuid;primaryKey" json:"id"`
	Email          string    `gorm:"column:email" json:"email"`
	HashedPassword string    `gorm:"column:hashed_password" json:"-"`
	Active         bool      `gorm:"column:is_active" json:"is_active"`
	Role           string    `gorm:"column:role" json:"role"`
	CreatedAt      time.Time `gorm:"column:created_at" json:"created_at"`
}

func (User) TableName() string {
	return "users"
}
