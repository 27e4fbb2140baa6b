package types

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	Email         string    `gorm:"uniqueIndex;not null;column:email" json:"email"`
	Password      string    `gorm:"not null;column:password" json:"-"`
	DisplayName   string    `gorm:"column:display_name" json:"display_name"`
	WalletAddress string    `gorm:"column:wallet_address" json:"wallet_address,omitempty"`
	CreatedAt     time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt     time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "user" }
