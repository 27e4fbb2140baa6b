package types

import (
	"time"

	"github.com/google/uuid"
)

// DocumentCompletion marks one lesson document complete for one user.
// DocumentID is a weak reference into the content snapshot (a slug, not a
// foreign key): content lives outside the database.
type DocumentCompletion struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_user_document,unique" json:"user_id"`
	User        *User     `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	DocumentID  string    `gorm:"not null;index:idx_user_document,unique;column:document_id" json:"document_id"`
	CompletedAt time.Time `gorm:"not null;column:completed_at" json:"completed_at"`
	CreatedAt   time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time `gorm:"not null" json:"updated_at"`
}

func (DocumentCompletion) TableName() string { return "document_completion" }
