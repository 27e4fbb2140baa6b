package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ChallengeClaim records a user claiming a completed challenge. Reward is a
// snapshot of the challenge's reward metadata at claim time, so later
// content edits do not rewrite history.
type ChallengeClaim struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID      `gorm:"type:uuid;not null;index:idx_user_challenge,unique" json:"user_id"`
	User        *User          `gorm:"constraint:OnDelete:CASCADE;foreignKey:UserID;references:ID" json:"user,omitempty"`
	ChallengeID string         `gorm:"not null;index:idx_user_challenge,unique;column:challenge_id" json:"challenge_id"`
	Reward      datatypes.JSON `gorm:"column:reward" json:"reward,omitempty"`
	ClaimedAt   time.Time      `gorm:"not null;column:claimed_at" json:"claimed_at"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (ChallengeClaim) TableName() string { return "challenge_claim" }
