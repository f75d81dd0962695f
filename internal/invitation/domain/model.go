// Package domain contains core types for the invitation workflow.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
)

// Status is the invitation lifecycle state. Pending is the only
// non-terminal state.
type Status int16

const (
	StatusPending   Status = 0
	StatusAccepted  Status = 1
	StatusDeclined  Status = 2
	StatusCancelled Status = 3
)

func (s Status) Terminal() bool {
	return s != StatusPending
}

// Invitation proposes trip membership to an e-mail address. Role and
// CanEdit are frozen at send time and applied verbatim on accept.
type Invitation struct {
	ID           snowflake.ID    `gorm:"primaryKey"`
	TripID       snowflake.ID    `gorm:"column:trip_id;not null;index"`
	InvitedEmail string          `gorm:"column:invited_email;type:text;not null"`
	InvitedBy    snowflake.ID    `gorm:"column:invited_by;not null"`
	RespondedBy  *snowflake.ID   `gorm:"column:responded_by"`
	Role         tripdomain.Role `gorm:"not null"`
	CanEdit      bool            `gorm:"column:can_edit;not null;default:false"`
	Status       Status          `gorm:"not null"`
	Message      string          `gorm:"type:text;not null;default:''"`
	CreatedAt    time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP"`
	RespondedAt  *time.Time      `gorm:"column:responded_at"`
}

// TableName sets the database table name.
func (Invitation) TableName() string { return "trip_invitations" }
