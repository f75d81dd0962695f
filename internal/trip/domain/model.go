// Package domain contains core types for the trip service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Status describes where a trip is in its lifecycle.
type Status int16

const (
	StatusPlanning     Status = 0
	StatusOrganization Status = 1
	StatusCompleted    Status = 2
)

func (s Status) Valid() bool {
	return s >= StatusPlanning && s <= StatusCompleted
}

// Role describes a participant's standing on a trip. The CanEdit flag is
// independent of the role.
type Role int16

const (
	RoleOwner     Role = 0
	RoleOrganizer Role = 1
	RoleMember    Role = 2
)

func (r Role) Valid() bool {
	return r >= RoleOwner && r <= RoleMember
}

// Trip is the aggregate root. OwnerID is the creating user and never changes.
type Trip struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	OwnerID         snowflake.ID `gorm:"column:owner_id;not null;index"`
	Title           string       `gorm:"type:text;not null"`
	Description     string       `gorm:"type:text;not null"`
	StartDate       time.Time    `gorm:"column:start_date;not null"`
	EndDate         time.Time    `gorm:"column:end_date;not null"`
	Status          Status       `gorm:"not null"`
	IsPublic        bool         `gorm:"column:is_public;not null;default:false"`
	ComparisonNotes string       `gorm:"column:comparison_notes;type:text;not null;default:''"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Trip) TableName() string { return "trips" }

// Participant is a user's membership on a trip.
type Participant struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	TripID   snowflake.ID `gorm:"column:trip_id;not null;uniqueIndex:uq_trip_participants_trip_user"`
	UserID   snowflake.ID `gorm:"column:user_id;not null;uniqueIndex:uq_trip_participants_trip_user"`
	Role     Role         `gorm:"not null"`
	CanEdit  bool         `gorm:"column:can_edit;not null;default:false"`
	JoinedAt time.Time    `gorm:"column:joined_at;not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Participant) TableName() string { return "trip_participants" }
