package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	ListVisible(ctx context.Context, userID snowflake.ID) ([]*Trip, error)
	Get(ctx context.Context, userID, tripID snowflake.ID) (*Trip, error)
	Create(ctx context.Context, userID snowflake.ID, req CreateTripRequest) (*Trip, error)
	Update(ctx context.Context, userID, tripID snowflake.ID, req UpdateTripRequest) (*Trip, error)
	Delete(ctx context.Context, userID, tripID snowflake.ID) error

	ListParticipants(ctx context.Context, userID, tripID snowflake.ID) ([]*Participant, error)
	AddParticipant(ctx context.Context, userID, tripID snowflake.ID, req AddParticipantRequest) (*Participant, error)
	UpdateParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID, req UpdateParticipantRequest) (*Participant, error)
	RemoveParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID) error

	// Compare recomputes the planned-vs-actual report from the trip's
	// waypoints and stores it on the trip.
	Compare(ctx context.Context, userID, tripID snowflake.ID) (string, error)
}

type CreateTripRequest struct {
	Title       string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	IsPublic    bool
}

type UpdateTripRequest struct {
	Title       *string
	Description *string
	StartDate   *time.Time
	EndDate     *time.Time
	Status      *Status
	IsPublic    *bool
}

type AddParticipantRequest struct {
	Email   string
	Role    Role
	CanEdit bool
}

type UpdateParticipantRequest struct {
	Role    *Role
	CanEdit *bool
}
