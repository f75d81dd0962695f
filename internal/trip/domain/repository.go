package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	// CreateWithOwner inserts the trip and its owner participant row in one
	// transaction.
	CreateWithOwner(ctx context.Context, trip *Trip, owner *Participant) error
	FindByID(ctx context.Context, id snowflake.ID) (*Trip, error)
	ListVisible(ctx context.Context, userID snowflake.ID) ([]*Trip, error)
	UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, id snowflake.ID) error

	Participants(ctx context.Context, tripID snowflake.ID) ([]*Participant, error)
	FindParticipant(ctx context.Context, tripID, userID snowflake.ID) (*Participant, error)
	FindParticipantByID(ctx context.Context, tripID, participantID snowflake.ID) (*Participant, error)
	AddParticipant(ctx context.Context, participant *Participant) error
	UpdateParticipantFields(ctx context.Context, participantID snowflake.ID, fields map[string]any) error
	RemoveParticipant(ctx context.Context, participantID snowflake.ID) error
}
