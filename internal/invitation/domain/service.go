package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
)

type Service interface {
	Create(ctx context.Context, userID, tripID snowflake.ID, req CreateInvitationRequest) (*Invitation, error)
	ListForTrip(ctx context.Context, userID, tripID snowflake.ID) ([]*Invitation, error)
	ListMine(ctx context.Context, email string) ([]*Invitation, error)
	Accept(ctx context.Context, userID snowflake.ID, userEmail string, invitationID snowflake.ID) (*Invitation, error)
	Decline(ctx context.Context, userID snowflake.ID, userEmail string, invitationID snowflake.ID) (*Invitation, error)
	Cancel(ctx context.Context, userID snowflake.ID, invitationID snowflake.ID) (*Invitation, error)
}

type CreateInvitationRequest struct {
	Email   string
	Role    tripdomain.Role
	CanEdit bool
	Message string
}
