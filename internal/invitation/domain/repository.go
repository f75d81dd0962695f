package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
)

type Repository interface {
	// Create inserts the invitation. A concurrent duplicate Pending row for
	// the same (trip, email) surfaces as ErrAlreadyInvited.
	Create(ctx context.Context, invitation *Invitation) error
	FindByID(ctx context.Context, id snowflake.ID) (*Invitation, error)
	ListByTrip(ctx context.Context, tripID snowflake.ID) ([]*Invitation, error)
	ListPendingByEmail(ctx context.Context, email string) ([]*Invitation, error)
	HasPending(ctx context.Context, tripID snowflake.ID, email string) (bool, error)

	// MarkResponded flips a Pending invitation to a terminal status. It
	// reports ErrNotPending when the row was responded to concurrently.
	MarkResponded(ctx context.Context, id snowflake.ID, status Status, respondedBy snowflake.ID, respondedAt time.Time) error

	// AcceptWithParticipant runs the accept transition in one transaction:
	// mark the invitation Accepted and insert the participant row. A
	// duplicate participant is tolerated as already-joined.
	AcceptWithParticipant(ctx context.Context, id snowflake.ID, respondedBy snowflake.ID, respondedAt time.Time, participant *tripdomain.Participant) error
}
