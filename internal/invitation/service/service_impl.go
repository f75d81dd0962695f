package service

import (
	"context"
	"errors"
	"net/mail"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/internal/invitation/domain"
	"github.com/tripline/tripline/internal/observability/metrics"
	"github.com/tripline/tripline/internal/trip/access"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	"go.uber.org/zap"
)

const maxMessageLength = 500

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	tripRepo tripdomain.Repository
	userRepo authdomain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
	metrics  *metrics.Metrics
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	tripRepo tripdomain.Repository,
	userRepo authdomain.Repository,
	genID *snowflake.Node,
	clk clock.Clock,
	m *metrics.Metrics,
) domain.Service {
	return &Service{
		log:      log.Named("invitation.service"),
		repo:     repo,
		tripRepo: tripRepo,
		userRepo: userRepo,
		genID:    genID,
		clock:    clk,
		metrics:  m,
	}
}

func (s *Service) Create(ctx context.Context, userID, tripID snowflake.ID, req domain.CreateInvitationRequest) (*domain.Invitation, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageParticipants(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}

	email, err := normalizeEmail(req.Email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if !req.Role.Valid() {
		return nil, tripdomain.ErrInvalidRole
	}
	if len(req.Message) > maxMessageLength {
		return nil, domain.ErrInvalidMessage
	}

	// Friendly pre-checks; the partial unique index and the participant
	// constraint close the remaining races.
	if invitee, err := s.userRepo.FindByEmail(ctx, email); err == nil {
		if _, err := s.tripRepo.FindParticipant(ctx, tripID, invitee.ID); err == nil {
			return nil, domain.ErrAlreadyParticipant
		} else if !errors.Is(err, tripdomain.ErrParticipantNotFound) {
			return nil, err
		}
	} else if !errors.Is(err, authdomain.ErrUserNotFound) {
		return nil, err
	}

	pending, err := s.repo.HasPending(ctx, tripID, email)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, domain.ErrAlreadyInvited
	}

	invitation := &domain.Invitation{
		ID:           s.genID.Generate(),
		TripID:       tripID,
		InvitedEmail: email,
		InvitedBy:    userID,
		Role:         req.Role,
		CanEdit:      req.CanEdit,
		Status:       domain.StatusPending,
		Message:      strings.TrimSpace(req.Message),
		CreatedAt:    s.clock.Now(),
	}
	if err := s.repo.Create(ctx, invitation); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitationCreated(ctx)
	return invitation, nil
}

func (s *Service) ListForTrip(ctx context.Context, userID, tripID snowflake.ID) ([]*domain.Invitation, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageParticipants(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *Service) ListMine(ctx context.Context, email string) ([]*domain.Invitation, error) {
	normalized, err := normalizeEmail(email)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	return s.repo.ListPendingByEmail(ctx, normalized)
}

func (s *Service) Accept(ctx context.Context, userID snowflake.ID, userEmail string, invitationID snowflake.ID) (*domain.Invitation, error) {
	invitation, err := s.respondTarget(ctx, userEmail, invitationID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	// Role and can_edit are applied exactly as stored on the invitation.
	participant := &tripdomain.Participant{
		ID:       s.genID.Generate(),
		TripID:   invitation.TripID,
		UserID:   userID,
		Role:     invitation.Role,
		CanEdit:  invitation.CanEdit,
		JoinedAt: now,
	}
	if err := s.repo.AcceptWithParticipant(ctx, invitationID, userID, now, participant); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitationResponse(ctx, "accepted")
	return s.repo.FindByID(ctx, invitationID)
}

func (s *Service) Decline(ctx context.Context, userID snowflake.ID, userEmail string, invitationID snowflake.ID) (*domain.Invitation, error) {
	invitation, err := s.respondTarget(ctx, userEmail, invitationID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.MarkResponded(ctx, invitation.ID, domain.StatusDeclined, userID, s.clock.Now()); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitationResponse(ctx, "declined")
	return s.repo.FindByID(ctx, invitationID)
}

func (s *Service) Cancel(ctx context.Context, userID snowflake.ID, invitationID snowflake.ID) (*domain.Invitation, error) {
	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	trip, err := s.tripRepo.FindByID(ctx, invitation.TripID)
	if err != nil {
		return nil, err
	}
	if invitation.InvitedBy != userID && trip.OwnerID != userID {
		return nil, domain.ErrForbidden
	}
	if invitation.Status.Terminal() {
		return nil, domain.ErrNotPending
	}

	if err := s.repo.MarkResponded(ctx, invitation.ID, domain.StatusCancelled, userID, s.clock.Now()); err != nil {
		return nil, err
	}

	s.metrics.RecordInvitationResponse(ctx, "cancelled")
	return s.repo.FindByID(ctx, invitationID)
}

// respondTarget loads the invitation for accept/decline and enforces the
// exact-email rule and the Pending precondition.
func (s *Service) respondTarget(ctx context.Context, userEmail string, invitationID snowflake.ID) (*domain.Invitation, error) {
	invitation, err := s.repo.FindByID(ctx, invitationID)
	if err != nil {
		return nil, err
	}

	email, err := normalizeEmail(userEmail)
	if err != nil {
		return nil, domain.ErrInvalidEmail
	}
	if !strings.EqualFold(invitation.InvitedEmail, email) {
		return nil, domain.ErrEmailMismatch
	}
	if invitation.Status.Terminal() {
		return nil, domain.ErrNotPending
	}
	return invitation, nil
}

func (s *Service) loadTrip(ctx context.Context, tripID, userID snowflake.ID) (*tripdomain.Trip, *tripdomain.Participant, error) {
	trip, err := s.tripRepo.FindByID(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}

	participant, err := s.tripRepo.FindParticipant(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, tripdomain.ErrParticipantNotFound) {
			return trip, nil, nil
		}
		return nil, nil, err
	}
	return trip, participant, nil
}

func normalizeEmail(raw string) (string, error) {
	addr, err := mail.ParseAddress(strings.TrimSpace(raw))
	if err != nil {
		return "", err
	}
	return strings.ToLower(strings.TrimSpace(addr.Address)), nil
}
