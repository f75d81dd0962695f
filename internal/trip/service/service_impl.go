package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/internal/observability/metrics"
	"github.com/tripline/tripline/internal/trip/access"
	"github.com/tripline/tripline/internal/trip/domain"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
	"go.uber.org/zap"
)

const (
	maxTitleLength       = 200
	maxDescriptionLength = 2000
)

type Service struct {
	log          *zap.Logger
	repo         domain.Repository
	waypointRepo waypointdomain.Repository
	userRepo     authdomain.Repository
	genID        *snowflake.Node
	clock        clock.Clock
	metrics      *metrics.Metrics
}

func NewService(
	log *zap.Logger,
	repo domain.Repository,
	waypointRepo waypointdomain.Repository,
	userRepo authdomain.Repository,
	genID *snowflake.Node,
	clk clock.Clock,
	m *metrics.Metrics,
) domain.Service {
	return &Service{
		log:          log.Named("trip.service"),
		repo:         repo,
		waypointRepo: waypointRepo,
		userRepo:     userRepo,
		genID:        genID,
		clock:        clk,
		metrics:      m,
	}
}

func (s *Service) ListVisible(ctx context.Context, userID snowflake.ID) ([]*domain.Trip, error) {
	return s.repo.ListVisible(ctx, userID)
}

func (s *Service) Get(ctx context.Context, userID, tripID snowflake.ID) (*domain.Trip, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	return trip, nil
}

func (s *Service) Create(ctx context.Context, userID snowflake.ID, req domain.CreateTripRequest) (*domain.Trip, error) {
	title := strings.TrimSpace(req.Title)
	if title == "" || len(title) > maxTitleLength {
		return nil, domain.ErrInvalidTitle
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, domain.ErrInvalidDescription
	}
	if req.StartDate.IsZero() || req.EndDate.IsZero() || req.EndDate.Before(req.StartDate) {
		return nil, domain.ErrInvalidDates
	}

	now := s.clock.Now()
	trip := &domain.Trip{
		ID:          s.genID.Generate(),
		OwnerID:     userID,
		Title:       title,
		Description: strings.TrimSpace(req.Description),
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		Status:      domain.StatusPlanning,
		IsPublic:    req.IsPublic,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	// The owner joins their own roster so participant listings are complete.
	owner := &domain.Participant{
		ID:       s.genID.Generate(),
		TripID:   trip.ID,
		UserID:   userID,
		Role:     domain.RoleOwner,
		CanEdit:  true,
		JoinedAt: now,
	}

	if err := s.repo.CreateWithOwner(ctx, trip, owner); err != nil {
		return nil, err
	}

	s.metrics.RecordTripCreated(ctx)
	return trip, nil
}

func (s *Service) Update(ctx context.Context, userID, tripID snowflake.ID, req domain.UpdateTripRequest) (*domain.Trip, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}

	fields := map[string]any{}
	if req.Title != nil {
		title := strings.TrimSpace(*req.Title)
		if title == "" || len(title) > maxTitleLength {
			return nil, domain.ErrInvalidTitle
		}
		fields["title"] = title
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			return nil, domain.ErrInvalidDescription
		}
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.StartDate != nil {
		fields["start_date"] = *req.StartDate
	}
	if req.EndDate != nil {
		fields["end_date"] = *req.EndDate
	}
	if req.Status != nil {
		if !req.Status.Valid() {
			return nil, domain.ErrInvalidStatus
		}
		fields["status"] = *req.Status
	}
	if req.IsPublic != nil {
		fields["is_public"] = *req.IsPublic
	}

	start := trip.StartDate
	end := trip.EndDate
	if req.StartDate != nil {
		start = *req.StartDate
	}
	if req.EndDate != nil {
		end = *req.EndDate
	}
	if end.Before(start) {
		return nil, domain.ErrInvalidDates
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.UpdateFields(ctx, tripID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, tripID)
}

func (s *Service) Delete(ctx context.Context, userID, tripID snowflake.ID) error {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return err
	}
	if !access.CanDelete(trip, userID) {
		return domain.ErrForbidden
	}
	return s.repo.Delete(ctx, tripID)
}

func (s *Service) ListParticipants(ctx context.Context, userID, tripID snowflake.ID) ([]*domain.Participant, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	return s.repo.Participants(ctx, tripID)
}

func (s *Service) AddParticipant(ctx context.Context, userID, tripID snowflake.ID, req domain.AddParticipantRequest) (*domain.Participant, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageParticipants(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	if !req.Role.Valid() {
		return nil, domain.ErrInvalidRole
	}

	user, err := s.userRepo.FindByEmail(ctx, strings.TrimSpace(req.Email))
	if err != nil {
		if errors.Is(err, authdomain.ErrUserNotFound) {
			return nil, authdomain.ErrUserNotFound
		}
		return nil, err
	}

	added := &domain.Participant{
		ID:       s.genID.Generate(),
		TripID:   tripID,
		UserID:   user.ID,
		Role:     req.Role,
		CanEdit:  req.CanEdit,
		JoinedAt: s.clock.Now(),
	}
	if err := s.repo.AddParticipant(ctx, added); err != nil {
		return nil, err
	}
	return added, nil
}

func (s *Service) UpdateParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID, req domain.UpdateParticipantRequest) (*domain.Participant, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanManageParticipants(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}

	if _, err := s.repo.FindParticipantByID(ctx, tripID, participantID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Role != nil {
		if !req.Role.Valid() {
			return nil, domain.ErrInvalidRole
		}
		fields["role"] = *req.Role
	}
	if req.CanEdit != nil {
		fields["can_edit"] = *req.CanEdit
	}
	if len(fields) > 0 {
		if err := s.repo.UpdateParticipantFields(ctx, participantID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindParticipantByID(ctx, tripID, participantID)
}

func (s *Service) RemoveParticipant(ctx context.Context, userID, tripID, participantID snowflake.ID) error {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !access.CanManageParticipants(trip, userID, participant) {
		return domain.ErrForbidden
	}

	target, err := s.repo.FindParticipantByID(ctx, tripID, participantID)
	if err != nil {
		return err
	}
	// The owner's roster row cannot be removed; delete the trip instead.
	if target.UserID == trip.OwnerID {
		return domain.ErrForbidden
	}
	return s.repo.RemoveParticipant(ctx, participantID)
}

func (s *Service) Compare(ctx context.Context, userID, tripID snowflake.ID) (string, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return "", err
	}
	if !access.CanCompare(trip, userID, participant) {
		return "", domain.ErrForbidden
	}

	waypoints, err := s.waypointRepo.ListByTrip(ctx, tripID)
	if err != nil {
		return "", err
	}

	notes := BuildComparison(waypoints)
	if err := s.repo.UpdateFields(ctx, tripID, map[string]any{
		"comparison_notes": notes,
		"updated_at":       s.clock.Now(),
	}); err != nil {
		return "", err
	}
	return notes, nil
}

func (s *Service) loadTrip(ctx context.Context, tripID, userID snowflake.ID) (*domain.Trip, *domain.Participant, error) {
	trip, err := s.repo.FindByID(ctx, tripID)
	if err != nil {
		return nil, nil, err
	}

	participant, err := s.repo.FindParticipant(ctx, tripID, userID)
	if err != nil {
		if errors.Is(err, domain.ErrParticipantNotFound) {
			return trip, nil, nil
		}
		return nil, nil, err
	}
	return trip, participant, nil
}
