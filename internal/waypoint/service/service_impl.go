package service

import (
	"context"
	"errors"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/tripline/tripline/internal/clock"
	"github.com/tripline/tripline/internal/trip/access"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	"github.com/tripline/tripline/internal/waypoint/domain"
	"go.uber.org/zap"
)

const (
	maxNameLength        = 200
	maxDescriptionLength = 1000
	maxAddressLength     = 500
	maxNotesLength       = 500
)

type Service struct {
	log      *zap.Logger
	repo     domain.Repository
	tripRepo tripdomain.Repository
	genID    *snowflake.Node
	clock    clock.Clock
}

func NewService(log *zap.Logger, repo domain.Repository, tripRepo tripdomain.Repository, genID *snowflake.Node, clk clock.Clock) domain.Service {
	return &Service{
		log:      log.Named("waypoint.service"),
		repo:     repo,
		tripRepo: tripRepo,
		genID:    genID,
		clock:    clk,
	}
}

func (s *Service) List(ctx context.Context, userID, tripID snowflake.ID) ([]*domain.Waypoint, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	return s.repo.ListByTrip(ctx, tripID)
}

func (s *Service) Get(ctx context.Context, userID, tripID, waypointID snowflake.ID) (*domain.Waypoint, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanView(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}
	return s.repo.FindByID(ctx, tripID, waypointID)
}

func (s *Service) Create(ctx context.Context, userID, tripID snowflake.ID, req domain.CreateWaypointRequest) (*domain.Waypoint, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}

	name := strings.TrimSpace(req.Name)
	if name == "" || len(name) > maxNameLength {
		return nil, domain.ErrInvalidName
	}
	if len(req.Description) > maxDescriptionLength {
		return nil, domain.ErrInvalidDescription
	}
	if req.Latitude < -90 || req.Latitude > 90 {
		return nil, domain.ErrInvalidLatitude
	}
	if req.Longitude < -180 || req.Longitude > 180 {
		return nil, domain.ErrInvalidLongitude
	}
	if !req.Category.Valid() {
		return nil, domain.ErrInvalidCategory
	}

	now := s.clock.Now()
	waypoint := &domain.Waypoint{
		ID:               s.genID.Generate(),
		TripID:           tripID,
		Name:             name,
		Description:      strings.TrimSpace(req.Description),
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Category:         req.Category,
		Address:          strings.TrimSpace(req.Address),
		Notes:            strings.TrimSpace(req.Notes),
		OrderIndex:       req.OrderIndex,
		PlannedArrival:   req.PlannedArrival,
		PlannedDeparture: req.PlannedDeparture,
		ActualArrival:    req.ActualArrival,
		ActualDeparture:  req.ActualDeparture,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	if len(waypoint.Address) > maxAddressLength {
		return nil, domain.ErrInvalidAddress
	}
	if len(waypoint.Notes) > maxNotesLength {
		return nil, domain.ErrInvalidNotes
	}

	if err := s.repo.Create(ctx, waypoint); err != nil {
		return nil, err
	}
	return waypoint, nil
}

func (s *Service) Update(ctx context.Context, userID, tripID, waypointID snowflake.ID, req domain.UpdateWaypointRequest) (*domain.Waypoint, error) {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return nil, err
	}
	if !access.CanEdit(trip, userID, participant) {
		return nil, domain.ErrForbidden
	}

	if _, err := s.repo.FindByID(ctx, tripID, waypointID); err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" || len(name) > maxNameLength {
			return nil, domain.ErrInvalidName
		}
		fields["name"] = name
	}
	if req.Description != nil {
		if len(*req.Description) > maxDescriptionLength {
			return nil, domain.ErrInvalidDescription
		}
		fields["description"] = strings.TrimSpace(*req.Description)
	}
	if req.Latitude != nil {
		if *req.Latitude < -90 || *req.Latitude > 90 {
			return nil, domain.ErrInvalidLatitude
		}
		fields["latitude"] = *req.Latitude
	}
	if req.Longitude != nil {
		if *req.Longitude < -180 || *req.Longitude > 180 {
			return nil, domain.ErrInvalidLongitude
		}
		fields["longitude"] = *req.Longitude
	}
	if req.Category != nil {
		if !req.Category.Valid() {
			return nil, domain.ErrInvalidCategory
		}
		fields["category"] = *req.Category
	}
	if req.Address != nil {
		if len(*req.Address) > maxAddressLength {
			return nil, domain.ErrInvalidAddress
		}
		fields["address"] = strings.TrimSpace(*req.Address)
	}
	if req.Notes != nil {
		if len(*req.Notes) > maxNotesLength {
			return nil, domain.ErrInvalidNotes
		}
		fields["notes"] = strings.TrimSpace(*req.Notes)
	}
	if req.OrderIndex != nil {
		fields["order_index"] = *req.OrderIndex
	}
	if req.PlannedArrival != nil {
		fields["planned_arrival"] = *req.PlannedArrival
	}
	if req.PlannedDeparture != nil {
		fields["planned_departure"] = *req.PlannedDeparture
	}
	if req.ActualArrival != nil {
		fields["actual_arrival"] = *req.ActualArrival
	}
	if req.ActualDeparture != nil {
		fields["actual_departure"] = *req.ActualDeparture
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.clock.Now()
		if err := s.repo.UpdateFields(ctx, waypointID, fields); err != nil {
			return nil, err
		}
	}

	return s.repo.FindByID(ctx, tripID, waypointID)
}

func (s *Service) Delete(ctx context.Context, userID, tripID, waypointID snowflake.ID) error {
	trip, participant, err := s.loadTrip(ctx, tripID, userID)
	if err != nil {
		return err
	}
	if !access.CanEdit(trip, userID, participant) {
		return domain.ErrForbidden
	}

	if _, err := s.repo.FindByID(ctx, tripID, waypointID); err != nil {
		return err
	}
	return s.repo.Delete(ctx, waypointID)
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
