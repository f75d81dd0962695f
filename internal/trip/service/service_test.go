package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	authrepository "github.com/tripline/tripline/internal/auth/repository"
	"github.com/tripline/tripline/internal/clock"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	"github.com/tripline/tripline/internal/trip/domain"
	"github.com/tripline/tripline/internal/trip/repository"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
	waypointrepository "github.com/tripline/tripline/internal/waypoint/repository"
	"github.com/tripline/tripline/pkg/db"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type fixture struct {
	svc      domain.Service
	conn     *gorm.DB
	userRepo authdomain.Repository
	wpRepo   waypointdomain.Repository
	node     *snowflake.Node
	clock    *clock.FakeClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	conn, err := db.NewTest()
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	if err := conn.AutoMigrate(
		&authdomain.User{},
		&domain.Trip{},
		&domain.Participant{},
		&waypointdomain.Waypoint{},
		&invitationdomain.Invitation{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	userRepo, _ := authrepository.New(conn)
	wpRepo := waypointrepository.NewRepository(conn)
	tripRepo := repository.NewRepository(conn)
	clk := clock.NewFakeClock(time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC))

	return &fixture{
		svc:      NewService(zap.NewNop(), tripRepo, wpRepo, userRepo, node, clk, nil),
		conn:     conn,
		userRepo: userRepo,
		wpRepo:   wpRepo,
		node:     node,
		clock:    clk,
	}
}

func (f *fixture) newUser(t *testing.T, email string) *authdomain.User {
	t.Helper()
	user := &authdomain.User{
		ID:           f.node.Generate(),
		Email:        email,
		DisplayName:  email,
		PasswordHash: "x",
	}
	if err := f.userRepo.Create(context.Background(), user); err != nil {
		t.Fatalf("failed to create user: %v", err)
	}
	return user
}

func (f *fixture) newTrip(t *testing.T, owner *authdomain.User) *domain.Trip {
	t.Helper()
	trip, err := f.svc.Create(context.Background(), owner.ID, domain.CreateTripRequest{
		Title:     "Balaton loop",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	return trip
}

func TestCreateMaterializesOwnerParticipant(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	participants, err := f.svc.ListParticipants(context.Background(), owner.ID, trip.ID)
	if err != nil {
		t.Fatalf("failed to list participants: %v", err)
	}
	if len(participants) != 1 {
		t.Fatalf("expected owner row on the roster, got %d rows", len(participants))
	}
	if participants[0].UserID != owner.ID {
		t.Fatalf("expected owner on roster, got user %s", participants[0].UserID)
	}
	if participants[0].Role != domain.RoleOwner || !participants[0].CanEdit {
		t.Fatalf("owner row must be Owner with can_edit, got role=%d can_edit=%v",
			participants[0].Role, participants[0].CanEdit)
	}
}

func TestCreateValidation(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")

	_, err := f.svc.Create(context.Background(), owner.ID, domain.CreateTripRequest{
		Title:     "   ",
		StartDate: time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrInvalidTitle) {
		t.Fatalf("expected ErrInvalidTitle, got %v", err)
	}

	_, err = f.svc.Create(context.Background(), owner.ID, domain.CreateTripRequest{
		Title:     "Backwards",
		StartDate: time.Date(2026, 6, 7, 0, 0, 0, 0, time.UTC),
		EndDate:   time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC),
	})
	if !errors.Is(err, domain.ErrInvalidDates) {
		t.Fatalf("expected ErrInvalidDates, got %v", err)
	}
}

func TestGetExistenceBeforePermission(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	stranger := f.newUser(t, "stranger@example.com")
	trip := f.newTrip(t, owner)

	_, err := f.svc.Get(context.Background(), stranger.ID, f.node.Generate())
	if !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("missing trip must be NotFound, got %v", err)
	}

	_, err = f.svc.Get(context.Background(), stranger.ID, trip.ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("existing private trip must be Forbidden for strangers, got %v", err)
	}
}

func TestPublicTripVisibleToStranger(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	stranger := f.newUser(t, "stranger@example.com")
	trip := f.newTrip(t, owner)

	public := true
	if _, err := f.svc.Update(context.Background(), owner.ID, trip.ID, domain.UpdateTripRequest{IsPublic: &public}); err != nil {
		t.Fatalf("failed to publish trip: %v", err)
	}

	got, err := f.svc.Get(context.Background(), stranger.ID, trip.ID)
	if err != nil {
		t.Fatalf("stranger must view public trip: %v", err)
	}
	if got.ID != trip.ID {
		t.Fatalf("expected trip %s, got %s", trip.ID, got.ID)
	}

	trips, err := f.svc.ListVisible(context.Background(), stranger.ID)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(trips) != 1 {
		t.Fatalf("expected public trip in stranger's list, got %d", len(trips))
	}
}

func TestUpdateRequiresEditPermission(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	if _, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email: member.Email,
		Role:  domain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}

	title := "Renamed"
	_, err := f.svc.Update(context.Background(), member.ID, trip.ID, domain.UpdateTripRequest{Title: &title})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member without can_edit must not edit, got %v", err)
	}
}

func TestAddParticipantDuplicateConflict(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	if _, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email: member.Email,
		Role:  domain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}

	_, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email: member.Email,
		Role:  domain.RoleOrganizer,
	})
	if !errors.Is(err, domain.ErrParticipantExists) {
		t.Fatalf("expected ErrParticipantExists, got %v", err)
	}
}

func TestAddParticipantUnknownEmail(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	_, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email: "ghost@example.com",
		Role:  domain.RoleMember,
	})
	if !errors.Is(err, authdomain.ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestRemoveParticipantOwnerRowProtected(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	participants, err := f.svc.ListParticipants(context.Background(), owner.ID, trip.ID)
	if err != nil {
		t.Fatalf("failed to list participants: %v", err)
	}

	err = f.svc.RemoveParticipant(context.Background(), owner.ID, trip.ID, participants[0].ID)
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("owner roster row must not be removable, got %v", err)
	}
}

func TestDeleteOwnerOnly(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	organizer := f.newUser(t, "organizer@example.com")
	trip := f.newTrip(t, owner)

	if _, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email:   organizer.Email,
		Role:    domain.RoleOrganizer,
		CanEdit: true,
	}); err != nil {
		t.Fatalf("failed to add organizer: %v", err)
	}

	if err := f.svc.Delete(context.Background(), organizer.ID, trip.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("organizer must not delete the trip, got %v", err)
	}
	if err := f.svc.Delete(context.Background(), owner.ID, trip.ID); err != nil {
		t.Fatalf("owner delete failed: %v", err)
	}
	if _, err := f.svc.Get(context.Background(), owner.ID, trip.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("deleted trip must be NotFound, got %v", err)
	}
}

func TestDeleteRemovesChildRows(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	if _, err := f.svc.AddParticipant(context.Background(), owner.ID, trip.ID, domain.AddParticipantRequest{
		Email: member.Email,
		Role:  domain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}
	if err := f.wpRepo.Create(context.Background(), &waypointdomain.Waypoint{
		ID:     f.node.Generate(),
		TripID: trip.ID,
		Name:   "Harbor",
	}); err != nil {
		t.Fatalf("failed to create waypoint: %v", err)
	}
	if err := f.conn.Create(&invitationdomain.Invitation{
		ID:           f.node.Generate(),
		TripID:       trip.ID,
		InvitedEmail: "ghost@example.com",
		InvitedBy:    owner.ID,
		Role:         domain.RoleMember,
		Status:       invitationdomain.StatusPending,
		CreatedAt:    f.clock.Now(),
	}).Error; err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	if err := f.svc.Delete(context.Background(), owner.ID, trip.ID); err != nil {
		t.Fatalf("failed to delete trip: %v", err)
	}

	for table, model := range map[string]any{
		"participants": &domain.Participant{},
		"waypoints":    &waypointdomain.Waypoint{},
		"invitations":  &invitationdomain.Invitation{},
	} {
		var count int64
		if err := f.conn.Model(model).Where("trip_id = ?", trip.ID).Count(&count).Error; err != nil {
			t.Fatalf("failed to count %s: %v", table, err)
		}
		if count != 0 {
			t.Fatalf("%s must not survive trip deletion, got %d rows", table, count)
		}
	}
}

func TestCompareStoresNotes(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	planned := time.Date(2026, 6, 2, 9, 0, 0, 0, time.UTC)
	actual := planned.Add(90 * time.Minute)
	if err := f.wpRepo.Create(context.Background(), &waypointdomain.Waypoint{
		ID:             f.node.Generate(),
		TripID:         trip.ID,
		Name:           "Harbor",
		Category:       waypointdomain.CategoryAttraction,
		PlannedArrival: &planned,
		ActualArrival:  &actual,
	}); err != nil {
		t.Fatalf("failed to create waypoint: %v", err)
	}

	notes, err := f.svc.Compare(context.Background(), owner.ID, trip.ID)
	if err != nil {
		t.Fatalf("failed to compare: %v", err)
	}

	stored, err := f.svc.Get(context.Background(), owner.ID, trip.ID)
	if err != nil {
		t.Fatalf("failed to reload trip: %v", err)
	}
	if stored.ComparisonNotes != notes {
		t.Fatalf("comparison notes must be persisted on the trip")
	}
}

func TestCompareForbiddenForStrangerOnPublicTrip(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	stranger := f.newUser(t, "stranger@example.com")
	trip := f.newTrip(t, owner)

	public := true
	if _, err := f.svc.Update(context.Background(), owner.ID, trip.ID, domain.UpdateTripRequest{IsPublic: &public}); err != nil {
		t.Fatalf("failed to publish trip: %v", err)
	}

	if _, err := f.svc.Compare(context.Background(), stranger.ID, trip.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("stranger must not recompute comparison on a public trip, got %v", err)
	}
}
