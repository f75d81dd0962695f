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
	"github.com/tripline/tripline/internal/invitation/domain"
	"github.com/tripline/tripline/internal/invitation/repository"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	triprepository "github.com/tripline/tripline/internal/trip/repository"
	"github.com/tripline/tripline/pkg/db"
	"go.uber.org/zap"
)

type fixture struct {
	svc      domain.Service
	repo     domain.Repository
	tripRepo tripdomain.Repository
	userRepo authdomain.Repository
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
		&tripdomain.Trip{},
		&tripdomain.Participant{},
		&domain.Invitation{},
	); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("failed to create snowflake node: %v", err)
	}

	userRepo, _ := authrepository.New(conn)
	tripRepo := triprepository.NewRepository(conn)
	repo := repository.NewRepository(conn)
	clk := clock.NewFakeClock(time.Date(2026, 4, 1, 10, 0, 0, 0, time.UTC))

	return &fixture{
		svc:      NewService(zap.NewNop(), repo, tripRepo, userRepo, node, clk, nil),
		repo:     repo,
		tripRepo: tripRepo,
		userRepo: userRepo,
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

func (f *fixture) newTrip(t *testing.T, owner *authdomain.User) *tripdomain.Trip {
	t.Helper()
	now := f.clock.Now()
	trip := &tripdomain.Trip{
		ID:        f.node.Generate(),
		OwnerID:   owner.ID,
		Title:     "Spring ride",
		StartDate: now,
		EndDate:   now.Add(72 * time.Hour),
		CreatedAt: now,
		UpdatedAt: now,
	}
	ownerRow := &tripdomain.Participant{
		ID:       f.node.Generate(),
		TripID:   trip.ID,
		UserID:   owner.ID,
		Role:     tripdomain.RoleOwner,
		CanEdit:  true,
		JoinedAt: now,
	}
	if err := f.tripRepo.CreateWithOwner(context.Background(), trip, ownerRow); err != nil {
		t.Fatalf("failed to create trip: %v", err)
	}
	return trip
}

func (f *fixture) invite(t *testing.T, inviter *authdomain.User, trip *tripdomain.Trip, email string, role tripdomain.Role, canEdit bool) *domain.Invitation {
	t.Helper()
	invitation, err := f.svc.Create(context.Background(), inviter.ID, trip.ID, domain.CreateInvitationRequest{
		Email:   email,
		Role:    role,
		CanEdit: canEdit,
	})
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}
	return invitation
}

func TestCreateRequiresManagePermission(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	// Member with can_edit but plain Member role cannot invite.
	if err := f.tripRepo.AddParticipant(context.Background(), &tripdomain.Participant{
		ID:      f.node.Generate(),
		TripID:  trip.ID,
		UserID:  member.ID,
		Role:    tripdomain.RoleMember,
		CanEdit: true,
	}); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	_, err := f.svc.Create(context.Background(), member.ID, trip.ID, domain.CreateInvitationRequest{
		Email: "friend@example.com",
		Role:  tripdomain.RoleMember,
	})
	if !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestCreateMissingTripIsNotFound(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")

	_, err := f.svc.Create(context.Background(), owner.ID, f.node.Generate(), domain.CreateInvitationRequest{
		Email: "friend@example.com",
		Role:  tripdomain.RoleMember,
	})
	if !errors.Is(err, tripdomain.ErrNotFound) {
		t.Fatalf("expected trip NotFound before any permission answer, got %v", err)
	}
}

func TestCreateRejectsInvalidEmail(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	_, err := f.svc.Create(context.Background(), owner.ID, trip.ID, domain.CreateInvitationRequest{
		Email: "not-an-email",
		Role:  tripdomain.RoleMember,
	})
	if !errors.Is(err, domain.ErrInvalidEmail) {
		t.Fatalf("expected ErrInvalidEmail, got %v", err)
	}
}

func TestCreateConflictsOnExistingParticipant(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	if err := f.tripRepo.AddParticipant(context.Background(), &tripdomain.Participant{
		ID:     f.node.Generate(),
		TripID: trip.ID,
		UserID: member.ID,
		Role:   tripdomain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	_, err := f.svc.Create(context.Background(), owner.ID, trip.ID, domain.CreateInvitationRequest{
		Email: member.Email,
		Role:  tripdomain.RoleMember,
	})
	if !errors.Is(err, domain.ErrAlreadyParticipant) {
		t.Fatalf("expected ErrAlreadyParticipant, got %v", err)
	}
}

func TestCreateConflictsOnPendingDuplicate(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	trip := f.newTrip(t, owner)

	f.invite(t, owner, trip, "friend@example.com", tripdomain.RoleMember, false)

	_, err := f.svc.Create(context.Background(), owner.ID, trip.ID, domain.CreateInvitationRequest{
		Email: "Friend@Example.com",
		Role:  tripdomain.RoleOrganizer,
	})
	if !errors.Is(err, domain.ErrAlreadyInvited) {
		t.Fatalf("expected ErrAlreadyInvited, got %v", err)
	}
}

func TestDeclinedInvitationAllowsReinvite(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	first := f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)
	if _, err := f.svc.Decline(context.Background(), friend.ID, friend.Email, first.ID); err != nil {
		t.Fatalf("failed to decline: %v", err)
	}

	// A terminal invitation no longer blocks a new one.
	f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)
}

func TestAcceptAppliesStoredRoleAndFlag(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleOrganizer, true)

	accepted, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID)
	if err != nil {
		t.Fatalf("failed to accept: %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("expected Accepted, got %d", accepted.Status)
	}
	if accepted.RespondedAt == nil || accepted.RespondedBy == nil || *accepted.RespondedBy != friend.ID {
		t.Fatalf("expected response metadata, got %+v", accepted)
	}

	participant, err := f.tripRepo.FindParticipant(context.Background(), trip.ID, friend.ID)
	if err != nil {
		t.Fatalf("expected participant row: %v", err)
	}
	if participant.Role != tripdomain.RoleOrganizer || !participant.CanEdit {
		t.Fatalf("stored role/flag must be applied verbatim, got role=%d can_edit=%v",
			participant.Role, participant.CanEdit)
	}
}

func TestOwnerRolePersistsThroughAccept(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleOwner, false)

	stored, err := f.repo.FindByID(context.Background(), invitation.ID)
	if err != nil {
		t.Fatalf("failed to reload invitation: %v", err)
	}
	if stored.Role != tripdomain.RoleOwner {
		t.Fatalf("invitation must store the Owner role, got role=%d", stored.Role)
	}

	if _, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID); err != nil {
		t.Fatalf("failed to accept: %v", err)
	}

	participant, err := f.tripRepo.FindParticipant(context.Background(), trip.ID, friend.ID)
	if err != nil {
		t.Fatalf("expected participant row: %v", err)
	}
	if participant.Role != tripdomain.RoleOwner {
		t.Fatalf("accepted Owner invitation must join as Owner, got role=%d", participant.Role)
	}
}

func TestAcceptEmailMismatch(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	other := f.newUser(t, "other@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)

	_, err := f.svc.Accept(context.Background(), other.ID, other.Email, invitation.ID)
	if !errors.Is(err, domain.ErrEmailMismatch) {
		t.Fatalf("expected ErrEmailMismatch, got %v", err)
	}
}

func TestAcceptCaseInsensitiveEmailMatch(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, "Friend@Example.COM", tripdomain.RoleMember, false)

	if _, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID); err != nil {
		t.Fatalf("case difference must not block the response: %v", err)
	}
}

func TestRespondTerminalIsConflict(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)
	if _, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID); err != nil {
		t.Fatalf("failed to accept: %v", err)
	}

	if _, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("second accept must conflict, got %v", err)
	}
	if _, err := f.svc.Decline(context.Background(), friend.ID, friend.Email, invitation.ID); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("decline after accept must conflict, got %v", err)
	}
	if _, err := f.svc.Cancel(context.Background(), owner.ID, invitation.ID); !errors.Is(err, domain.ErrNotPending) {
		t.Fatalf("cancel after accept must conflict, got %v", err)
	}
}

func TestAcceptWhenAlreadyParticipantStillAccepts(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)

	// Friend joins the roster through another path before responding.
	if err := f.tripRepo.AddParticipant(context.Background(), &tripdomain.Participant{
		ID:     f.node.Generate(),
		TripID: trip.ID,
		UserID: friend.ID,
		Role:   tripdomain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add participant: %v", err)
	}

	accepted, err := f.svc.Accept(context.Background(), friend.ID, friend.Email, invitation.ID)
	if err != nil {
		t.Fatalf("accept must tolerate an existing participant row: %v", err)
	}
	if accepted.Status != domain.StatusAccepted {
		t.Fatalf("expected Accepted, got %d", accepted.Status)
	}
}

func TestDeclineDoesNotJoinRoster(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	trip := f.newTrip(t, owner)

	invitation := f.invite(t, owner, trip, friend.Email, tripdomain.RoleMember, false)

	declined, err := f.svc.Decline(context.Background(), friend.ID, friend.Email, invitation.ID)
	if err != nil {
		t.Fatalf("failed to decline: %v", err)
	}
	if declined.Status != domain.StatusDeclined || declined.RespondedAt == nil {
		t.Fatalf("expected Declined with timestamp, got %+v", declined)
	}

	if _, err := f.tripRepo.FindParticipant(context.Background(), trip.ID, friend.ID); !errors.Is(err, tripdomain.ErrParticipantNotFound) {
		t.Fatalf("decline must not create a participant, got %v", err)
	}
}

func TestCancelRights(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	organizer := f.newUser(t, "organizer@example.com")
	outsider := f.newUser(t, "outsider@example.com")
	trip := f.newTrip(t, owner)

	if err := f.tripRepo.AddParticipant(context.Background(), &tripdomain.Participant{
		ID:     f.node.Generate(),
		TripID: trip.ID,
		UserID: organizer.ID,
		Role:   tripdomain.RoleOrganizer,
	}); err != nil {
		t.Fatalf("failed to add organizer: %v", err)
	}

	// Sent by the organizer: the organizer (inviter) and the trip owner may
	// cancel; an unrelated user may not.
	invitation, err := f.svc.Create(context.Background(), organizer.ID, trip.ID, domain.CreateInvitationRequest{
		Email: "friend@example.com",
		Role:  tripdomain.RoleMember,
	})
	if err != nil {
		t.Fatalf("failed to create invitation: %v", err)
	}

	if _, err := f.svc.Cancel(context.Background(), outsider.ID, invitation.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("outsider must not cancel, got %v", err)
	}

	cancelled, err := f.svc.Cancel(context.Background(), owner.ID, invitation.ID)
	if err != nil {
		t.Fatalf("trip owner must cancel another inviter's invitation: %v", err)
	}
	if cancelled.Status != domain.StatusCancelled {
		t.Fatalf("expected Cancelled, got %d", cancelled.Status)
	}
}

func TestListMineReturnsOnlyPending(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	friend := f.newUser(t, "friend@example.com")
	first := f.newTrip(t, owner)
	second := f.newTrip(t, owner)

	pending := f.invite(t, owner, first, friend.Email, tripdomain.RoleMember, false)
	declined := f.invite(t, owner, second, friend.Email, tripdomain.RoleMember, false)
	if _, err := f.svc.Decline(context.Background(), friend.ID, friend.Email, declined.ID); err != nil {
		t.Fatalf("failed to decline: %v", err)
	}

	mine, err := f.svc.ListMine(context.Background(), friend.Email)
	if err != nil {
		t.Fatalf("failed to list: %v", err)
	}
	if len(mine) != 1 || mine[0].ID != pending.ID {
		t.Fatalf("expected only the pending invitation, got %d", len(mine))
	}
}

func TestListForTripRequiresManagePermission(t *testing.T) {
	f := newFixture(t)
	owner := f.newUser(t, "owner@example.com")
	member := f.newUser(t, "member@example.com")
	trip := f.newTrip(t, owner)

	if err := f.tripRepo.AddParticipant(context.Background(), &tripdomain.Participant{
		ID:     f.node.Generate(),
		TripID: trip.ID,
		UserID: member.ID,
		Role:   tripdomain.RoleMember,
	}); err != nil {
		t.Fatalf("failed to add member: %v", err)
	}

	if _, err := f.svc.ListForTrip(context.Background(), member.ID, trip.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("member must not list invitations, got %v", err)
	}
	if _, err := f.svc.ListForTrip(context.Background(), owner.ID, trip.ID); err != nil {
		t.Fatalf("owner must list invitations: %v", err)
	}
}
