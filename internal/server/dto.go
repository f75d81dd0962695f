package server

import (
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
)

type UserResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email"`
	DisplayName string         `json:"display_name"`
	IsAdmin     bool           `json:"is_admin"`
	Preferences map[string]any `json:"preferences,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
}

func toUserResponse(user *authdomain.User) UserResponse {
	return UserResponse{
		ID:          user.ID.String(),
		Email:       user.Email,
		DisplayName: user.DisplayName,
		IsAdmin:     user.IsAdmin,
		Preferences: user.Preferences,
		CreatedAt:   user.CreatedAt,
	}
}

type TripResponse struct {
	ID              string    `json:"id"`
	OwnerID         string    `json:"owner_id"`
	Title           string    `json:"title"`
	Description     string    `json:"description"`
	StartDate       time.Time `json:"start_date"`
	EndDate         time.Time `json:"end_date"`
	Status          int16     `json:"status"`
	IsPublic        bool      `json:"is_public"`
	ComparisonNotes string    `json:"comparison_notes,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

func toTripResponse(trip *tripdomain.Trip) TripResponse {
	return TripResponse{
		ID:              trip.ID.String(),
		OwnerID:         trip.OwnerID.String(),
		Title:           trip.Title,
		Description:     trip.Description,
		StartDate:       trip.StartDate,
		EndDate:         trip.EndDate,
		Status:          int16(trip.Status),
		IsPublic:        trip.IsPublic,
		ComparisonNotes: trip.ComparisonNotes,
		CreatedAt:       trip.CreatedAt,
		UpdatedAt:       trip.UpdatedAt,
	}
}

func toTripResponses(trips []*tripdomain.Trip) []TripResponse {
	out := make([]TripResponse, 0, len(trips))
	for _, trip := range trips {
		out = append(out, toTripResponse(trip))
	}
	return out
}

type ParticipantResponse struct {
	ID       string    `json:"id"`
	TripID   string    `json:"trip_id"`
	UserID   string    `json:"user_id"`
	Role     int16     `json:"role"`
	CanEdit  bool      `json:"can_edit"`
	JoinedAt time.Time `json:"joined_at"`
}

func toParticipantResponse(participant *tripdomain.Participant) ParticipantResponse {
	return ParticipantResponse{
		ID:       participant.ID.String(),
		TripID:   participant.TripID.String(),
		UserID:   participant.UserID.String(),
		Role:     int16(participant.Role),
		CanEdit:  participant.CanEdit,
		JoinedAt: participant.JoinedAt,
	}
}

func toParticipantResponses(participants []*tripdomain.Participant) []ParticipantResponse {
	out := make([]ParticipantResponse, 0, len(participants))
	for _, participant := range participants {
		out = append(out, toParticipantResponse(participant))
	}
	return out
}

type WaypointResponse struct {
	ID               string     `json:"id"`
	TripID           string     `json:"trip_id"`
	Name             string     `json:"name"`
	Description      string     `json:"description,omitempty"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Category         int16      `json:"category"`
	Address          string     `json:"address,omitempty"`
	Notes            string     `json:"notes,omitempty"`
	OrderIndex       int        `json:"order_index"`
	PlannedArrival   *time.Time `json:"planned_arrival,omitempty"`
	PlannedDeparture *time.Time `json:"planned_departure,omitempty"`
	ActualArrival    *time.Time `json:"actual_arrival,omitempty"`
	ActualDeparture  *time.Time `json:"actual_departure,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func toWaypointResponse(waypoint *waypointdomain.Waypoint) WaypointResponse {
	return WaypointResponse{
		ID:               waypoint.ID.String(),
		TripID:           waypoint.TripID.String(),
		Name:             waypoint.Name,
		Description:      waypoint.Description,
		Latitude:         waypoint.Latitude,
		Longitude:        waypoint.Longitude,
		Category:         int16(waypoint.Category),
		Address:          waypoint.Address,
		Notes:            waypoint.Notes,
		OrderIndex:       waypoint.OrderIndex,
		PlannedArrival:   waypoint.PlannedArrival,
		PlannedDeparture: waypoint.PlannedDeparture,
		ActualArrival:    waypoint.ActualArrival,
		ActualDeparture:  waypoint.ActualDeparture,
		CreatedAt:        waypoint.CreatedAt,
		UpdatedAt:        waypoint.UpdatedAt,
	}
}

func toWaypointResponses(waypoints []*waypointdomain.Waypoint) []WaypointResponse {
	out := make([]WaypointResponse, 0, len(waypoints))
	for _, waypoint := range waypoints {
		out = append(out, toWaypointResponse(waypoint))
	}
	return out
}

type InvitationResponse struct {
	ID           string     `json:"id"`
	TripID       string     `json:"trip_id"`
	InvitedEmail string     `json:"invited_email"`
	InvitedBy    string     `json:"invited_by"`
	RespondedBy  *string    `json:"responded_by,omitempty"`
	Role         int16      `json:"role"`
	CanEdit      bool       `json:"can_edit"`
	Status       int16      `json:"status"`
	Message      string     `json:"message,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	RespondedAt  *time.Time `json:"responded_at,omitempty"`
}

func toInvitationResponse(invitation *invitationdomain.Invitation) InvitationResponse {
	return InvitationResponse{
		ID:           invitation.ID.String(),
		TripID:       invitation.TripID.String(),
		InvitedEmail: invitation.InvitedEmail,
		InvitedBy:    invitation.InvitedBy.String(),
		RespondedBy:  idString(invitation.RespondedBy),
		Role:         int16(invitation.Role),
		CanEdit:      invitation.CanEdit,
		Status:       int16(invitation.Status),
		Message:      invitation.Message,
		CreatedAt:    invitation.CreatedAt,
		RespondedAt:  invitation.RespondedAt,
	}
}

func toInvitationResponses(invitations []*invitationdomain.Invitation) []InvitationResponse {
	out := make([]InvitationResponse, 0, len(invitations))
	for _, invitation := range invitations {
		out = append(out, toInvitationResponse(invitation))
	}
	return out
}

func idString(id *snowflake.ID) *string {
	if id == nil {
		return nil
	}
	s := id.String()
	return &s
}
