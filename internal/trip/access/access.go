// Package access holds the permission rules for trips. The functions are
// pure: they evaluate a loaded trip and the caller's participant row (nil
// when the caller is not on the roster) with no I/O, so every request sees
// the current membership state.
package access

import (
	"github.com/bwmarrin/snowflake"
	"github.com/tripline/tripline/internal/trip/domain"
)

// CanView reports whether the user may read the trip: the owner, anyone on
// the roster regardless of role, or anyone at all when the trip is public.
func CanView(trip *domain.Trip, userID snowflake.ID, participant *domain.Participant) bool {
	if trip == nil {
		return false
	}
	if trip.OwnerID == userID {
		return true
	}
	if participant != nil {
		return true
	}
	return trip.IsPublic
}

// CanEdit reports whether the user may modify trip content. The CanEdit
// flag decides for participants; their role does not.
func CanEdit(trip *domain.Trip, userID snowflake.ID, participant *domain.Participant) bool {
	if trip == nil {
		return false
	}
	if trip.OwnerID == userID {
		return true
	}
	return participant != nil && participant.CanEdit
}

// CanManageParticipants reports whether the user may change the roster or
// send invitations: the owner, or a participant with the Owner or
// Organizer role.
func CanManageParticipants(trip *domain.Trip, userID snowflake.ID, participant *domain.Participant) bool {
	if trip == nil {
		return false
	}
	if trip.OwnerID == userID {
		return true
	}
	if participant == nil {
		return false
	}
	return participant.Role == domain.RoleOwner || participant.Role == domain.RoleOrganizer
}

// CanCompare reports whether the user may recompute the stored comparison
// notes: the owner or anyone on the roster. Public visibility does not
// grant it.
func CanCompare(trip *domain.Trip, userID snowflake.ID, participant *domain.Participant) bool {
	if trip == nil {
		return false
	}
	return trip.OwnerID == userID || participant != nil
}

// CanDelete reports whether the user may delete the trip. Only the owner
// can, regardless of any participant row.
func CanDelete(trip *domain.Trip, userID snowflake.ID) bool {
	return trip != nil && trip.OwnerID == userID
}
