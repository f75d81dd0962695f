package domain

import "errors"

var (
	ErrNotFound            = errors.New("trip not found")
	ErrParticipantNotFound = errors.New("participant not found")
	ErrParticipantExists   = errors.New("participant already exists")
	ErrForbidden           = errors.New("forbidden")

	ErrInvalidTitle       = errors.New("invalid_title")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidDates       = errors.New("invalid_dates")
	ErrInvalidStatus      = errors.New("invalid_status")
	ErrInvalidRole        = errors.New("invalid_role")
)
