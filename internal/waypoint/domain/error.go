package domain

import "errors"

var (
	ErrNotFound  = errors.New("waypoint not found")
	ErrForbidden = errors.New("forbidden")

	ErrInvalidName        = errors.New("invalid_name")
	ErrInvalidDescription = errors.New("invalid_description")
	ErrInvalidLatitude    = errors.New("invalid_latitude")
	ErrInvalidLongitude   = errors.New("invalid_longitude")
	ErrInvalidCategory    = errors.New("invalid_category")
	ErrInvalidAddress     = errors.New("invalid_address")
	ErrInvalidNotes       = errors.New("invalid_notes")
)
