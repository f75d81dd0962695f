package domain

import "errors"

var (
	ErrNotFound           = errors.New("invitation not found")
	ErrForbidden          = errors.New("forbidden")
	ErrNotPending         = errors.New("invitation already responded")
	ErrAlreadyInvited     = errors.New("pending invitation exists")
	ErrAlreadyParticipant = errors.New("already a participant")
	ErrEmailMismatch      = errors.New("invitation addressed to another email")

	ErrInvalidEmail   = errors.New("invalid_email")
	ErrInvalidMessage = errors.New("invalid_message")
)
