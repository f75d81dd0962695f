package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/authorization"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
	"gorm.io/gorm"
)

type ValidationError struct {
	Field   string `json:"field"`
	Code    string `json:"code"`
	Message string `json:"message"`
}

type ValidationErrors struct {
	Errors []ValidationError `json:"errors"`
}

func (v ValidationErrors) Error() string {
	return "validation error"
}

type errorPayload struct {
	Type    string            `json:"type"`
	Message string            `json:"message"`
	Errors  []ValidationError `json:"errors,omitempty"`
}

type errorResponse struct {
	Error errorPayload `json:"error"`
}

var (
	ErrUnauthorized       = errors.New("unauthorized")
	ErrForbidden          = errors.New("forbidden")
	ErrConflict           = errors.New("conflict")
	ErrInternal           = errors.New("internal_error")
	ErrNotFound           = errors.New("not_found")
	ErrInvalidRequest     = errors.New("invalid_request")
	ErrTooManyRequests    = errors.New("too_many_requests")
	ErrServiceUnavailable = errors.New("service_unavailable")
)

func ErrorHandlingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if c.Writer.Written() {
			return
		}

		lastErr := c.Errors.Last()
		if lastErr == nil {
			return
		}

		status, payload := mapError(lastErr.Err)
		c.Header("Content-Type", "application/json")
		c.AbortWithStatusJSON(status, errorResponse{Error: payload})
	}
}

func AbortWithError(c *gin.Context, err error) {
	if err == nil {
		return
	}
	_ = c.Error(err)
	c.Abort()
}

func invalidRequestError() error {
	return newValidationError("request", "invalid_request", "invalid request")
}

func newValidationError(field, code, message string) error {
	return &ValidationErrors{
		Errors: []ValidationError{
			{
				Field:   field,
				Code:    code,
				Message: message,
			},
		},
	}
}

func mapError(err error) (int, errorPayload) {
	if err == nil {
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}

	if vErr := asValidationErrors(err); vErr != nil {
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors:  vErr.Errors,
		}
	}

	if isValidationError(err) {
		code := validationErrorCode(err)
		return http.StatusBadRequest, errorPayload{
			Type:    "validation_error",
			Message: "validation error",
			Errors: []ValidationError{
				{
					Field:   validationErrorField(code),
					Code:    code,
					Message: validationErrorMessage(code),
				},
			},
		}
	}

	switch {
	case errors.Is(err, ErrUnauthorized),
		errors.Is(err, authdomain.ErrInvalidCredentials),
		errors.Is(err, authdomain.ErrInvalidSession),
		errors.Is(err, authdomain.ErrSessionNotFound),
		errors.Is(err, authdomain.ErrSessionExpired),
		errors.Is(err, authdomain.ErrSessionRevoked):
		return http.StatusUnauthorized, errorPayload{
			Type:    "unauthorized",
			Message: "unauthorized",
		}
	case isForbiddenError(err):
		return http.StatusForbidden, errorPayload{
			Type:    "forbidden",
			Message: "forbidden",
		}
	case isConflictError(err):
		return http.StatusConflict, errorPayload{
			Type:    "conflict",
			Message: conflictMessage(err),
		}
	case isNotFoundError(err):
		return http.StatusNotFound, errorPayload{
			Type:    "not_found",
			Message: "not found",
		}
	case errors.Is(err, ErrTooManyRequests):
		return http.StatusTooManyRequests, errorPayload{
			Type:    "too_many_requests",
			Message: "too many requests",
		}
	case errors.Is(err, ErrServiceUnavailable):
		return http.StatusServiceUnavailable, errorPayload{
			Type:    "service_unavailable",
			Message: "service unavailable",
		}
	default:
		return http.StatusInternalServerError, errorPayload{
			Type:    "internal_error",
			Message: "internal server error",
		}
	}
}

func asValidationErrors(err error) *ValidationErrors {
	var vErr *ValidationErrors
	if errors.As(err, &vErr) && vErr != nil {
		return vErr
	}
	return nil
}

func isValidationError(err error) bool {
	switch {
	case errors.Is(err, ErrInvalidRequest),
		errors.Is(err, authdomain.ErrInvalidEmail),
		errors.Is(err, authdomain.ErrWeakPassword):
		return true
	case isTripValidationError(err),
		isWaypointValidationError(err),
		isInvitationValidationError(err):
		return true
	default:
		return false
	}
}

func isTripValidationError(err error) bool {
	return errors.Is(err, tripdomain.ErrInvalidTitle) ||
		errors.Is(err, tripdomain.ErrInvalidDescription) ||
		errors.Is(err, tripdomain.ErrInvalidDates) ||
		errors.Is(err, tripdomain.ErrInvalidStatus) ||
		errors.Is(err, tripdomain.ErrInvalidRole)
}

func isWaypointValidationError(err error) bool {
	return errors.Is(err, waypointdomain.ErrInvalidName) ||
		errors.Is(err, waypointdomain.ErrInvalidDescription) ||
		errors.Is(err, waypointdomain.ErrInvalidLatitude) ||
		errors.Is(err, waypointdomain.ErrInvalidLongitude) ||
		errors.Is(err, waypointdomain.ErrInvalidCategory) ||
		errors.Is(err, waypointdomain.ErrInvalidAddress) ||
		errors.Is(err, waypointdomain.ErrInvalidNotes)
}

func isInvitationValidationError(err error) bool {
	return errors.Is(err, invitationdomain.ErrInvalidEmail) ||
		errors.Is(err, invitationdomain.ErrInvalidMessage)
}

func isForbiddenError(err error) bool {
	return errors.Is(err, ErrForbidden) ||
		errors.Is(err, tripdomain.ErrForbidden) ||
		errors.Is(err, waypointdomain.ErrForbidden) ||
		errors.Is(err, invitationdomain.ErrForbidden) ||
		errors.Is(err, invitationdomain.ErrEmailMismatch) ||
		errors.Is(err, authorization.ErrForbidden)
}

func isConflictError(err error) bool {
	return errors.Is(err, ErrConflict) ||
		errors.Is(err, authdomain.ErrUserExists) ||
		errors.Is(err, tripdomain.ErrParticipantExists) ||
		errors.Is(err, invitationdomain.ErrAlreadyInvited) ||
		errors.Is(err, invitationdomain.ErrAlreadyParticipant) ||
		errors.Is(err, invitationdomain.ErrNotPending)
}

func conflictMessage(err error) string {
	switch {
	case errors.Is(err, invitationdomain.ErrAlreadyInvited):
		return "a pending invitation already exists"
	case errors.Is(err, invitationdomain.ErrAlreadyParticipant):
		return "user is already a participant"
	case errors.Is(err, invitationdomain.ErrNotPending):
		return "invitation is no longer pending"
	case errors.Is(err, tripdomain.ErrParticipantExists):
		return "participant already exists"
	default:
		return "conflict"
	}
}

func isNotFoundError(err error) bool {
	switch {
	case errors.Is(err, ErrNotFound),
		errors.Is(err, authdomain.ErrUserNotFound),
		errors.Is(err, tripdomain.ErrNotFound),
		errors.Is(err, tripdomain.ErrParticipantNotFound),
		errors.Is(err, waypointdomain.ErrNotFound),
		errors.Is(err, invitationdomain.ErrNotFound),
		errors.Is(err, gorm.ErrRecordNotFound):
		return true
	default:
		return false
	}
}

func validationErrorCode(err error) string {
	if errors.Is(err, ErrInvalidRequest) {
		return "invalid_request"
	}
	return err.Error()
}

func validationErrorField(code string) string {
	if code == "invalid_request" {
		return "request"
	}
	if strings.HasPrefix(code, "invalid_") {
		return strings.TrimPrefix(code, "invalid_")
	}
	return ""
}

func validationErrorMessage(code string) string {
	switch code {
	case "invalid_request":
		return "invalid request"
	default:
		return "invalid value"
	}
}

func classifyErrorForLog(err error) (string, string) {
	_, payload := mapError(err)
	return payload.Type, firstErrorCode(payload)
}

func firstErrorCode(payload errorPayload) string {
	if len(payload.Errors) > 0 {
		return payload.Errors[0].Code
	}
	return payload.Type
}
