package server

import (
	"context"
	"net/http"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
)

type CreateInvitationRequest struct {
	Email   string `json:"email"`
	Role    int16  `json:"role"`
	CanEdit bool   `json:"can_edit"`
	Message string `json:"message"`
}

func (s *Server) ListTripInvitations(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	invitations, err := s.invitationSvc.ListForTrip(c.Request.Context(), userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": toInvitationResponses(invitations)})
}

func (s *Server) CreateInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req CreateInvitationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	invitation, err := s.invitationSvc.Create(c.Request.Context(), userID, tripID, invitationdomain.CreateInvitationRequest{
		Email:   req.Email,
		Role:    tripdomain.Role(req.Role),
		CanEdit: req.CanEdit,
		Message: req.Message,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toInvitationResponse(invitation))
}

// ListMyInvitations returns pending invitations addressed to the caller's
// email.
func (s *Server) ListMyInvitations(c *gin.Context) {
	email, ok := currentUserEmail(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}

	invitations, err := s.invitationSvc.ListMine(c.Request.Context(), email)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"invitations": toInvitationResponses(invitations)})
}

func (s *Server) AcceptInvitation(c *gin.Context) {
	s.respondToInvitation(c, s.invitationSvc.Accept)
}

func (s *Server) DeclineInvitation(c *gin.Context) {
	s.respondToInvitation(c, s.invitationSvc.Decline)
}

func (s *Server) respondToInvitation(c *gin.Context, respond func(ctx context.Context, userID snowflake.ID, email string, invitationID snowflake.ID) (*invitationdomain.Invitation, error)) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	email, ok := currentUserEmail(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	invitationID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	invitation, err := respond(c.Request.Context(), userID, email, invitationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInvitationResponse(invitation))
}

func (s *Server) CancelInvitation(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	invitationID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	invitation, err := s.invitationSvc.Cancel(c.Request.Context(), userID, invitationID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toInvitationResponse(invitation))
}
