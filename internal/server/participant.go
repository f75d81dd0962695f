package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
)

type AddParticipantRequest struct {
	Email   string `json:"email"`
	Role    int16  `json:"role"`
	CanEdit bool   `json:"can_edit"`
}

type UpdateParticipantRequest struct {
	Role    *int16 `json:"role"`
	CanEdit *bool  `json:"can_edit"`
}

func (s *Server) ListParticipants(c *gin.Context) {
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

	participants, err := s.tripSvc.ListParticipants(c.Request.Context(), userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"participants": toParticipantResponses(participants)})
}

func (s *Server) AddParticipant(c *gin.Context) {
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

	var req AddParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	participant, err := s.tripSvc.AddParticipant(c.Request.Context(), userID, tripID, tripdomain.AddParticipantRequest{
		Email:   req.Email,
		Role:    tripdomain.Role(req.Role),
		CanEdit: req.CanEdit,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toParticipantResponse(participant))
}

func (s *Server) UpdateParticipant(c *gin.Context) {
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
	participantID, ok := pathID(c, "participantId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req UpdateParticipantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := tripdomain.UpdateParticipantRequest{CanEdit: req.CanEdit}
	if req.Role != nil {
		role := tripdomain.Role(*req.Role)
		update.Role = &role
	}

	participant, err := s.tripSvc.UpdateParticipant(c.Request.Context(), userID, tripID, participantID, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toParticipantResponse(participant))
}

func (s *Server) RemoveParticipant(c *gin.Context) {
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
	participantID, ok := pathID(c, "participantId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.tripSvc.RemoveParticipant(c.Request.Context(), userID, tripID, participantID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
