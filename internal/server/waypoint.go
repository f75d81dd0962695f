package server

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
)

type CreateWaypointRequest struct {
	Name             string     `json:"name"`
	Description      string     `json:"description"`
	Latitude         float64    `json:"latitude"`
	Longitude        float64    `json:"longitude"`
	Category         int16      `json:"category"`
	Address          string     `json:"address"`
	Notes            string     `json:"notes"`
	OrderIndex       int        `json:"order_index"`
	PlannedArrival   *time.Time `json:"planned_arrival"`
	PlannedDeparture *time.Time `json:"planned_departure"`
	ActualArrival    *time.Time `json:"actual_arrival"`
	ActualDeparture  *time.Time `json:"actual_departure"`
}

type UpdateWaypointRequest struct {
	Name             *string    `json:"name"`
	Description      *string    `json:"description"`
	Latitude         *float64   `json:"latitude"`
	Longitude        *float64   `json:"longitude"`
	Category         *int16     `json:"category"`
	Address          *string    `json:"address"`
	Notes            *string    `json:"notes"`
	OrderIndex       *int       `json:"order_index"`
	PlannedArrival   *time.Time `json:"planned_arrival"`
	PlannedDeparture *time.Time `json:"planned_departure"`
	ActualArrival    *time.Time `json:"actual_arrival"`
	ActualDeparture  *time.Time `json:"actual_departure"`
}

func (s *Server) ListWaypoints(c *gin.Context) {
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

	waypoints, err := s.waypointSvc.List(c.Request.Context(), userID, tripID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"waypoints": toWaypointResponses(waypoints)})
}

func (s *Server) GetWaypoint(c *gin.Context) {
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
	waypointID, ok := pathID(c, "waypointId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	waypoint, err := s.waypointSvc.Get(c.Request.Context(), userID, tripID, waypointID)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWaypointResponse(waypoint))
}

func (s *Server) CreateWaypoint(c *gin.Context) {
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

	var req CreateWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	waypoint, err := s.waypointSvc.Create(c.Request.Context(), userID, tripID, waypointdomain.CreateWaypointRequest{
		Name:             req.Name,
		Description:      req.Description,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Category:         waypointdomain.Category(req.Category),
		Address:          req.Address,
		Notes:            req.Notes,
		OrderIndex:       req.OrderIndex,
		PlannedArrival:   req.PlannedArrival,
		PlannedDeparture: req.PlannedDeparture,
		ActualArrival:    req.ActualArrival,
		ActualDeparture:  req.ActualDeparture,
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toWaypointResponse(waypoint))
}

func (s *Server) UpdateWaypoint(c *gin.Context) {
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
	waypointID, ok := pathID(c, "waypointId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	var req UpdateWaypointRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	update := waypointdomain.UpdateWaypointRequest{
		Name:             req.Name,
		Description:      req.Description,
		Latitude:         req.Latitude,
		Longitude:        req.Longitude,
		Address:          req.Address,
		Notes:            req.Notes,
		OrderIndex:       req.OrderIndex,
		PlannedArrival:   req.PlannedArrival,
		PlannedDeparture: req.PlannedDeparture,
		ActualArrival:    req.ActualArrival,
		ActualDeparture:  req.ActualDeparture,
	}
	if req.Category != nil {
		category := waypointdomain.Category(*req.Category)
		update.Category = &category
	}

	waypoint, err := s.waypointSvc.Update(c.Request.Context(), userID, tripID, waypointID, update)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, toWaypointResponse(waypoint))
}

func (s *Server) DeleteWaypoint(c *gin.Context) {
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
	waypointID, ok := pathID(c, "waypointId")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	if err := s.waypointSvc.Delete(c.Request.Context(), userID, tripID, waypointID); err != nil {
		AbortWithError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
