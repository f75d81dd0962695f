package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
)

type Service interface {
	List(ctx context.Context, userID, tripID snowflake.ID) ([]*Waypoint, error)
	Get(ctx context.Context, userID, tripID, waypointID snowflake.ID) (*Waypoint, error)
	Create(ctx context.Context, userID, tripID snowflake.ID, req CreateWaypointRequest) (*Waypoint, error)
	Update(ctx context.Context, userID, tripID, waypointID snowflake.ID, req UpdateWaypointRequest) (*Waypoint, error)
	Delete(ctx context.Context, userID, tripID, waypointID snowflake.ID) error
}

type CreateWaypointRequest struct {
	Name             string
	Description      string
	Latitude         float64
	Longitude        float64
	Category         Category
	Address          string
	Notes            string
	OrderIndex       int
	PlannedArrival   *time.Time
	PlannedDeparture *time.Time
	ActualArrival    *time.Time
	ActualDeparture  *time.Time
}

type UpdateWaypointRequest struct {
	Name             *string
	Description      *string
	Latitude         *float64
	Longitude        *float64
	Category         *Category
	Address          *string
	Notes            *string
	OrderIndex       *int
	PlannedArrival   *time.Time
	PlannedDeparture *time.Time
	ActualArrival    *time.Time
	ActualDeparture  *time.Time
}
