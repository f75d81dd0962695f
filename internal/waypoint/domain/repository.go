package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

type Repository interface {
	Create(ctx context.Context, waypoint *Waypoint) error
	FindByID(ctx context.Context, tripID, waypointID snowflake.ID) (*Waypoint, error)
	ListByTrip(ctx context.Context, tripID snowflake.ID) ([]*Waypoint, error)
	UpdateFields(ctx context.Context, waypointID snowflake.ID, fields map[string]any) error
	Delete(ctx context.Context, waypointID snowflake.ID) error
}
