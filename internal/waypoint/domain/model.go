// Package domain contains core types for the waypoint service.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Category classifies a waypoint.
type Category int16

const (
	CategoryRestaurant    Category = 0
	CategoryAccommodation Category = 1
	CategoryAttraction    Category = 2
	CategoryGasStation    Category = 3
	CategoryParking       Category = 4
	CategoryOther         Category = 5
)

func (c Category) Valid() bool {
	return c >= CategoryRestaurant && c <= CategoryOther
}

// Waypoint is a geotagged stop on a trip. OrderIndex is the sort key;
// ties break by id.
type Waypoint struct {
	ID                snowflake.ID `gorm:"primaryKey"`
	TripID            snowflake.ID `gorm:"column:trip_id;not null;index:idx_waypoints_trip_order"`
	Name              string       `gorm:"type:text;not null"`
	Description       string       `gorm:"type:text;not null"`
	Latitude          float64      `gorm:"not null"`
	Longitude         float64      `gorm:"not null"`
	Category          Category     `gorm:"not null"`
	Address           string       `gorm:"type:text;not null;default:''"`
	Notes             string       `gorm:"type:text;not null;default:''"`
	OrderIndex        int          `gorm:"column:order_index;not null;default:0;index:idx_waypoints_trip_order"`
	PlannedArrival    *time.Time   `gorm:"column:planned_arrival"`
	PlannedDeparture  *time.Time   `gorm:"column:planned_departure"`
	ActualArrival     *time.Time   `gorm:"column:actual_arrival"`
	ActualDeparture   *time.Time   `gorm:"column:actual_departure"`
	CreatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
	UpdatedAt         time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

// TableName sets the database table name.
func (Waypoint) TableName() string { return "waypoints" }

// HasActuals reports whether any actual timestamp has been recorded.
func (w *Waypoint) HasActuals() bool {
	return w.ActualArrival != nil || w.ActualDeparture != nil
}
