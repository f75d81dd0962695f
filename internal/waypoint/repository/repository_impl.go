package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"github.com/tripline/tripline/internal/waypoint/domain"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, waypoint *domain.Waypoint) error {
	return r.db.WithContext(ctx).Create(waypoint).Error
}

func (r *repo) FindByID(ctx context.Context, tripID, waypointID snowflake.ID) (*domain.Waypoint, error) {
	var waypoint domain.Waypoint
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND id = ?", tripID, waypointID).
		First(&waypoint).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &waypoint, nil
}

func (r *repo) ListByTrip(ctx context.Context, tripID snowflake.ID) ([]*domain.Waypoint, error) {
	var waypoints []*domain.Waypoint
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("order_index ASC, id ASC").
		Find(&waypoints).Error
	if err != nil {
		return nil, err
	}
	return waypoints, nil
}

func (r *repo) UpdateFields(ctx context.Context, waypointID snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Waypoint{}).Where("id = ?", waypointID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, waypointID snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", waypointID).Delete(&domain.Waypoint{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}
