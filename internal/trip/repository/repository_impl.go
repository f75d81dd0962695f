package repository

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	invitationdomain "github.com/tripline/tripline/internal/invitation/domain"
	"github.com/tripline/tripline/internal/trip/domain"
	waypointdomain "github.com/tripline/tripline/internal/waypoint/domain"
	pkgdb "github.com/tripline/tripline/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) CreateWithOwner(ctx context.Context, trip *domain.Trip, owner *domain.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(trip).Error; err != nil {
			return err
		}
		return tx.Create(owner).Error
	})
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Trip, error) {
	var trip domain.Trip
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&trip).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &trip, nil
}

func (r *repo) ListVisible(ctx context.Context, userID snowflake.ID) ([]*domain.Trip, error) {
	var trips []*domain.Trip
	err := r.db.WithContext(ctx).
		Where("owner_id = ? OR is_public = ? OR id IN (?)",
			userID,
			true,
			r.db.Model(&domain.Participant{}).Select("trip_id").Where("user_id = ?", userID),
		).
		Order("created_at DESC, id DESC").
		Find(&trips).Error
	if err != nil {
		return nil, err
	}
	return trips, nil
}

func (r *repo) UpdateFields(ctx context.Context, id snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Trip{}).Where("id = ?", id).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func (r *repo) Delete(ctx context.Context, id snowflake.ID) error {
	// Child rows are removed in the same transaction as the trip, so the
	// delete behaves identically on dialects without foreign key cascades.
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("trip_id = ?", id).Delete(&invitationdomain.Invitation{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", id).Delete(&waypointdomain.Waypoint{}).Error; err != nil {
			return err
		}
		if err := tx.Where("trip_id = ?", id).Delete(&domain.Participant{}).Error; err != nil {
			return err
		}
		res := tx.Where("id = ?", id).Delete(&domain.Trip{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
}

func (r *repo) Participants(ctx context.Context, tripID snowflake.ID) ([]*domain.Participant, error) {
	var participants []*domain.Participant
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("joined_at ASC, id ASC").
		Find(&participants).Error
	if err != nil {
		return nil, err
	}
	return participants, nil
}

func (r *repo) FindParticipant(ctx context.Context, tripID, userID snowflake.ID) (*domain.Participant, error) {
	var participant domain.Participant
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND user_id = ?", tripID, userID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repo) FindParticipantByID(ctx context.Context, tripID, participantID snowflake.ID) (*domain.Participant, error) {
	var participant domain.Participant
	err := r.db.WithContext(ctx).
		Where("trip_id = ? AND id = ?", tripID, participantID).
		First(&participant).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrParticipantNotFound
	}
	if err != nil {
		return nil, err
	}
	return &participant, nil
}

func (r *repo) AddParticipant(ctx context.Context, participant *domain.Participant) error {
	err := r.db.WithContext(ctx).Create(participant).Error
	if pkgdb.IsDuplicateKeyErr(err) {
		return domain.ErrParticipantExists
	}
	return err
}

func (r *repo) UpdateParticipantFields(ctx context.Context, participantID snowflake.ID, fields map[string]any) error {
	tx := r.db.WithContext(ctx).Model(&domain.Participant{}).Where("id = ?", participantID).Updates(fields)
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}

func (r *repo) RemoveParticipant(ctx context.Context, participantID snowflake.ID) error {
	tx := r.db.WithContext(ctx).Where("id = ?", participantID).Delete(&domain.Participant{})
	if tx.Error != nil {
		return tx.Error
	}
	if tx.RowsAffected == 0 {
		return domain.ErrParticipantNotFound
	}
	return nil
}
