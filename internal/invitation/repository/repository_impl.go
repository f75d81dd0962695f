package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tripline/tripline/internal/invitation/domain"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	pkgdb "github.com/tripline/tripline/pkg/db"
	"gorm.io/gorm"
)

type repo struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) domain.Repository {
	return &repo{db: db}
}

func (r *repo) Create(ctx context.Context, invitation *domain.Invitation) error {
	err := r.db.WithContext(ctx).Create(invitation).Error
	if pkgdb.IsDuplicateKeyErr(err) {
		return domain.ErrAlreadyInvited
	}
	return err
}

func (r *repo) FindByID(ctx context.Context, id snowflake.ID) (*domain.Invitation, error) {
	var invitation domain.Invitation
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&invitation).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, domain.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &invitation, nil
}

func (r *repo) ListByTrip(ctx context.Context, tripID snowflake.ID) ([]*domain.Invitation, error) {
	var invitations []*domain.Invitation
	err := r.db.WithContext(ctx).
		Where("trip_id = ?", tripID).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repo) ListPendingByEmail(ctx context.Context, email string) ([]*domain.Invitation, error) {
	var invitations []*domain.Invitation
	err := r.db.WithContext(ctx).
		Where("LOWER(invited_email) = ? AND status = ?", strings.ToLower(email), domain.StatusPending).
		Order("created_at DESC, id DESC").
		Find(&invitations).Error
	if err != nil {
		return nil, err
	}
	return invitations, nil
}

func (r *repo) HasPending(ctx context.Context, tripID snowflake.ID, email string) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&domain.Invitation{}).
		Where("trip_id = ? AND LOWER(invited_email) = ? AND status = ?",
			tripID, strings.ToLower(email), domain.StatusPending).
		Count(&count).Error
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *repo) MarkResponded(ctx context.Context, id snowflake.ID, status domain.Status, respondedBy snowflake.ID, respondedAt time.Time) error {
	return r.markResponded(r.db.WithContext(ctx), id, status, respondedBy, respondedAt)
}

func (r *repo) AcceptWithParticipant(ctx context.Context, id snowflake.ID, respondedBy snowflake.ID, respondedAt time.Time, participant *tripdomain.Participant) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := r.markResponded(tx, id, domain.StatusAccepted, respondedBy, respondedAt); err != nil {
			return err
		}

		err := tx.Create(participant).Error
		if pkgdb.IsDuplicateKeyErr(err) {
			// Already on the roster; the accept still counts.
			return nil
		}
		return err
	})
}

// markResponded guards the transition with status = Pending so a lost race
// surfaces as ErrNotPending instead of a double response.
func (r *repo) markResponded(tx *gorm.DB, id snowflake.ID, status domain.Status, respondedBy snowflake.ID, respondedAt time.Time) error {
	res := tx.Model(&domain.Invitation{}).
		Where("id = ? AND status = ?", id, domain.StatusPending).
		Updates(map[string]any{
			"status":       status,
			"responded_by": respondedBy,
			"responded_at": respondedAt,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		var invitation domain.Invitation
		if err := tx.Where("id = ?", id).First(&invitation).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.ErrNotFound
			}
			return err
		}
		return domain.ErrNotPending
	}
	return nil
}
