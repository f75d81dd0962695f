package seed

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	"github.com/tripline/tripline/internal/auth/password"
	"gorm.io/gorm"
)

const (
	defaultAdminEmail    = "admin@tripline.local"
	defaultAdminPassword = "change-me-now"
	defaultAdminDisplay  = "Tripline Admin"
)

// EnsureAdminUser seeds a platform admin account so a fresh install is
// reachable. Credentials come from config; defaults are for local use only.
func EnsureAdminUser(db *gorm.DB, email, plaintext string) error {
	if db == nil {
		return errors.New("seed database handle is required")
	}

	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		email = defaultAdminEmail
	}
	if strings.TrimSpace(plaintext) == "" {
		plaintext = defaultAdminPassword
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user authdomain.User
		err := tx.WithContext(ctx).Where("LOWER(email) = ?", email).First(&user).Error
		if err == nil {
			if user.IsAdmin {
				return nil
			}
			return tx.WithContext(ctx).Model(&authdomain.User{}).
				Where("id = ?", user.ID).
				Update("is_admin", true).Error
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := password.Hash(plaintext)
		if err != nil {
			return err
		}

		now := time.Now().UTC()
		user = authdomain.User{
			ID:           node.Generate(),
			Email:        email,
			DisplayName:  defaultAdminDisplay,
			PasswordHash: hashed,
			IsAdmin:      true,
			CreatedAt:    now,
			UpdatedAt:    now,
		}
		return tx.WithContext(ctx).Create(&user).Error
	})
}
