package server

import (
	"errors"
	"net/http"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-gonic/gin"
	authdomain "github.com/tripline/tripline/internal/auth/domain"
	tripdomain "github.com/tripline/tripline/internal/trip/domain"
	"github.com/tripline/tripline/pkg/db/pagination"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	adminDefaultPageSize = 50
	adminMaxPageSize     = 200
)

func adminPageParams(c *gin.Context) (int, snowflake.ID, error) {
	var page pagination.Pagination
	if err := c.ShouldBindQuery(&page); err != nil {
		return 0, 0, invalidRequestError()
	}

	limit := page.PageSize
	if limit <= 0 {
		limit = adminDefaultPageSize
	}
	if limit > adminMaxPageSize {
		limit = adminMaxPageSize
	}

	var afterID snowflake.ID
	if strings.TrimSpace(page.PageToken) != "" {
		cursor, err := pagination.DecodeCursor(page.PageToken)
		if err != nil {
			return 0, 0, newValidationError("page_token", "invalid_page_token", "malformed page token")
		}
		id, err := snowflake.ParseString(strings.TrimSpace(cursor.ID))
		if err != nil || id == 0 {
			return 0, 0, newValidationError("page_token", "invalid_page_token", "malformed page token")
		}
		afterID = id
	}
	return limit, afterID, nil
}

func idCursor(id snowflake.ID) string {
	token, err := pagination.EncodeCursor(pagination.Cursor{ID: id.String()})
	if err != nil {
		return ""
	}
	return token
}

func (s *Server) AdminListUsers(c *gin.Context) {
	limit, afterID, err := adminPageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var users []*authdomain.User
	query := s.db.WithContext(c.Request.Context()).Order("id ASC").Limit(limit + 1)
	if afterID != 0 {
		query = query.Where("id > ?", afterID)
	}
	if err := query.Find(&users).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	users, pageInfo := pagination.BuildCursorPageInfo(users, limit, func(user *authdomain.User) string {
		return idCursor(user.ID)
	})

	out := make([]UserResponse, 0, len(users))
	for _, user := range users {
		out = append(out, toUserResponse(user))
	}
	c.JSON(http.StatusOK, gin.H{"users": out, "page_info": pageInfo})
}

// AdminDeleteUser removes a user account. Admins cannot delete themselves.
func (s *Server) AdminDeleteUser(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	targetID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}
	if targetID == actorID {
		AbortWithError(c, newValidationError("id", "self_delete", "cannot delete your own account"))
		return
	}

	ctx := c.Request.Context()

	var user authdomain.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", targetID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AbortWithError(c, ErrNotFound)
			return
		}
		AbortWithError(c, err)
		return
	}

	// Owned trips go with the account; shared rows cascade in the schema.
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("owner_id = ?", targetID).Delete(&tripdomain.Trip{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&tripdomain.Participant{}).Error; err != nil {
			return err
		}
		if err := tx.Where("user_id = ?", targetID).Delete(&authdomain.Session{}).Error; err != nil {
			return err
		}
		return tx.Delete(&authdomain.User{}, "id = ?", targetID).Error
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("user deleted by admin",
		zap.String("actor_id", actorID.String()),
		zap.String("user_id", targetID.String()),
	)
	c.Status(http.StatusNoContent)
}

func (s *Server) AdminListTrips(c *gin.Context) {
	limit, afterID, err := adminPageParams(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	var trips []*tripdomain.Trip
	query := s.db.WithContext(c.Request.Context()).Order("id ASC").Limit(limit + 1)
	if afterID != 0 {
		query = query.Where("id > ?", afterID)
	}
	if err := query.Find(&trips).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	trips, pageInfo := pagination.BuildCursorPageInfo(trips, limit, func(trip *tripdomain.Trip) string {
		return idCursor(trip.ID)
	})

	c.JSON(http.StatusOK, gin.H{"trips": toTripResponses(trips), "page_info": pageInfo})
}

func (s *Server) AdminDeleteTrip(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		AbortWithError(c, ErrUnauthorized)
		return
	}
	tripID, ok := pathID(c, "id")
	if !ok {
		AbortWithError(c, ErrNotFound)
		return
	}

	ctx := c.Request.Context()

	var trip tripdomain.Trip
	if err := s.db.WithContext(ctx).First(&trip, "id = ?", tripID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			AbortWithError(c, ErrNotFound)
			return
		}
		AbortWithError(c, err)
		return
	}

	if err := s.db.WithContext(ctx).Delete(&tripdomain.Trip{}, "id = ?", tripID).Error; err != nil {
		AbortWithError(c, err)
		return
	}

	s.log.Info("trip deleted by admin",
		zap.String("actor_id", actorID.String()),
		zap.String("trip_id", tripID.String()),
	)
	c.Status(http.StatusNoContent)
}
