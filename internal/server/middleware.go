package server

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

const (
	contextUserIDKey    = "user_id"
	contextUserEmailKey = "user_email"
	contextIsAdminKey   = "is_admin"
)

func CORS() gin.HandlerFunc {
	cfg := cors.DefaultConfig()
	cfg.AllowAllOrigins = false
	cfg.AllowOriginFunc = func(origin string) bool { return true }
	cfg.AllowCredentials = true
	cfg.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "X-Request-Id"}
	cfg.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	cfg.MaxAge = 12 * time.Hour
	return cors.New(cfg)
}

// AuthRequired resolves the session cookie into the current user and stores
// the identity on the gin context.
func (s *Server) AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := s.sessions.ReadToken(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		user, _, err := s.authsvc.Authenticate(c.Request.Context(), token)
		if err != nil {
			s.sessions.Clear(c)
			AbortWithError(c, err)
			return
		}

		c.Set(contextUserIDKey, user.ID)
		c.Set(contextUserEmailKey, user.Email)
		c.Set(contextIsAdminKey, user.IsAdmin)
		c.Next()
	}
}

// AdminAction gates a route on the platform RBAC policy for the calling user.
func (s *Server) AdminAction(object, action string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := currentUserID(c)
		if !ok {
			AbortWithError(c, ErrUnauthorized)
			return
		}

		actor := "user:" + userID.String()
		if err := s.authzSvc.Authorize(c.Request.Context(), actor, object, action); err != nil {
			AbortWithError(c, err)
			return
		}
		c.Next()
	}
}

func currentUserID(c *gin.Context) (snowflake.ID, bool) {
	value, ok := c.Get(contextUserIDKey)
	if !ok {
		return 0, false
	}
	id, ok := value.(snowflake.ID)
	return id, ok
}

func currentUserEmail(c *gin.Context) (string, bool) {
	value, ok := c.Get(contextUserEmailKey)
	if !ok {
		return "", false
	}
	email, ok := value.(string)
	return email, ok
}
