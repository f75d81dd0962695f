package authorization

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/casbin/casbin/v2"
	"github.com/casbin/casbin/v2/model"
	gormadapter "github.com/casbin/gorm-adapter/v3"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

//go:embed model.conf
var modelText string

const (
	ObjectUser       = "user"
	ObjectTrip       = "trip"
	ObjectInvitation = "invitation"
)

const (
	ActionUserView   = "user.view"
	ActionUserUpdate = "user.update"
	ActionUserDelete = "user.delete"

	ActionTripView   = "trip.view"
	ActionTripDelete = "trip.delete"

	ActionInvitationView = "invitation.view"

	roleAdmin = "role:admin"
)

var (
	ErrInvalidActor  = errors.New("invalid actor")
	ErrInvalidObject = errors.New("invalid object")
	ErrInvalidAction = errors.New("invalid action")
	ErrForbidden     = errors.New("forbidden")
)

// Service answers platform-level authorization questions for the admin
// surface. Trip membership checks live with the trip domain.
type Service interface {
	Authorize(ctx context.Context, actor string, object string, action string) error
}

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	Enforcer *casbin.SyncedEnforcer
}

type ServiceImpl struct {
	db       *gorm.DB
	log      *zap.Logger
	enforcer *casbin.SyncedEnforcer
}

func NewEnforcer(db *gorm.DB) (*casbin.SyncedEnforcer, error) {
	adapter, err := gormadapter.NewAdapterByDB(db)
	if err != nil {
		return nil, err
	}
	m, err := model.NewModelFromString(modelText)
	if err != nil {
		return nil, err
	}
	enforcer, err := casbin.NewSyncedEnforcer(m, adapter)
	if err != nil {
		return nil, err
	}
	enforcer.EnableAutoSave(true)
	enforcer.EnableAutoBuildRoleLinks(true)
	if err := enforcer.LoadPolicy(); err != nil {
		return nil, err
	}
	if err := seedPolicies(enforcer); err != nil {
		return nil, err
	}
	enforcer.BuildRoleLinks()
	return enforcer, nil
}

func NewService(p Params) Service {
	return &ServiceImpl{
		db:       p.DB,
		log:      p.Log.Named("authorization.service"),
		enforcer: p.Enforcer,
	}
}

func (s *ServiceImpl) Authorize(ctx context.Context, actor string, object string, action string) error {
	actor = strings.TrimSpace(actor)
	if actor == "" {
		return ErrInvalidActor
	}
	object = strings.TrimSpace(object)
	if object == "" {
		return ErrInvalidObject
	}
	action = strings.TrimSpace(action)
	if action == "" {
		return ErrInvalidAction
	}

	subject, err := s.resolveActor(ctx, actor)
	if err != nil {
		return err
	}

	allowed, err := s.enforcer.Enforce(subject, object, action)
	if err != nil {
		return err
	}
	if !allowed {
		s.log.Debug("authorization denied",
			zap.String("actor", actor),
			zap.String("object", object),
			zap.String("action", action),
		)
		return ErrForbidden
	}
	return nil
}

func (s *ServiceImpl) resolveActor(ctx context.Context, actor string) (string, error) {
	if actor == "system" {
		return roleAdmin, nil
	}
	if !strings.HasPrefix(actor, "user:") {
		return "", ErrInvalidActor
	}

	userID, err := snowflake.ParseString(strings.TrimPrefix(actor, "user:"))
	if err != nil || userID == 0 {
		return "", ErrInvalidActor
	}

	var row struct {
		IsAdmin bool `gorm:"column:is_admin"`
	}
	if err := s.db.WithContext(ctx).Raw(
		`SELECT is_admin FROM users WHERE id = ? LIMIT 1`, userID,
	).Scan(&row).Error; err != nil {
		return "", err
	}
	if !row.IsAdmin {
		return actor, nil
	}

	subject := fmt.Sprintf("user:%s", userID.String())
	if _, err := s.enforcer.AddGroupingPolicy(subject, roleAdmin); err != nil {
		return "", err
	}
	return subject, nil
}

func seedPolicies(enforcer *casbin.SyncedEnforcer) error {
	policies := [][]string{
		{roleAdmin, ObjectUser, ActionUserView},
		{roleAdmin, ObjectUser, ActionUserUpdate},
		{roleAdmin, ObjectUser, ActionUserDelete},
		{roleAdmin, ObjectTrip, ActionTripView},
		{roleAdmin, ObjectTrip, ActionTripDelete},
		{roleAdmin, ObjectInvitation, ActionInvitationView},
	}
	for _, policy := range policies {
		if _, err := enforcer.AddPolicy(policy[0], policy[1], policy[2]); err != nil {
			return err
		}
	}
	return nil
}

var Module = fx.Module("authorization.service",
	fx.Provide(NewEnforcer),
	fx.Provide(NewService),
)
