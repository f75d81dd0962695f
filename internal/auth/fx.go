package auth

import (
	"github.com/tripline/tripline/internal/auth/repository"
	"github.com/tripline/tripline/internal/auth/service"
	"github.com/tripline/tripline/internal/auth/session"
	"go.uber.org/fx"
)

var Module = fx.Module("auth.service",
	fx.Provide(repository.New),
	fx.Provide(service.New),
	fx.Provide(session.NewManager),
)
