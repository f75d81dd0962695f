package invitation

import (
	"github.com/tripline/tripline/internal/invitation/repository"
	"github.com/tripline/tripline/internal/invitation/service"
	"go.uber.org/fx"
)

var Module = fx.Module("invitation.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
