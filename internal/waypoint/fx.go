package waypoint

import (
	"github.com/tripline/tripline/internal/waypoint/repository"
	"github.com/tripline/tripline/internal/waypoint/service"
	"go.uber.org/fx"
)

var Module = fx.Module("waypoint.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
