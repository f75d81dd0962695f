package trip

import (
	"github.com/tripline/tripline/internal/trip/repository"
	"github.com/tripline/tripline/internal/trip/service"
	"go.uber.org/fx"
)

var Module = fx.Module("trip.service",
	fx.Provide(repository.NewRepository),
	fx.Provide(service.NewService),
)
