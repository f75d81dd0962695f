package providers

import (
	"github.com/tripline/tripline/internal/providers/pdf"
	"github.com/tripline/tripline/internal/providers/staticmap"
	"go.uber.org/fx"
)

var Module = fx.Module("providers",
	fx.Provide(pdf.New),
	fx.Provide(staticmap.New),
)
