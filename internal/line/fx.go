package line

import (
	"github.com/smetelco/portal/internal/line/service"
	"go.uber.org/fx"
)

var Module = fx.Module("line.service",
	fx.Provide(service.NewService),
)
