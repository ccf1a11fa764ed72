package usage

import (
	"github.com/smetelco/portal/internal/usage/repository"
	"github.com/smetelco/portal/internal/usage/service"
	"go.uber.org/fx"
)

var Module = fx.Module("usage.service",
	fx.Provide(repository.Provide),
	fx.Provide(service.NewService),
)
