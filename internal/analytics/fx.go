package analytics

import (
	"github.com/smetelco/portal/internal/analytics/service"
	"go.uber.org/fx"
)

var Module = fx.Module("analytics.service",
	fx.Provide(service.NewRecommender),
)
