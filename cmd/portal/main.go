package main

import (
	"github.com/bwmarrin/snowflake"
	"github.com/smetelco/portal/internal/alert"
	"github.com/smetelco/portal/internal/analytics"
	"github.com/smetelco/portal/internal/audit"
	"github.com/smetelco/portal/internal/auth"
	"github.com/smetelco/portal/internal/billing"
	"github.com/smetelco/portal/internal/clock"
	"github.com/smetelco/portal/internal/company"
	"github.com/smetelco/portal/internal/config"
	"github.com/smetelco/portal/internal/line"
	"github.com/smetelco/portal/internal/logger"
	"github.com/smetelco/portal/internal/metrics"
	"github.com/smetelco/portal/internal/migration"
	"github.com/smetelco/portal/internal/order"
	"github.com/smetelco/portal/internal/ratelimit"
	"github.com/smetelco/portal/internal/seed"
	"github.com/smetelco/portal/internal/server"
	"github.com/smetelco/portal/internal/sms"
	"github.com/smetelco/portal/internal/usage"
	"github.com/smetelco/portal/pkg/db"
	"go.uber.org/fx"
)

func newSnowflakeNode() (*snowflake.Node, error) {
	return snowflake.NewNode(1)
}

func main() {
	fx.New(
		config.Module,
		logger.Module,
		clock.Module,
		db.Module,
		migration.Module,
		metrics.Module,
		sms.Module,
		ratelimit.Module,
		fx.Provide(newSnowflakeNode),
		audit.Module,
		company.Module,
		line.Module,
		alert.Module,
		usage.Module,
		order.Module,
		billing.Module,
		auth.Module,
		analytics.Module,
		seed.Module,
		server.Module,
	).Run()
}
