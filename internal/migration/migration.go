// Package migration keeps the schema in sync at startup via gorm
// auto-migration.
package migration

import (
	"context"

	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	authdomain "github.com/smetelco/portal/internal/auth/domain"
	companydomain "github.com/smetelco/portal/internal/company/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	orderdomain "github.com/smetelco/portal/internal/order/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func Run(lc fx.Lifecycle, db *gorm.DB, log *zap.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Named("migration").Info("running auto migration")
			return db.WithContext(ctx).AutoMigrate(
				&companydomain.Company{},
				&linedomain.Line{},
				&usagedomain.UsageEvent{},
				&orderdomain.Order{},
				&auditdomain.SystemLogEntry{},
				&authdomain.User{},
				&authdomain.OTPCode{},
			)
		},
	})
}

var Module = fx.Module("migration",
	fx.Invoke(Run),
)
