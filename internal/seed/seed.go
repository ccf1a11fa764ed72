// Package seed loads a demo dataset for development and sales demos. It is
// never wired in production.
package seed

import (
	"context"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	authdomain "github.com/smetelco/portal/internal/auth/domain"
	"github.com/smetelco/portal/internal/clock"
	"github.com/smetelco/portal/internal/config"
	companydomain "github.com/smetelco/portal/internal/company/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	orderdomain "github.com/smetelco/portal/internal/order/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const demoContractNumber = "AL-2024-0042"

type Summary struct {
	CompanyID snowflake.ID `json:"companyId"`
	Lines     int          `json:"lines"`
	Events    int          `json:"events"`
	Orders    int          `json:"orders"`
	Users     int          `json:"users"`
	Skipped   bool         `json:"skipped"`
}

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
}

type Seeder struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
}

func NewSeeder(p Params) *Seeder {
	return &Seeder{
		db:    p.DB,
		log:   p.Log.Named("seed"),
		genID: p.GenID,
		clock: p.Clock,
	}
}

// Seed loads the demo company with its lines, current-cycle usage, orders
// and audit history. Re-running against an already seeded database is a
// no-op.
func (s *Seeder) Seed(ctx context.Context) (*Summary, error) {
	var existing companydomain.Company
	err := s.db.WithContext(ctx).
		Where("contract_number = ?", demoContractNumber).
		First(&existing).Error
	if err == nil {
		return &Summary{CompanyID: existing.ID, Skipped: true}, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	summary := &Summary{}
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := s.clock.Now().UTC()

		company := companydomain.Company{
			ID:             s.genID.Generate(),
			Name:           "Alba Logistics Sh.p.k.",
			ContractNumber: demoContractNumber,
			MonthlyBudget:  450,
			CreatedAt:      now,
			UpdatedAt:      now,
		}
		if err := tx.Create(&company).Error; err != nil {
			return err
		}
		summary.CompanyID = company.ID

		lines := []linedomain.Line{
			s.demoLine(company.ID, "+355691234001", "Arben Hoxha", "manager", "Business Pro", 34.99, 20480, 1000, 500, 60),
			s.demoLine(company.ID, "+355691234002", "Elira Kola", "sales", "Business Standard", 24.99, 10240, 800, 300, 45),
			s.demoLine(company.ID, "+355691234003", "Gentian Shehu", "driver", "Business Basic", 14.99, 5120, 500, 200, 30),
			s.demoLine(company.ID, "+355691234004", "Mirela Dervishi", "support", "Business Standard", 24.99, 10240, 800, 300, 45),
			s.demoLine(company.ID, "+355691234005", "Besnik Rama", "driver", "Business Basic", 14.99, 5120, 500, 200, 30),
		}
		for i := range lines {
			if err := tx.Create(&lines[i]).Error; err != nil {
				return err
			}
		}
		summary.Lines = len(lines)

		// Usage spread over the current cycle; the first line sits above
		// its 80% data threshold so the dashboard shows a live alert.
		usagePlans := []struct {
			line    *linedomain.Line
			dataMB  int64
			minutes int64
			sms     int64
		}{
			{&lines[0], 17500, 640, 120},
			{&lines[1], 4100, 310, 45},
			{&lines[2], 2600, 420, 18},
			{&lines[3], 6300, 280, 64},
			{&lines[4], 900, 150, 7},
		}
		for _, plan := range usagePlans {
			for _, portion := range []int64{60, 30, 10} {
				event := usagedomain.UsageEvent{
					ID:          s.genID.Generate(),
					LineID:      plan.line.ID,
					DataUsedMB:  plan.dataMB * portion / 100,
					CallMinutes: plan.minutes * portion / 100,
					SMSCount:    plan.sms * portion / 100,
					CreatedAt:   now,
				}
				if err := tx.Create(&event).Error; err != nil {
					return err
				}
				summary.Events++
			}
		}

		orders := []orderdomain.Order{
			{
				ID:     s.genID.Generate(),
				LineID: lines[0].ID,
				Type:   orderdomain.TypePlanChange,
				Status: orderdomain.StatusPending,
				Payload: datatypes.JSONMap{
					"previousPlan": "Business Pro",
					"newPlan":      "Business Pro Max",
					"monthlyFee":   44.99,
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:     s.genID.Generate(),
				LineID: lines[2].ID,
				Type:   orderdomain.TypeServiceActivation,
				Status: orderdomain.StatusCompleted,
				Payload: datatypes.JSONMap{
					"packageId":   "roaming-eu-5gb",
					"packageName": "EU Roaming 5GB",
					"price":       9.99,
					"validity":    "30d",
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
			{
				ID:     s.genID.Generate(),
				LineID: lines[3].ID,
				Type:   orderdomain.TypeBudgetIncrease,
				Status: orderdomain.StatusInProgress,
				Payload: datatypes.JSONMap{
					"previousLimit": 45.0,
					"newLimit":      60.0,
					"reason":        "seasonal campaign",
				},
				CreatedAt: now,
				UpdatedAt: now,
			},
		}
		for i := range orders {
			if err := tx.Create(&orders[i]).Error; err != nil {
				return err
			}
		}
		summary.Orders = len(orders)

		logs := []auditdomain.SystemLogEntry{
			{
				ID:        s.genID.Generate(),
				Action:    "Order created",
				User:      "admin",
				Details:   datatypes.JSONMap{"orderId": orders[0].ID.String(), "type": "plan_change"},
				CreatedAt: now,
			},
			{
				ID:        s.genID.Generate(),
				Action:    "Order completed",
				User:      "admin",
				Details:   datatypes.JSONMap{"orderId": orders[1].ID.String(), "type": "service_activation"},
				CreatedAt: now,
			},
		}
		for i := range logs {
			if err := tx.Create(&logs[i]).Error; err != nil {
				return err
			}
		}

		users := []struct {
			username string
			password string
			role     string
			phone    string
		}{
			{"admin", "admin123", authdomain.RoleAdminIT, ""},
			{"sales", "sales123", authdomain.RoleSalesSupport, ""},
			{"arben", "arben123", authdomain.RoleSMEAdmin, "+355691234001"},
		}
		for _, u := range users {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			user := authdomain.User{
				ID:           s.genID.Generate(),
				Username:     u.username,
				PasswordHash: string(hash),
				Role:         u.role,
				Phone:        u.phone,
				CreatedAt:    now,
				UpdatedAt:    now,
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}
			summary.Users++
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("demo data seeded",
		zap.String("company_id", summary.CompanyID.String()),
		zap.Int("lines", summary.Lines),
		zap.Int("events", summary.Events),
	)
	return summary, nil
}

func (s *Seeder) demoLine(companyID snowflake.ID, msisdn, user, role, plan string, fee float64, data, minutes, smsCount int64, budget float64) linedomain.Line {
	now := s.clock.Now().UTC()
	return linedomain.Line{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		MSISDN:          msisdn,
		User:            user,
		Role:            role,
		PlanName:        plan,
		MonthlyFee:      fee,
		IncludedData:    data,
		IncludedMinutes: minutes,
		IncludedSMS:     smsCount,
		BudgetLimit:     budget,
		Status:          linedomain.StatusActive,
		DataThreshold:   linedomain.DefaultAlertThreshold,
		CallThreshold:   linedomain.DefaultAlertThreshold,
		SMSThreshold:    linedomain.DefaultAlertThreshold,
		CreatedAt:       now,
		UpdatedAt:       now,
	}
}

// autoSeed loads the demo dataset on startup when SEED_DEMO_DATA is set.
// The seeder itself is idempotent, so restarts are harmless.
func autoSeed(lc fx.Lifecycle, cfg config.Config, seeder *Seeder) {
	if !cfg.SeedDemoData {
		return
	}
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			summary, err := seeder.Seed(ctx)
			if err != nil {
				return err
			}
			seeder.log.Info("demo data seeded on start",
				zap.Bool("skipped", summary.Skipped),
				zap.Int("lines", summary.Lines),
			)
			return nil
		},
	})
}

var Module = fx.Module("seed",
	fx.Provide(NewSeeder),
	fx.Invoke(autoSeed),
)
