package service

import (
	"context"
	"fmt"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	companydomain "github.com/smetelco/portal/internal/company/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type usageStub struct {
	totals map[string]usagedomain.CycleTotals
}

func (u *usageStub) Ingest(ctx context.Context, req usagedomain.IngestRequest) (*usagedomain.IngestResult, error) {
	return nil, nil
}

func (u *usageStub) CurrentCycle(ctx context.Context, lineID string) (usagedomain.CycleTotals, error) {
	return u.totals[lineID], nil
}

func (u *usageStub) History(ctx context.Context, lineID string, months int) ([]usagedomain.MonthlyTotals, error) {
	return nil, nil
}

func (u *usageStub) CompanyUsage(ctx context.Context, companyID string) ([]usagedomain.LineUsageSummary, error) {
	return nil, nil
}

func newFixture(t *testing.T, name string) (*gorm.DB, *snowflake.Node, *usageStub) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&companydomain.Company{}, &linedomain.Line{}); err != nil {
		t.Fatal(err)
	}
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	return db, node, &usageStub{totals: map[string]usagedomain.CycleTotals{}}
}

func TestEstimateCompany_UnknownCompany(t *testing.T) {
	db, node, usage := newFixture(t, "billing_unknown")
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Usage: usage})

	if _, err := svc.EstimateCompany(context.Background(), node.Generate().String()); err != companydomain.ErrNotFound {
		t.Fatalf("expected company_not_found, got %v", err)
	}
}

func TestEstimateCompany_LinearRatesAndRounding(t *testing.T) {
	db, node, usage := newFixture(t, "billing_rates")
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Usage: usage})

	company := companydomain.Company{ID: node.Generate(), Name: "Alba Logistics", ContractNumber: "AL-1"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatal(err)
	}
	line := linedomain.Line{
		ID:              node.Generate(),
		CompanyID:       company.ID,
		MSISDN:          "+355691000010",
		User:            "Arben Hoxha",
		PlanName:        "Business Pro",
		MonthlyFee:      20,
		IncludedData:    1000,
		IncludedMinutes: 100,
		IncludedSMS:     50,
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatal(err)
	}
	usage.totals[line.ID.String()] = usagedomain.CycleTotals{
		DataUsedMB:  1100,
		CallMinutes: 120,
		SMSCount:    60,
	}

	estimate, err := svc.EstimateCompany(context.Background(), company.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(estimate.Lines) != 1 {
		t.Fatalf("expected one line estimate, got %d", len(estimate.Lines))
	}

	// Raw totals times the per-unit rates; allowances and the monthly fee
	// play no part.
	le := estimate.Lines[0]
	if !le.DataCost.Equal(decimal.NewFromFloat(110.00)) {
		t.Fatalf("expected data cost 110.00, got %s", le.DataCost)
	}
	if !le.CallCost.Equal(decimal.NewFromFloat(6.00)) {
		t.Fatalf("expected call cost 6.00, got %s", le.CallCost)
	}
	if !le.SMSCost.Equal(decimal.NewFromFloat(1.20)) {
		t.Fatalf("expected sms cost 1.20, got %s", le.SMSCost)
	}
	if !le.Total.Equal(decimal.NewFromFloat(117.20)) {
		t.Fatalf("expected line total 117.20, got %s", le.Total)
	}
	// Company total rounds to the nearest whole unit.
	if !estimate.Total.Equal(decimal.NewFromInt(117)) {
		t.Fatalf("expected company total 117, got %s", estimate.Total)
	}
}

func TestEstimateCompany_NoUsageCostsNothing(t *testing.T) {
	db, node, usage := newFixture(t, "billing_zero")
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Usage: usage})

	company := companydomain.Company{ID: node.Generate(), Name: "Alba Logistics", ContractNumber: "AL-2"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatal(err)
	}
	line := linedomain.Line{
		ID:              node.Generate(),
		CompanyID:       company.ID,
		MSISDN:          "+355691000011",
		MonthlyFee:      24.99,
		IncludedData:    5000,
		IncludedMinutes: 500,
		IncludedSMS:     100,
	}
	if err := db.Create(&line).Error; err != nil {
		t.Fatal(err)
	}

	estimate, err := svc.EstimateCompany(context.Background(), company.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if !estimate.Lines[0].Total.Equal(decimal.Zero) {
		t.Fatalf("no events this cycle must cost nothing, got %s", estimate.Lines[0].Total)
	}
	if !estimate.Total.Equal(decimal.Zero) {
		t.Fatalf("expected zero company total, got %s", estimate.Total)
	}
}

func TestEstimateCompany_SumsAcrossLines(t *testing.T) {
	db, node, usage := newFixture(t, "billing_sum")
	svc := NewService(Params{DB: db, Log: zap.NewNop(), Usage: usage})

	company := companydomain.Company{ID: node.Generate(), Name: "Alba Logistics", ContractNumber: "AL-3"}
	if err := db.Create(&company).Error; err != nil {
		t.Fatal(err)
	}
	for _, msisdn := range []string{"+355691000012", "+355691000013"} {
		line := linedomain.Line{ID: node.Generate(), CompanyID: company.ID, MSISDN: msisdn}
		if err := db.Create(&line).Error; err != nil {
			t.Fatal(err)
		}
		// 50.00 + 2.50 + 0.20 = 52.70 per line.
		usage.totals[line.ID.String()] = usagedomain.CycleTotals{
			DataUsedMB:  500,
			CallMinutes: 50,
			SMSCount:    10,
		}
	}

	estimate, err := svc.EstimateCompany(context.Background(), company.ID.String())
	if err != nil {
		t.Fatal(err)
	}
	if len(estimate.Lines) != 2 {
		t.Fatalf("expected two line estimates, got %d", len(estimate.Lines))
	}
	// 2 x 52.70 = 105.40, rounded to 105.
	if !estimate.Total.Equal(decimal.NewFromInt(105)) {
		t.Fatalf("expected company total 105, got %s", estimate.Total)
	}
}
