package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"github.com/smetelco/portal/internal/clock"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	orderdomain "github.com/smetelco/portal/internal/order/domain"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

type auditStub struct {
	actions []string
}

func (a *auditStub) Record(ctx context.Context, action, user string, details map[string]any) error {
	a.actions = append(a.actions, action)
	return nil
}

func (a *auditStub) List(ctx context.Context, req auditdomain.ListRequest) (*auditdomain.ListResponse, error) {
	return &auditdomain.ListResponse{}, nil
}

func (a *auditStub) count(action string) int {
	n := 0
	for _, got := range a.actions {
		if got == action {
			n++
		}
	}
	return n
}

type fixture struct {
	svc   orderdomain.Service
	db    *gorm.DB
	node  *snowflake.Node
	audit *auditStub
}

func newFixture(t *testing.T, name string) *fixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&linedomain.Line{}, &orderdomain.Order{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	audit := &auditStub{}

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: clock.NewFakeClock(time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC)),
		Audit: audit,
	})
	return &fixture{svc: svc, db: db, node: node, audit: audit}
}

func (f *fixture) createLine(t *testing.T) linedomain.Line {
	t.Helper()
	line := linedomain.Line{
		ID:          f.node.Generate(),
		CompanyID:   f.node.Generate(),
		MSISDN:      "+355691234567",
		User:        "Elira Kola",
		PlanName:    "Business Standard",
		MonthlyFee:  24.99,
		BudgetLimit: 45,
		Status:      linedomain.StatusActive,
	}
	if err := f.db.Create(&line).Error; err != nil {
		t.Fatal(err)
	}
	return line
}

func TestCreate_DefaultsToPending(t *testing.T) {
	f := newFixture(t, "order_pending")
	line := f.createLine(t)

	order, err := f.svc.Create(context.Background(), orderdomain.CreateRequest{
		LineID: line.ID.String(),
		Type:   orderdomain.TypePlanChange,
		Payload: map[string]any{
			"newPlan": "Business Pro",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != orderdomain.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
	if f.audit.count("Order created") != 1 {
		t.Fatalf("expected one creation entry, got %v", f.audit.actions)
	}
	if f.audit.count("Order completed") != 0 {
		t.Fatalf("pending order must not log completion, got %v", f.audit.actions)
	}
}

func TestCreate_UnknownLine(t *testing.T) {
	f := newFixture(t, "order_unknown_line")

	_, err := f.svc.Create(context.Background(), orderdomain.CreateRequest{
		LineID:  f.node.Generate().String(),
		Type:    orderdomain.TypeLineActivation,
		Payload: map[string]any{},
	})
	if err != linedomain.ErrNotFound {
		t.Fatalf("expected line_not_found, got %v", err)
	}
	if len(f.audit.actions) != 0 {
		t.Fatalf("failed create must not audit, got %v", f.audit.actions)
	}
}

func TestCreate_ServiceActivationWithPackageCompletesImmediately(t *testing.T) {
	f := newFixture(t, "order_immediate")
	line := f.createLine(t)

	order, err := f.svc.Create(context.Background(), orderdomain.CreateRequest{
		LineID: line.ID.String(),
		Type:   orderdomain.TypeServiceActivation,
		Payload: map[string]any{
			"packageId":   "roaming-eu-5gb",
			"packageName": "EU Roaming 5GB",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != orderdomain.StatusCompleted {
		t.Fatalf("expected completed, got %s", order.Status)
	}
	if f.audit.count("Order created") != 1 || f.audit.count("Order completed") != 1 {
		t.Fatalf("expected creation and completion entries, got %v", f.audit.actions)
	}

	var stored orderdomain.Order
	if err := f.db.First(&stored, "id = ?", order.ID).Error; err != nil {
		t.Fatal(err)
	}
	if stored.Status != orderdomain.StatusCompleted {
		t.Fatalf("completion not persisted, got %s", stored.Status)
	}
}

func TestCreate_ActivationWithoutPackageStaysPending(t *testing.T) {
	f := newFixture(t, "order_no_package")
	line := f.createLine(t)

	order, err := f.svc.Create(context.Background(), orderdomain.CreateRequest{
		LineID: line.ID.String(),
		Type:   orderdomain.TypeServiceActivation,
		Payload: map[string]any{
			"packageName": "EU Roaming 5GB",
		},
	})
	if err != nil {
		t.Fatal(err)
	}
	if order.Status != orderdomain.StatusPending {
		t.Fatalf("expected pending, got %s", order.Status)
	}
}

func TestCreate_PayloadValidation(t *testing.T) {
	f := newFixture(t, "order_payload")
	line := f.createLine(t)
	ctx := context.Background()

	_, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID:  line.ID.String(),
		Type:    orderdomain.TypePlanChange,
		Payload: map[string]any{},
	})
	if err != orderdomain.ErrInvalidPayload {
		t.Fatalf("plan change without newPlan must fail, got %v", err)
	}

	_, err = f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID:  line.ID.String(),
		Type:    orderdomain.Type("unknown"),
		Payload: map[string]any{},
	})
	if err != orderdomain.ErrInvalidType {
		t.Fatalf("unknown type must fail, got %v", err)
	}
}

func TestSetStatus_UnknownOrder(t *testing.T) {
	f := newFixture(t, "order_setstatus_unknown")

	_, err := f.svc.SetStatus(context.Background(), f.node.Generate().String(), orderdomain.StatusCompleted)
	if err != orderdomain.ErrNotFound {
		t.Fatalf("expected order_not_found, got %v", err)
	}
}

func TestSetStatus_OverridesAnyTransition(t *testing.T) {
	f := newFixture(t, "order_override")
	line := f.createLine(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID:  line.ID.String(),
		Type:    orderdomain.TypeToggleService,
		Payload: map[string]any{"service": "roaming", "enabled": true},
	})
	if err != nil {
		t.Fatal(err)
	}

	updated, err := f.svc.SetStatus(ctx, order.ID.String(), orderdomain.StatusFailed)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != orderdomain.StatusFailed {
		t.Fatalf("expected failed, got %s", updated.Status)
	}

	// Backwards transition is allowed by the override.
	updated, err = f.svc.SetStatus(ctx, order.ID.String(), orderdomain.StatusPending)
	if err != nil {
		t.Fatal(err)
	}
	if updated.Status != orderdomain.StatusPending {
		t.Fatalf("expected pending, got %s", updated.Status)
	}

	_, err = f.svc.SetStatus(ctx, order.ID.String(), orderdomain.Status("bogus"))
	if err != orderdomain.ErrInvalidStatus {
		t.Fatalf("expected invalid_order_status, got %v", err)
	}
}

func TestSetStatus_CompletionAppliesPlanChangeToLine(t *testing.T) {
	f := newFixture(t, "order_apply_plan")
	line := f.createLine(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID: line.ID.String(),
		Type:   orderdomain.TypePlanChange,
		Payload: map[string]any{
			"newPlan":      "Business Pro",
			"monthlyFee":   34.99,
			"includedData": float64(20480),
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SetStatus(ctx, order.ID.String(), orderdomain.StatusCompleted); err != nil {
		t.Fatal(err)
	}

	var updated linedomain.Line
	if err := f.db.First(&updated, "id = ?", line.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.PlanName != "Business Pro" {
		t.Fatalf("plan not applied, got %s", updated.PlanName)
	}
	if updated.MonthlyFee != 34.99 {
		t.Fatalf("fee not applied, got %v", updated.MonthlyFee)
	}
	if updated.IncludedData != 20480 {
		t.Fatalf("allowance not applied, got %d", updated.IncludedData)
	}
}

func TestSetStatus_CompletionAppliesBudgetIncrease(t *testing.T) {
	f := newFixture(t, "order_apply_budget")
	line := f.createLine(t)
	ctx := context.Background()

	order, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID: line.ID.String(),
		Type:   orderdomain.TypeBudgetIncrease,
		Payload: map[string]any{
			"previousLimit": 45.0,
			"newLimit":      60.0,
		},
	})
	if err != nil {
		t.Fatal(err)
	}

	if _, err := f.svc.SetStatus(ctx, order.ID.String(), orderdomain.StatusCompleted); err != nil {
		t.Fatal(err)
	}

	var updated linedomain.Line
	if err := f.db.First(&updated, "id = ?", line.ID).Error; err != nil {
		t.Fatal(err)
	}
	if updated.BudgetLimit != 60 {
		t.Fatalf("budget not applied, got %v", updated.BudgetLimit)
	}
}

func TestList_NewestFirstWithLineDetails(t *testing.T) {
	f := newFixture(t, "order_list")
	line := f.createLine(t)
	ctx := context.Background()

	first, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID:  line.ID.String(),
		Type:    orderdomain.TypeLineActivation,
		Payload: map[string]any{},
	})
	if err != nil {
		t.Fatal(err)
	}
	// Later creation timestamp for deterministic ordering.
	if err := f.db.Model(&orderdomain.Order{}).Where("id = ?", first.ID).
		Update("created_at", time.Date(2024, time.March, 1, 0, 0, 0, 0, time.UTC)).Error; err != nil {
		t.Fatal(err)
	}
	second, err := f.svc.Create(ctx, orderdomain.CreateRequest{
		LineID:  line.ID.String(),
		Type:    orderdomain.TypeToggleService,
		Payload: map[string]any{"service": "roaming"},
	})
	if err != nil {
		t.Fatal(err)
	}

	orders, err := f.svc.List(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(orders) != 2 {
		t.Fatalf("expected 2 orders, got %d", len(orders))
	}
	if orders[0].ID != second.ID {
		t.Fatalf("expected newest first, got %v", orders[0].ID)
	}
	if orders[0].LineUser != "Elira Kola" || orders[0].LineMSISDN != "+355691234567" {
		t.Fatalf("expected joined line details, got %+v", orders[0])
	}
}
