package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"github.com/smetelco/portal/internal/clock"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	"github.com/smetelco/portal/internal/metrics"
	orderdomain "github.com/smetelco/portal/internal/order/domain"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB      *gorm.DB
	Log     *zap.Logger
	GenID   *snowflake.Node
	Clock   clock.Clock
	Audit   auditdomain.Service
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	db      *gorm.DB
	log     *zap.Logger
	genID   *snowflake.Node
	clock   clock.Clock
	audit   auditdomain.Service
	metrics *metrics.Metrics
	orders  repository.Repository[orderdomain.Order]
	lines   repository.Repository[linedomain.Line]
}

func NewService(p Params) orderdomain.Service {
	return &Service{
		db:      p.DB,
		log:     p.Log.Named("order.service"),
		genID:   p.GenID,
		clock:   p.Clock,
		audit:   p.Audit,
		metrics: p.Metrics,
		orders:  repository.ProvideStore[orderdomain.Order](p.DB),
		lines:   repository.ProvideStore[linedomain.Line](p.DB),
	}
}

// Create opens a new order against a line. Service and package activations
// that already carry a package identifier have no manual fulfillment step
// and complete within the same transaction; everything else starts pending.
func (s *Service) Create(ctx context.Context, req orderdomain.CreateRequest) (*orderdomain.Order, error) {
	lineID, err := snowflake.ParseString(strings.TrimSpace(req.LineID))
	if err != nil || lineID == 0 {
		return nil, linedomain.ErrInvalidID
	}
	if !orderdomain.ValidType(req.Type) {
		return nil, orderdomain.ErrInvalidType
	}
	if err := orderdomain.ValidatePayload(req.Type, req.Payload); err != nil {
		return nil, err
	}

	actingUser := strings.TrimSpace(req.ActingUser)
	if actingUser == "" {
		actingUser = "admin"
	}

	now := s.clock.Now().UTC()
	order := &orderdomain.Order{
		ID:        s.genID.Generate(),
		LineID:    lineID,
		Type:      req.Type,
		Status:    orderdomain.StatusPending,
		Payload:   datatypes.JSONMap(req.Payload),
		CreatedAt: now,
		UpdatedAt: now,
	}
	immediate := orderdomain.ImmediateFulfillment(req.Type, req.Payload)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		line, err := s.lines.WithTrx(tx).FindOne(ctx, &linedomain.Line{ID: lineID})
		if err != nil {
			return err
		}
		if line == nil {
			return linedomain.ErrNotFound
		}
		if err := s.orders.WithTrx(tx).Create(ctx, order); err != nil {
			return err
		}
		if immediate {
			order.Status = orderdomain.StatusCompleted
			order.UpdatedAt = s.clock.Now().UTC()
			if err := tx.Model(&orderdomain.Order{}).Where("id = ?", order.ID).
				Updates(map[string]any{"status": order.Status, "updated_at": order.UpdatedAt}).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if s.metrics != nil {
		s.metrics.OrdersCreated.WithLabelValues(string(req.Type)).Inc()
	}

	details := map[string]any{
		"orderId": order.ID.String(),
		"lineId":  lineID.String(),
		"type":    string(req.Type),
	}
	_ = s.audit.Record(ctx, "Order created", actingUser, details)
	if order.Status == orderdomain.StatusCompleted {
		_ = s.audit.Record(ctx, "Order completed", actingUser, details)
	}

	s.log.Info("order created",
		zap.String("order_id", order.ID.String()),
		zap.String("type", string(req.Type)),
		zap.String("status", string(order.Status)),
	)
	return order, nil
}

// SetStatus is the administrative override: any status may replace any
// other. Moving to completed applies the order payload to the owning line
// in the same transaction, so a crash cannot leave a completed order whose
// line never changed.
func (s *Service) SetStatus(ctx context.Context, orderID string, status orderdomain.Status) (*orderdomain.Order, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(orderID))
	if err != nil || id == 0 {
		return nil, orderdomain.ErrInvalidID
	}
	if !orderdomain.ValidStatus(status) {
		return nil, orderdomain.ErrInvalidStatus
	}

	var order *orderdomain.Order
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		found, err := s.orders.WithTrx(tx).FindOne(ctx, &orderdomain.Order{ID: id})
		if err != nil {
			return err
		}
		if found == nil {
			return orderdomain.ErrNotFound
		}
		order = found

		previous := order.Status
		order.Status = status
		order.UpdatedAt = s.clock.Now().UTC()
		if err := tx.Model(&orderdomain.Order{}).Where("id = ?", order.ID).
			Updates(map[string]any{"status": order.Status, "updated_at": order.UpdatedAt}).Error; err != nil {
			return err
		}

		if status == orderdomain.StatusCompleted && previous != orderdomain.StatusCompleted {
			return s.applyCompletion(ctx, tx, order)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	_ = s.audit.Record(ctx, "Order status updated", "admin", map[string]any{
		"orderId": order.ID.String(),
		"status":  string(status),
	})
	return order, nil
}

// List returns all orders newest first, each joined with the owning line's
// user and msisdn for display.
func (s *Service) List(ctx context.Context) ([]orderdomain.OrderWithLine, error) {
	rows := make([]orderdomain.OrderWithLine, 0)
	err := s.db.WithContext(ctx).
		Table("orders").
		Select("orders.*, lines.user_name AS line_user, lines.msisdn AS line_msisdn").
		Joins("JOIN lines ON lines.id = orders.line_id").
		Order("orders.created_at DESC").
		Find(&rows).Error
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// applyCompletion carries the order's payload onto the line. Types without
// line-visible effect (activations, toggle_service) complete without an
// update.
func (s *Service) applyCompletion(ctx context.Context, tx *gorm.DB, order *orderdomain.Order) error {
	payload := map[string]any(order.Payload)

	updates := map[string]any{}
	switch order.Type {
	case orderdomain.TypePlanChange:
		if plan := payloadString(payload, "newPlan"); plan != "" {
			updates["plan_name"] = plan
		}
		if fee, ok := payloadNumber(payload, "monthlyFee"); ok {
			updates["monthly_fee"] = fee
		}
		if data, ok := payloadNumber(payload, "includedData"); ok {
			updates["included_data"] = int64(data)
		}
		if minutes, ok := payloadNumber(payload, "includedMinutes"); ok {
			updates["included_minutes"] = int64(minutes)
		}
		if sms, ok := payloadNumber(payload, "includedSMS"); ok {
			updates["included_sms"] = int64(sms)
		}
	case orderdomain.TypeBudgetIncrease:
		if limit, ok := payloadNumber(payload, "newLimit"); ok {
			updates["budget_limit"] = limit
		}
	case orderdomain.TypeLineActivation:
		updates["status"] = linedomain.StatusActive
	}
	if len(updates) == 0 {
		return nil
	}

	updates["updated_at"] = s.clock.Now().UTC()
	return tx.WithContext(ctx).Model(&linedomain.Line{}).
		Where("id = ?", order.LineID).
		Updates(updates).Error
}

func payloadString(payload map[string]any, key string) string {
	if payload == nil {
		return ""
	}
	value, _ := payload[key].(string)
	return strings.TrimSpace(value)
}

func payloadNumber(payload map[string]any, key string) (float64, bool) {
	if payload == nil {
		return 0, false
	}
	switch v := payload[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case int64:
		return float64(v), true
	default:
		return 0, false
	}
}
