package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/smetelco/portal/internal/alert/domain"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"github.com/smetelco/portal/internal/clock"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Audit auditdomain.Service
	Usage usagedomain.Service
	Alert alertdomain.Service
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	audit auditdomain.Service
	usage usagedomain.Service
	alert alertdomain.Service
	lines repository.Repository[linedomain.Line]
}

func NewService(p Params) linedomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("line.service"),
		genID: p.GenID,
		clock: p.Clock,
		audit: p.Audit,
		usage: p.Usage,
		alert: p.Alert,
		lines: repository.ProvideStore[linedomain.Line](p.DB),
	}
}

func (s *Service) Create(ctx context.Context, req linedomain.CreateRequest) (*linedomain.Line, error) {
	companyID, err := parseID(req.CompanyID, linedomain.ErrInvalidCompany)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(req.MSISDN) == "" {
		return nil, linedomain.ErrInvalidMSISDN
	}
	if req.IncludedData < 0 || req.IncludedMinutes < 0 || req.IncludedSMS < 0 {
		return nil, linedomain.ErrInvalidAllowance
	}
	if req.BudgetLimit < 0 {
		return nil, linedomain.ErrInvalidBudget
	}

	status := req.Status
	if status == "" {
		status = linedomain.StatusActive
	}
	if status != linedomain.StatusActive && status != linedomain.StatusInactive {
		return nil, linedomain.ErrInvalidStatus
	}

	now := s.clock.Now().UTC()
	line := &linedomain.Line{
		ID:              s.genID.Generate(),
		CompanyID:       companyID,
		MSISDN:          strings.TrimSpace(req.MSISDN),
		User:            req.User,
		Role:            req.Role,
		PlanName:        req.PlanName,
		MonthlyFee:      req.MonthlyFee,
		IncludedData:    req.IncludedData,
		IncludedMinutes: req.IncludedMinutes,
		IncludedSMS:     req.IncludedSMS,
		BudgetLimit:     req.BudgetLimit,
		Status:          status,
		DataThreshold:   thresholdOrDefault(req.DataThreshold),
		CallThreshold:   thresholdOrDefault(req.CallThreshold),
		SMSThreshold:    thresholdOrDefault(req.SMSThreshold),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	if err := s.lines.Create(ctx, line); err != nil {
		return nil, err
	}
	return line, nil
}

func (s *Service) List(ctx context.Context) ([]linedomain.Line, error) {
	items, err := s.lines.Find(ctx, &linedomain.Line{})
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) ListByCompany(ctx context.Context, companyID string) ([]linedomain.Line, error) {
	id, err := parseID(companyID, linedomain.ErrInvalidCompany)
	if err != nil {
		return nil, err
	}
	items, err := s.lines.Find(ctx, &linedomain.Line{CompanyID: id})
	if err != nil {
		return nil, err
	}
	return deref(items), nil
}

func (s *Service) Get(ctx context.Context, id string) (*linedomain.Line, error) {
	lineID, err := parseID(id, linedomain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	line, err := s.lines.FindOne(ctx, &linedomain.Line{ID: lineID})
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, linedomain.ErrNotFound
	}
	return line, nil
}

func (s *Service) Update(ctx context.Context, id string, fields linedomain.UpdateFields) (*linedomain.Line, error) {
	line, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := applyFields(line, fields); err != nil {
		return nil, err
	}
	line.UpdatedAt = s.clock.Now().UTC()

	if err := s.db.WithContext(ctx).Save(line).Error; err != nil {
		return nil, err
	}

	s.reevaluateAlerts(ctx, *line)
	return line, nil
}

// reevaluateAlerts re-runs threshold evaluation against the current
// cycle's totals after a line edit; shrinking an allowance can put the
// already-consumed usage over a threshold. Best-effort: an evaluation
// failure never fails the update.
func (s *Service) reevaluateAlerts(ctx context.Context, line linedomain.Line) {
	totals, err := s.usage.CurrentCycle(ctx, line.ID.String())
	if err != nil {
		s.log.Warn("alert re-evaluation skipped",
			zap.String("line_id", line.ID.String()),
			zap.Error(err),
		)
		return
	}
	s.alert.HandleTotals(ctx, line, totals)
}

func (s *Service) UpdateLimit(ctx context.Context, id string, budgetLimit float64) (*linedomain.Line, error) {
	if budgetLimit < 0 {
		return nil, linedomain.ErrInvalidBudget
	}
	return s.Update(ctx, id, linedomain.UpdateFields{BudgetLimit: &budgetLimit})
}

func (s *Service) Delete(ctx context.Context, id string) error {
	line, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return s.lines.Delete(ctx, int64(line.ID))
}

// BulkUpdate applies every item inside one transaction and reports a
// per-item outcome. Unknown ids do not abort the batch; a storage error
// rolls the whole batch back.
func (s *Service) BulkUpdate(ctx context.Context, updates []linedomain.BulkUpdateItem) ([]linedomain.BulkUpdateResult, error) {
	if len(updates) == 0 {
		return nil, linedomain.ErrEmptyBulkUpdate
	}

	results := make([]linedomain.BulkUpdateResult, len(updates))
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		store := s.lines.WithTrx(tx)
		for i, item := range updates {
			results[i] = s.applyBulkItem(ctx, tx, store, item)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	applied := 0
	for _, r := range results {
		if r.OK {
			applied++
		}
	}
	_ = s.audit.Record(ctx, "Bulk line update", "admin", map[string]any{
		"count": applied,
	})
	return results, nil
}

func (s *Service) applyBulkItem(
	ctx context.Context,
	tx *gorm.DB,
	store repository.Repository[linedomain.Line],
	item linedomain.BulkUpdateItem,
) linedomain.BulkUpdateResult {
	lineID, err := parseID(item.ID, linedomain.ErrInvalidID)
	if err != nil {
		return linedomain.BulkUpdateResult{ID: item.ID, Error: linedomain.ErrInvalidID.Error()}
	}

	line, err := store.FindOne(ctx, &linedomain.Line{ID: lineID})
	if err != nil {
		return linedomain.BulkUpdateResult{ID: item.ID, Error: err.Error()}
	}
	if line == nil {
		return linedomain.BulkUpdateResult{ID: item.ID, Error: linedomain.ErrNotFound.Error()}
	}

	if err := applyFields(line, item.UpdateFields); err != nil {
		return linedomain.BulkUpdateResult{ID: item.ID, Error: err.Error()}
	}
	line.UpdatedAt = s.clock.Now().UTC()

	if err := tx.Save(line).Error; err != nil {
		return linedomain.BulkUpdateResult{ID: item.ID, Error: err.Error()}
	}
	return linedomain.BulkUpdateResult{ID: item.ID, OK: true}
}

func applyFields(line *linedomain.Line, fields linedomain.UpdateFields) error {
	if fields.MSISDN != nil {
		if strings.TrimSpace(*fields.MSISDN) == "" {
			return linedomain.ErrInvalidMSISDN
		}
		line.MSISDN = strings.TrimSpace(*fields.MSISDN)
	}
	if fields.User != nil {
		line.User = *fields.User
	}
	if fields.Role != nil {
		line.Role = *fields.Role
	}
	if fields.PlanName != nil {
		line.PlanName = *fields.PlanName
	}
	if fields.MonthlyFee != nil {
		line.MonthlyFee = *fields.MonthlyFee
	}
	if fields.IncludedData != nil {
		if *fields.IncludedData < 0 {
			return linedomain.ErrInvalidAllowance
		}
		line.IncludedData = *fields.IncludedData
	}
	if fields.IncludedMinutes != nil {
		if *fields.IncludedMinutes < 0 {
			return linedomain.ErrInvalidAllowance
		}
		line.IncludedMinutes = *fields.IncludedMinutes
	}
	if fields.IncludedSMS != nil {
		if *fields.IncludedSMS < 0 {
			return linedomain.ErrInvalidAllowance
		}
		line.IncludedSMS = *fields.IncludedSMS
	}
	if fields.BudgetLimit != nil {
		if *fields.BudgetLimit < 0 {
			return linedomain.ErrInvalidBudget
		}
		line.BudgetLimit = *fields.BudgetLimit
	}
	if fields.Status != nil {
		if *fields.Status != linedomain.StatusActive && *fields.Status != linedomain.StatusInactive {
			return linedomain.ErrInvalidStatus
		}
		line.Status = *fields.Status
	}
	if fields.DataThreshold != nil {
		line.DataThreshold = *fields.DataThreshold
	}
	if fields.CallThreshold != nil {
		line.CallThreshold = *fields.CallThreshold
	}
	if fields.SMSThreshold != nil {
		line.SMSThreshold = *fields.SMSThreshold
	}
	return nil
}

func thresholdOrDefault(v *int) int {
	if v == nil || *v <= 0 {
		return linedomain.DefaultAlertThreshold
	}
	return *v
}

func parseID(value string, invalidErr error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalidErr
	}
	return id, nil
}

func deref(items []*linedomain.Line) []linedomain.Line {
	out := make([]linedomain.Line, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
