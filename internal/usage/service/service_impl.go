package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	alertdomain "github.com/smetelco/portal/internal/alert/domain"
	"github.com/smetelco/portal/internal/clock"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	"github.com/smetelco/portal/internal/metrics"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Clock    clock.Clock
	Repo     usagedomain.Repository
	AlertSvc alertdomain.Service
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	clock    clock.Clock
	repo     usagedomain.Repository
	alertSvc alertdomain.Service
	metrics  *metrics.Metrics
	lines    repository.Repository[linedomain.Line]
}

func NewService(p Params) usagedomain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("usage.service"),
		genID:    p.GenID,
		clock:    p.Clock,
		repo:     p.Repo,
		alertSvc: p.AlertSvc,
		metrics:  p.Metrics,
		lines:    repository.ProvideStore[linedomain.Line](p.DB),
	}
}

// Ingest appends one usage event, recomputes the current cycle totals and
// hands them to the alert evaluator. Alert dispatch is best-effort and
// never fails the ingest.
func (s *Service) Ingest(ctx context.Context, req usagedomain.IngestRequest) (*usagedomain.IngestResult, error) {
	line, err := s.findLine(ctx, req.LineID)
	if err != nil {
		return nil, err
	}

	if req.DataUsedMB < 0 || req.CallMinutes < 0 || req.SMSCount < 0 ||
		req.RoamingMinutes < 0 || req.InternationalMinutes < 0 {
		return nil, usagedomain.ErrInvalidCounts
	}

	idempotencyKey := strings.TrimSpace(req.IdempotencyKey)

	if idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, line.ID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.dedupResult(ctx, line.ID, existing)
		}
	}

	event := &usagedomain.UsageEvent{
		ID:                   s.genID.Generate(),
		LineID:               line.ID,
		DataUsedMB:           req.DataUsedMB,
		CallMinutes:          req.CallMinutes,
		SMSCount:             req.SMSCount,
		RoamingMinutes:       req.RoamingMinutes,
		InternationalMinutes: req.InternationalMinutes,
		CreatedAt:            s.clock.Now().UTC(),
	}
	if idempotencyKey != "" {
		event.IdempotencyKey = &idempotencyKey
	}

	inserted, err := s.repo.Insert(ctx, s.db, event)
	if err != nil {
		return nil, err
	}

	// Concurrent retry lost the conflict race; serve the stored event.
	if !inserted && idempotencyKey != "" {
		existing, err := s.repo.FindByIdempotencyKey(ctx, s.db, line.ID, idempotencyKey)
		if err != nil {
			return nil, err
		}
		if existing != nil {
			return s.dedupResult(ctx, line.ID, existing)
		}
	}

	if s.metrics != nil {
		s.metrics.UsageEventsIngested.Inc()
	}

	totals, err := s.cycleTotals(ctx, line.ID)
	if err != nil {
		return nil, err
	}

	s.alertSvc.HandleTotals(ctx, *line, totals)

	return &usagedomain.IngestResult{Event: event, Totals: totals}, nil
}

func (s *Service) CurrentCycle(ctx context.Context, lineID string) (usagedomain.CycleTotals, error) {
	line, err := s.findLine(ctx, lineID)
	if err != nil {
		return usagedomain.CycleTotals{}, err
	}
	return s.cycleTotals(ctx, line.ID)
}

// History returns one bucket per calendar month, offset 0..months-1 back
// from now, ordered oldest first. Months without events yield all-zero
// rows.
func (s *Service) History(ctx context.Context, lineID string, months int) ([]usagedomain.MonthlyTotals, error) {
	line, err := s.findLine(ctx, lineID)
	if err != nil {
		return nil, err
	}

	if months <= 0 {
		months = 6
	}
	if months > 24 {
		return nil, usagedomain.ErrInvalidMonths
	}

	now := s.clock.Now()
	history := make([]usagedomain.MonthlyTotals, 0, months)
	for offset := months - 1; offset >= 0; offset-- {
		from, to := clock.MonthWindow(now, offset)
		totals, err := s.repo.SumWindow(ctx, s.db, line.ID, from, to)
		if err != nil {
			return nil, err
		}
		history = append(history, usagedomain.MonthlyTotals{
			Month:       from.Format("2006-01"),
			DataUsedMB:  totals.DataUsedMB,
			CallMinutes: totals.CallMinutes,
			SMSCount:    totals.SMSCount,
		})
	}
	return history, nil
}

// CompanyUsage builds the dashboard rows for every line of a company. An
// empty company yields an empty slice, not an error.
func (s *Service) CompanyUsage(ctx context.Context, companyID string) ([]usagedomain.LineUsageSummary, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(companyID))
	if err != nil || id == 0 {
		return nil, linedomain.ErrInvalidCompany
	}

	lines, err := s.lines.Find(ctx, &linedomain.Line{CompanyID: id})
	if err != nil {
		return nil, err
	}

	out := make([]usagedomain.LineUsageSummary, 0, len(lines))
	for _, line := range lines {
		if line == nil {
			continue
		}
		totals, err := s.cycleTotals(ctx, line.ID)
		if err != nil {
			return nil, err
		}
		remaining := line.IncludedData - totals.DataUsedMB
		if remaining < 0 {
			remaining = 0
		}
		out = append(out, usagedomain.LineUsageSummary{
			ID:              line.ID,
			User:            line.User,
			MSISDN:          line.MSISDN,
			PlanName:        line.PlanName,
			IncludedData:    line.IncludedData,
			DataUsedMB:      totals.DataUsedMB,
			RemainingDataMB: remaining,
			IncludedMinutes: line.IncludedMinutes,
			CallMinutes:     totals.CallMinutes,
			IncludedSMS:     line.IncludedSMS,
			SMSCount:        totals.SMSCount,
			BudgetLimit:     line.BudgetLimit,
		})
	}
	return out, nil
}

func (s *Service) cycleTotals(ctx context.Context, lineID snowflake.ID) (usagedomain.CycleTotals, error) {
	now := s.clock.Now()
	from, to := clock.MonthWindow(now, 0)
	return s.repo.SumWindow(ctx, s.db, lineID, from, to)
}

func (s *Service) dedupResult(ctx context.Context, lineID snowflake.ID, event *usagedomain.UsageEvent) (*usagedomain.IngestResult, error) {
	totals, err := s.cycleTotals(ctx, lineID)
	if err != nil {
		return nil, err
	}
	return &usagedomain.IngestResult{Event: event, Totals: totals, Deduplicated: true}, nil
}

func (s *Service) findLine(ctx context.Context, lineID string) (*linedomain.Line, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(lineID))
	if err != nil || id == 0 {
		return nil, usagedomain.ErrInvalidLine
	}
	line, err := s.lines.FindOne(ctx, &linedomain.Line{ID: id})
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, linedomain.ErrNotFound
	}
	return line, nil
}
