package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	billingdomain "github.com/smetelco/portal/internal/billing/domain"
	companydomain "github.com/smetelco/portal/internal/company/domain"
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
	Usage usagedomain.Service
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	usage     usagedomain.Service
	companies repository.Repository[companydomain.Company]
	lines     repository.Repository[linedomain.Line]
}

func NewService(p Params) billingdomain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("billing.service"),
		usage:     p.Usage,
		companies: repository.ProvideStore[companydomain.Company](p.DB),
		lines:     repository.ProvideStore[linedomain.Line](p.DB),
	}
}

// EstimateCompany projects this cycle's spend for every line of a
// company: the raw cycle totals charged at the fixed per-unit rates. The
// company total is rounded to the nearest whole unit, per-line amounts
// are kept at cent precision.
func (s *Service) EstimateCompany(ctx context.Context, companyID string) (*billingdomain.CompanyEstimate, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(companyID))
	if err != nil || id == 0 {
		return nil, companydomain.ErrInvalidID
	}

	company, err := s.companies.FindOne(ctx, &companydomain.Company{ID: id})
	if err != nil {
		return nil, err
	}
	if company == nil {
		return nil, companydomain.ErrNotFound
	}

	lines, err := s.lines.Find(ctx, &linedomain.Line{CompanyID: id})
	if err != nil {
		return nil, err
	}

	estimate := &billingdomain.CompanyEstimate{
		CompanyID: id,
		Lines:     make([]billingdomain.LineEstimate, 0, len(lines)),
		Total:     decimal.Zero,
	}
	for _, line := range lines {
		if line == nil {
			continue
		}
		totals, err := s.usage.CurrentCycle(ctx, line.ID.String())
		if err != nil {
			return nil, err
		}
		le := estimateLine(*line, totals)
		estimate.Lines = append(estimate.Lines, le)
		estimate.Total = estimate.Total.Add(le.Total)
	}
	estimate.Total = estimate.Total.Round(0)
	return estimate, nil
}

func estimateLine(line linedomain.Line, totals usagedomain.CycleTotals) billingdomain.LineEstimate {
	le := billingdomain.LineEstimate{
		LineID:   line.ID,
		User:     line.User,
		MSISDN:   line.MSISDN,
		PlanName: line.PlanName,
		DataCost: billingdomain.RateDataPerMB.Mul(decimal.NewFromInt(totals.DataUsedMB)),
		CallCost: billingdomain.RateCallPerMin.Mul(decimal.NewFromInt(totals.CallMinutes)),
		SMSCost:  billingdomain.RateSMSPerSMS.Mul(decimal.NewFromInt(totals.SMSCount)),
	}
	le.Total = le.DataCost.
		Add(le.CallCost).
		Add(le.SMSCost).
		Round(2)
	return le
}
