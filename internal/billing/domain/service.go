// Package domain contains the billing estimate model. Estimates are a
// flat linear projection over the current cycle's raw usage totals and
// are advisory, not invoiced amounts.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

// Fixed per-unit rates applied to the raw cycle totals. There is no
// tiered pricing and no plan-specific override.
var (
	RateDataPerMB  = decimal.NewFromFloat(0.10)
	RateCallPerMin = decimal.NewFromFloat(0.05)
	RateSMSPerSMS  = decimal.NewFromFloat(0.02)
)

// LineEstimate is the projected spend for one line this cycle. Plan
// allowances and the monthly fee do not enter the estimate.
type LineEstimate struct {
	LineID   snowflake.ID    `json:"lineId"`
	User     string          `json:"user"`
	MSISDN   string          `json:"msisdn"`
	PlanName string          `json:"planName"`
	DataCost decimal.Decimal `json:"dataCost"`
	CallCost decimal.Decimal `json:"callCost"`
	SMSCost  decimal.Decimal `json:"smsCost"`
	Total    decimal.Decimal `json:"total"`
}

// CompanyEstimate aggregates all line estimates of a company. Total is the
// sum of line totals rounded to the nearest whole currency unit.
type CompanyEstimate struct {
	CompanyID snowflake.ID    `json:"companyId"`
	Lines     []LineEstimate  `json:"lines"`
	Total     decimal.Decimal `json:"total"`
}

type Service interface {
	EstimateCompany(ctx context.Context, companyID string) (*CompanyEstimate, error)
}
