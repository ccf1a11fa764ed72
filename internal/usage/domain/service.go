package domain

import (
	"context"
	"errors"
)

type IngestRequest struct {
	LineID               string `json:"lineId"`
	DataUsedMB           int64  `json:"dataUsedMB"`
	CallMinutes          int64  `json:"callMinutes"`
	SMSCount             int64  `json:"smsCount"`
	RoamingMinutes       int64  `json:"roamingMinutes"`
	InternationalMinutes int64  `json:"internationalMinutes"`
	IdempotencyKey       string `json:"idempotencyKey"`
}

type IngestResult struct {
	Event        *UsageEvent `json:"event"`
	Totals       CycleTotals `json:"totals"`
	Deduplicated bool        `json:"deduplicated"`
}

type Service interface {
	Ingest(ctx context.Context, req IngestRequest) (*IngestResult, error)
	CurrentCycle(ctx context.Context, lineID string) (CycleTotals, error)
	History(ctx context.Context, lineID string, months int) ([]MonthlyTotals, error)
	CompanyUsage(ctx context.Context, companyID string) ([]LineUsageSummary, error)
}

var (
	ErrInvalidLine   = errors.New("invalid_line_id")
	ErrInvalidCounts = errors.New("invalid_usage_counts")
	ErrInvalidMonths = errors.New("invalid_months")
)
