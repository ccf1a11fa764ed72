package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	CompanyID       string  `json:"companyId"`
	MSISDN          string  `json:"msisdn"`
	User            string  `json:"user"`
	Role            string  `json:"role"`
	PlanName        string  `json:"planName"`
	MonthlyFee      float64 `json:"monthlyFee"`
	IncludedData    int64   `json:"includedData"`
	IncludedMinutes int64   `json:"includedMinutes"`
	IncludedSMS     int64   `json:"includedSMS"`
	BudgetLimit     float64 `json:"budgetLimit"`
	Status          string  `json:"status"`
	DataThreshold   *int    `json:"dataThreshold,omitempty"`
	CallThreshold   *int    `json:"callThreshold,omitempty"`
	SMSThreshold    *int    `json:"smsThreshold,omitempty"`
}

// UpdateFields is a partial update; nil fields are left untouched.
type UpdateFields struct {
	MSISDN          *string  `json:"msisdn,omitempty"`
	User            *string  `json:"user,omitempty"`
	Role            *string  `json:"role,omitempty"`
	PlanName        *string  `json:"planName,omitempty"`
	MonthlyFee      *float64 `json:"monthlyFee,omitempty"`
	IncludedData    *int64   `json:"includedData,omitempty"`
	IncludedMinutes *int64   `json:"includedMinutes,omitempty"`
	IncludedSMS     *int64   `json:"includedSMS,omitempty"`
	BudgetLimit     *float64 `json:"budgetLimit,omitempty"`
	Status          *string  `json:"status,omitempty"`
	DataThreshold   *int     `json:"dataThreshold,omitempty"`
	CallThreshold   *int     `json:"callThreshold,omitempty"`
	SMSThreshold    *int     `json:"smsThreshold,omitempty"`
}

type BulkUpdateItem struct {
	ID string `json:"id"`
	UpdateFields
}

// BulkUpdateResult is the per-item outcome of a bulk update. The batch runs
// in one transaction; unknown ids are reported here instead of silently
// succeeding, and storage errors roll back the whole batch.
type BulkUpdateResult struct {
	ID    string `json:"id"`
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Line, error)
	List(ctx context.Context) ([]Line, error)
	ListByCompany(ctx context.Context, companyID string) ([]Line, error)
	Get(ctx context.Context, id string) (*Line, error)
	Update(ctx context.Context, id string, fields UpdateFields) (*Line, error)
	UpdateLimit(ctx context.Context, id string, budgetLimit float64) (*Line, error)
	Delete(ctx context.Context, id string) error
	BulkUpdate(ctx context.Context, updates []BulkUpdateItem) ([]BulkUpdateResult, error)
}

var (
	ErrNotFound         = errors.New("line_not_found")
	ErrInvalidID        = errors.New("invalid_line_id")
	ErrInvalidCompany   = errors.New("invalid_company_id")
	ErrInvalidMSISDN    = errors.New("invalid_msisdn")
	ErrInvalidAllowance = errors.New("invalid_allowance")
	ErrInvalidBudget    = errors.New("invalid_budget_limit")
	ErrInvalidStatus    = errors.New("invalid_status")
	ErrEmptyBulkUpdate  = errors.New("empty_bulk_update")
)
