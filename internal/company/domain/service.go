package domain

import (
	"context"
	"errors"

	linedomain "github.com/smetelco/portal/internal/line/domain"
)

type CreateRequest struct {
	Name           string  `json:"name"`
	ContractNumber string  `json:"contractNumber"`
	MonthlyBudget  float64 `json:"monthlyBudget"`
}

type UpdateRequest struct {
	ID             string   `json:"id"`
	Name           *string  `json:"name,omitempty"`
	ContractNumber *string  `json:"contractNumber,omitempty"`
	MonthlyBudget  *float64 `json:"monthlyBudget,omitempty"`
}

type CompanyWithLines struct {
	Company
	Lines []linedomain.Line `json:"lines"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Company, error)
	Get(ctx context.Context, id string) (*CompanyWithLines, error)
	Update(ctx context.Context, req UpdateRequest) (*Company, error)
	Delete(ctx context.Context, id string) error
}

var (
	ErrNotFound       = errors.New("company_not_found")
	ErrInvalidID      = errors.New("invalid_company_id")
	ErrInvalidName    = errors.New("invalid_name")
	ErrInvalidBudget  = errors.New("invalid_monthly_budget")
	ErrInvalidRequest = errors.New("invalid_request")
)
