package domain

import (
	"context"
	"errors"
)

type CreateRequest struct {
	LineID  string         `json:"lineId"`
	Type    Type           `json:"type"`
	Payload map[string]any `json:"payload"`
	// ActingUser is recorded in the audit trail; defaults to "admin" as in
	// the self-service flow.
	ActingUser string `json:"-"`
}

type Service interface {
	Create(ctx context.Context, req CreateRequest) (*Order, error)
	SetStatus(ctx context.Context, orderID string, status Status) (*Order, error)
	List(ctx context.Context) ([]OrderWithLine, error)
}

var (
	ErrNotFound       = errors.New("order_not_found")
	ErrInvalidID      = errors.New("invalid_order_id")
	ErrInvalidType    = errors.New("invalid_order_type")
	ErrInvalidStatus  = errors.New("invalid_order_status")
	ErrInvalidPayload = errors.New("invalid_order_payload")
)
