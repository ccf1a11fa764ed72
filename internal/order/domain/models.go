// Package domain contains the order lifecycle model. An order records a
// requested change to a line's plan, services or budget.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

type Type string

const (
	TypePlanChange        Type = "plan_change"
	TypeServiceActivation Type = "service_activation"
	TypePackageActivation Type = "package_activation"
	TypeBudgetIncrease    Type = "budget_increase"
	TypeLineActivation    Type = "line_activation"
	TypeToggleService     Type = "toggle_service"
)

type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusFailed     Status = "failed"
)

// Order tracks one requested change. Status moves forward
// pending → in_progress → completed|failed; pending → completed directly
// for immediate fulfillment. SetStatus is an administrative override with
// no prior-state validation.
type Order struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	LineID    snowflake.ID      `json:"lineId" gorm:"not null;index"`
	Type      Type              `json:"type" gorm:"type:text;not null"`
	Status    Status            `json:"status" gorm:"type:text;not null"`
	Payload   datatypes.JSONMap `json:"payload" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"createdAt" gorm:"not null;index"`
	UpdatedAt time.Time         `json:"updatedAt" gorm:"not null"`
}

// TableName sets the database table name.
func (Order) TableName() string { return "orders" }

// OrderWithLine is a list row joined with the owning line.
type OrderWithLine struct {
	Order
	LineUser   string `json:"lineUser" gorm:"column:line_user"`
	LineMSISDN string `json:"lineMsisdn" gorm:"column:line_msisdn"`
}

func ValidType(t Type) bool {
	switch t {
	case TypePlanChange, TypeServiceActivation, TypePackageActivation,
		TypeBudgetIncrease, TypeLineActivation, TypeToggleService:
		return true
	default:
		return false
	}
}

func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusCompleted, StatusFailed:
		return true
	default:
		return false
	}
}
