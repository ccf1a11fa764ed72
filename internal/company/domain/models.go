// Package domain contains the company contract model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Company groups lines under one contract. MonthlyBudget is used only for
// company-wide rollups.
type Company struct {
	ID             snowflake.ID `json:"id" gorm:"primaryKey"`
	Name           string       `json:"name" gorm:"type:text;not null"`
	ContractNumber string       `json:"contractNumber" gorm:"type:text;not null"`
	MonthlyBudget  float64      `json:"monthlyBudget" gorm:"not null;default:0"`
	CreatedAt      time.Time    `json:"createdAt" gorm:"not null"`
	UpdatedAt      time.Time    `json:"updatedAt" gorm:"not null"`
}

// TableName sets the database table name.
func (Company) TableName() string { return "companies" }
