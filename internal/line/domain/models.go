// Package domain contains the mobile line model and its service contract.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// DefaultAlertThreshold is the per-metric alert configuration a line gets
// when none is supplied.
const DefaultAlertThreshold = 80

// Line is one mobile subscription under a company contract. Included
// allowances and the budget limit are non-negative.
type Line struct {
	ID              snowflake.ID `json:"id" gorm:"primaryKey"`
	CompanyID       snowflake.ID `json:"companyId" gorm:"not null;index"`
	MSISDN          string       `json:"msisdn" gorm:"type:text;not null"`
	User            string       `json:"user" gorm:"column:user_name;type:text;not null"`
	Role            string       `json:"role" gorm:"type:text"`
	PlanName        string       `json:"planName" gorm:"type:text;not null"`
	MonthlyFee      float64      `json:"monthlyFee" gorm:"not null;default:0"`
	IncludedData    int64        `json:"includedData" gorm:"not null;default:0"`
	IncludedMinutes int64        `json:"includedMinutes" gorm:"not null;default:0"`
	IncludedSMS     int64        `json:"includedSMS" gorm:"column:included_sms;not null;default:0"`
	BudgetLimit     float64      `json:"budgetLimit" gorm:"not null;default:0"`
	Status          string       `json:"status" gorm:"type:text;not null;default:active"`
	DataThreshold   int          `json:"dataThreshold" gorm:"not null;default:80"`
	CallThreshold   int          `json:"callThreshold" gorm:"not null;default:80"`
	SMSThreshold    int          `json:"smsThreshold" gorm:"column:sms_threshold;not null;default:80"`
	CreatedAt       time.Time    `json:"createdAt" gorm:"not null"`
	UpdatedAt       time.Time    `json:"updatedAt" gorm:"not null"`
}

// TableName sets the database table name.
func (Line) TableName() string { return "lines" }
