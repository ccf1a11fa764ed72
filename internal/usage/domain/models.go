// Package domain contains the append-only usage event log and the derived
// cycle aggregates.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// UsageEvent is one ingestion record. Events are immutable once created;
// cycle totals are always recomputed from them, never cached.
type UsageEvent struct {
	ID                   snowflake.ID `json:"id" gorm:"primaryKey"`
	LineID               snowflake.ID `json:"lineId" gorm:"not null;index;uniqueIndex:uidx_usage_line_idem,priority:1"`
	DataUsedMB           int64        `json:"dataUsedMB" gorm:"column:data_used_mb;not null;default:0"`
	CallMinutes          int64        `json:"callMinutes" gorm:"column:call_minutes;not null;default:0"`
	SMSCount             int64        `json:"smsCount" gorm:"column:sms_count;not null;default:0"`
	RoamingMinutes       int64        `json:"roamingMinutes" gorm:"column:roaming_minutes;not null;default:0"`
	InternationalMinutes int64        `json:"internationalMinutes" gorm:"column:international_minutes;not null;default:0"`
	IdempotencyKey       *string      `json:"idempotencyKey,omitempty" gorm:"type:text;uniqueIndex:uidx_usage_line_idem,priority:2"`
	CreatedAt            time.Time    `json:"createdAt" gorm:"not null;index"`
}

// TableName sets the database table name.
func (UsageEvent) TableName() string { return "usage_events" }

// CycleTotals is the field-wise sum of a line's events inside one billing
// cycle. Zero-valued when the cycle has no events.
type CycleTotals struct {
	DataUsedMB           int64 `json:"dataUsedMB" gorm:"column:data_used_mb"`
	CallMinutes          int64 `json:"callMinutes" gorm:"column:call_minutes"`
	SMSCount             int64 `json:"smsCount" gorm:"column:sms_count"`
	RoamingMinutes       int64 `json:"roamingMinutes" gorm:"column:roaming_minutes"`
	InternationalMinutes int64 `json:"internationalMinutes" gorm:"column:international_minutes"`
}

// MonthlyTotals is one bucket of the historical trend, keyed YYYY-MM.
type MonthlyTotals struct {
	Month       string `json:"month"`
	DataUsedMB  int64  `json:"dataUsedMB"`
	CallMinutes int64  `json:"callMinutes"`
	SMSCount    int64  `json:"smsCount"`
}

// LineUsageSummary is one row of the company dashboard.
type LineUsageSummary struct {
	ID              snowflake.ID `json:"id"`
	User            string       `json:"user"`
	MSISDN          string       `json:"msisdn"`
	PlanName        string       `json:"planName"`
	IncludedData    int64        `json:"includedData"`
	DataUsedMB      int64        `json:"dataUsedMB"`
	RemainingDataMB int64        `json:"remainingDataMB"`
	IncludedMinutes int64        `json:"includedMinutes"`
	CallMinutes     int64        `json:"callMinutes"`
	IncludedSMS     int64        `json:"includedSMS"`
	SMSCount        int64        `json:"smsCount"`
	BudgetLimit     float64      `json:"budgetLimit"`
}
