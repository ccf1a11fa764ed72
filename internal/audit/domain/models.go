// Package domain contains the append-only system log model.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// SystemLogEntry is one audit record. Entries are append-only and are
// never mutated or deleted by normal flow.
type SystemLogEntry struct {
	ID        snowflake.ID      `json:"id" gorm:"primaryKey"`
	Action    string            `json:"action" gorm:"type:text;not null;index"`
	User      string            `json:"user" gorm:"column:user_name;type:text;not null;index"`
	Details   datatypes.JSONMap `json:"details" gorm:"type:jsonb"`
	CreatedAt time.Time         `json:"createdAt" gorm:"not null;index"`
}

// TableName sets the database table name.
func (SystemLogEntry) TableName() string { return "system_logs" }
