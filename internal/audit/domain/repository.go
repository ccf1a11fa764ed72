package domain

import (
	"context"
	"time"

	"gorm.io/gorm"
)

type ListFilter struct {
	User   string
	Action string
	From   *time.Time
	To     *time.Time
	// Before restricts the page to entries older than the cursor instant.
	Before *time.Time
	Limit  int
}

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, entry *SystemLogEntry) error
	List(ctx context.Context, db *gorm.DB, filter ListFilter) ([]SystemLogEntry, error)
}
