package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// Insert appends an event. It reports false without error when an
	// idempotency-key conflict suppressed the write.
	Insert(ctx context.Context, db *gorm.DB, event *UsageEvent) (bool, error)
	FindByIdempotencyKey(ctx context.Context, db *gorm.DB, lineID snowflake.ID, key string) (*UsageEvent, error)
	// SumWindow aggregates events for a line inside [from, to).
	SumWindow(ctx context.Context, db *gorm.DB, lineID snowflake.ID, from, to time.Time) (CycleTotals, error)
}
