package repository

import (
	"context"

	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() auditdomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, entry *auditdomain.SystemLogEntry) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO system_logs (id, action, user_name, details, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		entry.ID,
		entry.Action,
		entry.User,
		entry.Details,
		entry.CreatedAt,
	).Error
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter auditdomain.ListFilter) ([]auditdomain.SystemLogEntry, error) {
	stmt := db.WithContext(ctx).Model(&auditdomain.SystemLogEntry{})
	if filter.User != "" {
		stmt = stmt.Where("user_name = ?", filter.User)
	}
	if filter.Action != "" {
		stmt = stmt.Where("action = ?", filter.Action)
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at <= ?", *filter.To)
	}
	if filter.Before != nil {
		stmt = stmt.Where("created_at < ?", *filter.Before)
	}
	limit := filter.Limit
	if limit <= 0 {
		limit = 100
	}

	// One extra row signals another page to the cursor builder.
	var entries []auditdomain.SystemLogEntry
	err := stmt.Order("created_at DESC").Limit(limit + 1).Find(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}
