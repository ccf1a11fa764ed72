package repository

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() usagedomain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, event *usagedomain.UsageEvent) (bool, error) {
	if event == nil {
		return false, errors.New("missing_usage_event")
	}
	stmt := db.WithContext(ctx)
	if event.IdempotencyKey != nil && *event.IdempotencyKey != "" {
		stmt = stmt.Clauses(buildIdempotencyConflictClause(db))
	}
	result := stmt.Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindByIdempotencyKey(ctx context.Context, db *gorm.DB, lineID snowflake.ID, key string) (*usagedomain.UsageEvent, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, nil
	}
	var event usagedomain.UsageEvent
	err := db.WithContext(ctx).
		Where("line_id = ? AND idempotency_key = ?", lineID, key).
		First(&event).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &event, nil
}

func (r *repo) SumWindow(ctx context.Context, db *gorm.DB, lineID snowflake.ID, from, to time.Time) (usagedomain.CycleTotals, error) {
	var totals usagedomain.CycleTotals
	err := db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(data_used_mb), 0) AS data_used_mb,
		        COALESCE(SUM(call_minutes), 0) AS call_minutes,
		        COALESCE(SUM(sms_count), 0) AS sms_count,
		        COALESCE(SUM(roaming_minutes), 0) AS roaming_minutes,
		        COALESCE(SUM(international_minutes), 0) AS international_minutes
		 FROM usage_events
		 WHERE line_id = ? AND created_at >= ? AND created_at < ?`,
		lineID,
		from,
		to,
	).Scan(&totals).Error
	if err != nil {
		return usagedomain.CycleTotals{}, err
	}
	return totals, nil
}

func buildIdempotencyConflictClause(db *gorm.DB) clause.OnConflict {
	conflict := clause.OnConflict{
		Columns:   []clause.Column{{Name: "line_id"}, {Name: "idempotency_key"}},
		DoNothing: true,
	}
	if db != nil && strings.EqualFold(db.Dialector.Name(), "postgres") {
		conflict.TargetWhere = clause.Where{Exprs: []clause.Expression{
			clause.Expr{SQL: "idempotency_key IS NOT NULL"},
		}}
	}
	return conflict
}
