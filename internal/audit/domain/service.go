package domain

import (
	"context"
	"errors"
	"time"

	"github.com/smetelco/portal/pkg/db/pagination"
)

type ListRequest struct {
	User      string     `form:"user"`
	Action    string     `form:"action"`
	From      *time.Time `form:"from" time_format:"2006-01-02T15:04:05Z07:00"`
	To        *time.Time `form:"to" time_format:"2006-01-02T15:04:05Z07:00"`
	Limit     int        `form:"limit"`
	PageToken string     `form:"pageToken"`
}

type ListResponse struct {
	Logs     []SystemLogEntry     `json:"logs"`
	PageInfo *pagination.PageInfo `json:"pageInfo"`
}

// Service records and queries audit entries. Record is best-effort for
// callers: a failed audit write must never abort the primary operation.
type Service interface {
	Record(ctx context.Context, action, user string, details map[string]any) error
	List(ctx context.Context, req ListRequest) (*ListResponse, error)
}

var (
	ErrInvalidAction    = errors.New("invalid_action")
	ErrInvalidTimeRange = errors.New("invalid_time_range")
	ErrInvalidPageToken = errors.New("invalid_page_token")
)
