package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"github.com/smetelco/portal/internal/clock"
	"github.com/smetelco/portal/pkg/db/pagination"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Clock clock.Clock
	Repo  auditdomain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	clock clock.Clock
	repo  auditdomain.Repository
}

func NewService(p Params) auditdomain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("audit.service"),
		genID: p.GenID,
		clock: p.Clock,
		repo:  p.Repo,
	}
}

func (s *Service) Record(ctx context.Context, action, user string, details map[string]any) error {
	action = strings.TrimSpace(action)
	if action == "" {
		return auditdomain.ErrInvalidAction
	}
	if strings.TrimSpace(user) == "" {
		user = "system"
	}

	payload := map[string]any{}
	for key, value := range details {
		if key == "" {
			continue
		}
		payload[key] = value
	}

	entry := auditdomain.SystemLogEntry{
		ID:        s.genID.Generate(),
		Action:    action,
		User:      user,
		Details:   datatypes.JSONMap(payload),
		CreatedAt: s.clock.Now().UTC(),
	}

	if err := s.repo.Insert(ctx, s.db, &entry); err != nil {
		s.log.Warn("failed to write system log", zap.String("action", action), zap.Error(err))
		return err
	}
	return nil
}

func (s *Service) List(ctx context.Context, req auditdomain.ListRequest) (*auditdomain.ListResponse, error) {
	if req.From != nil && req.To != nil && req.From.After(*req.To) {
		return nil, auditdomain.ErrInvalidTimeRange
	}

	limit := req.Limit
	if limit <= 0 {
		limit = 100
	}
	if limit > 500 {
		limit = 500
	}

	var before *time.Time
	if token := strings.TrimSpace(req.PageToken); token != "" {
		cursor, err := pagination.DecodeCursor(token)
		if err != nil {
			return nil, auditdomain.ErrInvalidPageToken
		}
		at, err := time.Parse(time.RFC3339Nano, cursor.CreatedAt)
		if err != nil {
			return nil, auditdomain.ErrInvalidPageToken
		}
		before = &at
	}

	entries, err := s.repo.List(ctx, s.db, auditdomain.ListFilter{
		User:   strings.TrimSpace(req.User),
		Action: strings.TrimSpace(req.Action),
		From:   req.From,
		To:     req.To,
		Before: before,
		Limit:  limit,
	})
	if err != nil {
		return nil, err
	}

	refs := make([]*auditdomain.SystemLogEntry, len(entries))
	for i := range entries {
		refs[i] = &entries[i]
	}
	pageInfo := pagination.BuildCursorPageInfo(refs, limit, func(entry *auditdomain.SystemLogEntry) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        entry.ID.String(),
			CreatedAt: entry.CreatedAt.Format(time.RFC3339Nano),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if len(entries) > limit {
		entries = entries[:limit]
	}

	return &auditdomain.ListResponse{Logs: entries, PageInfo: pageInfo}, nil
}
