package service

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	"github.com/smetelco/portal/internal/audit/repository"
	"github.com/smetelco/portal/internal/clock"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func newService(t *testing.T, name string) (auditdomain.Service, *clock.FakeClock) {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(fmt.Sprintf("file:%s?mode=memory&cache=shared", name)), &gorm.Config{})
	if err != nil {
		t.Fatal(err)
	}
	if err := db.AutoMigrate(&auditdomain.SystemLogEntry{}); err != nil {
		t.Fatal(err)
	}

	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatal(err)
	}
	fake := clock.NewFakeClock(time.Date(2024, time.March, 15, 12, 0, 0, 0, time.UTC))

	svc := NewService(Params{
		DB:    db,
		Log:   zap.NewNop(),
		GenID: node,
		Clock: fake,
		Repo:  repository.Provide(),
	})
	return svc, fake
}

func TestRecord_EmptyActionRejected(t *testing.T) {
	svc, _ := newService(t, "audit_action")

	if err := svc.Record(context.Background(), "  ", "admin", nil); err != auditdomain.ErrInvalidAction {
		t.Fatalf("expected invalid_action, got %v", err)
	}
}

func TestRecord_DefaultsUserToSystem(t *testing.T) {
	svc, _ := newService(t, "audit_system_user")
	ctx := context.Background()

	if err := svc.Record(ctx, "Order created", "", map[string]any{"orderId": "1"}); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.List(ctx, auditdomain.ListRequest{})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Logs) != 1 {
		t.Fatalf("expected one entry, got %d", len(resp.Logs))
	}
	if resp.Logs[0].User != "system" {
		t.Fatalf("expected system user, got %s", resp.Logs[0].User)
	}
}

func TestList_FiltersAndOrdering(t *testing.T) {
	svc, fake := newService(t, "audit_filters")
	ctx := context.Background()

	if err := svc.Record(ctx, "Order created", "admin", nil); err != nil {
		t.Fatal(err)
	}
	fake.Advance(time.Minute)
	if err := svc.Record(ctx, "Usage alert", "system", nil); err != nil {
		t.Fatal(err)
	}
	fake.Advance(time.Minute)
	if err := svc.Record(ctx, "Order created", "admin", nil); err != nil {
		t.Fatal(err)
	}

	resp, err := svc.List(ctx, auditdomain.ListRequest{Action: "Order created"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Logs) != 2 {
		t.Fatalf("expected 2 filtered entries, got %d", len(resp.Logs))
	}
	if !resp.Logs[0].CreatedAt.After(resp.Logs[1].CreatedAt) {
		t.Fatalf("expected newest first, got %v then %v", resp.Logs[0].CreatedAt, resp.Logs[1].CreatedAt)
	}

	resp, err = svc.List(ctx, auditdomain.ListRequest{User: "system"})
	if err != nil {
		t.Fatal(err)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].Action != "Usage alert" {
		t.Fatalf("unexpected user filter result %+v", resp.Logs)
	}
}

func TestList_CursorPagination(t *testing.T) {
	svc, fake := newService(t, "audit_cursor")
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		if err := svc.Record(ctx, "Order created", "admin", nil); err != nil {
			t.Fatal(err)
		}
		fake.Advance(time.Minute)
	}

	first, err := svc.List(ctx, auditdomain.ListRequest{Limit: 2})
	if err != nil {
		t.Fatal(err)
	}
	if len(first.Logs) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(first.Logs))
	}
	if !first.PageInfo.HasMore || first.PageInfo.NextPageToken == "" {
		t.Fatalf("expected another page, got %+v", first.PageInfo)
	}

	second, err := svc.List(ctx, auditdomain.ListRequest{Limit: 2, PageToken: first.PageInfo.NextPageToken})
	if err != nil {
		t.Fatal(err)
	}
	if len(second.Logs) != 2 {
		t.Fatalf("expected 2 entries on page two, got %d", len(second.Logs))
	}
	if !second.Logs[0].CreatedAt.Before(first.Logs[1].CreatedAt) {
		t.Fatalf("page two must continue past the cursor")
	}

	_, err = svc.List(ctx, auditdomain.ListRequest{PageToken: "not-base64!"})
	if err != auditdomain.ErrInvalidPageToken {
		t.Fatalf("expected invalid_page_token, got %v", err)
	}
}

func TestList_InvalidRange(t *testing.T) {
	svc, fake := newService(t, "audit_range")

	from := fake.Now()
	to := from.Add(-time.Hour)
	_, err := svc.List(context.Background(), auditdomain.ListRequest{From: &from, To: &to})
	if err != auditdomain.ErrInvalidTimeRange {
		t.Fatalf("expected invalid_time_range, got %v", err)
	}
}
