package domain

import (
	"context"

	linedomain "github.com/smetelco/portal/internal/line/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
)

// Service evaluates a line's totals and dispatches notifications for
// crossed thresholds. It is best-effort by contract: it never mutates the
// line or totals and never fails the caller.
type Service interface {
	HandleTotals(ctx context.Context, line linedomain.Line, totals usagedomain.CycleTotals) []Alert
}
