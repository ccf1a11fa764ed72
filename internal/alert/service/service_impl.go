package service

import (
	"context"
	"fmt"

	alertdomain "github.com/smetelco/portal/internal/alert/domain"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	"github.com/smetelco/portal/internal/metrics"
	"github.com/smetelco/portal/internal/sms"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

type Params struct {
	fx.In

	Log      *zap.Logger
	AuditSvc auditdomain.Service
	Sender   sms.Sender
	Metrics  *metrics.Metrics `optional:"true"`
}

type Service struct {
	log      *zap.Logger
	auditSvc auditdomain.Service
	sender   sms.Sender
	metrics  *metrics.Metrics
}

func NewService(p Params) alertdomain.Service {
	return &Service{
		log:      p.Log.Named("alert.service"),
		auditSvc: p.AuditSvc,
		sender:   p.Sender,
		metrics:  p.Metrics,
	}
}

// HandleTotals evaluates the ladder and dispatches every fired alert. All
// side effects are best-effort; failures are logged and swallowed so the
// ingest path never aborts on a notification problem.
func (s *Service) HandleTotals(ctx context.Context, line linedomain.Line, totals usagedomain.CycleTotals) []alertdomain.Alert {
	fired := alertdomain.Evaluate(line, totals)

	for _, alert := range fired {
		s.log.Warn("usage threshold reached",
			zap.String("msisdn", line.MSISDN),
			zap.String("metric", string(alert.Metric)),
			zap.Int("level", alert.Level),
			zap.Float64("spentPct", alert.SpentPct),
		)

		if s.metrics != nil {
			s.metrics.AlertsFired.WithLabelValues(string(alert.Metric)).Inc()
		}

		_ = s.auditSvc.Record(ctx, "Usage alert", "system", map[string]any{
			"lineId":   line.ID.String(),
			"msisdn":   line.MSISDN,
			"metric":   string(alert.Metric),
			"level":    alert.Level,
			"spentPct": alert.SpentPct,
		})

		body := fmt.Sprintf("Alert: %d%% of your included %s reached for %s", alert.Level, alert.Metric, line.MSISDN)
		if err := s.sender.Send(ctx, line.MSISDN, body); err != nil {
			s.log.Warn("alert notification failed", zap.String("msisdn", line.MSISDN), zap.Error(err))
		}
	}

	return fired
}
