// Package domain implements the usage threshold evaluator.
package domain

import (
	linedomain "github.com/smetelco/portal/internal/line/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
)

type Metric string

const (
	MetricData  Metric = "data"
	MetricCalls Metric = "calls"
	MetricSMS   Metric = "sms"
)

// Ladder is the fixed set of percentage levels checked for alerting.
var Ladder = []int{80, 90, 100}

// Alert reports one crossed threshold.
type Alert struct {
	Metric   Metric  `json:"metric"`
	Level    int     `json:"level"`
	SpentPct float64 `json:"spentPct"`
}

// Evaluate compares cycle totals against the line's allowances and returns
// the thresholds that fired. A metric fires when its spent percentage has
// reached a ladder level AND the line's configured threshold for that
// metric equals that exact level. A line configured at 90 therefore stays
// silent while crossing 80. Metrics whose allowance is zero are skipped
// entirely.
func Evaluate(line linedomain.Line, totals usagedomain.CycleTotals) []Alert {
	var fired []Alert

	fired = appendFired(fired, MetricData, totals.DataUsedMB, line.IncludedData, line.DataThreshold)
	fired = appendFired(fired, MetricCalls, totals.CallMinutes, line.IncludedMinutes, line.CallThreshold)
	fired = appendFired(fired, MetricSMS, totals.SMSCount, line.IncludedSMS, line.SMSThreshold)

	return fired
}

func appendFired(fired []Alert, metric Metric, used, included int64, configured int) []Alert {
	if included <= 0 {
		return fired
	}
	pct := float64(used) / float64(included) * 100
	for _, level := range Ladder {
		if pct >= float64(level) && configured == level {
			fired = append(fired, Alert{Metric: metric, Level: level, SpentPct: pct})
		}
	}
	return fired
}
