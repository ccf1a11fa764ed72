package domain

import (
	"testing"

	linedomain "github.com/smetelco/portal/internal/line/domain"
	usagedomain "github.com/smetelco/portal/internal/usage/domain"
)

func testLine(dataThreshold, callThreshold, smsThreshold int) linedomain.Line {
	return linedomain.Line{
		IncludedData:    1000,
		IncludedMinutes: 500,
		IncludedSMS:     100,
		DataThreshold:   dataThreshold,
		CallThreshold:   callThreshold,
		SMSThreshold:    smsThreshold,
	}
}

func TestEvaluate_BelowEveryLevel(t *testing.T) {
	line := testLine(80, 80, 80)
	totals := usagedomain.CycleTotals{DataUsedMB: 700, CallMinutes: 300, SMSCount: 50}

	fired := Evaluate(line, totals)
	if len(fired) != 0 {
		t.Fatalf("expected no alerts at 70%%, got %v", fired)
	}
}

func TestEvaluate_FiresAtConfiguredLevel(t *testing.T) {
	line := testLine(80, 80, 80)
	totals := usagedomain.CycleTotals{DataUsedMB: 850}

	fired := Evaluate(line, totals)
	if len(fired) != 1 {
		t.Fatalf("expected one alert, got %v", fired)
	}
	if fired[0].Metric != MetricData || fired[0].Level != 80 {
		t.Fatalf("unexpected alert %+v", fired[0])
	}
	if fired[0].SpentPct != 85 {
		t.Fatalf("expected 85%% spent, got %v", fired[0].SpentPct)
	}
}

func TestEvaluate_ConfiguredAboveCrossedLevelStaysSilent(t *testing.T) {
	// Configured at 90: crossing 80 does not fire, only reaching 90 does.
	line := testLine(90, 80, 80)

	fired := Evaluate(line, usagedomain.CycleTotals{DataUsedMB: 850})
	if len(fired) != 0 {
		t.Fatalf("85%% with threshold 90 should not fire, got %v", fired)
	}

	fired = Evaluate(line, usagedomain.CycleTotals{DataUsedMB: 910})
	if len(fired) != 1 || fired[0].Level != 90 {
		t.Fatalf("91%% with threshold 90 should fire at 90, got %v", fired)
	}
}

func TestEvaluate_HundredPercentLevel(t *testing.T) {
	line := testLine(100, 80, 80)

	fired := Evaluate(line, usagedomain.CycleTotals{DataUsedMB: 1000})
	if len(fired) != 1 || fired[0].Level != 100 {
		t.Fatalf("expected alert at 100, got %v", fired)
	}
}

func TestEvaluate_ZeroAllowanceSkipped(t *testing.T) {
	line := testLine(80, 80, 80)
	line.IncludedSMS = 0
	totals := usagedomain.CycleTotals{SMSCount: 500}

	fired := Evaluate(line, totals)
	if len(fired) != 0 {
		t.Fatalf("zero allowance must never fire, got %v", fired)
	}
}

func TestEvaluate_IndependentMetrics(t *testing.T) {
	line := testLine(80, 80, 80)
	totals := usagedomain.CycleTotals{DataUsedMB: 820, CallMinutes: 450, SMSCount: 10}

	fired := Evaluate(line, totals)
	if len(fired) != 2 {
		t.Fatalf("expected data and calls alerts, got %v", fired)
	}
}
