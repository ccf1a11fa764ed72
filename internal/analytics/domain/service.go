// Package domain contains the plan recommendation model shown on the
// line detail screen.
package domain

import "context"

type AlternativePlan struct {
	Name           string  `json:"name"`
	MonthlyFee     float64 `json:"monthlyFee"`
	IncludedData   int64   `json:"includedData"`
	MonthlySavings float64 `json:"monthlySavings"`
}

// Recommendation is the advisory payload for a line. Numbers are
// indicative, not binding offers.
type Recommendation struct {
	OptimalProfile   string            `json:"optimalProfile"`
	PotentialSavings float64           `json:"potentialSavings"`
	AlternativePlans []AlternativePlan `json:"alternativePlans"`
	PrimaryAction    string            `json:"primaryAction"`
	Insights         []string          `json:"insights"`
}

// Recommender produces a recommendation for a line. Implementations may
// be static or model-backed; callers treat the output as opaque advice.
type Recommender interface {
	Recommend(ctx context.Context, lineID string) (*Recommendation, error)
}
