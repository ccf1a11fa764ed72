package service

import (
	"context"
	"strings"

	"github.com/bwmarrin/snowflake"
	analyticsdomain "github.com/smetelco/portal/internal/analytics/domain"
	auditdomain "github.com/smetelco/portal/internal/audit/domain"
	linedomain "github.com/smetelco/portal/internal/line/domain"
	"github.com/smetelco/portal/pkg/repository"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	Audit auditdomain.Service
}

// staticRecommender serves a fixed recommendation profile. A usage-driven
// model can replace it behind the same interface.
type staticRecommender struct {
	log   *zap.Logger
	audit auditdomain.Service
	lines repository.Repository[linedomain.Line]
}

func NewRecommender(p Params) analyticsdomain.Recommender {
	return &staticRecommender{
		log:   p.Log.Named("analytics.service"),
		audit: p.Audit,
		lines: repository.ProvideStore[linedomain.Line](p.DB),
	}
}

func (r *staticRecommender) Recommend(ctx context.Context, lineID string) (*analyticsdomain.Recommendation, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(lineID))
	if err != nil || id == 0 {
		return nil, linedomain.ErrInvalidID
	}
	line, err := r.lines.FindOne(ctx, &linedomain.Line{ID: id})
	if err != nil {
		return nil, err
	}
	if line == nil {
		return nil, linedomain.ErrNotFound
	}

	_ = r.audit.Record(ctx, "Analytics requested", "system", map[string]any{
		"lineId": id.String(),
	})

	return &analyticsdomain.Recommendation{
		OptimalProfile:   "Business Flex",
		PotentialSavings: 18.50,
		AlternativePlans: []analyticsdomain.AlternativePlan{
			{Name: "Business Flex S", MonthlyFee: 19.99, IncludedData: 10240, MonthlySavings: 5.00},
			{Name: "Business Flex M", MonthlyFee: 29.99, IncludedData: 25600, MonthlySavings: 12.50},
			{Name: "Business Flex L", MonthlyFee: 44.99, IncludedData: 61440, MonthlySavings: 18.50},
		},
		PrimaryAction: "review_data_plans",
		Insights: []string{
			"This line exceeded 80% of its data allowance in recent cycles",
			"Included minutes are rarely used up; a smaller voice bundle would not change costs",
			"A roaming add-on would cost less than the current roaming overage",
		},
	}, nil
}
