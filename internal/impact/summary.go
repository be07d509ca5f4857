package impact

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

// Rank thresholds are lower-bound inclusive.
var (
	rankArgentMin  = decimal.NewFromInt(100)
	rankOrMin      = decimal.NewFromInt(250)
	rankPlatineMin = decimal.NewFromInt(500)

	hundred = decimal.NewFromInt(100)
)

// MetricProgress translates a donor's lifetime total into progress against one
// priced impact metric.
type MetricProgress struct {
	MetricID             string          `json:"metric_id"`
	Name                 string          `json:"name"`
	Description          string          `json:"description"`
	CostPerUnit          decimal.Decimal `json:"cost_per_unit"`
	UnitsAchieved        int64           `json:"units_achieved"`
	ProgressToNextUnit   decimal.Decimal `json:"progress_to_next_unit"`
	RemainingForNextUnit decimal.Decimal `json:"remaining_for_next_unit"`
}

// DonorSummary is the donor dashboard aggregate.
type DonorSummary struct {
	TotalDonated  decimal.Decimal  `json:"total_donated"`
	DonationCount int              `json:"donation_count"`
	Rank          enums.DonorRank  `json:"rank"`
	LastDonation  *time.Time       `json:"last_donation,omitempty"`
	MemberSince   int              `json:"member_since"`
	Metrics       []MetricProgress `json:"metrics"`
}

// Summarize folds a donor's donations into the dashboard aggregate. Only
// succeeded donations contribute; the sum is exact decimal arithmetic and does
// not depend on input order. Empty input yields a zero total and Bronze rank.
func Summarize(donations []models.Donation, accountCreatedAt time.Time, metrics []models.ImpactMetric) DonorSummary {
	total := decimal.Zero
	count := 0
	var last *time.Time
	for _, donation := range donations {
		if donation.Status != enums.DonationStatusSucceeded {
			continue
		}
		total = total.Add(donation.Amount)
		count++
		created := donation.CreatedAt
		if last == nil || created.After(*last) {
			ts := created
			last = &ts
		}
	}

	return DonorSummary{
		TotalDonated:  total,
		DonationCount: count,
		Rank:          Rank(total),
		LastDonation:  last,
		MemberSince:   accountCreatedAt.Year(),
		Metrics:       metricProgress(total, metrics),
	}
}

// Rank maps a lifetime total onto the donor tier ladder.
func Rank(total decimal.Decimal) enums.DonorRank {
	switch {
	case total.GreaterThanOrEqual(rankPlatineMin):
		return enums.DonorRankPlatine
	case total.GreaterThanOrEqual(rankOrMin):
		return enums.DonorRankOr
	case total.GreaterThanOrEqual(rankArgentMin):
		return enums.DonorRankArgent
	default:
		return enums.DonorRankBronze
	}
}

func metricProgress(total decimal.Decimal, metrics []models.ImpactMetric) []MetricProgress {
	ordered := make([]models.ImpactMetric, 0, len(metrics))
	for _, metric := range metrics {
		if !metric.IsActive || !metric.CostPerUnit.IsPositive() {
			continue
		}
		ordered = append(ordered, metric)
	}
	sort.SliceStable(ordered, func(i, j int) bool {
		return ordered[i].SortOrder < ordered[j].SortOrder
	})

	out := make([]MetricProgress, 0, len(ordered))
	for _, metric := range ordered {
		units := total.Div(metric.CostPerUnit).Floor().IntPart()
		partial := total.Mod(metric.CostPerUnit)
		progress := partial.Div(metric.CostPerUnit).Mul(hundred)
		if progress.IsNegative() {
			progress = decimal.Zero
		}
		if progress.GreaterThan(hundred) {
			progress = hundred
		}
		out = append(out, MetricProgress{
			MetricID:             metric.ID.String(),
			Name:                 metric.Name,
			Description:          metric.Description,
			CostPerUnit:          metric.CostPerUnit,
			UnitsAchieved:        units,
			ProgressToNextUnit:   progress,
			RemainingForNextUnit: metric.CostPerUnit.Sub(partial),
		})
	}
	return out
}
