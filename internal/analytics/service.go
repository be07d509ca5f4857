package analytics

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

const (
	defaultWindowDays = 30
	recentLimit       = 10
)

// Overview is the back-office dashboard payload.
type Overview struct {
	TotalRaised     decimal.Decimal   `json:"total_raised"`
	DonationCount   int64             `json:"donation_count"`
	DonorCount      int64             `json:"donor_count"`
	AverageDonation decimal.Decimal   `json:"average_donation"`
	DonationsByDay  []DailyTotal      `json:"donations_by_day"`
	Recent          []models.Donation `json:"recent"`
}

// Service assembles donation KPIs for the back office.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService validates dependencies and builds the service.
func NewService(repo Repository, now func() time.Time) (*Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "analytics repo required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{repo: repo, now: now}, nil
}

// Overview computes the totals, the per-day series for the trailing window,
// and the most recent donations. Sums stay exact; only the average divides.
func (s *Service) Overview(ctx context.Context) (*Overview, error) {
	total, err := s.repo.SumSucceeded(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "sum donations")
	}
	count, err := s.repo.CountSucceeded(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count donations")
	}
	donors, err := s.repo.CountDistinctDonors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "count donors")
	}

	average := decimal.Zero
	if count > 0 {
		average = total.Div(decimal.NewFromInt(count)).Round(2)
	}

	since := s.now().AddDate(0, 0, -defaultWindowDays).Truncate(24 * time.Hour)
	window, err := s.repo.ListSucceededSince(ctx, since)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load donation window")
	}

	recent, err := s.repo.Recent(ctx, recentLimit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load recent donations")
	}

	return &Overview{
		TotalRaised:     total,
		DonationCount:   count,
		DonorCount:      donors,
		AverageDonation: average,
		DonationsByDay:  groupByDay(window),
		Recent:          recent,
	}, nil
}

func groupByDay(donations []models.Donation) []DailyTotal {
	byDay := make(map[time.Time]*DailyTotal)
	for _, donation := range donations {
		day := donation.CreatedAt.UTC().Truncate(24 * time.Hour)
		bucket, ok := byDay[day]
		if !ok {
			bucket = &DailyTotal{Day: day, Total: decimal.Zero}
			byDay[day] = bucket
		}
		bucket.Count++
		bucket.Total = bucket.Total.Add(donation.Amount)
	}

	totals := make([]DailyTotal, 0, len(byDay))
	for _, bucket := range byDay {
		totals = append(totals, *bucket)
	}
	sort.Slice(totals, func(i, j int) bool { return totals[i].Day.Before(totals[j].Day) })
	return totals
}

// ListDonors serves the back-office users table.
func (s *Service) ListDonors(ctx context.Context) ([]DonorSummary, error) {
	rows, err := s.repo.ListDonors(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donors")
	}
	return rows, nil
}
