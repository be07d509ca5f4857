package analytics

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

// DailyTotal is one day's succeeded donation volume.
type DailyTotal struct {
	Day   time.Time       `json:"day"`
	Count int64           `json:"count"`
	Total decimal.Decimal `json:"total"`
}

// Repository runs the read-side aggregations for the back office.
type Repository interface {
	SumSucceeded(ctx context.Context) (decimal.Decimal, error)
	CountSucceeded(ctx context.Context) (int64, error)
	CountDistinctDonors(ctx context.Context) (int64, error)
	ListSucceededSince(ctx context.Context, since time.Time) ([]models.Donation, error)
	Recent(ctx context.Context, limit int) ([]models.Donation, error)
	ListDonors(ctx context.Context) ([]DonorSummary, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an analytics repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) SumSucceeded(ctx context.Context) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ?", enums.DonationStatusSucceeded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&total).Error; err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}

func (r *repository) CountSucceeded(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ?", enums.DonationStatusSucceeded).
		Count(&count).Error
	return count, err
}

func (r *repository) CountDistinctDonors(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ?", enums.DonationStatusSucceeded).
		Distinct("donor_id").
		Count(&count).Error
	return count, err
}

func (r *repository) ListSucceededSince(ctx context.Context, since time.Time) ([]models.Donation, error) {
	var rows []models.Donation
	if err := r.db.WithContext(ctx).
		Where("status = ? AND created_at >= ?", enums.DonationStatusSucceeded, since).
		Order("created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) Recent(ctx context.Context, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 10
	}
	var rows []models.Donation
	if err := r.db.WithContext(ctx).
		Where("status = ?", enums.DonationStatusSucceeded).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// DonorSummary is one profile row with its lifetime succeeded total.
type DonorSummary struct {
	ID            uuid.UUID       `json:"id"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	LastName      string          `json:"last_name"`
	IsAdmin       bool            `json:"is_admin"`
	CreatedAt     time.Time       `json:"created_at"`
	TotalDonated  decimal.Decimal `json:"total_donated"`
	DonationCount int64           `json:"donation_count"`
}

// ListDonors returns every profile with its aggregate succeeded donations,
// newest profile first.
func (r *repository) ListDonors(ctx context.Context) ([]DonorSummary, error) {
	var rows []DonorSummary
	if err := r.db.WithContext(ctx).
		Model(&models.Profile{}).
		Select("profiles.id, profiles.email, profiles.first_name, profiles.last_name, profiles.is_admin, profiles.created_at, "+
			"COALESCE(SUM(CASE WHEN donations.status = ? THEN donations.amount ELSE 0 END), 0) AS total_donated, "+
			"COALESCE(SUM(CASE WHEN donations.status = ? THEN 1 ELSE 0 END), 0) AS donation_count", enums.DonationStatusSucceeded, enums.DonationStatusSucceeded).
		Joins("LEFT JOIN donations ON donations.donor_id = profiles.id").
		Group("profiles.id, profiles.email, profiles.first_name, profiles.last_name, profiles.is_admin, profiles.created_at").
		Order("profiles.created_at DESC").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
