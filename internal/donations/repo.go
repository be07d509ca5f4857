package donations

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

// Repository handles donation persistence.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, donation *models.Donation) error
	Update(ctx context.Context, donation *models.Donation) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error)
	FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Donation, error)
	FindByStripeSessionIDForUpdate(ctx context.Context, sessionID string) (*models.Donation, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error)
	ListSucceededByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error)
	ListRecent(ctx context.Context, limit int) ([]models.Donation, error)
	SumSucceeded(ctx context.Context) (decimal.Decimal, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a donation repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, donation *models.Donation) error {
	return r.db.WithContext(ctx).Create(donation).Error
}

func (r *repository) Update(ctx context.Context, donation *models.Donation) error {
	donation.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(donation).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	var donation models.Donation
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&donation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (r *repository) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Donation, error) {
	return r.findBySession(ctx, r.db, sessionID)
}

// FindByStripeSessionIDForUpdate locks the donation row for the duration of
// the surrounding transaction.
func (r *repository) FindByStripeSessionIDForUpdate(ctx context.Context, sessionID string) (*models.Donation, error) {
	return r.findBySession(ctx, r.db.Clauses(clause.Locking{Strength: "UPDATE"}), sessionID)
}

func (r *repository) findBySession(ctx context.Context, db *gorm.DB, sessionID string) (*models.Donation, error) {
	var donation models.Donation
	if err := db.WithContext(ctx).
		Where("stripe_session_id = ?", sessionID).
		First(&donation).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &donation, nil
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	var rows []models.Donation
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListSucceededByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	var rows []models.Donation
	if err := r.db.WithContext(ctx).
		Where("donor_id = ? AND status = ?", donorID, enums.DonationStatusSucceeded).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) ListRecent(ctx context.Context, limit int) ([]models.Donation, error) {
	if limit <= 0 {
		limit = 20
	}
	var rows []models.Donation
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// SumSucceeded returns the exact sum of all succeeded donation amounts.
func (r *repository) SumSucceeded(ctx context.Context) (decimal.Decimal, error) {
	var raw decimal.NullDecimal
	if err := r.db.WithContext(ctx).
		Model(&models.Donation{}).
		Where("status = ?", enums.DonationStatusSucceeded).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&raw).Error; err != nil {
		return decimal.Zero, err
	}
	if !raw.Valid {
		return decimal.Zero, nil
	}
	return raw.Decimal, nil
}
