package invoices

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/wiibec/donations-backend/pkg/db/models"
)

// Repository handles invoice persistence and number allocation.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, invoice *models.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error)
	FindByDonationID(ctx context.Context, donationID uuid.UUID) (*models.Invoice, error)
	ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Invoice, error)
	List(ctx context.Context, limit int) ([]models.Invoice, error)
	NextInvoiceNumber(ctx context.Context, year int) (string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns an invoice repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, invoice *models.Invoice) error {
	return r.db.WithContext(ctx).Create(invoice).Error
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) FindByDonationID(ctx context.Context, donationID uuid.UUID) (*models.Invoice, error) {
	var invoice models.Invoice
	if err := r.db.WithContext(ctx).
		Where("donation_id = ?", donationID).
		First(&invoice).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &invoice, nil
}

func (r *repository) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Invoice, error) {
	var rows []models.Invoice
	if err := r.db.WithContext(ctx).
		Where("donor_id = ?", donorID).
		Order("issue_date DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *repository) List(ctx context.Context, limit int) ([]models.Invoice, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []models.Invoice
	if err := r.db.WithContext(ctx).
		Order("issue_date DESC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// NextInvoiceNumber allocates the next per-year sequence value. The upsert
// takes a row lock, so concurrent issuers inside transactions serialize on the
// year row until commit.
func (r *repository) NextInvoiceNumber(ctx context.Context, year int) (string, error) {
	now := time.Now().UTC()
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "year"}},
			DoUpdates: clause.Assignments(map[string]any{
				"next_value": gorm.Expr("next_value + 1"),
				"updated_at": now,
			}),
		}).
		Create(&models.InvoiceSequence{Year: year, NextValue: 2, UpdatedAt: now}).Error; err != nil {
		return "", err
	}

	var seq models.InvoiceSequence
	if err := r.db.WithContext(ctx).
		Where("year = ?", year).
		First(&seq).Error; err != nil {
		return "", err
	}
	return fmt.Sprintf("WBC-%d-%06d", year, seq.NextValue-1), nil
}
