package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/enums"
)

// Donation records one monetary contribution. Rows are created pending when
// checkout is initiated and settle exactly once to succeeded or failed; they
// are never mutated afterward and never deleted.
type Donation struct {
	ID              uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	DonorID         uuid.UUID            `gorm:"column:donor_id;type:uuid;not null;index"`
	Amount          decimal.Decimal      `gorm:"column:amount;type:numeric(12,2);not null"`
	Currency        enums.Currency       `gorm:"column:currency;not null;default:'CAD'"`
	Status          enums.DonationStatus `gorm:"column:status;type:donation_status;not null;default:'pending'"`
	DonationType    enums.DonationType   `gorm:"column:donation_type;type:donation_type;not null;default:'personal'"`
	CompanyName     *string              `gorm:"column:company_name"`
	CompanyAddress  *string              `gorm:"column:company_address"`
	PaymentMethod   string               `gorm:"column:payment_method;not null;default:'card'"`
	StripeSessionID *string              `gorm:"column:stripe_session_id;uniqueIndex"`
	CreatedAt       time.Time            `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt       time.Time            `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (d *Donation) BeforeCreate(tx *gorm.DB) error {
	if d.ID == uuid.Nil {
		d.ID = uuid.New()
	}
	return nil
}
