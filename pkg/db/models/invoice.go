package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Invoice is the tax receipt derived 1:1 from a succeeded donation. Donor and
// organization details are captured at issuance so later profile or settings
// edits never rewrite historical receipts.
type Invoice struct {
	ID            uuid.UUID       `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceNumber string          `gorm:"column:invoice_number;not null;uniqueIndex"`
	DonationID    uuid.UUID       `gorm:"column:donation_id;type:uuid;not null;uniqueIndex"`
	DonorID       uuid.UUID       `gorm:"column:donor_id;type:uuid;not null;index"`
	DonorName     string          `gorm:"column:donor_name;not null"`
	DonorEmail    string          `gorm:"column:donor_email;not null"`
	DonorAddress  *string         `gorm:"column:donor_address"`
	OrgName       string          `gorm:"column:org_name;not null"`
	OrgNumber     string          `gorm:"column:org_number;not null"`
	OrgAddress    string          `gorm:"column:org_address;not null"`
	OrgEmail      string          `gorm:"column:org_email;not null"`
	Amount        decimal.Decimal `gorm:"column:amount;type:numeric(12,2);not null"`
	IssueDate     time.Time       `gorm:"column:issue_date;not null"`
	CreatedAt     time.Time       `gorm:"column:created_at;autoCreateTime"`
}

// InvoiceSequence allocates per-year invoice numbers. The row is locked for
// update inside the issuing transaction.
type InvoiceSequence struct {
	Year      int       `gorm:"column:year;primaryKey"`
	NextValue int64     `gorm:"column:next_value;not null;default:1"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (i *Invoice) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
