package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/enums"
)

// InvoiceIssue is a donor-reported problem with a receipt.
type InvoiceIssue struct {
	ID          uuid.UUID                `gorm:"column:id;type:uuid;primaryKey"`
	InvoiceID   uuid.UUID                `gorm:"column:invoice_id;type:uuid;not null;index"`
	ReporterID  uuid.UUID                `gorm:"column:reporter_id;type:uuid;not null;index"`
	Description string                   `gorm:"column:description;not null"`
	Status      enums.InvoiceIssueStatus `gorm:"column:status;type:invoice_issue_status;not null;default:'open'"`
	ResolvedAt  *time.Time               `gorm:"column:resolved_at"`
	CreatedAt   time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt   time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (i *InvoiceIssue) BeforeCreate(tx *gorm.DB) error {
	if i.ID == uuid.Nil {
		i.ID = uuid.New()
	}
	return nil
}
