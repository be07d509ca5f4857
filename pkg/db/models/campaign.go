package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/enums"
)

// Campaign records one mailing batch with a snapshot of who it targeted.
type Campaign struct {
	ID             uuid.UUID            `gorm:"column:id;type:uuid;primaryKey"`
	Subject        string               `gorm:"column:subject;not null"`
	BodyHTML       string               `gorm:"column:body_html;not null"`
	RecipientGroup enums.RecipientGroup `gorm:"column:recipient_group;type:recipient_group;not null"`
	Status         enums.CampaignStatus `gorm:"column:status;type:campaign_status;not null;default:'sending'"`
	RecipientCount int                  `gorm:"column:recipient_count;not null;default:0"`
	Recipients     pq.StringArray       `gorm:"column:recipients;type:text[]"`
	CreatedBy      uuid.UUID            `gorm:"column:created_by;type:uuid;not null"`
	SentAt         *time.Time           `gorm:"column:sent_at"`
	CreatedAt      time.Time            `gorm:"column:created_at;autoCreateTime"`
}

// BeforeCreate assigns the primary key when the caller has not.
func (c *Campaign) BeforeCreate(tx *gorm.DB) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return nil
}
