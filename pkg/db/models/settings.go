package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/wiibec/donations-backend/pkg/enums"
)

// DonationGoalSettings is the singleton row behind the campaign-wide goal bar.
type DonationGoalSettings struct {
	ID                     int             `gorm:"column:id;primaryKey"`
	GoalAmount             decimal.Decimal `gorm:"column:goal_amount;type:numeric(12,2);not null"`
	BaseProgressPercentage decimal.Decimal `gorm:"column:base_progress_percentage;type:numeric(5,2);not null;default:0"`
	Title                  string          `gorm:"column:title;not null"`
	Description            string          `gorm:"column:description;not null;default:''"`
	UpdatedAt              time.Time       `gorm:"column:updated_at;autoUpdateTime"`
}

// OrganizationSettings is the singleton row holding the nonprofit's
// registration info; snapshotted onto every issued invoice.
type OrganizationSettings struct {
	ID                 int       `gorm:"column:id;primaryKey"`
	Name               string    `gorm:"column:name;not null"`
	RegistrationNumber string    `gorm:"column:registration_number;not null"`
	Address            string    `gorm:"column:address;not null"`
	Email              string    `gorm:"column:email;not null"`
	Phone              string    `gorm:"column:phone;not null;default:''"`
	Website            string    `gorm:"column:website;not null;default:''"`
	UpdatedAt          time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// PageSetting toggles visibility of one public page.
type PageSetting struct {
	PageKey   enums.PageKey `gorm:"column:page_key;primaryKey"`
	IsEnabled bool          `gorm:"column:is_enabled;not null;default:true"`
	UpdatedAt time.Time     `gorm:"column:updated_at;autoUpdateTime"`
}
