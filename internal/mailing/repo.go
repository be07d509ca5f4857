package mailing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

// CampaignRepository handles mailing campaign persistence.
type CampaignRepository interface {
	Create(ctx context.Context, campaign *models.Campaign) error
	MarkOutcome(ctx context.Context, id uuid.UUID, status enums.CampaignStatus, recipientCount int, sentAt *time.Time) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error)
	List(ctx context.Context) ([]models.Campaign, error)
}

type campaignRepository struct {
	db *gorm.DB
}

// NewCampaignRepository returns a campaign repository bound to the provided database.
func NewCampaignRepository(db *gorm.DB) CampaignRepository {
	return &campaignRepository{db: db}
}

func (r *campaignRepository) Create(ctx context.Context, campaign *models.Campaign) error {
	return r.db.WithContext(ctx).Create(campaign).Error
}

func (r *campaignRepository) MarkOutcome(ctx context.Context, id uuid.UUID, status enums.CampaignStatus, recipientCount int, sentAt *time.Time) error {
	return r.db.WithContext(ctx).
		Model(&models.Campaign{}).
		Where("id = ?", id).
		Updates(map[string]any{
			"status":          status,
			"recipient_count": recipientCount,
			"sent_at":         sentAt,
		}).Error
}

func (r *campaignRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.Campaign, error) {
	var campaign models.Campaign
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&campaign).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &campaign, nil
}

func (r *campaignRepository) List(ctx context.Context) ([]models.Campaign, error) {
	var rows []models.Campaign
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
