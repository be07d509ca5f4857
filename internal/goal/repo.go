package goal

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
)

const settingsRowID = 1

// Repository handles the donation goal settings singleton.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Get(ctx context.Context) (*models.DonationGoalSettings, error)
	Update(ctx context.Context, settings *models.DonationGoalSettings) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a goal settings repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Get(ctx context.Context) (*models.DonationGoalSettings, error) {
	var settings models.DonationGoalSettings
	if err := r.db.WithContext(ctx).
		Where("id = ?", settingsRowID).
		First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *repository) Update(ctx context.Context, settings *models.DonationGoalSettings) error {
	settings.ID = settingsRowID
	settings.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(settings).Error
}
