package settings

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
)

const organizationRowID = 1

// OrganizationRepository handles the organization settings singleton.
type OrganizationRepository interface {
	WithTx(tx *gorm.DB) OrganizationRepository
	Get(ctx context.Context) (*models.OrganizationSettings, error)
	Update(ctx context.Context, settings *models.OrganizationSettings) error
}

type organizationRepository struct {
	db *gorm.DB
}

// NewOrganizationRepository returns an organization settings repository.
func NewOrganizationRepository(db *gorm.DB) OrganizationRepository {
	return &organizationRepository{db: db}
}

func (r *organizationRepository) WithTx(tx *gorm.DB) OrganizationRepository {
	if tx == nil {
		return r
	}
	return &organizationRepository{db: tx}
}

func (r *organizationRepository) Get(ctx context.Context) (*models.OrganizationSettings, error) {
	var settings models.OrganizationSettings
	if err := r.db.WithContext(ctx).
		Where("id = ?", organizationRowID).
		First(&settings).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &settings, nil
}

func (r *organizationRepository) Update(ctx context.Context, settings *models.OrganizationSettings) error {
	settings.ID = organizationRowID
	settings.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(settings).Error
}

// PageRepository handles public page visibility toggles.
type PageRepository interface {
	WithTx(tx *gorm.DB) PageRepository
	List(ctx context.Context) ([]models.PageSetting, error)
	Find(ctx context.Context, key enums.PageKey) (*models.PageSetting, error)
	SetEnabled(ctx context.Context, key enums.PageKey, enabled bool) error
}

type pageRepository struct {
	db *gorm.DB
}

// NewPageRepository returns a page settings repository.
func NewPageRepository(db *gorm.DB) PageRepository {
	return &pageRepository{db: db}
}

func (r *pageRepository) WithTx(tx *gorm.DB) PageRepository {
	if tx == nil {
		return r
	}
	return &pageRepository{db: tx}
}

func (r *pageRepository) List(ctx context.Context) ([]models.PageSetting, error) {
	var rows []models.PageSetting
	if err := r.db.WithContext(ctx).
		Order("page_key ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *pageRepository) Find(ctx context.Context, key enums.PageKey) (*models.PageSetting, error) {
	var setting models.PageSetting
	if err := r.db.WithContext(ctx).
		Where("page_key = ?", key).
		First(&setting).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &setting, nil
}

func (r *pageRepository) SetEnabled(ctx context.Context, key enums.PageKey, enabled bool) error {
	return r.db.WithContext(ctx).
		Model(&models.PageSetting{}).
		Where("page_key = ?", key).
		Updates(map[string]any{
			"is_enabled": enabled,
			"updated_at": time.Now().UTC(),
		}).Error
}
