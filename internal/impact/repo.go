package impact

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
)

// MetricRepository handles impact metric persistence.
type MetricRepository interface {
	WithTx(tx *gorm.DB) MetricRepository
	Create(ctx context.Context, metric *models.ImpactMetric) error
	Update(ctx context.Context, metric *models.ImpactMetric) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.ImpactMetric, error)
	List(ctx context.Context) ([]models.ImpactMetric, error)
	ListActive(ctx context.Context) ([]models.ImpactMetric, error)
}

type metricRepository struct {
	db *gorm.DB
}

// NewMetricRepository returns an impact metric repository bound to the provided database.
func NewMetricRepository(db *gorm.DB) MetricRepository {
	return &metricRepository{db: db}
}

func (r *metricRepository) WithTx(tx *gorm.DB) MetricRepository {
	if tx == nil {
		return r
	}
	return &metricRepository{db: tx}
}

func (r *metricRepository) Create(ctx context.Context, metric *models.ImpactMetric) error {
	return r.db.WithContext(ctx).Create(metric).Error
}

func (r *metricRepository) Update(ctx context.Context, metric *models.ImpactMetric) error {
	metric.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(metric).Error
}

func (r *metricRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Delete(&models.ImpactMetric{}, "id = ?", id).Error
}

func (r *metricRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.ImpactMetric, error) {
	var metric models.ImpactMetric
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&metric).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &metric, nil
}

func (r *metricRepository) List(ctx context.Context) ([]models.ImpactMetric, error) {
	var rows []models.ImpactMetric
	if err := r.db.WithContext(ctx).
		Order("sort_order ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *metricRepository) ListActive(ctx context.Context) ([]models.ImpactMetric, error) {
	var rows []models.ImpactMetric
	if err := r.db.WithContext(ctx).
		Where("is_active = ?", true).
		Order("sort_order ASC, created_at ASC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}
