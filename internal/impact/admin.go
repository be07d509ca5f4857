package impact

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// MetricRequest is the admin payload for one impact metric.
type MetricRequest struct {
	Name        string          `json:"name" validate:"required"`
	Description string          `json:"description"`
	CostPerUnit decimal.Decimal `json:"cost_per_unit"`
	IsActive    bool            `json:"is_active"`
	SortOrder   int             `json:"sort_order"`
}

func (r MetricRequest) validate() error {
	if strings.TrimSpace(r.Name) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "name is required")
	}
	if !r.CostPerUnit.IsPositive() {
		return pkgerrors.New(pkgerrors.CodeValidation, "cost per unit must be positive")
	}
	return nil
}

// ListMetrics returns every metric, active or not, for the back office.
func (s *Service) ListMetrics(ctx context.Context) ([]models.ImpactMetric, error) {
	rows, err := s.metrics.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list impact metrics")
	}
	return rows, nil
}

// CreateMetric adds an impact metric to the dashboard.
func (s *Service) CreateMetric(ctx context.Context, req MetricRequest) (*models.ImpactMetric, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	metric := &models.ImpactMetric{
		Name:        strings.TrimSpace(req.Name),
		Description: strings.TrimSpace(req.Description),
		CostPerUnit: req.CostPerUnit,
		IsActive:    req.IsActive,
		SortOrder:   req.SortOrder,
	}
	if err := s.metrics.Create(ctx, metric); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create impact metric")
	}
	return metric, nil
}

// UpdateMetric overwrites an impact metric.
func (s *Service) UpdateMetric(ctx context.Context, id uuid.UUID, req MetricRequest) (*models.ImpactMetric, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	metric, err := s.metrics.FindByID(ctx, id)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load impact metric")
	}
	if metric == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "impact metric not found")
	}

	metric.Name = strings.TrimSpace(req.Name)
	metric.Description = strings.TrimSpace(req.Description)
	metric.CostPerUnit = req.CostPerUnit
	metric.IsActive = req.IsActive
	metric.SortOrder = req.SortOrder
	if err := s.metrics.Update(ctx, metric); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update impact metric")
	}
	return metric, nil
}

// DeleteMetric removes an impact metric.
func (s *Service) DeleteMetric(ctx context.Context, id uuid.UUID) error {
	metric, err := s.metrics.FindByID(ctx, id)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load impact metric")
	}
	if metric == nil {
		return pkgerrors.New(pkgerrors.CodeNotFound, "impact metric not found")
	}
	if err := s.metrics.Delete(ctx, id); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete impact metric")
	}
	return nil
}
