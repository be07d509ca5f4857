package impact

import (
	"context"

	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

type donationLister interface {
	ListSucceededByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error)
}

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// Service assembles the donor dashboard summary.
type Service struct {
	donations donationLister
	profiles  profileFinder
	metrics   MetricRepository
}

// NewService validates dependencies and builds the service.
func NewService(donations donationLister, profiles profileFinder, metrics MetricRepository) (*Service, error) {
	if donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation lister required")
	}
	if profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repo required")
	}
	if metrics == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "metric repo required")
	}
	return &Service{donations: donations, profiles: profiles, metrics: metrics}, nil
}

// Dashboard computes the summary for one donor.
func (s *Service) Dashboard(ctx context.Context, donorID uuid.UUID) (*DonorSummary, error) {
	profile, err := s.profiles.FindByID(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load donor profile")
	}
	if profile == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "profile not found")
	}

	donations, err := s.donations.ListSucceededByDonor(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations")
	}
	metrics, err := s.metrics.ListActive(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list impact metrics")
	}

	summary := Summarize(donations, profile.CreatedAt, metrics)
	return &summary, nil
}
