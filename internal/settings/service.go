package settings

import (
	"context"
	"strings"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// Service guards settings access with validation.
type Service struct {
	organization OrganizationRepository
	pages        PageRepository
}

// NewService validates dependencies and builds the service.
func NewService(organization OrganizationRepository, pages PageRepository) (*Service, error) {
	if organization == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization repo required")
	}
	if pages == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "page repo required")
	}
	return &Service{organization: organization, pages: pages}, nil
}

// Organization returns the nonprofit's registration info.
func (s *Service) Organization(ctx context.Context) (*models.OrganizationSettings, error) {
	settings, err := s.organization.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization settings")
	}
	if settings == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "organization settings not configured")
	}
	return settings, nil
}

// UpdateOrganizationRequest carries editable organization fields.
type UpdateOrganizationRequest struct {
	Name               string `json:"name" validate:"required"`
	RegistrationNumber string `json:"registration_number"`
	Address            string `json:"address"`
	Email              string `json:"email" validate:"omitempty,email"`
	Phone              string `json:"phone"`
	Website            string `json:"website"`
}

// UpdateOrganization overwrites the singleton organization row.
func (s *Service) UpdateOrganization(ctx context.Context, req UpdateOrganizationRequest) (*models.OrganizationSettings, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "organization name is required")
	}
	current, err := s.organization.Get(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load organization settings")
	}
	if current == nil {
		current = &models.OrganizationSettings{}
	}
	current.Name = name
	current.RegistrationNumber = strings.TrimSpace(req.RegistrationNumber)
	current.Address = strings.TrimSpace(req.Address)
	current.Email = strings.TrimSpace(req.Email)
	current.Phone = strings.TrimSpace(req.Phone)
	current.Website = strings.TrimSpace(req.Website)
	if err := s.organization.Update(ctx, current); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update organization settings")
	}
	return current, nil
}

// Pages lists the visibility toggles for every public page.
func (s *Service) Pages(ctx context.Context) ([]models.PageSetting, error) {
	rows, err := s.pages.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list page settings")
	}
	return rows, nil
}

// SetPageEnabled toggles one page by its enum key. Unknown keys are rejected
// rather than silently creating rows.
func (s *Service) SetPageEnabled(ctx context.Context, rawKey string, enabled bool) (*models.PageSetting, error) {
	key, err := enums.ParsePageKey(rawKey)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown page key")
	}
	if err := s.pages.SetEnabled(ctx, key, enabled); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "toggle page")
	}
	setting, err := s.pages.Find(ctx, key)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load page setting")
	}
	if setting == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "page setting not found")
	}
	return setting, nil
}
