package invoices

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db"
	"github.com/wiibec/donations-backend/pkg/db/models"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

type organizationGetter interface {
	Get(ctx context.Context) (*models.OrganizationSettings, error)
}

// Service materializes and serves tax receipts.
type Service struct {
	invoices     Repository
	profiles     profileFinder
	organization organizationGetter
	now          func() time.Time
}

// ServiceParams bundles the invoice service dependencies.
type ServiceParams struct {
	Invoices     Repository
	Profiles     profileFinder
	Organization organizationGetter
	Now          func() time.Time
}

// NewService validates dependencies and builds the service.
func NewService(params ServiceParams) (*Service, error) {
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice repo required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repo required")
	}
	if params.Organization == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization settings repo required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &Service{
		invoices:     params.Invoices,
		profiles:     params.Profiles,
		organization: params.Organization,
		now:          now,
	}, nil
}

// IssueForDonation materializes the receipt for a succeeded donation inside
// the caller's transaction. Donor and organization details are snapshotted at
// issuance. Issuing twice for the same donation returns the existing receipt.
func (s *Service) IssueForDonation(ctx context.Context, tx *gorm.DB, donation *models.Donation) (*models.Invoice, error) {
	if donation == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation is required")
	}
	repo := s.invoices.WithTx(tx)

	existing, err := repo.FindByDonationID(ctx, donation.ID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return existing, nil
	}

	donor, err := s.profiles.FindByID(ctx, donation.DonorID)
	if err != nil {
		return nil, err
	}
	if donor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donor profile missing for invoice")
	}

	org, err := s.organization.Get(ctx)
	if err != nil {
		return nil, err
	}
	if org == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "organization settings not configured")
	}

	issuedAt := s.now()
	number, err := repo.NextInvoiceNumber(ctx, issuedAt.Year())
	if err != nil {
		return nil, err
	}

	invoice := &models.Invoice{
		InvoiceNumber: number,
		DonationID:    donation.ID,
		DonorID:       donation.DonorID,
		DonorName:     donorNameForInvoice(donor, donation),
		DonorEmail:    donor.Email,
		DonorAddress:  donation.CompanyAddress,
		OrgName:       org.Name,
		OrgNumber:     org.RegistrationNumber,
		OrgAddress:    org.Address,
		OrgEmail:      org.Email,
		Amount:        donation.Amount,
		IssueDate:     issuedAt,
	}
	if err := repo.Create(ctx, invoice); err != nil {
		if db.IsUniqueViolation(err, "") {
			return repo.FindByDonationID(ctx, donation.ID)
		}
		return nil, err
	}
	return invoice, nil
}

// FindByDonationID reads the receipt for a donation inside the caller's transaction.
func (s *Service) FindByDonationID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (*models.Invoice, error) {
	return s.invoices.WithTx(tx).FindByDonationID(ctx, donationID)
}

// ListForDonor returns the donor's receipts, newest first.
func (s *Service) ListForDonor(ctx context.Context, donorID uuid.UUID) ([]models.Invoice, error) {
	rows, err := s.invoices.ListByDonor(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoices")
	}
	return rows, nil
}

// ListAll returns recent receipts for the back office.
func (s *Service) ListAll(ctx context.Context, limit int) ([]models.Invoice, error) {
	rows, err := s.invoices.List(ctx, limit)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoices")
	}
	return rows, nil
}

// GetForDonor loads one receipt and enforces ownership.
func (s *Service) GetForDonor(ctx context.Context, donorID, invoiceID uuid.UUID) (*models.Invoice, error) {
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice")
	}
	if invoice == nil || invoice.DonorID != donorID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}
	return invoice, nil
}

// company donations are receipted under the company name when present.
func donorNameForInvoice(donor *models.Profile, donation *models.Donation) string {
	if donation.CompanyName != nil && *donation.CompanyName != "" {
		return *donation.CompanyName
	}
	return donor.FullName()
}
