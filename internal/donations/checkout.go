package donations

import (
	"context"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	stripelib "github.com/stripe/stripe-go/v84"

	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
	pkgstripe "github.com/wiibec/donations-backend/pkg/stripe"
)

var minorUnitFactor = decimal.NewFromInt(100)

type profileFinder interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error)
}

// BeginRequest captures the donor's checkout intent.
type BeginRequest struct {
	Amount         decimal.Decimal    `json:"amount"`
	DonationType   enums.DonationType `json:"donation_type"`
	CompanyName    string             `json:"company_name"`
	CompanyAddress string             `json:"company_address"`
}

// BeginResult carries the hosted-checkout redirect data.
type BeginResult struct {
	DonationID uuid.UUID `json:"donation_id"`
	SessionID  string    `json:"session_id"`
	SessionURL string    `json:"session_url"`
}

// CheckoutService creates pending donations and their Stripe checkout sessions.
type CheckoutService struct {
	donations Repository
	profiles  profileFinder
	stripe    pkgstripe.CheckoutAPI
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// CheckoutServiceParams bundles the checkout service dependencies.
type CheckoutServiceParams struct {
	Donations Repository
	Profiles  profileFinder
	Stripe    pkgstripe.CheckoutAPI
	Config    config.CheckoutConfig
	Logger    *logger.Logger
}

// NewCheckoutService validates dependencies and builds the service.
func NewCheckoutService(params CheckoutServiceParams) (*CheckoutService, error) {
	if params.Donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation repo required")
	}
	if params.Profiles == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "profile repo required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe checkout api required")
	}
	return &CheckoutService{
		donations: params.Donations,
		profiles:  params.Profiles,
		stripe:    params.Stripe,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Begin validates the request, records a pending donation, and opens a Stripe
// checkout session for it. Validation failures reject before any network call.
func (s *CheckoutService) Begin(ctx context.Context, donorID uuid.UUID, req BeginRequest) (*BeginResult, error) {
	if donorID == uuid.Nil {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "donor is required")
	}
	if !req.Amount.IsPositive() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must be greater than zero")
	}
	amountMinor := req.Amount.Mul(minorUnitFactor)
	if !amountMinor.IsInteger() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "amount must have at most two decimal places")
	}

	donationType := req.DonationType
	if donationType == "" {
		donationType = enums.DonationTypePersonal
	}
	if !donationType.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown donation type")
	}

	companyName := strings.TrimSpace(req.CompanyName)
	companyAddress := strings.TrimSpace(req.CompanyAddress)
	if donationType == enums.DonationTypeCompany && (companyName == "" || companyAddress == "") {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "company name and address are required for company donations")
	}

	donor, err := s.profiles.FindByID(ctx, donorID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load donor profile")
	}
	if donor == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "donor profile not found")
	}

	donation := &models.Donation{
		DonorID:      donorID,
		Amount:       req.Amount,
		Currency:     enums.CurrencyCAD,
		Status:       enums.DonationStatusPending,
		DonationType: donationType,
	}
	if donationType == enums.DonationTypeCompany {
		donation.CompanyName = &companyName
		donation.CompanyAddress = &companyAddress
	}
	if err := s.donations.Create(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create pending donation")
	}

	params := &stripelib.CheckoutSessionParams{
		Mode:          stripelib.String(string(stripelib.CheckoutSessionModePayment)),
		SuccessURL:    stripelib.String(s.cfg.SuccessURL),
		CancelURL:     stripelib.String(s.cfg.CancelURL),
		CustomerEmail: stripelib.String(donor.Email),
		LineItems: []*stripelib.CheckoutSessionLineItemParams{
			{
				Quantity: stripelib.Int64(1),
				PriceData: &stripelib.CheckoutSessionLineItemPriceDataParams{
					Currency:   stripelib.String("cad"),
					UnitAmount: stripelib.Int64(amountMinor.IntPart()),
					ProductData: &stripelib.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripelib.String("Don WIIBEC"),
					},
				},
			},
		},
	}
	params.AddMetadata("donation_id", donation.ID.String())

	session, err := s.stripe.CreateSession(ctx, params)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create stripe checkout session")
	}
	if session == nil || session.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "stripe returned an empty checkout session")
	}

	sessionID := session.ID
	donation.StripeSessionID = &sessionID
	if err := s.donations.Update(ctx, donation); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "attach stripe session to donation")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithSessionID(ctx, sessionID), "checkout session created")
	}

	return &BeginResult{
		DonationID: donation.ID,
		SessionID:  sessionID,
		SessionURL: session.URL,
	}, nil
}
