package donations

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	stripelib "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
	"github.com/wiibec/donations-backend/pkg/metrics"
	pkgredis "github.com/wiibec/donations-backend/pkg/redis"
	pkgstripe "github.com/wiibec/donations-backend/pkg/stripe"
)

// Outcome is the tri-state result of verifying a checkout session.
type Outcome string

const (
	// OutcomeVerifying means another verification of the same session is in
	// flight; the caller should retry shortly.
	OutcomeVerifying Outcome = "verifying"
	OutcomeSuccess   Outcome = "success"
	OutcomeFailed    Outcome = "failure"
)

// ErrMissingSession rejects verification calls without a checkout session id.
var ErrMissingSession = pkgerrors.New(pkgerrors.CodeValidation, "checkout session id is required")

// Result reports the terminal state of one verification attempt.
type Result struct {
	Outcome  Outcome
	Donation *models.Donation
	Invoice  *models.Invoice
	Message  string
}

type invoiceIssuer interface {
	IssueForDonation(ctx context.Context, tx *gorm.DB, donation *models.Donation) (*models.Invoice, error)
	FindByDonationID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (*models.Invoice, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// VerificationService settles pending donations against Stripe checkout
// sessions. The database transaction in Verify is the idempotency invariant;
// the Redis guard only suppresses concurrent duplicate work.
type VerificationService struct {
	donations Repository
	invoices  invoiceIssuer
	stripe    pkgstripe.CheckoutAPI
	guard     pkgredis.GuardStore
	txRunner  txRunner
	metrics   *metrics.DonationMetrics
	cfg       config.CheckoutConfig
	logg      *logger.Logger
}

// VerificationServiceParams bundles the verification dependencies.
type VerificationServiceParams struct {
	Donations         Repository
	Invoices          invoiceIssuer
	Stripe            pkgstripe.CheckoutAPI
	Guard             pkgredis.GuardStore
	TransactionRunner txRunner
	Metrics           *metrics.DonationMetrics
	Config            config.CheckoutConfig
	Logger            *logger.Logger
}

// NewVerificationService validates dependencies and builds the service.
func NewVerificationService(params VerificationServiceParams) (*VerificationService, error) {
	if params.Donations == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "donation repo required")
	}
	if params.Invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice issuer required")
	}
	if params.Stripe == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "stripe checkout api required")
	}
	if params.Guard == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "verification guard required")
	}
	if params.TransactionRunner == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "transaction runner required")
	}
	return &VerificationService{
		donations: params.Donations,
		invoices:  params.Invoices,
		stripe:    params.Stripe,
		guard:     params.Guard,
		txRunner:  params.TransactionRunner,
		metrics:   params.Metrics,
		cfg:       params.Config,
		logg:      params.Logger,
	}, nil
}

// Verify settles the donation tied to the given checkout session. A blank
// session id is rejected before any network call. Re-verifying an already
// settled session returns the stored result without touching Stripe state.
func (s *VerificationService) Verify(ctx context.Context, sessionID string) (*Result, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, ErrMissingSession
	}

	ctx = s.withSessionLog(ctx, sessionID)

	guardKey := s.guard.VerifyGuardKey(sessionID)
	won, guardErr := s.guard.SetNX(ctx, guardKey, "1", s.guardTTL())
	if guardErr != nil {
		// The guard is advisory; the transaction below stays correct without it.
		if s.logg != nil {
			s.logg.Warn(ctx, "verification guard unavailable")
		}
		won = true
		guardKey = ""
	}
	if !won {
		s.count("duplicate")
		return &Result{Outcome: OutcomeVerifying, Message: "verification already in progress"}, nil
	}
	defer s.releaseGuard(ctx, guardKey)

	session, err := s.stripe.GetSession(ctx, sessionID, nil)
	if err != nil {
		s.count("error")
		if s.logg != nil {
			s.logg.Error(ctx, "retrieve checkout session", err)
		}
		return &Result{Outcome: OutcomeFailed, Message: "unable to verify the payment right now"}, nil
	}
	if session == nil {
		s.count("error")
		return &Result{Outcome: OutcomeFailed, Message: "unable to verify the payment right now"}, nil
	}

	result, err := s.settle(ctx, sessionID, sessionPaid(session))
	if err != nil {
		s.count("error")
		if s.logg != nil {
			s.logg.Error(ctx, "settle donation", err)
		}
		return &Result{Outcome: OutcomeFailed, Message: "unable to verify the payment right now"}, nil
	}

	s.count(string(result.Outcome))
	return result, nil
}

// settle applies the session outcome inside one transaction. It is the only
// writer of terminal donation states and invoice rows for this session.
func (s *VerificationService) settle(ctx context.Context, sessionID string, paid bool) (*Result, error) {
	var result *Result
	err := s.txRunner.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.donations.WithTx(tx)
		donation, err := repo.FindByStripeSessionIDForUpdate(ctx, sessionID)
		if err != nil {
			return err
		}
		if donation == nil {
			result = &Result{Outcome: OutcomeFailed, Message: "unknown checkout session"}
			return nil
		}

		switch donation.Status {
		case enums.DonationStatusSucceeded:
			invoice, err := s.invoices.FindByDonationID(ctx, tx, donation.ID)
			if err != nil {
				return err
			}
			if invoice == nil {
				// Settled donations always carry an invoice; repair the row
				// if an earlier issuance was lost.
				invoice, err = s.invoices.IssueForDonation(ctx, tx, donation)
				if err != nil {
					return err
				}
			}
			result = &Result{Outcome: OutcomeSuccess, Donation: donation, Invoice: invoice}
			return nil
		case enums.DonationStatusFailed:
			result = &Result{Outcome: OutcomeFailed, Donation: donation, Message: "payment was not completed"}
			return nil
		}

		if !paid {
			donation.Status = enums.DonationStatusFailed
			if err := repo.Update(ctx, donation); err != nil {
				return err
			}
			result = &Result{Outcome: OutcomeFailed, Donation: donation, Message: "payment was not completed"}
			return nil
		}

		donation.Status = enums.DonationStatusSucceeded
		if err := repo.Update(ctx, donation); err != nil {
			return err
		}
		invoice, err := s.invoices.IssueForDonation(ctx, tx, donation)
		if err != nil {
			return err
		}
		amount, _ := donation.Amount.Float64()
		s.metrics.AddSettledAmount(amount)
		result = &Result{Outcome: OutcomeSuccess, Donation: donation, Invoice: invoice}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func sessionPaid(session *stripelib.CheckoutSession) bool {
	switch session.PaymentStatus {
	case stripelib.CheckoutSessionPaymentStatusPaid, stripelib.CheckoutSessionPaymentStatusNoPaymentRequired:
		return true
	default:
		return false
	}
}

func (s *VerificationService) guardTTL() (ttl time.Duration) {
	ttl = s.cfg.VerifyGuardTTL
	if ttl <= 0 {
		ttl = 2 * time.Minute
	}
	return ttl
}

func (s *VerificationService) releaseGuard(ctx context.Context, key string) {
	if key == "" {
		return
	}
	if err := s.guard.Del(ctx, key); err != nil && s.logg != nil {
		s.logg.Warn(ctx, "release verification guard")
	}
}

func (s *VerificationService) count(outcome string) {
	if s.metrics != nil {
		s.metrics.IncVerification(outcome)
	}
}

func (s *VerificationService) withSessionLog(ctx context.Context, sessionID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithSessionID(ctx, sessionID)
}
