package donations

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	stripelib "github.com/stripe/stripe-go/v84"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/config"
	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/metrics"
)

type stubDonationRepo struct {
	bySession map[string]*models.Donation
	updates   int
}

func newStubDonationRepo() *stubDonationRepo {
	return &stubDonationRepo{bySession: make(map[string]*models.Donation)}
}

func (r *stubDonationRepo) WithTx(tx *gorm.DB) Repository { return r }

func (r *stubDonationRepo) Create(ctx context.Context, donation *models.Donation) error {
	if donation.ID == uuid.Nil {
		donation.ID = uuid.New()
	}
	if donation.StripeSessionID != nil {
		r.bySession[*donation.StripeSessionID] = donation
	}
	return nil
}

func (r *stubDonationRepo) Update(ctx context.Context, donation *models.Donation) error {
	r.updates++
	if donation.StripeSessionID != nil {
		r.bySession[*donation.StripeSessionID] = donation
	}
	return nil
}

func (r *stubDonationRepo) FindByID(ctx context.Context, id uuid.UUID) (*models.Donation, error) {
	for _, donation := range r.bySession {
		if donation.ID == id {
			return donation, nil
		}
	}
	return nil, nil
}

func (r *stubDonationRepo) FindByStripeSessionID(ctx context.Context, sessionID string) (*models.Donation, error) {
	return r.bySession[sessionID], nil
}

func (r *stubDonationRepo) FindByStripeSessionIDForUpdate(ctx context.Context, sessionID string) (*models.Donation, error) {
	return r.bySession[sessionID], nil
}

func (r *stubDonationRepo) ListByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	return nil, nil
}

func (r *stubDonationRepo) ListSucceededByDonor(ctx context.Context, donorID uuid.UUID) ([]models.Donation, error) {
	return nil, nil
}

func (r *stubDonationRepo) ListRecent(ctx context.Context, limit int) ([]models.Donation, error) {
	return nil, nil
}

func (r *stubDonationRepo) SumSucceeded(ctx context.Context) (decimal.Decimal, error) {
	total := decimal.Zero
	for _, donation := range r.bySession {
		if donation.Status == enums.DonationStatusSucceeded {
			total = total.Add(donation.Amount)
		}
	}
	return total, nil
}

type stubIssuer struct {
	issued     map[uuid.UUID]*models.Invoice
	issueCalls int
}

func newStubIssuer() *stubIssuer {
	return &stubIssuer{issued: make(map[uuid.UUID]*models.Invoice)}
}

func (i *stubIssuer) IssueForDonation(ctx context.Context, tx *gorm.DB, donation *models.Donation) (*models.Invoice, error) {
	i.issueCalls++
	if existing, ok := i.issued[donation.ID]; ok {
		return existing, nil
	}
	invoice := &models.Invoice{
		ID:            uuid.New(),
		InvoiceNumber: "WBC-2025-000001",
		DonationID:    donation.ID,
		DonorID:       donation.DonorID,
		Amount:        donation.Amount,
	}
	i.issued[donation.ID] = invoice
	return invoice, nil
}

func (i *stubIssuer) FindByDonationID(ctx context.Context, tx *gorm.DB, donationID uuid.UUID) (*models.Invoice, error) {
	return i.issued[donationID], nil
}

type stubCheckoutAPI struct {
	createCalls int
	getCalls    int
	session     *stripelib.CheckoutSession
	err         error
}

func (s *stubCheckoutAPI) CreateSession(ctx context.Context, params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error) {
	s.createCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

func (s *stubCheckoutAPI) GetSession(ctx context.Context, id string, params *stripelib.CheckoutSessionParams) (*stripelib.CheckoutSession, error) {
	s.getCalls++
	if s.err != nil {
		return nil, s.err
	}
	return s.session, nil
}

type stubGuard struct {
	held map[string]bool
}

func newStubGuard() *stubGuard {
	return &stubGuard{held: make(map[string]bool)}
}

func (g *stubGuard) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	if g.held[key] {
		return false, nil
	}
	g.held[key] = true
	return true, nil
}

func (g *stubGuard) Del(ctx context.Context, keys ...string) error {
	for _, key := range keys {
		delete(g.held, key)
	}
	return nil
}

func (g *stubGuard) VerifyGuardKey(sessionID string) string {
	return "verify:" + sessionID
}

type stubTxRunner struct{}

func (stubTxRunner) WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

func paidSession(id string) *stripelib.CheckoutSession {
	return &stripelib.CheckoutSession{
		ID:            id,
		PaymentStatus: stripelib.CheckoutSessionPaymentStatusPaid,
	}
}

func unpaidSession(id string) *stripelib.CheckoutSession {
	return &stripelib.CheckoutSession{
		ID:            id,
		PaymentStatus: stripelib.CheckoutSessionPaymentStatusUnpaid,
	}
}

func newVerificationFixture(t *testing.T, api *stubCheckoutAPI) (*VerificationService, *stubDonationRepo, *stubIssuer, *stubGuard) {
	t.Helper()
	repo := newStubDonationRepo()
	issuer := newStubIssuer()
	guard := newStubGuard()
	svc, err := NewVerificationService(VerificationServiceParams{
		Donations:         repo,
		Invoices:          issuer,
		Stripe:            api,
		Guard:             guard,
		TransactionRunner: stubTxRunner{},
		Config:            config.CheckoutConfig{VerifyGuardTTL: time.Minute},
	})
	if err != nil {
		t.Fatalf("new verification service: %v", err)
	}
	return svc, repo, issuer, guard
}

func seedPending(repo *stubDonationRepo, sessionID string) *models.Donation {
	donation := &models.Donation{
		ID:              uuid.New(),
		DonorID:         uuid.New(),
		Amount:          decimal.RequireFromString("25.00"),
		Status:          enums.DonationStatusPending,
		StripeSessionID: &sessionID,
	}
	repo.bySession[sessionID] = donation
	return donation
}

func TestVerifyMissingSessionNoNetworkCall(t *testing.T) {
	api := &stubCheckoutAPI{}
	svc, _, _, _ := newVerificationFixture(t, api)

	_, err := svc.Verify(context.Background(), "   ")
	if !errors.Is(err, ErrMissingSession) {
		t.Fatalf("expected ErrMissingSession, got %v", err)
	}
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation code, got %v", err)
	}
	if api.getCalls != 0 {
		t.Fatalf("expected zero stripe calls, got %d", api.getCalls)
	}
}

func TestVerifyPaidIssuesInvoiceExactlyOnce(t *testing.T) {
	const sessionID = "cs_test_paid"
	api := &stubCheckoutAPI{session: paidSession(sessionID)}
	svc, repo, issuer, _ := newVerificationFixture(t, api)
	donation := seedPending(repo, sessionID)

	first, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("first verify: %v", err)
	}
	if first.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", first.Outcome, first.Message)
	}
	if first.Invoice == nil || first.Invoice.DonationID != donation.ID {
		t.Fatalf("expected invoice for donation")
	}
	if donation.Status != enums.DonationStatusSucceeded {
		t.Fatalf("expected donation succeeded, got %s", donation.Status)
	}

	second, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if second.Outcome != OutcomeSuccess {
		t.Fatalf("expected idempotent success, got %s", second.Outcome)
	}
	if issuer.issueCalls != 1 {
		t.Fatalf("expected exactly one invoice issuance, got %d", issuer.issueCalls)
	}
	if second.Invoice == nil || second.Invoice.ID != first.Invoice.ID {
		t.Fatalf("expected the same invoice on re-verification")
	}
}

func TestVerifyUnpaidMarksFailedOnce(t *testing.T) {
	const sessionID = "cs_test_unpaid"
	api := &stubCheckoutAPI{session: unpaidSession(sessionID)}
	svc, repo, issuer, _ := newVerificationFixture(t, api)
	donation := seedPending(repo, sessionID)

	result, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", result.Outcome)
	}
	if donation.Status != enums.DonationStatusFailed {
		t.Fatalf("expected donation failed, got %s", donation.Status)
	}
	updatesAfterFirst := repo.updates

	again, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if again.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", again.Outcome)
	}
	if repo.updates != updatesAfterFirst {
		t.Fatalf("expected no further writes on re-verification")
	}
	if issuer.issueCalls != 0 {
		t.Fatalf("unpaid session must never issue an invoice")
	}
}

func TestVerifyHeldGuardReturnsVerifying(t *testing.T) {
	const sessionID = "cs_test_guarded"
	api := &stubCheckoutAPI{session: paidSession(sessionID)}
	svc, repo, _, guard := newVerificationFixture(t, api)
	seedPending(repo, sessionID)
	guard.held[guard.VerifyGuardKey(sessionID)] = true

	result, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Outcome != OutcomeVerifying {
		t.Fatalf("expected verifying outcome, got %s", result.Outcome)
	}
	if api.getCalls != 0 {
		t.Fatalf("held guard must short-circuit before stripe, got %d calls", api.getCalls)
	}
}

func TestVerifyStripeErrorFoldsToFailedAndReleasesGuard(t *testing.T) {
	const sessionID = "cs_test_flaky"
	api := &stubCheckoutAPI{err: errors.New("stripe unavailable")}
	svc, repo, issuer, guard := newVerificationFixture(t, api)
	donation := seedPending(repo, sessionID)

	result, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome, got %s", result.Outcome)
	}
	if donation.Status != enums.DonationStatusPending {
		t.Fatalf("transient fault must not settle the donation, got %s", donation.Status)
	}
	if guard.held[guard.VerifyGuardKey(sessionID)] {
		t.Fatalf("guard must be released after a transient fault")
	}

	// Retry after the fault clears settles normally.
	api.err = nil
	api.session = paidSession(sessionID)
	retry, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("retry verify: %v", err)
	}
	if retry.Outcome != OutcomeSuccess {
		t.Fatalf("expected success on retry, got %s", retry.Outcome)
	}
	if issuer.issueCalls != 1 {
		t.Fatalf("expected one invoice issuance, got %d", issuer.issueCalls)
	}
}

func TestVerifyUnknownSessionFails(t *testing.T) {
	api := &stubCheckoutAPI{session: paidSession("cs_test_ghost")}
	svc, _, issuer, _ := newVerificationFixture(t, api)

	result, err := svc.Verify(context.Background(), "cs_test_ghost")
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Outcome != OutcomeFailed {
		t.Fatalf("expected failed outcome for unknown session, got %s", result.Outcome)
	}
	if issuer.issueCalls != 0 {
		t.Fatalf("unknown session must not issue invoices")
	}
}

func TestVerifyBackfillsInvoiceForSettledDonation(t *testing.T) {
	const sessionID = "cs_test_settled_no_invoice"
	api := &stubCheckoutAPI{session: paidSession(sessionID)}
	svc, repo, issuer, _ := newVerificationFixture(t, api)

	donation := seedPending(repo, sessionID)
	donation.Status = enums.DonationStatusSucceeded

	result, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("verify: %v", err)
	}
	if result.Outcome != OutcomeSuccess {
		t.Fatalf("expected success, got %s (%s)", result.Outcome, result.Message)
	}
	if result.Invoice == nil || result.Invoice.DonationID != donation.ID {
		t.Fatalf("expected backfilled invoice for settled donation")
	}
	if issuer.issueCalls != 1 {
		t.Fatalf("expected one issuance, got %d", issuer.issueCalls)
	}

	again, err := svc.Verify(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("second verify: %v", err)
	}
	if again.Invoice == nil || again.Invoice.ID != result.Invoice.ID {
		t.Fatalf("expected the same invoice on re-verify")
	}
	if issuer.issueCalls != 1 {
		t.Fatalf("backfill must not reissue, got %d calls", issuer.issueCalls)
	}
}

func TestVerifyRecordsSettledAmountOnce(t *testing.T) {
	const sessionID = "cs_test_settled_amount"
	api := &stubCheckoutAPI{session: paidSession(sessionID)}
	reg := prometheus.NewRegistry()
	repo := newStubDonationRepo()
	svc, err := NewVerificationService(VerificationServiceParams{
		Donations:         repo,
		Invoices:          newStubIssuer(),
		Stripe:            api,
		Guard:             newStubGuard(),
		TransactionRunner: stubTxRunner{},
		Metrics:           metrics.NewDonationMetrics(reg),
		Config:            config.CheckoutConfig{VerifyGuardTTL: time.Minute},
	})
	if err != nil {
		t.Fatalf("new verification service: %v", err)
	}
	seedPending(repo, sessionID)

	for i := 0; i < 2; i++ {
		result, err := svc.Verify(context.Background(), sessionID)
		if err != nil {
			t.Fatalf("verify %d: %v", i, err)
		}
		if result.Outcome != OutcomeSuccess {
			t.Fatalf("verify %d: expected success, got %s", i, result.Outcome)
		}
	}

	mfs, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather metrics: %v", err)
	}
	for _, mf := range mfs {
		if mf.GetName() != "donation_settled_amount_cad_total" {
			continue
		}
		if got := mf.GetMetric()[0].GetCounter().GetValue(); got != 25 {
			t.Fatalf("expected settled total 25, got %f", got)
		}
		return
	}
	t.Fatalf("settled amount counter not exported")
}
