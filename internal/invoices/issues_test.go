package invoices

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

func TestReportRequiresDescriptionAndOwnership(t *testing.T) {
	db := newTestDB(t)
	seedOrg(t, db)
	donor := seedDonor(t, db)
	other := seedDonor(t, db)
	donation := seedSucceededDonation(t, db, donor.ID)

	invSvc := newService(t, db, nil)
	ctx := context.Background()
	invoice, err := invSvc.IssueForDonation(ctx, db, donation)
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}

	svc, err := NewIssueService(NewIssueRepository(db), NewRepository(db), nil)
	if err != nil {
		t.Fatalf("new issue service: %v", err)
	}

	_, err = svc.Report(ctx, donor.ID, invoice.ID, "   ")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for empty description, got %v", err)
	}

	_, err = svc.Report(ctx, other.ID, invoice.ID, "wrong amount shown")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for foreign invoice, got %v", err)
	}

	issue, err := svc.Report(ctx, donor.ID, invoice.ID, "wrong amount shown")
	if err != nil {
		t.Fatalf("report: %v", err)
	}
	if issue.Status != enums.InvoiceIssueStatusOpen {
		t.Fatalf("new report must open as open, got %s", issue.Status)
	}
	if issue.ResolvedAt != nil {
		t.Fatalf("new report must not carry a resolution timestamp")
	}
}

func TestUpdateStatusStampsAndClearsResolvedAt(t *testing.T) {
	db := newTestDB(t)
	seedOrg(t, db)
	donor := seedDonor(t, db)
	donation := seedSucceededDonation(t, db, donor.ID)

	invSvc := newService(t, db, nil)
	ctx := context.Background()
	invoice, err := invSvc.IssueForDonation(ctx, db, donation)
	if err != nil {
		t.Fatalf("issue invoice: %v", err)
	}

	resolvedAt := time.Date(2025, time.July, 1, 9, 0, 0, 0, time.UTC)
	svc, err := NewIssueService(NewIssueRepository(db), NewRepository(db), func() time.Time { return resolvedAt })
	if err != nil {
		t.Fatalf("new issue service: %v", err)
	}

	issue, err := svc.Report(ctx, donor.ID, invoice.ID, "missing address line")
	if err != nil {
		t.Fatalf("report: %v", err)
	}

	updated, err := svc.UpdateStatus(ctx, issue.ID, "in_progress")
	if err != nil {
		t.Fatalf("to in_progress: %v", err)
	}
	if updated.Status != enums.InvoiceIssueStatusInProgress || updated.ResolvedAt != nil {
		t.Fatalf("in_progress must not stamp resolved_at")
	}

	updated, err = svc.UpdateStatus(ctx, issue.ID, "resolved")
	if err != nil {
		t.Fatalf("to resolved: %v", err)
	}
	if updated.ResolvedAt == nil || !updated.ResolvedAt.Equal(resolvedAt) {
		t.Fatalf("resolved must stamp resolved_at, got %v", updated.ResolvedAt)
	}

	updated, err = svc.UpdateStatus(ctx, issue.ID, "in_progress")
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if updated.ResolvedAt != nil {
		t.Fatalf("leaving resolved must clear resolved_at")
	}

	_, err = svc.UpdateStatus(ctx, issue.ID, "closed-forever")
	typed := pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeValidation {
		t.Fatalf("expected validation error for unknown status, got %v", err)
	}

	_, err = svc.UpdateStatus(ctx, uuid.New(), "resolved")
	typed = pkgerrors.As(err)
	if typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found for missing issue, got %v", err)
	}
}
