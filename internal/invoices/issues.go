package invoices

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/wiibec/donations-backend/pkg/db/models"
	"github.com/wiibec/donations-backend/pkg/enums"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
)

// IssueRepository handles invoice issue persistence.
type IssueRepository interface {
	WithTx(tx *gorm.DB) IssueRepository
	Create(ctx context.Context, issue *models.InvoiceIssue) error
	Update(ctx context.Context, issue *models.InvoiceIssue) error
	FindByID(ctx context.Context, id uuid.UUID) (*models.InvoiceIssue, error)
	ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.InvoiceIssue, error)
	List(ctx context.Context) ([]models.InvoiceIssue, error)
}

type issueRepository struct {
	db *gorm.DB
}

// NewIssueRepository returns an invoice issue repository bound to the provided database.
func NewIssueRepository(db *gorm.DB) IssueRepository {
	return &issueRepository{db: db}
}

func (r *issueRepository) WithTx(tx *gorm.DB) IssueRepository {
	if tx == nil {
		return r
	}
	return &issueRepository{db: tx}
}

func (r *issueRepository) Create(ctx context.Context, issue *models.InvoiceIssue) error {
	return r.db.WithContext(ctx).Create(issue).Error
}

func (r *issueRepository) Update(ctx context.Context, issue *models.InvoiceIssue) error {
	issue.UpdatedAt = time.Now().UTC()
	return r.db.WithContext(ctx).Save(issue).Error
}

func (r *issueRepository) FindByID(ctx context.Context, id uuid.UUID) (*models.InvoiceIssue, error) {
	var issue models.InvoiceIssue
	if err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&issue).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			return nil, nil
		}
		return nil, err
	}
	return &issue, nil
}

func (r *issueRepository) ListByReporter(ctx context.Context, reporterID uuid.UUID) ([]models.InvoiceIssue, error) {
	var rows []models.InvoiceIssue
	if err := r.db.WithContext(ctx).
		Where("reporter_id = ?", reporterID).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

func (r *issueRepository) List(ctx context.Context) ([]models.InvoiceIssue, error) {
	var rows []models.InvoiceIssue
	if err := r.db.WithContext(ctx).
		Order("created_at DESC").
		Find(&rows).Error; err != nil {
		return nil, err
	}
	return rows, nil
}

// IssueService covers donor reports and admin triage of receipt problems.
type IssueService struct {
	issues   IssueRepository
	invoices Repository
	now      func() time.Time
}

// NewIssueService validates dependencies and builds the service.
func NewIssueService(issues IssueRepository, invoices Repository, now func() time.Time) (*IssueService, error) {
	if issues == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "issue repo required")
	}
	if invoices == nil {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "invoice repo required")
	}
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &IssueService{issues: issues, invoices: invoices, now: now}, nil
}

// Report files a donor's problem report against one of their receipts.
func (s *IssueService) Report(ctx context.Context, reporterID, invoiceID uuid.UUID, description string) (*models.InvoiceIssue, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "description is required")
	}
	invoice, err := s.invoices.FindByID(ctx, invoiceID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice")
	}
	if invoice == nil || invoice.DonorID != reporterID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice not found")
	}

	issue := &models.InvoiceIssue{
		InvoiceID:   invoiceID,
		ReporterID:  reporterID,
		Description: description,
		Status:      enums.InvoiceIssueStatusOpen,
	}
	if err := s.issues.Create(ctx, issue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create invoice issue")
	}
	return issue, nil
}

// ListForReporter returns the donor's own reports.
func (s *IssueService) ListForReporter(ctx context.Context, reporterID uuid.UUID) ([]models.InvoiceIssue, error) {
	rows, err := s.issues.ListByReporter(ctx, reporterID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoice issues")
	}
	return rows, nil
}

// ListAll returns every report for the back office.
func (s *IssueService) ListAll(ctx context.Context) ([]models.InvoiceIssue, error) {
	rows, err := s.issues.List(ctx)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list invoice issues")
	}
	return rows, nil
}

// UpdateStatus transitions a report. Moving into resolved stamps resolved_at;
// moving back out clears it.
func (s *IssueService) UpdateStatus(ctx context.Context, issueID uuid.UUID, rawStatus string) (*models.InvoiceIssue, error) {
	status, err := enums.ParseInvoiceIssueStatus(rawStatus)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "unknown issue status")
	}
	issue, err := s.issues.FindByID(ctx, issueID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "load invoice issue")
	}
	if issue == nil {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "invoice issue not found")
	}

	issue.Status = status
	if status == enums.InvoiceIssueStatusResolved {
		if issue.ResolvedAt == nil {
			resolvedAt := s.now()
			issue.ResolvedAt = &resolvedAt
		}
	} else {
		issue.ResolvedAt = nil
	}
	if err := s.issues.Update(ctx, issue); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update invoice issue")
	}
	return issue, nil
}
