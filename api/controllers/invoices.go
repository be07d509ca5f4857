package controllers

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/api/middleware"
	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/invoices"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

type reportIssuePayload struct {
	Description string `json:"description" validate:"required"`
}

// InvoiceList returns the donor's receipts.
func InvoiceList(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		rows, err := svc.ListForDonor(ctx, donorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InvoicePDF streams one receipt as a PDF, owner only.
func InvoicePDF(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		invoiceID, err := uuid.Parse(chi.URLParam(r, "invoiceId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice id"))
			return
		}
		invoice, err := svc.GetForDonor(ctx, donorID, invoiceID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		data, err := invoices.RenderPDF(invoice)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "render invoice pdf"))
			return
		}
		responses.WritePDF(w, fmt.Sprintf("%s.pdf", invoice.InvoiceNumber), data)
	}
}

// InvoiceReportIssue files a donor report against one of their receipts.
func InvoiceReportIssue(svc *invoices.IssueService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		invoiceID, err := uuid.Parse(chi.URLParam(r, "invoiceId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid invoice id"))
			return
		}
		var req reportIssuePayload
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		issue, err := svc.Report(ctx, donorID, invoiceID, req.Description)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, issue)
	}
}

// InvoiceIssueList returns the donor's own reports.
func InvoiceIssueList(svc *invoices.IssueService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		rows, err := svc.ListForReporter(ctx, donorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
