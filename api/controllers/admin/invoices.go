package admin

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/invoices"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

type issueStatusPayload struct {
	Status string `json:"status" validate:"required"`
}

// InvoiceList serves every issued receipt, newest first.
func InvoiceList(svc *invoices.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		limit := 0
		if limitStr := strings.TrimSpace(r.URL.Query().Get("limit")); limitStr != "" {
			value, err := strconv.Atoi(limitStr)
			if err != nil || value <= 0 {
				responses.WriteError(ctx, logg, w, pkgerrors.New(pkgerrors.CodeValidation, "limit must be a positive integer"))
				return
			}
			limit = value
		}

		rows, err := svc.ListAll(ctx, limit)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InvoiceIssueList serves every donor report for triage.
func InvoiceIssueList(svc *invoices.IssueService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := svc.ListAll(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// InvoiceIssueUpdateStatus transitions a donor report.
func InvoiceIssueUpdateStatus(svc *invoices.IssueService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		issueID, err := uuid.Parse(chi.URLParam(r, "issueId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid issue id"))
			return
		}
		var req issueStatusPayload
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		issue, err := svc.UpdateStatus(ctx, issueID, req.Status)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, issue)
	}
}
