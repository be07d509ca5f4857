package controllers

import (
	"net/http"

	"github.com/wiibec/donations-backend/api/middleware"
	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/donations"
	"github.com/wiibec/donations-backend/internal/impact"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

type verifyPayload struct {
	SessionID string `json:"session_id" validate:"required"`
}

// DonationCheckout opens a hosted checkout session for the donor.
func DonationCheckout(svc *donations.CheckoutService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		var req donations.BeginRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Begin(ctx, donorID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, result)
	}
}

// DonationVerify settles a checkout session. The tri-state outcome always
// comes back 200; only a missing session id is a request error.
func DonationVerify(svc *donations.VerificationService, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req verifyPayload
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		result, err := svc.Verify(ctx, req.SessionID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// DonationList returns the donor's own donations, newest first.
func DonationList(repo donations.Repository, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		rows, err := repo.ListByDonor(ctx, donorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list donations"))
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// DonorDashboard returns the impact summary for the authenticated donor.
func DonorDashboard(svc *impact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		summary, err := svc.Dashboard(ctx, donorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, summary)
	}
}
