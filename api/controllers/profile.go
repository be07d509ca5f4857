package controllers

import (
	"net/http"

	"github.com/wiibec/donations-backend/api/middleware"
	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/accounts"
	"github.com/wiibec/donations-backend/pkg/logger"
)

// ProfileGet returns the authenticated donor's profile.
func ProfileGet(svc *accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		profile, err := svc.GetProfile(ctx, donorID)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}

// ProfileUpdate edits the donor's identity fields.
func ProfileUpdate(svc *accounts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		donorID := middleware.UserIDFromContext(ctx)
		var req accounts.UpdateProfileRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		profile, err := svc.UpdateProfile(ctx, donorID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, profile)
	}
}
