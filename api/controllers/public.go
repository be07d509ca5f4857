package controllers

import (
	"net/http"

	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/goal"
	"github.com/wiibec/donations-backend/internal/messages"
	"github.com/wiibec/donations-backend/internal/settings"
	"github.com/wiibec/donations-backend/pkg/logger"
)

// GoalProgress serves the public donation goal bar.
func GoalProgress(svc *goal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		progress, err := svc.Current(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, progress)
	}
}

// PageList serves the public page visibility flags.
func PageList(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		pages, err := svc.Pages(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, pages)
	}
}

// OrganizationInfo serves the nonprofit's public details.
func OrganizationInfo(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		org, err := svc.Organization(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}

// ContactSubmit accepts a message from the public contact form.
func ContactSubmit(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req messages.SubmitRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		message, err := svc.Submit(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, message)
	}
}
