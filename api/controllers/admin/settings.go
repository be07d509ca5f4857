package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/goal"
	"github.com/wiibec/donations-backend/internal/impact"
	"github.com/wiibec/donations-backend/internal/settings"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

type pageTogglePayload struct {
	IsEnabled *bool `json:"is_enabled" validate:"required"`
}

// OrganizationUpdate overwrites the organization settings row.
func OrganizationUpdate(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req settings.UpdateOrganizationRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		org, err := svc.UpdateOrganization(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, org)
	}
}

// GoalSettings serves the raw goal settings row for the back office form.
func GoalSettings(svc *goal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		row, err := svc.Settings(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// GoalUpdate overwrites the donation goal settings row.
func GoalUpdate(svc *goal.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req goal.UpdateRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		row, err := svc.Update(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, row)
	}
}

// PageToggle flips one page visibility flag by its enum key.
func PageToggle(svc *settings.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		key := chi.URLParam(r, "pageKey")
		var req pageTogglePayload
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		page, err := svc.SetPageEnabled(ctx, key, *req.IsEnabled)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}

// MetricList serves every impact metric for the back office.
func MetricList(svc *impact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := svc.ListMetrics(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// MetricCreate adds an impact metric.
func MetricCreate(svc *impact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req impact.MetricRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		metric, err := svc.CreateMetric(ctx, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, metric)
	}
}

// MetricUpdate overwrites an impact metric.
func MetricUpdate(svc *impact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		metricID, err := uuid.Parse(chi.URLParam(r, "metricId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metric id"))
			return
		}
		var req impact.MetricRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		metric, err := svc.UpdateMetric(ctx, metricID, req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, metric)
	}
}

// MetricDelete removes an impact metric.
func MetricDelete(svc *impact.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		metricID, err := uuid.Parse(chi.URLParam(r, "metricId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid metric id"))
			return
		}
		if err := svc.DeleteMetric(ctx, metricID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}
