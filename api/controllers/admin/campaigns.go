package admin

import (
	"net/http"

	"github.com/wiibec/donations-backend/api/middleware"
	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/api/validators"
	"github.com/wiibec/donations-backend/internal/mailing"
	"github.com/wiibec/donations-backend/pkg/logger"
)

// CampaignList serves past mailing batches.
func CampaignList(svc *mailing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := svc.List(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}

// CampaignSend creates and delivers one mailing batch.
func CampaignSend(svc *mailing.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		var req mailing.CreateCampaignRequest
		if err := validators.DecodeJSONBody(r, &req); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		campaign, err := svc.CreateAndSend(ctx, middleware.UserIDFromContext(ctx), req)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, campaign)
	}
}
