package admin

import (
	"net/http"

	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/internal/analytics"
	"github.com/wiibec/donations-backend/pkg/logger"
)

// Overview serves the back-office donation KPIs.
func Overview(svc *analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		overview, err := svc.Overview(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, overview)
	}
}

// UserList serves every profile with its aggregate donated total.
func UserList(svc *analytics.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		rows, err := svc.ListDonors(ctx)
		if err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, rows)
	}
}
