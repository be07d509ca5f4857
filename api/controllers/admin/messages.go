package admin

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/wiibec/donations-backend/api/responses"
	"github.com/wiibec/donations-backend/internal/messages"
	pkgerrors "github.com/wiibec/donations-backend/pkg/errors"
	"github.com/wiibec/donations-backend/pkg/logger"
)

// ContactMessageList serves the admin inbox.
func ContactMessageList(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
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

// ContactMessageMarkRead flags one message as handled.
func ContactMessageMarkRead(svc *messages.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()
		messageID, err := uuid.Parse(chi.URLParam(r, "messageId"))
		if err != nil {
			responses.WriteError(ctx, logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid message id"))
			return
		}
		if err := svc.MarkRead(ctx, messageID); err != nil {
			responses.WriteError(ctx, logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "read"})
	}
}
