package controllers

import (
	"net/http"

	"github.com/angelmondragon/haani-backend/api/responses"
	"github.com/angelmondragon/haani-backend/api/validators"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

// ListPayouts returns payouts filtered by status, payee and source type.
func ListPayouts(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}
		params := payouts.ListPayoutsParams{Cursor: validators.QueryCursor(r)}
		var err error
		if params.Limit, err = validators.QueryLimit(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Status, err = validators.QueryEnum(r, "status", enums.ParsePayoutStatus); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.SourceType, err = validators.QueryEnum(r, "sourceType", enums.ParsePayoutSourceType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.PayeeID, err = validators.QueryUUID(r, "payeeId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListPayouts(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, toPayoutDTO))
	}
}

// MarkPayoutPaid records that the money went out.
func MarkPayoutPaid(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}
		actor, err := requireActor(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		payoutID, err := validators.PathUUID(r, "payoutId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		paid, err := svc.MarkPaid(r.Context(), actor, payoutID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPayoutDTO(paid))
	}
}
