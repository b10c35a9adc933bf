package controllers

import (
	"net/http"

	"github.com/angelmondragon/haani-backend/api/responses"
	"github.com/angelmondragon/haani-backend/api/validators"
	"github.com/angelmondragon/haani-backend/internal/ledger"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

// ListLedgerEvents returns the audit trail for one payout source, oldest first.
func ListLedgerEvents(svc ledger.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "ledger service unavailable"))
			return
		}
		sourceType, err := validators.QueryEnum(r, "sourceType", enums.ParsePayoutSourceType)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		sourceID, err := validators.QueryUUID(r, "sourceId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if sourceType == nil || sourceID == nil {
			responses.WriteError(r.Context(), logg, w,
				pkgerrors.New(pkgerrors.CodeValidation, "sourceType and sourceId are required"))
			return
		}

		events, err := svc.ListBySource(r.Context(), *sourceType, *sourceID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load ledger events"))
			return
		}
		out := make([]*ledgerEventDTO, 0, len(events))
		for i := range events {
			out = append(out, toLedgerEventDTO(&events[i]))
		}
		responses.WriteSuccess(w, out)
	}
}
