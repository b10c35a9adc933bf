package controllers

import (
	"context"
	"net/http"

	"github.com/google/uuid"

	"github.com/angelmondragon/haani-backend/api/responses"
	"github.com/angelmondragon/haani-backend/api/validators"
	"github.com/angelmondragon/haani-backend/internal/safetywindow"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

// SafetyWindowChecker is implemented by safetywindow.Finalizer.
type SafetyWindowChecker interface {
	CheckAndProcessSafetyWindow(ctx context.Context, bookingID uuid.UUID) safetywindow.CheckResult
}

// CheckSafetyWindow evaluates a single booking. Business outcomes, including
// failures, come back as a 200 with the result body.
func CheckSafetyWindow(checker SafetyWindowChecker, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if checker == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "safety window finalizer unavailable"))
			return
		}
		bookingID, err := validators.PathUUID(r, "bookingId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, checker.CheckAndProcessSafetyWindow(r.Context(), bookingID))
	}
}
