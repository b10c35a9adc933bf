package controllers

import (
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/angelmondragon/haani-backend/api/responses"
	"github.com/angelmondragon/haani-backend/api/validators"
	"github.com/angelmondragon/haani-backend/internal/payouts"
	"github.com/angelmondragon/haani-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/haani-backend/pkg/errors"
	"github.com/angelmondragon/haani-backend/pkg/logger"
)

type createPayoutRequestBody struct {
	UserID     *string         `json:"userId" validate:"omitempty,uuid"`
	Amount     decimal.Decimal `json:"amount" validate:"money"`
	Currency   string          `json:"currency" validate:"omitempty,len=3"`
	SourceType string          `json:"sourceType" validate:"required"`
	SourceID   string          `json:"sourceId" validate:"required,uuid"`
	Notes      string          `json:"notes" validate:"max=1000"`
}

type rejectPayoutRequestBody struct {
	Reason string `json:"reason" validate:"required,max=1000"`
}

type approvePayoutRequestResponse struct {
	Request *payoutRequestDTO `json:"request"`
	Payout  *payoutDTO        `json:"payout"`
}

// CreatePayoutRequest files a payout request for the caller. An active
// request for the same source is returned with 200 instead of 201.
func CreatePayoutRequest(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
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

		var body createPayoutRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := body.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.CreateRequest(r.Context(), actor, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		status := http.StatusCreated
		if res.Duplicate {
			status = http.StatusOK
		}
		responses.WriteSuccessStatus(w, status, map[string]any{
			"request":   toPayoutRequestDTO(res.Request).masked(),
			"duplicate": res.Duplicate,
		})
	}
}

func (b createPayoutRequestBody) toInput() (payouts.CreateRequestInput, error) {
	sourceType, err := enums.ParsePayoutSourceType(strings.TrimSpace(b.SourceType))
	if err != nil {
		return payouts.CreateRequestInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid sourceType").WithDetails(map[string]any{"field": "sourceType"})
	}
	input := payouts.CreateRequestInput{
		Amount:     b.Amount,
		Currency:   strings.ToUpper(strings.TrimSpace(b.Currency)),
		SourceType: sourceType,
		SourceID:   uuid.MustParse(b.SourceID),
		Notes:      validators.SanitizeText(b.Notes, 1000),
	}
	if b.UserID != nil {
		input.UserID = uuid.MustParse(*b.UserID)
	}
	return input, nil
}

// ListPayoutRequests is the admin review queue.
func ListPayoutRequests(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payouts service unavailable"))
			return
		}
		params := payouts.ListRequestsParams{Cursor: validators.QueryCursor(r)}
		var err error
		if params.Limit, err = validators.QueryLimit(r); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.Status, err = validators.QueryEnum(r, "status", enums.ParsePayoutRequestStatus); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.SourceType, err = validators.QueryEnum(r, "sourceType", enums.ParsePayoutSourceType); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if params.UserID, err = validators.QueryUUID(r, "userId"); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListRequests(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, mapPage(page, toPayoutRequestDTO))
	}
}

// ApprovePayoutRequest approves a pending request and returns the payout it
// produced.
func ApprovePayoutRequest(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
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
		requestID, err := validators.PathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		res, err := svc.Approve(r.Context(), actor, requestID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, approvePayoutRequestResponse{
			Request: toPayoutRequestDTO(res.Request),
			Payout:  toPayoutDTO(res.Payout),
		})
	}
}

// RejectPayoutRequest rejects a pending request. The reason is mandatory.
func RejectPayoutRequest(svc payouts.Service, logg *logger.Logger) http.HandlerFunc {
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
		requestID, err := validators.PathUUID(r, "requestId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		var body rejectPayoutRequestBody
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rejected, err := svc.Reject(r.Context(), actor, requestID, body.Reason)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, toPayoutRequestDTO(rejected))
	}
}
