package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/tripovia/tripovia-backend/api/middleware"
	"github.com/tripovia/tripovia-backend/api/responses"
	"github.com/tripovia/tripovia-backend/api/validators"
	"github.com/tripovia/tripovia-backend/internal/payments"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	pkgerrors "github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/logger"
)

type initiatePaymentRequest struct {
	Kind string `json:"kind" validate:"required"`
}

type verifyPaymentRequest struct {
	IntentRef string `json:"intentRef" validate:"required"`
}

// InitiatePayment opens a payment intent for the caller's booking hold and
// returns the reference the client needs to complete the charge browser-side.
func InitiatePayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		requestorID, err := requestorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		holdID, err := validators.UUIDParam(r, "holdId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body initiatePaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		kind, err := enums.ParseBookingKind(body.Kind)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown booking kind").
				WithDetails(map[string]any{"kind": body.Kind}))
			return
		}

		result, err := svc.InitiatePayment(r.Context(), payments.InitiateInput{
			RequestorID: requestorID,
			HoldID:      holdID,
			Kind:        kind,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, map[string]string{
			"intentRef":    result.IntentRef,
			"clientSecret": result.ClientSecret,
		})
	}
}

// VerifyPayment re-checks the reported charge against gateway truth. Repeatable:
// a verified hold stays verifiable.
func VerifyPayment(svc payments.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "payments service unavailable"))
			return
		}

		requestorID, err := requestorFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		holdID, err := validators.UUIDParam(r, "holdId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body verifyPaymentRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.VerifyPayment(r.Context(), payments.VerifyInput{
			RequestorID: requestorID,
			HoldID:      holdID,
			IntentRef:   body.IntentRef,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]bool{"verified": true})
	}
}

func requestorFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.UserIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "authentication required")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "caller identity is malformed")
	}
	return id, nil
}
