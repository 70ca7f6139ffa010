package controllers

import (
	"net/http"

	"github.com/tripovia/tripovia-backend/api/middleware"
	"github.com/tripovia/tripovia-backend/api/responses"
	"github.com/tripovia/tripovia-backend/api/validators"
	"github.com/tripovia/tripovia-backend/internal/governance"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	pkgerrors "github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/logger"
)

type setPartnerStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// AdminSetVerificationStatus records an admin decision on a partner's identity
// verification review.
func AdminSetVerificationStatus(svc governance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "governance service unavailable"))
			return
		}

		adminRole, err := adminRoleFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partnerID, err := validators.UUIDParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setPartnerStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseVerificationStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown verification status").
				WithDetails(map[string]any{"status": body.Status}))
			return
		}

		if err := svc.SetVerificationStatus(r.Context(), governance.SetVerificationInput{
			AdminRole: adminRole,
			PartnerID: partnerID,
			Status:    status,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"partnerId":          partnerID.String(),
			"verificationStatus": status.String(),
		})
	}
}

// AdminSetAccountStatus changes a partner's account status and cascades the
// consequences to the partner's listings.
func AdminSetAccountStatus(svc governance.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "governance service unavailable"))
			return
		}

		adminRole, err := adminRoleFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		partnerID, err := validators.UUIDParam(r, "partnerId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var body setPartnerStatusRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		status, err := enums.ParseAccountStatus(body.Status)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "unknown account status").
				WithDetails(map[string]any{"status": body.Status}))
			return
		}

		if err := svc.SetAccountStatus(r.Context(), governance.SetAccountStatusInput{
			AdminRole: adminRole,
			PartnerID: partnerID,
			Status:    status,
		}); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{
			"partnerId":     partnerID.String(),
			"accountStatus": status.String(),
		})
	}
}

func adminRoleFromContext(r *http.Request) (enums.AdminRole, error) {
	raw := middleware.AdminRoleFromContext(r.Context())
	if raw == "" {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "admin role missing")
	}
	role, err := enums.ParseAdminRole(raw)
	if err != nil {
		return "", pkgerrors.New(pkgerrors.CodeForbidden, "unknown admin role")
	}
	return role, nil
}
