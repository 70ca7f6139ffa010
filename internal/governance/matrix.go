package governance

import (
	"github.com/tripovia/tripovia-backend/pkg/enums"
)

// CanOperate reports whether a partner may transact on the marketplace. Only
// the approved+active combination qualifies; every other pairing is ineligible.
// Callers must recompute this on every authorization check so a suspension
// takes effect immediately.
func CanOperate(verification enums.VerificationStatus, account enums.AccountStatus) bool {
	return verification == enums.VerificationStatusApproved &&
		account == enums.AccountStatusActive
}

// CascadeListingStatus derives a listing's visibility after the owning
// partner's account status changes. Suspension and deletion pull live listings
// off the marketplace; reinstatement never auto-restores them — the partner
// must republish manually.
func CascadeListingStatus(current enums.ListingVisibility, newAccountStatus enums.AccountStatus) enums.ListingVisibility {
	switch newAccountStatus {
	case enums.AccountStatusSuspended, enums.AccountStatusDeleted:
		if current == enums.ListingVisibilityLive {
			return enums.ListingVisibilitySuspended
		}
		return current
	default:
		return current
	}
}

// CanActOnVerification gates verification-status mutations by admin role.
func CanActOnVerification(role enums.AdminRole) bool {
	return role == enums.AdminRoleModerator || role == enums.AdminRoleSuperAdmin
}

// CanChangeAccountStatus gates account-status mutations by admin role.
func CanChangeAccountStatus(role enums.AdminRole) bool {
	return role == enums.AdminRoleModerator || role == enums.AdminRoleSuperAdmin
}
