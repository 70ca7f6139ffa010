package governance

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tripovia/tripovia-backend/pkg/enums"
)

func TestCanOperateMatrix(t *testing.T) {
	verifications := []enums.VerificationStatus{
		enums.VerificationStatusPending,
		enums.VerificationStatusUnderReview,
		enums.VerificationStatusApproved,
		enums.VerificationStatusRejected,
		enums.VerificationStatusInfoRequested,
	}
	accounts := []enums.AccountStatus{
		enums.AccountStatusActive,
		enums.AccountStatusSuspended,
		enums.AccountStatusDeleted,
	}

	for _, verification := range verifications {
		for _, account := range accounts {
			want := verification == enums.VerificationStatusApproved &&
				account == enums.AccountStatusActive
			got := CanOperate(verification, account)
			assert.Equal(t, want, got, "%s/%s", verification, account)
		}
	}
}

func TestCascadeListingStatusSuspension(t *testing.T) {
	for _, account := range []enums.AccountStatus{enums.AccountStatusSuspended, enums.AccountStatusDeleted} {
		assert.Equal(t, enums.ListingVisibilitySuspended,
			CascadeListingStatus(enums.ListingVisibilityLive, account))

		// Non-live listings keep their state.
		for _, current := range []enums.ListingVisibility{
			enums.ListingVisibilityDraft,
			enums.ListingVisibilityArchived,
			enums.ListingVisibilitySuspended,
		} {
			assert.Equal(t, current, CascadeListingStatus(current, account))
		}
	}
}

func TestCascadeListingStatusReinstatementNeverRestores(t *testing.T) {
	for _, current := range []enums.ListingVisibility{
		enums.ListingVisibilityLive,
		enums.ListingVisibilitySuspended,
		enums.ListingVisibilityDraft,
		enums.ListingVisibilityArchived,
	} {
		assert.Equal(t, current, CascadeListingStatus(current, enums.AccountStatusActive))
	}
}

func TestAdminRoleGates(t *testing.T) {
	assert.False(t, CanActOnVerification(enums.AdminRoleSupport))
	assert.True(t, CanActOnVerification(enums.AdminRoleModerator))
	assert.True(t, CanActOnVerification(enums.AdminRoleSuperAdmin))

	assert.False(t, CanChangeAccountStatus(enums.AdminRoleSupport))
	assert.True(t, CanChangeAccountStatus(enums.AdminRoleModerator))
	assert.True(t, CanChangeAccountStatus(enums.AdminRoleSuperAdmin))

	assert.False(t, CanActOnVerification(enums.AdminRole("auditor")))
	assert.False(t, CanChangeAccountStatus(enums.AdminRole("auditor")))
}
