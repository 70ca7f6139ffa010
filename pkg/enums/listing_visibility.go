package enums

import "fmt"

// ListingVisibility controls whether a partner listing is publicly bookable.
type ListingVisibility string

const (
	ListingVisibilityLive      ListingVisibility = "live"
	ListingVisibilitySuspended ListingVisibility = "suspended"
	ListingVisibilityDraft     ListingVisibility = "draft"
	ListingVisibilityArchived  ListingVisibility = "archived"
)

var validListingVisibilities = []ListingVisibility{
	ListingVisibilityLive,
	ListingVisibilitySuspended,
	ListingVisibilityDraft,
	ListingVisibilityArchived,
}

// String implements fmt.Stringer.
func (l ListingVisibility) String() string {
	return string(l)
}

// IsValid reports whether the value is a known ListingVisibility.
func (l ListingVisibility) IsValid() bool {
	for _, candidate := range validListingVisibilities {
		if candidate == l {
			return true
		}
	}
	return false
}

// ParseListingVisibility converts raw input into a ListingVisibility.
func ParseListingVisibility(value string) (ListingVisibility, error) {
	for _, candidate := range validListingVisibilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid listing visibility %q", value)
}
