package enums

import "fmt"

// HoldStatus tracks the lifecycle of a booking hold.
type HoldStatus string

const (
	HoldStatusPending   HoldStatus = "pending"
	HoldStatusConfirmed HoldStatus = "confirmed"
	HoldStatusCancelled HoldStatus = "cancelled"
	HoldStatusExpired   HoldStatus = "expired"
)

var validHoldStatuses = []HoldStatus{
	HoldStatusPending,
	HoldStatusConfirmed,
	HoldStatusCancelled,
	HoldStatusExpired,
}

// String implements fmt.Stringer.
func (h HoldStatus) String() string {
	return string(h)
}

// IsValid reports whether the value is a known HoldStatus.
func (h HoldStatus) IsValid() bool {
	for _, candidate := range validHoldStatuses {
		if candidate == h {
			return true
		}
	}
	return false
}

// ParseHoldStatus converts raw input into a HoldStatus.
func ParseHoldStatus(value string) (HoldStatus, error) {
	for _, candidate := range validHoldStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid hold status %q", value)
}
