package enums

import "fmt"

// BookingKind distinguishes the two bookable inventory types.
type BookingKind string

const (
	BookingKindStay BookingKind = "stay"
	BookingKindTour BookingKind = "tour"
)

var validBookingKinds = []BookingKind{
	BookingKindStay,
	BookingKindTour,
}

// String implements fmt.Stringer.
func (b BookingKind) String() string {
	return string(b)
}

// IsValid reports whether the value is a known BookingKind.
func (b BookingKind) IsValid() bool {
	for _, candidate := range validBookingKinds {
		if candidate == b {
			return true
		}
	}
	return false
}

// ParseBookingKind converts raw input into a BookingKind.
func ParseBookingKind(value string) (BookingKind, error) {
	for _, candidate := range validBookingKinds {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid booking kind %q", value)
}
