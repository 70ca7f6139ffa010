package enums

import "fmt"

// PaymentStatus tracks payment progress for a booking hold.
// Transitions are unpaid -> processing -> paid, or failed from any
// pre-paid state. Paid is terminal.
type PaymentStatus string

const (
	PaymentStatusUnpaid     PaymentStatus = "unpaid"
	PaymentStatusProcessing PaymentStatus = "processing"
	PaymentStatusPaid       PaymentStatus = "paid"
	PaymentStatusFailed     PaymentStatus = "failed"
)

var validPaymentStatuses = []PaymentStatus{
	PaymentStatusUnpaid,
	PaymentStatusProcessing,
	PaymentStatusPaid,
	PaymentStatusFailed,
}

// String implements fmt.Stringer.
func (p PaymentStatus) String() string {
	return string(p)
}

// IsValid reports whether the value is a known PaymentStatus.
func (p PaymentStatus) IsValid() bool {
	for _, candidate := range validPaymentStatuses {
		if candidate == p {
			return true
		}
	}
	return false
}

// CanTransitionTo reports whether the receiver may move to the target status.
func (p PaymentStatus) CanTransitionTo(target PaymentStatus) bool {
	if p == target {
		return true
	}
	switch p {
	case PaymentStatusUnpaid:
		return target == PaymentStatusProcessing || target == PaymentStatusFailed
	case PaymentStatusProcessing:
		return target == PaymentStatusPaid || target == PaymentStatusFailed
	default:
		return false
	}
}

// ParsePaymentStatus converts raw input into a PaymentStatus.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	for _, candidate := range validPaymentStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid payment status %q", value)
}
