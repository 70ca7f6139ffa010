package gateway

import (
	"context"
	stdErrors "errors"
	"net/http"

	"github.com/stripe/stripe-go/v84"

	"github.com/tripovia/tripovia-backend/pkg/errors"
)

// mapGatewayError translates SDK failures into domain error codes. Timeouts and
// 5xx responses surface as retryable dependency failures; declines surface as
// gateway rejections and are never retried server-side.
func mapGatewayError(err error) error {
	if err == nil {
		return nil
	}

	if stdErrors.Is(err, context.DeadlineExceeded) || stdErrors.Is(err, context.Canceled) {
		return errors.Wrap(errors.CodeDependency, err, "payment gateway timed out")
	}

	var stripeErr *stripe.Error
	if stdErrors.As(err, &stripeErr) {
		return mapStripeError(stripeErr)
	}

	return errors.Wrap(errors.CodeDependency, err, "payment gateway unreachable")
}

func mapStripeError(stripeErr *stripe.Error) error {
	switch stripeErr.Type {
	case stripe.ErrorTypeCard:
		return errors.Wrap(errors.CodeGatewayRejected, stripeErr, "payment method was declined")
	case stripe.ErrorTypeIdempotency:
		return errors.Wrap(errors.CodeIdempotency, stripeErr, "idempotency key reused with different parameters")
	}

	switch {
	case stripeErr.HTTPStatusCode == http.StatusPaymentRequired:
		return errors.Wrap(errors.CodeGatewayRejected, stripeErr, "payment was rejected by the gateway")
	case stripeErr.HTTPStatusCode == http.StatusNotFound:
		return errors.Wrap(errors.CodeNotFound, stripeErr, "payment intent not found at the gateway")
	case stripeErr.HTTPStatusCode == http.StatusUnauthorized,
		stripeErr.HTTPStatusCode == http.StatusForbidden:
		return errors.Wrap(errors.CodeDependency, stripeErr, "payment gateway rejected credentials")
	case stripeErr.HTTPStatusCode == http.StatusTooManyRequests,
		stripeErr.HTTPStatusCode >= http.StatusInternalServerError:
		return errors.Wrap(errors.CodeDependency, stripeErr, "payment gateway unavailable")
	}

	return errors.Wrap(errors.CodeDependency, stripeErr, "unexpected payment gateway failure")
}
