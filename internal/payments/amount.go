package payments

import (
	"context"
	stdErrors "errors"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	"github.com/tripovia/tripovia-backend/pkg/errors"
)

// DefaultCurrency is charged when no kind-specific override exists.
const DefaultCurrency = "usd"

// CurrencyLookup resolves a tour's optional currency override.
type CurrencyLookup interface {
	FindCurrencyByID(ctx context.Context, id uuid.UUID) (*string, error)
}

// ExpectedMinorUnits converts the hold's stored price into the exact gateway
// charge. Initiation and verification both call this; the two paths must agree
// bit-for-bit or the verification amount check is meaningless.
//
// Rounding rule: multiply by 100 and round half away from zero, so a
// half-cent total like 10.005 becomes 1001 minor units.
func ExpectedMinorUnits(ctx context.Context, hold *models.BookingHold, currencies CurrencyLookup) (int64, string, error) {
	if hold == nil {
		return 0, "", stdErrors.New("hold is required")
	}
	if !hold.TotalPrice.IsPositive() {
		return 0, "", errors.New(errors.CodeInvalidAmount, "hold total price must be positive")
	}

	amount := hold.TotalPrice.Mul(decimal.NewFromInt(100)).Round(0).IntPart()
	if amount <= 0 {
		return 0, "", errors.New(errors.CodeInvalidAmount, "hold total price rounds to zero minor units")
	}

	currency := DefaultCurrency
	if hold.Kind == enums.BookingKindTour && hold.KindRefID != nil && currencies != nil {
		override, err := currencies.FindCurrencyByID(ctx, *hold.KindRefID)
		switch {
		case stdErrors.Is(err, gorm.ErrRecordNotFound):
			// Tour record gone; fall back to the default rather than block payment.
		case err != nil:
			return 0, "", err
		case override != nil && strings.TrimSpace(*override) != "":
			currency = strings.ToLower(strings.TrimSpace(*override))
		}
	}

	return amount, currency, nil
}
