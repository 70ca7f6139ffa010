package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tripovia/tripovia-backend/pkg/enums"
)

// BookingHold is a time-boxed reservation awaiting payment. The hold ledger
// creates and expires rows; the payment core only reads them and advances
// gateway_intent_ref and payment_status.
type BookingHold struct {
	ID               uuid.UUID           `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	TravellerID      uuid.UUID           `gorm:"column:traveller_id;type:uuid;not null"`
	Kind             enums.BookingKind   `gorm:"column:kind;type:booking_kind;not null"`
	Status           enums.HoldStatus    `gorm:"column:status;type:hold_status;not null;default:'pending'"`
	PaymentStatus    enums.PaymentStatus `gorm:"column:payment_status;type:payment_status;not null;default:'unpaid'"`
	TotalPrice       decimal.Decimal     `gorm:"column:total_price;type:numeric(12,2);not null"`
	ExpiresAt        time.Time           `gorm:"column:expires_at;not null"`
	GatewayIntentRef *string             `gorm:"column:gateway_intent_ref"`
	KindRefID        *uuid.UUID          `gorm:"column:kind_ref_id;type:uuid"`
	CreatedAt        time.Time           `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt        time.Time           `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the ledger's table naming.
func (BookingHold) TableName() string {
	return "booking_holds"
}
