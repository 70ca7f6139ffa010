package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripovia/tripovia-backend/pkg/enums"
)

// Listing is a bookable stay or tour published by a partner.
type Listing struct {
	ID         uuid.UUID               `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerID  uuid.UUID               `gorm:"column:partner_id;type:uuid;not null"`
	Kind       enums.BookingKind       `gorm:"column:kind;type:booking_kind;not null"`
	Title      string                  `gorm:"column:title;not null"`
	Visibility enums.ListingVisibility `gorm:"column:visibility;type:listing_visibility;not null;default:'draft'"`
	CreatedAt  time.Time               `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt  time.Time               `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the listing table naming.
func (Listing) TableName() string {
	return "listings"
}
