package models

import (
	"time"

	"github.com/google/uuid"
)

// Tour is the guided-tour record referenced by tour holds. Only the currency
// override matters to the payment core; the rest belongs to the catalog.
type Tour struct {
	ID        uuid.UUID `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	PartnerID uuid.UUID `gorm:"column:partner_id;type:uuid;not null"`
	Title     string    `gorm:"column:title;not null"`
	Currency  *string   `gorm:"column:currency;size:3"`
	CreatedAt time.Time `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt time.Time `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the catalog's table naming.
func (Tour) TableName() string {
	return "tours"
}
