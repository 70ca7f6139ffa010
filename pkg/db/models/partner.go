package models

import (
	"time"

	"github.com/google/uuid"

	"github.com/tripovia/tripovia-backend/pkg/enums"
)

// Partner is a hotel or tour provider subject to governance checks.
type Partner struct {
	ID                 uuid.UUID                `gorm:"column:id;type:uuid;default:gen_random_uuid();primaryKey"`
	CompanyName        string                   `gorm:"column:company_name;not null"`
	VerificationStatus enums.VerificationStatus `gorm:"column:verification_status;type:verification_status;not null;default:'pending'"`
	AccountStatus      enums.AccountStatus      `gorm:"column:account_status;type:account_status;not null;default:'active'"`
	CreatedAt          time.Time                `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt          time.Time                `gorm:"column:updated_at;autoUpdateTime"`
}

// TableName keeps the partner table naming.
func (Partner) TableName() string {
	return "partners"
}
