package governance

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
)

// Repository defines persistence operations for partner and listing records.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindPartnerByID(ctx context.Context, id uuid.UUID) (*models.Partner, error)
	UpdatePartnerVerificationStatus(ctx context.Context, id uuid.UUID, status enums.VerificationStatus) error
	UpdatePartnerAccountStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus) error
	ListListingsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Listing, error)
	UpdateListingVisibility(ctx context.Context, id uuid.UUID, visibility enums.ListingVisibility) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a governance repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindPartnerByID(ctx context.Context, id uuid.UUID) (*models.Partner, error) {
	var partner models.Partner
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&partner).Error
	if err != nil {
		return nil, err
	}
	return &partner, nil
}

func (r *repository) UpdatePartnerVerificationStatus(ctx context.Context, id uuid.UUID, status enums.VerificationStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Partner{}).
		Where("id = ?", id).
		Update("verification_status", status).Error
}

func (r *repository) UpdatePartnerAccountStatus(ctx context.Context, id uuid.UUID, status enums.AccountStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Partner{}).
		Where("id = ?", id).
		Update("account_status", status).Error
}

func (r *repository) ListListingsByPartner(ctx context.Context, partnerID uuid.UUID) ([]models.Listing, error) {
	var listings []models.Listing
	err := r.db.WithContext(ctx).
		Where("partner_id = ?", partnerID).
		Order("created_at ASC").
		Find(&listings).Error
	if err != nil {
		return nil, err
	}
	return listings, nil
}

func (r *repository) UpdateListingVisibility(ctx context.Context, id uuid.UUID, visibility enums.ListingVisibility) error {
	return r.db.WithContext(ctx).
		Model(&models.Listing{}).
		Where("id = ?", id).
		Update("visibility", visibility).Error
}
