package holds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
)

type repository struct {
	db *gorm.DB
}

// NewRepository builds a holds repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.BookingHold, error) {
	var hold models.BookingHold
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&hold).Error
	if err != nil {
		return nil, err
	}
	return &hold, nil
}

// MarkProcessing records the gateway intent reference and flips the payment
// status to processing in one conditional UPDATE. The WHERE guard re-checks the
// initiable state so a racing expiry sweep or duplicate submission cannot
// overwrite a ref with a different one. Returns false when the guard rejected
// the write.
func (r *repository) MarkProcessing(ctx context.Context, holdID uuid.UUID, intentRef string) (bool, error) {
	res := r.db.WithContext(ctx).
		Model(&models.BookingHold{}).
		Where("id = ?", holdID).
		Where("status = ?", enums.HoldStatusPending).
		Where("payment_status IN ?", []enums.PaymentStatus{enums.PaymentStatusUnpaid, enums.PaymentStatusProcessing}).
		Where("gateway_intent_ref IS NULL OR gateway_intent_ref = ?", intentRef).
		Updates(map[string]any{
			"payment_status":     enums.PaymentStatusProcessing,
			"gateway_intent_ref": intentRef,
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}
