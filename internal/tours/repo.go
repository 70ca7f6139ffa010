package tours

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
)

// Repository exposes the read surface the payment core needs from tour records.
type Repository interface {
	FindCurrencyByID(ctx context.Context, id uuid.UUID) (*string, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds a tours repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

// FindCurrencyByID returns the tour's currency override, nil when the tour has
// no override configured.
func (r *repository) FindCurrencyByID(ctx context.Context, id uuid.UUID) (*string, error) {
	var tour models.Tour
	err := r.db.WithContext(ctx).
		Select("id", "currency").
		Where("id = ?", id).
		First(&tour).Error
	if err != nil {
		return nil, err
	}
	return tour.Currency, nil
}
