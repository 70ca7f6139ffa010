package holds

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
)

// Repository defines persistence operations on booking holds. The hold rows are
// owned by the hold ledger; this subsystem reads them and mutates only the
// payment fields.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	FindByID(ctx context.Context, id uuid.UUID) (*models.BookingHold, error)
	MarkProcessing(ctx context.Context, holdID uuid.UUID, intentRef string) (bool, error)
}
