package governance

import (
	"context"
	stdErrors "errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	"github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/logger"
)

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// SetVerificationInput carries an admin's verification-status decision.
type SetVerificationInput struct {
	AdminRole enums.AdminRole
	PartnerID uuid.UUID
	Status    enums.VerificationStatus
}

// SetAccountStatusInput carries an admin's account-status decision.
type SetAccountStatusInput struct {
	AdminRole enums.AdminRole
	PartnerID uuid.UUID
	Status    enums.AccountStatus
}

// Service applies admin governance actions to partners and cascades the
// consequences to their listings.
type Service interface {
	SetVerificationStatus(ctx context.Context, input SetVerificationInput) error
	SetAccountStatus(ctx context.Context, input SetAccountStatusInput) error
	PartnerCanOperate(ctx context.Context, partnerID uuid.UUID) (bool, error)
}

type service struct {
	repo Repository
	tx   txRunner
	log  *logger.Logger
}

// NewService builds a governance service with the required dependencies.
func NewService(repo Repository, tx txRunner, log *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("governance repository required")
	}
	if tx == nil {
		return nil, fmt.Errorf("transaction runner required")
	}
	return &service{repo: repo, tx: tx, log: log}, nil
}

// SetVerificationStatus updates a partner's verification outcome. Only
// moderator and super_admin roles may act.
func (s *service) SetVerificationStatus(ctx context.Context, input SetVerificationInput) error {
	if !CanActOnVerification(input.AdminRole) {
		return errors.New(errors.CodeForbidden, "role may not act on verification status")
	}
	if !input.Status.IsValid() {
		return errors.New(errors.CodeValidation, "unknown verification status").
			WithDetails(map[string]any{"status": input.Status})
	}

	if _, err := s.loadPartner(ctx, input.PartnerID); err != nil {
		return err
	}
	if err := s.repo.UpdatePartnerVerificationStatus(ctx, input.PartnerID, input.Status); err != nil {
		return errors.Wrap(errors.CodeInternal, err, "updating verification status failed")
	}

	if s.log != nil {
		ctx = s.log.WithPartnerID(ctx, input.PartnerID.String())
		s.log.Info(ctx, fmt.Sprintf("partner verification status set to %s", input.Status))
	}
	return nil
}

// SetAccountStatus updates a partner's account status and, in the same
// transaction, cascades visibility to every listing the partner owns. The
// cascade is one-way: suspension pulls live listings, reinstatement restores
// nothing.
func (s *service) SetAccountStatus(ctx context.Context, input SetAccountStatusInput) error {
	if !CanChangeAccountStatus(input.AdminRole) {
		return errors.New(errors.CodeForbidden, "role may not change account status")
	}
	if !input.Status.IsValid() {
		return errors.New(errors.CodeValidation, "unknown account status").
			WithDetails(map[string]any{"status": input.Status})
	}

	if _, err := s.loadPartner(ctx, input.PartnerID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		repo := s.repo.WithTx(tx)

		if err := repo.UpdatePartnerAccountStatus(ctx, input.PartnerID, input.Status); err != nil {
			return err
		}

		listings, err := repo.ListListingsByPartner(ctx, input.PartnerID)
		if err != nil {
			return err
		}
		for _, listing := range listings {
			next := CascadeListingStatus(listing.Visibility, input.Status)
			if next == listing.Visibility {
				continue
			}
			if err := repo.UpdateListingVisibility(ctx, listing.ID, next); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return errors.Wrap(errors.CodeInternal, err, "applying account status change failed")
	}

	if s.log != nil {
		ctx = s.log.WithPartnerID(ctx, input.PartnerID.String())
		s.log.Info(ctx, fmt.Sprintf("partner account status set to %s", input.Status))
	}
	return nil
}

// PartnerCanOperate recomputes operating eligibility from the stored statuses.
func (s *service) PartnerCanOperate(ctx context.Context, partnerID uuid.UUID) (bool, error) {
	partner, err := s.loadPartner(ctx, partnerID)
	if err != nil {
		return false, err
	}
	return CanOperate(partner.VerificationStatus, partner.AccountStatus), nil
}

func (s *service) loadPartner(ctx context.Context, partnerID uuid.UUID) (*models.Partner, error) {
	if partnerID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "partner id is required")
	}
	found, err := s.repo.FindPartnerByID(ctx, partnerID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "partner not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading partner failed")
	}
	return found, nil
}
