package payments

import (
	"context"
	stdErrors "errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/internal/holds"
	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	"github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/gateway"
	"github.com/tripovia/tripovia-backend/pkg/logger"
	"github.com/tripovia/tripovia-backend/pkg/metrics"
)

const metadataHoldIDKey = "hold_id"

// GatewayClient is the subset of gateway operations the payment core needs.
type GatewayClient interface {
	CreateIntent(ctx context.Context, input gateway.CreateIntentInput) (*gateway.Intent, error)
	RetrieveIntent(ctx context.Context, ref string) (*gateway.Intent, error)
}

// HoldLocker serializes concurrent initiations for one hold. Best-effort: the
// gateway idempotency key is what actually prevents duplicate charges.
type HoldLocker interface {
	AcquireHoldLock(ctx context.Context, holdID string, ttl time.Duration) (bool, error)
	ReleaseHoldLock(ctx context.Context, holdID string) error
}

// InitiateInput identifies the hold a traveller wants to pay for.
type InitiateInput struct {
	RequestorID uuid.UUID
	HoldID      uuid.UUID
	Kind        enums.BookingKind
}

// InitiateResult carries what the client needs to complete payment browser-side.
type InitiateResult struct {
	IntentRef    string
	ClientSecret string
}

// VerifyInput identifies the completed charge a traveller reports back.
type VerifyInput struct {
	RequestorID uuid.UUID
	HoldID      uuid.UUID
	IntentRef   string
}

// Service opens payment intents for booking holds and verifies completed
// charges against gateway truth.
type Service interface {
	InitiatePayment(ctx context.Context, input InitiateInput) (*InitiateResult, error)
	VerifyPayment(ctx context.Context, input VerifyInput) error
}

// ServiceParams wires the payment service dependencies. Locker, Metrics, and
// Logger are optional.
type ServiceParams struct {
	Holds      holds.Repository
	Currencies CurrencyLookup
	Gateway    GatewayClient
	Locker     HoldLocker
	LockTTL    time.Duration
	Metrics    *metrics.PaymentMetrics
	Logger     *logger.Logger
	Now        func() time.Time
}

type service struct {
	holds      holds.Repository
	currencies CurrencyLookup
	gateway    GatewayClient
	locker     HoldLocker
	lockTTL    time.Duration
	metrics    *metrics.PaymentMetrics
	log        *logger.Logger
	now        func() time.Time
}

// NewService builds the payment service with the required dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Holds == nil {
		return nil, fmt.Errorf("holds repository required")
	}
	if params.Currencies == nil {
		return nil, fmt.Errorf("currency lookup required")
	}
	if params.Gateway == nil {
		return nil, fmt.Errorf("gateway client required")
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	lockTTL := params.LockTTL
	if lockTTL <= 0 {
		lockTTL = 30 * time.Second
	}
	return &service{
		holds:      params.Holds,
		currencies: params.Currencies,
		gateway:    params.Gateway,
		locker:     params.Locker,
		lockTTL:    lockTTL,
		metrics:    params.Metrics,
		log:        params.Logger,
		now:        now,
	}, nil
}

// InitiatePayment validates the hold, opens an intent at the gateway with a
// deterministic idempotency key, and records the intent ref on the hold.
// Retries with the same hold resolve to the same gateway intent, so duplicate
// submissions never produce a second charge attempt.
func (s *service) InitiatePayment(ctx context.Context, input InitiateInput) (*InitiateResult, error) {
	kindLabel := string(input.Kind)

	hold, err := s.loadOwnedHold(ctx, input.RequestorID, input.HoldID)
	if err != nil {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, err
	}
	ctx = s.withHoldFields(ctx, input)

	if input.Kind != "" && input.Kind != hold.Kind {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, errors.New(errors.CodeValidation, "booking kind does not match hold").
			WithDetails(map[string]any{"kind": hold.Kind})
	}
	if hold.Status != enums.HoldStatusPending {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, errors.New(errors.CodeStateConflict, "hold is not payable").
			WithDetails(map[string]any{"status": hold.Status})
	}
	if !hold.ExpiresAt.After(s.now()) {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, errors.New(errors.CodeExpired, "hold has expired")
	}

	amount, currency, err := ExpectedMinorUnits(ctx, hold, s.currencies)
	if err != nil {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, err
	}

	if s.locker != nil {
		acquired, lockErr := s.locker.AcquireHoldLock(ctx, hold.ID.String(), s.lockTTL)
		if lockErr != nil {
			// Lock store down: proceed, the idempotency key still protects us.
			s.warn(ctx, "hold lock unavailable, continuing without it")
		} else if !acquired {
			s.incInitiation(kindLabel, "in_progress")
			return nil, errors.New(errors.CodeConflict, "payment initiation already in progress")
		} else {
			defer func() {
				if relErr := s.locker.ReleaseHoldLock(ctx, hold.ID.String()); relErr != nil {
					s.warn(ctx, "failed to release hold lock")
				}
			}()
		}
	}

	metadata := map[string]string{metadataHoldIDKey: hold.ID.String()}
	if hold.Kind == enums.BookingKindTour && hold.KindRefID != nil {
		metadata["tour_id"] = hold.KindRefID.String()
	}

	started := s.now()
	intent, err := s.gateway.CreateIntent(ctx, gateway.CreateIntentInput{
		AmountMinorUnits: amount,
		Currency:         currency,
		IdempotencyKey:   idempotencyKey(hold.Kind, hold.ID),
		Metadata:         metadata,
	})
	s.observeGateway("create_intent", started)
	if err != nil {
		s.incInitiation(kindLabel, "gateway_error")
		s.errorLog(ctx, "gateway intent creation failed", err)
		return nil, err
	}

	updated, err := s.holds.MarkProcessing(ctx, hold.ID, intent.Ref)
	if err != nil {
		s.incInitiation(kindLabel, "persist_error")
		// Intent exists gateway-side; a retried call re-derives the same
		// idempotency key, receives the same intent, and retries this write.
		return nil, errors.Wrap(errors.CodeInternal, err, "recording payment intent failed")
	}
	if !updated {
		s.incInitiation(kindLabel, "precondition_failed")
		return nil, errors.New(errors.CodeStateConflict, "hold state changed during initiation")
	}

	s.incInitiation(kindLabel, "success")
	s.info(ctx, "payment intent initiated")
	return &InitiateResult{
		IntentRef:    intent.Ref,
		ClientSecret: intent.ClientSecret,
	}, nil
}

// VerifyPayment re-checks gateway truth before the caller may treat the hold
// as paid. Pure read-and-check: no state is mutated, so it is safe to invoke
// any number of times.
func (s *service) VerifyPayment(ctx context.Context, input VerifyInput) error {
	hold, err := s.loadOwnedHold(ctx, input.RequestorID, input.HoldID)
	if err != nil {
		s.incVerification("precondition_failed")
		return err
	}
	ctx = s.withHoldFields(ctx, InitiateInput{RequestorID: input.RequestorID, HoldID: input.HoldID})

	if input.IntentRef == "" {
		s.incVerification("precondition_failed")
		return errors.New(errors.CodeValidation, "intent reference is required")
	}
	if hold.GatewayIntentRef != nil && *hold.GatewayIntentRef != input.IntentRef {
		s.incVerification("mismatch")
		return errors.New(errors.CodeVerification, "intent reference does not belong to this hold")
	}

	expectedAmount, expectedCurrency, err := ExpectedMinorUnits(ctx, hold, s.currencies)
	if err != nil {
		s.incVerification("precondition_failed")
		return err
	}

	started := s.now()
	intent, err := s.gateway.RetrieveIntent(ctx, input.IntentRef)
	s.observeGateway("retrieve_intent", started)
	if err != nil {
		s.incVerification("gateway_error")
		s.errorLog(ctx, "gateway intent retrieval failed", err)
		return err
	}

	if intent.Status != gateway.IntentStatusSucceeded {
		s.incVerification("mismatch")
		return errors.New(errors.CodeVerification, "payment has not succeeded").
			WithDetails(map[string]any{"gateway_status": intent.Status})
	}
	if intent.AmountMinorUnits != expectedAmount {
		s.incVerification("mismatch")
		return errors.New(errors.CodeVerification, "charged amount does not match hold").
			WithDetails(map[string]any{
				"expected_minor_units": expectedAmount,
				"actual_minor_units":   intent.AmountMinorUnits,
				"currency":             expectedCurrency,
			})
	}
	if ref, ok := intent.Metadata[metadataHoldIDKey]; ok && ref != hold.ID.String() {
		// Absent metadata is tolerated for intents created before the
		// cross-reference was introduced; a present-and-different value never is.
		s.incVerification("mismatch")
		return errors.New(errors.CodeVerification, "intent references a different hold")
	}

	s.incVerification("success")
	s.info(ctx, "payment verified against gateway")
	return nil
}

// loadOwnedHold runs the shared identity/existence/ownership precondition
// chain, in order, each failure mapping to its own error code.
func (s *service) loadOwnedHold(ctx context.Context, requestorID, holdID uuid.UUID) (*models.BookingHold, error) {
	if requestorID == uuid.Nil {
		return nil, errors.New(errors.CodeUnauthorized, "caller identity is required")
	}
	if holdID == uuid.Nil {
		return nil, errors.New(errors.CodeValidation, "hold id is required")
	}

	found, err := s.holds.FindByID(ctx, holdID)
	if err != nil {
		if stdErrors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.New(errors.CodeNotFound, "hold not found")
		}
		return nil, errors.Wrap(errors.CodeInternal, err, "loading hold failed")
	}
	if found.TravellerID != requestorID {
		return nil, errors.New(errors.CodeForbidden, "hold belongs to another traveller")
	}
	return found, nil
}

func idempotencyKey(kind enums.BookingKind, holdID uuid.UUID) string {
	return fmt.Sprintf("%s_%s", kind, holdID)
}

func (s *service) withHoldFields(ctx context.Context, input InitiateInput) context.Context {
	if s.log == nil {
		return ctx
	}
	ctx = s.log.WithUserID(ctx, input.RequestorID.String())
	return s.log.WithHoldID(ctx, input.HoldID.String())
}

func (s *service) incInitiation(kind, result string) {
	if s.metrics != nil {
		s.metrics.IncInitiation(kind, result)
	}
}

func (s *service) incVerification(result string) {
	if s.metrics != nil {
		s.metrics.IncVerification(result)
	}
}

func (s *service) observeGateway(operation string, started time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveGatewayDuration(operation, s.now().Sub(started))
	}
}

func (s *service) info(ctx context.Context, msg string) {
	if s.log != nil {
		s.log.Info(ctx, msg)
	}
}

func (s *service) warn(ctx context.Context, msg string) {
	if s.log != nil {
		s.log.Warn(ctx, msg)
	}
}

func (s *service) errorLog(ctx context.Context, msg string, err error) {
	if s.log != nil {
		s.log.Error(ctx, msg, err)
	}
}
