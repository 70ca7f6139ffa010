package payments

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tripovia/tripovia-backend/internal/holds"
	"github.com/tripovia/tripovia-backend/pkg/db/models"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	"github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/gateway"
)

type stubHoldRepo struct {
	holds map[uuid.UUID]*models.BookingHold
}

func newStubHoldRepo(seed ...*models.BookingHold) *stubHoldRepo {
	repo := &stubHoldRepo{holds: map[uuid.UUID]*models.BookingHold{}}
	for _, h := range seed {
		repo.holds[h.ID] = h
	}
	return repo
}

func (r *stubHoldRepo) WithTx(_ *gorm.DB) holds.Repository { return r }

func (r *stubHoldRepo) FindByID(_ context.Context, id uuid.UUID) (*models.BookingHold, error) {
	h, ok := r.holds[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *h
	return &copied, nil
}

func (r *stubHoldRepo) MarkProcessing(_ context.Context, holdID uuid.UUID, intentRef string) (bool, error) {
	h, ok := r.holds[holdID]
	if !ok {
		return false, nil
	}
	if h.Status != enums.HoldStatusPending {
		return false, nil
	}
	if h.PaymentStatus != enums.PaymentStatusUnpaid && h.PaymentStatus != enums.PaymentStatusProcessing {
		return false, nil
	}
	if h.GatewayIntentRef != nil && *h.GatewayIntentRef != intentRef {
		return false, nil
	}
	h.GatewayIntentRef = &intentRef
	h.PaymentStatus = enums.PaymentStatusProcessing
	return true, nil
}

type stubGateway struct {
	createdByKey map[string]*gateway.Intent
	createCalls  []gateway.CreateIntentInput
	createErr    error

	retrieved    map[string]*gateway.Intent
	retrieveErr  error
	retrieveRefs []string
}

func newStubGateway() *stubGateway {
	return &stubGateway{
		createdByKey: map[string]*gateway.Intent{},
		retrieved:    map[string]*gateway.Intent{},
	}
}

func (g *stubGateway) CreateIntent(_ context.Context, input gateway.CreateIntentInput) (*gateway.Intent, error) {
	g.createCalls = append(g.createCalls, input)
	if g.createErr != nil {
		return nil, g.createErr
	}
	if existing, ok := g.createdByKey[input.IdempotencyKey]; ok {
		return existing, nil
	}
	intent := &gateway.Intent{
		Ref:              "pi_" + uuid.NewString()[:8],
		ClientSecret:     "secret_" + uuid.NewString()[:8],
		Status:           gateway.IntentStatusRequiresPaymentMethod,
		AmountMinorUnits: input.AmountMinorUnits,
		Currency:         input.Currency,
		Metadata:         input.Metadata,
	}
	g.createdByKey[input.IdempotencyKey] = intent
	return intent, nil
}

func (g *stubGateway) RetrieveIntent(_ context.Context, ref string) (*gateway.Intent, error) {
	g.retrieveRefs = append(g.retrieveRefs, ref)
	if g.retrieveErr != nil {
		return nil, g.retrieveErr
	}
	intent, ok := g.retrieved[ref]
	if !ok {
		return nil, errors.New(errors.CodeNotFound, "payment intent not found at the gateway")
	}
	return intent, nil
}

type stubLocker struct {
	acquired bool
	err      error
	releases []string
}

func (l *stubLocker) AcquireHoldLock(_ context.Context, _ string, _ time.Duration) (bool, error) {
	return l.acquired, l.err
}

func (l *stubLocker) ReleaseHoldLock(_ context.Context, holdID string) error {
	l.releases = append(l.releases, holdID)
	return nil
}

func pendingHold(owner uuid.UUID, price string) *models.BookingHold {
	return &models.BookingHold{
		ID:            uuid.New(),
		TravellerID:   owner,
		Kind:          enums.BookingKindStay,
		Status:        enums.HoldStatusPending,
		PaymentStatus: enums.PaymentStatusUnpaid,
		TotalPrice:    decimal.RequireFromString(price),
		ExpiresAt:     time.Now().Add(time.Hour),
	}
}

func newTestService(t *testing.T, repo *stubHoldRepo, gw *stubGateway, opts func(*ServiceParams)) Service {
	t.Helper()
	params := ServiceParams{
		Holds:      repo,
		Currencies: &stubCurrencyLookup{},
		Gateway:    gw,
	}
	if opts != nil {
		opts(&params)
	}
	svc, err := NewService(params)
	require.NoError(t, err)
	return svc
}

func TestNewServiceValidatesDependencies(t *testing.T) {
	_, err := NewService(ServiceParams{})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Holds: newStubHoldRepo()})
	assert.Error(t, err)

	_, err = NewService(ServiceParams{Holds: newStubHoldRepo(), Currencies: &stubCurrencyLookup{}})
	assert.Error(t, err)
}

func TestInitiatePaymentHappyPath(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	svc := newTestService(t, repo, gw, nil)

	result, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.NoError(t, err)
	assert.NotEmpty(t, result.IntentRef)
	assert.NotEmpty(t, result.ClientSecret)

	require.Len(t, gw.createCalls, 1)
	call := gw.createCalls[0]
	assert.Equal(t, int64(1000), call.AmountMinorUnits)
	assert.Equal(t, "usd", call.Currency)
	assert.Equal(t, "stay_"+hold.ID.String(), call.IdempotencyKey)
	assert.Equal(t, hold.ID.String(), call.Metadata["hold_id"])

	stored := repo.holds[hold.ID]
	assert.Equal(t, enums.PaymentStatusProcessing, stored.PaymentStatus)
	require.NotNil(t, stored.GatewayIntentRef)
	assert.Equal(t, result.IntentRef, *stored.GatewayIntentRef)
}

func TestInitiatePaymentIsIdempotentAcrossRetries(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "25.50")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	svc := newTestService(t, repo, gw, nil)

	input := InitiateInput{RequestorID: owner, HoldID: hold.ID, Kind: enums.BookingKindStay}

	first, err := svc.InitiatePayment(context.Background(), input)
	require.NoError(t, err)

	second, err := svc.InitiatePayment(context.Background(), input)
	require.NoError(t, err)

	assert.Equal(t, first.IntentRef, second.IntentRef)
	assert.Equal(t, first.ClientSecret, second.ClientSecret)
	assert.Len(t, gw.createdByKey, 1)
}

func TestInitiatePaymentOwnershipIsolation(t *testing.T) {
	owner := uuid.New()
	stranger := uuid.New()
	hold := pendingHold(owner, "10.00")
	svc := newTestService(t, newStubHoldRepo(hold), newStubGateway(), nil)

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: stranger,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestInitiatePaymentPreconditions(t *testing.T) {
	owner := uuid.New()

	cases := []struct {
		name   string
		mutate func(*models.BookingHold)
		input  func(*models.BookingHold) InitiateInput
		want   errors.Code
	}{
		{
			name:   "missing identity",
			input:  func(h *models.BookingHold) InitiateInput { return InitiateInput{HoldID: h.ID} },
			want:   errors.CodeUnauthorized,
		},
		{
			name: "unknown hold",
			input: func(*models.BookingHold) InitiateInput {
				return InitiateInput{RequestorID: owner, HoldID: uuid.New()}
			},
			want: errors.CodeNotFound,
		},
		{
			name:   "confirmed hold",
			mutate: func(h *models.BookingHold) { h.Status = enums.HoldStatusConfirmed },
			want:   errors.CodeStateConflict,
		},
		{
			name:   "expired hold",
			mutate: func(h *models.BookingHold) { h.ExpiresAt = time.Now().Add(-time.Minute) },
			want:   errors.CodeExpired,
		},
		{
			name:   "zero price",
			mutate: func(h *models.BookingHold) { h.TotalPrice = decimal.Zero },
			want:   errors.CodeInvalidAmount,
		},
		{
			name: "kind mismatch",
			input: func(h *models.BookingHold) InitiateInput {
				return InitiateInput{RequestorID: owner, HoldID: h.ID, Kind: enums.BookingKindTour}
			},
			want: errors.CodeValidation,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hold := pendingHold(owner, "10.00")
			if tc.mutate != nil {
				tc.mutate(hold)
			}
			gw := newStubGateway()
			svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

			input := InitiateInput{RequestorID: owner, HoldID: hold.ID, Kind: enums.BookingKindStay}
			if tc.input != nil {
				input = tc.input(hold)
			}

			_, err := svc.InitiatePayment(context.Background(), input)
			assert.True(t, errors.IsCode(err, tc.want), "got %v", err)
			assert.Empty(t, gw.createCalls, "gateway must not be called when preconditions fail")
		})
	}
}

func TestInitiatePaymentGatewayFailureMutatesNothing(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	gw.createErr = errors.New(errors.CodeDependency, "payment gateway unavailable")
	svc := newTestService(t, repo, gw, nil)

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.Error(t, err)
	assert.True(t, errors.Retryable(err))

	stored := repo.holds[hold.ID]
	assert.Equal(t, enums.PaymentStatusUnpaid, stored.PaymentStatus)
	assert.Nil(t, stored.GatewayIntentRef)
}

func TestInitiatePaymentLockContention(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	gw := newStubGateway()
	locker := &stubLocker{acquired: false}
	svc := newTestService(t, newStubHoldRepo(hold), gw, func(p *ServiceParams) {
		p.Locker = locker
	})

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	assert.True(t, errors.IsCode(err, errors.CodeConflict))
	assert.Empty(t, gw.createCalls)
}

func TestInitiatePaymentLockStoreDownStillProceeds(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	gw := newStubGateway()
	locker := &stubLocker{err: errors.New(errors.CodeDependency, "redis down")}
	svc := newTestService(t, newStubHoldRepo(hold), gw, func(p *ServiceParams) {
		p.Locker = locker
	})

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.NoError(t, err)
	assert.Len(t, gw.createCalls, 1)
}

func TestInitiatePaymentReleasesLock(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	locker := &stubLocker{acquired: true}
	svc := newTestService(t, newStubHoldRepo(hold), newStubGateway(), func(p *ServiceParams) {
		p.Locker = locker
	})

	_, err := svc.InitiatePayment(context.Background(), InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.NoError(t, err)
	assert.Equal(t, []string{hold.ID.String()}, locker.releases)
}

func verifiableHold(owner uuid.UUID, price, intentRef string) *models.BookingHold {
	hold := pendingHold(owner, price)
	hold.PaymentStatus = enums.PaymentStatusProcessing
	hold.GatewayIntentRef = &intentRef
	return hold
}

func succeededIntent(hold *models.BookingHold, ref string, amount int64) *gateway.Intent {
	return &gateway.Intent{
		Ref:              ref,
		Status:           gateway.IntentStatusSucceeded,
		AmountMinorUnits: amount,
		Currency:         "usd",
		Metadata:         map[string]string{"hold_id": hold.ID.String()},
	}
}

func TestVerifyPaymentHappyPath(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	gw := newStubGateway()
	gw.retrieved["pi_1"] = succeededIntent(hold, "pi_1", 1000)
	svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   "pi_1",
	})
	require.NoError(t, err)
	assert.Equal(t, []string{"pi_1"}, gw.retrieveRefs)
}

func TestVerifyPaymentIsRepeatableWithoutSideEffects(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	gw.retrieved["pi_1"] = succeededIntent(hold, "pi_1", 1000)
	svc := newTestService(t, repo, gw, nil)

	input := VerifyInput{RequestorID: owner, HoldID: hold.ID, IntentRef: "pi_1"}
	require.NoError(t, svc.VerifyPayment(context.Background(), input))
	require.NoError(t, svc.VerifyPayment(context.Background(), input))

	// Verification never advances payment status; that is the caller's job.
	assert.Equal(t, enums.PaymentStatusProcessing, repo.holds[hold.ID].PaymentStatus)
}

func TestVerifyPaymentOwnershipIsolation(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	svc := newTestService(t, newStubHoldRepo(hold), newStubGateway(), nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: uuid.New(),
		HoldID:      hold.ID,
		IntentRef:   "pi_1",
	})
	assert.True(t, errors.IsCode(err, errors.CodeForbidden))
}

func TestVerifyPaymentRejectsForeignIntentRef(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	gw := newStubGateway()
	svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   "pi_other",
	})
	assert.True(t, errors.IsCode(err, errors.CodeVerification))
	assert.Empty(t, gw.retrieveRefs, "mismatched ref must fail before the gateway read")
}

func TestVerifyPaymentFailsClosedOnStatus(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	gw := newStubGateway()
	intent := succeededIntent(hold, "pi_1", 1000)
	intent.Status = gateway.IntentStatusRequiresAction
	gw.retrieved["pi_1"] = intent
	svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   "pi_1",
	})
	require.True(t, errors.IsCode(err, errors.CodeVerification))

	typed := errors.As(err)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, gateway.IntentStatusRequiresAction, details["gateway_status"])
}

func TestVerifyPaymentFailsClosedOnAmount(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	gw := newStubGateway()
	gw.retrieved["pi_1"] = succeededIntent(hold, "pi_1", 999)
	svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   "pi_1",
	})
	require.True(t, errors.IsCode(err, errors.CodeVerification))

	typed := errors.As(err)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, int64(1000), details["expected_minor_units"])
	assert.Equal(t, int64(999), details["actual_minor_units"])
}

func TestVerifyPaymentMetadataCrossReference(t *testing.T) {
	owner := uuid.New()

	t.Run("mismatched hold id fails", func(t *testing.T) {
		hold := verifiableHold(owner, "10.00", "pi_1")
		gw := newStubGateway()
		intent := succeededIntent(hold, "pi_1", 1000)
		intent.Metadata = map[string]string{"hold_id": uuid.NewString()}
		gw.retrieved["pi_1"] = intent
		svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

		err := svc.VerifyPayment(context.Background(), VerifyInput{
			RequestorID: owner,
			HoldID:      hold.ID,
			IntentRef:   "pi_1",
		})
		assert.True(t, errors.IsCode(err, errors.CodeVerification))
	})

	t.Run("absent metadata is tolerated", func(t *testing.T) {
		hold := verifiableHold(owner, "10.00", "pi_1")
		gw := newStubGateway()
		intent := succeededIntent(hold, "pi_1", 1000)
		intent.Metadata = nil
		gw.retrieved["pi_1"] = intent
		svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

		err := svc.VerifyPayment(context.Background(), VerifyInput{
			RequestorID: owner,
			HoldID:      hold.ID,
			IntentRef:   "pi_1",
		})
		assert.NoError(t, err)
	})
}

func TestVerifyPaymentGatewayFailurePropagates(t *testing.T) {
	owner := uuid.New()
	hold := verifiableHold(owner, "10.00", "pi_1")
	gw := newStubGateway()
	gw.retrieveErr = errors.New(errors.CodeDependency, "payment gateway unavailable")
	svc := newTestService(t, newStubHoldRepo(hold), gw, nil)

	err := svc.VerifyPayment(context.Background(), VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   "pi_1",
	})
	assert.True(t, errors.IsCode(err, errors.CodeDependency))
}

func TestEndToEndStayBookingSettlement(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	svc := newTestService(t, repo, gw, nil)
	ctx := context.Background()

	result, err := svc.InitiatePayment(ctx, InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.NoError(t, err)

	require.Len(t, gw.createCalls, 1)
	assert.Equal(t, int64(1000), gw.createCalls[0].AmountMinorUnits)
	assert.Equal(t, "usd", gw.createCalls[0].Currency)

	stored := repo.holds[hold.ID]
	assert.Equal(t, enums.PaymentStatusProcessing, stored.PaymentStatus)
	require.NotNil(t, stored.GatewayIntentRef)

	// Traveller completes payment browser-side; the gateway now reports success.
	gw.retrieved[result.IntentRef] = &gateway.Intent{
		Ref:              result.IntentRef,
		Status:           gateway.IntentStatusSucceeded,
		AmountMinorUnits: 1000,
		Currency:         "usd",
		Metadata:         map[string]string{"hold_id": hold.ID.String()},
	}

	err = svc.VerifyPayment(ctx, VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   result.IntentRef,
	})
	assert.NoError(t, err)
}

func TestEndToEndVerificationFailureScenario(t *testing.T) {
	owner := uuid.New()
	hold := pendingHold(owner, "10.00")
	repo := newStubHoldRepo(hold)
	gw := newStubGateway()
	svc := newTestService(t, repo, gw, nil)
	ctx := context.Background()

	result, err := svc.InitiatePayment(ctx, InitiateInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		Kind:        enums.BookingKindStay,
	})
	require.NoError(t, err)

	gw.retrieved[result.IntentRef] = &gateway.Intent{
		Ref:              result.IntentRef,
		Status:           gateway.IntentStatusRequiresAction,
		AmountMinorUnits: 1000,
		Currency:         "usd",
	}

	err = svc.VerifyPayment(ctx, VerifyInput{
		RequestorID: owner,
		HoldID:      hold.ID,
		IntentRef:   result.IntentRef,
	})
	require.True(t, errors.IsCode(err, errors.CodeVerification))

	typed := errors.As(err)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Equal(t, gateway.IntentStatusRequiresAction, details["gateway_status"])
}
