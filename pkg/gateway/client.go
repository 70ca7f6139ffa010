package gateway

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/stripe/stripe-go/v84"
	"github.com/stripe/stripe-go/v84/paymentintent"

	"github.com/tripovia/tripovia-backend/pkg/config"
	"github.com/tripovia/tripovia-backend/pkg/logger"
)

const (
	testEnv = "test"
	liveEnv = "live"
)

var (
	errAPIKeyRequired    = errors.New("gateway api key is required")
	errInvalidGatewayEnv = fmt.Errorf("gateway environment must be %q or %q", testEnv, liveEnv)
)

// IntentStatus mirrors the gateway's payment intent lifecycle states.
type IntentStatus string

const (
	IntentStatusRequiresPaymentMethod IntentStatus = "requires_payment_method"
	IntentStatusRequiresConfirmation  IntentStatus = "requires_confirmation"
	IntentStatusRequiresAction        IntentStatus = "requires_action"
	IntentStatusProcessing            IntentStatus = "processing"
	IntentStatusRequiresCapture       IntentStatus = "requires_capture"
	IntentStatusCanceled              IntentStatus = "canceled"
	IntentStatusSucceeded             IntentStatus = "succeeded"
)

// Intent is the provider-neutral view of a payment intent.
type Intent struct {
	Ref              string
	ClientSecret     string
	Status           IntentStatus
	AmountMinorUnits int64
	Currency         string
	Metadata         map[string]string
}

// CreateIntentInput carries everything needed to open an intent at the gateway.
type CreateIntentInput struct {
	AmountMinorUnits int64
	Currency         string
	IdempotencyKey   string
	Metadata         map[string]string
}

// IntentAPI abstracts the raw gateway SDK calls so services can be tested.
type IntentAPI interface {
	NewIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	GetIntent(ctx context.Context, ref string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type sdkIntentAPI struct{}

func (sdkIntentAPI) NewIntent(ctx context.Context, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.New(params)
}

func (sdkIntentAPI) GetIntent(ctx context.Context, ref string, params *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error) {
	if params != nil {
		params.Context = ctx
	}
	return paymentintent.Get(ref, params)
}

// Client wraps the payment gateway SDK plus env-specific metadata.
type Client struct {
	api         IntentAPI
	environment string
	timeout     time.Duration
	log         *logger.Logger
}

// NewClient initializes the gateway once with the configured secret and env.
func NewClient(ctx context.Context, cfg config.GatewayConfig, logg *logger.Logger) (*Client, error) {
	env, err := normalizeEnv(cfg.Environment())
	if err != nil {
		return nil, err
	}

	apiKey := strings.TrimSpace(cfg.APIKey)
	if apiKey == "" {
		return nil, errAPIKeyRequired
	}
	if err := validateAPIKey(env, apiKey); err != nil {
		return nil, err
	}

	stripe.Key = apiKey

	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	if logg != nil {
		logg.Info(ctx, fmt.Sprintf("payment gateway client initialized (%s)", env))
	}

	return &Client{
		api:         sdkIntentAPI{},
		environment: env,
		timeout:     timeout,
		log:         logg,
	}, nil
}

// Environment reports the normalized gateway environment in use.
func (c *Client) Environment() string {
	if c == nil {
		return ""
	}
	return c.environment
}

// CreateIntent opens a payment intent at the gateway. The idempotency key makes
// the call replay-safe: a retry with the same key returns the original intent.
func (c *Client) CreateIntent(ctx context.Context, input CreateIntentInput) (*Intent, error) {
	if input.AmountMinorUnits <= 0 {
		return nil, fmt.Errorf("intent amount must be positive, got %d", input.AmountMinorUnits)
	}
	if input.Currency == "" {
		return nil, errors.New("intent currency is required")
	}

	params := &stripe.PaymentIntentParams{
		Amount:   stripe.Int64(input.AmountMinorUnits),
		Currency: stripe.String(strings.ToLower(input.Currency)),
		AutomaticPaymentMethods: &stripe.PaymentIntentAutomaticPaymentMethodsParams{
			Enabled: stripe.Bool(true),
		},
	}
	if input.IdempotencyKey != "" {
		params.SetIdempotencyKey(input.IdempotencyKey)
	}
	for k, v := range input.Metadata {
		params.AddMetadata(k, v)
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.api.NewIntent(callCtx, params)
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return intentFromSDK(raw), nil
}

// RetrieveIntent fetches the current state of an intent by its gateway reference.
func (c *Client) RetrieveIntent(ctx context.Context, ref string) (*Intent, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, errors.New("intent reference is required")
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	raw, err := c.api.GetIntent(callCtx, ref, &stripe.PaymentIntentParams{})
	if err != nil {
		return nil, mapGatewayError(err)
	}
	return intentFromSDK(raw), nil
}

func intentFromSDK(raw *stripe.PaymentIntent) *Intent {
	if raw == nil {
		return nil
	}
	return &Intent{
		Ref:              raw.ID,
		ClientSecret:     raw.ClientSecret,
		Status:           IntentStatus(raw.Status),
		AmountMinorUnits: raw.Amount,
		Currency:         string(raw.Currency),
		Metadata:         raw.Metadata,
	}
}

func normalizeEnv(raw string) (string, error) {
	env := strings.TrimSpace(strings.ToLower(raw))
	if env == "" {
		env = testEnv
	}
	switch env {
	case testEnv, liveEnv:
		return env, nil
	default:
		return "", errInvalidGatewayEnv
	}
}

func validateAPIKey(env, key string) error {
	switch env {
	case testEnv:
		if strings.HasPrefix(key, "sk_test") || strings.HasPrefix(key, "rk_test") {
			return nil
		}
		return fmt.Errorf("gateway environment %q requires a test secret key (sk_test/rk_test)", testEnv)
	case liveEnv:
		if strings.HasPrefix(key, "sk_live") || strings.HasPrefix(key, "rk_live") {
			return nil
		}
		return fmt.Errorf("gateway environment %q requires a live secret key (sk_live/rk_live)", liveEnv)
	default:
		return errInvalidGatewayEnv
	}
}
