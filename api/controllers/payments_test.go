package controllers

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/tripovia/tripovia-backend/api/middleware"
	"github.com/tripovia/tripovia-backend/internal/payments"
	"github.com/tripovia/tripovia-backend/pkg/enums"
	pkgerrors "github.com/tripovia/tripovia-backend/pkg/errors"
	"github.com/tripovia/tripovia-backend/pkg/logger"
)

type testPaymentsService struct {
	initiateFn func(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error)
	verifyFn   func(ctx context.Context, input payments.VerifyInput) error
}

func (s *testPaymentsService) InitiatePayment(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error) {
	if s.initiateFn != nil {
		return s.initiateFn(ctx, input)
	}
	return nil, nil
}

func (s *testPaymentsService) VerifyPayment(ctx context.Context, input payments.VerifyInput) error {
	if s.verifyFn != nil {
		return s.verifyFn(ctx, input)
	}
	return nil
}

func testLogger() *logger.Logger {
	return logger.New(logger.Options{ServiceName: "test", Output: io.Discard})
}

func addRouteParam(req *http.Request, key, value string) *http.Request {
	routeCtx := chi.NewRouteContext()
	routeCtx.URLParams.Add(key, value)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, routeCtx))
}

func TestInitiatePaymentSuccess(t *testing.T) {
	userID := uuid.New()
	holdID := uuid.New()
	called := false
	svc := &testPaymentsService{
		initiateFn: func(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error) {
			called = true
			if input.RequestorID != userID {
				t.Fatalf("unexpected requestor %s", input.RequestorID)
			}
			if input.HoldID != holdID {
				t.Fatalf("unexpected hold %s", input.HoldID)
			}
			if input.Kind != enums.BookingKindStay {
				t.Fatalf("unexpected kind %s", input.Kind)
			}
			return &payments.InitiateResult{IntentRef: "pi_123", ClientSecret: "pi_123_secret"}, nil
		},
	}

	body := bytes.NewBufferString(`{"kind":"stay"}`)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments", body)
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	InitiatePayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusCreated {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]string `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Data["intentRef"] != "pi_123" {
		t.Fatalf("unexpected intent ref %q", envelope.Data["intentRef"])
	}
	if envelope.Data["clientSecret"] != "pi_123_secret" {
		t.Fatalf("unexpected client secret %q", envelope.Data["clientSecret"])
	}
}

func TestInitiatePaymentMissingIdentity(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+uuid.NewString()+"/payments", bytes.NewBufferString(`{"kind":"stay"}`))
	req = addRouteParam(req, "holdId", uuid.NewString())

	resp := httptest.NewRecorder()
	InitiatePayment(&testPaymentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 got %d", resp.Code)
	}
}

func TestInitiatePaymentInvalidHoldID(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/not-a-uuid/payments", bytes.NewBufferString(`{"kind":"stay"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "holdId", "not-a-uuid")

	resp := httptest.NewRecorder()
	InitiatePayment(&testPaymentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInitiatePaymentUnknownKind(t *testing.T) {
	holdID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments", bytes.NewBufferString(`{"kind":"flight"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	InitiatePayment(&testPaymentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestInitiatePaymentGatewayRejectedRedacted(t *testing.T) {
	holdID := uuid.New()
	svc := &testPaymentsService{
		initiateFn: func(ctx context.Context, input payments.InitiateInput) (*payments.InitiateResult, error) {
			return nil, pkgerrors.New(pkgerrors.CodeGatewayRejected, "card_declined: insufficient_funds")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments", bytes.NewBufferString(`{"kind":"tour"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	InitiatePayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusPaymentRequired {
		t.Fatalf("expected 402 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Message == "card_declined: insufficient_funds" {
		t.Fatal("gateway failure detail leaked to the client")
	}
}

func TestVerifyPaymentSuccess(t *testing.T) {
	userID := uuid.New()
	holdID := uuid.New()
	called := false
	svc := &testPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) error {
			called = true
			if input.RequestorID != userID {
				t.Fatalf("unexpected requestor %s", input.RequestorID)
			}
			if input.IntentRef != "pi_123" {
				t.Fatalf("unexpected intent ref %q", input.IntentRef)
			}
			return nil
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments/verify", bytes.NewBufferString(`{"intentRef":"pi_123"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), userID.String()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	VerifyPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusOK {
		t.Fatalf("unexpected status %d", resp.Code)
	}
	if !called {
		t.Fatal("expected service called")
	}
	var envelope struct {
		Data map[string]bool `json:"data"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !envelope.Data["verified"] {
		t.Fatal("response missing verified flag")
	}
}

func TestVerifyPaymentMissingIntentRef(t *testing.T) {
	holdID := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments/verify", bytes.NewBufferString(`{}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	VerifyPayment(&testPaymentsService{}, testLogger())(resp, req)

	if resp.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 got %d", resp.Code)
	}
}

func TestVerifyPaymentMismatchSurfaced(t *testing.T) {
	holdID := uuid.New()
	svc := &testPaymentsService{
		verifyFn: func(ctx context.Context, input payments.VerifyInput) error {
			return pkgerrors.New(pkgerrors.CodeVerification, "charged amount does not match hold")
		},
	}

	req := httptest.NewRequest(http.MethodPost, "/api/v1/bookings/"+holdID.String()+"/payments/verify", bytes.NewBufferString(`{"intentRef":"pi_123"}`))
	req = req.WithContext(middleware.WithUserID(req.Context(), uuid.NewString()))
	req = addRouteParam(req, "holdId", holdID.String())

	resp := httptest.NewRecorder()
	VerifyPayment(svc, testLogger())(resp, req)

	if resp.Code != http.StatusConflict {
		t.Fatalf("expected 409 got %d", resp.Code)
	}
	var envelope struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal(resp.Body.Bytes(), &envelope); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if envelope.Error.Code != string(pkgerrors.CodeVerification) {
		t.Fatalf("unexpected error code %q", envelope.Error.Code)
	}
	if envelope.Error.Message != "charged amount does not match hold" {
		t.Fatalf("unexpected message %q", envelope.Error.Message)
	}
}
