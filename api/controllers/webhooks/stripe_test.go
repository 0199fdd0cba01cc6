package webhooks

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stripe/stripe-go/v84"

	stripewebhook "github.com/mambaservices/storefront-backend/internal/webhooks/stripe"
)

const testSigningSecret = "whsec_test"

func TestStripeWebhookSuccessAndDuplicateDelivery(t *testing.T) {
	payload, header := buildSignedEvent(t, "buyer@example.com")
	service := &fakeStripeWebhookService{}
	guard := newTestGuard(t)
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, guard, nil)

	rec := postWebhook(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, service.calls)

	rec = postWebhook(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, service.calls, "duplicate delivery must not be processed again")
}

func TestStripeWebhookMissingSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t, "buyer@example.com")
	service := &fakeStripeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, newTestGuard(t), nil)

	rec := postWebhook(handler, payload, "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, service.calls)
}

func TestStripeWebhookInvalidSignature(t *testing.T) {
	payload, _ := buildSignedEvent(t, "buyer@example.com")
	service := &fakeStripeWebhookService{}
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, newTestGuard(t), nil)

	rec := postWebhook(handler, payload, "t=1,v1=deadbeef")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Zero(t, service.calls)
}

func TestStripeWebhookFulfillmentFailureStillReturns200AndUnmarks(t *testing.T) {
	payload, header := buildSignedEvent(t, "buyer@example.com")
	service := &fakeStripeWebhookService{err: fmt.Errorf("database down")}
	guard := newTestGuard(t)
	handler := StripeWebhook(service, &fakeSigningClient{secret: testSigningSecret}, guard, nil)

	rec := postWebhook(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 1, service.calls)

	// The mark was removed, so the processor's redelivery is processed again.
	service.err = nil
	rec = postWebhook(handler, payload, header)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, 2, service.calls)
}

func postWebhook(handler http.HandlerFunc, payload []byte, header string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/webhooks/payments", bytes.NewReader(payload))
	if header != "" {
		req.Header.Set("Stripe-Signature", header)
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func buildSignedEvent(t *testing.T, email string) ([]byte, string) {
	t.Helper()

	session := map[string]string{
		"id":             "cs_" + uuid.NewString(),
		"customer_email": email,
		"payment_link":   "28E4gA0l499Dg25eNygEg00",
	}
	rawSession, err := json.Marshal(session)
	require.NoError(t, err)

	event := &stripe.Event{
		ID:         "evt_" + uuid.NewString(),
		Type:       stripe.EventType(stripewebhook.EventTypeCheckoutCompleted),
		Object:     "event",
		APIVersion: stripe.APIVersion,
		Data:       &stripe.EventData{Raw: rawSession},
	}
	payload, err := json.Marshal(event)
	require.NoError(t, err)

	return payload, buildStripeSignatureHeader(payload, testSigningSecret, time.Now().Unix())
}

func buildStripeSignatureHeader(payload []byte, secret string, ts int64) string {
	signedPayload := fmt.Sprintf("%d.%s", ts, payload)
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(signedPayload))
	return fmt.Sprintf("t=%d,v1=%s", ts, hex.EncodeToString(mac.Sum(nil)))
}

func newTestGuard(t *testing.T) *stripewebhook.Guard {
	t.Helper()
	guard, err := stripewebhook.NewGuard(newInMemoryStore())
	require.NoError(t, err)
	return guard
}

type fakeStripeWebhookService struct {
	calls int
	err   error
}

func (f *fakeStripeWebhookService) HandleEvent(ctx context.Context, event *stripe.Event) error {
	f.calls++
	return f.err
}

type fakeSigningClient struct {
	secret string
}

func (c *fakeSigningClient) SigningSecret() string {
	return c.secret
}

type inMemoryStore struct {
	mu   sync.Mutex
	data map[string]string
}

func newInMemoryStore() *inMemoryStore {
	return &inMemoryStore{data: make(map[string]string)}
}

func (s *inMemoryStore) SetNX(ctx context.Context, key string, value any, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.data[key]; exists {
		return false, nil
	}
	s.data[key] = fmt.Sprintf("%v", value)
	return true, nil
}

func (s *inMemoryStore) IdempotencyKey(scope, id string) string {
	return fmt.Sprintf("mamba:idempotency:%s:%s", scope, id)
}

func (s *inMemoryStore) Del(ctx context.Context, keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, key := range keys {
		delete(s.data, key)
	}
	return nil
}
