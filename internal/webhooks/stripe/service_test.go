package stripe

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	stripelib "github.com/stripe/stripe-go/v84"

	"github.com/mambaservices/storefront-backend/internal/fulfillment"
)

type fakeDispatcher struct {
	inputs []fulfillment.PaymentInput
	err    error
}

func (f *fakeDispatcher) Fulfill(ctx context.Context, input fulfillment.PaymentInput) error {
	f.inputs = append(f.inputs, input)
	return f.err
}

func newEvent(t *testing.T, eventType string, payload any) *stripelib.Event {
	t.Helper()
	raw, err := json.Marshal(payload)
	require.NoError(t, err)
	return &stripelib.Event{
		ID:   "evt_test",
		Type: stripelib.EventType(eventType),
		Data: &stripelib.EventData{Raw: raw},
	}
}

func TestHandleEventDispatchesCheckoutCompleted(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc, err := NewService(ServiceParams{Dispatcher: dispatcher})
	require.NoError(t, err)

	event := newEvent(t, EventTypeCheckoutCompleted, map[string]string{
		"id":             "cs_test_1",
		"customer_email": "buyer@example.com",
		"payment_link":   "28E4gA0l499Dg25eNygEg00",
	})
	require.NoError(t, svc.HandleEvent(context.Background(), event))

	require.Len(t, dispatcher.inputs, 1)
	assert.Equal(t, fulfillment.PaymentInput{
		SessionID:   "cs_test_1",
		Email:       "buyer@example.com",
		PaymentLink: "28E4gA0l499Dg25eNygEg00",
	}, dispatcher.inputs[0])
}

func TestHandleEventIgnoresOtherEventTypes(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc, err := NewService(ServiceParams{Dispatcher: dispatcher})
	require.NoError(t, err)

	event := newEvent(t, "payment_intent.succeeded", map[string]string{"id": "pi_1"})
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, dispatcher.inputs)
}

func TestHandleEventSettlesUnreadablePayload(t *testing.T) {
	dispatcher := &fakeDispatcher{}
	svc, err := NewService(ServiceParams{Dispatcher: dispatcher})
	require.NoError(t, err)

	event := &stripelib.Event{
		ID:   "evt_bad",
		Type: stripelib.EventType(EventTypeCheckoutCompleted),
		Data: &stripelib.EventData{Raw: json.RawMessage(`{"id": 42`)},
	}
	require.NoError(t, svc.HandleEvent(context.Background(), event))
	assert.Empty(t, dispatcher.inputs)
}

func TestHandleEventPropagatesFulfillmentFailure(t *testing.T) {
	dispatcher := &fakeDispatcher{err: assert.AnError}
	svc, err := NewService(ServiceParams{Dispatcher: dispatcher})
	require.NoError(t, err)

	event := newEvent(t, EventTypeCheckoutCompleted, map[string]string{
		"id":             "cs_test_2",
		"customer_email": "buyer@example.com",
		"payment_link":   "28E4gA0l499Dg25eNygEg00",
	})
	require.Error(t, svc.HandleEvent(context.Background(), event))
}
