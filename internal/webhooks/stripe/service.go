package stripe

import (
	"context"
	"encoding/json"
	"fmt"

	stripelib "github.com/stripe/stripe-go/v84"

	"github.com/mambaservices/storefront-backend/internal/fulfillment"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/metrics"
)

// EventTypeCheckoutCompleted is the only event type that triggers fulfillment.
const EventTypeCheckoutCompleted = "checkout.session.completed"

// checkoutSession is the slice of the checkout.session.completed payload the
// dispatcher consumes. payment_link may arrive as a bare id or a URL.
type checkoutSession struct {
	ID            string `json:"id"`
	CustomerEmail string `json:"customer_email"`
	PaymentLink   string `json:"payment_link"`
}

// Service translates verified Stripe events into fulfillment calls.
//
// Unknown event types are counted and settled with a nil return; only a
// failed entitlement write bubbles up, so the transport layer can unmark the
// event for redelivery.
type Service interface {
	HandleEvent(ctx context.Context, event *stripelib.Event) error
}

type service struct {
	dispatcher fulfillment.Service
	metrics    *metrics.FulfillmentMetrics
	logg       *logger.Logger
}

// ServiceParams bundles the dependencies required to build an event handler.
type ServiceParams struct {
	Dispatcher fulfillment.Service
	Metrics    *metrics.FulfillmentMetrics
	Logger     *logger.Logger
}

// NewService constructs a webhook event handler with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Dispatcher == nil {
		return nil, fmt.Errorf("fulfillment dispatcher is required")
	}
	return &service{
		dispatcher: params.Dispatcher,
		metrics:    params.Metrics,
		logg:       params.Logger,
	}, nil
}

func (s *service) HandleEvent(ctx context.Context, event *stripelib.Event) error {
	eventType := string(event.Type)
	if s.metrics != nil {
		s.metrics.IncEvent(eventType)
	}
	if s.logg != nil {
		ctx = s.logg.WithField(ctx, "event_type", eventType)
		ctx = s.logg.WithField(ctx, "event_id", event.ID)
	}

	if eventType != EventTypeCheckoutCompleted {
		if s.logg != nil {
			s.logg.Info(ctx, "webhook.event_ignored")
		}
		return nil
	}

	var session checkoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		// A malformed payload cannot become readable on retry.
		if s.logg != nil {
			s.logg.Error(ctx, "webhook.payload_unreadable", err)
		}
		return nil
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithStripeSession(ctx, session.ID), "webhook.checkout_completed")
	}

	if err := s.dispatcher.Fulfill(ctx, fulfillment.PaymentInput{
		SessionID:   session.ID,
		Email:       session.CustomerEmail,
		PaymentLink: session.PaymentLink,
	}); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "fulfill checkout session")
	}
	return nil
}
