package webhooks

import (
	"fmt"
	"net/http"
	"time"

	"github.com/mambaservices/storefront-backend/api/responses"
	"github.com/mambaservices/storefront-backend/api/validators"
	"github.com/mambaservices/storefront-backend/internal/fulfillment"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// StripeTestTriggerRequest simulates a completed checkout without a signed
// event. Defaults point at the test-mode offer.
type StripeTestTriggerRequest struct {
	Email  string `json:"email" validate:"omitempty,email"`
	LinkID string `json:"linkId" validate:"omitempty"`
}

// StripeTestTrigger is mounted in dev environments only. It feeds the
// dispatcher directly, bypassing signature verification and the idempotency
// guard.
func StripeTestTrigger(dispatcher fulfillment.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if dispatcher == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "fulfillment dispatcher unavailable"))
			return
		}

		var body StripeTestTriggerRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		if body.Email == "" {
			body.Email = "test@example.com"
		}
		if body.LinkID == "" {
			body.LinkID = "6oU28r2O8f6v3eI0C9cEw00"
		}

		input := fulfillment.PaymentInput{
			SessionID:   fmt.Sprintf("cs_test_%d", time.Now().UnixMilli()),
			Email:       body.Email,
			PaymentLink: body.LinkID,
		}
		if err := dispatcher.Fulfill(r.Context(), input); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"sessionId": input.SessionID})
	}
}
