package controllers

import (
	"net/http"

	"github.com/mambaservices/storefront-backend/api/responses"
	"github.com/mambaservices/storefront-backend/api/validators"
	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// AccessCodesClaim redeems one pool code. An exhausted pool surfaces as 404,
// not as a retryable failure.
func AccessCodesClaim(svc accesscodes.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "access codes service unavailable"))
			return
		}

		var body accesscodes.ClaimRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		claim, err := svc.Claim(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, claim)
	}
}
