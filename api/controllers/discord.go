package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mambaservices/storefront-backend/api/responses"
	"github.com/mambaservices/storefront-backend/api/validators"
	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// DiscordGrantAccess creates or refreshes an entitlement outside the payment
// flow (support grants, modal submissions).
func DiscordGrantAccess(svc discordaccess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discord access service unavailable"))
			return
		}

		var body discordaccess.GrantRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		grant, err := svc.Grant(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, grant)
	}
}

// DiscordCheckAccess reports the live entitlement state for an email. An
// unknown email is a normal "no access" answer, not an error.
func DiscordCheckAccess(svc discordaccess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discord access service unavailable"))
			return
		}

		email := validators.NormalizeEmail(chi.URLParam(r, "email"))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email is required"))
			return
		}

		check, err := svc.Check(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, check)
	}
}

func DiscordRevokeAccess(svc discordaccess.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discord access service unavailable"))
			return
		}

		var body discordaccess.RevokeRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Revoke(r.Context(), body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]bool{"success": true})
	}
}
