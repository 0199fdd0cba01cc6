package controllers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mambaservices/storefront-backend/api/responses"
	"github.com/mambaservices/storefront-backend/api/validators"
	"github.com/mambaservices/storefront-backend/internal/forms"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

func ObywatelFormsSubmit(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "forms service unavailable"))
			return
		}

		var body forms.SubmitRequest
		if err := validators.DecodeJSONBody(r, &body); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		form, err := svc.Submit(r.Context(), body)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, form)
	}
}

func ObywatelFormsListByEmail(svc forms.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "forms service unavailable"))
			return
		}

		email := validators.NormalizeEmail(chi.URLParam(r, "email"))
		if email == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "email is required"))
			return
		}

		list, err := svc.ListByEmail(r.Context(), email)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, list)
	}
}
