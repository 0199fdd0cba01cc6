package forms

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// SubmitRequest stores a filled-in generator form. FormData is opaque to the
// backend and stored verbatim.
type SubmitRequest struct {
	Email    string          `json:"email" validate:"required,email"`
	OrderID  string          `json:"orderId" validate:"required"`
	FormData json.RawMessage `json:"formData" validate:"required"`
}

// FormResponse is the public shape of a stored form.
type FormResponse struct {
	ID          string          `json:"id"`
	Email       string          `json:"email"`
	OrderID     string          `json:"orderId"`
	FormData    json.RawMessage `json:"formData"`
	AccessLink  *string         `json:"accessLink,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
	SubmittedAt *time.Time      `json:"submittedAt,omitempty"`
}

// Service defines the form behavior needed by the controller.
type Service interface {
	Submit(ctx context.Context, req SubmitRequest) (*FormResponse, error)
	ListByEmail(ctx context.Context, email string) ([]FormResponse, error)
}

type service struct {
	repo       Repository
	logg       *logger.Logger
	accessLink string
	now        func() time.Time
}

// ServiceParams bundles the dependencies required to build a forms service.
type ServiceParams struct {
	Repo       Repository
	Logger     *logger.Logger
	AccessLink string
	Now        func() time.Time
}

// NewService constructs a forms service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("forms repository is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:       params.Repo,
		logg:       params.Logger,
		accessLink: params.AccessLink,
		now:        now,
	}, nil
}

func (s *service) Submit(ctx context.Context, req SubmitRequest) (*FormResponse, error) {
	form := &models.ObywatelForm{
		Email:    strings.ToLower(strings.TrimSpace(req.Email)),
		OrderID:  req.OrderID,
		FormData: req.FormData,
	}
	if s.accessLink != "" {
		link := s.accessLink
		form.AccessLink = &link
	}

	created, err := s.repo.Create(ctx, form)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create form")
	}

	if err := s.repo.MarkSubmitted(ctx, created.ID, s.now()); err != nil && !errors.Is(err, ErrNotFound) {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark form submitted")
	}
	submitted, err := s.repo.FindByID(ctx, created.ID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "reload form")
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, submitted.Email)
		s.logg.Info(s.logg.WithOrderID(ctx, submitted.OrderID), "form.submitted")
	}
	resp := toFormResponse(submitted)
	return &resp, nil
}

func (s *service) ListByEmail(ctx context.Context, email string) ([]FormResponse, error) {
	forms, err := s.repo.ListByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "list forms")
	}
	out := make([]FormResponse, 0, len(forms))
	for i := range forms {
		out = append(out, toFormResponse(&forms[i]))
	}
	return out, nil
}

func toFormResponse(form *models.ObywatelForm) FormResponse {
	return FormResponse{
		ID:          form.ID.String(),
		Email:       form.Email,
		OrderID:     form.OrderID,
		FormData:    form.FormData,
		AccessLink:  form.AccessLink,
		CreatedAt:   form.CreatedAt,
		SubmittedAt: form.SubmittedAt,
	}
}
