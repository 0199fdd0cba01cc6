package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mambaservices/storefront-backend/internal/users"
	"github.com/mambaservices/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/security"
)

const invalidCredentialsMessage = "invalid credentials"

// Service defines the behavior needed by the auth controller.
type Service interface {
	Signup(ctx context.Context, req SignupRequest) (*AccountResponse, error)
	Login(ctx context.Context, req LoginRequest) (*AccountResponse, error)
	ChangePassword(ctx context.Context, req ChangePasswordRequest) error
	DeleteAccount(ctx context.Context, req DeleteAccountRequest) error
}

type service struct {
	users users.Repository
	logg  *logger.Logger
}

// ServiceParams bundles the dependencies required to build an auth service.
type ServiceParams struct {
	UserRepo users.Repository
	Logger   *logger.Logger
}

// NewService constructs an account service with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.UserRepo == nil {
		return nil, fmt.Errorf("user repository is required")
	}
	return &service{users: params.UserRepo, logg: params.Logger}, nil
}

func (s *service) Signup(ctx context.Context, req SignupRequest) (*AccountResponse, error) {
	email := normalizeEmail(req.Email)
	if len(req.Password) < security.MinPasswordLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "password too short")
	}

	hash, err := security.HashPassword(req.Password)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}

	user, err := s.users.Create(ctx, email, hash)
	if err != nil {
		if errors.Is(err, users.ErrEmailTaken) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already registered")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "create user")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithEmail(ctx, email), "account.created")
	}
	return toAccountResponse(user), nil
}

func (s *service) Login(ctx context.Context, req LoginRequest) (*AccountResponse, error) {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return nil, err
	}
	return toAccountResponse(user), nil
}

func (s *service) ChangePassword(ctx context.Context, req ChangePasswordRequest) error {
	if len(req.NewPassword) < security.MinPasswordLength {
		return pkgerrors.New(pkgerrors.CodeValidation, "new password too short")
	}

	user, err := s.authenticate(ctx, req.Email, req.OldPassword)
	if err != nil {
		return err
	}

	hash, err := security.HashPassword(req.NewPassword)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "hash password")
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "update password")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithEmail(ctx, user.Email), "account.password_changed")
	}
	return nil
}

func (s *service) DeleteAccount(ctx context.Context, req DeleteAccountRequest) error {
	user, err := s.authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return err
	}

	if err := s.users.Delete(ctx, user.ID); err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "account not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "delete user")
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithEmail(ctx, user.Email), "account.deleted")
	}
	return nil
}

// authenticate resolves an account by email and verifies the password.
// Unknown email and wrong password produce the same unauthorized error so the
// response shape never reveals whether an account exists.
func (s *service) authenticate(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, users.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "lookup user")
	}

	ok, err := security.VerifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "verify password")
	}
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, invalidCredentialsMessage)
	}
	return user, nil
}

func toAccountResponse(user *models.User) *AccountResponse {
	return &AccountResponse{ID: user.ID.String(), Email: user.Email}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
