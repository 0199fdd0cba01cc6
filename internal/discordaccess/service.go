package discordaccess

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/mambaservices/storefront-backend/pkg/db/models"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// adminGrantEmailDomain hosts the synthetic emails backing direct admin
// grants, which have no purchase email to key on.
const adminGrantEmailDomain = "mamba.local"

// RoleManager applies the platform role on the Discord side. Calls are
// best-effort: failures are logged and never fail the registry write.
type RoleManager interface {
	GrantRole(ctx context.Context, discordUserID string) error
	RevokeRole(ctx context.Context, discordUserID string) error
}

// Service defines the registry behavior needed by the controller, the
// fulfillment pipeline, and the bot command surface.
type Service interface {
	GrantForPayment(ctx context.Context, email, sessionID string, durationDays int) (*models.DiscordAccess, error)
	Grant(ctx context.Context, req GrantRequest) (*GrantResponse, error)
	GrantForDiscordUser(ctx context.Context, discordUserID string, durationDays int) (*GrantResponse, error)
	Link(ctx context.Context, email, discordUserID string) (*LinkResult, error)
	Check(ctx context.Context, email string) (*CheckResponse, error)
	Revoke(ctx context.Context, req RevokeRequest) error
}

type service struct {
	repo  Repository
	roles RoleManager
	logg  *logger.Logger
	now   func() time.Time
}

// ServiceParams bundles the dependencies required to build a registry service.
type ServiceParams struct {
	Repo   Repository
	Roles  RoleManager
	Logger *logger.Logger
	Now    func() time.Time
}

// NewService constructs a registry service with the provided dependencies.
// Roles may be nil when no bot is configured.
func NewService(params ServiceParams) (Service, error) {
	if params.Repo == nil {
		return nil, fmt.Errorf("discord access repository is required")
	}
	now := params.Now
	if now == nil {
		now = func() time.Time { return time.Now().UTC() }
	}
	return &service{
		repo:  params.Repo,
		roles: params.Roles,
		logg:  params.Logger,
		now:   now,
	}, nil
}

// GrantForPayment is the webhook-side grant. A session id that already owns
// an entitlement returns it unchanged, which makes event redelivery safe.
func (s *service) GrantForPayment(ctx context.Context, email, sessionID string, durationDays int) (*models.DiscordAccess, error) {
	email = normalizeEmail(email)

	if sessionID != "" {
		existing, err := s.repo.FindByStripeSessionID(ctx, sessionID)
		if err == nil {
			return existing, nil
		}
		if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
	}

	grant := Grant{
		Email:         email,
		DiscordUserID: models.DiscordUserPending,
		ExpiresAt:     s.now().AddDate(0, 0, durationDays),
	}
	if sessionID != "" {
		sid := sessionID
		grant.StripeSessionID = &sid
	}

	access, err := s.repo.Upsert(ctx, grant)
	if err != nil {
		return nil, err
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		s.logg.Info(s.logg.WithField(ctx, "expires_at", access.ExpiresAt), "discord_access.granted")
	}
	return access, nil
}

// Grant creates a fresh entitlement with the expiry restarted, independent of
// prior history. Used for manual and goodwill grants.
func (s *service) Grant(ctx context.Context, req GrantRequest) (*GrantResponse, error) {
	access, err := s.repo.Upsert(ctx, Grant{
		Email:         normalizeEmail(req.Email),
		DiscordUserID: req.DiscordUserID,
		ExpiresAt:     s.now().AddDate(0, 0, req.DurationDays),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant discord access")
	}

	s.grantRoleBestEffort(ctx, req.DiscordUserID)

	return &GrantResponse{AccessID: access.ID.String(), ExpiresAt: access.ExpiresAt}, nil
}

// GrantForDiscordUser backs the admin slash command, which knows only the
// Discord account. The entitlement is keyed on a synthetic local email.
func (s *service) GrantForDiscordUser(ctx context.Context, discordUserID string, durationDays int) (*GrantResponse, error) {
	email := fmt.Sprintf("admin-%s@%s", discordUserID, adminGrantEmailDomain)
	return s.Grant(ctx, GrantRequest{
		Email:         email,
		DiscordUserID: discordUserID,
		DurationDays:  durationDays,
	})
}

func (s *service) Link(ctx context.Context, email, discordUserID string) (*LinkResult, error) {
	email = normalizeEmail(email)

	existing, err := s.repo.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no access for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find discord access")
	}

	if !existing.HasAccess(s.now()) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "access expired").
			WithDetails(map[string]any{"expiresAt": existing.ExpiresAt})
	}

	access, err := s.repo.Bind(ctx, email, discordUserID)
	if err != nil {
		if errors.Is(err, ErrAlreadyBound) {
			return nil, pkgerrors.New(pkgerrors.CodeConflict, "email already linked to a different discord account")
		}
		if errors.Is(err, ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "no access for this email")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "bind discord access")
	}

	s.grantRoleBestEffort(ctx, discordUserID)

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		s.logg.Info(s.logg.WithField(ctx, "discord_user_id", discordUserID), "discord_access.linked")
	}
	return &LinkResult{DiscordUserID: access.DiscordUserID, ExpiresAt: access.ExpiresAt}, nil
}

func (s *service) Check(ctx context.Context, email string) (*CheckResponse, error) {
	access, err := s.repo.FindByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return &CheckResponse{HasAccess: false}, nil
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "find discord access")
	}

	now := s.now()
	resp := &CheckResponse{
		HasAccess: access.HasAccess(now),
		ExpiresAt: &access.ExpiresAt,
	}
	if resp.HasAccess {
		resp.DaysRemaining = int(access.ExpiresAt.Sub(now).Hours() / 24)
	}
	return resp, nil
}

func (s *service) Revoke(ctx context.Context, req RevokeRequest) error {
	email := normalizeEmail(req.Email)

	if err := s.repo.DeleteByEmail(ctx, email); err != nil {
		if errors.Is(err, ErrNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "no access for this email")
		}
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "revoke discord access")
	}

	if s.roles != nil {
		if err := s.roles.RevokeRole(ctx, req.DiscordUserID); err != nil && s.logg != nil {
			s.logg.Error(s.logg.WithEmail(ctx, email), "discord_access.role_revoke_failed", err)
		}
	}

	if s.logg != nil {
		s.logg.Info(s.logg.WithEmail(ctx, email), "discord_access.revoked")
	}
	return nil
}

func (s *service) grantRoleBestEffort(ctx context.Context, discordUserID string) {
	if s.roles == nil || discordUserID == "" || discordUserID == models.DiscordUserPending {
		return
	}
	if err := s.roles.GrantRole(ctx, discordUserID); err != nil && s.logg != nil {
		ctx = s.logg.WithField(ctx, "discord_user_id", discordUserID)
		s.logg.Error(ctx, "discord_access.role_grant_failed", err)
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
