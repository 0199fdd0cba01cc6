package fulfillment

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mambaservices/storefront-backend/internal/accesscodes"
	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/internal/notifications"
	"github.com/mambaservices/storefront-backend/internal/orders"
	"github.com/mambaservices/storefront-backend/pkg/enums"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
	"github.com/mambaservices/storefront-backend/pkg/metrics"
)

const defaultReceiptsDays = 31

// PaymentInput carries the fields of a completed checkout session that the
// dispatcher needs.
type PaymentInput struct {
	SessionID   string
	Email       string
	PaymentLink string
}

// Service turns a completed payment into exactly one fulfillment action.
//
// A nil return means the event is settled and must not be retried, which
// includes application-level skips (missing email, unmapped link, exhausted
// pool). A non-nil return means the entitlement write failed and the event
// should be reprocessed.
type Service interface {
	Fulfill(ctx context.Context, input PaymentInput) error
}

type service struct {
	orders        orders.Service
	codes         accesscodes.Service
	discordAccess discordaccess.Service
	sender        notifications.Sender
	metrics       *metrics.FulfillmentMetrics
	logg          *logger.Logger
	generatorLink string
	receiptsDays  int
}

// ServiceParams bundles the dependencies required to build a dispatcher.
type ServiceParams struct {
	Orders        orders.Service
	AccessCodes   accesscodes.Service
	DiscordAccess discordaccess.Service
	Sender        notifications.Sender
	Metrics       *metrics.FulfillmentMetrics
	Logger        *logger.Logger
	// GeneratorLink is included in access code emails.
	GeneratorLink string
	// DefaultReceiptsDays overrides the access duration for receipts offers
	// whose policy does not carry one. Zero means 31.
	DefaultReceiptsDays int
}

// NewService constructs a fulfillment dispatcher with the provided dependencies.
func NewService(params ServiceParams) (Service, error) {
	if params.Orders == nil {
		return nil, fmt.Errorf("orders service is required")
	}
	if params.AccessCodes == nil {
		return nil, fmt.Errorf("access codes service is required")
	}
	if params.DiscordAccess == nil {
		return nil, fmt.Errorf("discord access service is required")
	}
	if params.Sender == nil {
		return nil, fmt.Errorf("notification sender is required")
	}
	if params.GeneratorLink == "" {
		return nil, fmt.Errorf("generator link is required")
	}
	receiptsDays := params.DefaultReceiptsDays
	if receiptsDays <= 0 {
		receiptsDays = defaultReceiptsDays
	}
	return &service{
		orders:        params.Orders,
		codes:         params.AccessCodes,
		discordAccess: params.DiscordAccess,
		sender:        params.Sender,
		metrics:       params.Metrics,
		logg:          params.Logger,
		generatorLink: params.GeneratorLink,
		receiptsDays:  receiptsDays,
	}, nil
}

func (s *service) Fulfill(ctx context.Context, input PaymentInput) error {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	if s.logg != nil {
		ctx = s.logg.WithStripeSession(ctx, input.SessionID)
	}

	if email == "" {
		s.skip(ctx, "unknown", "missing_email", map[string]any{"payment_link": input.PaymentLink})
		return nil
	}
	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
	}

	policy, ok := LookupPolicy(input.PaymentLink)
	if !ok {
		s.skip(ctx, "unknown", "unmapped_link", map[string]any{"payment_link_id": LinkID(input.PaymentLink)})
		return nil
	}

	if err := s.orders.MarkPaidBySession(ctx, input.SessionID); err != nil {
		s.outcome(policy.Family.String(), "failed")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "mark order paid")
	}

	switch policy.Family {
	case enums.ProductFamilyReceipts:
		return s.fulfillReceipts(ctx, email, input.SessionID, policy)
	case enums.ProductFamilyObywatel:
		if policy.Tier == enums.ProductTierPremium {
			return s.fulfillTicket(ctx, email)
		}
		return s.fulfillAccessCode(ctx, email, input.SessionID)
	}

	s.skip(ctx, policy.Family.String(), "unmapped_link", nil)
	return nil
}

func (s *service) fulfillReceipts(ctx context.Context, email, sessionID string, policy Policy) error {
	days := policy.DurationDays
	if days <= 0 {
		days = s.receiptsDays
	}

	access, err := s.discordAccess.GrantForPayment(ctx, email, sessionID, days)
	if err != nil {
		s.outcome("receipts", "failed")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "grant discord access")
	}

	if err := s.sender.SendReceiptsInstructions(ctx, email, access.ExpiresAt); err != nil {
		s.notifyFailed(ctx, "receipts_instructions", err)
	}

	s.outcome("receipts", "fulfilled")
	if s.logg != nil {
		s.logg.Info(s.logg.WithField(ctx, "expires_at", access.ExpiresAt), "fulfillment.receipts_granted")
	}
	return nil
}

func (s *service) fulfillTicket(ctx context.Context, email string) error {
	if err := s.sender.SendTicketInstructions(ctx, email); err != nil {
		s.notifyFailed(ctx, "ticket_instructions", err)
	}

	s.outcome("obywatel", "ticket")
	if s.logg != nil {
		s.logg.Info(ctx, "fulfillment.ticket_requested")
	}
	return nil
}

func (s *service) fulfillAccessCode(ctx context.Context, email, sessionID string) error {
	code, err := s.codes.ClaimForSession(ctx, enums.ProductFamilyObywatel, email, sessionID, nil)
	if err != nil {
		if errors.Is(err, accesscodes.ErrPoolExhausted) {
			// Operator intervention required; retrying the event cannot help.
			s.outcome("obywatel", "pool_exhausted")
			if s.logg != nil {
				s.logg.Error(ctx, "fulfillment.pool_exhausted", err)
			}
			return nil
		}
		s.outcome("obywatel", "failed")
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "claim access code")
	}

	if err := s.sender.SendAccessCode(ctx, email, code.Code, s.generatorLink); err != nil {
		s.notifyFailed(ctx, "access_code", err)
	}

	s.outcome("obywatel", "fulfilled")
	if s.logg != nil {
		s.logg.Info(ctx, "fulfillment.code_delivered")
	}
	return nil
}

func (s *service) skip(ctx context.Context, family, reason string, fields map[string]any) {
	s.outcome(family, "skipped_"+reason)
	if s.logg == nil {
		return
	}
	if fields != nil {
		ctx = s.logg.WithFields(ctx, fields)
	}
	s.logg.Warn(s.logg.WithField(ctx, "reason", reason), "fulfillment.skipped")
}

func (s *service) notifyFailed(ctx context.Context, template string, err error) {
	if s.logg != nil {
		s.logg.Error(s.logg.WithField(ctx, "template", template), "fulfillment.email_failed", err)
	}
}

func (s *service) outcome(family, result string) {
	if s.metrics != nil {
		s.metrics.IncOutcome(family, result)
	}
}
