package notifications

import (
	"context"
	"time"

	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// Sender delivers transactional mail for the three fulfillment outcomes.
// All sends are best-effort: callers log failures and keep going, because the
// persisted entitlement is the source of truth, not the email.
type Sender interface {
	SendAccessCode(ctx context.Context, email, code, generatorLink string) error
	SendReceiptsInstructions(ctx context.Context, email string, expiresAt time.Time) error
	SendTicketInstructions(ctx context.Context, email string) error
}

// NoopSender is used when no email provider is configured. It logs what would
// have been sent so dev environments stay observable.
type NoopSender struct {
	logg *logger.Logger
}

func NewNoopSender(logg *logger.Logger) *NoopSender {
	return &NoopSender{logg: logg}
}

func (s *NoopSender) SendAccessCode(ctx context.Context, email, code, generatorLink string) error {
	s.log(ctx, email, "access_code")
	return nil
}

func (s *NoopSender) SendReceiptsInstructions(ctx context.Context, email string, expiresAt time.Time) error {
	s.log(ctx, email, "receipts_instructions")
	return nil
}

func (s *NoopSender) SendTicketInstructions(ctx context.Context, email string) error {
	s.log(ctx, email, "ticket_instructions")
	return nil
}

func (s *NoopSender) log(ctx context.Context, email, kind string) {
	if s.logg == nil {
		return
	}
	ctx = s.logg.WithEmail(ctx, email)
	s.logg.Info(s.logg.WithField(ctx, "template", kind), "email.skipped_no_provider")
}
