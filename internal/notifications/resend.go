package notifications

import (
	"context"
	"time"

	"github.com/resend/resend-go/v2"

	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// ResendSender delivers mail through the Resend API.
type ResendSender struct {
	client *resend.Client
	from   string
	logg   *logger.Logger
}

type ResendSenderParams struct {
	APIKey string
	From   string
	Logger *logger.Logger
}

func NewResendSender(params ResendSenderParams) (*ResendSender, error) {
	if params.APIKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "resend sender requires an api key")
	}
	if params.From == "" {
		return nil, pkgerrors.New(pkgerrors.CodeInternal, "resend sender requires a from address")
	}
	return &ResendSender{
		client: resend.NewClient(params.APIKey),
		from:   params.From,
		logg:   params.Logger,
	}, nil
}

func (s *ResendSender) SendAccessCode(ctx context.Context, email, code, generatorLink string) error {
	html, err := renderAccessCode(code, generatorLink)
	if err != nil {
		return err
	}
	return s.send(ctx, email, accessCodeSubject, html, "access_code")
}

func (s *ResendSender) SendReceiptsInstructions(ctx context.Context, email string, expiresAt time.Time) error {
	html, err := renderReceipts(email, expiresAt)
	if err != nil {
		return err
	}
	return s.send(ctx, email, receiptsSubject, html, "receipts_instructions")
}

func (s *ResendSender) SendTicketInstructions(ctx context.Context, email string) error {
	html, err := renderTicket()
	if err != nil {
		return err
	}
	return s.send(ctx, email, ticketSubject, html, "ticket_instructions")
}

func (s *ResendSender) send(ctx context.Context, email, subject, html, kind string) error {
	sent, err := s.client.Emails.SendWithContext(ctx, &resend.SendEmailRequest{
		From:    s.from,
		To:      []string{email},
		Subject: subject,
		Html:    html,
	})
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "sending email via resend")
	}

	if s.logg != nil {
		ctx = s.logg.WithEmail(ctx, email)
		ctx = s.logg.WithFields(ctx, map[string]any{
			"template":  kind,
			"resend_id": sent.Id,
		})
		s.logg.Info(ctx, "email.sent")
	}
	return nil
}
