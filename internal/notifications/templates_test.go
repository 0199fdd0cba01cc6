package notifications

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestRenderAccessCode(t *testing.T) {
	html, err := renderAccessCode("MAMBA-1234", "https://mambagen.up.railway.app/gen.html")
	require.NoError(t, err)
	require.Contains(t, html, "MAMBA-1234")
	require.Contains(t, html, "https://mambagen.up.railway.app/gen.html")
	require.Contains(t, html, "jednorazowy")
}

func TestRenderAccessCodeEscapesCode(t *testing.T) {
	html, err := renderAccessCode(`<script>alert(1)</script>`, "https://example.com")
	require.NoError(t, err)
	require.NotContains(t, html, "<script>")
}

func TestRenderReceiptsIncludesLinkCommandAndExpiry(t *testing.T) {
	expiresAt := time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC)
	html, err := renderReceipts("buyer@example.com", expiresAt)
	require.NoError(t, err)
	require.Contains(t, html, "/polacz buyer@example.com")
	require.Contains(t, html, "15.03.2026")
}

func TestRenderTicket(t *testing.T) {
	html, err := renderTicket()
	require.NoError(t, err)
	require.Contains(t, html, "Obywatel Premium")
	require.Contains(t, html, "24 godzin")
}

func TestNewResendSenderRequiresConfig(t *testing.T) {
	_, err := NewResendSender(ResendSenderParams{From: "a@b.c"})
	require.Error(t, err)

	_, err = NewResendSender(ResendSenderParams{APIKey: "re_test"})
	require.Error(t, err)

	sender, err := NewResendSender(ResendSenderParams{APIKey: "re_test", From: "onboarding@resend.dev"})
	require.NoError(t, err)
	require.NotNil(t, sender)
}

func TestNoopSenderNeverFails(t *testing.T) {
	sender := NewNoopSender(nil)
	ctx := context.Background()

	require.NoError(t, sender.SendAccessCode(ctx, "a@b.c", "CODE", "https://example.com"))
	require.NoError(t, sender.SendReceiptsInstructions(ctx, "a@b.c", time.Now()))
	require.NoError(t, sender.SendTicketInstructions(ctx, "a@b.c"))
}
