package discordbot

import (
	"context"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
)

func TestLinkReplySuccess(t *testing.T) {
	result := &discordaccess.LinkResult{
		DiscordUserID: "D123",
		ExpiresAt:     time.Date(2026, 4, 2, 12, 0, 0, 0, time.UTC),
	}
	reply := linkReply("buyer@example.com", result, nil)
	assert.Equal(t, "✅ Połączono! Twój dostęp wygasa: **02.04.2026**", reply)
}

func TestLinkReplyErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			"unknown email",
			pkgerrors.New(pkgerrors.CodeNotFound, "no access for this email"),
			"❌ Email `buyer@example.com` nie ma dostępu do MambaReceipts!",
		},
		{
			"bound elsewhere",
			pkgerrors.New(pkgerrors.CodeConflict, "email already linked to a different discord account"),
			"❌ Ten email został już połączony z innym kontem Discord! Każdy zakup można używać tylko raz.",
		},
		{
			"expired with details",
			pkgerrors.New(pkgerrors.CodeForbidden, "access expired").
				WithDetails(map[string]any{"expiresAt": time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)}),
			"⏰ Twój dostęp wygasł 15.01.2026",
		},
		{
			"untyped error",
			assert.AnError,
			"❌ Błąd podczas łączenia. Spróbuj ponownie!",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, linkReply("buyer@example.com", nil, tt.err))
		})
	}
}

func TestAdminGrantReplyAndDM(t *testing.T) {
	expiresAt := time.Date(2026, 9, 28, 10, 0, 0, 0, time.UTC)
	reply := adminGrantReply("mamba_fan", &discordaccess.GrantResponse{AccessID: "x", ExpiresAt: expiresAt}, nil)
	assert.Contains(t, reply, "mamba_fan")
	assert.Contains(t, reply, "28.09.2026")

	dm := adminGrantDM(31, expiresAt)
	assert.Contains(t, dm, "31 dni")
	assert.Contains(t, dm, "28.09.2026")

	assert.Equal(t, "❌ Błąd podczas przydzielania dostępu!", adminGrantReply("mamba_fan", nil, assert.AnError))
}

func TestAdminRevokeReply(t *testing.T) {
	assert.Equal(t,
		"✅ Access revoked for mamba_fan (buyer@example.com)",
		adminRevokeReply("mamba_fan", "buyer@example.com", nil))
	assert.Equal(t,
		"❌ No access record found for buyer@example.com",
		adminRevokeReply("mamba_fan", "buyer@example.com", pkgerrors.New(pkgerrors.CodeNotFound, "no access record for this email")))
	assert.Equal(t,
		"❌ Error revoking access",
		adminRevokeReply("mamba_fan", "buyer@example.com", assert.AnError))
}

func TestLinkReplyEndToEndAgainstService(t *testing.T) {
	repo := discordaccess.NewMemoryRepository()
	svc, err := discordaccess.NewService(discordaccess.ServiceParams{Repo: repo})
	require.NoError(t, err)
	ctx := context.Background()

	_, err = svc.GrantForPayment(ctx, "buyer@example.com", "cs_bot_1", 31)
	require.NoError(t, err)

	result, err := svc.Link(ctx, "buyer@example.com", "D123")
	require.NoError(t, err)
	assert.Contains(t, linkReply("buyer@example.com", result, nil), "✅ Połączono!")

	_, err = svc.Link(ctx, "buyer@example.com", "D456")
	require.Error(t, err)
	assert.Contains(t, linkReply("buyer@example.com", nil, err), "połączony z innym kontem")
}

func TestGrantModalPrefillsCommandOptions(t *testing.T) {
	modal := grantModal("A1", "buyer@example.com", "ord_42")

	assert.Equal(t, grantModalPrefix+"A1", modal.CustomID)
	assert.Equal(t, "MambaReceipts Access Request", modal.Title)
	require.Len(t, modal.Components, 3)

	assert.Equal(t, "buyer@example.com", textInputValue(
		discordgo.ModalSubmitInteractionData{Components: modal.Components}, grantModalEmailInput))
	assert.Equal(t, "ord_42", textInputValue(
		discordgo.ModalSubmitInteractionData{Components: modal.Components}, grantModalOrderInput))
	assert.Empty(t, textInputValue(
		discordgo.ModalSubmitInteractionData{Components: modal.Components}, grantModalNickInput))
}

func TestGrantModalReply(t *testing.T) {
	expiresAt := time.Date(2026, 9, 28, 10, 0, 0, 0, time.UTC)
	reply := grantModalReply(&discordaccess.GrantResponse{AccessID: "x", ExpiresAt: expiresAt}, nil)
	assert.Equal(t, "✅ Access granted! Your MambaReceipts access is active until 28.09.2026. Check your roles!", reply)

	assert.Equal(t, "❌ Error granting access", grantModalReply(nil, assert.AnError))
}

func TestGrantModalSubmitEndToEndAgainstService(t *testing.T) {
	repo := discordaccess.NewMemoryRepository()
	svc, err := discordaccess.NewService(discordaccess.ServiceParams{Repo: repo})
	require.NoError(t, err)
	ctx := context.Background()

	result, err := svc.Grant(ctx, discordaccess.GrantRequest{
		Email:         "Buyer@Example.com",
		DiscordUserID: "D123",
		OrderID:       "ord_42",
		DurationDays:  grantModalDays,
	})
	require.NoError(t, err)
	assert.Contains(t, grantModalReply(result, nil), "✅ Access granted!")

	check, err := svc.Check(ctx, "buyer@example.com")
	require.NoError(t, err)
	assert.True(t, check.HasAccess)
}

func TestCommandDefinitions(t *testing.T) {
	names := map[string]bool{}
	for _, cmd := range commands {
		names[cmd.Name] = true
	}
	assert.True(t, names[commandLink])
	assert.True(t, names[commandGrantModal])
	assert.True(t, names[commandAdminGrant])
	assert.True(t, names[commandAdminRevoke])

	for _, cmd := range commands {
		if cmd.Name == commandLink {
			assert.Nil(t, cmd.DefaultMemberPermissions)
			continue
		}
		require.NotNil(t, cmd.DefaultMemberPermissions, cmd.Name)
		assert.EqualValues(t, 0, *cmd.DefaultMemberPermissions)
	}
}
