package discordbot

import (
	"fmt"
	"time"

	"github.com/bwmarrin/discordgo"

	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	pkgerrors "github.com/mambaservices/storefront-backend/pkg/errors"
)

const (
	commandLink        = "polacz"
	commandGrantModal  = "grantaccess"
	commandAdminGrant  = "nadajdostep"
	commandAdminRevoke = "odbierz"

	plDateLayout = "02.01.2006"

	grantModalPrefix     = "grantaccess_modal_"
	grantModalEmailInput = "email_input"
	grantModalOrderInput = "order_input"
	grantModalNickInput  = "discord_nick"

	// duration applied to modal-confirmed grants; matches the monthly plan
	grantModalDays = 31
)

var (
	adminOnly      int64 = 0
	minAccessDays        = float64(1)
	maxAccessDays        = float64(999)
)

// commands are registered per guild on startup, replacing whatever was
// registered before.
var commands = []*discordgo.ApplicationCommand{
	{
		Name:        commandLink,
		Description: "Połącz swój email z Discordem aby otrzymać dostęp do MambaReceipts",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "email",
				Description: "Twój email z zakupem MambaReceipts",
				Required:    true,
			},
		},
	},
	{
		Name:                     commandGrantModal,
		Description:              "[ADMIN] Grant MambaReceipts access to a user",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "email",
				Description: "Email associated with the purchase",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "orderid",
				Description: "Order ID from the purchase",
				Required:    true,
			},
		},
	},
	{
		Name:                     commandAdminGrant,
		Description:              "[ADMIN] Przydziel dostęp do MambaReceipts użytkownikowi",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Discord user do przydzielenia dostępu",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionInteger,
				Name:        "dni",
				Description: "Ilość dni dostępu",
				Required:    true,
				MinValue:    &minAccessDays,
				MaxValue:    maxAccessDays,
			},
		},
	},
	{
		Name:                     commandAdminRevoke,
		Description:              "[ADMIN] Revoke MambaReceipts access from a user",
		DefaultMemberPermissions: &adminOnly,
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "email",
				Description: "Email to revoke access from",
				Required:    true,
			},
			{
				Type:        discordgo.ApplicationCommandOptionUser,
				Name:        "user",
				Description: "Discord user to remove the role from",
				Required:    true,
			},
		},
	},
}

// linkReply renders the /polacz outcome for the invoking user.
func linkReply(email string, result *discordaccess.LinkResult, err error) string {
	if err == nil {
		return fmt.Sprintf("✅ Połączono! Twój dostęp wygasa: **%s**", result.ExpiresAt.Format(plDateLayout))
	}

	appErr := pkgerrors.As(err)
	if appErr == nil {
		return "❌ Błąd podczas łączenia. Spróbuj ponownie!"
	}
	switch appErr.Code() {
	case pkgerrors.CodeNotFound:
		return fmt.Sprintf("❌ Email `%s` nie ma dostępu do MambaReceipts!", email)
	case pkgerrors.CodeConflict:
		return "❌ Ten email został już połączony z innym kontem Discord! Każdy zakup można używać tylko raz."
	case pkgerrors.CodeForbidden:
		if expiresAt, ok := expiryFromDetails(appErr.Details()); ok {
			return fmt.Sprintf("⏰ Twój dostęp wygasł %s", expiresAt.Format(plDateLayout))
		}
		return "⏰ Twój dostęp wygasł"
	default:
		return "❌ Błąd podczas łączenia. Spróbuj ponownie!"
	}
}

// grantModal builds the /grantaccess confirmation form, prefilled with the
// command options. The custom id carries the invoking user so the submit
// handler can scope the grant.
func grantModal(userID, email, orderID string) *discordgo.InteractionResponseData {
	return &discordgo.InteractionResponseData{
		CustomID: grantModalPrefix + userID,
		Title:    "MambaReceipts Access Request",
		Components: []discordgo.MessageComponent{
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: grantModalEmailInput,
					Label:    "Purchase Email",
					Style:    discordgo.TextInputShort,
					Value:    email,
					Required: true,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID: grantModalOrderInput,
					Label:    "Order ID",
					Style:    discordgo.TextInputShort,
					Value:    orderID,
					Required: true,
				},
			}},
			discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				discordgo.TextInput{
					CustomID:    grantModalNickInput,
					Label:       "Your Discord Username",
					Style:       discordgo.TextInputShort,
					Placeholder: "e.g., YourUsername#1234",
					Required:    true,
				},
			}},
		},
	}
}

// grantModalReply renders the modal-submit outcome.
func grantModalReply(result *discordaccess.GrantResponse, err error) string {
	if err != nil {
		return "❌ Error granting access"
	}
	return fmt.Sprintf(
		"✅ Access granted! Your MambaReceipts access is active until %s. Check your roles!",
		result.ExpiresAt.Format(plDateLayout),
	)
}

// adminGrantReply renders the /nadajdostep confirmation for the admin.
func adminGrantReply(userTag string, result *discordaccess.GrantResponse, err error) string {
	if err != nil {
		return "❌ Błąd podczas przydzielania dostępu!"
	}
	return fmt.Sprintf(
		"✅ Przydzielono dostęp użytkownikowi %s!\n📅 Wygasa: **%s**\n💬 Wiadomość wysłana na PV",
		userTag, result.ExpiresAt.Format(plDateLayout),
	)
}

// adminGrantDM is the direct message sent to the granted user.
func adminGrantDM(days int, expiresAt time.Time) string {
	return fmt.Sprintf(
		"✅ **Otrzymałeś dostęp do MambaReceipts!**\n\n📅 **Dostęp na:** %d dni\n⏰ **Wygasa:** %s\n\nMożesz teraz korzystać z kanałów MambaReceipts! 🐍",
		days, expiresAt.Format(plDateLayout),
	)
}

// adminRevokeReply renders the /odbierz outcome for the admin.
func adminRevokeReply(userTag, email string, err error) string {
	if err == nil {
		return fmt.Sprintf("✅ Access revoked for %s (%s)", userTag, email)
	}
	if appErr := pkgerrors.As(err); appErr != nil && appErr.Code() == pkgerrors.CodeNotFound {
		return fmt.Sprintf("❌ No access record found for %s", email)
	}
	return "❌ Error revoking access"
}

func expiryFromDetails(details any) (time.Time, bool) {
	fields, ok := details.(map[string]any)
	if !ok {
		return time.Time{}, false
	}
	expiresAt, ok := fields["expiresAt"].(time.Time)
	return expiresAt, ok
}
