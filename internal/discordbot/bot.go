package discordbot

import (
	"context"
	"fmt"
	"strings"

	"github.com/bwmarrin/discordgo"

	"github.com/mambaservices/storefront-backend/internal/discordaccess"
	"github.com/mambaservices/storefront-backend/pkg/config"
	"github.com/mambaservices/storefront-backend/pkg/logger"
)

// Bot runs the gateway session and the slash command surface. It is the only
// write path for email-to-Discord bindings.
type Bot struct {
	session *discordgo.Session
	access  discordaccess.Service
	cfg     config.DiscordConfig
	logg    *logger.Logger
}

// BotParams bundles the dependencies required to build a bot. Session is
// optional; when nil a fresh session is created from the configured token.
// Passing one in lets the caller build a RoleManager on the same session
// before the access service exists.
type BotParams struct {
	Access  discordaccess.Service
	Config  config.DiscordConfig
	Logger  *logger.Logger
	Session *discordgo.Session
}

// NewSession creates an unopened gateway session for the configured token.
func NewSession(cfg config.DiscordConfig) (*discordgo.Session, error) {
	if cfg.Token == "" {
		return nil, fmt.Errorf("discord token is required")
	}
	session, err := discordgo.New("Bot " + cfg.Token)
	if err != nil {
		return nil, fmt.Errorf("creating discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds |
		discordgo.IntentsGuildMembers |
		discordgo.IntentsGuildMessages |
		discordgo.IntentsDirectMessages
	return session, nil
}

// NewBot constructs the bot without connecting. Call Start to open the
// gateway session and register commands.
func NewBot(params BotParams) (*Bot, error) {
	if params.Access == nil {
		return nil, fmt.Errorf("discord access service is required")
	}
	if params.Config.GuildID == "" {
		return nil, fmt.Errorf("discord guild id is required")
	}

	session := params.Session
	if session == nil {
		var err error
		session, err = NewSession(params.Config)
		if err != nil {
			return nil, err
		}
	}

	return &Bot{
		session: session,
		access:  params.Access,
		cfg:     params.Config,
		logg:    params.Logger,
	}, nil
}

// Session exposes the underlying gateway session for role management.
func (b *Bot) Session() *discordgo.Session {
	return b.session
}

// Start opens the gateway connection and registers the guild commands.
func (b *Bot) Start(ctx context.Context) error {
	b.session.AddHandler(b.onReady)
	b.session.AddHandler(b.onInteraction)

	if err := b.session.Open(); err != nil {
		return fmt.Errorf("opening discord gateway: %w", err)
	}

	appID := b.session.State.User.ID
	if _, err := b.session.ApplicationCommandBulkOverwrite(appID, b.cfg.GuildID, commands); err != nil {
		return fmt.Errorf("registering slash commands: %w", err)
	}

	if b.logg != nil {
		b.logg.Info(b.logg.WithField(ctx, "commands", len(commands)), "discord.commands_registered")
	}
	return nil
}

// Stop closes the gateway connection.
func (b *Bot) Stop() error {
	return b.session.Close()
}

func (b *Bot) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if b.logg != nil {
		ctx := b.logg.WithField(context.Background(), "bot_user", r.User.Username)
		b.logg.Info(ctx, "discord.connected")
	}
}

func (b *Bot) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
	case discordgo.InteractionModalSubmit:
		b.onModalSubmit(s, i)
		return
	default:
		return
	}

	data := i.ApplicationCommandData()
	ctx := context.Background()
	if b.logg != nil {
		ctx = b.logg.WithField(ctx, "command", data.Name)
	}

	switch data.Name {
	case commandLink:
		b.handleLink(ctx, s, i, data)
	case commandGrantModal:
		b.handleGrantModalOpen(ctx, s, i, data)
	case commandAdminGrant:
		b.handleAdminGrant(ctx, s, i, data)
	case commandAdminRevoke:
		b.handleAdminRevoke(ctx, s, i, data)
	}
}

func (b *Bot) onModalSubmit(s *discordgo.Session, i *discordgo.InteractionCreate) {
	data := i.ModalSubmitData()
	if !strings.HasPrefix(data.CustomID, grantModalPrefix) {
		return
	}

	ctx := context.Background()
	if b.logg != nil {
		ctx = b.logg.WithField(ctx, "command", commandGrantModal)
	}
	b.handleGrantModalSubmit(ctx, s, i, data)
}

func (b *Bot) handleLink(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	email := stringOption(data, "email")
	user := invokingUser(i)
	if user == nil {
		b.reply(ctx, s, i, "❌ Błąd: nie mogę znaleźć użytkownika!")
		return
	}

	result, err := b.access.Link(ctx, email, user.ID)
	if err != nil && b.logg != nil {
		b.logg.Warn(b.logg.WithEmail(ctx, email), "discord.link_rejected")
	}
	b.reply(ctx, s, i, linkReply(email, result, err))
}

func (b *Bot) handleGrantModalOpen(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	user := invokingUser(i)
	if user == nil {
		b.reply(ctx, s, i, "❌ Błąd: nie mogę znaleźć użytkownika!")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: grantModal(user.ID, stringOption(data, "email"), stringOption(data, "orderid")),
	})
	if err != nil && b.logg != nil {
		b.logg.Error(ctx, "discord.modal_open_failed", err)
	}
}

func (b *Bot) handleGrantModalSubmit(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ModalSubmitInteractionData) {
	user := invokingUser(i)
	email := textInputValue(data, grantModalEmailInput)
	orderID := textInputValue(data, grantModalOrderInput)
	if user == nil || email == "" {
		b.reply(ctx, s, i, "❌ Error granting access")
		return
	}

	result, err := b.access.Grant(ctx, discordaccess.GrantRequest{
		Email:         email,
		DiscordUserID: user.ID,
		OrderID:       orderID,
		DurationDays:  grantModalDays,
	})
	if err != nil && b.logg != nil {
		b.logg.Error(b.logg.WithEmail(ctx, email), "discord.modal_grant_failed", err)
	}
	b.reply(ctx, s, i, grantModalReply(result, err))
}

func (b *Bot) handleAdminGrant(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	user := userOption(s, data, "user")
	days := int(intOption(data, "dni"))
	if user == nil {
		b.reply(ctx, s, i, "❌ Błąd: nie mogę znaleźć użytkownika!")
		return
	}

	result, err := b.access.GrantForDiscordUser(ctx, user.ID, days)
	if err != nil {
		if b.logg != nil {
			b.logg.Error(ctx, "discord.admin_grant_failed", err)
		}
		b.reply(ctx, s, i, adminGrantReply(user.Username, nil, err))
		return
	}

	b.sendDM(ctx, s, user.ID, adminGrantDM(days, result.ExpiresAt))
	b.reply(ctx, s, i, adminGrantReply(user.Username, result, nil))
}

func (b *Bot) handleAdminRevoke(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, data discordgo.ApplicationCommandInteractionData) {
	email := stringOption(data, "email")
	user := userOption(s, data, "user")
	if email == "" || user == nil {
		b.reply(ctx, s, i, "❌ Email and user are required")
		return
	}

	err := b.access.Revoke(ctx, discordaccess.RevokeRequest{Email: email, DiscordUserID: user.ID})
	if err != nil && b.logg != nil {
		b.logg.Warn(b.logg.WithEmail(ctx, email), "discord.revoke_rejected")
	}
	b.reply(ctx, s, i, adminRevokeReply(user.Username, email, err))
}

// reply responds ephemerally; only the invoking user sees the outcome.
func (b *Bot) reply(ctx context.Context, s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil && b.logg != nil {
		b.logg.Error(ctx, "discord.reply_failed", err)
	}
}

func (b *Bot) sendDM(ctx context.Context, s *discordgo.Session, userID, content string) {
	channel, err := s.UserChannelCreate(userID)
	if err == nil {
		_, err = s.ChannelMessageSend(channel.ID, content)
	}
	if err != nil && b.logg != nil {
		b.logg.Error(ctx, "discord.dm_failed", err)
	}
}

func invokingUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}

func stringOption(data discordgo.ApplicationCommandInteractionData, name string) string {
	for _, option := range data.Options {
		if option.Name == name {
			return option.StringValue()
		}
	}
	return ""
}

func intOption(data discordgo.ApplicationCommandInteractionData, name string) int64 {
	for _, option := range data.Options {
		if option.Name == name {
			return option.IntValue()
		}
	}
	return 0
}

// textInputValue walks the submitted modal rows for the named input. Incoming
// components arrive as pointers; built ones are values, so both are handled.
func textInputValue(data discordgo.ModalSubmitInteractionData, customID string) string {
	for _, component := range data.Components {
		var row *discordgo.ActionsRow
		switch c := component.(type) {
		case *discordgo.ActionsRow:
			row = c
		case discordgo.ActionsRow:
			row = &c
		default:
			continue
		}
		for _, inner := range row.Components {
			switch input := inner.(type) {
			case *discordgo.TextInput:
				if input.CustomID == customID {
					return strings.TrimSpace(input.Value)
				}
			case discordgo.TextInput:
				if input.CustomID == customID {
					return strings.TrimSpace(input.Value)
				}
			}
		}
	}
	return ""
}

func userOption(s *discordgo.Session, data discordgo.ApplicationCommandInteractionData, name string) *discordgo.User {
	for _, option := range data.Options {
		if option.Name == name {
			return option.UserValue(s)
		}
	}
	return nil
}
