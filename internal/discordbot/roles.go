package discordbot

import (
	"context"
	"fmt"

	"github.com/bwmarrin/discordgo"

	"github.com/mambaservices/storefront-backend/pkg/config"
)

// roleSession is the slice of the gateway session used for role management.
type roleSession interface {
	GuildMemberRoleAdd(guildID, userID, roleID string, options ...discordgo.RequestOption) error
	GuildMemberRoleRemove(guildID, userID, roleID string, options ...discordgo.RequestOption) error
}

// RoleManager adds and removes the paid-access role on the configured guild.
// It satisfies the role hook of the access service.
type RoleManager struct {
	session roleSession
	guildID string
	roleID  string
}

func NewRoleManager(session *discordgo.Session, cfg config.DiscordConfig) (*RoleManager, error) {
	if session == nil {
		return nil, fmt.Errorf("discord session is required")
	}
	if !cfg.Enabled() {
		return nil, fmt.Errorf("discord guild and role ids are required")
	}
	return &RoleManager{session: session, guildID: cfg.GuildID, roleID: cfg.RoleID}, nil
}

func (m *RoleManager) GrantRole(ctx context.Context, discordUserID string) error {
	if err := m.session.GuildMemberRoleAdd(m.guildID, discordUserID, m.roleID); err != nil {
		return fmt.Errorf("adding role to member %s: %w", discordUserID, err)
	}
	return nil
}

func (m *RoleManager) RevokeRole(ctx context.Context, discordUserID string) error {
	if err := m.session.GuildMemberRoleRemove(m.guildID, discordUserID, m.roleID); err != nil {
		return fmt.Errorf("removing role from member %s: %w", discordUserID, err)
	}
	return nil
}

// NoopRoleManager is used when the bot is not configured. Entitlement writes
// still happen; only the platform role stays unmanaged.
type NoopRoleManager struct{}

func (NoopRoleManager) GrantRole(ctx context.Context, discordUserID string) error  { return nil }
func (NoopRoleManager) RevokeRole(ctx context.Context, discordUserID string) error { return nil }
