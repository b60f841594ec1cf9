package discord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/Dosada05/forza-race-organizer/metrics"
	"github.com/bwmarrin/discordgo"
)

//go:generate mockgen -source=client.go -destination=mocks/mock_client.go -package=mocks

// Client is the subset of the Discord REST API the bot uses.
type Client interface {
	SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error)
	EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error)
	DeleteMessage(ctx context.Context, channelID, messageID string) error
	StartThread(ctx context.Context, channelID, name string) (*discordgo.Channel, error)
	ArchiveThread(ctx context.Context, threadID string) error
	AddRole(ctx context.Context, guildID, userID, roleID string) error
	RemoveRole(ctx context.Context, guildID, userID, roleID string) error
	Guild(ctx context.Context, guildID string) (*discordgo.Guild, error)
	Channel(ctx context.Context, channelID string) (*discordgo.Channel, error)
	GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error)
	GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error)
	GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error)
	Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error
	Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error)
	OverwriteCommands(ctx context.Context, guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error)
}

// UpstreamError is a failed Discord REST call.
type UpstreamError struct {
	Op     string
	Status int
	Err    error
}

func (e *UpstreamError) Error() string {
	if e.Status != 0 {
		return fmt.Sprintf("discord %s failed with status %d: %v", e.Op, e.Status, e.Err)
	}
	return fmt.Sprintf("discord %s failed: %v", e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error { return e.Err }

// NotFound reports whether Discord answered 404 (unknown message, channel, member).
func (e *UpstreamError) NotFound() bool { return e.Status == http.StatusNotFound }

func IsNotFound(err error) bool {
	var ue *UpstreamError
	return errors.As(err, &ue) && ue.NotFound()
}

// RESTClient implements Client on a bot-token discordgo session.
type RESTClient struct {
	session *discordgo.Session
	appID   string
	logger  *slog.Logger
	metrics metrics.Collector
}

func NewRESTClient(session *discordgo.Session, appID string, logger *slog.Logger, m metrics.Collector) *RESTClient {
	if m == nil {
		m = metrics.NoOp{}
	}
	return &RESTClient{session: session, appID: appID, logger: logger, metrics: m}
}

// NewSession creates a discordgo session authenticated with the bot token.
func NewSession(botToken string) (*discordgo.Session, error) {
	s, err := discordgo.New("Bot " + botToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	s.Identify.Intents = discordgo.IntentsGuilds | discordgo.IntentsGuildMembers
	return s, nil
}

func (c *RESTClient) wrap(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}
	ue := &UpstreamError{Op: op, Err: err}
	var restErr *discordgo.RESTError
	if errors.As(err, &restErr) && restErr.Response != nil {
		ue.Status = restErr.Response.StatusCode
	}
	c.metrics.DiscordCallFailed(op)
	c.logger.WarnContext(ctx, "discord call failed",
		slog.String("op", op),
		slog.Int("status", ue.Status),
		slog.Any("error", err),
	)
	return ue
}

func (c *RESTClient) SendMessage(ctx context.Context, channelID string, msg *discordgo.MessageSend) (*discordgo.Message, error) {
	m, err := c.session.ChannelMessageSendComplex(channelID, msg, discordgo.WithContext(ctx))
	return m, c.wrap(ctx, "send_message", err)
}

func (c *RESTClient) EditMessage(ctx context.Context, edit *discordgo.MessageEdit) (*discordgo.Message, error) {
	m, err := c.session.ChannelMessageEditComplex(edit, discordgo.WithContext(ctx))
	return m, c.wrap(ctx, "edit_message", err)
}

func (c *RESTClient) DeleteMessage(ctx context.Context, channelID, messageID string) error {
	return c.wrap(ctx, "delete_message", c.session.ChannelMessageDelete(channelID, messageID, discordgo.WithContext(ctx)))
}

func (c *RESTClient) StartThread(ctx context.Context, channelID, name string) (*discordgo.Channel, error) {
	ch, err := c.session.ThreadStart(channelID, name, discordgo.ChannelTypeGuildPublicThread, 10080, discordgo.WithContext(ctx))
	return ch, c.wrap(ctx, "start_thread", err)
}

func (c *RESTClient) ArchiveThread(ctx context.Context, threadID string) error {
	archived, locked := true, true
	_, err := c.session.ChannelEdit(threadID, &discordgo.ChannelEdit{Archived: &archived, Locked: &locked}, discordgo.WithContext(ctx))
	return c.wrap(ctx, "archive_thread", err)
}

func (c *RESTClient) AddRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.wrap(ctx, "add_role", c.session.GuildMemberRoleAdd(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (c *RESTClient) RemoveRole(ctx context.Context, guildID, userID, roleID string) error {
	return c.wrap(ctx, "remove_role", c.session.GuildMemberRoleRemove(guildID, userID, roleID, discordgo.WithContext(ctx)))
}

func (c *RESTClient) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	g, err := c.session.Guild(guildID, discordgo.WithContext(ctx))
	return g, c.wrap(ctx, "guild", err)
}

func (c *RESTClient) Channel(ctx context.Context, channelID string) (*discordgo.Channel, error) {
	ch, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	return ch, c.wrap(ctx, "channel", err)
}

func (c *RESTClient) GuildChannels(ctx context.Context, guildID string) ([]*discordgo.Channel, error) {
	chs, err := c.session.GuildChannels(guildID, discordgo.WithContext(ctx))
	return chs, c.wrap(ctx, "guild_channels", err)
}

func (c *RESTClient) GuildRoles(ctx context.Context, guildID string) ([]*discordgo.Role, error) {
	roles, err := c.session.GuildRoles(guildID, discordgo.WithContext(ctx))
	return roles, c.wrap(ctx, "guild_roles", err)
}

func (c *RESTClient) GuildMember(ctx context.Context, guildID, userID string) (*discordgo.Member, error) {
	m, err := c.session.GuildMember(guildID, userID, discordgo.WithContext(ctx))
	return m, c.wrap(ctx, "guild_member", err)
}

func (c *RESTClient) Respond(ctx context.Context, i *discordgo.Interaction, resp *discordgo.InteractionResponse) error {
	return c.wrap(ctx, "interaction_respond", c.session.InteractionRespond(i, resp, discordgo.WithContext(ctx)))
}

func (c *RESTClient) Followup(ctx context.Context, i *discordgo.Interaction, params *discordgo.WebhookParams) (*discordgo.Message, error) {
	m, err := c.session.FollowupMessageCreate(i, true, params, discordgo.WithContext(ctx))
	return m, c.wrap(ctx, "followup", err)
}

// OverwriteCommands replaces the application commands globally, or for one guild when guildID is set.
func (c *RESTClient) OverwriteCommands(ctx context.Context, guildID string, commands []*discordgo.ApplicationCommand) ([]*discordgo.ApplicationCommand, error) {
	out, err := c.session.ApplicationCommandBulkOverwrite(c.appID, guildID, commands, discordgo.WithContext(ctx))
	return out, c.wrap(ctx, "bulk_overwrite_commands", err)
}

// DefaultPermissions is reported when a permission lookup fails.
const DefaultPermissions = "0"

// MemberPermissions computes the guild level permission bits of a member from
// the guild owner and role list. Any lookup failure degrades to DefaultPermissions.
func MemberPermissions(ctx context.Context, c Client, guildID, userID string) string {
	guild, err := c.Guild(ctx, guildID)
	if err != nil {
		return DefaultPermissions
	}
	if guild.OwnerID == userID {
		return strconv.FormatInt(discordgo.PermissionAll, 10)
	}
	member, err := c.GuildMember(ctx, guildID, userID)
	if err != nil {
		return DefaultPermissions
	}
	roles := guild.Roles
	if len(roles) == 0 {
		if roles, err = c.GuildRoles(ctx, guildID); err != nil {
			return DefaultPermissions
		}
	}
	return strconv.FormatInt(ComputePermissions(guildID, roles, member.Roles), 10)
}

// ComputePermissions ORs the @everyone role (id == guild id) with the member's roles.
func ComputePermissions(guildID string, roles []*discordgo.Role, memberRoles []string) int64 {
	held := make(map[string]struct{}, len(memberRoles)+1)
	held[guildID] = struct{}{}
	for _, id := range memberRoles {
		held[id] = struct{}{}
	}
	var perms int64
	for _, r := range roles {
		if _, ok := held[r.ID]; ok {
			perms |= r.Permissions
		}
	}
	if perms&discordgo.PermissionAdministrator != 0 {
		return discordgo.PermissionAll
	}
	return perms
}

// ResolveGuild returns the guild that owns a channel.
func ResolveGuild(ctx context.Context, c Client, channelID string) (string, error) {
	ch, err := c.Channel(ctx, channelID)
	if err != nil {
		return "", err
	}
	if ch.GuildID == "" {
		return "", fmt.Errorf("channel %s does not belong to a guild", channelID)
	}
	return ch.GuildID, nil
}
