package services

import (
	"cmp"
	"context"
	"errors"
	"log/slog"
	"slices"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/bwmarrin/discordgo"
	"golang.org/x/sync/errgroup"
)

// GuildService serves the Activity settings page and the thin Discord proxies.
type GuildService struct {
	settings repositories.GuildSettingsRepository
	orgs     repositories.OrganizationRepository
	client   discord.Client
	notifier Notifier
	logger   *slog.Logger
}

func NewGuildService(
	settings repositories.GuildSettingsRepository,
	orgs repositories.OrganizationRepository,
	client discord.Client,
	notifier Notifier,
	logger *slog.Logger,
) *GuildService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	return &GuildService{settings: settings, orgs: orgs, client: client, notifier: notifier, logger: logger}
}

// Settings merges guild_roles, logging and the organization's announcement channel.
func (s *GuildService) Settings(ctx context.Context, guildID string) (*models.GuildSettings, error) {
	out := &models.GuildSettings{GuildID: guildID}

	roles, err := s.settings.GetRoles(ctx, guildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	out.OrganizerRoleID = roles.OrganizerRoleID
	out.ParticipantRoleID = roles.ParticipantRoleID

	logs, err := s.settings.GetLogSettings(ctx, guildID)
	switch {
	case err == nil:
		out.LogChannelID = logs.ChannelID
	case !errors.Is(err, repositories.ErrLogChannelNotSet):
		return nil, handleRepositoryError(err)
	}

	org, err := s.orgs.Get(ctx, guildID)
	switch {
	case err == nil:
		out.AnnouncementChannelID = org.AnnouncementChannelID
		if out.ParticipantRoleID == "" {
			out.ParticipantRoleID = org.ParticipantRoleID
		}
	case !errors.Is(err, repositories.ErrOrganizationNotFound):
		return nil, handleRepositoryError(err)
	}
	return out, nil
}

// SaveSettings writes the non-empty settings. The announcement channel lives on
// the organization and is only stored once the guild registered one.
func (s *GuildService) SaveSettings(ctx context.Context, guildID string, in *models.GuildSettings) (*models.GuildSettings, error) {
	in.GuildID = guildID
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if in.OrganizerRoleID != "" {
		if err := s.settings.SetOrganizerRole(ctx, guildID, in.OrganizerRoleID); err != nil {
			return nil, handleRepositoryError(err)
		}
	}
	if in.ParticipantRoleID != "" {
		if err := s.settings.SetParticipantRole(ctx, guildID, in.ParticipantRoleID); err != nil {
			return nil, handleRepositoryError(err)
		}
	}
	if in.LogChannelID != "" {
		if err := s.settings.SetLogChannel(ctx, guildID, in.LogChannelID); err != nil {
			return nil, handleRepositoryError(err)
		}
	}

	if in.AnnouncementChannelID != "" || in.ParticipantRoleID != "" {
		org, err := s.orgs.Get(ctx, guildID)
		switch {
		case err == nil:
			if in.AnnouncementChannelID != "" {
				org.AnnouncementChannelID = in.AnnouncementChannelID
			}
			if in.ParticipantRoleID != "" {
				org.ParticipantRoleID = in.ParticipantRoleID
			}
			if err := s.orgs.Upsert(ctx, org); err != nil {
				return nil, handleRepositoryError(err)
			}
		case !errors.Is(err, repositories.ErrOrganizationNotFound):
			return nil, handleRepositoryError(err)
		}
	}

	saved, err := s.Settings(ctx, guildID)
	if err != nil {
		return nil, err
	}
	s.notifier.NotifyGuild(guildID, realtime.SettingsUpdated, saved)
	return saved, nil
}

func (s *GuildService) SetOrganizerRole(ctx context.Context, guildID, roleID string) error {
	return handleRepositoryError(s.settings.SetOrganizerRole(ctx, guildID, roleID))
}

// SettingsView loads settings, channels and roles concurrently. Discord failures
// leave the lists empty instead of failing the page.
func (s *GuildService) SettingsView(ctx context.Context, guildID string) (*models.GuildSettingsView, error) {
	view := &models.GuildSettingsView{Channels: []models.GuildChannel{}, Roles: []models.GuildRole{}}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		settings, err := s.Settings(gctx, guildID)
		if err != nil {
			return err
		}
		view.Settings = *settings
		return nil
	})
	g.Go(func() error {
		channels, err := s.Channels(gctx, guildID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load guild channels", slog.String("guild_id", guildID), slog.Any("error", err))
			return nil
		}
		view.Channels = channels
		return nil
	})
	g.Go(func() error {
		roles, err := s.Roles(gctx, guildID)
		if err != nil {
			s.logger.WarnContext(ctx, "failed to load guild roles", slog.String("guild_id", guildID), slog.Any("error", err))
			return nil
		}
		view.Roles = roles
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return view, nil
}

func (s *GuildService) Guild(ctx context.Context, guildID string) (*discordgo.Guild, error) {
	guild, err := s.client.Guild(ctx, guildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	return guild, nil
}

// Channels returns text and announcement channels ordered as in the Discord client.
func (s *GuildService) Channels(ctx context.Context, guildID string) ([]models.GuildChannel, error) {
	channels, err := s.client.GuildChannels(ctx, guildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	slices.SortStableFunc(channels, func(a, b *discordgo.Channel) int { return cmp.Compare(a.Position, b.Position) })
	out := make([]models.GuildChannel, 0, len(channels))
	for _, ch := range channels {
		if ch.Type != discordgo.ChannelTypeGuildText && ch.Type != discordgo.ChannelTypeGuildNews {
			continue
		}
		out = append(out, models.GuildChannel{ID: ch.ID, Name: ch.Name, Type: int(ch.Type), ParentID: ch.ParentID})
	}
	return out, nil
}

// Roles omits @everyone and integration managed roles, highest first.
func (s *GuildService) Roles(ctx context.Context, guildID string) ([]models.GuildRole, error) {
	roles, err := s.client.GuildRoles(ctx, guildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	slices.SortStableFunc(roles, func(a, b *discordgo.Role) int { return cmp.Compare(b.Position, a.Position) })
	out := make([]models.GuildRole, 0, len(roles))
	for _, r := range roles {
		if r.ID == guildID || r.Managed {
			continue
		}
		out = append(out, models.GuildRole{ID: r.ID, Name: r.Name, Color: r.Color, Position: r.Position})
	}
	return out, nil
}

// MemberPermissions never fails: lookups that fail report discord.DefaultPermissions.
func (s *GuildService) MemberPermissions(ctx context.Context, guildID, userID string) string {
	return discord.MemberPermissions(ctx, s.client, guildID, userID)
}

// CanManage reports whether an Activity user may change guild data: manage bits or the organizer role.
func (s *GuildService) CanManage(ctx context.Context, guildID, userID string) (bool, error) {
	if CanManageFromBits(s.MemberPermissions(ctx, guildID, userID)) {
		return true, nil
	}
	roles, err := s.settings.GetRoles(ctx, guildID)
	if err != nil {
		return false, handleRepositoryError(err)
	}
	if roles.OrganizerRoleID == "" {
		return false, nil
	}
	member, err := s.client.GuildMember(ctx, guildID, userID)
	if err != nil {
		return false, nil
	}
	return slices.Contains(member.Roles, roles.OrganizerRoleID), nil
}
