package services

import (
	"context"
	"errors"
	"log/slog"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/bwmarrin/discordgo"
)

// LogService пишет журнал действий в канал, настроенный для гильдии.
// Logging never fails the action that triggered it.
type LogService struct {
	settings repositories.GuildSettingsRepository
	client   discord.Client
	logger   *slog.Logger
}

func NewLogService(settings repositories.GuildSettingsRepository, client discord.Client, logger *slog.Logger) *LogService {
	return &LogService{settings: settings, client: client, logger: logger}
}

func (s *LogService) Log(ctx context.Context, guildID, title, description string, fields map[string]string) {
	if guildID == "" {
		return
	}
	cfg, err := s.settings.GetLogSettings(ctx, guildID)
	if err != nil {
		if !errors.Is(err, repositories.ErrLogChannelNotSet) {
			s.logger.WarnContext(ctx, "failed to load log settings", slog.String("guild_id", guildID), slog.Any("error", err))
		}
		return
	}
	_, err = s.client.SendMessage(ctx, cfg.ChannelID, &discordgo.MessageSend{
		Embeds: []*discordgo.MessageEmbed{discord.LogEmbed(title, description, fields)},
	})
	if err != nil {
		s.logger.WarnContext(ctx, "failed to post guild log",
			slog.String("guild_id", guildID),
			slog.String("channel_id", cfg.ChannelID),
			slog.Any("error", err),
		)
	}
}

func (s *LogService) SetChannel(ctx context.Context, guildID, channelID string) error {
	return s.settings.SetLogChannel(ctx, guildID, channelID)
}
