package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/bwmarrin/discordgo"
)

// TicketInput is the submitted incident report form.
type TicketInput struct {
	GuildID       string `json:"-"`
	ChannelID     string `json:"-"`
	Reporter      Actor  `json:"-"`
	InvolvedUsers string `json:"involved_users" validate:"required,max=1000"`
	VideoLink     string `json:"video_link" validate:"required,url"`
	Comment       string `json:"comment" validate:"max=1000"`
}

type TicketService struct {
	tickets     repositories.TicketRepository
	client      discord.Client
	permissions *PermissionChecker
	logs        *LogService
	logger      *slog.Logger
}

func NewTicketService(
	tickets repositories.TicketRepository,
	client discord.Client,
	permissions *PermissionChecker,
	logs *LogService,
	logger *slog.Logger,
) *TicketService {
	return &TicketService{
		tickets:     tickets,
		client:      client,
		permissions: permissions,
		logs:        logs,
		logger:      logger,
	}
}

// Create numbers the report, opens a thread for it and posts the ticket card with a
// close button. Without a thread the card goes to the channel itself.
func (s *TicketService) Create(ctx context.Context, in TicketInput) (*models.Ticket, error) {
	in.InvolvedUsers = strings.TrimSpace(in.InvolvedUsers)
	in.VideoLink = strings.TrimSpace(in.VideoLink)
	in.Comment = strings.TrimSpace(in.Comment)
	if err := validateStruct(in); err != nil {
		return nil, err
	}

	number, err := s.tickets.NextTicketNumber(ctx, in.GuildID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	t := &models.Ticket{
		TicketNumber:  number,
		GuildID:       in.GuildID,
		Reporter:      models.TicketActor{ID: in.Reporter.ID, Username: in.Reporter.Username},
		InvolvedUsers: in.InvolvedUsers,
		VideoLink:     in.VideoLink,
		Comment:       in.Comment,
		ChannelID:     in.ChannelID,
	}

	target := in.ChannelID
	thread, err := s.client.StartThread(ctx, in.ChannelID, fmt.Sprintf("Ticket #%d", number))
	if err != nil {
		s.logger.WarnContext(ctx, "failed to open ticket thread", slog.String("guild_id", in.GuildID), slog.Int("ticket", number), slog.Any("error", err))
	} else {
		t.ThreadID = thread.ID
		target = thread.ID
	}

	if err := s.tickets.Create(ctx, t); err != nil {
		if t.ThreadID != "" {
			if aerr := s.client.ArchiveThread(ctx, t.ThreadID); aerr != nil {
				s.logger.WarnContext(ctx, "failed to archive thread of unsaved ticket", slog.String("thread_id", t.ThreadID), slog.Any("error", aerr))
			}
		}
		return nil, handleRepositoryError(err)
	}

	if _, err := s.client.SendMessage(ctx, target, &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{discord.TicketEmbed(t)},
		Components: discord.CloseTicketButton(number),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to post ticket", slog.Int("ticket", number), slog.Any("error", err))
	}

	s.logs.Log(ctx, in.GuildID, "🎫 Ticket opened", fmt.Sprintf("Ticket #%d", number), map[string]string{
		"Reporter": "<@" + in.Reporter.ID + ">",
		"Involved": in.InvolvedUsers,
		"Video":    in.VideoLink,
	})
	return t, nil
}

// Close is allowed for organizers and for the member who filed the ticket.
func (s *TicketService) Close(ctx context.Context, guildID string, number int, by Actor, member *discordgo.Member) (*models.Ticket, error) {
	t, err := s.tickets.Get(ctx, guildID, number)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if t.Reporter.ID != by.ID {
		if err := s.permissions.RequireOrganizer(ctx, guildID, member); err != nil {
			return nil, err
		}
	}

	t, err = s.tickets.Close(ctx, guildID, number, models.TicketActor{ID: by.ID, Username: by.Username})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	if t.ThreadID != "" {
		if _, err := s.client.SendMessage(ctx, t.ThreadID, &discordgo.MessageSend{
			Embeds: []*discordgo.MessageEmbed{discord.TicketEmbed(t)},
		}); err != nil {
			s.logger.WarnContext(ctx, "failed to post ticket close notice", slog.Int("ticket", number), slog.Any("error", err))
		}
		if err := s.client.ArchiveThread(ctx, t.ThreadID); err != nil {
			s.logger.WarnContext(ctx, "failed to archive ticket thread", slog.Int("ticket", number), slog.Any("error", err))
		}
	}

	s.logs.Log(ctx, guildID, "🔒 Ticket closed", "Ticket #"+strconv.Itoa(number), map[string]string{
		"Closed by": "<@" + by.ID + ">",
	})
	return t, nil
}

func (s *TicketService) List(ctx context.Context, guildID string) ([]*models.Ticket, error) {
	tickets, err := s.tickets.ListByGuild(ctx, guildID)
	return tickets, handleRepositoryError(err)
}
