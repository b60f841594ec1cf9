package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/metrics"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/realtime"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/bwmarrin/discordgo"
)

// Actor is the Discord member performing an action.
type Actor struct {
	ID       string
	Username string
}

type CreateEventInput struct {
	GuildID         string
	ChannelID       string
	InteractionID   string
	Title           string
	Date            string
	MaxParticipants int
	RoleID          string
	CreatedBy       Actor
}

type RegistrationInput struct {
	GuildID        string
	EventKey       string
	User           Actor
	XboxNickname   string
	TwitchUsername string
	CarChoice      string
}

// EventService инкапсулирует жизненный цикл события: создание, публикацию,
// регистрацию участников и запись результатов.
type EventService struct {
	events   repositories.EventRepository
	users    repositories.UserRepository
	settings repositories.GuildSettingsRepository
	client   discord.Client
	logs     *LogService
	notifier Notifier
	metrics  metrics.Collector
	logger   *slog.Logger
	loc      *time.Location
	now      func() time.Time
}

func NewEventService(
	events repositories.EventRepository,
	users repositories.UserRepository,
	settings repositories.GuildSettingsRepository,
	client discord.Client,
	logs *LogService,
	notifier Notifier,
	m metrics.Collector,
	logger *slog.Logger,
	loc *time.Location,
) *EventService {
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if m == nil {
		m = metrics.NoOp{}
	}
	if loc == nil {
		loc = time.UTC
	}
	return &EventService{
		events:   events,
		users:    users,
		settings: settings,
		client:   client,
		logs:     logs,
		notifier: notifier,
		metrics:  m,
		logger:   logger,
		loc:      loc,
		now:      time.Now,
	}
}

// sameGuild also admits legacy events that predate guild_id.
func sameGuild(e *models.Event, guildID string) bool {
	return e.GuildID == "" || guildID == "" || e.GuildID == guildID
}

func (s *EventService) Create(ctx context.Context, in CreateEventInput) (*models.Event, error) {
	title := strings.TrimSpace(in.Title)
	fields := map[string]string{}
	if title == "" {
		fields["title"] = "is required"
	}
	if in.MaxParticipants < 0 {
		fields["max_participants"] = "must not be negative"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}
	date, err := ParseEventDate(in.Date, s.now(), s.loc)
	if err != nil {
		return nil, err
	}

	roleID := in.RoleID
	if roleID == "" {
		if roles, err := s.settings.GetRoles(ctx, in.GuildID); err == nil {
			roleID = roles.ParticipantRoleID
		} else {
			s.logger.WarnContext(ctx, "failed to load default participant role", slog.String("guild_id", in.GuildID), slog.Any("error", err))
		}
	}

	e, err := s.events.CreateEvent(ctx, in.GuildID, in.ChannelID, in.InteractionID, models.EventDraft{
		Title:           title,
		EventDate:       date,
		MaxParticipants: in.MaxParticipants,
		RoleID:          roleID,
		CreatedBy:       in.CreatedBy.ID,
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logger.InfoContext(ctx, "event created", slog.String("guild_id", in.GuildID), slog.String("event_id", e.EventID))
	s.logs.Log(ctx, in.GuildID, "📅 Event created", e.Title, map[string]string{
		"Event ID":   e.EventID,
		"Created by": "<@" + in.CreatedBy.ID + ">",
	})
	s.notifier.NotifyGuild(in.GuildID, realtime.EventUpdated, e)
	return e, nil
}

func (s *EventService) Get(ctx context.Context, guildID, eventID string) (*models.Event, error) {
	e, err := s.events.FindEventByID(ctx, eventID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !sameGuild(e, guildID) {
		return nil, ErrEventNotFound
	}
	return e, nil
}

func (s *EventService) getByKey(ctx context.Context, guildID, key string) (*models.Event, error) {
	e, err := s.events.GetByKey(ctx, key)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !sameGuild(e, guildID) {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// EventForMessage resolves the event behind an announcement button.
func (s *EventService) EventForMessage(ctx context.Context, guildID, messageID, channelID string) (*models.Event, error) {
	e, err := s.events.FindEvent(ctx, messageID, channelID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if !sameGuild(e, guildID) {
		return nil, ErrEventNotFound
	}
	return e, nil
}

// Publish posts the announcement with the Register / Cancel buttons. Publishing
// again posts another announcement in the same channel.
func (s *EventService) Publish(ctx context.Context, guildID, eventID, channelID string, by Actor) (*models.Event, error) {
	e, err := s.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, err
	}
	if e.Completed {
		return nil, ErrEventCompleted
	}
	target := e.ChannelID
	if channelID != "" && channelID != e.ChannelID {
		if len(e.MessageIDs) > 0 {
			return nil, &ValidationError{Fields: map[string]string{
				"channel": "event is already announced in <#" + e.ChannelID + ">",
			}}
		}
		target = channelID
	}

	msg, err := s.client.SendMessage(ctx, target, discord.EventMessage(e))
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	published := true
	patch := models.EventPatch{Published: &published}
	if target != e.ChannelID {
		patch.ChannelID = &target
	}
	if _, err := s.events.UpdateEvent(ctx, e.Key, patch); err != nil {
		return nil, handleRepositoryError(err)
	}
	e, err = s.events.UpdateMessageIDs(ctx, e.Key, msg.ID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.logs.Log(ctx, guildID, "📣 Event published", e.Title, map[string]string{
		"Event ID":     e.EventID,
		"Channel":      "<#" + target + ">",
		"Published by": "<@" + by.ID + ">",
	})
	s.notifier.NotifyGuild(guildID, realtime.EventUpdated, e)
	return e, nil
}

// PrepareRegistration checks a Register click before the modal is shown and
// returns the member's saved profile for prefilling.
func (s *EventService) PrepareRegistration(ctx context.Context, guildID, messageID, channelID, userID string) (*models.Event, *models.UserProfile, error) {
	e, err := s.EventForMessage(ctx, guildID, messageID, channelID)
	if err != nil {
		return nil, nil, err
	}
	if e.Completed {
		return nil, nil, ErrEventCompleted
	}
	if e.HasParticipant(userID) {
		return nil, nil, ErrAlreadyRegistered
	}
	profile, err := s.users.Get(ctx, userID)
	if err != nil && !errors.Is(err, repositories.ErrUserNotFound) {
		s.logger.WarnContext(ctx, "failed to load user profile", slog.String("user_id", userID), slog.Any("error", err))
	}
	return e, profile, nil
}

// Register adds the member to the event, grants the event role and refreshes
// every announcement. Role and announcement failures are logged only.
func (s *EventService) Register(ctx context.Context, in RegistrationInput) (*models.Event, error) {
	if strings.TrimSpace(in.XboxNickname) == "" {
		return nil, &ValidationError{Fields: map[string]string{"xbox_nickname": "is required"}}
	}
	e, err := s.getByKey(ctx, in.GuildID, in.EventKey)
	if err != nil {
		return nil, err
	}
	if e.Completed {
		return nil, ErrEventCompleted
	}

	e, err = s.events.AddParticipant(ctx, in.EventKey, models.Participant{
		ID:             in.User.ID,
		Username:       in.User.Username,
		XboxNickname:   strings.TrimSpace(in.XboxNickname),
		TwitchUsername: strings.TrimSpace(in.TwitchUsername),
		CarChoice:      strings.TrimSpace(in.CarChoice),
		RegisteredAt:   s.now().UTC(),
	})
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.metrics.RegistrationChanged("register")

	if err := s.users.Save(ctx, &models.UserProfile{
		ID:             in.User.ID,
		Username:       in.User.Username,
		XboxNickname:   strings.TrimSpace(in.XboxNickname),
		TwitchUsername: strings.TrimSpace(in.TwitchUsername),
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to save user profile", slog.String("user_id", in.User.ID), slog.Any("error", err))
	}
	if e.RoleID != "" && in.GuildID != "" {
		if err := s.client.AddRole(ctx, in.GuildID, in.User.ID, e.RoleID); err != nil {
			s.logger.WarnContext(ctx, "failed to assign event role",
				slog.String("event_id", e.EventID),
				slog.String("guild_id", in.GuildID),
				slog.String("user_id", in.User.ID),
				slog.String("role_id", e.RoleID),
				slog.Any("error", err),
			)
		}
	}
	s.refreshAnnouncements(ctx, e)

	s.logs.Log(ctx, in.GuildID, "✅ Registration", e.Title, map[string]string{
		"Member":       "<@" + in.User.ID + ">",
		"Xbox":         in.XboxNickname,
		"Participants": participantsLabel(e),
	})
	s.notifier.NotifyGuild(in.GuildID, realtime.EventUpdated, e)
	return e, nil
}

func (s *EventService) CancelRegistration(ctx context.Context, guildID, messageID, channelID string, user Actor) (*models.Event, error) {
	e, err := s.EventForMessage(ctx, guildID, messageID, channelID)
	if err != nil {
		return nil, err
	}
	if e.Completed {
		return nil, ErrEventCompleted
	}
	e, err = s.events.RemoveParticipant(ctx, e.Key, user.ID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.metrics.RegistrationChanged("cancel")

	if e.RoleID != "" && guildID != "" {
		if err := s.client.RemoveRole(ctx, guildID, user.ID, e.RoleID); err != nil {
			s.logger.WarnContext(ctx, "failed to remove event role",
				slog.String("event_id", e.EventID),
				slog.String("guild_id", guildID),
				slog.String("user_id", user.ID),
				slog.String("role_id", e.RoleID),
				slog.Any("error", err),
			)
		}
	}
	s.refreshAnnouncements(ctx, e)

	s.logs.Log(ctx, guildID, "❌ Registration cancelled", e.Title, map[string]string{
		"Member":       "<@" + user.ID + ">",
		"Participants": participantsLabel(e),
	})
	s.notifier.NotifyGuild(guildID, realtime.EventUpdated, e)
	return e, nil
}

func participantsLabel(e *models.Event) string {
	if e.MaxParticipants > 0 {
		return fmt.Sprintf("%d/%d", e.ParticipantCount(), e.MaxParticipants)
	}
	return strconv.Itoa(e.ParticipantCount())
}

func (s *EventService) refreshAnnouncements(ctx context.Context, e *models.Event) {
	for _, messageID := range e.MessageIDs {
		if _, err := s.client.EditMessage(ctx, discord.EventMessageEdit(e, e.ChannelID, messageID)); err != nil {
			s.logger.WarnContext(ctx, "failed to refresh announcement",
				slog.String("event_id", e.EventID),
				slog.String("message_id", messageID),
				slog.Bool("message_gone", discord.IsNotFound(err)),
			)
		}
	}
}

// PrepareResults looks up the event the results modal will be opened for.
func (s *EventService) PrepareResults(ctx context.Context, guildID, eventID string) (*models.Event, error) {
	return s.Get(ctx, guildID, eventID)
}

// RecordResults parses the results text, stores it, marks the event completed
// and posts the results card to the event channel.
func (s *EventService) RecordResults(ctx context.Context, guildID, eventKey, text string, by Actor) (*models.Event, error) {
	results, err := ParseResults(text)
	if err != nil {
		return nil, err
	}
	if _, err := s.getByKey(ctx, guildID, eventKey); err != nil {
		return nil, err
	}
	e, err := s.events.UpdateResults(ctx, eventKey, results)
	if err != nil {
		return nil, handleRepositoryError(err)
	}

	s.refreshAnnouncements(ctx, e)
	if _, err := s.client.SendMessage(ctx, e.ChannelID, &discordgo.MessageSend{
		Embeds:          []*discordgo.MessageEmbed{discord.ResultsEmbed(e)},
		AllowedMentions: &discordgo.MessageAllowedMentions{},
	}); err != nil {
		s.logger.WarnContext(ctx, "failed to post results", slog.String("event_id", e.EventID), slog.Any("error", err))
	}

	s.logs.Log(ctx, guildID, "🏆 Results recorded", e.Title, map[string]string{
		"Event ID":    e.EventID,
		"Finishers":   strconv.Itoa(len(results)),
		"Recorded by": "<@" + by.ID + ">",
	})
	s.notifier.NotifyGuild(guildID, realtime.EventUpdated, e)
	return e, nil
}

// ParticipantPages returns the participant listing split into follow-up pages.
func (s *EventService) ParticipantPages(ctx context.Context, guildID, eventID string) ([]string, error) {
	e, err := s.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, err
	}
	return discord.ParticipantPages(e), nil
}

func (s *EventService) Delete(ctx context.Context, guildID, eventID string, by Actor) (*models.Event, error) {
	e, err := s.Get(ctx, guildID, eventID)
	if err != nil {
		return nil, err
	}
	deleted, err := s.events.DeleteEvent(ctx, e.Key)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	s.logs.Log(ctx, guildID, "🗑️ Event deleted", deleted.Title, map[string]string{
		"Event ID":   deleted.EventID,
		"Deleted by": "<@" + by.ID + ">",
	})
	s.notifier.NotifyGuild(guildID, realtime.EventDeleted, map[string]string{"event_id": deleted.EventID})
	return deleted, nil
}

func (s *EventService) GuildEvents(ctx context.Context, guildID string) ([]*models.Event, error) {
	events, err := s.events.GetGuildEvents(ctx, guildID)
	return events, handleRepositoryError(err)
}

// UserEvents lists the events a member registered for, limited to one guild when guildID is set.
func (s *EventService) UserEvents(ctx context.Context, guildID, userID string) ([]*models.Event, error) {
	events, err := s.events.GetUserEvents(ctx, userID)
	if err != nil {
		return nil, handleRepositoryError(err)
	}
	if guildID == "" {
		return events, nil
	}
	out := events[:0]
	for _, e := range events {
		if e.GuildID == guildID {
			out = append(out, e)
		}
	}
	return out, nil
}

// Migrate backfills guild_id on legacy events from their channel.
func (s *EventService) Migrate(ctx context.Context) (int, error) {
	return s.events.MigrateEvents(ctx, func(ctx context.Context, channelID string) (string, error) {
		return discord.ResolveGuild(ctx, s.client, channelID)
	})
}
