package interactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/bwmarrin/discordgo"
)

const (
	cmdCreateEvent      = "create-event"
	cmdPublishEvent     = "publish-event"
	cmdParticipants     = "participants"
	cmdResults          = "results"
	cmdDeleteEvent      = "delete-event"
	cmdEvents           = "events"
	cmdMyEvents         = "my-events"
	cmdReport           = "report"
	cmdSetLogChannel    = "set-log-channel"
	cmdSetOrganizerRole = "set-organizer-role"
	cmdExportResults    = "export-results"
	cmdMigrateEvents    = "migrate-events"

	optTitle           = "title"
	optDate            = "date"
	optMaxParticipants = "max_participants"
	optRole            = "role"
	optChannel         = "channel"
	optEventID         = "event_id"
)

var (
	noDM         = false
	manageServer = int64(discordgo.PermissionManageServer)
)

func eventIDOption(description string) *discordgo.ApplicationCommandOption {
	return &discordgo.ApplicationCommandOption{
		Type:        discordgo.ApplicationCommandOptionString,
		Name:        optEventID,
		Description: description,
		Required:    true,
		MinLength:   intPtr(4),
		MaxLength:   32,
	}
}

func intPtr(v int) *int { return &v }

// Definitions are the slash commands registered by the register-commands CLI.
func Definitions() []*discordgo.ApplicationCommand {
	textChannels := []discordgo.ChannelType{discordgo.ChannelTypeGuildText, discordgo.ChannelTypeGuildNews}
	return []*discordgo.ApplicationCommand{
		{
			Name:         cmdCreateEvent,
			Description:  "Create a race event",
			DMPermission: &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionString, Name: optTitle, Description: "Event title", Required: true, MaxLength: 100},
				{Type: discordgo.ApplicationCommandOptionString, Name: optDate, Description: `When: "2025-04-12 20:00" or "next friday 8pm"`},
				{Type: discordgo.ApplicationCommandOptionInteger, Name: optMaxParticipants, Description: "Number of grid slots (informational)", MinValue: floatPtr(0), MaxValue: 200},
				{Type: discordgo.ApplicationCommandOptionRole, Name: optRole, Description: "Role given to registered drivers"},
			},
		},
		{
			Name:         cmdPublishEvent,
			Description:  "Post the registration message of an event",
			DMPermission: &noDM,
			Options: []*discordgo.ApplicationCommandOption{
				eventIDOption("Event ID, e.g. FH5-123456"),
				{Type: discordgo.ApplicationCommandOptionChannel, Name: optChannel, Description: "Channel to post in (defaults to the event channel)", ChannelTypes: textChannels},
			},
		},
		{
			Name:         cmdParticipants,
			Description:  "List the registered drivers of an event",
			DMPermission: &noDM,
			Options:      []*discordgo.ApplicationCommandOption{eventIDOption("Event ID")},
		},
		{
			Name:         cmdResults,
			Description:  "Enter the finishing order of an event",
			DMPermission: &noDM,
			Options:      []*discordgo.ApplicationCommandOption{eventIDOption("Event ID")},
		},
		{
			Name:         cmdDeleteEvent,
			Description:  "Delete an event and its registration messages",
			DMPermission: &noDM,
			Options:      []*discordgo.ApplicationCommandOption{eventIDOption("Event ID")},
		},
		{Name: cmdEvents, Description: "List the events of this server", DMPermission: &noDM},
		{Name: cmdMyEvents, Description: "List the events you registered for", DMPermission: &noDM},
		{Name: cmdReport, Description: "Report an incident to the stewards", DMPermission: &noDM},
		{
			Name:                     cmdSetLogChannel,
			Description:              "Choose the channel for the bot's activity log",
			DMPermission:             &noDM,
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionChannel, Name: optChannel, Description: "Log channel", Required: true, ChannelTypes: textChannels},
			},
		},
		{
			Name:                     cmdSetOrganizerRole,
			Description:              "Choose the role allowed to manage events",
			DMPermission:             &noDM,
			DefaultMemberPermissions: &manageServer,
			Options: []*discordgo.ApplicationCommandOption{
				{Type: discordgo.ApplicationCommandOptionRole, Name: optRole, Description: "Organizer role", Required: true},
			},
		},
		{
			Name:         cmdExportResults,
			Description:  "Upload the results workbook and standings chart",
			DMPermission: &noDM,
			Options:      []*discordgo.ApplicationCommandOption{eventIDOption("Event ID")},
		},
		{
			Name:                     cmdMigrateEvents,
			Description:              "Attach old events to their server",
			DMPermission:             &noDM,
			DefaultMemberPermissions: &manageServer,
		},
	}
}

func floatPtr(v float64) *float64 { return &v }

type options map[string]*discordgo.ApplicationCommandInteractionDataOption

func commandOptions(i *discordgo.Interaction) options {
	opts := options{}
	for _, o := range i.ApplicationCommandData().Options {
		opts[o.Name] = o
	}
	return opts
}

// str reads string, user, role and channel options; the latter carry ids as strings.
func (o options) str(name string) string {
	opt, ok := o[name]
	if !ok {
		return ""
	}
	s, _ := opt.Value.(string)
	return strings.TrimSpace(s)
}

func (o options) int(name string) int {
	opt, ok := o[name]
	if !ok || opt.Type != discordgo.ApplicationCommandOptionInteger {
		return 0
	}
	return int(opt.IntValue())
}

func (r *Router) requireOrganizer(ctx context.Context, i *discordgo.Interaction) error {
	return r.svc.Permissions.RequireOrganizer(ctx, i.GuildID, i.Member)
}

func requireManager(i *discordgo.Interaction) error {
	if i.Member == nil || !services.HasManagePermission(i.Member.Permissions) {
		return services.ErrForbiddenOperation
	}
	return nil
}

func (r *Router) createEvent(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	opts := commandOptions(i)
	e, err := r.svc.Events.Create(ctx, services.CreateEventInput{
		GuildID:         i.GuildID,
		ChannelID:       i.ChannelID,
		InteractionID:   i.ID,
		Title:           opts.str(optTitle),
		Date:            opts.str(optDate),
		MaxParticipants: opts.int(optMaxParticipants),
		RoleID:          opts.str(optRole),
		CreatedBy:       actor(i),
	})
	if err != nil {
		return reply{}, err
	}
	resp := discord.EphemeralEmbed(discord.EventEmbed(e))
	resp.Data.Content = fmt.Sprintf("✅ Event created with ID `%s`. Post it with `/%s event_id:%s`.", e.EventID, cmdPublishEvent, e.EventID)
	return respond(resp), nil
}

func (r *Router) publishEvent(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	opts := commandOptions(i)
	e, err := r.svc.Events.Publish(ctx, i.GuildID, opts.str(optEventID), opts.str(optChannel), actor(i))
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("📣 **%s** is open for registration in <#%s>.", e.Title, e.ChannelID))), nil
}

// participants acknowledges at once and sends the pages as ordered follow-ups.
func (r *Router) participants(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	pages, err := r.svc.Events.ParticipantPages(ctx, i.GuildID, commandOptions(i).str(optEventID))
	if err != nil {
		return reply{}, err
	}
	return reply{
		response:  discord.DeferredEphemeral(),
		followups: discord.EphemeralFollowups(pages),
	}, nil
}

func (r *Router) results(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	e, err := r.svc.Events.PrepareResults(ctx, i.GuildID, commandOptions(i).str(optEventID))
	if err != nil {
		return reply{}, err
	}
	return respond(discord.ResultsModal(e.Key, e.Title)), nil
}

func (r *Router) deleteEvent(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	e, err := r.svc.Events.Delete(ctx, i.GuildID, commandOptions(i).str(optEventID), actor(i))
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("🗑️ Event **%s** (`%s`) deleted.", e.Title, e.EventID))), nil
}

func (r *Router) events(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	events, err := r.svc.Events.GuildEvents(ctx, i.GuildID)
	if err != nil {
		return reply{}, err
	}
	return respond(discord.EphemeralEmbed(eventListEmbed("📅 Server events", events))), nil
}

func (r *Router) myEvents(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	events, err := r.svc.Events.UserEvents(ctx, i.GuildID, actor(i).ID)
	if err != nil {
		return reply{}, err
	}
	return respond(discord.EphemeralEmbed(eventListEmbed("🏎️ Your events", events))), nil
}

func (r *Router) report(_ context.Context, i *discordgo.Interaction) (reply, error) {
	return respond(discord.TicketModal(i.ChannelID)), nil
}

func (r *Router) setLogChannel(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := requireManager(i); err != nil {
		return reply{}, err
	}
	channelID := commandOptions(i).str(optChannel)
	if err := r.svc.Logs.SetChannel(ctx, i.GuildID, channelID); err != nil {
		return reply{}, err
	}
	r.svc.Logs.Log(ctx, i.GuildID, "📝 Log channel set", "Bot activity is logged here.", map[string]string{
		"Set by": "<@" + actor(i).ID + ">",
	})
	return respond(discord.Ephemeral(fmt.Sprintf("📝 Activity will be logged in <#%s>.", channelID))), nil
}

func (r *Router) setOrganizerRole(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := requireManager(i); err != nil {
		return reply{}, err
	}
	roleID := commandOptions(i).str(optRole)
	if err := r.svc.Guilds.SetOrganizerRole(ctx, i.GuildID, roleID); err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("🛡️ Members with <@&%s> can now manage events.", roleID))), nil
}

// exportResults uploads after the acknowledgement; the links arrive as a follow-up.
func (r *Router) exportResults(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	eventID := commandOptions(i).str(optEventID)
	if _, err := r.svc.Events.Get(ctx, i.GuildID, eventID); err != nil {
		return reply{}, err
	}
	guildID := i.GuildID
	return reply{
		response: discord.DeferredEphemeral(),
		later: func(ctx context.Context) []*discordgo.WebhookParams {
			links, err := r.svc.Exports.Publish(ctx, guildID, eventID)
			if err != nil {
				return discord.EphemeralFollowups([]string{errorMessage(err)})
			}
			return discord.EphemeralFollowups([]string{fmt.Sprintf("📊 Results of `%s`:\n• Workbook: %s\n• Standings: %s", links.EventID, links.WorkbookURL, links.ChartURL)})
		},
	}, nil
}

func (r *Router) migrateEvents(_ context.Context, i *discordgo.Interaction) (reply, error) {
	if err := requireManager(i); err != nil {
		return reply{}, err
	}
	return reply{
		response: discord.DeferredEphemeral(),
		later: func(ctx context.Context) []*discordgo.WebhookParams {
			n, err := r.svc.Events.Migrate(ctx)
			if err != nil {
				return discord.EphemeralFollowups([]string{errorMessage(err)})
			}
			return discord.EphemeralFollowups([]string{fmt.Sprintf("🔧 Attached %d event(s) to their server.", n)})
		},
	}, nil
}
