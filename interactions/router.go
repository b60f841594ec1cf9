// Package interactions routes Discord interactions (slash commands, button clicks
// and modal submissions) to the services and turns every outcome into a response.
package interactions

import (
	"context"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
	"time"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/metrics"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/bwmarrin/discordgo"
)

// Services are the operations interactions can trigger.
type Services struct {
	Events      *services.EventService
	Tickets     *services.TicketService
	Guilds      *services.GuildService
	Logs        *services.LogService
	Exports     *services.ExportService
	Permissions *services.PermissionChecker
}

// reply is the synchronous acknowledgement plus follow-ups that may only be sent
// once Discord received it.
type reply struct {
	response  *discordgo.InteractionResponse
	followups []*discordgo.WebhookParams
	// later produces follow-ups after the acknowledgement, for work that does not fit Discord's ack window.
	later func(ctx context.Context) []*discordgo.WebhookParams
}

func respond(resp *discordgo.InteractionResponse) reply {
	return reply{response: resp}
}

type handlerFunc func(ctx context.Context, i *discordgo.Interaction) (reply, error)

type prefixRoute struct {
	prefix  string
	handler handlerFunc
}

type Router struct {
	svc        Services
	client     discord.Client
	sequencer  *discord.Sequencer
	metrics    metrics.Collector
	logger     *slog.Logger
	commands   map[string]handlerFunc
	components []prefixRoute
	modals     []prefixRoute
	// GatewayTimeout bounds handling of interactions received over the gateway.
	GatewayTimeout time.Duration
}

func NewRouter(svc Services, client discord.Client, sequencer *discord.Sequencer, m metrics.Collector, logger *slog.Logger) *Router {
	if m == nil {
		m = metrics.NoOp{}
	}
	r := &Router{
		svc:            svc,
		client:         client,
		sequencer:      sequencer,
		metrics:        m,
		logger:         logger,
		GatewayTimeout: 10 * time.Second,
	}
	r.commands = map[string]handlerFunc{
		cmdCreateEvent:      r.createEvent,
		cmdPublishEvent:     r.publishEvent,
		cmdParticipants:     r.participants,
		cmdResults:          r.results,
		cmdDeleteEvent:      r.deleteEvent,
		cmdEvents:           r.events,
		cmdMyEvents:         r.myEvents,
		cmdReport:           r.report,
		cmdSetLogChannel:    r.setLogChannel,
		cmdSetOrganizerRole: r.setOrganizerRole,
		cmdExportResults:    r.exportResults,
		cmdMigrateEvents:    r.migrateEvents,
	}
	r.components = []prefixRoute{
		{discord.CustomIDRegister, r.registerButton},
		{discord.CustomIDCancel, r.cancelButton},
		{discord.CloseTicketPrefix, r.closeTicketButton},
	}
	r.modals = []prefixRoute{
		{discord.RegisterModalPrefix, r.registrationSubmit},
		{discord.ResultsModalPrefix, r.resultsSubmit},
		{discord.TicketModalPrefix, r.ticketSubmit},
	}
	return r
}

// Handle returns the synchronous response for an interaction. Follow-ups are
// only sent through Serve, which knows when the response reached Discord.
func (r *Router) Handle(ctx context.Context, i *discordgo.Interaction) *discordgo.InteractionResponse {
	return r.route(ctx, i).response
}

// Serve handles the interaction, hands the response to send and then starts the
// follow-up sequence, if any.
func (r *Router) Serve(ctx context.Context, i *discordgo.Interaction, send func(*discordgo.InteractionResponse) error) error {
	rep := r.route(ctx, i)
	if err := send(rep.response); err != nil {
		return err
	}
	switch {
	case rep.later != nil:
		r.sequencer.Later(i, rep.later)
	case len(rep.followups) > 0:
		r.sequencer.Go(i, rep.followups)
	}
	return nil
}

// OnInteractionCreate is the discordgo gateway handler; the response goes out over REST.
func (r *Router) OnInteractionCreate(_ *discordgo.Session, ic *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), r.GatewayTimeout)
	defer cancel()
	err := r.Serve(ctx, ic.Interaction, func(resp *discordgo.InteractionResponse) error {
		return r.client.Respond(ctx, ic.Interaction, resp)
	})
	if err != nil {
		r.logger.ErrorContext(ctx, "failed to respond to interaction", slog.String("interaction_id", ic.ID), slog.Any("error", err))
	}
}

func (r *Router) route(ctx context.Context, i *discordgo.Interaction) reply {
	start := time.Now()
	kind := interactionKind(i.Type)
	defer func() { r.metrics.InteractionLatency(kind, time.Since(start)) }()

	if i.Type == discordgo.InteractionPing {
		return respond(discord.Pong())
	}

	name, handler := r.lookup(i)
	if handler == nil {
		r.metrics.CommandFailed(name)
		r.logger.WarnContext(ctx, "unknown interaction", slog.String("kind", kind), slog.String("name", name))
		return respond(discord.Ephemeral(msgUnknown))
	}
	if i.GuildID == "" {
		r.metrics.CommandFailed(name)
		return respond(discord.Ephemeral(msgGuildOnly))
	}

	rep := r.run(ctx, name, handler, i)
	if rep.response == nil {
		rep.response = discord.Ephemeral(msgDone)
	}
	return rep
}

func (r *Router) lookup(i *discordgo.Interaction) (string, handlerFunc) {
	switch i.Type {
	case discordgo.InteractionApplicationCommand:
		name := i.ApplicationCommandData().Name
		return name, r.commands[name]
	case discordgo.InteractionMessageComponent:
		return matchPrefix(r.components, i.MessageComponentData().CustomID)
	case discordgo.InteractionModalSubmit:
		return matchPrefix(r.modals, i.ModalSubmitData().CustomID)
	}
	return fmt.Sprintf("type_%d", i.Type), nil
}

func matchPrefix(routes []prefixRoute, customID string) (string, handlerFunc) {
	for _, rt := range routes {
		if strings.HasPrefix(customID, rt.prefix) {
			return rt.prefix, rt.handler
		}
	}
	return customID, nil
}

// run executes a handler; errors and panics become ephemeral replies.
func (r *Router) run(ctx context.Context, name string, h handlerFunc, i *discordgo.Interaction) (rep reply) {
	defer func() {
		if p := recover(); p != nil {
			r.metrics.CommandFailed(name)
			r.logger.ErrorContext(ctx, "interaction handler panicked",
				slog.String("name", name),
				slog.Any("panic", p),
				slog.String("stack", string(debug.Stack())),
			)
			rep = respond(discord.Ephemeral(msgInternal))
		}
	}()

	rep, err := h(ctx, i)
	if err != nil {
		r.metrics.CommandFailed(name)
		level := slog.LevelInfo
		if isUnexpected(err) {
			level = slog.LevelError
		}
		r.logger.Log(ctx, level, "interaction failed",
			slog.String("name", name),
			slog.String("guild_id", i.GuildID),
			slog.String("user_id", actor(i).ID),
			slog.Any("error", err),
		)
		return respond(discord.Ephemeral(errorMessage(err)))
	}
	r.metrics.CommandHandled(name)
	return rep
}

func interactionKind(t discordgo.InteractionType) string {
	switch t {
	case discordgo.InteractionPing:
		return "ping"
	case discordgo.InteractionApplicationCommand:
		return "command"
	case discordgo.InteractionMessageComponent:
		return "component"
	case discordgo.InteractionModalSubmit:
		return "modal"
	}
	return "other"
}

// actor is the invoking user; Member is set inside guilds, User in DMs.
func actor(i *discordgo.Interaction) services.Actor {
	if i.Member != nil && i.Member.User != nil {
		return services.Actor{ID: i.Member.User.ID, Username: i.Member.User.Username}
	}
	if i.User != nil {
		return services.Actor{ID: i.User.ID, Username: i.User.Username}
	}
	return services.Actor{}
}
