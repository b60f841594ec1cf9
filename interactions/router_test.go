package interactions

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/discord/mocks"
	"github.com/Dosada05/forza-race-organizer/docstore"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/repositories"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

var testLogger = slog.New(slog.DiscardHandler)

const discordEpochMs = 1420070400000

func freshSnowflake() string {
	return strconv.FormatInt((time.Now().UnixMilli()-discordEpochMs)<<22, 10)
}

type countingMetrics struct {
	mu      sync.Mutex
	handled map[string]int
	failed  map[string]int
}

func newCountingMetrics() *countingMetrics {
	return &countingMetrics{handled: map[string]int{}, failed: map[string]int{}}
}

func (m *countingMetrics) CommandHandled(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handled[name]++
}

func (m *countingMetrics) CommandFailed(name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failed[name]++
}

func (m *countingMetrics) InteractionLatency(string, time.Duration) {}
func (m *countingMetrics) DiscordCallFailed(string)                 {}
func (m *countingMetrics) RegistrationChanged(string)               {}

type routerEnv struct {
	client  *mocks.MockClient
	events  repositories.EventRepository
	svc     Services
	metrics *countingMetrics
	seq     *discord.Sequencer
	router  *Router
}

func newRouterEnv(t *testing.T) *routerEnv {
	t.Helper()
	client := mocks.NewMockClient(gomock.NewController(t))
	store := docstore.NewMemory()
	settings := repositories.NewDocumentGuildSettingsRepository(store)
	events := repositories.NewDocumentEventRepository(store, client, testLogger, repositories.EventRepositoryOptions{})
	logs := services.NewLogService(settings, client, testLogger)
	permissions := services.NewPermissionChecker(settings)
	eventSvc := services.NewEventService(events, repositories.NewDocumentUserRepository(store), settings, client, logs, nil, nil, testLogger, time.UTC)

	svc := Services{
		Events:      eventSvc,
		Tickets:     services.NewTicketService(repositories.NewDocumentTicketRepository(store, testLogger), client, permissions, logs, testLogger),
		Guilds:      services.NewGuildService(settings, repositories.NewDocumentOrganizationRepository(store, testLogger), client, nil, testLogger),
		Logs:        logs,
		Exports:     services.NewExportService(eventSvc, nil, testLogger),
		Permissions: permissions,
	}
	m := newCountingMetrics()
	seq := discord.NewSequencer(context.Background(), client, 0, testLogger)
	return &routerEnv{
		client:  client,
		events:  events,
		svc:     svc,
		metrics: m,
		seq:     seq,
		router:  NewRouter(svc, client, seq, m, testLogger),
	}
}

func organizer() *discordgo.Member {
	return &discordgo.Member{
		User:        &discordgo.User{ID: "org", Username: "organizer"},
		Permissions: discordgo.PermissionManageServer,
	}
}

func driver(id string) *discordgo.Member {
	return &discordgo.Member{User: &discordgo.User{ID: id, Username: "driver" + id}}
}

func command(name string, member *discordgo.Member, opts ...*discordgo.ApplicationCommandInteractionDataOption) *discordgo.Interaction {
	return &discordgo.Interaction{
		ID:        freshSnowflake(),
		Type:      discordgo.InteractionApplicationCommand,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    member,
		Data:      discordgo.ApplicationCommandInteractionData{Name: name, Options: opts},
	}
}

func stringOpt(name, value string) *discordgo.ApplicationCommandInteractionDataOption {
	return &discordgo.ApplicationCommandInteractionDataOption{Name: name, Type: discordgo.ApplicationCommandOptionString, Value: value}
}

func (env *routerEnv) createEvent(t *testing.T) *models.Event {
	t.Helper()
	e, err := env.svc.Events.Create(context.Background(), services.CreateEventInput{
		GuildID: "g1", ChannelID: "c1", InteractionID: "1000",
		Title: "Sunday GT", MaxParticipants: 12,
		CreatedBy: services.Actor{ID: "org"},
	})
	require.NoError(t, err)
	return e
}

func TestRouter_PingIsAnsweredWithPong(t *testing.T) {
	env := newRouterEnv(t)
	resp := env.router.Handle(context.Background(), &discordgo.Interaction{Type: discordgo.InteractionPing})
	assert.Equal(t, discordgo.InteractionResponsePong, resp.Type)
}

func TestRouter_UnknownCommand(t *testing.T) {
	env := newRouterEnv(t)
	resp := env.router.Handle(context.Background(), command("nope", organizer()))

	require.NotNil(t, resp.Data)
	assert.Equal(t, msgUnknown, resp.Data.Content)
	assert.Equal(t, discord.EphemeralFlag, resp.Data.Flags)
	assert.Equal(t, 1, env.metrics.failed["nope"])
}

func TestRouter_RejectsDirectMessages(t *testing.T) {
	env := newRouterEnv(t)
	i := command(cmdEvents, nil)
	i.GuildID = ""
	i.User = &discordgo.User{ID: "u1"}

	resp := env.router.Handle(context.Background(), i)
	assert.Equal(t, msgGuildOnly, resp.Data.Content)
}

func TestRouter_CreateEventRequiresOrganizer(t *testing.T) {
	env := newRouterEnv(t)

	resp := env.router.Handle(context.Background(), command(cmdCreateEvent, driver("u1"), stringOpt(optTitle, "Sunday GT")))
	assert.Equal(t, msgForbidden, resp.Data.Content)
	assert.Equal(t, 1, env.metrics.failed[cmdCreateEvent])

	resp = env.router.Handle(context.Background(), command(cmdCreateEvent, organizer(), stringOpt(optTitle, "Sunday GT")))
	require.Len(t, resp.Data.Embeds, 1)
	assert.Contains(t, resp.Data.Content, "Event created with ID")
	assert.Equal(t, 1, env.metrics.handled[cmdCreateEvent])

	events, err := env.svc.Events.GuildEvents(context.Background(), "g1")
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Contains(t, resp.Data.Content, events[0].EventID)
}

func TestRouter_CreateEventValidationMessage(t *testing.T) {
	env := newRouterEnv(t)
	resp := env.router.Handle(context.Background(), command(cmdCreateEvent, organizer(),
		stringOpt(optTitle, "Sunday GT"),
		stringOpt(optDate, "banana"),
	))
	assert.Contains(t, resp.Data.Content, "Please check your input")
	assert.Contains(t, resp.Data.Content, "date")
}

func TestRouter_RegistrationFlow(t *testing.T) {
	env := newRouterEnv(t)
	ctx := context.Background()
	e := env.createEvent(t)

	env.client.EXPECT().SendMessage(gomock.Any(), "c1", gomock.Any()).Return(&discordgo.Message{ID: "m1"}, nil)
	_, err := env.svc.Events.Publish(ctx, "g1", e.EventID, "", services.Actor{ID: "org"})
	require.NoError(t, err)

	click := &discordgo.Interaction{
		ID:        freshSnowflake(),
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    driver("u1"),
		Message:   &discordgo.Message{ID: "m1"},
		Data:      discordgo.MessageComponentInteractionData{CustomID: discord.CustomIDRegister},
	}
	resp := env.router.Handle(ctx, click)
	require.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, discord.RegisterModalPrefix+e.Key, resp.Data.CustomID)

	env.client.EXPECT().EditMessage(gomock.Any(), gomock.Any()).Return(&discordgo.Message{ID: "m1"}, nil)
	submit := &discordgo.Interaction{
		ID:        freshSnowflake(),
		Type:      discordgo.InteractionModalSubmit,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    driver("u1"),
		Data: discordgo.ModalSubmitInteractionData{
			CustomID: discord.RegisterModalPrefix + e.Key,
			Components: []discordgo.MessageComponent{
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: discord.InputXboxNickname, Value: "  Speedy  "},
				}},
				&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
					&discordgo.TextInput{CustomID: discord.InputCarChoice, Value: "Supra"},
				}},
			},
		},
	}
	resp = env.router.Handle(ctx, submit)
	assert.Contains(t, resp.Data.Content, "You're registered for **Sunday GT** (1/12)")

	stored, err := env.events.GetByKey(ctx, e.Key)
	require.NoError(t, err)
	require.Len(t, stored.Participants, 1)
	assert.Equal(t, "Speedy", stored.Participants[0].XboxNickname)
	assert.Equal(t, "Supra", stored.Participants[0].CarChoice)

	resp = env.router.Handle(ctx, click)
	assert.Equal(t, discordgo.InteractionResponseChannelMessageWithSource, resp.Type)
	assert.Contains(t, resp.Data.Content, "already registered")
}

func TestRouter_RegisterOnUnknownMessage(t *testing.T) {
	env := newRouterEnv(t)
	resp := env.router.Handle(context.Background(), &discordgo.Interaction{
		Type:      discordgo.InteractionMessageComponent,
		GuildID:   "g1",
		ChannelID: "c1",
		Member:    driver("u1"),
		Message:   &discordgo.Message{ID: "missing"},
		Data:      discordgo.MessageComponentInteractionData{CustomID: discord.CustomIDRegister},
	})
	assert.Equal(t, "❌ Event not found.", resp.Data.Content)
}

func TestRouter_RecoversFromPanics(t *testing.T) {
	client := mocks.NewMockClient(gomock.NewController(t))
	m := newCountingMetrics()
	router := NewRouter(Services{}, client, discord.NewSequencer(context.Background(), client, 0, testLogger), m, testLogger)

	resp := router.Handle(context.Background(), command(cmdEvents, organizer()))
	assert.Equal(t, msgInternal, resp.Data.Content)
	assert.Equal(t, 1, m.failed[cmdEvents])
}

func TestRouter_ServeSendsParticipantPagesAfterAck(t *testing.T) {
	env := newRouterEnv(t)
	ctx := context.Background()
	e := env.createEvent(t)
	for n := range 25 {
		_, err := env.events.AddParticipant(ctx, e.Key, models.Participant{ID: strconv.Itoa(100 + n), XboxNickname: "gt" + strconv.Itoa(n)})
		require.NoError(t, err)
	}

	var order []string
	var mu sync.Mutex
	record := func(s string) {
		mu.Lock()
		defer mu.Unlock()
		order = append(order, s)
	}
	env.client.EXPECT().Followup(gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, _ *discordgo.Interaction, p *discordgo.WebhookParams) (*discordgo.Message, error) {
			record(p.Content)
			return &discordgo.Message{}, nil
		}).Times(2)

	err := env.router.Serve(ctx, command(cmdParticipants, driver("u1"), stringOpt(optEventID, e.EventID)),
		func(resp *discordgo.InteractionResponse) error {
			assert.Equal(t, discordgo.InteractionResponseDeferredChannelMessageWithSource, resp.Type)
			record("ack")
			return nil
		})
	require.NoError(t, err)
	env.seq.Wait()

	require.Len(t, order, 3)
	assert.Equal(t, "ack", order[0])
	assert.Contains(t, order[1], "page 1/2")
	assert.Contains(t, order[2], "page 2/2")
}

func TestRouter_ReportOpensTicketModal(t *testing.T) {
	env := newRouterEnv(t)
	resp := env.router.Handle(context.Background(), command(cmdReport, driver("u1")))
	require.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, discord.TicketModalPrefix+"c1", resp.Data.CustomID)
}

func TestRouter_ManagerCommandsCheckPermissions(t *testing.T) {
	env := newRouterEnv(t)
	role := &discordgo.ApplicationCommandInteractionDataOption{Name: optRole, Type: discordgo.ApplicationCommandOptionRole, Value: "777"}

	resp := env.router.Handle(context.Background(), command(cmdSetOrganizerRole, driver("u1"), role))
	assert.Equal(t, msgForbidden, resp.Data.Content)

	resp = env.router.Handle(context.Background(), command(cmdSetOrganizerRole, organizer(), role))
	assert.Contains(t, resp.Data.Content, "<@&777>")

	member := driver("u2")
	member.Roles = []string{"777"}
	ok, err := env.svc.Permissions.CanOrganize(context.Background(), "g1", member)
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestDefinitions_EveryCommandIsRouted(t *testing.T) {
	env := newRouterEnv(t)
	seen := map[string]bool{}
	for _, def := range Definitions() {
		assert.False(t, seen[def.Name], "duplicate command %s", def.Name)
		seen[def.Name] = true
		assert.Contains(t, env.router.commands, def.Name)
		require.NotNil(t, def.DMPermission)
		assert.False(t, *def.DMPermission)
	}
	assert.Len(t, seen, len(env.router.commands))
}
