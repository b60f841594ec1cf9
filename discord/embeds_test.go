package discord

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/Dosada05/forza-race-organizer/discord/mocks"
	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestEventEmbed_ShowsDateAndCount(t *testing.T) {
	date := time.Date(2025, 4, 12, 20, 0, 0, 0, time.UTC)
	e := &models.Event{
		EventID:         "FH5-123456",
		Title:           "Sunday GT3",
		EventDate:       &date,
		MaxParticipants: 12,
		Participants:    []models.Participant{{ID: "1"}, {ID: "2"}},
	}
	embed := EventEmbed(e)
	assert.Equal(t, "Sunday GT3", embed.Title)
	require.GreaterOrEqual(t, len(embed.Fields), 2)
	assert.Contains(t, embed.Fields[0].Value, strconv.FormatInt(date.Unix(), 10))
	assert.Equal(t, "2/12", embed.Fields[1].Value)
	assert.Contains(t, embed.Footer.Text, "FH5-123456")

	e.EventDate = nil
	e.MaxParticipants = 0
	embed = EventEmbed(e)
	assert.Equal(t, "TBA", embed.Fields[0].Value)
	assert.Equal(t, "2", embed.Fields[1].Value)
}

func TestEventButtons(t *testing.T) {
	rows := EventButtons(&models.Event{})
	require.Len(t, rows, 1)
	row := rows[0].(discordgo.ActionsRow)
	require.Len(t, row.Components, 2)
	assert.Equal(t, CustomIDRegister, row.Components[0].(discordgo.Button).CustomID)
	assert.Equal(t, CustomIDCancel, row.Components[1].(discordgo.Button).CustomID)

	row = EventButtons(&models.Event{Completed: true})[0].(discordgo.ActionsRow)
	assert.True(t, row.Components[0].(discordgo.Button).Disabled)
}

func TestParticipantPages_ChunksOfTwenty(t *testing.T) {
	e := &models.Event{Title: "Big grid"}
	for i := 1; i <= 45; i++ {
		e.Participants = append(e.Participants, models.Participant{ID: strconv.Itoa(i), XboxNickname: fmt.Sprintf("gt%d", i)})
	}
	pages := ParticipantPages(e)
	require.Len(t, pages, 3)
	assert.Contains(t, pages[0], "page 1/3")
	assert.Contains(t, pages[0], "1. <@1> | gt1")
	assert.Contains(t, pages[1], "21. <@21> | gt21")
	assert.Equal(t, 5, strings.Count(pages[2], "\n")-1)

	assert.Len(t, ParticipantPages(&models.Event{Title: "Empty"}), 1)
}

func TestResultsEmbed(t *testing.T) {
	e := &models.Event{
		Title:        "Cup",
		Participants: []models.Participant{{ID: "111", XboxNickname: "Fast One"}},
		Results: []models.Result{
			{UserID: "111", Position: 1, Points: 25},
			{UserID: "444", Position: 4, Points: 12},
		},
	}
	embed := ResultsEmbed(e)
	assert.Contains(t, embed.Description, "🥇 <@111> (Fast One) - 25 pts")
	assert.Contains(t, embed.Description, "4. <@444> - 12 pts")
}

func TestParseCloseTicketID(t *testing.T) {
	n, ok := ParseCloseTicketID("close_ticket_17")
	assert.True(t, ok)
	assert.Equal(t, 17, n)
	for _, bad := range []string{"close_ticket_", "close_ticket_x", "close_ticket_-2", "register_event"} {
		_, ok := ParseCloseTicketID(bad)
		assert.False(t, ok, bad)
	}
}

func TestModalValues(t *testing.T) {
	data := discordgo.ModalSubmitInteractionData{
		CustomID: RegisterModalPrefix + "k1",
		Components: []discordgo.MessageComponent{
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: InputXboxNickname, Value: "  Racer X "},
			}},
			&discordgo.ActionsRow{Components: []discordgo.MessageComponent{
				&discordgo.TextInput{CustomID: InputCarChoice, Value: "Porsche 911 GT3 RS"},
			}},
		},
	}
	values := ModalValues(data)
	assert.Equal(t, "Racer X", values[InputXboxNickname])
	assert.Equal(t, "Porsche 911 GT3 RS", values[InputCarChoice])
	assert.Empty(t, values[InputTwitchUsername])
}

func TestRegistrationModal_Prefills(t *testing.T) {
	resp := RegistrationModal("k1", "A very long event title that will not fit in a modal", &models.UserProfile{XboxNickname: "Racer X"})
	assert.Equal(t, discordgo.InteractionResponseModal, resp.Type)
	assert.Equal(t, RegisterModalPrefix+"k1", resp.Data.CustomID)
	assert.LessOrEqual(t, len([]rune(resp.Data.Title)), 45)
	input := resp.Data.Components[0].(discordgo.ActionsRow).Components[0].(discordgo.TextInput)
	assert.Equal(t, "Racer X", input.Value)
}

func TestComputePermissions(t *testing.T) {
	roles := []*discordgo.Role{
		{ID: "g1", Permissions: discordgo.PermissionViewChannel},
		{ID: "mod", Permissions: discordgo.PermissionManageServer},
		{ID: "admin", Permissions: discordgo.PermissionAdministrator},
	}
	assert.Equal(t, int64(discordgo.PermissionViewChannel), ComputePermissions("g1", roles, nil))
	assert.Equal(t, int64(discordgo.PermissionViewChannel|discordgo.PermissionManageServer), ComputePermissions("g1", roles, []string{"mod"}))
	assert.Equal(t, int64(discordgo.PermissionAll), ComputePermissions("g1", roles, []string{"admin"}))
}

func TestMemberPermissions_DegradesToZero(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	client := mocks.NewMockClient(ctrl)

	client.EXPECT().Guild(gomock.Any(), "g1").Return(nil, &UpstreamError{Op: "guild", Status: 403, Err: errors.New("missing access")})
	assert.Equal(t, DefaultPermissions, MemberPermissions(ctx, client, "g1", "u1"))

	guild := &discordgo.Guild{ID: "g1", OwnerID: "owner", Roles: []*discordgo.Role{
		{ID: "g1", Permissions: discordgo.PermissionSendMessages},
		{ID: "mod", Permissions: discordgo.PermissionManageServer},
	}}
	client.EXPECT().Guild(gomock.Any(), "g1").Return(guild, nil)
	client.EXPECT().GuildMember(gomock.Any(), "g1", "u1").Return(nil, &UpstreamError{Op: "guild_member", Status: 404})
	assert.Equal(t, DefaultPermissions, MemberPermissions(ctx, client, "g1", "u1"))

	client.EXPECT().Guild(gomock.Any(), "g1").Return(guild, nil)
	client.EXPECT().GuildMember(gomock.Any(), "g1", "u2").Return(&discordgo.Member{Roles: []string{"mod"}}, nil)
	want := strconv.FormatInt(discordgo.PermissionSendMessages|discordgo.PermissionManageServer, 10)
	assert.Equal(t, want, MemberPermissions(ctx, client, "g1", "u2"))

	client.EXPECT().Guild(gomock.Any(), "g1").Return(guild, nil)
	assert.Equal(t, strconv.FormatInt(discordgo.PermissionAll, 10), MemberPermissions(ctx, client, "g1", "owner"))
}

func TestUpstreamError(t *testing.T) {
	inner := errors.New("boom")
	err := fmt.Errorf("publish: %w", &UpstreamError{Op: "send_message", Status: 404, Err: inner})
	assert.True(t, IsNotFound(err))
	assert.ErrorIs(t, err, inner)
	assert.Contains(t, err.Error(), "status 404")
	assert.False(t, IsNotFound(inner))
}
