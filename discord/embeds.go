package discord

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/bwmarrin/discordgo"
)

const (
	colorOpen      = 0x5865F2
	colorCompleted = 0x57F287
	colorTicket    = 0xFEE75C
	colorClosed    = 0x99AAB5
	colorLog       = 0xEB459E

	// ParticipantsPerPage bounds one follow-up message of the participant listing.
	ParticipantsPerPage = 20
)

var medals = map[int]string{1: "🥇", 2: "🥈", 3: "🥉"}

func formatEventDate(d *time.Time) string {
	if d == nil || d.IsZero() {
		return "TBA"
	}
	return fmt.Sprintf("<t:%d:F> (<t:%d:R>)", d.Unix(), d.Unix())
}

func participantCount(e *models.Event) string {
	if e.MaxParticipants > 0 {
		return fmt.Sprintf("%d/%d", e.ParticipantCount(), e.MaxParticipants)
	}
	return strconv.Itoa(e.ParticipantCount())
}

// EventEmbed is the announcement card of an event.
func EventEmbed(e *models.Event) *discordgo.MessageEmbed {
	status := "Registration open"
	color := colorOpen
	if e.Completed {
		status = "Finished"
		color = colorCompleted
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "📅 Date", Value: formatEventDate(e.EventDate), Inline: true},
		{Name: "👥 Participants", Value: participantCount(e), Inline: true},
		{Name: "Status", Value: status, Inline: true},
	}
	if e.RoleID != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Role", Value: "<@&" + e.RoleID + ">", Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:     e.Title,
		Color:     color,
		Fields:    fields,
		Footer:    &discordgo.MessageEmbedFooter{Text: "Event ID: " + e.EventID},
		Timestamp: e.CreatedAt.Format(time.RFC3339),
	}
}

// EventButtons is the Register / Cancel row under an announcement. Finished
// events keep the row with both buttons disabled.
func EventButtons(e *models.Event) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Register",
				Style:    discordgo.SuccessButton,
				CustomID: CustomIDRegister,
				Disabled: e.Completed,
				Emoji:    &discordgo.ComponentEmoji{Name: "🏁"},
			},
			discordgo.Button{
				Label:    "Cancel registration",
				Style:    discordgo.DangerButton,
				CustomID: CustomIDCancel,
				Disabled: e.Completed,
			},
		}},
	}
}

// EventMessage is the full announcement payload.
func EventMessage(e *models.Event) *discordgo.MessageSend {
	return &discordgo.MessageSend{
		Embeds:     []*discordgo.MessageEmbed{EventEmbed(e)},
		Components: EventButtons(e),
	}
}

// EventMessageEdit refreshes an existing announcement in place.
func EventMessageEdit(e *models.Event, channelID, messageID string) *discordgo.MessageEdit {
	components := EventButtons(e)
	edit := discordgo.NewMessageEdit(channelID, messageID).SetEmbeds([]*discordgo.MessageEmbed{EventEmbed(e)})
	edit.Components = &components
	return edit
}

func ResultsEmbed(e *models.Event) *discordgo.MessageEmbed {
	var b strings.Builder
	for _, r := range e.Results {
		prefix := medals[r.Position]
		if prefix == "" {
			prefix = strconv.Itoa(r.Position) + "."
		}
		name := "<@" + r.UserID + ">"
		if i := e.ParticipantIndex(r.UserID); i >= 0 && e.Participants[i].XboxNickname != "" {
			name += " (" + e.Participants[i].XboxNickname + ")"
		}
		fmt.Fprintf(&b, "%s %s - %d pts\n", prefix, name, r.Points)
	}
	if b.Len() == 0 {
		b.WriteString("No finishers recorded.")
	}
	return &discordgo.MessageEmbed{
		Title:       "🏆 Results: " + e.Title,
		Description: b.String(),
		Color:       colorCompleted,
		Footer:      &discordgo.MessageEmbedFooter{Text: "Event ID: " + e.EventID},
	}
}

// ParticipantPages splits the participant list into message sized chunks.
func ParticipantPages(e *models.Event) []string {
	if len(e.Participants) == 0 {
		return []string{fmt.Sprintf("**%s**: no participants yet.", e.Title)}
	}
	var pages []string
	total := (len(e.Participants) + ParticipantsPerPage - 1) / ParticipantsPerPage
	for start := 0; start < len(e.Participants); start += ParticipantsPerPage {
		end := min(start+ParticipantsPerPage, len(e.Participants))
		var b strings.Builder
		fmt.Fprintf(&b, "**%s** participants (%s), page %d/%d\n", e.Title, participantCount(e), start/ParticipantsPerPage+1, total)
		for i, p := range e.Participants[start:end] {
			fmt.Fprintf(&b, "%d. <@%s> | %s", start+i+1, p.ID, p.XboxNickname)
			if p.CarChoice != "" {
				fmt.Fprintf(&b, " | %s", p.CarChoice)
			}
			if p.TwitchUsername != "" {
				fmt.Fprintf(&b, " | twitch.tv/%s", p.TwitchUsername)
			}
			b.WriteByte('\n')
		}
		pages = append(pages, b.String())
	}
	return pages
}

func TicketEmbed(t *models.Ticket) *discordgo.MessageEmbed {
	color, status := colorTicket, "🟡 Open"
	if !t.IsOpen() {
		color, status = colorClosed, "⚪ Closed"
	}
	fields := []*discordgo.MessageEmbedField{
		{Name: "Reporter", Value: "<@" + t.Reporter.ID + ">", Inline: true},
		{Name: "Status", Value: status, Inline: true},
		{Name: "Involved", Value: orDash(t.InvolvedUsers)},
		{Name: "Video", Value: orDash(t.VideoLink)},
	}
	if t.Comment != "" {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Comment", Value: t.Comment})
	}
	if t.ClosedBy != nil {
		fields = append(fields, &discordgo.MessageEmbedField{Name: "Closed by", Value: "<@" + t.ClosedBy.ID + ">", Inline: true})
	}
	return &discordgo.MessageEmbed{
		Title:     fmt.Sprintf("🎫 Ticket #%d", t.TicketNumber),
		Color:     color,
		Fields:    fields,
		Timestamp: t.CreatedAt.Format(time.RFC3339),
	}
}

func CloseTicketButton(number int) []discordgo.MessageComponent {
	return []discordgo.MessageComponent{
		discordgo.ActionsRow{Components: []discordgo.MessageComponent{
			discordgo.Button{
				Label:    "Close ticket",
				Style:    discordgo.SecondaryButton,
				CustomID: CloseTicketPrefix + strconv.Itoa(number),
				Emoji:    &discordgo.ComponentEmoji{Name: "🔒"},
			},
		}},
	}
}

// LogEmbed is posted to the guild's log channel.
func LogEmbed(title, description string, fields map[string]string) *discordgo.MessageEmbed {
	embed := &discordgo.MessageEmbed{
		Title:       title,
		Description: description,
		Color:       colorLog,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
	}
	for _, name := range sortedKeys(fields) {
		embed.Fields = append(embed.Fields, &discordgo.MessageEmbedField{Name: name, Value: orDash(fields[name]), Inline: true})
	}
	return embed
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}
