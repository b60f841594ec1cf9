package discord

import (
	"maps"
	"slices"
	"strconv"
	"strings"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/bwmarrin/discordgo"
)

// Custom ids carried by buttons and modals. Prefix ids are followed by a key.
const (
	CustomIDRegister    = "register_event"
	CustomIDCancel      = "cancel_registration"
	CloseTicketPrefix   = "close_ticket_"
	RegisterModalPrefix = "register_modal_"
	ResultsModalPrefix  = "results_modal_"
	TicketModalPrefix   = "ticket_modal_"

	InputXboxNickname   = "xbox_nickname"
	InputTwitchUsername = "twitch_username"
	InputCarChoice      = "car_choice"
	InputResults        = "results_text"
	InputInvolvedUsers  = "involved_users"
	InputVideoLink      = "video_link"
	InputComment        = "comment"
)

// EphemeralFlag marks a response visible only to the invoking user.
const EphemeralFlag = discordgo.MessageFlagsEphemeral

func Ephemeral(content string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Flags: EphemeralFlag},
	}
}

func EphemeralEmbed(embed *discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Embeds: []*discordgo.MessageEmbed{embed}, Flags: EphemeralFlag},
	}
}

func Public(content string, embeds ...*discordgo.MessageEmbed) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Content: content, Embeds: embeds},
	}
}

// DeferredEphemeral acknowledges now; the content arrives through follow-ups.
func DeferredEphemeral() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: EphemeralFlag},
	}
}

func Pong() *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{Type: discordgo.InteractionResponsePong}
}

func textInput(id, label string, style discordgo.TextInputStyle, required bool, value string, maxLen int) discordgo.MessageComponent {
	return discordgo.ActionsRow{Components: []discordgo.MessageComponent{
		discordgo.TextInput{
			CustomID:  id,
			Label:     label,
			Style:     style,
			Required:  required,
			Value:     value,
			MaxLength: maxLen,
		},
	}}
}

// RegistrationModal asks for the racing identity, prefilled from the last registration.
func RegistrationModal(eventKey, title string, prefill *models.UserProfile) *discordgo.InteractionResponse {
	var xbox, twitch string
	if prefill != nil {
		xbox, twitch = prefill.XboxNickname, prefill.TwitchUsername
	}
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: RegisterModalPrefix + eventKey,
			Title:    truncate("Register: "+title, 45),
			Components: []discordgo.MessageComponent{
				textInput(InputXboxNickname, "Xbox gamertag", discordgo.TextInputShort, true, xbox, 32),
				textInput(InputTwitchUsername, "Twitch username (optional)", discordgo.TextInputShort, false, twitch, 32),
				textInput(InputCarChoice, "Car (optional)", discordgo.TextInputShort, false, "", 80),
			},
		},
	}
}

// ResultsModal takes one "N. @user" line per finisher.
func ResultsModal(eventKey, title string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: ResultsModalPrefix + eventKey,
			Title:    truncate("Results: "+title, 45),
			Components: []discordgo.MessageComponent{
				textInput(InputResults, "One line per finisher: 1. @user", discordgo.TextInputParagraph, true, "", 4000),
			},
		},
	}
}

func TicketModal(key string) *discordgo.InteractionResponse {
	return &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseModal,
		Data: &discordgo.InteractionResponseData{
			CustomID: TicketModalPrefix + key,
			Title:    "Report an incident",
			Components: []discordgo.MessageComponent{
				textInput(InputInvolvedUsers, "Drivers involved", discordgo.TextInputShort, true, "", 200),
				textInput(InputVideoLink, "Video link", discordgo.TextInputShort, true, "", 300),
				textInput(InputComment, "What happened (optional)", discordgo.TextInputParagraph, false, "", 1000),
			},
		},
	}
}

// ModalValues flattens the text inputs of a modal submission into id -> value.
func ModalValues(data discordgo.ModalSubmitInteractionData) map[string]string {
	values := make(map[string]string)
	for _, c := range data.Components {
		row, ok := c.(*discordgo.ActionsRow)
		if !ok {
			continue
		}
		for _, inner := range row.Components {
			if input, ok := inner.(*discordgo.TextInput); ok {
				values[input.CustomID] = strings.TrimSpace(input.Value)
			}
		}
	}
	return values
}

// ParseCloseTicketID extracts the ticket number from a close_ticket_{n} custom id.
func ParseCloseTicketID(customID string) (int, bool) {
	rest, ok := strings.CutPrefix(customID, CloseTicketPrefix)
	if !ok {
		return 0, false
	}
	n, err := strconv.Atoi(rest)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-1]) + "…"
}

func sortedKeys(m map[string]string) []string {
	return slices.Sorted(maps.Keys(m))
}
