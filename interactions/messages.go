package interactions

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/Dosada05/forza-race-organizer/models"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/bwmarrin/discordgo"
)

const (
	msgUnknown   = "❓ Unknown interaction."
	msgGuildOnly = "🏁 This bot only works inside a server."
	msgInternal  = "💥 Something went wrong. Please try again later."
	msgDone      = "✅ Done."
	msgForbidden = "⛔ You don't have permission to do that."
)

// errorMessage turns a service error into the text of an ephemeral reply.
func errorMessage(err error) string {
	var verr *services.ValidationError
	var ferr *services.ResultsFormatError
	switch {
	case errors.As(err, &ferr):
		return fmt.Sprintf("⚠️ Could not read the results on line %d (`%s`): %s.\nUse one line per driver: `1. @driver`.", ferr.Line, ferr.Text, ferr.Reason)
	case errors.Is(err, services.ErrResultsFormat):
		return "⚠️ " + err.Error() + ". Use one line per driver: `1. @driver`."
	case errors.As(err, &verr):
		keys := make([]string, 0, len(verr.Fields))
		for k := range verr.Fields {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		lines := make([]string, 0, len(keys))
		for _, k := range keys {
			lines = append(lines, fmt.Sprintf("• **%s** %s", k, verr.Fields[k]))
		}
		return "⚠️ Please check your input:\n" + strings.Join(lines, "\n")
	case errors.Is(err, services.ErrForbiddenOperation):
		return msgForbidden
	case errors.Is(err, services.ErrEventNotFound):
		return "❌ Event not found."
	case errors.Is(err, services.ErrTicketNotFound):
		return "❌ Ticket not found."
	case errors.Is(err, services.ErrAlreadyRegistered),
		errors.Is(err, services.ErrNotRegistered),
		errors.Is(err, services.ErrEventCompleted),
		errors.Is(err, services.ErrTicketAlreadyClosed),
		errors.Is(err, services.ErrExportsDisabled):
		return "⚠️ " + capitalize(userFacing(err).Error()) + "."
	case errors.Is(err, services.ErrDiscordUnavailable):
		return "📡 Discord did not accept the request. Check the bot's permissions and try again."
	}
	return msgInternal
}

// userFacing unwraps to the sentinel so wrapped details stay in the logs.
func userFacing(err error) error {
	for _, target := range []error{
		services.ErrAlreadyRegistered,
		services.ErrNotRegistered,
		services.ErrEventCompleted,
		services.ErrTicketAlreadyClosed,
		services.ErrExportsDisabled,
	} {
		if errors.Is(err, target) {
			return target
		}
	}
	return err
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

// isUnexpected separates failures worth an error log from user mistakes.
func isUnexpected(err error) bool {
	for _, expected := range []error{
		services.ErrValidationFailed,
		services.ErrResultsFormat,
		services.ErrForbiddenOperation,
		services.ErrEventNotFound,
		services.ErrTicketNotFound,
		services.ErrAlreadyRegistered,
		services.ErrNotRegistered,
		services.ErrEventCompleted,
		services.ErrTicketAlreadyClosed,
		services.ErrExportsDisabled,
	} {
		if errors.Is(err, expected) {
			return false
		}
	}
	return true
}

const maxListedEvents = 25

// eventListEmbed lists events newest first, one line each.
func eventListEmbed(title string, events []*models.Event) *discordgo.MessageEmbed {
	if len(events) == 0 {
		return &discordgo.MessageEmbed{Title: title, Description: "No events yet."}
	}
	var b strings.Builder
	for n, e := range events {
		if n == maxListedEvents {
			fmt.Fprintf(&b, "…and %d more", len(events)-maxListedEvents)
			break
		}
		status := "📝 draft"
		switch {
		case e.Completed:
			status = "🏆 completed"
		case e.Published:
			status = "📣 open"
		}
		fmt.Fprintf(&b, "`%s` **%s** · %s · %s", e.EventID, e.Title, participantsLabel(e), status)
		if e.EventDate != nil {
			fmt.Fprintf(&b, " · <t:%d:f>", e.EventDate.Unix())
		}
		b.WriteByte('\n')
	}
	return &discordgo.MessageEmbed{Title: title, Description: b.String()}
}

func participantsLabel(e *models.Event) string {
	if e.MaxParticipants > 0 {
		return fmt.Sprintf("%d/%d", e.ParticipantCount(), e.MaxParticipants)
	}
	return fmt.Sprintf("%d drivers", e.ParticipantCount())
}
