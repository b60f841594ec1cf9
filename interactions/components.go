package interactions

import (
	"context"
	"fmt"
	"strings"

	"github.com/Dosada05/forza-race-organizer/discord"
	"github.com/Dosada05/forza-race-organizer/services"
	"github.com/bwmarrin/discordgo"
)

func messageID(i *discordgo.Interaction) string {
	if i.Message == nil {
		return ""
	}
	return i.Message.ID
}

// registerButton opens the registration modal for the event behind the clicked message.
func (r *Router) registerButton(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	e, profile, err := r.svc.Events.PrepareRegistration(ctx, i.GuildID, messageID(i), i.ChannelID, actor(i).ID)
	if err != nil {
		return reply{}, err
	}
	return respond(discord.RegistrationModal(e.Key, e.Title, profile)), nil
}

func (r *Router) cancelButton(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	e, err := r.svc.Events.CancelRegistration(ctx, i.GuildID, messageID(i), i.ChannelID, actor(i))
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("👋 Your registration for **%s** was cancelled.", e.Title))), nil
}

func (r *Router) closeTicketButton(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	number, ok := discord.ParseCloseTicketID(i.MessageComponentData().CustomID)
	if !ok {
		return reply{}, services.ErrTicketNotFound
	}
	t, err := r.svc.Tickets.Close(ctx, i.GuildID, number, actor(i), i.Member)
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("🔒 Ticket #%d closed.", t.TicketNumber))), nil
}

func (r *Router) registrationSubmit(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	data := i.ModalSubmitData()
	values := discord.ModalValues(data)
	e, err := r.svc.Events.Register(ctx, services.RegistrationInput{
		GuildID:        i.GuildID,
		EventKey:       strings.TrimPrefix(data.CustomID, discord.RegisterModalPrefix),
		User:           actor(i),
		XboxNickname:   values[discord.InputXboxNickname],
		TwitchUsername: values[discord.InputTwitchUsername],
		CarChoice:      values[discord.InputCarChoice],
	})
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("✅ You're registered for **%s** (%s).", e.Title, participantsLabel(e)))), nil
}

func (r *Router) resultsSubmit(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	if err := r.requireOrganizer(ctx, i); err != nil {
		return reply{}, err
	}
	data := i.ModalSubmitData()
	e, err := r.svc.Events.RecordResults(ctx, i.GuildID,
		strings.TrimPrefix(data.CustomID, discord.ResultsModalPrefix),
		discord.ModalValues(data)[discord.InputResults],
		actor(i),
	)
	if err != nil {
		return reply{}, err
	}
	return respond(discord.Ephemeral(fmt.Sprintf("🏆 Results saved for **%s**: %d finishers.", e.Title, len(e.Results)))), nil
}

func (r *Router) ticketSubmit(ctx context.Context, i *discordgo.Interaction) (reply, error) {
	data := i.ModalSubmitData()
	values := discord.ModalValues(data)
	// The modal id carries the channel /report was used in.
	channelID := strings.TrimPrefix(data.CustomID, discord.TicketModalPrefix)
	if channelID == "" {
		channelID = i.ChannelID
	}
	t, err := r.svc.Tickets.Create(ctx, services.TicketInput{
		GuildID:       i.GuildID,
		ChannelID:     channelID,
		Reporter:      actor(i),
		InvolvedUsers: values[discord.InputInvolvedUsers],
		VideoLink:     values[discord.InputVideoLink],
		Comment:       values[discord.InputComment],
	})
	if err != nil {
		return reply{}, err
	}
	where := t.ChannelID
	if t.ThreadID != "" {
		where = t.ThreadID
	}
	return respond(discord.Ephemeral(fmt.Sprintf("🎫 Ticket #%d created in <#%s>. The stewards will review it.", t.TicketNumber, where))), nil
}
