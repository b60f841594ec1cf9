package models

import "time"

type TicketStatus string

const (
	TicketOpen   TicketStatus = "open"
	TicketClosed TicketStatus = "closed"
)

// TicketActor identifies the member who reported or closed a ticket.
type TicketActor struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Ticket is an incident report filed during or after a race.
type Ticket struct {
	TicketNumber  int          `json:"ticket_number"`
	GuildID       string       `json:"guild_id"`
	Reporter      TicketActor  `json:"reporter"`
	InvolvedUsers string       `json:"involved_users"`
	VideoLink     string       `json:"video_link"`
	Comment       string       `json:"comment,omitempty"`
	Status        TicketStatus `json:"status"`
	ThreadID      string       `json:"thread_id,omitempty"`
	ChannelID     string       `json:"channel_id"`
	CreatedAt     time.Time    `json:"created_at"`
	ClosedBy      *TicketActor `json:"closed_by,omitempty"`
	ClosedAt      *time.Time   `json:"closed_at,omitempty"`
}

func (t *Ticket) IsOpen() bool {
	return t.Status == TicketOpen
}
