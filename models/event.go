package models

import "time"

// Event is a race event announced in a guild channel that members register for.
type Event struct {
	EventID         string        `json:"event_id"`
	GuildID         string        `json:"guild_id,omitempty"`
	ChannelID       string        `json:"channel_id"`
	Title           string        `json:"title"`
	EventDate       *time.Time    `json:"event_date,omitempty"`
	MaxParticipants int           `json:"max_participants"`
	RoleID          string        `json:"role_id,omitempty"`
	CreatedBy       string        `json:"created_by,omitempty"`
	CreatedAt       time.Time     `json:"created_at"`
	Published       bool          `json:"published"`
	Completed       bool          `json:"completed"`
	MessageIDs      []string      `json:"message_ids"`
	Participants    []Participant `json:"participants"`
	Results         []Result      `json:"results,omitempty"`

	// Key is the storage key under events/, not persisted in the document.
	Key string `json:"-"`
}

// EventDraft carries the caller supplied fields of a new event.
type EventDraft struct {
	Title           string
	EventDate       *time.Time
	MaxParticipants int
	RoleID          string
	CreatedBy       string
}

// EventPatch lists the fields updateEvent may change; nil fields are left alone.
type EventPatch struct {
	Title           *string
	EventDate       *time.Time
	MaxParticipants *int
	RoleID          *string
	ChannelID       *string
	Published       *bool
	Completed       *bool
}

// Result is one finishing position parsed from the results text.
type Result struct {
	UserID   string `json:"userId"`
	Position int    `json:"position"`
	Points   int    `json:"points"`
}

func (e *Event) ParticipantIndex(userID string) int {
	for i, p := range e.Participants {
		if p.ID == userID {
			return i
		}
	}
	return -1
}

func (e *Event) HasParticipant(userID string) bool {
	return e.ParticipantIndex(userID) >= 0
}

func (e *Event) HasMessage(messageID string) bool {
	for _, id := range e.MessageIDs {
		if id == messageID {
			return true
		}
	}
	return false
}

// ParticipantCount is shown as "registered/max" in the announcement embed.
func (e *Event) ParticipantCount() int {
	return len(e.Participants)
}
