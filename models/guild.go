package models

import "time"

// GuildRoles is stored at guild_roles/{guildId}.
type GuildRoles struct {
	OrganizerRoleID   string    `json:"organizer_role_id,omitempty"`
	ParticipantRoleID string    `json:"participant_role_id,omitempty"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// LogSettings is stored at logging/{guildId}.
type LogSettings struct {
	ChannelID string    `json:"channel_id"`
	UpdatedAt time.Time `json:"updated_at"`
}

// GuildSettings is the combined view served to the Activity settings page.
type GuildSettings struct {
	GuildID               string `json:"guildId"`
	AnnouncementChannelID string `json:"announcementChannelId,omitempty" validate:"omitempty,numeric"`
	ParticipantRoleID     string `json:"participantRoleId,omitempty" validate:"omitempty,numeric"`
	OrganizerRoleID       string `json:"organizerRoleId,omitempty" validate:"omitempty,numeric"`
	LogChannelID          string `json:"logChannelId,omitempty" validate:"omitempty,numeric"`
}

// GuildChannel and GuildRole are trimmed Discord objects for the settings UI.
type GuildChannel struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Type     int    `json:"type"`
	ParentID string `json:"parentId,omitempty"`
}

type GuildRole struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Color    int    `json:"color"`
	Position int    `json:"position"`
}

// GuildSettingsView is GuildSettings plus the selectable channels and roles.
// Channels and Roles are empty when the Discord lookup failed.
type GuildSettingsView struct {
	Settings GuildSettings  `json:"settings"`
	Channels []GuildChannel `json:"channels"`
	Roles    []GuildRole    `json:"roles"`
}
