package models

import "time"

// Organization is the racing club registered for a guild.
type Organization struct {
	GuildID               string    `json:"guildId"`
	Name                  string    `json:"name" validate:"required,max=100"`
	Icon                  string    `json:"icon,omitempty" validate:"omitempty,url"`
	AnnouncementChannelID string    `json:"announcementChannelId,omitempty" validate:"omitempty,numeric"`
	ParticipantRoleID     string    `json:"participantRoleId,omitempty" validate:"omitempty,numeric"`
	CreatedAt             time.Time `json:"createdAt"`
	UpdatedAt             time.Time `json:"updatedAt"`
}
