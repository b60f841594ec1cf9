package models

import "time"

// Participant is a member registered for an Event. ID is the Discord user id.
type Participant struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	XboxNickname   string    `json:"xbox_nickname"`
	TwitchUsername string    `json:"twitch_username,omitempty"`
	CarChoice      string    `json:"car_choice,omitempty"`
	RegisteredAt   time.Time `json:"registered_at"`
}
