package models

import "time"

// UserProfile is stored at users/{id} and remembers the last registration details
// so the registration modal can be prefilled.
type UserProfile struct {
	ID             string    `json:"id"`
	Username       string    `json:"username"`
	XboxNickname   string    `json:"xbox_nickname,omitempty"`
	TwitchUsername string    `json:"twitch_username,omitempty"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// SessionUser is the Discord identity resolved during the Activity OAuth exchange.
type SessionUser struct {
	ID         string `json:"id"`
	Username   string `json:"username"`
	GlobalName string `json:"global_name,omitempty"`
	Avatar     string `json:"avatar,omitempty"`
}
