package model

import "time"

type Session struct {
	SessionID   string    `json:"session_id"`
	UserID      string    `json:"user_id"`
	AccessToken string    `json:"access_token,omitempty"`
	DeviceInfo  string    `json:"device_info"`
	CreatedAt   time.Time `json:"created_at"`
	ExpiresAt   time.Time `json:"expires_at"`
}
