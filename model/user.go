package model

import "time"

// User is the identity record owned by the auth provider. Password
// material is never decoded into this type.
type User struct {
	ID          string    `json:"id"`
	Email       string    `json:"email"`
	DisplayName string    `json:"display_name"`
	CreatedAt   time.Time `json:"created_at,omitempty"`
}
