package models

import (
	"time"

	"github.com/google/uuid"
)

// User captures application-facing fields for an authenticated identity.
type User struct {
	ID           uuid.UUID `json:"id"`
	Email        string    `json:"email"`
	FullName     string    `json:"full_name,omitempty"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}
