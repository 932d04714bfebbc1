package user

import (
	"time"

	"github.com/google/uuid"
)

// UserRegisteredEvent is raised when an account is created
type UserRegisteredEvent struct {
	UserID       uuid.UUID
	Email        string
	RegisteredAt time.Time
}

func (e UserRegisteredEvent) EventName() string     { return "user.registered" }
func (e UserRegisteredEvent) OccurredAt() time.Time { return e.RegisteredAt }

// RoleSelectedEvent is raised when a user picks (or is granted) a role
type RoleSelectedEvent struct {
	UserID     uuid.UUID
	Role       Role
	SelectedAt time.Time
}

func (e RoleSelectedEvent) EventName() string     { return "user.role_selected" }
func (e RoleSelectedEvent) OccurredAt() time.Time { return e.SelectedAt }
