// Package notification models in-app messages delivered to a user.
package notification

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Kind classifies a notification
type Kind string

const (
	KindDietPlanSent       Kind = "diet_plan_sent"
	KindAppointmentBooked  Kind = "appointment_booked"
	KindAppointmentUpdated Kind = "appointment_updated"
	KindPasswordReset      Kind = "password_reset"
	KindDoctorReviewed     Kind = "doctor_reviewed"
)

var ErrNotificationNotFound = errors.New("notification not found")

// Notification is one message for one user
type Notification struct {
	ID        uuid.UUID  `json:"id"`
	UserID    uuid.UUID  `json:"userId"`
	Kind      Kind       `json:"kind"`
	Title     string     `json:"title"`
	Body      string     `json:"body"`
	Link      string     `json:"link,omitempty"`
	Read      bool       `json:"read"`
	CreatedAt time.Time  `json:"createdAt"`
	ReadAt    *time.Time `json:"readAt,omitempty"`
}

// New creates an unread notification
func New(userID uuid.UUID, kind Kind, title, body, link string) *Notification {
	return &Notification{
		ID:        uuid.New(),
		UserID:    userID,
		Kind:      kind,
		Title:     title,
		Body:      body,
		Link:      link,
		CreatedAt: time.Now().UTC(),
	}
}

// MarkRead flags the notification as read once
func (n *Notification) MarkRead() {
	if n.Read {
		return
	}
	now := time.Now().UTC()
	n.Read = true
	n.ReadAt = &now
}
