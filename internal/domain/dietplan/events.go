package dietplan

import (
	"time"

	"github.com/google/uuid"
)

// CreatedEvent is raised when a plan is saved for the first time
type CreatedEvent struct {
	PlanID         uuid.UUID
	PatientID      uuid.UUID
	PractitionerID uuid.UUID
	CreatedAt      time.Time
}

func (e CreatedEvent) EventName() string     { return "dietplan.created" }
func (e CreatedEvent) OccurredAt() time.Time { return e.CreatedAt }

// RevisedEvent is raised when the practitioner edits the plan
type RevisedEvent struct {
	PlanID    uuid.UUID
	Version   int64
	RevisedAt time.Time
}

func (e RevisedEvent) EventName() string     { return "dietplan.revised" }
func (e RevisedEvent) OccurredAt() time.Time { return e.RevisedAt }

// SentEvent is raised when the plan is delivered to the patient's account
type SentEvent struct {
	PlanID         uuid.UUID
	PatientUserID  uuid.UUID
	PractitionerID uuid.UUID
	Title          string
	SentAt         time.Time
}

func (e SentEvent) EventName() string     { return "dietplan.sent" }
func (e SentEvent) OccurredAt() time.Time { return e.SentAt }
