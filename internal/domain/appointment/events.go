package appointment

import (
	"time"

	"github.com/google/uuid"
)

// BookedEvent is raised when a patient books an appointment
type BookedEvent struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	PatientName   string
	Start         time.Time
	BookedAt      time.Time
}

func (e BookedEvent) EventName() string     { return "appointment.booked" }
func (e BookedEvent) OccurredAt() time.Time { return e.BookedAt }

// StatusChangedEvent is raised when an appointment is completed or cancelled
type StatusChangedEvent struct {
	AppointmentID uuid.UUID
	PatientID     uuid.UUID
	DoctorID      uuid.UUID
	ActorID       uuid.UUID
	From          Status
	To            Status
	ChangedAt     time.Time
}

func (e StatusChangedEvent) EventName() string     { return "appointment.status_changed" }
func (e StatusChangedEvent) OccurredAt() time.Time { return e.ChangedAt }
