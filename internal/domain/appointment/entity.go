// Package appointment contains the booking aggregate shared by patients and practitioners.
package appointment

import (
	"strings"
	"time"

	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/google/uuid"
)

// Duration is the fixed length of a consultation
const Duration = time.Hour

// Status represents the appointment lifecycle
type Status string

const (
	StatusScheduled Status = "scheduled"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusScheduled || s == StatusCompleted || s == StatusCancelled
}

// Appointment is a one-hour consultation between a patient and a doctor
type Appointment struct {
	shared.AggregateRoot

	id          uuid.UUID
	title       string
	patientID   uuid.UUID
	patientName string
	doctorID    uuid.UUID
	doctorName  string
	start       time.Time
	end         time.Time
	status      Status
	notes       string
	createdAt   time.Time
	updatedAt   time.Time
}

// Booking holds what is needed to create an appointment
type Booking struct {
	PatientID   uuid.UUID
	PatientName string
	DoctorID    uuid.UUID
	DoctorName  string
	Start       time.Time
	Title       string
	Notes       string
}

// Snapshot is the persisted form of an appointment
type Snapshot struct {
	ID          uuid.UUID
	Title       string
	PatientID   uuid.UUID
	PatientName string
	DoctorID    uuid.UUID
	DoctorName  string
	Start       time.Time
	End         time.Time
	Status      Status
	Notes       string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Book creates a scheduled appointment. now is the booking clock; the start may
// be any time on the current UTC day or later.
func Book(b Booking, now time.Time) (*Appointment, error) {
	if b.PatientID == uuid.Nil {
		return nil, ErrPatientRequired
	}
	if b.DoctorID == uuid.Nil {
		return nil, ErrDoctorRequired
	}
	if b.Start.IsZero() {
		return nil, ErrDateRequired
	}
	if b.Start.UTC().Before(StartOfDay(now)) {
		return nil, ErrDateInPast
	}

	title := strings.TrimSpace(b.Title)
	if title == "" {
		title = "Consultation with " + b.DoctorName
	}

	created := now.UTC()
	start := b.Start.UTC()
	a := &Appointment{
		id:          uuid.New(),
		title:       title,
		patientID:   b.PatientID,
		patientName: b.PatientName,
		doctorID:    b.DoctorID,
		doctorName:  b.DoctorName,
		start:       start,
		end:         start.Add(Duration),
		status:      StatusScheduled,
		notes:       strings.TrimSpace(b.Notes),
		createdAt:   created,
		updatedAt:   created,
	}

	a.AddEvent(BookedEvent{
		AppointmentID: a.id,
		PatientID:     a.patientID,
		DoctorID:      a.doctorID,
		PatientName:   a.patientName,
		Start:         a.start,
		BookedAt:      created,
	})
	return a, nil
}

// Reconstitute rebuilds an appointment from storage
func Reconstitute(s Snapshot) *Appointment {
	return &Appointment{
		id:          s.ID,
		title:       s.Title,
		patientID:   s.PatientID,
		patientName: s.PatientName,
		doctorID:    s.DoctorID,
		doctorName:  s.DoctorName,
		start:       s.Start,
		end:         s.End,
		status:      s.Status,
		notes:       s.Notes,
		createdAt:   s.CreatedAt,
		updatedAt:   s.UpdatedAt,
	}
}

// Snapshot returns the persisted form
func (a *Appointment) Snapshot() Snapshot {
	return Snapshot{
		ID:          a.id,
		Title:       a.title,
		PatientID:   a.patientID,
		PatientName: a.patientName,
		DoctorID:    a.doctorID,
		DoctorName:  a.doctorName,
		Start:       a.start,
		End:         a.end,
		Status:      a.status,
		Notes:       a.notes,
		CreatedAt:   a.createdAt,
		UpdatedAt:   a.updatedAt,
	}
}

func (a *Appointment) ID() uuid.UUID        { return a.id }
func (a *Appointment) Title() string        { return a.title }
func (a *Appointment) PatientID() uuid.UUID { return a.patientID }
func (a *Appointment) PatientName() string  { return a.patientName }
func (a *Appointment) DoctorID() uuid.UUID  { return a.doctorID }
func (a *Appointment) DoctorName() string   { return a.doctorName }
func (a *Appointment) Start() time.Time     { return a.start }
func (a *Appointment) End() time.Time       { return a.end }
func (a *Appointment) Status() Status       { return a.status }
func (a *Appointment) Notes() string        { return a.notes }
func (a *Appointment) CreatedAt() time.Time { return a.createdAt }

// IsUpcoming reports whether the appointment still has to happen
func (a *Appointment) IsUpcoming() bool {
	return a.status == StatusScheduled
}

// CancelByPatient cancels a scheduled appointment on the patient's request
func (a *Appointment) CancelByPatient(patientID uuid.UUID) error {
	if a.patientID != patientID {
		return ErrNotParticipant
	}
	return a.transition(StatusCancelled, patientID)
}

// SetStatusByDoctor lets the doctor complete or cancel a scheduled appointment
func (a *Appointment) SetStatusByDoctor(doctorID uuid.UUID, status Status) error {
	if a.doctorID != doctorID {
		return ErrNotParticipant
	}
	if status != StatusCompleted && status != StatusCancelled {
		return ErrInvalidStatus
	}
	return a.transition(status, doctorID)
}

func (a *Appointment) transition(to Status, actor uuid.UUID) error {
	if a.status != StatusScheduled {
		return ErrNotScheduled
	}

	from := a.status
	a.status = to
	a.updatedAt = time.Now().UTC()
	a.AddEvent(StatusChangedEvent{
		AppointmentID: a.id,
		PatientID:     a.patientID,
		DoctorID:      a.doctorID,
		ActorID:       actor,
		From:          from,
		To:            to,
		ChangedAt:     a.updatedAt,
	})
	return nil
}

// Split separates appointments into upcoming (scheduled) and past ones,
// keeping the input order within each group.
func Split(list []*Appointment) (upcoming, past []*Appointment) {
	upcoming = make([]*Appointment, 0, len(list))
	past = make([]*Appointment, 0, len(list))
	for _, a := range list {
		if a.IsUpcoming() {
			upcoming = append(upcoming, a)
		} else {
			past = append(past, a)
		}
	}
	return upcoming, past
}

// StartOfDay truncates t to midnight UTC
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
