// Package dietplan contains the domain logic for practitioner-authored diet plans.
package dietplan

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/google/uuid"
)

// Status represents the delivery state of a plan
type Status string

const (
	StatusDraft Status = "draft"
	StatusSent  Status = "sent"
)

// DietPlan is a multi-day meal plan written for one patient record.
type DietPlan struct {
	shared.AggregateRoot

	id      uuid.UUID
	version int64 // Optimistic locking

	patientID      uuid.UUID
	patientUserID  *uuid.UUID
	patientName    string
	practitionerID uuid.UUID

	title       string
	days        []Day
	notes       string
	constraints string

	aiGenerated bool
	aiModel     string

	status    Status
	createdAt time.Time
	updatedAt time.Time
	sentAt    *time.Time
}

// Draft is the content needed to create a plan
type Draft struct {
	PatientID      uuid.UUID
	PatientName    string
	PractitionerID uuid.UUID
	Title          string
	Days           []Day
	Notes          string
	Constraints    string
	AIGenerated    bool
	AIModel        string
}

// Snapshot is the persisted form of a plan
type Snapshot struct {
	ID             uuid.UUID
	Version        int64
	PatientID      uuid.UUID
	PatientUserID  *uuid.UUID
	PatientName    string
	PractitionerID uuid.UUID
	Title          string
	Days           []Day
	Notes          string
	Constraints    string
	AIGenerated    bool
	AIModel        string
	Status         Status
	CreatedAt      time.Time
	UpdatedAt      time.Time
	SentAt         *time.Time
}

// Summary is the list view of a plan
type Summary struct {
	ID           uuid.UUID `json:"id"`
	PatientID    uuid.UUID `json:"patientId"`
	PatientName  string    `json:"patientName"`
	Title        string    `json:"title"`
	Status       Status    `json:"status"`
	CreationDate time.Time `json:"creationDate"`
}

// New creates a draft plan with validation
func New(d Draft) (*DietPlan, error) {
	if d.PatientID == uuid.Nil {
		return nil, ErrPatientRequired
	}
	title, err := validateTitle(d.Title)
	if err != nil {
		return nil, err
	}
	days, err := validateDays(d.Days)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	plan := &DietPlan{
		id:             uuid.New(),
		version:        1,
		patientID:      d.PatientID,
		patientName:    d.PatientName,
		practitionerID: d.PractitionerID,
		title:          title,
		days:           days,
		notes:          strings.TrimSpace(d.Notes),
		constraints:    strings.TrimSpace(d.Constraints),
		aiGenerated:    d.AIGenerated,
		aiModel:        d.AIModel,
		status:         StatusDraft,
		createdAt:      now,
		updatedAt:      now,
	}

	plan.AddEvent(CreatedEvent{
		PlanID:         plan.id,
		PatientID:      plan.patientID,
		PractitionerID: plan.practitionerID,
		CreatedAt:      now,
	})

	return plan, nil
}

// Reconstitute rebuilds a plan from storage
func Reconstitute(s Snapshot) *DietPlan {
	return &DietPlan{
		id:             s.ID,
		version:        s.Version,
		patientID:      s.PatientID,
		patientUserID:  s.PatientUserID,
		patientName:    s.PatientName,
		practitionerID: s.PractitionerID,
		title:          s.Title,
		days:           s.Days,
		notes:          s.Notes,
		constraints:    s.Constraints,
		aiGenerated:    s.AIGenerated,
		aiModel:        s.AIModel,
		status:         s.Status,
		createdAt:      s.CreatedAt,
		updatedAt:      s.UpdatedAt,
		sentAt:         s.SentAt,
	}
}

// Snapshot returns the persisted form
func (p *DietPlan) Snapshot() Snapshot {
	return Snapshot{
		ID:             p.id,
		Version:        p.version,
		PatientID:      p.patientID,
		PatientUserID:  p.patientUserID,
		PatientName:    p.patientName,
		PractitionerID: p.practitionerID,
		Title:          p.title,
		Days:           p.days,
		Notes:          p.notes,
		Constraints:    p.constraints,
		AIGenerated:    p.aiGenerated,
		AIModel:        p.aiModel,
		Status:         p.status,
		CreatedAt:      p.createdAt,
		UpdatedAt:      p.updatedAt,
		SentAt:         p.sentAt,
	}
}

// ID returns the plan's unique identifier
func (p *DietPlan) ID() uuid.UUID { return p.id }

// Version returns the optimistic-locking version
func (p *DietPlan) Version() int64 { return p.version }

func (p *DietPlan) PatientID() uuid.UUID      { return p.patientID }
func (p *DietPlan) PatientUserID() *uuid.UUID { return p.patientUserID }
func (p *DietPlan) PatientName() string       { return p.patientName }
func (p *DietPlan) PractitionerID() uuid.UUID { return p.practitionerID }
func (p *DietPlan) Title() string             { return p.title }
func (p *DietPlan) Days() []Day               { return p.days }
func (p *DietPlan) Notes() string             { return p.notes }
func (p *DietPlan) Constraints() string       { return p.constraints }
func (p *DietPlan) IsAIGenerated() bool       { return p.aiGenerated }
func (p *DietPlan) AIModel() string           { return p.aiModel }
func (p *DietPlan) Status() Status            { return p.status }
func (p *DietPlan) CreatedAt() time.Time      { return p.createdAt }
func (p *DietPlan) UpdatedAt() time.Time      { return p.updatedAt }
func (p *DietPlan) SentAt() *time.Time        { return p.sentAt }

// OwnedBy reports whether practitionerID authored the plan
func (p *DietPlan) OwnedBy(practitionerID uuid.UUID) bool {
	return p.practitionerID == practitionerID
}

// VisibleTo reports whether a patient account may read the plan
func (p *DietPlan) VisibleTo(patientUserID uuid.UUID) bool {
	return p.status == StatusSent && p.patientUserID != nil && *p.patientUserID == patientUserID
}

// Summary returns the list view
func (p *DietPlan) Summary() Summary {
	return Summary{
		ID:           p.id,
		PatientID:    p.patientID,
		PatientName:  p.patientName,
		Title:        p.title,
		Status:       p.status,
		CreationDate: p.createdAt,
	}
}

// Revise replaces the editable content of the plan
func (p *DietPlan) Revise(practitionerID uuid.UUID, title string, days []Day, notes string) error {
	if !p.OwnedBy(practitionerID) {
		return ErrNotOwner
	}
	cleanTitle, err := validateTitle(title)
	if err != nil {
		return err
	}
	ordered, err := validateDays(days)
	if err != nil {
		return err
	}

	p.title = cleanTitle
	p.days = ordered
	p.notes = strings.TrimSpace(notes)
	p.version++
	p.updatedAt = time.Now().UTC()

	p.AddEvent(RevisedEvent{PlanID: p.id, Version: p.version, RevisedAt: p.updatedAt})
	return nil
}

// Send delivers the plan to the patient's account. Sending again after an edit
// re-delivers it and restarts the day rotation.
func (p *DietPlan) Send(practitionerID uuid.UUID, patientUserID *uuid.UUID) error {
	if !p.OwnedBy(practitionerID) {
		return ErrNotOwner
	}
	if patientUserID == nil || *patientUserID == uuid.Nil {
		return ErrNoLinkedAccount
	}

	now := time.Now().UTC()
	recipient := *patientUserID
	p.patientUserID = &recipient
	p.status = StatusSent
	p.sentAt = &now
	p.version++
	p.updatedAt = now

	p.AddEvent(SentEvent{
		PlanID:         p.id,
		PatientUserID:  recipient,
		PractitionerID: p.practitionerID,
		Title:          p.title,
		SentAt:         now,
	})
	return nil
}

// DayFor returns the day of the plan the patient should follow at now.
// Days rotate from the send date: day index = days elapsed mod plan length.
func (p *DietPlan) DayFor(now time.Time) (Day, error) {
	if p.status != StatusSent || p.sentAt == nil {
		return Day{}, ErrNotSent
	}
	if len(p.days) == 0 {
		return Day{}, ErrNoDays
	}

	start := truncateDay(*p.sentAt)
	elapsed := int(truncateDay(now).Sub(start).Hours() / 24)
	if elapsed < 0 {
		elapsed = 0
	}
	return p.days[elapsed%len(p.days)], nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", ErrTitleRequired
	}
	if utf8.RuneCountInString(title) > 200 {
		return "", ErrTitleTooLong
	}
	return title, nil
}
