// Package patient models the practitioner's record of a patient.
package patient

import (
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
)

// Status is the practitioner-facing state of a patient
type Status string

const (
	StatusActive   Status = "Active"
	StatusInactive Status = "Inactive"
	StatusFollowUp Status = "Follow-up"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	switch s {
	case StatusActive, StatusInactive, StatusFollowUp:
		return true
	}
	return false
}

// Engaged reports whether the patient counts as under active care
func (s Status) Engaged() bool {
	return s == StatusActive || s == StatusFollowUp
}

// Prakriti is the baseline constitution
type Prakriti string

// Prakritis lists every accepted constitution in display order
var Prakritis = []Prakriti{
	"Vata", "Pitta", "Kapha",
	"Vata-Pitta", "Pitta-Vata",
	"Vata-Kapha", "Kapha-Vata",
	"Pitta-Kapha", "Kapha-Pitta",
	"Vata-Pitta-Kapha",
}

// Valid reports whether p is a known constitution
func (p Prakriti) Valid() bool {
	for _, known := range Prakritis {
		if p == known {
			return true
		}
	}
	return false
}

// Dosha is the current imbalance (vikriti)
type Dosha string

const (
	DoshaVata  Dosha = "vata"
	DoshaPitta Dosha = "pitta"
	DoshaKapha Dosha = "kapha"
)

// Valid reports whether d is a known dosha
func (d Dosha) Valid() bool {
	return d == DoshaVata || d == DoshaPitta || d == DoshaKapha
}

// BowelMovement is the intake digestion observation
type BowelMovement string

const (
	BowelNormal      BowelMovement = "normal"
	BowelConstipated BowelMovement = "constipated"
	BowelLoose       BowelMovement = "loose"
)

// Valid reports whether b is a known observation
func (b BowelMovement) Valid() bool {
	return b == BowelNormal || b == BowelConstipated || b == BowelLoose
}

// DefaultWaterIntake is the intake form default, in millilitres
const DefaultWaterIntake = 2000

// Patient is a practitioner's patient record. It may be linked to a
// registered patient account through UserID.
type Patient struct {
	ID             uuid.UUID
	PractitionerID uuid.UUID
	UserID         *uuid.UUID
	Name           string
	Email          string
	Avatar         string
	Status         Status
	LastActivity   time.Time
	Prakriti       Prakriti
	Dosha          Dosha
	Age            int
	WaterIntake    int
	BowelMovement  BowelMovement
	Observations   string
	MedicalHistory string
	Allergies      string
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// Intake is the data captured by the add-patient form
type Intake struct {
	Name           string
	Email          string
	Age            int
	WaterIntake    *int
	BowelMovement  BowelMovement
	Prakriti       Prakriti
	Dosha          Dosha
	Observations   string
	MedicalHistory string
	Allergies      string
}

// New creates an Active patient record from an intake form
func New(practitionerID uuid.UUID, in Intake) (*Patient, error) {
	name := strings.TrimSpace(in.Name)
	if utf8.RuneCountInString(name) < 2 {
		return nil, ErrNameTooShort
	}
	if in.Age < 1 {
		return nil, ErrInvalidAge
	}

	water := DefaultWaterIntake
	if in.WaterIntake != nil {
		water = *in.WaterIntake
	}
	if water < 0 {
		return nil, ErrInvalidWaterIntake
	}
	if !in.BowelMovement.Valid() {
		return nil, ErrInvalidBowelMovement
	}
	if !in.Prakriti.Valid() {
		return nil, ErrInvalidPrakriti
	}
	if !in.Dosha.Valid() {
		return nil, ErrInvalidDosha
	}

	now := time.Now().UTC()
	return &Patient{
		ID:             uuid.New(),
		PractitionerID: practitionerID,
		Name:           name,
		Email:          strings.ToLower(strings.TrimSpace(in.Email)),
		Status:         StatusActive,
		LastActivity:   now,
		Prakriti:       in.Prakriti,
		Dosha:          in.Dosha,
		Age:            in.Age,
		WaterIntake:    water,
		BowelMovement:  in.BowelMovement,
		Observations:   strings.TrimSpace(in.Observations),
		MedicalHistory: strings.TrimSpace(in.MedicalHistory),
		Allergies:      strings.TrimSpace(in.Allergies),
		CreatedAt:      now,
		UpdatedAt:      now,
	}, nil
}

// BelongsTo reports whether practitionerID owns the record
func (p *Patient) BelongsTo(practitionerID uuid.UUID) bool {
	return p.PractitionerID == practitionerID
}

// ChangeStatus moves the patient to s and records activity
func (p *Patient) ChangeStatus(s Status) error {
	if !s.Valid() {
		return ErrInvalidStatus
	}
	now := time.Now().UTC()
	p.Status = s
	p.LastActivity = now
	p.UpdatedAt = now
	return nil
}

// LinkAccount ties the record to a registered patient user
func (p *Patient) LinkAccount(userID uuid.UUID) {
	p.UserID = &userID
	p.UpdatedAt = time.Now().UTC()
}

// Touch records activity without changing anything else
func (p *Patient) Touch() {
	now := time.Now().UTC()
	p.LastActivity = now
	p.UpdatedAt = now
}

// DietProfile renders the profile line the diet-plan generator receives
func (p *Patient) DietProfile() string {
	return "Name: " + p.Name +
		", Prakriti: " + string(p.Prakriti) +
		", Dosha Imbalance: " + string(p.Dosha) +
		", Status: " + string(p.Status)
}

// MealProfile renders the profile line the meal-alternative suggester receives.
// Restrictions typed with the request take precedence over recorded allergies.
func (p *Patient) MealProfile(restrictions string) string {
	allergies := strings.TrimSpace(restrictions)
	if allergies == "" {
		allergies = p.Allergies
	}
	if allergies == "" {
		allergies = "None"
	}
	return "Prakriti: " + string(p.Prakriti) +
		", Current Dosha Imbalance: " + string(p.Dosha) +
		", Allergies/Intolerances: " + allergies
}
