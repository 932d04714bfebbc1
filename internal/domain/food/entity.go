// Package food is the admin-maintained catalog of foods and their Ayurvedic properties.
package food

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Effect is how a food moves a dosha
type Effect string

const (
	EffectIncreases Effect = "increases"
	EffectDecreases Effect = "decreases"
	EffectNeutral   Effect = "neutral"
)

// Virya is the heating or cooling potency of a food
type Virya string

const (
	ViryaHeating Virya = "heating"
	ViryaCooling Virya = "cooling"
)

var (
	ErrNameRequired   = errors.New("food name is required")
	ErrInvalidVirya   = errors.New("virya must be heating or cooling")
	ErrInvalidEffect  = errors.New("dosha effect must be increases, decreases or neutral")
	ErrNegativeEnergy = errors.New("calories cannot be negative")
	ErrFoodNotFound   = errors.New("food not found")
	ErrDuplicateFood  = errors.New("a food with this name already exists")
)

// DoshaEffects records the effect on each dosha
type DoshaEffects struct {
	Vata  Effect `json:"vata"`
	Pitta Effect `json:"pitta"`
	Kapha Effect `json:"kapha"`
}

// Food is one catalog entry
type Food struct {
	ID           uuid.UUID
	Name         string
	Category     string
	Rasa         []string
	Virya        Virya
	Guna         []string
	DoshaEffects DoshaEffects
	Calories     float64
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Attributes are the editable fields of a food
type Attributes struct {
	Name         string
	Category     string
	Rasa         []string
	Virya        Virya
	Guna         []string
	DoshaEffects DoshaEffects
	Calories     float64
}

// New creates a catalog entry
func New(a Attributes) (*Food, error) {
	f := &Food{ID: uuid.New(), CreatedAt: time.Now().UTC()}
	if err := f.Apply(a); err != nil {
		return nil, err
	}
	return f, nil
}

// Apply validates and stores the attributes
func (f *Food) Apply(a Attributes) error {
	name := strings.TrimSpace(a.Name)
	if name == "" {
		return ErrNameRequired
	}
	if a.Virya != "" && a.Virya != ViryaHeating && a.Virya != ViryaCooling {
		return ErrInvalidVirya
	}
	for _, e := range []Effect{a.DoshaEffects.Vata, a.DoshaEffects.Pitta, a.DoshaEffects.Kapha} {
		if e != "" && e != EffectIncreases && e != EffectDecreases && e != EffectNeutral {
			return ErrInvalidEffect
		}
	}
	if a.Calories < 0 {
		return ErrNegativeEnergy
	}

	f.Name = name
	f.Category = strings.TrimSpace(a.Category)
	f.Rasa = a.Rasa
	f.Virya = a.Virya
	f.Guna = a.Guna
	f.DoshaEffects = a.DoshaEffects
	f.Calories = a.Calories
	f.UpdatedAt = time.Now().UTC()
	return nil
}
