// Package doctor holds the practitioner's public profile and its verification state.
package doctor

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Status is the verification state of a doctor profile
type Status string

const (
	StatusPending  Status = "pending"
	StatusVerified Status = "verified"
	StatusRejected Status = "rejected"
)

// Valid reports whether s is a known status
func (s Status) Valid() bool {
	return s == StatusPending || s == StatusVerified || s == StatusRejected
}

var (
	ErrDoctorNotFound   = errors.New("doctor not found")
	ErrNotVerified      = errors.New("doctor is not verified")
	ErrAlreadyReviewed  = errors.New("doctor profile is already in that state")
	ErrBioTooLong       = errors.New("bio must not exceed 2000 characters")
	ErrSpecialtyTooLong = errors.New("specialization must not exceed 120 characters")
)

// Profile is the doctor-facing record keyed by the practitioner's user id
type Profile struct {
	ID             uuid.UUID
	Name           string
	Email          string
	Specialization string
	Bio            string
	Status         Status
	VerifiedAt     *time.Time
	VerifiedBy     *uuid.UUID
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewPending creates the profile a practitioner gets when selecting the role
func NewPending(userID uuid.UUID, name, email string) *Profile {
	now := time.Now().UTC()
	return &Profile{
		ID:        userID,
		Name:      name,
		Email:     email,
		Status:    StatusPending,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// Edit changes the self-service fields. Verification is untouched.
func (p *Profile) Edit(specialization, bio string) error {
	specialization = strings.TrimSpace(specialization)
	bio = strings.TrimSpace(bio)
	if len(specialization) > 120 {
		return ErrSpecialtyTooLong
	}
	if len(bio) > 2000 {
		return ErrBioTooLong
	}
	p.Specialization = specialization
	p.Bio = bio
	p.UpdatedAt = time.Now().UTC()
	return nil
}

// Review records an admin decision
func (p *Profile) Review(adminID uuid.UUID, decision Status) error {
	if decision != StatusVerified && decision != StatusRejected {
		return errors.New("review decision must be verified or rejected")
	}
	if p.Status == decision {
		return ErrAlreadyReviewed
	}

	now := time.Now().UTC()
	p.Status = decision
	p.VerifiedBy = &adminID
	if decision == StatusVerified {
		p.VerifiedAt = &now
	} else {
		p.VerifiedAt = nil
	}
	p.UpdatedAt = now
	return nil
}

// Bookable reports whether patients may book this doctor
func (p *Profile) Bookable() bool {
	return p.Status == StatusVerified
}
