package appointment

import "errors"

var (
	ErrPatientRequired = errors.New("patient is required")
	ErrDoctorRequired  = errors.New("please select a doctor")
	ErrDateRequired    = errors.New("please select a date")
	ErrDateInPast      = errors.New("appointment date cannot be in the past")
	ErrInvalidStatus   = errors.New("status must be completed or cancelled")
	ErrNotScheduled    = errors.New("only scheduled appointments can change status")
	ErrNotParticipant  = errors.New("appointment belongs to someone else")

	ErrAppointmentNotFound = errors.New("appointment not found")
)
