package user

import "errors"

var (
	ErrEmailRequired    = errors.New("email is required")
	ErrInvalidEmail     = errors.New("invalid email format")
	ErrEmailTooLong     = errors.New("email too long")
	ErrNameTooShort     = errors.New("name must be at least 2 characters")
	ErrNameTooLong      = errors.New("name must not exceed 100 characters")
	ErrPasswordTooShort = errors.New("password must be at least 6 characters")
	ErrPasswordTooLong  = errors.New("password must not exceed 72 bytes")
	ErrPasswordHash     = errors.New("failed to hash password")
	ErrPasswordMismatch = errors.New("password does not match")
	ErrInvalidAge       = errors.New("age must be at least 1")

	ErrInvalidRole         = errors.New("role must be patient or practitioner")
	ErrRoleAlreadySelected = errors.New("role has already been selected")
	ErrMFANotEnrolled      = errors.New("two-factor authentication has not been enrolled")

	ErrUserNotFound = errors.New("user not found")
	ErrEmailTaken   = errors.New("email already registered")
)
