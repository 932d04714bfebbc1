// Package user defines the user domain entity
package user

import (
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// Role represents the role of a user. The zero value means no role was selected yet.
type Role string

const (
	RoleNone         Role = ""
	RolePatient      Role = "patient"
	RolePractitioner Role = "practitioner"
	RoleAdmin        Role = "admin"
)

// Valid reports whether r names an assignable role
func (r Role) Valid() bool {
	switch r {
	case RolePatient, RolePractitioner, RoleAdmin:
		return true
	}
	return false
}

// Selectable reports whether users may pick r for themselves
func (r Role) Selectable() bool {
	return r == RolePatient || r == RolePractitioner
}

// String returns the role name
func (r Role) String() string {
	return string(r)
}

// User represents an account holder in the portal
type User struct {
	shared.AggregateRoot

	id           uuid.UUID
	email        string
	name         string
	passwordHash string
	role         Role
	age          *int
	gender       string
	phone        string
	location     string
	avatarURL    string
	mfaEnabled   bool
	mfaSecret    string
	createdAt    time.Time
	updatedAt    time.Time
	lastLoginAt  *time.Time
}

// Snapshot is the persisted form of a user
type Snapshot struct {
	ID           uuid.UUID
	Email        string
	Name         string
	PasswordHash string
	Role         Role
	Age          *int
	Gender       string
	Phone        string
	Location     string
	AvatarURL    string
	MFAEnabled   bool
	MFASecret    string
	CreatedAt    time.Time
	UpdatedAt    time.Time
	LastLoginAt  *time.Time
}

// ProfileUpdate carries the editable profile fields. Nil age clears it.
type ProfileUpdate struct {
	Name     string
	Age      *int
	Gender   string
	Phone    string
	Location string
}

// NewUser creates a new user without a role
func NewUser(email, name, password string, bcryptCost int) (*User, error) {
	email = NormalizeEmail(email)
	name = strings.TrimSpace(name)

	if err := validateEmail(email); err != nil {
		return nil, err
	}
	if err := validateName(name); err != nil {
		return nil, err
	}

	hash, err := hashPassword(password, bcryptCost)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	u := &User{
		id:           uuid.New(),
		email:        email,
		name:         name,
		passwordHash: hash,
		createdAt:    now,
		updatedAt:    now,
	}

	u.AddEvent(UserRegisteredEvent{UserID: u.id, Email: email, RegisteredAt: now})
	return u, nil
}

// Reconstitute rebuilds a user from storage without validation or events
func Reconstitute(s Snapshot) *User {
	return &User{
		id:           s.ID,
		email:        s.Email,
		name:         s.Name,
		passwordHash: s.PasswordHash,
		role:         s.Role,
		age:          s.Age,
		gender:       s.Gender,
		phone:        s.Phone,
		location:     s.Location,
		avatarURL:    s.AvatarURL,
		mfaEnabled:   s.MFAEnabled,
		mfaSecret:    s.MFASecret,
		createdAt:    s.CreatedAt,
		updatedAt:    s.UpdatedAt,
		lastLoginAt:  s.LastLoginAt,
	}
}

// Snapshot returns the persisted form of the user
func (u *User) Snapshot() Snapshot {
	return Snapshot{
		ID:           u.id,
		Email:        u.email,
		Name:         u.name,
		PasswordHash: u.passwordHash,
		Role:         u.role,
		Age:          u.age,
		Gender:       u.gender,
		Phone:        u.phone,
		Location:     u.location,
		AvatarURL:    u.avatarURL,
		MFAEnabled:   u.mfaEnabled,
		MFASecret:    u.mfaSecret,
		CreatedAt:    u.createdAt,
		UpdatedAt:    u.updatedAt,
		LastLoginAt:  u.lastLoginAt,
	}
}

func (u *User) ID() uuid.UUID           { return u.id }
func (u *User) Email() string           { return u.email }
func (u *User) Name() string            { return u.name }
func (u *User) Role() Role              { return u.role }
func (u *User) Age() *int               { return u.age }
func (u *User) Gender() string          { return u.gender }
func (u *User) Phone() string           { return u.phone }
func (u *User) Location() string        { return u.location }
func (u *User) AvatarURL() string       { return u.avatarURL }
func (u *User) MFAEnabled() bool        { return u.mfaEnabled }
func (u *User) MFASecret() string       { return u.mfaSecret }
func (u *User) CreatedAt() time.Time    { return u.createdAt }
func (u *User) UpdatedAt() time.Time    { return u.updatedAt }
func (u *User) LastLoginAt() *time.Time { return u.lastLoginAt }

// HasRole reports whether a role has been selected
func (u *User) HasRole() bool {
	return u.role != RoleNone
}

// CheckPassword verifies if the provided password matches
func (u *User) CheckPassword(password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(u.passwordHash), []byte(password)); err != nil {
		return ErrPasswordMismatch
	}
	return nil
}

// ChangePassword replaces the password hash
func (u *User) ChangePassword(newPassword string, bcryptCost int) error {
	hash, err := hashPassword(newPassword, bcryptCost)
	if err != nil {
		return err
	}

	u.passwordHash = hash
	u.touch()
	return nil
}

// SelectRole assigns the user's role. The configured admin e-mail always
// becomes admin, and may re-select at any time; everyone else selects once.
func (u *User) SelectRole(requested Role, adminEmail string) error {
	isAdmin := adminEmail != "" && u.email == NormalizeEmail(adminEmail)

	if !isAdmin {
		if !requested.Selectable() {
			return ErrInvalidRole
		}
		if u.HasRole() {
			return ErrRoleAlreadySelected
		}
	}

	role := requested
	if isAdmin {
		role = RoleAdmin
	}

	u.role = role
	u.touch()
	u.AddEvent(RoleSelectedEvent{UserID: u.id, Role: role, SelectedAt: u.updatedAt})
	return nil
}

// UpdateProfile applies a profile edit. The role is never touched here.
func (u *User) UpdateProfile(p ProfileUpdate) error {
	name := strings.TrimSpace(p.Name)
	if err := validateName(name); err != nil {
		return err
	}
	if p.Age != nil && *p.Age < 1 {
		return ErrInvalidAge
	}

	u.name = name
	u.age = p.Age
	u.gender = strings.TrimSpace(p.Gender)
	u.phone = strings.TrimSpace(p.Phone)
	u.location = strings.TrimSpace(p.Location)
	u.touch()
	return nil
}

// SetAvatar records the URL of an uploaded avatar
func (u *User) SetAvatar(url string) {
	u.avatarURL = url
	u.touch()
}

// StageMFASecret stores a secret that becomes active after EnableMFA
func (u *User) StageMFASecret(secret string) {
	u.mfaSecret = secret
	u.mfaEnabled = false
	u.touch()
}

// EnableMFA turns on two-factor login with the staged secret
func (u *User) EnableMFA() error {
	if u.mfaSecret == "" {
		return ErrMFANotEnrolled
	}
	u.mfaEnabled = true
	u.touch()
	return nil
}

// DisableMFA removes two-factor login
func (u *User) DisableMFA() {
	u.mfaEnabled = false
	u.mfaSecret = ""
	u.touch()
}

// RecordLogin records a login timestamp
func (u *User) RecordLogin() {
	now := time.Now().UTC()
	u.lastLoginAt = &now
	u.updatedAt = now
}

func (u *User) touch() {
	u.updatedAt = time.Now().UTC()
}

// NormalizeEmail lower-cases and trims an e-mail address
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func hashPassword(password string, cost int) (string, error) {
	if err := ValidatePassword(password); err != nil {
		return "", err
	}
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = bcrypt.DefaultCost
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	if err != nil {
		return "", ErrPasswordHash
	}
	return string(hash), nil
}

func validateEmail(email string) error {
	if email == "" {
		return ErrEmailRequired
	}
	if len(email) > 255 {
		return ErrEmailTooLong
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return ErrInvalidEmail
	}
	return nil
}

func validateName(name string) error {
	n := utf8.RuneCountInString(name)
	if n < 2 {
		return ErrNameTooShort
	}
	if n > 100 {
		return ErrNameTooLong
	}
	return nil
}

// ValidatePassword checks the password length rules
func ValidatePassword(password string) error {
	if len(password) < 6 {
		return ErrPasswordTooShort
	}
	// bcrypt ignores everything past 72 bytes
	if len(password) > 72 {
		return ErrPasswordTooLong
	}
	return nil
}
