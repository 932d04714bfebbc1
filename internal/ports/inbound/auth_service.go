// Package inbound defines the interfaces for inbound ports (primary/driving adapters)
// These are the interfaces that the application exposes to the outside world
package inbound

import (
	"context"
	"time"

	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/google/uuid"
)

// Actor is the authenticated caller of a use case
type Actor struct {
	UserID    uuid.UUID
	Email     string
	Role      user.Role
	SessionID string
	TokenID   string
	ExpiresAt time.Time
}

// Is reports whether the actor holds role
func (a Actor) Is(role user.Role) bool {
	return a.Role == role
}

// AuthService defines the identity use cases
type AuthService interface {
	Signup(ctx context.Context, cmd SignupCommand) (*AuthResponse, error)
	Login(ctx context.Context, cmd LoginCommand) (*AuthResponse, error)
	Refresh(ctx context.Context, refreshToken string) (*AuthResponse, error)
	Logout(ctx context.Context, actor Actor) error
	ForgotPassword(ctx context.Context, email string) error
	ResetPassword(ctx context.Context, cmd ResetPasswordCommand) error
	SelectRole(ctx context.Context, actor Actor, role user.Role) (*AuthResponse, error)
	Me(ctx context.Context, actor Actor) (*UserDTO, error)

	// Two-factor authentication
	EnrollMFA(ctx context.Context, actor Actor) (*MFAEnrollment, error)
	VerifyMFA(ctx context.Context, actor Actor, code string) error

	// Authenticate resolves an access token into the calling actor
	Authenticate(ctx context.Context, accessToken string) (*Actor, error)
}

// SignupCommand contains user registration data
type SignupCommand struct {
	Name     string `json:"name" validate:"required,min=2,max=100"`
	Email    string `json:"email" validate:"required,email,max=255"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// LoginCommand contains user login data
type LoginCommand struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
	TOTPCode string `json:"totpCode,omitempty" validate:"omitempty,len=6,numeric"`
}

// ResetPasswordCommand consumes a reset token
type ResetPasswordCommand struct {
	Token    string `json:"token" validate:"required"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

// SelectRoleCommand is the body of the role selection request
type SelectRoleCommand struct {
	Role user.Role `json:"role" validate:"required,oneof=patient practitioner"`
}

// UserDTO represents user data transfer object
type UserDTO struct {
	ID          uuid.UUID  `json:"id"`
	Email       string     `json:"email"`
	Name        string     `json:"name"`
	Role        *user.Role `json:"role"`
	Age         *int       `json:"age,omitempty"`
	Gender      string     `json:"gender,omitempty"`
	Phone       string     `json:"phone,omitempty"`
	Location    string     `json:"location,omitempty"`
	AvatarURL   string     `json:"avatarUrl,omitempty"`
	MFAEnabled  bool       `json:"mfaEnabled"`
	CreatedAt   time.Time  `json:"createdAt"`
	LastLoginAt *time.Time `json:"lastLoginAt,omitempty"`
}

// NewUserDTO converts the entity for transport
func NewUserDTO(u *user.User) UserDTO {
	dto := UserDTO{
		ID:          u.ID(),
		Email:       u.Email(),
		Name:        u.Name(),
		Age:         u.Age(),
		Gender:      u.Gender(),
		Phone:       u.Phone(),
		Location:    u.Location(),
		AvatarURL:   u.AvatarURL(),
		MFAEnabled:  u.MFAEnabled(),
		CreatedAt:   u.CreatedAt(),
		LastLoginAt: u.LastLoginAt(),
	}
	if u.HasRole() {
		role := u.Role()
		dto.Role = &role
	}
	return dto
}

// AuthResponse contains authentication response data
type AuthResponse struct {
	User         UserDTO   `json:"user"`
	AccessToken  string    `json:"accessToken"`
	RefreshToken string    `json:"refreshToken"`
	ExpiresAt    time.Time `json:"expiresAt"`
}

// MFAEnrollment is returned when a user starts TOTP enrollment
type MFAEnrollment struct {
	Secret     string `json:"secret"`
	OTPAuthURL string `json:"otpauthUrl"`
}
