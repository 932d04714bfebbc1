// Package auth provides the application layer for sign-up, sign-in, sessions,
// role selection and two-factor authentication
package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Notifier stores an in-app notification for a user
type Notifier interface {
	Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error
}

// Deps groups the collaborators of the auth service
type Deps struct {
	Users      outbound.UserRepository
	Doctors    outbound.DoctorRepository
	Patients   outbound.PatientRepository
	Audit      outbound.AuditRepository
	Mailer     outbound.EmailService
	Notifier   Notifier
	Tokens     *security.TokenService
	Sessions   *cache.SessionStore
	MFA        *security.MFAService
	Validator  *security.Validator
	Dispatcher shared.EventDispatcher
}

// Service implements inbound.AuthService
type Service struct {
	Deps
	cfg       *config.AuthConfig
	publicURL string
	logger    *zap.Logger
}

var _ inbound.AuthService = (*Service)(nil)

// NewService creates a new auth service
func NewService(deps Deps, cfg *config.AuthConfig, publicURL string, logger *zap.Logger) *Service {
	return &Service{
		Deps:      deps,
		cfg:       cfg,
		publicURL: strings.TrimRight(publicURL, "/"),
		logger:    logger.Named("auth-service"),
	}
}

// Signup creates an account without a role and signs it in
func (s *Service) Signup(ctx context.Context, cmd inbound.SignupCommand) (*inbound.AuthResponse, error) {
	if err := s.Validator.Validate(cmd); err != nil {
		return nil, err
	}

	s.logger.Info("Registering new user", zap.String("email", cmd.Email))

	if _, err := s.Users.FindByEmail(ctx, cmd.Email); err == nil {
		return nil, apperrors.NewEmailAlreadyExistsError(user.NormalizeEmail(cmd.Email))
	} else if !errors.Is(err, user.ErrUserNotFound) {
		return nil, apperrors.NewDatabaseError("look up user", err)
	}

	u, err := user.NewUser(cmd.Email, cmd.Name, cmd.Password, s.cfg.BCryptCost)
	if err != nil {
		return nil, apperrors.NewRuleViolationError(err)
	}

	if err := s.Users.Create(ctx, u); err != nil {
		if errors.Is(err, user.ErrEmailTaken) {
			return nil, apperrors.NewEmailAlreadyExistsError(u.Email())
		}
		return nil, apperrors.NewDatabaseError("create user", err)
	}

	resp, err := s.signIn(ctx, u)
	if err != nil {
		return nil, err
	}

	s.Dispatcher.Dispatch(ctx, u.Events()...)
	s.logger.Info("User registered successfully", zap.String("user_id", u.ID().String()))
	return resp, nil
}

// Login authenticates with e-mail and password, plus a TOTP code when
// two-factor login is on
func (s *Service) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthResponse, error) {
	if err := s.Validator.Validate(cmd); err != nil {
		return nil, err
	}

	u, err := s.Users.FindByEmail(ctx, cmd.Email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
		return nil, apperrors.NewDatabaseError("look up user", err)
	}

	if err := u.CheckPassword(cmd.Password); err != nil {
		s.logger.Info("Failed login attempt", zap.String("user_id", u.ID().String()))
		return nil, apperrors.NewInvalidCredentialsError()
	}

	if u.MFAEnabled() {
		if cmd.TOTPCode == "" {
			return nil, apperrors.NewMFARequiredError()
		}
		if !s.MFA.Verify(u.MFASecret(), cmd.TOTPCode) {
			return nil, apperrors.NewInvalidCredentialsError()
		}
	}

	u.RecordLogin()
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperrors.NewDatabaseError("record login", err)
	}

	return s.signIn(ctx, u)
}

// Refresh rotates a refresh token into a new pair
func (s *Service) Refresh(ctx context.Context, refreshToken string) (*inbound.AuthResponse, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.NewBadRequestError("Refresh token is required")
	}

	pair, u, err := s.Tokens.Rotate(ctx, refreshToken, func(id uuid.UUID) (*user.User, error) {
		return s.Users.FindByID(ctx, id)
	})
	if err != nil {
		return nil, s.tokenError(err)
	}

	return response(u, pair), nil
}

// Logout revokes the caller's access token and ends the session
func (s *Service) Logout(ctx context.Context, actor inbound.Actor) error {
	if err := s.Tokens.Revoke(ctx, actor.TokenID, actor.SessionID, actor.ExpiresAt); err != nil {
		return apperrors.Wrap(err, "Failed to log out")
	}
	s.logger.Info("User logged out", zap.String("user_id", actor.UserID.String()))
	return nil
}

// ForgotPassword mails a single-use reset link. Unknown addresses succeed
// silently so the endpoint does not reveal which accounts exist.
func (s *Service) ForgotPassword(ctx context.Context, email string) error {
	u, err := s.Users.FindByEmail(ctx, email)
	if err != nil {
		if !errors.Is(err, user.ErrUserNotFound) {
			s.logger.Error("Failed to look up user for password reset", zap.Error(err))
		}
		return nil
	}

	token := uuid.NewString()
	if err := s.Sessions.SaveResetToken(ctx, token, u.ID(), s.cfg.ResetTokenTTL); err != nil {
		s.logger.Error("Failed to store reset token", zap.String("user_id", u.ID().String()), zap.Error(err))
		return nil
	}

	link := fmt.Sprintf("%s/reset-password?token=%s", s.publicURL, token)
	if err := s.Mailer.SendPasswordReset(ctx, u.Email(), u.Name(), link); err != nil {
		s.logger.Error("Failed to send password reset mail", zap.String("user_id", u.ID().String()), zap.Error(err))
	}

	if err := s.Notifier.Notify(ctx, u.ID(), notification.KindPasswordReset, "Password reset requested",
		"A password reset link was sent to your e-mail address.", ""); err != nil {
		s.logger.Warn("Failed to store password reset notification", zap.Error(err))
	}
	return nil
}

// ResetPassword consumes a reset token and sets the new password
func (s *Service) ResetPassword(ctx context.Context, cmd inbound.ResetPasswordCommand) error {
	if err := s.Validator.Validate(cmd); err != nil {
		return err
	}

	userID, err := s.Sessions.ConsumeResetToken(ctx, cmd.Token)
	if err != nil {
		if errors.Is(err, cache.ErrSessionNotFound) {
			return apperrors.NewBadRequestError("Reset link is invalid or has expired")
		}
		return apperrors.Wrap(err, "Failed to read reset token")
	}

	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return err
	}

	if err := u.ChangePassword(cmd.Password, s.cfg.BCryptCost); err != nil {
		return apperrors.NewRuleViolationError(err)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return apperrors.NewDatabaseError("update password", err)
	}

	entry := audit.NewEntry(u.ID(), u.Role().String(), audit.ActionPasswordReset, "user", u.ID().String(), nil)
	if err := s.Audit.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to audit password reset", zap.Error(err))
	}

	s.logger.Info("Password reset", zap.String("user_id", u.ID().String()))
	return nil
}

// SelectRole assigns the caller's role once and returns tokens carrying it.
// Practitioners get a pending doctor profile. Patients are linked to the
// records practitioners already created under their e-mail.
func (s *Service) SelectRole(ctx context.Context, actor inbound.Actor, role user.Role) (*inbound.AuthResponse, error) {
	u, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	if err := u.SelectRole(role, s.cfg.AdminEmail); err != nil {
		switch {
		case errors.Is(err, user.ErrRoleAlreadySelected):
			return nil, apperrors.NewRoleAlreadySelectedError()
		default:
			return nil, apperrors.NewRuleViolationError(err)
		}
	}

	switch u.Role() {
	case user.RolePractitioner:
		if err := s.ensureDoctorProfile(ctx, u); err != nil {
			return nil, err
		}
	case user.RolePatient:
		linked, err := s.Patients.LinkAccount(ctx, u.Email(), u.ID())
		if err != nil {
			return nil, apperrors.NewDatabaseError("link patient records", err)
		}
		if linked > 0 {
			s.logger.Info("Linked patient records", zap.String("user_id", u.ID().String()), zap.Int64("records", linked))
		}
	}

	// Saved last so a failed profile or link step leaves the role selectable again.
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperrors.NewDatabaseError("save role", err)
	}

	pair, err := s.Tokens.Reissue(ctx, u, actor.SessionID)
	if err != nil {
		return nil, s.tokenError(err)
	}

	s.Dispatcher.Dispatch(ctx, u.Events()...)
	s.logger.Info("Role selected", zap.String("user_id", u.ID().String()), zap.String("role", u.Role().String()))
	return response(u, pair), nil
}

// Me returns the caller's account
func (s *Service) Me(ctx context.Context, actor inbound.Actor) (*inbound.UserDTO, error) {
	u, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}
	dto := inbound.NewUserDTO(u)
	return &dto, nil
}

// EnrollMFA stages a new TOTP secret for a practitioner or admin
func (s *Service) EnrollMFA(ctx context.Context, actor inbound.Actor) (*inbound.MFAEnrollment, error) {
	if !security.HasAnyRole(actor.Role, user.RolePractitioner, user.RoleAdmin) {
		return nil, apperrors.NewInsufficientPermissionsError("enroll two-factor authentication")
	}

	u, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return nil, err
	}

	setup, err := s.MFA.SetupTOTP(u.Email())
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to generate two-factor secret")
	}

	u.StageMFASecret(setup.Secret)
	if err := s.Users.Update(ctx, u); err != nil {
		return nil, apperrors.NewDatabaseError("store two-factor secret", err)
	}

	return &inbound.MFAEnrollment{Secret: setup.Secret, OTPAuthURL: setup.URL}, nil
}

// VerifyMFA checks a code against the staged secret and turns two-factor login on
func (s *Service) VerifyMFA(ctx context.Context, actor inbound.Actor, code string) error {
	u, err := s.loadUser(ctx, actor.UserID)
	if err != nil {
		return err
	}
	if u.MFASecret() == "" {
		return apperrors.NewRuleViolationError(user.ErrMFANotEnrolled)
	}
	if !s.MFA.Verify(u.MFASecret(), code) {
		return apperrors.NewBadRequestError("Invalid two-factor code")
	}

	if err := u.EnableMFA(); err != nil {
		return apperrors.NewRuleViolationError(err)
	}
	if err := s.Users.Update(ctx, u); err != nil {
		return apperrors.NewDatabaseError("enable two-factor authentication", err)
	}

	entry := audit.NewEntry(u.ID(), u.Role().String(), audit.ActionMFAEnabled, "user", u.ID().String(), nil)
	if err := s.Audit.Append(ctx, entry); err != nil {
		s.logger.Warn("Failed to audit two-factor enrollment", zap.Error(err))
	}
	return nil
}

// Authenticate resolves an access token into the calling actor
func (s *Service) Authenticate(ctx context.Context, accessToken string) (*inbound.Actor, error) {
	claims, err := s.Tokens.Validate(ctx, accessToken, security.AccessToken)
	if err != nil {
		return nil, s.tokenError(err)
	}

	userID, err := claims.UserID()
	if err != nil {
		return nil, apperrors.NewUnauthorizedError("Invalid or expired token")
	}

	actor := &inbound.Actor{
		UserID:    userID,
		Email:     claims.Email,
		Role:      claims.Role,
		SessionID: claims.SessionID,
		TokenID:   claims.ID,
	}
	if claims.ExpiresAt != nil {
		actor.ExpiresAt = claims.ExpiresAt.Time
	}
	return actor, nil
}

func (s *Service) signIn(ctx context.Context, u *user.User) (*inbound.AuthResponse, error) {
	pair, err := s.Tokens.Issue(ctx, u)
	if err != nil {
		return nil, apperrors.Wrap(err, "Failed to issue tokens")
	}
	return response(u, pair), nil
}

func (s *Service) ensureDoctorProfile(ctx context.Context, u *user.User) error {
	_, err := s.Doctors.FindByID(ctx, u.ID())
	if err == nil {
		return nil
	}
	if !errors.Is(err, doctor.ErrDoctorNotFound) {
		return apperrors.NewDatabaseError("look up doctor profile", err)
	}

	if err := s.Doctors.Save(ctx, doctor.NewPending(u.ID(), u.Name(), u.Email())); err != nil {
		return apperrors.NewDatabaseError("create doctor profile", err)
	}
	return nil
}

func (s *Service) loadUser(ctx context.Context, id uuid.UUID) (*user.User, error) {
	u, err := s.Users.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, apperrors.NewUserNotFoundError(id.String())
		}
		return nil, apperrors.NewDatabaseError("look up user", err)
	}
	return u, nil
}

func (s *Service) tokenError(err error) error {
	switch {
	case errors.Is(err, security.ErrTokenRevoked):
		return apperrors.NewUnauthorizedError("Token has been revoked")
	case errors.Is(err, security.ErrSessionExpired):
		return apperrors.NewUnauthorizedError("Session has ended, please sign in again")
	case errors.Is(err, security.ErrInvalidToken), errors.Is(err, user.ErrUserNotFound):
		return apperrors.NewUnauthorizedError("Invalid or expired token")
	default:
		return apperrors.Wrap(err, "Failed to process token")
	}
}

func response(u *user.User, pair *security.TokenPair) *inbound.AuthResponse {
	return &inbound.AuthResponse{
		User:         inbound.NewUserDTO(u),
		AccessToken:  pair.AccessToken,
		RefreshToken: pair.RefreshToken,
		ExpiresAt:    pair.ExpiresAt,
	}
}
