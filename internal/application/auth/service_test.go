package auth

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/cache"
	"github.com/ayurwell/portal/internal/infrastructure/config"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/memory"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/ayurwell/portal/test/testutils"
	"github.com/google/uuid"
	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
	"golang.org/x/crypto/bcrypt"
)

const adminEmail = "admin@ayurwell.com"

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error {
	return m.Called(ctx, userID, kind, title, body, link).Error(0)
}

type AuthServiceTestSuite struct {
	suite.Suite
	ctx        context.Context
	users      *testutils.MockUserRepository
	doctors    *testutils.MockDoctorRepository
	patients   *testutils.MockPatientRepository
	audit      *testutils.MockAuditRepository
	mailer     *testutils.MockEmailService
	notifier   *mockNotifier
	dispatcher *testutils.RecordingDispatcher
	sessions   *cache.SessionStore
	tokens     *security.TokenService
	service    *Service
	factory    *testutils.Factory
}

func (s *AuthServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	logger := zaptest.NewLogger(s.T())

	cfg := &config.AuthConfig{
		JWTSecret:       "test-secret-key-for-testing-only-32-bytes",
		Issuer:          "ayurwell-test",
		AccessTokenTTL:  15 * time.Minute,
		RefreshTokenTTL: 24 * time.Hour,
		ResetTokenTTL:   time.Hour,
		BCryptCost:      bcrypt.MinCost,
		AdminEmail:      adminEmail,
		MFAIssuer:       "AyurWell",
	}

	s.users = new(testutils.MockUserRepository)
	s.doctors = new(testutils.MockDoctorRepository)
	s.patients = new(testutils.MockPatientRepository)
	s.audit = new(testutils.MockAuditRepository)
	s.mailer = new(testutils.MockEmailService)
	s.notifier = new(mockNotifier)
	s.dispatcher = &testutils.RecordingDispatcher{}
	s.sessions = cache.NewSessionStore(memory.NewCacheRepository(0), logger)
	s.tokens = security.NewTokenService(cfg, s.sessions, logger)

	s.service = NewService(Deps{
		Users:      s.users,
		Doctors:    s.doctors,
		Patients:   s.patients,
		Audit:      s.audit,
		Mailer:     s.mailer,
		Notifier:   s.notifier,
		Tokens:     s.tokens,
		Sessions:   s.sessions,
		MFA:        security.NewMFAService(logger, cfg.MFAIssuer),
		Validator:  security.NewValidator(),
		Dispatcher: s.dispatcher,
	}, cfg, "https://portal.example.com/", logger)
	s.factory = testutils.NewFactory(11)
}

func (s *AuthServiceTestSuite) TearDownTest() {
	s.users.AssertExpectations(s.T())
	s.doctors.AssertExpectations(s.T())
	s.patients.AssertExpectations(s.T())
	s.mailer.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

// signedIn issues real tokens for u and returns the actor they authenticate as
func (s *AuthServiceTestSuite) signedIn(u *user.User) inbound.Actor {
	pair, err := s.tokens.Issue(s.ctx, u)
	s.Require().NoError(err)
	actor, err := s.service.Authenticate(s.ctx, pair.AccessToken)
	s.Require().NoError(err)
	return *actor
}

func (s *AuthServiceTestSuite) TestSignup() {
	s.Run("CreatesUserWithoutRole", func() {
		// Arrange
		s.users.On("FindByEmail", s.ctx, "Asha@Example.com").Return(nil, user.ErrUserNotFound).Once()
		s.users.On("Create", s.ctx, mock.AnythingOfType("*user.User")).Return(nil).Once()

		// Act
		resp, err := s.service.Signup(s.ctx, inbound.SignupCommand{
			Name:     "Asha Menon",
			Email:    "Asha@Example.com",
			Password: "secret1",
		})

		// Assert
		s.Require().NoError(err)
		s.Equal("asha@example.com", resp.User.Email)
		s.Nil(resp.User.Role)
		s.NotEmpty(resp.AccessToken)
		s.NotEmpty(resp.RefreshToken)
		s.Contains(s.dispatcher.Names(), user.UserRegisteredEvent{}.EventName())
	})

	s.Run("DuplicateEmailConflicts", func() {
		existing := s.factory.User(user.RoleNone)
		s.users.On("FindByEmail", s.ctx, existing.Email()).Return(existing, nil).Once()

		_, err := s.service.Signup(s.ctx, inbound.SignupCommand{
			Name:     "Someone Else",
			Email:    existing.Email(),
			Password: "secret1",
		})

		testutils.AssertAppError(s.T(), err, apperrors.CodeEmailAlreadyExists)
	})

	s.Run("ShortPasswordFailsValidation", func() {
		_, err := s.service.Signup(s.ctx, inbound.SignupCommand{Name: "Asha", Email: "a@b.co", Password: "123"})

		testutils.AssertAppError(s.T(), err, apperrors.CodeValidationFailed)
	})
}

func (s *AuthServiceTestSuite) TestLogin() {
	u := s.factory.User(user.RolePatient)

	s.Run("Success", func() {
		s.users.On("FindByEmail", s.ctx, u.Email()).Return(u, nil).Once()
		s.users.On("Update", s.ctx, u).Return(nil).Once()

		resp, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: testutils.TestPassword})

		s.Require().NoError(err)
		s.Require().NotNil(resp.User.Role)
		s.Equal(user.RolePatient, *resp.User.Role)
		s.NotNil(u.LastLoginAt())
	})

	s.Run("WrongPassword", func() {
		s.users.On("FindByEmail", s.ctx, u.Email()).Return(u, nil).Once()

		_, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: "wrong-password"})

		appErr := testutils.AssertAppError(s.T(), err, apperrors.CodeInvalidCredentials)
		s.Equal("invalid email or password", strings.ToLower(appErr.Message))
	})

	s.Run("UnknownEmailLooksTheSame", func() {
		s.users.On("FindByEmail", s.ctx, "nobody@example.com").Return(nil, user.ErrUserNotFound).Once()

		_, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: "nobody@example.com", Password: "whatever"})

		testutils.AssertAppError(s.T(), err, apperrors.CodeInvalidCredentials)
	})
}

func (s *AuthServiceTestSuite) TestLogin_TwoFactor() {
	// Arrange
	u := s.factory.User(user.RolePractitioner)
	setup, err := security.NewMFAService(zaptest.NewLogger(s.T()), "AyurWell").SetupTOTP(u.Email())
	s.Require().NoError(err)
	u.StageMFASecret(setup.Secret)
	s.Require().NoError(u.EnableMFA())

	s.Run("CodeRequired", func() {
		s.users.On("FindByEmail", s.ctx, u.Email()).Return(u, nil).Once()

		_, err := s.service.Login(s.ctx, inbound.LoginCommand{Email: u.Email(), Password: testutils.TestPassword})

		testutils.AssertAppError(s.T(), err, apperrors.CodeMFARequired)
	})

	s.Run("ValidCode", func() {
		code, err := totp.GenerateCode(setup.Secret, time.Now().UTC())
		s.Require().NoError(err)
		s.users.On("FindByEmail", s.ctx, u.Email()).Return(u, nil).Once()
		s.users.On("Update", s.ctx, u).Return(nil).Once()

		resp, err := s.service.Login(s.ctx, inbound.LoginCommand{
			Email:    u.Email(),
			Password: testutils.TestPassword,
			TOTPCode: code,
		})

		s.Require().NoError(err)
		s.True(resp.User.MFAEnabled)
	})
}

func (s *AuthServiceTestSuite) TestRefresh_RotatesAndRejectsReplay() {
	// Arrange
	u := s.factory.User(user.RolePatient)
	pair, err := s.tokens.Issue(s.ctx, u)
	s.Require().NoError(err)
	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()

	// Act
	resp, err := s.service.Refresh(s.ctx, pair.RefreshToken)

	// Assert
	s.Require().NoError(err)
	s.NotEqual(pair.RefreshToken, resp.RefreshToken)

	_, err = s.service.Refresh(s.ctx, pair.RefreshToken)
	testutils.AssertAppError(s.T(), err, apperrors.CodeUnauthorized)
}

func (s *AuthServiceTestSuite) TestLogout_RevokesAccessToken() {
	// Arrange
	u := s.factory.User(user.RolePatient)
	pair, err := s.tokens.Issue(s.ctx, u)
	s.Require().NoError(err)
	actor, err := s.service.Authenticate(s.ctx, pair.AccessToken)
	s.Require().NoError(err)

	// Act
	s.Require().NoError(s.service.Logout(s.ctx, *actor))

	// Assert
	_, err = s.service.Authenticate(s.ctx, pair.AccessToken)
	testutils.AssertAppError(s.T(), err, apperrors.CodeUnauthorized)
}

func (s *AuthServiceTestSuite) TestForgotAndResetPassword() {
	// Arrange
	u := s.factory.User(user.RolePatient)
	var link string
	s.users.On("FindByEmail", s.ctx, u.Email()).Return(u, nil).Once()
	s.mailer.On("SendPasswordReset", s.ctx, u.Email(), u.Name(), mock.AnythingOfType("string")).
		Run(func(args mock.Arguments) { link = args.String(3) }).
		Return(nil).Once()
	s.notifier.On("Notify", s.ctx, u.ID(), notification.KindPasswordReset, mock.Anything, mock.Anything, "").
		Return(nil).Once()

	// Act
	s.Require().NoError(s.service.ForgotPassword(s.ctx, u.Email()))

	// Assert
	prefix := "https://portal.example.com/reset-password?token="
	s.Require().True(strings.HasPrefix(link, prefix), link)
	token := strings.TrimPrefix(link, prefix)

	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()
	s.users.On("Update", s.ctx, u).Return(nil).Once()
	s.audit.On("Append", s.ctx, mock.MatchedBy(func(e *audit.Entry) bool {
		return e.Action == audit.ActionPasswordReset && e.ActorID == u.ID()
	})).Return(nil).Once()

	err := s.service.ResetPassword(s.ctx, inbound.ResetPasswordCommand{Token: token, Password: "brand-new-pass"})
	s.Require().NoError(err)
	s.NoError(u.CheckPassword("brand-new-pass"))

	// the token is single-use
	err = s.service.ResetPassword(s.ctx, inbound.ResetPasswordCommand{Token: token, Password: "another-pass"})
	testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
}

func (s *AuthServiceTestSuite) TestForgotPassword_UnknownEmailSucceedsSilently() {
	s.users.On("FindByEmail", s.ctx, "ghost@example.com").Return(nil, user.ErrUserNotFound).Once()

	err := s.service.ForgotPassword(s.ctx, "ghost@example.com")

	s.NoError(err)
	s.mailer.AssertNotCalled(s.T(), "SendPasswordReset", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func (s *AuthServiceTestSuite) TestSelectRole_PractitionerGetsPendingProfile() {
	// Arrange
	u := s.factory.User(user.RoleNone)
	actor := s.signedIn(u)
	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()
	s.users.On("Update", s.ctx, u).Return(nil).Once()
	s.doctors.On("FindByID", s.ctx, u.ID()).Return(nil, doctor.ErrDoctorNotFound).Once()
	s.doctors.On("Save", s.ctx, mock.MatchedBy(func(p *doctor.Profile) bool {
		return p.ID == u.ID() && p.Status == doctor.StatusPending
	})).Return(nil).Once()

	// Act
	resp, err := s.service.SelectRole(s.ctx, actor, user.RolePractitioner)

	// Assert
	s.Require().NoError(err)
	s.Require().NotNil(resp.User.Role)
	s.Equal(user.RolePractitioner, *resp.User.Role)

	reissued, err := s.service.Authenticate(s.ctx, resp.AccessToken)
	s.Require().NoError(err)
	s.Equal(user.RolePractitioner, reissued.Role)
	s.Equal(actor.SessionID, reissued.SessionID)
	s.Contains(s.dispatcher.Names(), user.RoleSelectedEvent{}.EventName())
}

func (s *AuthServiceTestSuite) TestSelectRole_PatientLinksRecords() {
	u := s.factory.User(user.RoleNone)
	actor := s.signedIn(u)
	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()
	s.users.On("Update", s.ctx, u).Return(nil).Once()
	s.patients.On("LinkAccount", s.ctx, u.Email(), u.ID()).Return(int64(2), nil).Once()

	resp, err := s.service.SelectRole(s.ctx, actor, user.RolePatient)

	s.Require().NoError(err)
	s.Equal(user.RolePatient, *resp.User.Role)
}

func (s *AuthServiceTestSuite) TestSelectRole_FailedLinkCanBeRetried() {
	// Arrange
	u := s.factory.User(user.RoleNone)
	actor := s.signedIn(u)
	stored := u.Snapshot()
	s.users.On("FindByID", s.ctx, u.ID()).Return(user.Reconstitute(stored), nil).Once()
	s.patients.On("LinkAccount", s.ctx, u.Email(), u.ID()).Return(int64(0), errors.New("connection reset")).Once()

	// Act
	_, first := s.service.SelectRole(s.ctx, actor, user.RolePatient)

	// Assert
	testutils.AssertAppError(s.T(), first, apperrors.CodeDatabaseError)
	s.users.AssertNotCalled(s.T(), "Update", mock.Anything, mock.Anything)
	s.Empty(s.dispatcher.Names())

	// Arrange
	s.users.On("FindByID", s.ctx, u.ID()).Return(user.Reconstitute(stored), nil).Once()
	s.patients.On("LinkAccount", s.ctx, u.Email(), u.ID()).Return(int64(1), nil).Once()
	s.users.On("Update", s.ctx, mock.MatchedBy(func(saved *user.User) bool {
		return saved.ID() == u.ID() && saved.Role() == user.RolePatient
	})).Return(nil).Once()

	// Act
	resp, second := s.service.SelectRole(s.ctx, actor, user.RolePatient)

	// Assert
	s.Require().NoError(second)
	s.Equal(user.RolePatient, *resp.User.Role)
}

func (s *AuthServiceTestSuite) TestSelectRole_OnlyOnce() {
	u := s.factory.User(user.RolePatient)
	actor := s.signedIn(u)
	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()

	_, err := s.service.SelectRole(s.ctx, actor, user.RolePractitioner)

	testutils.AssertAppError(s.T(), err, apperrors.CodeRoleAlreadySelected)
}

func (s *AuthServiceTestSuite) TestSelectRole_AdminOverride() {
	// Arrange
	u, err := user.NewUser(adminEmail, "Site Admin", testutils.TestPassword, bcrypt.MinCost)
	s.Require().NoError(err)
	u.ClearEvents()
	actor := s.signedIn(u)
	s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Twice()
	s.users.On("Update", s.ctx, u).Return(nil).Twice()

	// Act
	first, err := s.service.SelectRole(s.ctx, actor, user.RolePatient)
	s.Require().NoError(err)
	second, err := s.service.SelectRole(s.ctx, actor, user.RolePractitioner)

	// Assert
	s.Require().NoError(err)
	s.Equal(user.RoleAdmin, *first.User.Role)
	s.Equal(user.RoleAdmin, *second.User.Role)
}

func (s *AuthServiceTestSuite) TestMFAEnrollment() {
	s.Run("PatientsCannotEnroll", func() {
		actor := s.factory.Actor(s.factory.User(user.RolePatient))

		_, err := s.service.EnrollMFA(s.ctx, actor)

		testutils.AssertAppError(s.T(), err, apperrors.CodeInsufficientPermissions)
	})

	s.Run("EnrollThenVerify", func() {
		// Arrange
		u := s.factory.User(user.RolePractitioner)
		actor := s.factory.Actor(u)
		s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Twice()
		s.users.On("Update", s.ctx, u).Return(nil).Twice()
		s.audit.On("Append", s.ctx, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.Action == audit.ActionMFAEnabled
		})).Return(nil).Once()

		// Act
		enrollment, err := s.service.EnrollMFA(s.ctx, actor)
		s.Require().NoError(err)
		s.Contains(enrollment.OTPAuthURL, "otpauth://totp/")
		s.False(u.MFAEnabled())

		s.ErrorContains(s.service.VerifyMFA(s.ctx, actor, "000000"), "Invalid two-factor code")
		s.False(u.MFAEnabled())

		code, err := totp.GenerateCode(enrollment.Secret, time.Now().UTC())
		s.Require().NoError(err)
		s.users.On("FindByID", s.ctx, u.ID()).Return(u, nil).Once()
		err = s.service.VerifyMFA(s.ctx, actor, code)

		// Assert
		s.Require().NoError(err)
		s.True(u.MFAEnabled())
	})
}

func (s *AuthServiceTestSuite) TestAuthenticate_RejectsGarbage() {
	_, err := s.service.Authenticate(s.ctx, "not-a-jwt")

	testutils.AssertAppError(s.T(), err, apperrors.CodeUnauthorized)
}

func TestAuthServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AuthServiceTestSuite))
}
