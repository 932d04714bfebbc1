package patient

import (
	"context"
	"testing"

	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/ayurwell/portal/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type PatientServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	patients *testutils.MockPatientRepository
	users    *testutils.MockUserRepository
	service  *Service
	factory  *testutils.Factory
	actor    inbound.Actor
}

func (s *PatientServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.patients = new(testutils.MockPatientRepository)
	s.users = new(testutils.MockUserRepository)
	s.service = NewService(s.patients, s.users, security.NewValidator(), zaptest.NewLogger(s.T()))
	s.factory = testutils.NewFactory(5)
	s.actor = s.factory.Actor(s.factory.User(user.RolePractitioner))
}

func (s *PatientServiceTestSuite) TearDownTest() {
	s.patients.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
}

func intake(email string) inbound.IntakeCommand {
	return inbound.IntakeCommand{
		Name:          "Rohan Kulkarni",
		Email:         email,
		Age:           41,
		BowelMovement: patient.BowelConstipated,
		Prakriti:      "Vata-Pitta",
		Dosha:         patient.DoshaVata,
		Observations:  "dry skin, irregular appetite",
	}
}

func (s *PatientServiceTestSuite) TestIntake_CreatesActivePatient() {
	// Arrange
	s.users.On("FindByEmail", s.ctx, "rohan@example.com").Return(nil, user.ErrUserNotFound).Once()
	s.patients.On("Create", s.ctx, mock.AnythingOfType("*patient.Patient")).Return(nil).Once()

	// Act
	dto, err := s.service.Intake(s.ctx, s.actor, intake("rohan@example.com"))

	// Assert
	s.Require().NoError(err)
	s.Equal(patient.StatusActive, dto.Status)
	s.Equal(patient.DefaultWaterIntake, dto.WaterIntake)
	s.Nil(dto.UserID)
}

func (s *PatientServiceTestSuite) TestIntake_LinksRegisteredPatient() {
	account := s.factory.User(user.RolePatient)
	s.users.On("FindByEmail", s.ctx, account.Email()).Return(account, nil).Once()
	s.patients.On("Create", s.ctx, mock.MatchedBy(func(p *patient.Patient) bool {
		return p.UserID != nil && *p.UserID == account.ID()
	})).Return(nil).Once()

	dto, err := s.service.Intake(s.ctx, s.actor, intake(account.Email()))

	s.Require().NoError(err)
	s.Equal(account.ID(), *dto.UserID)
}

func (s *PatientServiceTestSuite) TestIntake_DoesNotLinkPractitionerAccounts() {
	other := s.factory.User(user.RolePractitioner)
	s.users.On("FindByEmail", s.ctx, other.Email()).Return(other, nil).Once()
	s.patients.On("Create", s.ctx, mock.AnythingOfType("*patient.Patient")).Return(nil).Once()

	dto, err := s.service.Intake(s.ctx, s.actor, intake(other.Email()))

	s.Require().NoError(err)
	s.Nil(dto.UserID)
}

func (s *PatientServiceTestSuite) TestIntake_Validation() {
	tests := []struct {
		name   string
		mutate func(*inbound.IntakeCommand)
	}{
		{name: "unknown prakriti", mutate: func(c *inbound.IntakeCommand) { c.Prakriti = "Agni" }},
		{name: "unknown dosha", mutate: func(c *inbound.IntakeCommand) { c.Dosha = "fire" }},
		{name: "missing age", mutate: func(c *inbound.IntakeCommand) { c.Age = 0 }},
		{name: "bad bowel movement", mutate: func(c *inbound.IntakeCommand) { c.BowelMovement = "irregular" }},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			cmd := intake("")
			tt.mutate(&cmd)

			_, err := s.service.Intake(s.ctx, s.actor, cmd)

			testutils.AssertAppError(s.T(), err, apperrors.CodeValidationFailed)
		})
	}
}

func (s *PatientServiceTestSuite) TestList_PassesFilter() {
	status := patient.StatusFollowUp
	owned := s.factory.Patient(s.actor.UserID)
	s.patients.On("FindByPractitioner", s.ctx, s.actor.UserID, outbound.PatientFilter{Status: &status, Query: "ro"}).
		Return([]*patient.Patient{owned}, nil).Once()

	list, err := s.service.List(s.ctx, s.actor, inbound.PatientQuery{Status: &status, Query: "  ro "})

	s.Require().NoError(err)
	s.Require().Len(list, 1)
	s.Equal(owned.ID, list[0].ID)
}

func (s *PatientServiceTestSuite) TestGet_OtherPractitionersPatientIsNotFound() {
	foreign := s.factory.Patient(uuid.New())
	s.patients.On("FindByID", s.ctx, foreign.ID).Return(foreign, nil).Once()

	_, err := s.service.Get(s.ctx, s.actor, foreign.ID)

	testutils.AssertAppError(s.T(), err, apperrors.CodePatientNotFound)
}

func (s *PatientServiceTestSuite) TestChangeStatus_TouchesActivity() {
	// Arrange
	p := s.factory.Patient(s.actor.UserID)
	before := p.LastActivity
	s.patients.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()
	s.patients.On("Update", s.ctx, p).Return(nil).Once()

	// Act
	dto, err := s.service.ChangeStatus(s.ctx, s.actor, p.ID, patient.StatusInactive)

	// Assert
	s.Require().NoError(err)
	s.Equal(patient.StatusInactive, dto.Status)
	s.False(dto.LastActivity.Before(before))
}

func (s *PatientServiceTestSuite) TestChangeStatus_UnknownStatus() {
	p := s.factory.Patient(s.actor.UserID)
	s.patients.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()

	_, err := s.service.ChangeStatus(s.ctx, s.actor, p.ID, "Archived")

	testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
}

func TestPatientServiceTestSuite(t *testing.T) {
	suite.Run(t, new(PatientServiceTestSuite))
}
