package appointment

import (
	"context"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/ayurwell/portal/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type AppointmentServiceTestSuite struct {
	suite.Suite
	ctx          context.Context
	appointments *testutils.MockAppointmentRepository
	doctors      *testutils.MockDoctorRepository
	users        *testutils.MockUserRepository
	dispatcher   *testutils.RecordingDispatcher
	service      *Service
	factory      *testutils.Factory
	now          time.Time
}

func (s *AppointmentServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.appointments = new(testutils.MockAppointmentRepository)
	s.doctors = new(testutils.MockDoctorRepository)
	s.users = new(testutils.MockUserRepository)
	s.dispatcher = &testutils.RecordingDispatcher{}
	s.service = NewService(s.appointments, s.doctors, s.users, security.NewValidator(), s.dispatcher, zaptest.NewLogger(s.T()))
	s.now = time.Date(2025, 6, 10, 14, 30, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.factory = testutils.NewFactory(9)
}

func (s *AppointmentServiceTestSuite) TearDownTest() {
	s.appointments.AssertExpectations(s.T())
	s.doctors.AssertExpectations(s.T())
	s.users.AssertExpectations(s.T())
}

func TestParseStart(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected time.Time
		wantErr  bool
	}{
		{name: "date only", input: "2025-06-12", expected: time.Date(2025, 6, 12, 9, 0, 0, 0, time.UTC)},
		{name: "rfc3339", input: "2025-06-12T15:30:00+05:30", expected: time.Date(2025, 6, 12, 10, 0, 0, 0, time.UTC)},
		{name: "garbage", input: "next tuesday", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseStart(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.True(t, tt.expected.Equal(got), "got %s", got)
		})
	}
}

func (s *AppointmentServiceTestSuite) TestBook_DateOnlyStartsAtNine() {
	// Arrange
	patientUser := s.factory.User(user.RolePatient)
	doc := s.factory.Doctor(doctor.StatusVerified)
	s.doctors.On("FindByID", s.ctx, doc.ID).Return(doc, nil).Once()
	s.users.On("FindByID", s.ctx, patientUser.ID()).Return(patientUser, nil).Once()
	s.appointments.On("Create", s.ctx, mock.AnythingOfType("*appointment.Appointment")).Return(nil).Once()

	// Act
	dto, err := s.service.Book(s.ctx, s.factory.Actor(patientUser), inbound.BookAppointmentCommand{
		DoctorID: doc.ID,
		Date:     "2025-06-11",
	})

	// Assert
	s.Require().NoError(err)
	s.Equal(time.Date(2025, 6, 11, 9, 0, 0, 0, time.UTC), dto.StartTimestamp)
	s.Equal(time.Date(2025, 6, 11, 10, 0, 0, 0, time.UTC), dto.EndTimestamp)
	s.Equal(appointment.StatusScheduled, dto.Status)
	s.Equal(patientUser.Name(), dto.PatientName)
	s.Equal("Consultation with "+doc.Name, dto.Title)
	s.Equal([]string{appointment.BookedEvent{}.EventName()}, s.dispatcher.Names())
}

func (s *AppointmentServiceTestSuite) TestBook_Rejections() {
	patientUser := s.factory.User(user.RolePatient)
	actor := s.factory.Actor(patientUser)

	s.Run("PastDate", func() {
		doc := s.factory.Doctor(doctor.StatusVerified)
		s.doctors.On("FindByID", s.ctx, doc.ID).Return(doc, nil).Once()
		s.users.On("FindByID", s.ctx, patientUser.ID()).Return(patientUser, nil).Once()

		_, err := s.service.Book(s.ctx, actor, inbound.BookAppointmentCommand{DoctorID: doc.ID, Date: "2025-06-09"})

		appErr := testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
		s.Contains(appErr.Message, "past")
	})

	s.Run("UnverifiedDoctor", func() {
		doc := s.factory.Doctor(doctor.StatusPending)
		s.doctors.On("FindByID", s.ctx, doc.ID).Return(doc, nil).Once()

		_, err := s.service.Book(s.ctx, actor, inbound.BookAppointmentCommand{DoctorID: doc.ID, Date: "2025-06-11"})

		testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
	})

	s.Run("UnknownDoctor", func() {
		id := uuid.New()
		s.doctors.On("FindByID", s.ctx, id).Return(nil, doctor.ErrDoctorNotFound).Once()

		_, err := s.service.Book(s.ctx, actor, inbound.BookAppointmentCommand{DoctorID: id, Date: "2025-06-11"})

		testutils.AssertAppError(s.T(), err, apperrors.CodeDoctorNotFound)
	})

	s.Run("BadDate", func() {
		_, err := s.service.Book(s.ctx, actor, inbound.BookAppointmentCommand{DoctorID: uuid.New(), Date: "soon"})

		testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
	})
}

func (s *AppointmentServiceTestSuite) TestList_GroupsByRoleNewestFirst() {
	// Arrange
	doctorUser := s.factory.User(user.RolePractitioner)
	patientID := uuid.New()
	later := s.factory.Appointment(patientID, doctorUser.ID(), s.now.Add(72*time.Hour))
	sooner := s.factory.Appointment(patientID, doctorUser.ID(), s.now.Add(24*time.Hour))
	done := s.factory.Appointment(patientID, doctorUser.ID(), s.now.Add(-48*time.Hour))
	s.Require().NoError(done.SetStatusByDoctor(doctorUser.ID(), appointment.StatusCompleted))
	s.appointments.On("FindByDoctor", s.ctx, doctorUser.ID()).
		Return([]*appointment.Appointment{later, sooner, done}, nil).Once()

	// Act
	list, err := s.service.List(s.ctx, s.factory.Actor(doctorUser))

	// Assert
	s.Require().NoError(err)
	s.Require().Len(list.Upcoming, 2)
	s.Equal(later.ID(), list.Upcoming[0].ID)
	s.Equal(sooner.ID(), list.Upcoming[1].ID)
	s.Require().Len(list.Past, 1)
	s.Equal(done.ID(), list.Past[0].ID)
}

func (s *AppointmentServiceTestSuite) TestList_PatientEmpty() {
	patientUser := s.factory.User(user.RolePatient)
	s.appointments.On("FindByPatient", s.ctx, patientUser.ID()).Return(nil, nil).Once()

	list, err := s.service.List(s.ctx, s.factory.Actor(patientUser))

	s.Require().NoError(err)
	s.NotNil(list.Upcoming)
	s.NotNil(list.Past)
}

func (s *AppointmentServiceTestSuite) TestCancel() {
	patientUser := s.factory.User(user.RolePatient)
	actor := s.factory.Actor(patientUser)

	s.Run("OwnScheduled", func() {
		a := s.factory.Appointment(patientUser.ID(), uuid.New(), s.now.Add(24*time.Hour))
		s.appointments.On("FindByID", s.ctx, a.ID()).Return(a, nil).Once()
		s.appointments.On("Update", s.ctx, a).Return(nil).Once()

		dto, err := s.service.Cancel(s.ctx, actor, a.ID())

		s.Require().NoError(err)
		s.Equal(appointment.StatusCancelled, dto.Status)
		s.Contains(s.dispatcher.Names(), appointment.StatusChangedEvent{}.EventName())
	})

	s.Run("SomeoneElses", func() {
		a := s.factory.Appointment(uuid.New(), uuid.New(), s.now.Add(24*time.Hour))
		s.appointments.On("FindByID", s.ctx, a.ID()).Return(a, nil).Once()

		_, err := s.service.Cancel(s.ctx, actor, a.ID())

		testutils.AssertAppError(s.T(), err, apperrors.CodeAppointmentNotFound)
	})

	s.Run("AlreadyCancelled", func() {
		a := s.factory.Appointment(patientUser.ID(), uuid.New(), s.now.Add(24*time.Hour))
		s.Require().NoError(a.CancelByPatient(patientUser.ID()))
		s.appointments.On("FindByID", s.ctx, a.ID()).Return(a, nil).Once()

		_, err := s.service.Cancel(s.ctx, actor, a.ID())

		testutils.AssertAppError(s.T(), err, apperrors.CodeInvalidStateTransition)
	})
}

func (s *AppointmentServiceTestSuite) TestUpdateStatus_DoctorCompletes() {
	doctorUser := s.factory.User(user.RolePractitioner)
	a := s.factory.Appointment(uuid.New(), doctorUser.ID(), s.now)
	s.appointments.On("FindByID", s.ctx, a.ID()).Return(a, nil).Once()
	s.appointments.On("Update", s.ctx, a).Return(nil).Once()

	dto, err := s.service.UpdateStatus(s.ctx, s.factory.Actor(doctorUser), a.ID(), appointment.StatusCompleted)

	s.Require().NoError(err)
	s.Equal(appointment.StatusCompleted, dto.Status)
}

func (s *AppointmentServiceTestSuite) TestUpdateStatus_RejectsScheduled() {
	doctorUser := s.factory.User(user.RolePractitioner)
	a := s.factory.Appointment(uuid.New(), doctorUser.ID(), s.now)
	s.appointments.On("FindByID", s.ctx, a.ID()).Return(a, nil).Once()

	_, err := s.service.UpdateStatus(s.ctx, s.factory.Actor(doctorUser), a.ID(), appointment.StatusScheduled)

	testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
}

func TestAppointmentServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AppointmentServiceTestSuite))
}
