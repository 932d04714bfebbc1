package notification

import (
	"context"
	"errors"
	"testing"

	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/test/testutils"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type ServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	repo    *testutils.MockNotificationRepository
	pusher  *testutils.RecordingPusher
	service *Service
	factory *testutils.Factory
}

func (s *ServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.repo = new(testutils.MockNotificationRepository)
	s.pusher = testutils.NewRecordingPusher()
	s.service = NewService(s.repo, s.pusher, zaptest.NewLogger(s.T()))
	s.factory = testutils.NewFactory(7)
}

func (s *ServiceTestSuite) TearDownTest() {
	s.repo.AssertExpectations(s.T())
}

func (s *ServiceTestSuite) TestNotify_PersistsThenPushes() {
	// Arrange
	userID := uuid.New()
	s.repo.On("Create", s.ctx, mock.MatchedBy(func(n *notification.Notification) bool {
		return n.UserID == userID && n.Kind == notification.KindDietPlanSent && !n.Read
	})).Return(nil).Once()

	// Act
	err := s.service.Notify(s.ctx, userID, notification.KindDietPlanSent, "New diet plan", "body", "/patient/diet-plan")

	// Assert
	s.Require().NoError(err)
	pushed := s.pusher.For(userID)
	s.Require().Len(pushed, 1)
	s.Equal("New diet plan", pushed[0].Title)
}

func (s *ServiceTestSuite) TestNotify_StoreFailureSkipsPush() {
	userID := uuid.New()
	s.repo.On("Create", s.ctx, mock.Anything).Return(errors.New("connection reset")).Once()

	err := s.service.Notify(s.ctx, userID, notification.KindPasswordReset, "t", "b", "")

	testutils.AssertAppError(s.T(), err, apperrors.CodeDatabaseError)
	s.Empty(s.pusher.For(userID))
}

func (s *ServiceTestSuite) TestList_ClampsLimit() {
	actor := s.factory.Actor(s.factory.User(user.RolePatient))

	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "default", limit: 0, expected: 50},
		{name: "within range", limit: 20, expected: 20},
		{name: "capped", limit: 500, expected: 100},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.repo.On("FindByUser", s.ctx, actor.UserID, tt.expected).Return(nil, nil).Once()

			items, err := s.service.List(s.ctx, actor, tt.limit)

			s.Require().NoError(err)
			s.NotNil(items)
			s.Empty(items)
		})
	}
}

func (s *ServiceTestSuite) TestMarkRead() {
	// Arrange
	actor := s.factory.Actor(s.factory.User(user.RolePatient))
	n := notification.New(actor.UserID, notification.KindAppointmentUpdated, "Appointment completed", "b", "")
	s.repo.On("FindByID", s.ctx, n.ID).Return(n, nil).Once()
	s.repo.On("MarkRead", s.ctx, n).Return(nil).Once()

	// Act
	got, err := s.service.MarkRead(s.ctx, actor, n.ID)

	// Assert
	s.Require().NoError(err)
	s.True(got.Read)
	s.NotNil(got.ReadAt)
}

func (s *ServiceTestSuite) TestMarkRead_AlreadyReadIsNoop() {
	actor := s.factory.Actor(s.factory.User(user.RolePatient))
	n := notification.New(actor.UserID, notification.KindAppointmentUpdated, "t", "b", "")
	n.MarkRead()
	s.repo.On("FindByID", s.ctx, n.ID).Return(n, nil).Once()

	got, err := s.service.MarkRead(s.ctx, actor, n.ID)

	s.Require().NoError(err)
	s.True(got.Read)
	s.repo.AssertNotCalled(s.T(), "MarkRead", mock.Anything, mock.Anything)
}

func (s *ServiceTestSuite) TestMarkRead_OtherUsersNotificationIsNotFound() {
	actor := s.factory.Actor(s.factory.User(user.RolePatient))
	n := notification.New(uuid.New(), notification.KindDietPlanSent, "t", "b", "")
	s.repo.On("FindByID", s.ctx, n.ID).Return(n, nil).Once()

	_, err := s.service.MarkRead(s.ctx, actor, n.ID)

	testutils.AssertAppError(s.T(), err, apperrors.CodeNotFound)
	s.False(n.Read)
}

func (s *ServiceTestSuite) TestMarkRead_Missing() {
	actor := s.factory.Actor(s.factory.User(user.RolePatient))
	id := uuid.New()
	s.repo.On("FindByID", s.ctx, id).Return(nil, notification.ErrNotificationNotFound).Once()

	_, err := s.service.MarkRead(s.ctx, actor, id)

	testutils.AssertAppError(s.T(), err, apperrors.CodeNotFound)
}

func TestServiceTestSuite(t *testing.T) {
	suite.Run(t, new(ServiceTestSuite))
}
