package admin

import (
	"context"
	"errors"
	"testing"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/infrastructure/persistence/memory"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/ayurwell/portal/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Notify(ctx context.Context, userID uuid.UUID, kind notification.Kind, title, body, link string) error {
	return m.Called(ctx, userID, kind, title, body, link).Error(0)
}

type AdminServiceTestSuite struct {
	suite.Suite
	ctx      context.Context
	users    *testutils.MockUserRepository
	doctors  *testutils.MockDoctorRepository
	foods    *testutils.MockFoodRepository
	auditLog *testutils.MockAuditRepository
	cache    *memory.CacheRepository
	notifier *mockNotifier
	service  *Service
	factory  *testutils.Factory
	admin    inbound.Actor
}

func (s *AdminServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.users = new(testutils.MockUserRepository)
	s.doctors = new(testutils.MockDoctorRepository)
	s.foods = new(testutils.MockFoodRepository)
	s.auditLog = new(testutils.MockAuditRepository)
	s.cache = memory.NewCacheRepository(0)
	s.notifier = new(mockNotifier)
	s.service = NewService(Deps{
		Users:     s.users,
		Doctors:   s.doctors,
		Foods:     s.foods,
		AuditLog:  s.auditLog,
		Cache:     s.cache,
		Notifier:  s.notifier,
		Validator: security.NewValidator(),
	}, zaptest.NewLogger(s.T()))
	s.factory = testutils.NewFactory(5)
	s.admin = inbound.Actor{UserID: uuid.New(), Email: "admin@ayurwell.com", Role: user.RoleAdmin}
}

func (s *AdminServiceTestSuite) TearDownTest() {
	s.cache.Close()
	s.users.AssertExpectations(s.T())
	s.doctors.AssertExpectations(s.T())
	s.foods.AssertExpectations(s.T())
	s.auditLog.AssertExpectations(s.T())
	s.notifier.AssertExpectations(s.T())
}

func auditAction(action string) interface{} {
	return mock.MatchedBy(func(e *audit.Entry) bool { return e.Action == action })
}

func (s *AdminServiceTestSuite) TestListUsers_ByRole() {
	role := user.RolePractitioner
	s.users.On("List", s.ctx, &role).
		Return([]*user.User{s.factory.User(user.RolePractitioner), s.factory.User(user.RolePractitioner)}, nil).Once()

	users, err := s.service.ListUsers(s.ctx, &role)

	s.Require().NoError(err)
	s.Len(users, 2)
}

func (s *AdminServiceTestSuite) TestReviewDoctor_Verify() {
	// Arrange
	p := s.factory.Doctor(doctor.StatusPending)
	s.doctors.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()
	s.doctors.On("Save", s.ctx, p).Return(nil).Once()
	s.auditLog.On("Append", s.ctx, auditAction(audit.ActionDoctorVerified)).Return(nil).Once()
	s.notifier.On("Notify", s.ctx, p.ID, notification.KindDoctorReviewed, "Profile review",
		mock.MatchedBy(func(body string) bool { return body != "" }), "/practitioner/profile").Return(nil).Once()

	// Act
	dto, err := s.service.ReviewDoctor(s.ctx, s.admin, p.ID, doctor.StatusVerified)

	// Assert
	s.Require().NoError(err)
	s.Equal(doctor.StatusVerified, dto.Status)
	s.Require().NotNil(p.VerifiedBy)
	s.Equal(s.admin.UserID, *p.VerifiedBy)
}

func (s *AdminServiceTestSuite) TestReviewDoctor_Reject() {
	p := s.factory.Doctor(doctor.StatusVerified)
	s.doctors.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()
	s.doctors.On("Save", s.ctx, p).Return(nil).Once()
	s.auditLog.On("Append", s.ctx, auditAction(audit.ActionDoctorRejected)).Return(nil).Once()
	s.notifier.On("Notify", s.ctx, p.ID, notification.KindDoctorReviewed, mock.Anything, mock.Anything, mock.Anything).
		Return(errors.New("push failed")).Once()

	dto, err := s.service.ReviewDoctor(s.ctx, s.admin, p.ID, doctor.StatusRejected)

	s.Require().NoError(err, "a failed notification does not undo the review")
	s.Equal(doctor.StatusRejected, dto.Status)
	s.Nil(p.VerifiedAt)
}

func (s *AdminServiceTestSuite) TestReviewDoctor_Errors() {
	s.Run("AlreadyInState", func() {
		p := s.factory.Doctor(doctor.StatusVerified)
		s.doctors.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()

		_, err := s.service.ReviewDoctor(s.ctx, s.admin, p.ID, doctor.StatusVerified)

		testutils.AssertAppError(s.T(), err, apperrors.CodeInvalidStateTransition)
	})

	s.Run("BackToPending", func() {
		p := s.factory.Doctor(doctor.StatusVerified)
		s.doctors.On("FindByID", s.ctx, p.ID).Return(p, nil).Once()

		_, err := s.service.ReviewDoctor(s.ctx, s.admin, p.ID, doctor.StatusPending)

		testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
	})

	s.Run("Unknown", func() {
		id := uuid.New()
		s.doctors.On("FindByID", s.ctx, id).Return(nil, doctor.ErrDoctorNotFound).Once()

		_, err := s.service.ReviewDoctor(s.ctx, s.admin, id, doctor.StatusVerified)

		testutils.AssertAppError(s.T(), err, apperrors.CodeDoctorNotFound)
	})
}

func (s *AdminServiceTestSuite) TestListFoods_CachesUntilChanged() {
	// Arrange
	ghee, err := food.New(food.Attributes{Name: "Ghee", Virya: food.ViryaCooling})
	s.Require().NoError(err)
	s.foods.On("List", s.ctx).Return([]*food.Food{ghee}, nil).Twice()
	s.foods.On("Create", s.ctx, mock.AnythingOfType("*food.Food")).Return(nil).Once()
	s.auditLog.On("Append", s.ctx, auditAction(audit.ActionFoodCreated)).Return(nil).Once()

	// Act
	first, err := s.service.ListFoods(s.ctx)
	s.Require().NoError(err)
	second, err := s.service.ListFoods(s.ctx)
	s.Require().NoError(err)

	_, err = s.service.CreateFood(s.ctx, s.admin, inbound.FoodCommand{Name: "Ginger", Virya: food.ViryaHeating})
	s.Require().NoError(err)
	_, err = s.service.ListFoods(s.ctx)
	s.Require().NoError(err)

	// Assert
	s.Equal(first, second)
	s.Equal("Ghee", first[0].Name)
	s.NotNil(first[0].Rasa)
}

func (s *AdminServiceTestSuite) TestCreateFood_Duplicate() {
	s.foods.On("Create", s.ctx, mock.AnythingOfType("*food.Food")).Return(food.ErrDuplicateFood).Once()

	_, err := s.service.CreateFood(s.ctx, s.admin, inbound.FoodCommand{Name: "Ghee"})

	testutils.AssertAppError(s.T(), err, apperrors.CodeConflict)
}

func (s *AdminServiceTestSuite) TestCreateFood_Validation() {
	_, err := s.service.CreateFood(s.ctx, s.admin, inbound.FoodCommand{Name: "Chili", Rasa: []string{"spicy"}})

	testutils.AssertAppError(s.T(), err, apperrors.CodeValidationFailed)
}

func (s *AdminServiceTestSuite) TestUpdateFood() {
	// Arrange
	rice, err := food.New(food.Attributes{Name: "Rice"})
	s.Require().NoError(err)
	s.foods.On("FindByID", s.ctx, rice.ID).Return(rice, nil).Once()
	s.foods.On("Update", s.ctx, rice).Return(nil).Once()
	s.auditLog.On("Append", s.ctx, auditAction(audit.ActionFoodUpdated)).Return(nil).Once()

	// Act
	dto, err := s.service.UpdateFood(s.ctx, s.admin, rice.ID, inbound.FoodCommand{
		Name:         "Basmati rice",
		Rasa:         []string{"sweet"},
		DoshaEffects: food.DoshaEffects{Vata: food.EffectDecreases, Pitta: food.EffectDecreases, Kapha: food.EffectIncreases},
		Calories:     130,
	})

	// Assert
	s.Require().NoError(err)
	s.Equal("Basmati rice", dto.Name)
	s.Equal(food.EffectIncreases, dto.DoshaEffects.Kapha)
}

func (s *AdminServiceTestSuite) TestDeleteFood_Missing() {
	id := uuid.New()
	s.foods.On("FindByID", s.ctx, id).Return(nil, food.ErrFoodNotFound).Once()

	err := s.service.DeleteFood(s.ctx, s.admin, id)

	testutils.AssertAppError(s.T(), err, apperrors.CodeNotFound)
}

func (s *AdminServiceTestSuite) TestDeleteFood() {
	rice, err := food.New(food.Attributes{Name: "Rice"})
	s.Require().NoError(err)
	s.foods.On("FindByID", s.ctx, rice.ID).Return(rice, nil).Once()
	s.foods.On("Delete", s.ctx, rice.ID).Return(nil).Once()
	s.auditLog.On("Append", s.ctx, auditAction(audit.ActionFoodDeleted)).Return(nil).Once()

	s.NoError(s.service.DeleteFood(s.ctx, s.admin, rice.ID))
}

func (s *AdminServiceTestSuite) TestAudit_Limits() {
	tests := []struct {
		name     string
		limit    int
		expected int
	}{
		{name: "default", limit: 0, expected: 50},
		{name: "explicit", limit: 10, expected: 10},
		{name: "capped", limit: 10000, expected: 500},
	}

	for _, tt := range tests {
		s.Run(tt.name, func() {
			s.auditLog.On("Latest", s.ctx, tt.expected).Return(nil, nil).Once()

			entries, err := s.service.Audit(s.ctx, tt.limit)

			s.Require().NoError(err)
			s.NotNil(entries)
		})
	}
}

func TestAdminServiceTestSuite(t *testing.T) {
	suite.Run(t, new(AdminServiceTestSuite))
}
