package dailylog

import (
	"context"
	"testing"
	"time"

	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/infrastructure/security"
	"github.com/ayurwell/portal/internal/ports/inbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"github.com/ayurwell/portal/test/testutils"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap/zaptest"
)

type DailyLogServiceTestSuite struct {
	suite.Suite
	ctx     context.Context
	logs    *testutils.MockDailyLogRepository
	service *Service
	actor   inbound.Actor
	now     time.Time
}

func (s *DailyLogServiceTestSuite) SetupTest() {
	s.ctx = context.Background()
	s.logs = new(testutils.MockDailyLogRepository)
	s.service = NewService(s.logs, security.NewValidator(), zaptest.NewLogger(s.T()))
	s.now = time.Date(2025, 4, 20, 18, 0, 0, 0, time.UTC)
	s.service.now = func() time.Time { return s.now }
	s.actor = inbound.Actor{UserID: uuid.New()}
}

func (s *DailyLogServiceTestSuite) TearDownTest() {
	s.logs.AssertExpectations(s.T())
}

func (s *DailyLogServiceTestSuite) TestSubmit_DefaultsToToday() {
	// Arrange
	water := 1800
	s.logs.On("FindByUserAndDate", s.ctx, s.actor.UserID, "2025-04-20").Return(nil, dailylog.ErrLogNotFound).Once()
	s.logs.On("Upsert", s.ctx, mock.AnythingOfType("*dailylog.DailyLog")).Return(nil).Once()

	// Act
	dto, err := s.service.Submit(s.ctx, s.actor, inbound.SubmitDailyLogCommand{
		EnergyLevel:  7,
		Digestion:    dailylog.QualityGood,
		SleepQuality: dailylog.QualityFair,
		WaterIntake:  &water,
	})

	// Assert
	s.Require().NoError(err)
	s.Equal("2025-04-20", dto.Date)
	s.Equal(7, dto.EnergyLevel)
}

func (s *DailyLogServiceTestSuite) TestSubmit_ResubmissionKeepsIdentity() {
	// Arrange
	first, err := dailylog.New(s.actor.UserID, dailylog.Entry{
		EnergyLevel:  3,
		Digestion:    dailylog.QualityPoor,
		SleepQuality: dailylog.QualityPoor,
	}, s.now.Add(-6*time.Hour))
	s.Require().NoError(err)
	s.logs.On("FindByUserAndDate", s.ctx, s.actor.UserID, "2025-04-20").Return(first, nil).Once()
	s.logs.On("Upsert", s.ctx, first).Return(nil).Once()

	// Act
	dto, err := s.service.Submit(s.ctx, s.actor, inbound.SubmitDailyLogCommand{
		EnergyLevel:  8,
		Digestion:    dailylog.QualityGood,
		SleepQuality: dailylog.QualityGood,
	})

	// Assert
	s.Require().NoError(err)
	s.Equal(first.ID, dto.ID)
	s.Equal(8, dto.EnergyLevel)
}

func (s *DailyLogServiceTestSuite) TestSubmit_FutureDate() {
	_, err := s.service.Submit(s.ctx, s.actor, inbound.SubmitDailyLogCommand{
		Date:         "2025-04-21",
		EnergyLevel:  5,
		Digestion:    dailylog.QualityFair,
		SleepQuality: dailylog.QualityFair,
	})

	appErr := testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
	s.Contains(appErr.Message, "future")
}

func (s *DailyLogServiceTestSuite) TestSubmit_Validation() {
	_, err := s.service.Submit(s.ctx, s.actor, inbound.SubmitDailyLogCommand{
		EnergyLevel:  11,
		Digestion:    dailylog.QualityFair,
		SleepQuality: "great",
	})

	testutils.AssertAppError(s.T(), err, apperrors.CodeValidationFailed)
}

func (s *DailyLogServiceTestSuite) TestList_DefaultRange() {
	s.logs.On("FindByUser", s.ctx, s.actor.UserID, "2025-03-22", "2025-04-20").Return(nil, nil).Once()

	list, err := s.service.List(s.ctx, s.actor, "", "")

	s.Require().NoError(err)
	s.Empty(list)
}

func (s *DailyLogServiceTestSuite) TestList_InvertedRange() {
	_, err := s.service.List(s.ctx, s.actor, "2025-04-10", "2025-04-01")

	testutils.AssertAppError(s.T(), err, apperrors.CodeBadRequest)
}

func (s *DailyLogServiceTestSuite) TestWeekly() {
	// Arrange
	mk := func(date string, energy int, q dailylog.Quality) *dailylog.DailyLog {
		l, err := dailylog.New(s.actor.UserID, dailylog.Entry{Date: date, EnergyLevel: energy, Digestion: q, SleepQuality: q}, s.now)
		s.Require().NoError(err)
		return l
	}
	logs := []*dailylog.DailyLog{
		mk("2025-04-20", 8, dailylog.QualityGood),
		mk("2025-04-18", 4, dailylog.QualityPoor),
	}
	s.logs.On("FindByUser", s.ctx, s.actor.UserID, "2025-04-14", "2025-04-20").Return(logs, nil).Once()

	// Act
	summary, err := s.service.Weekly(s.ctx, s.actor)

	// Assert
	s.Require().NoError(err)
	s.Equal(2, summary.DaysLogged)
	s.InDelta(6.0, summary.AverageEnergy, 0.001)
	s.Equal(1, summary.Digestion[dailylog.QualityGood])
	s.Equal(1, summary.Sleep[dailylog.QualityPoor])
	s.Len(summary.Days, 7)
}

func TestDailyLogServiceTestSuite(t *testing.T) {
	suite.Run(t, new(DailyLogServiceTestSuite))
}
