package dietplan

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// DietPlanTestSuite provides a test suite for the DietPlan aggregate
type DietPlanTestSuite struct {
	suite.Suite
	practitionerID uuid.UUID
	patientID      uuid.UUID
}

func TestDietPlanTestSuite(t *testing.T) {
	suite.Run(t, new(DietPlanTestSuite))
}

func (suite *DietPlanTestSuite) SetupTest() {
	suite.practitionerID = uuid.New()
	suite.patientID = uuid.New()
}

func sampleDays(numbers ...int) []Day {
	days := make([]Day, 0, len(numbers))
	for _, n := range numbers {
		days = append(days, Day{
			Day: n,
			Meals: []Meal{
				{Name: "Breakfast", Items: []FoodItem{{Name: "Stewed apples", Description: "Warm, with cinnamon"}}},
				{Name: "Lunch", Items: []FoodItem{{Name: "Kitchari", Description: "Mung dal and basmati rice"}}},
			},
		})
	}
	return days
}

func (suite *DietPlanTestSuite) draft(days []Day) Draft {
	return Draft{
		PatientID:      suite.patientID,
		PatientName:    "Anika Verma",
		PractitionerID: suite.practitionerID,
		Title:          "Pitta pacifying week",
		Days:           days,
		Notes:          "Avoid chilies",
	}
}

func (suite *DietPlanTestSuite) TestNew() {
	suite.Run("ValidDraft_ShouldOrderDaysAndRaiseEvent", func() {
		// Act
		plan, err := New(suite.draft(sampleDays(3, 1, 2)))

		// Assert
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), StatusDraft, plan.Status())
		assert.Equal(suite.T(), int64(1), plan.Version())
		require.Len(suite.T(), plan.Days(), 3)
		assert.Equal(suite.T(), []int{1, 2, 3}, []int{plan.Days()[0].Day, plan.Days()[1].Day, plan.Days()[2].Day})

		events := plan.Events()
		require.Len(suite.T(), events, 1)
		created, ok := events[0].(CreatedEvent)
		require.True(suite.T(), ok)
		assert.Equal(suite.T(), plan.ID(), created.PlanID)
	})

	invalid := []struct {
		name string
		days []Day
		edit func(d *Draft)
		want error
	}{
		{name: "NoTitle_ShouldFail", days: sampleDays(1), edit: func(d *Draft) { d.Title = "  " }, want: ErrTitleRequired},
		{name: "NoDays_ShouldFail", days: nil, want: ErrNoDays},
		{name: "DuplicateDay_ShouldFail", days: sampleDays(1, 1), want: ErrDuplicateDay},
		{name: "DayZero_ShouldFail", days: sampleDays(0), want: ErrInvalidDayNumber},
		{name: "MealWithoutItems_ShouldFail", days: []Day{{Day: 1, Meals: []Meal{{Name: "Dinner"}}}}, want: ErrMealWithoutItems},
		{name: "UnnamedItem_ShouldFail", days: []Day{{Day: 1, Meals: []Meal{{Name: "Dinner", Items: []FoodItem{{}}}}}}, want: ErrItemNameRequired},
		{name: "NoPatient_ShouldFail", days: sampleDays(1), edit: func(d *Draft) { d.PatientID = uuid.Nil }, want: ErrPatientRequired},
	}
	for _, tc := range invalid {
		suite.Run(tc.name, func() {
			d := suite.draft(tc.days)
			if tc.edit != nil {
				tc.edit(&d)
			}

			plan, err := New(d)

			assert.Nil(suite.T(), plan)
			assert.ErrorIs(suite.T(), err, tc.want)
		})
	}
}

func (suite *DietPlanTestSuite) TestRevise() {
	plan, err := New(suite.draft(sampleDays(1)))
	require.NoError(suite.T(), err)
	plan.ClearEvents()

	suite.Run("OtherPractitioner_ShouldFail", func() {
		err := plan.Revise(uuid.New(), "New title", sampleDays(1), "")
		assert.ErrorIs(suite.T(), err, ErrNotOwner)
	})

	suite.Run("Owner_ShouldBumpVersion", func() {
		err := plan.Revise(suite.practitionerID, "Kapha balancing", sampleDays(1, 2), "More ginger")

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), "Kapha balancing", plan.Title())
		assert.Equal(suite.T(), int64(2), plan.Version())
		assert.Len(suite.T(), plan.Days(), 2)
		events := plan.Events()
		require.Len(suite.T(), events, 1)
		assert.Equal(suite.T(), "dietplan.revised", events[0].EventName())
	})
}

func (suite *DietPlanTestSuite) TestSend() {
	plan, err := New(suite.draft(sampleDays(1, 2, 3)))
	require.NoError(suite.T(), err)
	plan.ClearEvents()
	account := uuid.New()

	assert.ErrorIs(suite.T(), plan.Send(suite.practitionerID, nil), ErrNoLinkedAccount)
	assert.ErrorIs(suite.T(), plan.Send(uuid.New(), &account), ErrNotOwner)
	assert.False(suite.T(), plan.VisibleTo(account))

	require.NoError(suite.T(), plan.Send(suite.practitionerID, &account))

	assert.Equal(suite.T(), StatusSent, plan.Status())
	assert.Equal(suite.T(), int64(2), plan.Version())
	assert.NotNil(suite.T(), plan.SentAt())
	assert.True(suite.T(), plan.VisibleTo(account))
	assert.False(suite.T(), plan.VisibleTo(uuid.New()))
	events := plan.Events()
	require.Len(suite.T(), events, 1)
	sent := events[0].(SentEvent)
	assert.Equal(suite.T(), account, sent.PatientUserID)
}

func (suite *DietPlanTestSuite) TestDayFor() {
	plan, err := New(suite.draft(sampleDays(1, 2, 3)))
	require.NoError(suite.T(), err)

	_, err = plan.DayFor(time.Now())
	assert.ErrorIs(suite.T(), err, ErrNotSent)

	sentAt := time.Date(2026, 1, 10, 22, 0, 0, 0, time.UTC)
	snap := plan.Snapshot()
	snap.Status = StatusSent
	snap.SentAt = &sentAt
	sent := Reconstitute(snap)

	cases := map[time.Time]int{
		sentAt: 1,
		time.Date(2026, 1, 11, 1, 0, 0, 0, time.UTC): 2,
		time.Date(2026, 1, 12, 9, 0, 0, 0, time.UTC): 3,
		time.Date(2026, 1, 13, 9, 0, 0, 0, time.UTC): 1,
		time.Date(2026, 1, 9, 9, 0, 0, 0, time.UTC):  1, // clock skew before send
	}
	for at, want := range cases {
		day, err := sent.DayFor(at)
		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), want, day.Day, at.String())
	}
}

func (suite *DietPlanTestSuite) TestSummary() {
	plan, err := New(suite.draft(sampleDays(1)))
	require.NoError(suite.T(), err)

	s := plan.Summary()

	assert.Equal(suite.T(), plan.ID(), s.ID)
	assert.Equal(suite.T(), suite.patientID, s.PatientID)
	assert.Equal(suite.T(), "Anika Verma", s.PatientName)
	assert.Equal(suite.T(), plan.CreatedAt(), s.CreationDate)
}
