package appointment

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type AppointmentTestSuite struct {
	suite.Suite
	now       time.Time
	patientID uuid.UUID
	doctorID  uuid.UUID
}

func TestAppointmentTestSuite(t *testing.T) {
	suite.Run(t, new(AppointmentTestSuite))
}

func (suite *AppointmentTestSuite) SetupTest() {
	suite.now = time.Date(2026, 3, 10, 15, 30, 0, 0, time.UTC)
	suite.patientID = uuid.New()
	suite.doctorID = uuid.New()
}

func (suite *AppointmentTestSuite) booking(start time.Time) Booking {
	return Booking{
		PatientID:   suite.patientID,
		PatientName: "Anika Verma",
		DoctorID:    suite.doctorID,
		DoctorName:  "Dr. Rao",
		Start:       start,
	}
}

func (suite *AppointmentTestSuite) TestBook() {
	suite.Run("Tomorrow_ShouldScheduleOneHour", func() {
		start := suite.now.Add(24 * time.Hour)

		a, err := Book(suite.booking(start), suite.now)

		require.NoError(suite.T(), err)
		assert.Equal(suite.T(), StatusScheduled, a.Status())
		assert.Equal(suite.T(), start.Add(time.Hour), a.End())
		assert.Equal(suite.T(), "Consultation with Dr. Rao", a.Title())
		events := a.Events()
		require.Len(suite.T(), events, 1)
		assert.IsType(suite.T(), BookedEvent{}, events[0])
	})

	suite.Run("EarlierToday_ShouldBeAllowed", func() {
		_, err := Book(suite.booking(StartOfDay(suite.now).Add(9*time.Hour)), suite.now)
		assert.NoError(suite.T(), err)
	})

	suite.Run("Yesterday_ShouldFail", func() {
		_, err := Book(suite.booking(suite.now.Add(-24*time.Hour)), suite.now)
		assert.ErrorIs(suite.T(), err, ErrDateInPast)
	})

	suite.Run("MissingDoctor_ShouldFail", func() {
		b := suite.booking(suite.now.Add(time.Hour))
		b.DoctorID = uuid.Nil
		_, err := Book(b, suite.now)
		assert.ErrorIs(suite.T(), err, ErrDoctorRequired)
	})

	suite.Run("MissingDate_ShouldFail", func() {
		_, err := Book(suite.booking(time.Time{}), suite.now)
		assert.ErrorIs(suite.T(), err, ErrDateRequired)
	})
}

func (suite *AppointmentTestSuite) TestCancelByPatient() {
	a, err := Book(suite.booking(suite.now.Add(time.Hour)), suite.now)
	require.NoError(suite.T(), err)
	a.ClearEvents()

	assert.ErrorIs(suite.T(), a.CancelByPatient(uuid.New()), ErrNotParticipant)

	require.NoError(suite.T(), a.CancelByPatient(suite.patientID))
	assert.Equal(suite.T(), StatusCancelled, a.Status())
	events := a.Events()
	require.Len(suite.T(), events, 1)
	changed := events[0].(StatusChangedEvent)
	assert.Equal(suite.T(), StatusScheduled, changed.From)
	assert.Equal(suite.T(), StatusCancelled, changed.To)

	assert.ErrorIs(suite.T(), a.CancelByPatient(suite.patientID), ErrNotScheduled)
}

func (suite *AppointmentTestSuite) TestSetStatusByDoctor() {
	a, err := Book(suite.booking(suite.now.Add(time.Hour)), suite.now)
	require.NoError(suite.T(), err)

	assert.ErrorIs(suite.T(), a.SetStatusByDoctor(suite.patientID, StatusCompleted), ErrNotParticipant)
	assert.ErrorIs(suite.T(), a.SetStatusByDoctor(suite.doctorID, StatusScheduled), ErrInvalidStatus)

	require.NoError(suite.T(), a.SetStatusByDoctor(suite.doctorID, StatusCompleted))
	assert.Equal(suite.T(), StatusCompleted, a.Status())

	assert.ErrorIs(suite.T(), a.SetStatusByDoctor(suite.doctorID, StatusCancelled), ErrNotScheduled)
}

func (suite *AppointmentTestSuite) TestSplit() {
	first, _ := Book(suite.booking(suite.now.Add(3*time.Hour)), suite.now)
	second, _ := Book(suite.booking(suite.now.Add(2*time.Hour)), suite.now)
	third, _ := Book(suite.booking(suite.now.Add(time.Hour)), suite.now)
	require.NoError(suite.T(), second.SetStatusByDoctor(suite.doctorID, StatusCompleted))

	upcoming, past := Split([]*Appointment{first, second, third})

	assert.Equal(suite.T(), []*Appointment{first, third}, upcoming)
	assert.Equal(suite.T(), []*Appointment{second}, past)
}

func (suite *AppointmentTestSuite) TestSnapshotRoundTrip() {
	a, _ := Book(suite.booking(suite.now.Add(time.Hour)), suite.now)

	assert.Equal(suite.T(), a.Snapshot(), Reconstitute(a.Snapshot()).Snapshot())
}
