package dailylog

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2026, 5, 20, 18, 0, 0, 0, time.UTC)

func entry(date string, energy int) Entry {
	return Entry{Date: date, EnergyLevel: energy, Digestion: QualityGood, SleepQuality: QualityFair}
}

func TestNew(t *testing.T) {
	user := uuid.New()

	t.Run("empty date defaults to today", func(t *testing.T) {
		l, err := New(user, entry("", 7), testNow)
		require.NoError(t, err)
		assert.Equal(t, "2026-05-20", l.Date)
		assert.Equal(t, user, l.UserID)
	})

	tests := []struct {
		name string
		in   Entry
		want error
	}{
		{"energy too low", entry("", 0), ErrInvalidEnergy},
		{"energy too high", entry("", 11), ErrInvalidEnergy},
		{"bad date", entry("20/05/2026", 5), ErrInvalidDate},
		{"future date", entry("2026-05-21", 5), ErrFutureDate},
		{"bad quality", Entry{EnergyLevel: 5, Digestion: "great", SleepQuality: QualityGood}, ErrInvalidQuality},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(user, tt.in, testNow)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestReplace(t *testing.T) {
	user := uuid.New()
	first, err := New(user, entry("2026-05-19", 3), testNow)
	require.NoError(t, err)
	second, err := New(user, Entry{Date: "2026-05-19", EnergyLevel: 8, Digestion: QualityPoor, SleepQuality: QualityGood}, testNow)
	require.NoError(t, err)

	id := first.ID
	first.Replace(second)

	assert.Equal(t, id, first.ID)
	assert.Equal(t, 8, first.EnergyLevel)
	assert.Equal(t, QualityPoor, first.Digestion)
}

func TestSummarize(t *testing.T) {
	user := uuid.New()
	var logs []*DailyLog
	for _, e := range []Entry{
		entry("2026-05-20", 8),
		entry("2026-05-18", 4),
		{Date: "2026-05-14", EnergyLevel: 6, Digestion: QualityPoor, SleepQuality: QualityPoor},
		entry("2026-05-01", 10), // outside the window
	} {
		l, err := New(user, e, testNow)
		require.NoError(t, err)
		logs = append(logs, l)
	}

	s := Summarize(logs, testNow)

	assert.Equal(t, "2026-05-14", s.From)
	assert.Equal(t, "2026-05-20", s.To)
	assert.Equal(t, 3, s.DaysLogged)
	assert.InDelta(t, 6.0, s.AverageEnergy, 0.001)
	assert.Equal(t, 2, s.Digestion[QualityGood])
	assert.Equal(t, 1, s.Digestion[QualityPoor])
	assert.Equal(t, 1, s.Sleep[QualityPoor])
	require.Len(t, s.Days, 7)
	assert.Equal(t, DayPoint{Date: "2026-05-14", Energy: 6, Logged: true}, s.Days[0])
	assert.Equal(t, DayPoint{Date: "2026-05-15"}, s.Days[1])
	assert.Equal(t, DayPoint{Date: "2026-05-20", Energy: 8, Logged: true}, s.Days[6])
}

func TestSummarize_Empty(t *testing.T) {
	s := Summarize(nil, testNow)

	assert.Zero(t, s.DaysLogged)
	assert.Zero(t, s.AverageEnergy)
	assert.Len(t, s.Days, 7)
}
