// Package dailylog holds the patient's daily check-in.
package dailylog

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DateLayout is the calendar-day format logs are keyed by
const DateLayout = "2006-01-02"

// Quality rates digestion and sleep
type Quality string

const (
	QualityGood Quality = "good"
	QualityFair Quality = "fair"
	QualityPoor Quality = "poor"
)

// Valid reports whether q is a known rating
func (q Quality) Valid() bool {
	return q == QualityGood || q == QualityFair || q == QualityPoor
}

var (
	ErrInvalidEnergy  = errors.New("energy level must be between 1 and 10")
	ErrInvalidQuality = errors.New("quality must be good, fair or poor")
	ErrInvalidDate    = errors.New("date must be YYYY-MM-DD")
	ErrFutureDate     = errors.New("cannot log a day in the future")
	ErrInvalidWater   = errors.New("water intake cannot be negative")

	ErrLogNotFound = errors.New("no log for that day")
)

// DailyLog is one day's check-in. There is at most one per user per date.
type DailyLog struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	Date         string
	EnergyLevel  int
	Digestion    Quality
	SleepQuality Quality
	WaterIntake  *int
	Notes        string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Entry is the submitted form
type Entry struct {
	Date         string
	EnergyLevel  int
	Digestion    Quality
	SleepQuality Quality
	WaterIntake  *int
	Notes        string
}

// New validates an entry for userID. An empty date means today (UTC).
func New(userID uuid.UUID, e Entry, now time.Time) (*DailyLog, error) {
	date, err := normalizeDate(e.Date, now)
	if err != nil {
		return nil, err
	}
	if err := validate(e); err != nil {
		return nil, err
	}

	ts := now.UTC()
	return &DailyLog{
		ID:           uuid.New(),
		UserID:       userID,
		Date:         date,
		EnergyLevel:  e.EnergyLevel,
		Digestion:    e.Digestion,
		SleepQuality: e.SleepQuality,
		WaterIntake:  e.WaterIntake,
		Notes:        strings.TrimSpace(e.Notes),
		CreatedAt:    ts,
		UpdatedAt:    ts,
	}, nil
}

// Replace overwrites the day's values with a resubmission, keeping identity.
func (l *DailyLog) Replace(next *DailyLog) {
	l.EnergyLevel = next.EnergyLevel
	l.Digestion = next.Digestion
	l.SleepQuality = next.SleepQuality
	l.WaterIntake = next.WaterIntake
	l.Notes = next.Notes
	l.UpdatedAt = next.UpdatedAt
}

func validate(e Entry) error {
	if e.EnergyLevel < 1 || e.EnergyLevel > 10 {
		return ErrInvalidEnergy
	}
	if !e.Digestion.Valid() || !e.SleepQuality.Valid() {
		return ErrInvalidQuality
	}
	if e.WaterIntake != nil && *e.WaterIntake < 0 {
		return ErrInvalidWater
	}
	return nil
}

func normalizeDate(date string, now time.Time) (string, error) {
	today := now.UTC().Format(DateLayout)
	if date == "" {
		return today, nil
	}

	parsed, err := time.Parse(DateLayout, date)
	if err != nil {
		return "", ErrInvalidDate
	}
	normalized := parsed.Format(DateLayout)
	if normalized > today {
		return "", ErrFutureDate
	}
	return normalized, nil
}

// WeeklySummary aggregates the last seven days of logs
type WeeklySummary struct {
	From          string          `json:"from"`
	To            string          `json:"to"`
	DaysLogged    int             `json:"daysLogged"`
	AverageEnergy float64         `json:"averageEnergy"`
	Digestion     map[Quality]int `json:"digestion"`
	Sleep         map[Quality]int `json:"sleep"`
	Days          []DayPoint      `json:"days"`
}

// DayPoint is one bar of the weekly chart. Energy is zero on days without a log.
type DayPoint struct {
	Date   string `json:"date"`
	Energy int    `json:"energy"`
	Logged bool   `json:"logged"`
}

// WeekWindow returns the first and last date of the seven-day window ending at now
func WeekWindow(now time.Time) (from, to string) {
	end := now.UTC()
	return end.AddDate(0, 0, -6).Format(DateLayout), end.Format(DateLayout)
}

// Summarize builds the weekly view from logs inside the window ending at now
func Summarize(logs []*DailyLog, now time.Time) WeeklySummary {
	from, to := WeekWindow(now)
	byDate := make(map[string]*DailyLog, len(logs))
	for _, l := range logs {
		if l.Date >= from && l.Date <= to {
			byDate[l.Date] = l
		}
	}

	summary := WeeklySummary{
		From:      from,
		To:        to,
		Digestion: map[Quality]int{QualityGood: 0, QualityFair: 0, QualityPoor: 0},
		Sleep:     map[Quality]int{QualityGood: 0, QualityFair: 0, QualityPoor: 0},
		Days:      make([]DayPoint, 0, 7),
	}

	total := 0
	start := now.UTC().AddDate(0, 0, -6)
	for i := 0; i < 7; i++ {
		date := start.AddDate(0, 0, i).Format(DateLayout)
		point := DayPoint{Date: date}
		if l, ok := byDate[date]; ok {
			point.Energy = l.EnergyLevel
			point.Logged = true
			total += l.EnergyLevel
			summary.DaysLogged++
			summary.Digestion[l.Digestion]++
			summary.Sleep[l.SleepQuality]++
		}
		summary.Days = append(summary.Days, point)
	}

	if summary.DaysLogged > 0 {
		summary.AverageEnergy = float64(total) / float64(summary.DaysLogged)
	}
	return summary
}
