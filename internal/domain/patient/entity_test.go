package patient

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validIntake() Intake {
	return Intake{
		Name:          "Anika Verma",
		Email:         "Anika@Example.com",
		Age:           29,
		BowelMovement: BowelNormal,
		Prakriti:      "Vata-Pitta",
		Dosha:         DoshaPitta,
		Allergies:     "peanuts",
	}
}

func TestNew_Defaults(t *testing.T) {
	practitioner := uuid.New()

	p, err := New(practitioner, validIntake())

	require.NoError(t, err)
	assert.Equal(t, StatusActive, p.Status)
	assert.Equal(t, DefaultWaterIntake, p.WaterIntake)
	assert.Equal(t, "anika@example.com", p.Email)
	assert.True(t, p.BelongsTo(practitioner))
	assert.False(t, p.BelongsTo(uuid.New()))
	assert.Nil(t, p.UserID)
}

func TestNew_Validation(t *testing.T) {
	negative := -1
	tests := []struct {
		name   string
		mutate func(in *Intake)
		want   error
	}{
		{"short name", func(in *Intake) { in.Name = "A" }, ErrNameTooShort},
		{"zero age", func(in *Intake) { in.Age = 0 }, ErrInvalidAge},
		{"negative water", func(in *Intake) { in.WaterIntake = &negative }, ErrInvalidWaterIntake},
		{"unknown bowel", func(in *Intake) { in.BowelMovement = "irregular" }, ErrInvalidBowelMovement},
		{"unknown prakriti", func(in *Intake) { in.Prakriti = "Vata-Vata" }, ErrInvalidPrakriti},
		{"capitalised dosha", func(in *Intake) { in.Dosha = "Vata" }, ErrInvalidDosha},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validIntake()
			tt.mutate(&in)

			_, err := New(uuid.New(), in)

			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestChangeStatus(t *testing.T) {
	p, err := New(uuid.New(), validIntake())
	require.NoError(t, err)
	before := p.LastActivity

	require.NoError(t, p.ChangeStatus(StatusFollowUp))
	assert.Equal(t, StatusFollowUp, p.Status)
	assert.True(t, p.Status.Engaged())
	assert.False(t, p.LastActivity.Before(before))

	assert.ErrorIs(t, p.ChangeStatus("Discharged"), ErrInvalidStatus)
	assert.False(t, StatusInactive.Engaged())
}

func TestProfiles(t *testing.T) {
	p, err := New(uuid.New(), validIntake())
	require.NoError(t, err)

	assert.Equal(t, "Name: Anika Verma, Prakriti: Vata-Pitta, Dosha Imbalance: pitta, Status: Active", p.DietProfile())
	assert.Equal(t, "Prakriti: Vata-Pitta, Current Dosha Imbalance: pitta, Allergies/Intolerances: peanuts", p.MealProfile(""))
	assert.Contains(t, p.MealProfile("  lactose "), "Allergies/Intolerances: lactose")

	p.Allergies = ""
	assert.Contains(t, p.MealProfile(""), "Allergies/Intolerances: None")
}

func TestPrakritiList(t *testing.T) {
	assert.Len(t, Prakritis, 10)
	for _, p := range Prakritis {
		assert.True(t, p.Valid(), string(p))
	}
}
