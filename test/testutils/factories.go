// Package testutils provides test data factories for consistent test data generation
package testutils

import (
	"fmt"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// TestPassword is the password of every factory user
const TestPassword = "password123"

// Factory builds valid domain objects with fake data
type Factory struct {
	faker *gofakeit.Faker
}

// NewFactory creates a factory. The same seed gives the same data.
func NewFactory(seed int64) *Factory {
	return &Factory{faker: gofakeit.New(seed)}
}

// User creates a user holding role. RoleNone leaves the role unselected.
func (f *Factory) User(role user.Role) *user.User {
	email := fmt.Sprintf("user%d.%s@example.com", f.faker.Number(1000, 9999), uuid.NewString()[:8])
	u, err := user.NewUser(email, f.faker.Name(), TestPassword, bcrypt.MinCost)
	if err != nil {
		panic(err)
	}

	switch role {
	case user.RoleNone:
	case user.RoleAdmin:
		if err := u.SelectRole(user.RolePatient, u.Email()); err != nil {
			panic(err)
		}
	default:
		if err := u.SelectRole(role, ""); err != nil {
			panic(err)
		}
	}
	u.ClearEvents()
	return u
}

// Actor returns the caller identity of u
func (f *Factory) Actor(u *user.User) inbound.Actor {
	return inbound.Actor{
		UserID:    u.ID(),
		Email:     u.Email(),
		Role:      u.Role(),
		SessionID: uuid.NewString(),
		TokenID:   uuid.NewString(),
		ExpiresAt: time.Now().Add(15 * time.Minute),
	}
}

// Patient creates an Active patient record owned by practitionerID
func (f *Factory) Patient(practitionerID uuid.UUID) *patient.Patient {
	p, err := patient.New(practitionerID, patient.Intake{
		Name:          f.faker.Name(),
		Email:         f.faker.Email(),
		Age:           f.faker.Number(18, 80),
		BowelMovement: patient.BowelNormal,
		Prakriti:      patient.Prakritis[f.faker.Number(0, len(patient.Prakritis)-1)],
		Dosha:         patient.DoshaPitta,
		Observations:  f.faker.Sentence(6),
	})
	if err != nil {
		panic(err)
	}
	return p
}

// Doctor creates a doctor profile in the given status
func (f *Factory) Doctor(status doctor.Status) *doctor.Profile {
	p := doctor.NewPending(uuid.New(), "Dr. "+f.faker.LastName(), f.faker.Email())
	if status != doctor.StatusPending {
		if err := p.Review(uuid.New(), status); err != nil {
			panic(err)
		}
	}
	return p
}

// Appointment creates a scheduled appointment starting at start
func (f *Factory) Appointment(patientID, doctorID uuid.UUID, start time.Time) *appointment.Appointment {
	a, err := appointment.Book(appointment.Booking{
		PatientID:   patientID,
		PatientName: f.faker.Name(),
		DoctorID:    doctorID,
		DoctorName:  "Dr. " + f.faker.LastName(),
		Start:       start,
	}, start)
	if err != nil {
		panic(err)
	}
	a.ClearEvents()
	return a
}

// Days builds n valid plan days
func (f *Factory) Days(n int) []dietplan.Day {
	days := make([]dietplan.Day, 0, n)
	for i := 1; i <= n; i++ {
		days = append(days, dietplan.Day{
			Day: i,
			Meals: []dietplan.Meal{
				{Name: "Breakfast", Items: []dietplan.FoodItem{{Name: f.faker.Breakfast()}}},
				{Name: "Lunch", Items: []dietplan.FoodItem{{Name: f.faker.Lunch()}}},
				{Name: "Dinner", Items: []dietplan.FoodItem{{Name: f.faker.Dinner()}}},
			},
		})
	}
	return days
}

// DietPlan creates a draft plan for p written by p's practitioner
func (f *Factory) DietPlan(p *patient.Patient, days int) *dietplan.DietPlan {
	plan, err := dietplan.New(dietplan.Draft{
		PatientID:      p.ID,
		PatientName:    p.Name,
		PractitionerID: p.PractitionerID,
		Title:          f.faker.Sentence(3),
		Days:           f.Days(days),
		Notes:          f.faker.Sentence(8),
	})
	if err != nil {
		panic(err)
	}
	plan.ClearEvents()
	return plan
}

// SentDietPlan creates a plan already sent to recipient
func (f *Factory) SentDietPlan(p *patient.Patient, recipient uuid.UUID, days int) *dietplan.DietPlan {
	plan := f.DietPlan(p, days)
	if err := plan.Send(p.PractitionerID, &recipient); err != nil {
		panic(err)
	}
	plan.ClearEvents()
	return plan
}
