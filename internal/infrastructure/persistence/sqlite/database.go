// Package sqlite provides SQLite database setup and demo data seeding
package sqlite

import (
	"fmt"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	gormModels "github.com/ayurwell/portal/internal/infrastructure/persistence/gorm"
)

// SetupDatabase opens the SQLite database and migrates every model
func SetupDatabase(dbPath string, gormLogger logger.Interface) (*gorm.DB, error) {
	// Use in-memory database if no path provided
	if dbPath == "" {
		dbPath = ":memory:"
	}

	dsn := dbPath
	if dbPath != ":memory:" {
		dsn = dbPath + "?_busy_timeout=5000&_journal_mode=WAL"
	}

	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: gormLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	if dbPath == ":memory:" {
		// each pooled connection would otherwise get its own empty database
		sqlDB, err := db.DB()
		if err != nil {
			return nil, err
		}
		sqlDB.SetMaxOpenConns(1)
	}

	if err := db.AutoMigrate(gormModels.AllModels()...); err != nil {
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return db, nil
}

// SeedOptions controls the demo data
type SeedOptions struct {
	AdminEmail    string
	Password      string
	BCryptCost    int
	ExtraPatients int
	// Seed makes gofakeit output reproducible. Zero picks a random seed.
	Seed int64
}

// SeedReport lists the demo accounts created
type SeedReport struct {
	AdminEmail        string
	PractitionerEmail string
	PatientEmail      string
	Patients          int
	Foods             int
	Skipped           bool
}

// SeedDatabase populates an empty database with demo accounts, patients, a
// sent diet plan and the food catalog. It does nothing when users exist.
func SeedDatabase(db *gorm.DB, opts SeedOptions) (*SeedReport, error) {
	var userCount int64
	if err := db.Model(&gormModels.UserModel{}).Count(&userCount).Error; err != nil {
		return nil, fmt.Errorf("failed to count users: %w", err)
	}
	if userCount > 0 {
		return &SeedReport{Skipped: true}, nil
	}

	if opts.Password == "" {
		opts.Password = "password"
	}
	if opts.AdminEmail == "" {
		opts.AdminEmail = "admin@ayurwell.com"
	}
	faker := gofakeit.New(opts.Seed)

	report := &SeedReport{
		AdminEmail:        opts.AdminEmail,
		PractitionerEmail: "doctor@ayurwell.com",
		PatientEmail:      "patient@ayurwell.com",
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		admin, err := seedUser(tx, opts, opts.AdminEmail, "AyurWell Admin", user.RoleAdmin)
		if err != nil {
			return err
		}

		practitioner, err := seedUser(tx, opts, report.PractitionerEmail, "Dr. Meera Iyer", user.RolePractitioner)
		if err != nil {
			return err
		}
		patientUser, err := seedUser(tx, opts, report.PatientEmail, "Arjun Rao", user.RolePatient)
		if err != nil {
			return err
		}

		profile := doctor.NewPending(practitioner.ID(), practitioner.Name(), practitioner.Email())
		if err := profile.Edit("Panchakarma and digestive health", "Fifteen years of classical Ayurvedic practice."); err != nil {
			return err
		}
		if err := profile.Review(admin.ID(), doctor.StatusVerified); err != nil {
			return err
		}
		if err := tx.Create(gormModels.DoctorToModel(profile)).Error; err != nil {
			return fmt.Errorf("failed to create doctor profile: %w", err)
		}

		linked, err := patient.New(practitioner.ID(), patient.Intake{
			Name:          patientUser.Name(),
			Email:         patientUser.Email(),
			Age:           34,
			BowelMovement: patient.BowelConstipated,
			Prakriti:      patient.Prakriti("Vata-Pitta"),
			Dosha:         patient.DoshaVata,
			Observations:  "Irregular appetite, dry skin, light sleep.",
			Allergies:     "Peanuts",
		})
		if err != nil {
			return err
		}
		linked.LinkAccount(patientUser.ID())
		if err := tx.Create(gormModels.PatientToModel(linked)).Error; err != nil {
			return fmt.Errorf("failed to create patient: %w", err)
		}
		report.Patients++

		for i := 0; i < opts.ExtraPatients; i++ {
			p, err := patient.New(practitioner.ID(), patient.Intake{
				Name:          faker.Name(),
				Email:         faker.Email(),
				Age:           faker.Number(18, 80),
				BowelMovement: patient.BowelNormal,
				Prakriti:      patient.Prakritis[faker.Number(0, len(patient.Prakritis)-1)],
				Dosha:         []patient.Dosha{patient.DoshaVata, patient.DoshaPitta, patient.DoshaKapha}[faker.Number(0, 2)],
				Observations:  faker.Sentence(8),
			})
			if err != nil {
				return err
			}
			if faker.Bool() {
				if err := p.ChangeStatus(patient.StatusFollowUp); err != nil {
					return err
				}
			}
			if err := tx.Create(gormModels.PatientToModel(p)).Error; err != nil {
				return fmt.Errorf("failed to create patient: %w", err)
			}
			report.Patients++
		}

		if err := seedDietPlan(tx, practitioner.ID(), linked); err != nil {
			return err
		}

		if err := seedDailyLog(tx, patientUser.ID()); err != nil {
			return err
		}

		for _, attrs := range catalog {
			f, err := food.New(attrs)
			if err != nil {
				return err
			}
			if err := tx.Create(gormModels.FoodToModel(f)).Error; err != nil {
				return fmt.Errorf("failed to create food %s: %w", attrs.Name, err)
			}
			report.Foods++
		}

		return nil
	})
	if err != nil {
		return nil, err
	}

	return report, nil
}

func seedUser(tx *gorm.DB, opts SeedOptions, email, name string, role user.Role) (*user.User, error) {
	u, err := user.NewUser(email, name, opts.Password, opts.BCryptCost)
	if err != nil {
		return nil, fmt.Errorf("failed to build demo user %s: %w", email, err)
	}

	requested := role
	if role == user.RoleAdmin {
		requested = user.RolePatient
	}
	if err := u.SelectRole(requested, opts.AdminEmail); err != nil {
		return nil, fmt.Errorf("failed to assign role to %s: %w", email, err)
	}

	if err := tx.Create(gormModels.UserToModel(u)).Error; err != nil {
		return nil, fmt.Errorf("failed to create demo user: %w", err)
	}
	return u, nil
}

func seedDietPlan(tx *gorm.DB, practitionerID uuid.UUID, p *patient.Patient) error {
	day := func(n int, breakfast, lunch, dinner string) dietplan.Day {
		return dietplan.Day{
			Day:   n,
			Meals: []dietplan.Meal{
				{Name: "Breakfast", Items: []dietplan.FoodItem{{Name: breakfast}}},
				{Name: "Lunch", Items: []dietplan.FoodItem{{Name: lunch}}},
				{Name: "Dinner", Items: []dietplan.FoodItem{{Name: dinner}}},
			},
		}
	}

	plan, err := dietplan.New(dietplan.Draft{
		PatientID:      p.ID,
		PatientName:    p.Name,
		PractitionerID: practitionerID,
		Title:          "Vata pacifying week",
		Days:           []dietplan.Day{
			day(1, "Warm spiced oats with ghee", "Moong dal khichdi", "Vegetable soup with rice"),
			day(2, "Stewed apples with cinnamon", "Basmati rice with sambar", "Sweet potato and spinach curry"),
			day(3, "Rice porridge with cardamom", "Quinoa with roasted root vegetables", "Mung bean soup"),
		},
		Notes: "Favour warm, moist and grounding foods. Avoid cold drinks.",
	})
	if err != nil {
		return err
	}
	if err := plan.Send(practitionerID, p.UserID); err != nil {
		return err
	}
	return tx.Create(gormModels.DietPlanToModel(plan)).Error
}

func seedDailyLog(tx *gorm.DB, userID uuid.UUID) error {
	now := time.Now().UTC()
	water := 1800
	log, err := dailylog.New(userID, dailylog.Entry{
		Date:         now.AddDate(0, 0, -1).Format(dailylog.DateLayout),
		EnergyLevel:  6,
		Digestion:    dailylog.QualityGood,
		SleepQuality: dailylog.QualityFair,
		WaterIntake:  &water,
	}, now)
	if err != nil {
		return err
	}
	return tx.Create(gormModels.DailyLogToModel(log)).Error
}

func entry(name, category, virya string, rasa, guna []string, vata, pitta, kapha food.Effect, calories float64) food.Attributes {
	return food.Attributes{
		Name:         name,
		Category:     category,
		Rasa:         rasa,
		Virya:        food.Virya(virya),
		Guna:         guna,
		DoshaEffects: food.DoshaEffects{Vata: vata, Pitta: pitta, Kapha: kapha},
		Calories:     calories,
	}
}

const (
	inc = food.EffectIncreases
	dec = food.EffectDecreases
	neu = food.EffectNeutral
)

var catalog = []food.Attributes{
	entry("Ghee", "Fats", "cooling", []string{"sweet"}, []string{"heavy", "oily"}, dec, dec, inc, 900),
	entry("Ginger", "Spices", "heating", []string{"pungent"}, []string{"light", "oily"}, dec, inc, dec, 80),
	entry("Mung beans", "Legumes", "cooling", []string{"sweet", "astringent"}, []string{"light", "dry"}, neu, dec, dec, 347),
	entry("Basmati rice", "Grains", "cooling", []string{"sweet"}, []string{"light", "soft"}, dec, dec, neu, 360),
	entry("Turmeric", "Spices", "heating", []string{"bitter", "pungent"}, []string{"light", "dry"}, neu, neu, dec, 312),
	entry("Cucumber", "Vegetables", "cooling", []string{"sweet"}, []string{"heavy", "moist"}, inc, dec, inc, 15),
	entry("Honey", "Sweeteners", "heating", []string{"sweet", "astringent"}, []string{"heavy", "dry"}, neu, inc, dec, 304),
	entry("Sweet potato", "Vegetables", "cooling", []string{"sweet"}, []string{"heavy", "moist"}, dec, dec, inc, 86),
}
