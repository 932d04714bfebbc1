// Package dashboard assembles the role landing pages from the other aggregates
package dashboard

import (
	"cmp"
	"context"
	"errors"
	"slices"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	apperrors "github.com/ayurwell/portal/pkg/errors"
	"go.uber.org/zap"
)

const (
	recentPatients   = 5
	upcomingPreviews = 5
)

// Repositories groups the stores the dashboards read from
type Repositories struct {
	Users        outbound.UserRepository
	Patients     outbound.PatientRepository
	Doctors      outbound.DoctorRepository
	Appointments outbound.AppointmentRepository
	DailyLogs    outbound.DailyLogRepository
	DietPlans    outbound.DietPlanRepository
	Foods        outbound.FoodRepository
}

// Service implements inbound.DashboardService
type Service struct {
	repos  Repositories
	logger *zap.Logger
	now    func() time.Time
}

var _ inbound.DashboardService = (*Service)(nil)

// NewService creates a new dashboard service
func NewService(repos Repositories, logger *zap.Logger) *Service {
	return &Service{
		repos:  repos,
		logger: logger.Named("dashboard-service"),
		now:    time.Now,
	}
}

// Practitioner returns today's schedule, patient counts and plan summaries
func (s *Service) Practitioner(ctx context.Context, actor inbound.Actor) (*inbound.PractitionerDashboard, error) {
	appts, err := s.repos.Appointments.FindByDoctor(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list appointments", err)
	}
	patients, err := s.repos.Patients.FindByPractitioner(ctx, actor.UserID, outbound.PatientFilter{})
	if err != nil {
		return nil, apperrors.NewDatabaseError("list patients", err)
	}
	plans, err := s.repos.DietPlans.FindByPractitioner(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list diet plans", err)
	}

	today := appointment.StartOfDay(s.now())
	tomorrow := today.AddDate(0, 0, 1)

	scheduled, _ := appointment.Split(appts)
	sortByStart(scheduled)

	out := &inbound.PractitionerDashboard{
		TodayAppointments:    []inbound.AppointmentDTO{},
		UpcomingAppointments: []inbound.AppointmentDTO{},
		TotalPatients:        len(patients),
		RecentPatients:       []inbound.PatientDTO{},
		DietPlans:            make([]dietplan.Summary, 0, len(plans)),
	}

	for _, a := range scheduled {
		switch {
		case a.Start().Before(today):
		case a.Start().Before(tomorrow):
			out.TodayAppointments = append(out.TodayAppointments, inbound.NewAppointmentDTO(a))
		case len(out.UpcomingAppointments) < upcomingPreviews:
			out.UpcomingAppointments = append(out.UpcomingAppointments, inbound.NewAppointmentDTO(a))
		}
	}

	for _, p := range patients {
		if p.Status.Engaged() {
			out.ActivePatients++
		}
	}

	recent := slices.Clone(patients)
	slices.SortStableFunc(recent, func(a, b *patient.Patient) int {
		return b.LastActivity.Compare(a.LastActivity)
	})
	for _, p := range recent[:min(recentPatients, len(recent))] {
		out.RecentPatients = append(out.RecentPatients, inbound.NewPatientDTO(p))
	}

	for _, p := range plans {
		out.DietPlans = append(out.DietPlans, p.Summary())
	}

	return out, nil
}

// Patient returns the next appointment, the current plan, today's check-in
// and the weekly progress
func (s *Service) Patient(ctx context.Context, actor inbound.Actor) (*inbound.PatientDashboard, error) {
	now := s.now()
	out := &inbound.PatientDashboard{}

	appts, err := s.repos.Appointments.FindByPatient(ctx, actor.UserID)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list appointments", err)
	}
	scheduled, _ := appointment.Split(appts)
	sortByStart(scheduled)
	for _, a := range scheduled {
		if !a.End().Before(now) {
			dto := inbound.NewAppointmentDTO(a)
			out.NextAppointment = &dto
			break
		}
	}

	plan, err := s.repos.DietPlans.FindLatestSent(ctx, actor.UserID)
	switch {
	case err == nil:
		summary := plan.Summary()
		out.CurrentPlanSummary = &summary
	case !errors.Is(err, dietplan.ErrDietPlanNotFound):
		return nil, apperrors.NewDatabaseError("find current diet plan", err)
	}

	from, to := dailylog.WeekWindow(now)
	logs, err := s.repos.DailyLogs.FindByUser(ctx, actor.UserID, from, to)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list daily logs", err)
	}
	for _, l := range logs {
		if l.Date == to {
			dto := inbound.NewDailyLogDTO(l)
			out.TodayLog = &dto
			break
		}
	}
	out.Weekly = dailylog.Summarize(logs, now)

	return out, nil
}

// Admin returns platform-wide counters
func (s *Service) Admin(ctx context.Context, _ inbound.Actor) (*inbound.AdminDashboard, error) {
	byRole, err := s.repos.Users.CountByRole(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count users", err)
	}

	pending := doctor.StatusPending
	doctors, err := s.repos.Doctors.List(ctx, &pending)
	if err != nil {
		return nil, apperrors.NewDatabaseError("list doctors", err)
	}

	foods, err := s.repos.Foods.Count(ctx)
	if err != nil {
		return nil, apperrors.NewDatabaseError("count foods", err)
	}

	today := appointment.StartOfDay(s.now())
	appts, err := s.repos.Appointments.CountBetween(ctx, today, today.AddDate(0, 0, 1))
	if err != nil {
		return nil, apperrors.NewDatabaseError("count appointments", err)
	}

	users := make(map[string]int64, len(byRole))
	for role, n := range byRole {
		key := role.String()
		if key == "" {
			key = "none"
		}
		users[key] += n
	}

	return &inbound.AdminDashboard{
		UsersByRole:       users,
		PendingDoctors:    len(doctors),
		Foods:             foods,
		AppointmentsToday: appts,
	}, nil
}

func sortByStart(list []*appointment.Appointment) {
	slices.SortStableFunc(list, func(a, b *appointment.Appointment) int {
		return cmp.Compare(a.Start().UnixNano(), b.Start().UnixNano())
	})
}
