package handlers

import (
	"context"
	"net/http"

	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type mockAuthService struct{ mock.Mock }

func (m *mockAuthService) Signup(ctx context.Context, cmd inbound.SignupCommand) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, cmd)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, cmd inbound.LoginCommand) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, cmd)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, refreshToken string) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, refreshToken)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Logout(ctx context.Context, actor inbound.Actor) error {
	return m.Called(ctx, actor).Error(0)
}

func (m *mockAuthService) ForgotPassword(ctx context.Context, email string) error {
	return m.Called(ctx, email).Error(0)
}

func (m *mockAuthService) ResetPassword(ctx context.Context, cmd inbound.ResetPasswordCommand) error {
	return m.Called(ctx, cmd).Error(0)
}

func (m *mockAuthService) SelectRole(ctx context.Context, actor inbound.Actor, role user.Role) (*inbound.AuthResponse, error) {
	args := m.Called(ctx, actor, role)
	resp, _ := args.Get(0).(*inbound.AuthResponse)
	return resp, args.Error(1)
}

func (m *mockAuthService) Me(ctx context.Context, actor inbound.Actor) (*inbound.UserDTO, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*inbound.UserDTO)
	return resp, args.Error(1)
}

func (m *mockAuthService) EnrollMFA(ctx context.Context, actor inbound.Actor) (*inbound.MFAEnrollment, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*inbound.MFAEnrollment)
	return resp, args.Error(1)
}

func (m *mockAuthService) VerifyMFA(ctx context.Context, actor inbound.Actor, code string) error {
	return m.Called(ctx, actor, code).Error(0)
}

func (m *mockAuthService) Authenticate(ctx context.Context, token string) (*inbound.Actor, error) {
	args := m.Called(ctx, token)
	actor, _ := args.Get(0).(*inbound.Actor)
	return actor, args.Error(1)
}

type mockProfileService struct{ mock.Mock }

func (m *mockProfileService) GetProfile(ctx context.Context, actor inbound.Actor) (*inbound.UserDTO, error) {
	args := m.Called(ctx, actor)
	resp, _ := args.Get(0).(*inbound.UserDTO)
	return resp, args.Error(1)
}

func (m *mockProfileService) UpdateProfile(ctx context.Context, actor inbound.Actor, cmd inbound.UpdateProfileCommand) (*inbound.UserDTO, error) {
	args := m.Called(ctx, actor, cmd)
	resp, _ := args.Get(0).(*inbound.UserDTO)
	return resp, args.Error(1)
}

func (m *mockProfileService) UploadAvatar(ctx context.Context, actor inbound.Actor, cmd inbound.UploadAvatarCommand) (*inbound.UserDTO, error) {
	args := m.Called(ctx, actor, cmd)
	resp, _ := args.Get(0).(*inbound.UserDTO)
	return resp, args.Error(1)
}

type mockPatientService struct{ mock.Mock }

func (m *mockPatientService) Intake(ctx context.Context, actor inbound.Actor, cmd inbound.IntakeCommand) (*inbound.PatientDTO, error) {
	args := m.Called(ctx, actor, cmd)
	resp, _ := args.Get(0).(*inbound.PatientDTO)
	return resp, args.Error(1)
}

func (m *mockPatientService) List(ctx context.Context, actor inbound.Actor, query inbound.PatientQuery) ([]inbound.PatientDTO, error) {
	args := m.Called(ctx, actor, query)
	resp, _ := args.Get(0).([]inbound.PatientDTO)
	return resp, args.Error(1)
}

func (m *mockPatientService) Get(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*inbound.PatientDTO, error) {
	args := m.Called(ctx, actor, id)
	resp, _ := args.Get(0).(*inbound.PatientDTO)
	return resp, args.Error(1)
}

func (m *mockPatientService) ChangeStatus(ctx context.Context, actor inbound.Actor, id uuid.UUID, status patient.Status) (*inbound.PatientDTO, error) {
	args := m.Called(ctx, actor, id, status)
	resp, _ := args.Get(0).(*inbound.PatientDTO)
	return resp, args.Error(1)
}

type mockAdminService struct{ mock.Mock }

func (m *mockAdminService) ListUsers(ctx context.Context, role *user.Role) ([]inbound.UserDTO, error) {
	args := m.Called(ctx, role)
	resp, _ := args.Get(0).([]inbound.UserDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) ListDoctors(ctx context.Context, status *doctor.Status) ([]inbound.DoctorDTO, error) {
	args := m.Called(ctx, status)
	resp, _ := args.Get(0).([]inbound.DoctorDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) ReviewDoctor(ctx context.Context, actor inbound.Actor, id uuid.UUID, decision doctor.Status) (*inbound.DoctorDTO, error) {
	args := m.Called(ctx, actor, id, decision)
	resp, _ := args.Get(0).(*inbound.DoctorDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) ListFoods(ctx context.Context) ([]inbound.FoodDTO, error) {
	args := m.Called(ctx)
	resp, _ := args.Get(0).([]inbound.FoodDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) CreateFood(ctx context.Context, actor inbound.Actor, cmd inbound.FoodCommand) (*inbound.FoodDTO, error) {
	args := m.Called(ctx, actor, cmd)
	resp, _ := args.Get(0).(*inbound.FoodDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) UpdateFood(ctx context.Context, actor inbound.Actor, id uuid.UUID, cmd inbound.FoodCommand) (*inbound.FoodDTO, error) {
	args := m.Called(ctx, actor, id, cmd)
	resp, _ := args.Get(0).(*inbound.FoodDTO)
	return resp, args.Error(1)
}

func (m *mockAdminService) DeleteFood(ctx context.Context, actor inbound.Actor, id uuid.UUID) error {
	return m.Called(ctx, actor, id).Error(0)
}

func (m *mockAdminService) Audit(ctx context.Context, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, limit)
	resp, _ := args.Get(0).([]*audit.Entry)
	return resp, args.Error(1)
}

type mockNotificationService struct{ mock.Mock }

func (m *mockNotificationService) List(ctx context.Context, actor inbound.Actor, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, actor, limit)
	resp, _ := args.Get(0).([]*notification.Notification)
	return resp, args.Error(1)
}

func (m *mockNotificationService) MarkRead(ctx context.Context, actor inbound.Actor, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, actor, id)
	resp, _ := args.Get(0).(*notification.Notification)
	return resp, args.Error(1)
}

type streamFunc func(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error

func (f streamFunc) Serve(w http.ResponseWriter, r *http.Request, userID uuid.UUID) error {
	return f(w, r, userID)
}

type recordedAuthEvent struct {
	event   string
	success bool
}

type authMetricsRecorder struct{ events []recordedAuthEvent }

func (a *authMetricsRecorder) RecordAuthEvent(event string, success bool) {
	a.events = append(a.events, recordedAuthEvent{event: event, success: success})
}

var (
	_ inbound.AuthService         = (*mockAuthService)(nil)
	_ inbound.ProfileService      = (*mockProfileService)(nil)
	_ inbound.PatientService      = (*mockPatientService)(nil)
	_ inbound.AdminService        = (*mockAdminService)(nil)
	_ inbound.NotificationService = (*mockNotificationService)(nil)
)
