// Package testutils provides mock implementations for testing
package testutils

import (
	"context"
	"sync"
	"time"

	"github.com/ayurwell/portal/internal/domain/appointment"
	"github.com/ayurwell/portal/internal/domain/audit"
	"github.com/ayurwell/portal/internal/domain/dailylog"
	"github.com/ayurwell/portal/internal/domain/dietplan"
	"github.com/ayurwell/portal/internal/domain/doctor"
	"github.com/ayurwell/portal/internal/domain/food"
	"github.com/ayurwell/portal/internal/domain/notification"
	"github.com/ayurwell/portal/internal/domain/patient"
	"github.com/ayurwell/portal/internal/domain/shared"
	"github.com/ayurwell/portal/internal/domain/user"
	"github.com/ayurwell/portal/internal/ports/inbound"
	"github.com/ayurwell/portal/internal/ports/outbound"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockUserRepository provides a mock implementation of UserRepository
type MockUserRepository struct {
	mock.Mock
}

var _ outbound.UserRepository = (*MockUserRepository)(nil)

func (m *MockUserRepository) Create(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, u *user.User) error {
	return m.Called(ctx, u).Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*user.User)
	return u, args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context, role *user.Role) ([]*user.User, error) {
	args := m.Called(ctx, role)
	users, _ := args.Get(0).([]*user.User)
	return users, args.Error(1)
}

func (m *MockUserRepository) CountByRole(ctx context.Context) (map[user.Role]int64, error) {
	args := m.Called(ctx)
	counts, _ := args.Get(0).(map[user.Role]int64)
	return counts, args.Error(1)
}

// MockPatientRepository provides a mock implementation of PatientRepository
type MockPatientRepository struct {
	mock.Mock
}

var _ outbound.PatientRepository = (*MockPatientRepository)(nil)

func (m *MockPatientRepository) Create(ctx context.Context, p *patient.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPatientRepository) Update(ctx context.Context, p *patient.Patient) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockPatientRepository) FindByID(ctx context.Context, id uuid.UUID) (*patient.Patient, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*patient.Patient)
	return p, args.Error(1)
}

func (m *MockPatientRepository) FindByPractitioner(ctx context.Context, practitionerID uuid.UUID, filter outbound.PatientFilter) ([]*patient.Patient, error) {
	args := m.Called(ctx, practitionerID, filter)
	list, _ := args.Get(0).([]*patient.Patient)
	return list, args.Error(1)
}

func (m *MockPatientRepository) FindByUserID(ctx context.Context, userID uuid.UUID) ([]*patient.Patient, error) {
	args := m.Called(ctx, userID)
	list, _ := args.Get(0).([]*patient.Patient)
	return list, args.Error(1)
}

func (m *MockPatientRepository) LinkAccount(ctx context.Context, email string, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, email, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockDoctorRepository provides a mock implementation of DoctorRepository
type MockDoctorRepository struct {
	mock.Mock
}

var _ outbound.DoctorRepository = (*MockDoctorRepository)(nil)

func (m *MockDoctorRepository) Save(ctx context.Context, p *doctor.Profile) error {
	return m.Called(ctx, p).Error(0)
}

func (m *MockDoctorRepository) FindByID(ctx context.Context, id uuid.UUID) (*doctor.Profile, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*doctor.Profile)
	return p, args.Error(1)
}

func (m *MockDoctorRepository) List(ctx context.Context, status *doctor.Status) ([]*doctor.Profile, error) {
	args := m.Called(ctx, status)
	list, _ := args.Get(0).([]*doctor.Profile)
	return list, args.Error(1)
}

// MockAppointmentRepository provides a mock implementation of AppointmentRepository
type MockAppointmentRepository struct {
	mock.Mock
}

var _ outbound.AppointmentRepository = (*MockAppointmentRepository)(nil)

func (m *MockAppointmentRepository) Create(ctx context.Context, a *appointment.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAppointmentRepository) Update(ctx context.Context, a *appointment.Appointment) error {
	return m.Called(ctx, a).Error(0)
}

func (m *MockAppointmentRepository) FindByID(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	args := m.Called(ctx, id)
	a, _ := args.Get(0).(*appointment.Appointment)
	return a, args.Error(1)
}

func (m *MockAppointmentRepository) FindByPatient(ctx context.Context, patientID uuid.UUID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, patientID)
	list, _ := args.Get(0).([]*appointment.Appointment)
	return list, args.Error(1)
}

func (m *MockAppointmentRepository) FindByDoctor(ctx context.Context, doctorID uuid.UUID) ([]*appointment.Appointment, error) {
	args := m.Called(ctx, doctorID)
	list, _ := args.Get(0).([]*appointment.Appointment)
	return list, args.Error(1)
}

func (m *MockAppointmentRepository) CountBetween(ctx context.Context, from, to time.Time) (int64, error) {
	args := m.Called(ctx, from, to)
	return args.Get(0).(int64), args.Error(1)
}

// MockDailyLogRepository provides a mock implementation of DailyLogRepository
type MockDailyLogRepository struct {
	mock.Mock
}

var _ outbound.DailyLogRepository = (*MockDailyLogRepository)(nil)

func (m *MockDailyLogRepository) Upsert(ctx context.Context, log *dailylog.DailyLog) error {
	return m.Called(ctx, log).Error(0)
}

func (m *MockDailyLogRepository) FindByUserAndDate(ctx context.Context, userID uuid.UUID, date string) (*dailylog.DailyLog, error) {
	args := m.Called(ctx, userID, date)
	log, _ := args.Get(0).(*dailylog.DailyLog)
	return log, args.Error(1)
}

func (m *MockDailyLogRepository) FindByUser(ctx context.Context, userID uuid.UUID, from, to string) ([]*dailylog.DailyLog, error) {
	args := m.Called(ctx, userID, from, to)
	list, _ := args.Get(0).([]*dailylog.DailyLog)
	return list, args.Error(1)
}

// MockDietPlanRepository provides a mock implementation of DietPlanRepository
type MockDietPlanRepository struct {
	mock.Mock
}

var _ outbound.DietPlanRepository = (*MockDietPlanRepository)(nil)

func (m *MockDietPlanRepository) Create(ctx context.Context, plan *dietplan.DietPlan) error {
	return m.Called(ctx, plan).Error(0)
}

func (m *MockDietPlanRepository) UpdateWithVersion(ctx context.Context, plan *dietplan.DietPlan, expectedVersion int64) error {
	return m.Called(ctx, plan, expectedVersion).Error(0)
}

func (m *MockDietPlanRepository) FindByID(ctx context.Context, id uuid.UUID) (*dietplan.DietPlan, error) {
	args := m.Called(ctx, id)
	p, _ := args.Get(0).(*dietplan.DietPlan)
	return p, args.Error(1)
}

func (m *MockDietPlanRepository) FindByPractitioner(ctx context.Context, practitionerID uuid.UUID) ([]*dietplan.DietPlan, error) {
	args := m.Called(ctx, practitionerID)
	list, _ := args.Get(0).([]*dietplan.DietPlan)
	return list, args.Error(1)
}

func (m *MockDietPlanRepository) FindLatestSent(ctx context.Context, patientUserID uuid.UUID) (*dietplan.DietPlan, error) {
	args := m.Called(ctx, patientUserID)
	p, _ := args.Get(0).(*dietplan.DietPlan)
	return p, args.Error(1)
}

func (m *MockDietPlanRepository) CountByPractitioner(ctx context.Context, practitionerID uuid.UUID) (int64, error) {
	args := m.Called(ctx, practitionerID)
	return args.Get(0).(int64), args.Error(1)
}

// MockFoodRepository provides a mock implementation of FoodRepository
type MockFoodRepository struct {
	mock.Mock
}

var _ outbound.FoodRepository = (*MockFoodRepository)(nil)

func (m *MockFoodRepository) Create(ctx context.Context, f *food.Food) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFoodRepository) Update(ctx context.Context, f *food.Food) error {
	return m.Called(ctx, f).Error(0)
}

func (m *MockFoodRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockFoodRepository) FindByID(ctx context.Context, id uuid.UUID) (*food.Food, error) {
	args := m.Called(ctx, id)
	f, _ := args.Get(0).(*food.Food)
	return f, args.Error(1)
}

func (m *MockFoodRepository) List(ctx context.Context) ([]*food.Food, error) {
	args := m.Called(ctx)
	list, _ := args.Get(0).([]*food.Food)
	return list, args.Error(1)
}

func (m *MockFoodRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockNotificationRepository provides a mock implementation of NotificationRepository
type MockNotificationRepository struct {
	mock.Mock
}

var _ outbound.NotificationRepository = (*MockNotificationRepository)(nil)

func (m *MockNotificationRepository) Create(ctx context.Context, n *notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) MarkRead(ctx context.Context, n *notification.Notification) error {
	return m.Called(ctx, n).Error(0)
}

func (m *MockNotificationRepository) FindByID(ctx context.Context, id uuid.UUID) (*notification.Notification, error) {
	args := m.Called(ctx, id)
	n, _ := args.Get(0).(*notification.Notification)
	return n, args.Error(1)
}

func (m *MockNotificationRepository) FindByUser(ctx context.Context, userID uuid.UUID, limit int) ([]*notification.Notification, error) {
	args := m.Called(ctx, userID, limit)
	list, _ := args.Get(0).([]*notification.Notification)
	return list, args.Error(1)
}

// MockAuditRepository provides a mock implementation of AuditRepository
type MockAuditRepository struct {
	mock.Mock
}

var _ outbound.AuditRepository = (*MockAuditRepository)(nil)

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	return m.Called(ctx, entry).Error(0)
}

func (m *MockAuditRepository) Latest(ctx context.Context, limit int) ([]*audit.Entry, error) {
	args := m.Called(ctx, limit)
	list, _ := args.Get(0).([]*audit.Entry)
	return list, args.Error(1)
}

// MockCacheRepository provides a mock implementation of CacheRepository
type MockCacheRepository struct {
	mock.Mock
}

var _ outbound.CacheRepository = (*MockCacheRepository)(nil)

func (m *MockCacheRepository) Get(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return m.Called(ctx, key, value, ttl).Error(0)
}

func (m *MockCacheRepository) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockCacheRepository) Exists(ctx context.Context, key string) (bool, error) {
	args := m.Called(ctx, key)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheRepository) GetDel(ctx context.Context, key string) ([]byte, error) {
	args := m.Called(ctx, key)
	data, _ := args.Get(0).([]byte)
	return data, args.Error(1)
}

func (m *MockCacheRepository) Increment(ctx context.Context, key string) (int64, error) {
	args := m.Called(ctx, key)
	return args.Get(0).(int64), args.Error(1)
}

// MockStorageService provides a mock implementation of StorageService
type MockStorageService struct {
	mock.Mock
}

var _ outbound.StorageService = (*MockStorageService)(nil)

func (m *MockStorageService) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	args := m.Called(ctx, key, data, contentType)
	return args.String(0), args.Error(1)
}

func (m *MockStorageService) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

// MockAIProvider provides a mock implementation of AIProvider
type MockAIProvider struct {
	mock.Mock
	name string
}

var _ outbound.AIProvider = (*MockAIProvider)(nil)

// NewMockAIProvider creates a provider mock reporting name
func NewMockAIProvider(name string) *MockAIProvider {
	return &MockAIProvider{name: name}
}

func (m *MockAIProvider) Name() string { return m.name }

func (m *MockAIProvider) Generate(ctx context.Context, prompt string) (string, error) {
	args := m.Called(ctx, prompt)
	return args.String(0), args.Error(1)
}

func (m *MockAIProvider) HealthCheck(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

// MockAIService stands in for the AI flows behind the provider chain
type MockAIService struct {
	mock.Mock
}

var _ inbound.AIService = (*MockAIService)(nil)

func (m *MockAIService) GenerateInitialDietPlan(ctx context.Context, actor inbound.Actor, in inbound.DietPlanInput) (*inbound.DietPlanOutput, string, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*inbound.DietPlanOutput)
	return out, args.String(1), args.Error(2)
}

func (m *MockAIService) SuggestAlternativeMeals(ctx context.Context, actor inbound.Actor, in inbound.MealAlternativesInput) (*inbound.MealAlternativesOutput, string, error) {
	args := m.Called(ctx, actor, in)
	out, _ := args.Get(0).(*inbound.MealAlternativesOutput)
	return out, args.String(1), args.Error(2)
}

func (m *MockAIService) Providers(ctx context.Context) []inbound.ProviderStatus {
	statuses, _ := m.Called(ctx).Get(0).([]inbound.ProviderStatus)
	return statuses
}

// MockEmailService records password reset mails
type MockEmailService struct {
	mock.Mock
}

var _ outbound.EmailService = (*MockEmailService)(nil)

func (m *MockEmailService) SendPasswordReset(ctx context.Context, to, name, resetLink string) error {
	return m.Called(ctx, to, name, resetLink).Error(0)
}

// RecordingPusher keeps every pushed notification
type RecordingPusher struct {
	mu     sync.Mutex
	pushed map[uuid.UUID][]*notification.Notification
}

var _ outbound.NotificationPusher = (*RecordingPusher)(nil)

// NewRecordingPusher creates an empty pusher
func NewRecordingPusher() *RecordingPusher {
	return &RecordingPusher{pushed: make(map[uuid.UUID][]*notification.Notification)}
}

func (p *RecordingPusher) Push(userID uuid.UUID, n *notification.Notification) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.pushed[userID] = append(p.pushed[userID], n)
}

// For returns what was pushed to userID
func (p *RecordingPusher) For(userID uuid.UUID) []*notification.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*notification.Notification(nil), p.pushed[userID]...)
}

// RecordingDispatcher collects dispatched domain events instead of running handlers
type RecordingDispatcher struct {
	mu     sync.Mutex
	events []shared.DomainEvent
}

var _ shared.EventDispatcher = (*RecordingDispatcher)(nil)

func (d *RecordingDispatcher) Dispatch(ctx context.Context, events ...shared.DomainEvent) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, events...)
}

func (d *RecordingDispatcher) Register(eventName string, handler shared.EventHandler) {}

// Names returns the names of the dispatched events in order
func (d *RecordingDispatcher) Names() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	names := make([]string, 0, len(d.events))
	for _, e := range d.events {
		names = append(names, e.EventName())
	}
	return names
}
