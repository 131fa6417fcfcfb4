package testutil

import (
	"context"
	"sync"

	"github.com/dimitrije/portfolio-api/internal/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockProfileService mocks the ProfileService
type MockProfileService struct {
	mock.Mock
}

func (m *MockProfileService) GetRole(ctx context.Context, id uuid.UUID) (string, error) {
	args := m.Called(ctx, id)
	return args.String(0), args.Error(1)
}

func (m *MockProfileService) FindByID(ctx context.Context, id uuid.UUID) (*models.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) Create(ctx context.Context, id uuid.UUID, email, role string) (bool, error) {
	args := m.Called(ctx, id, email, role)
	return args.Bool(0), args.Error(1)
}

func (m *MockProfileService) UpdateName(ctx context.Context, id uuid.UUID, firstName, lastName *string) (*models.Profile, error) {
	args := m.Called(ctx, id, firstName, lastName)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) SetRoleByEmail(ctx context.Context, email, role string) (*models.Profile, error) {
	args := m.Called(ctx, email, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Profile), args.Error(1)
}

func (m *MockProfileService) ListAdmins(ctx context.Context) ([]models.Profile, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Profile), args.Error(1)
}

// MockProjectService mocks the ProjectService
type MockProjectService struct {
	mock.Mock
}

func (m *MockProjectService) List(ctx context.Context, category string) ([]models.Project, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Project), args.Error(1)
}

func (m *MockProjectService) Get(ctx context.Context, id int64) (*models.Project, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Create(ctx context.Context, p *models.Project) (*models.Project, error) {
	args := m.Called(ctx, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Update(ctx context.Context, id int64, p *models.Project) (*models.Project, error) {
	args := m.Called(ctx, id, p)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Project), args.Error(1)
}

func (m *MockProjectService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockProjectService) ReplaceAll(ctx context.Context, projects []models.Project) error {
	args := m.Called(ctx, projects)
	return args.Error(0)
}

func (m *MockProjectService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockMessageService mocks the MessageService
type MockMessageService struct {
	mock.Mock
}

func (m *MockMessageService) Create(ctx context.Context, name, email, message string) (*models.ContactMessage, error) {
	args := m.Called(ctx, name, email, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.ContactMessage), args.Error(1)
}

func (m *MockMessageService) List(ctx context.Context) ([]models.ContactMessage, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.ContactMessage), args.Error(1)
}

func (m *MockMessageService) Delete(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockMessageService) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// SpyRecorder records every metric call.
type SpyRecorder struct {
	mu          sync.Mutex
	Events      []string
	Verdicts    []string
	SignIns     []string
	provisioned int
	visitors    int
}

func (r *SpyRecorder) AuthEvent(eventType string) {
	r.mu.Lock()
	r.Events = append(r.Events, eventType)
	r.mu.Unlock()
}

func (r *SpyRecorder) GuardVerdict(verdict string) {
	r.mu.Lock()
	r.Verdicts = append(r.Verdicts, verdict)
	r.mu.Unlock()
}

func (r *SpyRecorder) SignIn(method, result string) {
	r.mu.Lock()
	r.SignIns = append(r.SignIns, method+":"+result)
	r.mu.Unlock()
}

func (r *SpyRecorder) ProfileProvisioned() {
	r.mu.Lock()
	r.provisioned++
	r.mu.Unlock()
}

func (r *SpyRecorder) ActiveVisitors(n int) {
	r.mu.Lock()
	r.visitors = n
	r.mu.Unlock()
}

func (r *SpyRecorder) Provisioned() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.provisioned
}

func (r *SpyRecorder) Visitors() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.visitors
}
