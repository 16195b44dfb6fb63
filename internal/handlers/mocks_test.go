package handlers

import (
	"context"
	"io"
	"time"

	"kitchenstock/internal/models"
	"kitchenstock/internal/persistence"
	"kitchenstock/internal/services"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockRecipeService mocks the RecipeService interface for testing
type MockRecipeService struct {
	mock.Mock
}

func (m *MockRecipeService) Create(ctx context.Context, tenantCode string, req *services.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, tenantCode, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Update(ctx context.Context, tenantCode string, id uuid.UUID, req *services.RecipeRequest) (*models.Recipe, error) {
	args := m.Called(ctx, tenantCode, id, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) List(ctx context.Context, tenantCode string) ([]*models.Recipe, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Recipe), args.Error(1)
}

func (m *MockRecipeService) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	args := m.Called(ctx, tenantCode, id)
	return args.Error(0)
}

func (m *MockRecipeService) Cost(ctx context.Context, tenantCode string, id uuid.UUID) (*models.RecipeCost, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeCost), args.Error(1)
}

func (m *MockRecipeService) Produce(ctx context.Context, tenantCode string, id uuid.UUID, portions float64) (*services.ProductionResult, error) {
	args := m.Called(ctx, tenantCode, id, portions)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ProductionResult), args.Error(1)
}

func (m *MockRecipeService) ListProductions(ctx context.Context, tenantCode string, id uuid.UUID, limit int) ([]*models.Production, error) {
	args := m.Called(ctx, tenantCode, id, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Production), args.Error(1)
}

// MockPurchaseService mocks the PurchaseService interface for testing
type MockPurchaseService struct {
	mock.Mock
}

func (m *MockPurchaseService) Register(ctx context.Context, tenantCode string, req *services.PurchaseRequest) (*services.PurchaseResult, error) {
	args := m.Called(ctx, tenantCode, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.PurchaseResult), args.Error(1)
}

func (m *MockPurchaseService) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockPurchaseService) List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error) {
	args := m.Called(ctx, tenantCode, from, to, limit, offset)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Purchase), args.Error(1)
}

// MockTransferService mocks the TransferService interface for testing
type MockTransferService struct {
	mock.Mock
}

func (m *MockTransferService) Export(ctx context.Context, tenantCode string) (*services.ExportResult, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ExportResult), args.Error(1)
}

func (m *MockTransferService) Workbook(ctx context.Context, tenantCode string) ([]byte, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]byte), args.Error(1)
}

func (m *MockTransferService) Import(ctx context.Context, tenantCode string, r io.Reader) (*services.ImportResult, error) {
	args := m.Called(ctx, tenantCode, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.ImportResult), args.Error(1)
}

// MockTenantService mocks the TenantService interface for testing
type MockTenantService struct {
	mock.Mock
}

func (m *MockTenantService) Create(ctx context.Context, req *services.CreateTenantRequest) (*models.Tenant, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) GetByCode(ctx context.Context, code string) (*models.Tenant, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Tenant), args.Error(1)
}

func (m *MockTenantService) List(ctx context.Context) ([]*models.Tenant, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Tenant), args.Error(1)
}

func (m *MockTenantService) ActiveCodes(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockTenantService) SetStatus(ctx context.Context, code, status string) error {
	args := m.Called(ctx, code, status)
	return args.Error(0)
}

// MockCostInvalidator mocks the CostInvalidator interface for testing
type MockCostInvalidator struct {
	mock.Mock
}

func (m *MockCostInvalidator) InvalidateRecipeCosts(ctx context.Context, tenantCode string) error {
	args := m.Called(ctx, tenantCode)
	return args.Error(0)
}

// MockStatusCache mocks the StatusCache interface for testing
type MockStatusCache struct {
	mock.Mock
}

func (m *MockStatusCache) Forget(code string) {
	m.Called(code)
}

// MockOutbox mocks the OutboxInspector and OutboxDrainer interfaces for testing
type MockOutbox struct {
	mock.Mock
}

func (m *MockOutbox) Depth(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockOutbox) DeadLetters(ctx context.Context, n int64) ([]persistence.Envelope, error) {
	args := m.Called(ctx, n)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]persistence.Envelope), args.Error(1)
}

func (m *MockOutbox) Drain(ctx context.Context) (persistence.DrainStats, error) {
	args := m.Called(ctx)
	return args.Get(0).(persistence.DrainStats), args.Error(1)
}
