package services

import (
	"context"
	"io"
	"time"

	"kitchenstock/internal/inventory"
	"kitchenstock/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockStockProvider mocks the StockProvider interface for testing
type MockStockProvider struct {
	mock.Mock
}

func (m *MockStockProvider) Stock(ctx context.Context, tenantCode string) (Stock, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(Stock), args.Error(1)
}

// MockStock mocks the Stock interface for testing
type MockStock struct {
	mock.Mock
}

func (m *MockStock) ApplyCorrection(ctx context.Context, req inventory.CorrectionRequest) (*inventory.MutationResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*inventory.MutationResult), args.Error(1)
}

func (m *MockStock) FindAnywhere(name string) (models.InventoryItem, string, error) {
	args := m.Called(name)
	return args.Get(0).(models.InventoryItem), args.String(1), args.Error(2)
}

func (m *MockStock) Import(ctx context.Context, sheets []models.Sheet) (int, error) {
	args := m.Called(ctx, sheets)
	return args.Int(0), args.Error(1)
}

func (m *MockStock) Sheets() []models.Sheet {
	args := m.Called()
	return args.Get(0).([]models.Sheet)
}

func (m *MockStock) Log() []models.UpdateLogEntry {
	args := m.Called()
	return args.Get(0).([]models.UpdateLogEntry)
}

// MockCacheService mocks the CacheService interface for testing
type MockCacheService struct {
	mock.Mock
}

func (m *MockCacheService) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockCacheService) LoadSnapshot(ctx context.Context, tenantCode string) (*models.Snapshot, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}

func (m *MockCacheService) GetRecipeCost(ctx context.Context, tenantCode, recipeID string) (*models.RecipeCost, error) {
	args := m.Called(ctx, tenantCode, recipeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.RecipeCost), args.Error(1)
}

func (m *MockCacheService) SetRecipeCost(ctx context.Context, tenantCode string, cost *models.RecipeCost) error {
	args := m.Called(ctx, tenantCode, cost)
	return args.Error(0)
}

func (m *MockCacheService) InvalidateRecipeCosts(ctx context.Context, tenantCode string) error {
	args := m.Called(ctx, tenantCode)
	return args.Error(0)
}

func (m *MockCacheService) IsRateLimited(ctx context.Context, key string, limit int, window time.Duration) (bool, error) {
	args := m.Called(ctx, key, limit, window)
	return args.Bool(0), args.Error(1)
}

func (m *MockCacheService) InvalidateTenantCache(ctx context.Context, tenantCode string) error {
	args := m.Called(ctx, tenantCode)
	return args.Error(0)
}

// MockRecipeRepository mocks the RecipeRepository interface for testing
type MockRecipeRepository struct {
	mock.Mock
}

func (m *MockRecipeRepository) Save(ctx context.Context, recipe *models.Recipe) error {
	args := m.Called(ctx, recipe)
	return args.Error(0)
}

func (m *MockRecipeRepository) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Recipe, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) List(ctx context.Context, tenantCode string) ([]*models.Recipe, error) {
	args := m.Called(ctx, tenantCode)
	return args.Get(0).([]*models.Recipe), args.Error(1)
}

func (m *MockRecipeRepository) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	args := m.Called(ctx, tenantCode, id)
	return args.Error(0)
}

func (m *MockRecipeRepository) RecordProduction(ctx context.Context, production *models.Production) error {
	args := m.Called(ctx, production)
	return args.Error(0)
}

func (m *MockRecipeRepository) ListProductions(ctx context.Context, tenantCode string, recipeID uuid.UUID, limit int) ([]*models.Production, error) {
	args := m.Called(ctx, tenantCode, recipeID, limit)
	return args.Get(0).([]*models.Production), args.Error(1)
}

// MockPurchaseRepository mocks the PurchaseRepository interface for testing
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase *models.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Purchase, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) List(ctx context.Context, tenantCode string, from, to time.Time, limit, offset int) ([]*models.Purchase, error) {
	args := m.Called(ctx, tenantCode, from, to, limit, offset)
	return args.Get(0).([]*models.Purchase), args.Error(1)
}

// MockChecklistRepository mocks the ChecklistRepository interface for testing
type MockChecklistRepository struct {
	mock.Mock
}

func (m *MockChecklistRepository) Create(ctx context.Context, checklist *models.Checklist) error {
	args := m.Called(ctx, checklist)
	return args.Error(0)
}

func (m *MockChecklistRepository) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Checklist, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) ListTemplates(ctx context.Context, tenantCode string) ([]*models.Checklist, error) {
	args := m.Called(ctx, tenantCode)
	return args.Get(0).([]*models.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) ListByDay(ctx context.Context, tenantCode string, day time.Time) ([]*models.Checklist, error) {
	args := m.Called(ctx, tenantCode, day)
	return args.Get(0).([]*models.Checklist), args.Error(1)
}

func (m *MockChecklistRepository) SetItemDone(ctx context.Context, tenantCode string, itemID uuid.UUID, done bool, doneBy string, at time.Time) error {
	args := m.Called(ctx, tenantCode, itemID, done, doneBy, at)
	return args.Error(0)
}

// MockUtensilRepository mocks the UtensilRepository interface for testing
type MockUtensilRepository struct {
	mock.Mock
}

func (m *MockUtensilRepository) Create(ctx context.Context, utensil *models.Utensil) error {
	args := m.Called(ctx, utensil)
	return args.Error(0)
}

func (m *MockUtensilRepository) Update(ctx context.Context, utensil *models.Utensil) error {
	args := m.Called(ctx, utensil)
	return args.Error(0)
}

func (m *MockUtensilRepository) GetByID(ctx context.Context, tenantCode string, id uuid.UUID) (*models.Utensil, error) {
	args := m.Called(ctx, tenantCode, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Utensil), args.Error(1)
}

func (m *MockUtensilRepository) List(ctx context.Context, tenantCode string) ([]*models.Utensil, error) {
	args := m.Called(ctx, tenantCode)
	return args.Get(0).([]*models.Utensil), args.Error(1)
}

func (m *MockUtensilRepository) Delete(ctx context.Context, tenantCode string, id uuid.UUID) error {
	args := m.Called(ctx, tenantCode, id)
	return args.Error(0)
}

// MockObjectStorage mocks the ObjectStorage interface for testing
type MockObjectStorage struct {
	mock.Mock
}

func (m *MockObjectStorage) Upload(ctx context.Context, objectName string, reader io.Reader, objectSize int64, contentType string) error {
	args := m.Called(ctx, objectName, reader, objectSize, contentType)
	return args.Error(0)
}

func (m *MockObjectStorage) PresignedURL(ctx context.Context, objectName string, expiry time.Duration) (string, error) {
	args := m.Called(ctx, objectName, expiry)
	return args.String(0), args.Error(1)
}

func (m *MockObjectStorage) Delete(ctx context.Context, objectName string) error {
	args := m.Called(ctx, objectName)
	return args.Error(0)
}

func (m *MockObjectStorage) EnsureBucketExists(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func floatPtr(f float64) *float64 {
	return &f
}

var fixedNow = time.Date(2024, 5, 2, 9, 30, 0, 0, time.UTC)

func fixedClock() time.Time {
	return fixedNow
}

func (m *MockStock) LowStock() []models.LowStockAlert {
	args := m.Called()
	if args.Get(0) == nil {
		return nil
	}
	return args.Get(0).([]models.LowStockAlert)
}
