package inventory

import (
	"context"

	"kitchenstock/internal/models"
	"kitchenstock/internal/persistence"

	"github.com/stretchr/testify/mock"
)

// MockRemoteStore mocks the RemoteStore interface for testing
type MockRemoteStore struct {
	mock.Mock
}

func (m *MockRemoteStore) UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) persistence.Result {
	args := m.Called(ctx, tenantCode, sheetName, item)
	return args.Get(0).(persistence.Result)
}

func (m *MockRemoteStore) AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) persistence.Result {
	args := m.Called(ctx, tenantCode, entry)
	return args.Get(0).(persistence.Result)
}

func (m *MockRemoteStore) SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) persistence.Result {
	args := m.Called(ctx, tenantCode, sheets)
	return args.Get(0).(persistence.Result)
}

func (m *MockRemoteStore) FetchSnapshot(ctx context.Context, tenantCode string) ([]models.Sheet, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]models.Sheet), args.Error(1)
}

// MockAlerter mocks the Alerter interface for testing
type MockAlerter struct {
	mock.Mock
}

func (m *MockAlerter) LowStock(ctx context.Context, alert models.LowStockAlert) error {
	args := m.Called(ctx, alert)
	return args.Error(0)
}

// MockMirror mocks the Mirror interface for testing
type MockMirror struct {
	mock.Mock
}

func (m *MockMirror) SaveSnapshot(ctx context.Context, snap models.Snapshot) error {
	args := m.Called(ctx, snap)
	return args.Error(0)
}

func (m *MockMirror) LoadSnapshot(ctx context.Context, tenantCode string) (*models.Snapshot, error) {
	args := m.Called(ctx, tenantCode)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Snapshot), args.Error(1)
}

// MockPublisher mocks the ChangePublisher interface for testing
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) Publish(ctx context.Context, event models.ChangeEvent) error {
	args := m.Called(ctx, event)
	return args.Error(0)
}

func ptr(f float64) *float64 {
	return &f
}
