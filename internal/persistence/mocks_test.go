package persistence

import (
	"context"

	"kitchenstock/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
)

// MockRedisClient mocks the RedisClient interface for testing
type MockRedisClient struct {
	mock.Mock
}

func (m *MockRedisClient) ZAdd(ctx context.Context, key string, members ...redis.Z) *redis.IntCmd {
	args := m.Called(ctx, key, members)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) ZRangeByScore(ctx context.Context, key string, opt *redis.ZRangeBy) *redis.StringSliceCmd {
	args := m.Called(ctx, key, opt)
	return args.Get(0).(*redis.StringSliceCmd)
}

func (m *MockRedisClient) ZRem(ctx context.Context, key string, members ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, members)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) ZScore(ctx context.Context, key, member string) *redis.FloatCmd {
	args := m.Called(ctx, key, member)
	return args.Get(0).(*redis.FloatCmd)
}

func (m *MockRedisClient) ZCard(ctx context.Context, key string) *redis.IntCmd {
	args := m.Called(ctx, key)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) HSet(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, values)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) HGet(ctx context.Context, key, field string) *redis.StringCmd {
	args := m.Called(ctx, key, field)
	return args.Get(0).(*redis.StringCmd)
}

func (m *MockRedisClient) HDel(ctx context.Context, key string, fields ...string) *redis.IntCmd {
	args := m.Called(ctx, key, fields)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) LPush(ctx context.Context, key string, values ...interface{}) *redis.IntCmd {
	args := m.Called(ctx, key, values)
	return args.Get(0).(*redis.IntCmd)
}

func (m *MockRedisClient) LTrim(ctx context.Context, key string, start, stop int64) *redis.StatusCmd {
	args := m.Called(ctx, key, start, stop)
	return args.Get(0).(*redis.StatusCmd)
}

func (m *MockRedisClient) LRange(ctx context.Context, key string, start, stop int64) *redis.StringSliceCmd {
	args := m.Called(ctx, key, start, stop)
	return args.Get(0).(*redis.StringSliceCmd)
}

// MockWriter mocks the Writer interface for testing
type MockWriter struct {
	mock.Mock
}

func (m *MockWriter) UpsertItem(ctx context.Context, tenantCode, sheetName string, item models.InventoryItem) Result {
	args := m.Called(ctx, tenantCode, sheetName, item)
	return args.Get(0).(Result)
}

func (m *MockWriter) AppendLog(ctx context.Context, tenantCode string, entry models.UpdateLogEntry) Result {
	args := m.Called(ctx, tenantCode, entry)
	return args.Get(0).(Result)
}

func (m *MockWriter) SyncSheets(ctx context.Context, tenantCode string, sheets []models.Sheet) Result {
	args := m.Called(ctx, tenantCode, sheets)
	return args.Get(0).(Result)
}
