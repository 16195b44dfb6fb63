package persistence

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"kitchenstock/internal/models"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/suite"
)

type OutboxTestSuite struct {
	suite.Suite
	redis  *MockRedisClient
	writer *MockWriter
	outbox *Outbox
	now    time.Time
	ctx    context.Context
}

func (suite *OutboxTestSuite) SetupTest() {
	suite.redis = new(MockRedisClient)
	suite.writer = new(MockWriter)
	suite.now = time.Date(2024, 5, 2, 10, 0, 0, 0, time.UTC)
	suite.outbox = NewOutbox(suite.redis, OutboxOptions{MaxAttempts: 3})
	suite.outbox.now = func() time.Time { return suite.now }
	suite.ctx = context.Background()
}

func (suite *OutboxTestSuite) TearDownTest() {
	suite.redis.AssertExpectations(suite.T())
	suite.writer.AssertExpectations(suite.T())
}

func TestOutboxTestSuite(t *testing.T) {
	suite.Run(t, new(OutboxTestSuite))
}

func (suite *OutboxTestSuite) tomato() models.InventoryItem {
	return models.InventoryItem{ID: "tomate", Name: "Tomate", Quantity: 8, Unit: "kg"}
}

func (suite *OutboxTestSuite) payload(env Envelope) string {
	data, err := json.Marshal(env)
	assert.NoError(suite.T(), err)
	return string(data)
}

func (suite *OutboxTestSuite) expectDue(ids ...string) {
	suite.redis.On("ZRangeByScore", mock.Anything, "ks:outbox:due", mock.MatchedBy(func(opt *redis.ZRangeBy) bool {
		return opt.Min == "-inf" && opt.Count == 100
	})).Return(redis.NewStringSliceResult(ids, nil)).Once()
}

func (suite *OutboxTestSuite) TestBackoff() {
	assert.Equal(suite.T(), 2*time.Second, suite.outbox.Backoff(0))
	assert.Equal(suite.T(), 4*time.Second, suite.outbox.Backoff(1))
	assert.Equal(suite.T(), 16*time.Second, suite.outbox.Backoff(3))
	assert.Equal(suite.T(), 5*time.Minute, suite.outbox.Backoff(20))
}

func (suite *OutboxTestSuite) TestEnvelopeIDsCoalesce() {
	a := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())
	b := UpsertItemEnvelope("rest-1", "Hortifruti", models.InventoryItem{ID: "tomate", Name: "Tomate", Quantity: 2})
	assert.Equal(suite.T(), a.ID, b.ID)
	assert.Equal(suite.T(), "sync_sheets:rest-1", SyncSheetsEnvelope("rest-1", nil).ID)
	assert.NotEqual(suite.T(),
		AppendLogEnvelope("rest-1", models.UpdateLogEntry{ID: "a"}).ID,
		AppendLogEnvelope("rest-1", models.UpdateLogEntry{ID: "b"}).ID)
}

func (suite *OutboxTestSuite) TestEnqueue_SchedulesAfterBackoff() {
	env := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())

	suite.redis.On("HSet", mock.Anything, "ks:outbox:payload", mock.MatchedBy(func(v []interface{}) bool {
		return len(v) == 2 && v[0] == env.ID
	})).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("ZAdd", mock.Anything, "ks:outbox:due", []redis.Z{{
		Score:  float64(suite.now.Add(2 * time.Second).UnixNano()),
		Member: env.ID,
	}}).Return(redis.NewIntResult(1, nil)).Once()

	err := suite.outbox.Enqueue(suite.ctx, env)
	assert.NoError(suite.T(), err)
}

func (suite *OutboxTestSuite) TestDrain_DeliversAndReleases() {
	env := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())
	env.EnqueuedAt = suite.now

	suite.expectDue(env.ID)
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{env.ID}).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HGet", mock.Anything, "ks:outbox:payload", env.ID).Return(redis.NewStringResult(suite.payload(env), nil)).Once()
	suite.writer.On("UpsertItem", mock.Anything, "rest-1", "Hortifruti", suite.tomato()).Return(OK()).Once()
	suite.redis.On("ZScore", mock.Anything, "ks:outbox:due", env.ID).Return(redis.NewFloatResult(0, redis.Nil)).Once()
	suite.redis.On("HDel", mock.Anything, "ks:outbox:payload", []string{env.ID}).Return(redis.NewIntResult(1, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), DrainStats{Delivered: 1}, stats)
}

func (suite *OutboxTestSuite) TestDrain_KeepsPayloadRequeuedInFlight() {
	entry := models.UpdateLogEntry{ID: "log-1", ItemName: "Tomate", Change: 3, NewQuantity: 8, Type: models.LogTypeAdd}
	env := AppendLogEnvelope("rest-1", entry)

	suite.expectDue(env.ID)
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{env.ID}).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HGet", mock.Anything, "ks:outbox:payload", env.ID).Return(redis.NewStringResult(suite.payload(env), nil)).Once()
	suite.writer.On("AppendLog", mock.Anything, "rest-1", mock.MatchedBy(func(e models.UpdateLogEntry) bool {
		return e.ID == "log-1"
	})).Return(OK()).Once()
	suite.redis.On("ZScore", mock.Anything, "ks:outbox:due", env.ID).Return(redis.NewFloatResult(123, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, stats.Delivered)
	suite.redis.AssertNotCalled(suite.T(), "HDel", mock.Anything, mock.Anything, mock.Anything)
}

func (suite *OutboxTestSuite) TestDrain_RetryableIsRescheduled() {
	env := SyncSheetsEnvelope("rest-1", []models.Sheet{{Name: "Secos"}})

	suite.expectDue(env.ID)
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{env.ID}).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HGet", mock.Anything, "ks:outbox:payload", env.ID).Return(redis.NewStringResult(suite.payload(env), nil)).Once()
	suite.writer.On("SyncSheets", mock.Anything, "rest-1", mock.Anything).Return(Retryable(context.DeadlineExceeded)).Once()
	suite.redis.On("HSet", mock.Anything, "ks:outbox:payload", mock.MatchedBy(func(v []interface{}) bool {
		var got Envelope
		if err := json.Unmarshal([]byte(v[1].(string)), &got); err != nil {
			return false
		}
		return got.Attempts == 1 && got.LastError != ""
	})).Return(redis.NewIntResult(0, nil)).Once()
	suite.redis.On("ZAdd", mock.Anything, "ks:outbox:due", []redis.Z{{
		Score:  float64(suite.now.Add(4 * time.Second).UnixNano()),
		Member: env.ID,
	}}).Return(redis.NewIntResult(1, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), DrainStats{Rescheduled: 1}, stats)
}

func (suite *OutboxTestSuite) TestDrain_ExhaustedGoesToDeadLetters() {
	env := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())
	env.Attempts = 2

	suite.expectDue(env.ID)
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{env.ID}).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HGet", mock.Anything, "ks:outbox:payload", env.ID).Return(redis.NewStringResult(suite.payload(env), nil)).Once()
	suite.writer.On("UpsertItem", mock.Anything, "rest-1", "Hortifruti", mock.Anything).Return(Retryable(context.DeadlineExceeded)).Once()
	suite.redis.On("LPush", mock.Anything, "ks:outbox:dead", mock.Anything).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("LTrim", mock.Anything, "ks:outbox:dead", int64(0), int64(999)).Return(redis.NewStatusResult("OK", nil)).Once()
	suite.redis.On("ZScore", mock.Anything, "ks:outbox:due", env.ID).Return(redis.NewFloatResult(0, redis.Nil)).Once()
	suite.redis.On("HDel", mock.Anything, "ks:outbox:payload", []string{env.ID}).Return(redis.NewIntResult(1, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), DrainStats{Dead: 1}, stats)
}

func (suite *OutboxTestSuite) TestDrain_FatalGoesToDeadLettersImmediately() {
	env := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())

	suite.expectDue(env.ID)
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{env.ID}).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HGet", mock.Anything, "ks:outbox:payload", env.ID).Return(redis.NewStringResult(suite.payload(env), nil)).Once()
	suite.writer.On("UpsertItem", mock.Anything, "rest-1", "Hortifruti", mock.Anything).Return(Fatal(assert.AnError)).Once()
	suite.redis.On("LPush", mock.Anything, "ks:outbox:dead", mock.Anything).Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("LTrim", mock.Anything, "ks:outbox:dead", int64(0), int64(999)).Return(redis.NewStatusResult("OK", nil)).Once()
	suite.redis.On("ZScore", mock.Anything, "ks:outbox:due", env.ID).Return(redis.NewFloatResult(0, redis.Nil)).Once()
	suite.redis.On("HDel", mock.Anything, "ks:outbox:payload", []string{env.ID}).Return(redis.NewIntResult(1, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), 1, stats.Dead)
}

func (suite *OutboxTestSuite) TestDrain_SkipsEnvelopeClaimedElsewhere() {
	suite.expectDue("append_log:rest-1:log-9")
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{"append_log:rest-1:log-9"}).Return(redis.NewIntResult(0, nil)).Once()

	stats, err := suite.outbox.Drain(suite.ctx, suite.writer)
	assert.NoError(suite.T(), err)
	assert.Equal(suite.T(), DrainStats{Skipped: 1}, stats)
}

func (suite *OutboxTestSuite) TestDeadLetters() {
	env := UpsertItemEnvelope("rest-1", "Hortifruti", suite.tomato())
	env.LastError = "fatal: boom"
	suite.redis.On("LRange", mock.Anything, "ks:outbox:dead", int64(0), int64(9)).
		Return(redis.NewStringSliceResult([]string{suite.payload(env), "not json"}, nil)).Once()

	dead, err := suite.outbox.DeadLetters(suite.ctx, 10)
	assert.NoError(suite.T(), err)
	assert.Len(suite.T(), dead, 1)
	assert.Equal(suite.T(), "fatal: boom", dead[0].LastError)
}

func (suite *OutboxTestSuite) TestDiscard_RemovesScheduleAndPayload() {
	suite.redis.On("ZRem", mock.Anything, "ks:outbox:due", []interface{}{"upsert_item:rest-1:Hortifruti:tomate"}).
		Return(redis.NewIntResult(1, nil)).Once()
	suite.redis.On("HDel", mock.Anything, "ks:outbox:payload", []string{"upsert_item:rest-1:Hortifruti:tomate"}).
		Return(redis.NewIntResult(1, nil)).Once()

	assert.NoError(suite.T(), suite.outbox.Discard(suite.ctx, "upsert_item:rest-1:Hortifruti:tomate"))
}
