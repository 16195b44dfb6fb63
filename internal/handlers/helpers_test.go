package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http/httptest"
	"sync"
	"testing"

	"kitchenstock/internal/common"
	"kitchenstock/internal/models"
	"kitchenstock/internal/persistence"
	"kitchenstock/internal/validation"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
)

const testTenant = "cozinha-1"

// memoryStore is a RemoteStore that accepts every write.
type memoryStore struct {
	mu      sync.Mutex
	upserts int
	sheets  []models.Sheet
}

func (s *memoryStore) UpsertItem(context.Context, string, string, models.InventoryItem) persistence.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.upserts++
	return persistence.OK()
}

func (s *memoryStore) AppendLog(context.Context, string, models.UpdateLogEntry) persistence.Result {
	return persistence.OK()
}

func (s *memoryStore) SyncSheets(_ context.Context, _ string, sheets []models.Sheet) persistence.Result {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sheets = models.CloneSheets(sheets)
	return persistence.OK()
}

func (s *memoryStore) FetchSnapshot(context.Context, string) ([]models.Sheet, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return models.CloneSheets(s.sheets), nil
}

func newTestEcho() *echo.Echo {
	e := echo.New()
	e.Validator = validation.EchoValidator{}
	return e
}

// withIdentity stands in for the auth middleware.
func withIdentity(tenant, actor string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()
			if tenant != "" {
				ctx = common.WithTenantCode(ctx, tenant)
			}
			ctx = common.WithActor(ctx, actor)
			c.SetRequest(c.Request().WithContext(ctx))
			return next(c)
		}
	}
}

func doJSON(t *testing.T, e *echo.Echo, method, target string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out))
	return out
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp.Error.Code
}
