package handlers

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"kitchenstock/internal/models"
	"kitchenstock/internal/persistence"
	"kitchenstock/internal/services"
	"kitchenstock/internal/spreadsheet"
	"kitchenstock/internal/validation"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type ResourceHandlersTestSuite struct {
	suite.Suite
	recipes   *MockRecipeService
	purchases *MockPurchaseService
	transfer  *MockTransferService
	tenants   *MockTenantService
	statuses  *MockStatusCache
	outbox    *MockOutbox
	e         *echo.Echo
}

func (suite *ResourceHandlersTestSuite) SetupTest() {
	suite.recipes = new(MockRecipeService)
	suite.purchases = new(MockPurchaseService)
	suite.transfer = new(MockTransferService)
	suite.tenants = new(MockTenantService)
	suite.statuses = new(MockStatusCache)
	suite.outbox = new(MockOutbox)

	recipes := NewRecipeHandlers(suite.recipes, zerolog.Nop())
	purchases := NewPurchaseHandlers(suite.purchases, zerolog.Nop())
	transfer := NewTransferHandlers(suite.transfer, zerolog.Nop())
	tenants := NewTenantHandlers(suite.tenants, suite.statuses, zerolog.Nop())
	ops := NewOpsHandlers(suite.outbox, suite.outbox, zerolog.Nop())

	e := newTestEcho()
	g := e.Group("/v1", withIdentity(testTenant, "ana"))
	g.GET("/recipes/:id", recipes.GetRecipe)
	g.POST("/recipes", recipes.CreateRecipe)
	g.GET("/recipes/:id/cost", recipes.GetRecipeCost)
	g.POST("/recipes/:id/produce", recipes.ProduceRecipe)
	g.DELETE("/recipes/:id", recipes.DeleteRecipe)
	g.POST("/purchases", purchases.RegisterPurchase)
	g.GET("/purchases", purchases.ListPurchases)
	g.POST("/inventory/import", transfer.ImportWorkbook)
	g.GET("/inventory/export", transfer.ExportWorkbook)
	g.POST("/admin/tenants", tenants.CreateTenant)
	g.PUT("/admin/tenants/:code/status", tenants.UpdateTenantStatus)
	g.GET("/admin/outbox", ops.OutboxStatus)
	g.POST("/admin/outbox/drain", ops.DrainOutbox)
	suite.e = e
}

func (suite *ResourceHandlersTestSuite) TearDownTest() {
	suite.recipes.AssertExpectations(suite.T())
	suite.purchases.AssertExpectations(suite.T())
	suite.transfer.AssertExpectations(suite.T())
	suite.tenants.AssertExpectations(suite.T())
	suite.statuses.AssertExpectations(suite.T())
	suite.outbox.AssertExpectations(suite.T())
}

func TestResourceHandlersTestSuite(t *testing.T) {
	suite.Run(t, new(ResourceHandlersTestSuite))
}

func (suite *ResourceHandlersTestSuite) TestGetRecipeInvalidID() {
	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/recipes/not-a-uuid", nil)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errorCode(suite.T(), rec))
}

func (suite *ResourceHandlersTestSuite) TestGetRecipeNotFound() {
	id := uuid.New()
	suite.recipes.On("GetByID", mock.Anything, testTenant, id).Return(nil, pgx.ErrNoRows)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/recipes/"+id.String(), nil)

	assert.Equal(suite.T(), http.StatusNotFound, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestCreateRecipeValidationError() {
	suite.recipes.On("Create", mock.Anything, testTenant, mock.AnythingOfType("*services.RecipeRequest")).
		Return(nil, &validation.Error{Fields: map[string]string{"ingredients": "is required"}})

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/recipes", map[string]interface{}{"name": "Molho", "yield": 4})

	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "ingredients")
}

func (suite *ResourceHandlersTestSuite) TestCreateRecipe() {
	recipe := &models.Recipe{ID: uuid.New(), TenantCode: testTenant, Name: "Molho", Yield: 4}
	suite.recipes.On("Create", mock.Anything, testTenant, mock.MatchedBy(func(req *services.RecipeRequest) bool {
		return req.Name == "Molho" && len(req.Ingredients) == 1 && req.SalePrice.Equal(decimal.RequireFromString("12.50"))
	})).Return(recipe, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/recipes", map[string]interface{}{
		"name":        "Molho",
		"yield":       4,
		"sale_price":  "12.50",
		"ingredients": []map[string]interface{}{{"item_name": "Tomate", "quantity": 1}},
	})

	assert.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Equal(suite.T(), "Molho", decode(suite.T(), rec)["name"])
}

func (suite *ResourceHandlersTestSuite) TestRecipeCost() {
	id := uuid.New()
	suite.recipes.On("Cost", mock.Anything, testTenant, id).Return(&models.RecipeCost{
		RecipeID: id, Total: decimal.RequireFromString("20"), PerPortion: decimal.RequireFromString("5"),
	}, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/recipes/"+id.String()+"/cost", nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "5", decode(suite.T(), rec)["per_portion"])
}

func (suite *ResourceHandlersTestSuite) TestProduceMissingIngredient() {
	id := uuid.New()
	suite.recipes.On("Produce", mock.Anything, testTenant, id, 8.0).
		Return(nil, fmt.Errorf("%w: Manjericão", services.ErrIngredientMissing))

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/recipes/"+id.String()+"/produce", ProduceRequest{Portions: 8})

	assert.Equal(suite.T(), http.StatusUnprocessableEntity, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "Manjericão")
}

func (suite *ResourceHandlersTestSuite) TestDeleteRecipe() {
	id := uuid.New()
	suite.recipes.On("Delete", mock.Anything, testTenant, id).Return(nil)

	rec := doJSON(suite.T(), suite.e, http.MethodDelete, "/v1/recipes/"+id.String(), nil)

	assert.Equal(suite.T(), http.StatusNoContent, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestRegisterPurchase() {
	result := &services.PurchaseResult{
		Purchase: &models.Purchase{ID: uuid.New(), Supplier: "Ceasa"},
		Failed:   map[string]string{"Alho": "no active sheet selected"},
	}
	suite.purchases.On("Register", mock.Anything, testTenant, mock.MatchedBy(func(req *services.PurchaseRequest) bool {
		return req.Supplier == "Ceasa" && len(req.Lines) == 2
	})).Return(result, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/purchases", map[string]interface{}{
		"supplier": "Ceasa",
		"lines": []map[string]interface{}{
			{"item_name": "Tomate", "quantity": 5, "unit_price": "4.90"},
			{"item_name": "Alho", "quantity": 1, "unit_price": "22"},
		},
	})

	require.Equal(suite.T(), http.StatusCreated, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "Alho")
}

func (suite *ResourceHandlersTestSuite) TestListPurchasesDateWindow() {
	from := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 5, 31, 0, 0, 0, 0, time.UTC).Add(24*time.Hour - time.Nanosecond)
	suite.purchases.On("List", mock.Anything, testTenant, from, to, 20, 0).Return([]*models.Purchase{}, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/purchases?from=2024-05-01&to=2024-05-31&limit=20", nil)

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestListPurchasesBadDate() {
	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/purchases?from=01/05/2024", nil)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Equal(suite.T(), "VALIDATION_ERROR", errorCode(suite.T(), rec))
}

func (suite *ResourceHandlersTestSuite) upload(content []byte) *httptest.ResponseRecorder {
	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	part, err := w.CreateFormFile("file", "estoque.xlsx")
	require.NoError(suite.T(), err)
	_, err = part.Write(content)
	require.NoError(suite.T(), err)
	require.NoError(suite.T(), w.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/inventory/import", &body)
	req.Header.Set(echo.HeaderContentType, w.FormDataContentType())
	rec := httptest.NewRecorder()
	suite.e.ServeHTTP(rec, req)
	return rec
}

func (suite *ResourceHandlersTestSuite) TestImportWorkbook() {
	suite.transfer.On("Import", mock.Anything, testTenant, mock.Anything).Return(&services.ImportResult{
		Sheets: []string{"Geladeira"}, Items: 3,
	}, nil)

	rec := suite.upload([]byte("xlsx bytes"))

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), 3.0, body["items"])
}

func (suite *ResourceHandlersTestSuite) TestImportWorkbookWithoutTabs() {
	issues := []spreadsheet.RowIssue{{Sheet: "Plan1", Row: 1, Reason: "no name column in header"}}
	suite.transfer.On("Import", mock.Anything, testTenant, mock.Anything).
		Return(&services.ImportResult{Issues: issues}, spreadsheet.ErrNoSheets)

	rec := suite.upload([]byte("xlsx bytes"))

	require.Equal(suite.T(), http.StatusBadRequest, rec.Code)
	assert.Contains(suite.T(), rec.Body.String(), "no name column in header")
}

func (suite *ResourceHandlersTestSuite) TestImportWorkbookRequiresFile() {
	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/inventory/import", nil)

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestExportWorkbookLink() {
	suite.transfer.On("Export", mock.Anything, testTenant).Return(&services.ExportResult{
		ObjectName: "exports/cozinha-1/estoque.xlsx", URL: "https://minio.local/signed",
	}, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/inventory/export", nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), "https://minio.local/signed", decode(suite.T(), rec)["url"])
}

func (suite *ResourceHandlersTestSuite) TestExportWithoutStorage() {
	suite.transfer.On("Export", mock.Anything, testTenant).Return(nil, services.ErrStorageDisabled)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/inventory/export", nil)

	assert.Equal(suite.T(), http.StatusServiceUnavailable, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestExportDownload() {
	suite.transfer.On("Workbook", mock.Anything, testTenant).Return([]byte("PK"), nil)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/inventory/export?download=true", nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), xlsxContentType, rec.Header().Get(echo.HeaderContentType))
	assert.Contains(suite.T(), rec.Header().Get(echo.HeaderContentDisposition), "estoque-cozinha-1-")
	assert.Equal(suite.T(), "PK", rec.Body.String())
}

func (suite *ResourceHandlersTestSuite) TestCreateTenantInvalidCode() {
	suite.tenants.On("Create", mock.Anything, mock.Anything).Return(nil, services.ErrInvalidTenantCode)

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/admin/tenants", services.CreateTenantRequest{Code: "-x-", Name: "X"})

	assert.Equal(suite.T(), http.StatusBadRequest, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestSuspendTenantForgetsStatus() {
	suite.tenants.On("SetStatus", mock.Anything, "cozinha-2", models.TenantStatusSuspended).Return(nil)
	suite.statuses.On("Forget", "cozinha-2").Return()

	rec := doJSON(suite.T(), suite.e, http.MethodPut, "/v1/admin/tenants/cozinha-2/status",
		services.UpdateTenantStatusRequest{Status: models.TenantStatusSuspended})

	assert.Equal(suite.T(), http.StatusOK, rec.Code)
}

func (suite *ResourceHandlersTestSuite) TestOutboxStatus() {
	dead := []persistence.Envelope{{ID: "env-1", Kind: persistence.KindUpsertItem, TenantCode: testTenant, Attempts: 8}}
	suite.outbox.On("Depth", mock.Anything).Return(int64(3), nil)
	suite.outbox.On("DeadLetters", mock.Anything, int64(20)).Return(dead, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodGet, "/v1/admin/outbox", nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	body := decode(suite.T(), rec)
	assert.Equal(suite.T(), 3.0, body["depth"])
	assert.Len(suite.T(), body["dead_letters"], 1)
}

func (suite *ResourceHandlersTestSuite) TestDrainOutbox() {
	suite.outbox.On("Drain", mock.Anything).Return(persistence.DrainStats{Delivered: 2}, nil)

	rec := doJSON(suite.T(), suite.e, http.MethodPost, "/v1/admin/outbox/drain", nil)

	require.Equal(suite.T(), http.StatusOK, rec.Code)
	assert.Equal(suite.T(), 2.0, decode(suite.T(), rec)["delivered"])
}

type staticJobs map[string]interface{}

func (s staticJobs) GetJobStatus() map[string]interface{} { return s }

func TestOpsJobs(t *testing.T) {
	e := newTestEcho()
	ops := NewOpsHandlers(nil, nil, zerolog.Nop())
	e.GET("/jobs", ops.Jobs)

	rec := doJSON(t, e, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 0.0, decode(t, rec)["total_jobs"])

	ops.WithJobs(staticJobs{"total_jobs": 2, "jobs": []string{"inventory-poll", "outbox-drain"}})
	rec = doJSON(t, e, http.MethodGet, "/jobs", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 2.0, decode(t, rec)["total_jobs"])
}

func TestHealthHandlers(t *testing.T) {
	ok := func(context.Context) error { return nil }
	down := func(context.Context) error { return errors.New("connection refused") }

	t.Run("healthy", func(t *testing.T) {
		h := NewHealthHandlers("test", map[string]Check{"database": ok, "redis": ok}, nil)
		e := echo.New()
		e.GET("/health", h.HealthCheck)
		e.GET("/health/ready", h.ReadinessCheck)

		rec := doJSON(t, e, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
		rec = doJSON(t, e, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("optional dependency down degrades health only", func(t *testing.T) {
		h := NewHealthHandlers("test", map[string]Check{"database": ok}, map[string]Check{"storage": down})
		e := echo.New()
		e.GET("/health", h.HealthCheck)
		e.GET("/health/ready", h.ReadinessCheck)

		rec := doJSON(t, e, http.MethodGet, "/health", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		deps := decode(t, rec)["services"].(map[string]interface{})
		assert.Equal(t, "unhealthy", deps["storage"])
		assert.Equal(t, "healthy", deps["database"])

		rec = doJSON(t, e, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusOK, rec.Code)
	})

	t.Run("critical dependency down", func(t *testing.T) {
		h := NewHealthHandlers("test", map[string]Check{"redis": down}, nil)
		e := echo.New()
		e.GET("/health/ready", h.ReadinessCheck)

		rec := doJSON(t, e, http.MethodGet, "/health/ready", nil)
		assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
		assert.Contains(t, rec.Body.String(), "redis unavailable")
	})
}
