// Package server assembles the HTTP API.
package server

import (
	"net/http"

	_ "kitchenstock/docs"
	"kitchenstock/internal/handlers"
	"kitchenstock/internal/middleware"
	"kitchenstock/internal/validation"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
)

// Handlers groups every route handler the API serves.
type Handlers struct {
	Inventory  *handlers.InventoryHandlers
	Recipes    *handlers.RecipeHandlers
	Purchases  *handlers.PurchaseHandlers
	Checklists *handlers.ChecklistHandlers
	Utensils   *handlers.UtensilHandlers
	Tenants    *handlers.TenantHandlers
	Transfer   *handlers.TransferHandlers
	Realtime   *handlers.RealtimeHandlers
	Ops        *handlers.OpsHandlers
	Health     *handlers.HealthHandlers
}

// Middleware carries the request gates built from live dependencies.
type Middleware struct {
	// Authenticate puts actor, role and tenant on the request context. Required.
	Authenticate echo.MiddlewareFunc
	// Tenant rejects unknown and suspended tenants. Required.
	Tenant echo.MiddlewareFunc
	// CommandLimit throttles text commands. Optional.
	CommandLimit echo.MiddlewareFunc
}

type Options struct {
	Metrics      http.Handler
	AllowOrigins []string
	Logger       zerolog.Logger
}

// NewRouter builds the echo instance with global middleware and routes.
func NewRouter(h Handlers, mw Middleware, opts Options) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = validation.EchoValidator{}

	e.Pre(echoMiddleware.RemoveTrailingSlash())
	e.Use(echoMiddleware.RequestID())
	e.Use(middleware.RequestLogger(opts.Logger))
	e.Use(echoMiddleware.Recover())
	if len(opts.AllowOrigins) > 0 {
		e.Use(echoMiddleware.CORSWithConfig(echoMiddleware.CORSConfig{AllowOrigins: opts.AllowOrigins}))
	} else {
		e.Use(echoMiddleware.CORS())
	}

	versionMiddleware := middleware.NewVersionMiddleware()
	e.Use(versionMiddleware.APIVersionResolver())

	// Unauthenticated endpoints
	e.GET("/health", h.Health.HealthCheck)
	e.GET("/health/live", h.Health.LivenessCheck)
	e.GET("/health/ready", h.Health.ReadinessCheck)
	if opts.Metrics != nil {
		e.GET("/metrics", echo.WrapHandler(opts.Metrics))
	}
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	v1 := e.Group("/v1", versionMiddleware.VersionHeader("v1"), mw.Authenticate)

	admin := v1.Group("/admin", middleware.RequireRole(middleware.RoleAdmin))
	admin.GET("/tenants", h.Tenants.ListTenants)
	admin.POST("/tenants", h.Tenants.CreateTenant)
	admin.GET("/tenants/:code", h.Tenants.GetTenant)
	admin.PUT("/tenants/:code/status", h.Tenants.UpdateTenantStatus)
	admin.GET("/outbox", h.Ops.OutboxStatus)
	admin.POST("/outbox/drain", h.Ops.DrainOutbox)
	admin.GET("/jobs", h.Ops.Jobs)

	tenant := v1.Group("", mw.Tenant)

	// Inventory
	tenant.GET("/inventory", h.Inventory.GetInventory)
	tenant.POST("/inventory/add", h.Inventory.AddQuantity)
	tenant.POST("/inventory/set", h.Inventory.SetQuantity)
	tenant.POST("/inventory/corrections", h.Inventory.ApplyCorrection)
	tenant.POST("/inventory/undo", h.Inventory.Undo)
	tenant.GET("/inventory/find", h.Inventory.FindItem)
	tenant.GET("/inventory/low-stock", h.Inventory.LowStock)
	if mw.CommandLimit != nil {
		tenant.POST("/inventory/commands", h.Inventory.RunCommands, mw.CommandLimit)
	} else {
		tenant.POST("/inventory/commands", h.Inventory.RunCommands)
	}
	tenant.POST("/inventory/refresh", h.Inventory.Refresh)
	tenant.GET("/inventory/log", h.Inventory.ListLog)
	tenant.POST("/inventory/import", h.Transfer.ImportWorkbook)
	tenant.GET("/inventory/export", h.Transfer.ExportWorkbook)

	tenant.GET("/sheets", h.Inventory.ListSheets)
	tenant.POST("/sheets", h.Inventory.CreateSheet)
	tenant.PUT("/sheets/active", h.Inventory.ActivateSheet)

	tenant.GET("/realtime", h.Realtime.Subscribe)

	// Recipes
	tenant.GET("/recipes", h.Recipes.ListRecipes)
	tenant.POST("/recipes", h.Recipes.CreateRecipe)
	tenant.GET("/recipes/:id", h.Recipes.GetRecipe)
	tenant.PUT("/recipes/:id", h.Recipes.UpdateRecipe)
	tenant.DELETE("/recipes/:id", h.Recipes.DeleteRecipe)
	tenant.GET("/recipes/:id/cost", h.Recipes.GetRecipeCost)
	tenant.POST("/recipes/:id/produce", h.Recipes.ProduceRecipe)
	tenant.GET("/recipes/:id/productions", h.Recipes.ListProductions)

	// Purchases
	tenant.GET("/purchases", h.Purchases.ListPurchases)
	tenant.POST("/purchases", h.Purchases.RegisterPurchase)
	tenant.GET("/purchases/:id", h.Purchases.GetPurchase)

	// Checklists
	tenant.GET("/checklists", h.Checklists.ListChecklists)
	tenant.POST("/checklists", h.Checklists.CreateChecklist)
	tenant.GET("/checklists/:id", h.Checklists.GetChecklist)
	tenant.PUT("/checklists/items/:id", h.Checklists.CheckItem)

	// Utensils
	tenant.GET("/utensils", h.Utensils.ListUtensils)
	tenant.POST("/utensils", h.Utensils.CreateUtensil)
	tenant.GET("/utensils/:id", h.Utensils.GetUtensil)
	tenant.PUT("/utensils/:id", h.Utensils.UpdateUtensil)
	tenant.DELETE("/utensils/:id", h.Utensils.DeleteUtensil)

	return e
}
