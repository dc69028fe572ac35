package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kitchen_ledger/internal/config"
	"kitchen_ledger/internal/costing"
	"kitchen_ledger/internal/forecast"
	"kitchen_ledger/internal/inventory"
	"kitchen_ledger/internal/metrics"
	"kitchen_ledger/internal/recipes"
	"kitchen_ledger/internal/sales"
)

// Services bundles the ledger components behind the HTTP surface.
type Services struct {
	Ingredients *inventory.Service
	Recipes     *recipes.Service
	Costing     *costing.Engine
	Sales       *sales.Service
	Forecast    *forecast.Engine
}

// NewServices builds every component on top of db.
func NewServices(db *gorm.DB, policy sales.Policy, m *metrics.Collector, logger *zap.Logger) *Services {
	ingredientStorage := inventory.NewGormStorage(db)
	recipeStorage := recipes.NewGormStorage(db)

	catalog := recipes.NewService(recipeStorage, ingredientStorage, logger)
	engine := costing.NewEngine(recipeStorage)
	return &Services{
		Ingredients: inventory.NewService(ingredientStorage, recipeStorage, logger),
		Recipes:     catalog,
		Costing:     engine,
		Sales:       sales.NewService(db, policy, m, logger),
		Forecast:    forecast.NewEngine(sales.NewGormStorage(db), engine, catalog),
	}
}

// InitRoutes registers the ledger endpoints on the given Gin engine. m may be
// nil, in which case /metrics is not served.
func InitRoutes(e *gin.Engine, svc *Services, cfg *config.Config, m *metrics.Collector, logger *zap.Logger) {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(cfg.HTTP.CORSOrigins) > 0 {
		e.Use(cors.New(cors.Config{
			AllowOrigins: cfg.HTTP.CORSOrigins,
			AllowMethods: []string{"GET", "POST", "PUT", "PATCH", "DELETE"},
			AllowHeaders: []string{"Origin", "Content-Type"},
			MaxAge:       12 * time.Hour,
		}))
	}

	ingredientHandler := NewIngredientHandler(svc.Ingredients, logger)
	e.GET("/ingredients", ingredientHandler.handleList)
	e.POST("/ingredients", ingredientHandler.handleCreate)
	e.GET("/ingredients/:id", ingredientHandler.handleGet)
	e.PATCH("/ingredients/:id", ingredientHandler.handlePatch)
	e.DELETE("/ingredients/:id", ingredientHandler.handleDelete)
	e.POST("/ingredients/:id/deduct", ingredientHandler.handleDeduct)

	recipeHandler := NewRecipeHandler(svc.Recipes, svc.Costing, logger)
	e.GET("/recipes", recipeHandler.handleList)
	e.POST("/recipes", recipeHandler.handleCreate)
	e.GET("/recipes/:id", recipeHandler.handleGet)
	e.PUT("/recipes/:id", recipeHandler.handleUpdate)
	e.DELETE("/recipes/:id", recipeHandler.handleDelete)
	e.GET("/recipes/:id/cost", recipeHandler.handleCost)

	salesHandler := NewSalesHandler(svc.Sales, logger)
	e.POST("/sales", salesHandler.handleCreateSale)
	e.GET("/sales", salesHandler.handleGetSales)

	forecastHandler := NewForecastHandler(svc.Forecast,
		forecast.Window(cfg.Forecast.DefaultWindow), cfg.Forecast.DefaultMargin, logger)
	e.GET("/forecast", forecastHandler.handleReport)
	e.GET("/forecast/:recipe_id", forecastHandler.handleRecipe)

	if m != nil && cfg.Metrics.Enabled {
		e.GET(cfg.Metrics.Path, gin.WrapH(m.Handler()))
	}

	e.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})
}
