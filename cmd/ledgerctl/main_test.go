package main

import (
	"bytes"
	"context"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kitchen_ledger/api"
	"kitchen_ledger/internal/client"
	"kitchen_ledger/internal/config"
	"kitchen_ledger/internal/database/dbtest"
	"kitchen_ledger/internal/inventory"
	"kitchen_ledger/internal/recipes"
	"kitchen_ledger/internal/sales"
)

func TestRun(t *testing.T) {
	ctx := context.Background()
	gin.SetMode(gin.TestMode)
	router := gin.New()
	db := dbtest.New(t, inventory.AutoMigrate, recipes.AutoMigrate, sales.AutoMigrate)
	logger := zaptest.NewLogger(t)
	svc := api.NewServices(db, sales.PolicyLenient, nil, logger)
	api.InitRoutes(router, svc, config.Default(), nil, logger)
	srv := httptest.NewServer(router)
	defer srv.Close()

	flour, err := svc.Ingredients.Add(ctx, inventory.IngredientInput{Name: "Flour", Quantity: 1, Unit: "kg", CostPerUnit: 2, Threshold: 3})
	require.NoError(t, err)
	bread, err := svc.Recipes.Add(ctx, "Bread", "", []recipes.Line{{IngredientID: flour.ID, QuantityRequired: 2}})
	require.NoError(t, err)

	c := client.New(srv.URL, 5*time.Second)
	defer c.Close()

	var out bytes.Buffer
	require.NoError(t, run(ctx, c, &out, "low-stock", nil))
	assert.Contains(t, out.String(), "Flour")

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "sell", []string{"-recipe", bread.ID, "-qty", "1", "-date", "2024-05-01"}))
	assert.Contains(t, out.String(), "recorded on 2024-05-01")
	assert.Contains(t, out.String(), "warning: not enough Flour")

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "history", []string{"-from", "2024-05-01", "-to", "2024-05-01"}))
	assert.Contains(t, out.String(), "Bread")

	out.Reset()
	require.NoError(t, run(ctx, c, &out, "recipes", nil))
	assert.Contains(t, out.String(), "4.00")

	assert.Error(t, run(ctx, c, &out, "forecast", []string{"-window", "14"}))
	assert.Error(t, run(ctx, c, &out, "sell", []string{"-recipe", bread.ID, "-qty", "1", "-date", "May"}))
	assert.Error(t, run(ctx, c, &out, "bake", nil))
}
