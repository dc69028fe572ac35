package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kitchen_ledger/internal/inventory"
)

// ingredientView adds the derived low-stock flag to an ingredient.
type ingredientView struct {
	*inventory.Ingredient
	Low bool `json:"low"`
}

func viewIngredient(ing *inventory.Ingredient) ingredientView {
	return ingredientView{Ingredient: ing, Low: ing.Low()}
}

// ingredientHandler exposes the ingredient store.
type ingredientHandler struct {
	ingredients *inventory.Service
	logger      *zap.Logger
}

func NewIngredientHandler(ingredients *inventory.Service, logger *zap.Logger) *ingredientHandler {
	return &ingredientHandler{
		ingredients: ingredients,
		logger:      logger,
	}
}

// handleList handles GET /ingredients. ?low=true keeps only ingredients below threshold.
func (h *ingredientHandler) handleList(ctx *gin.Context) {
	list := h.ingredients.List
	if ctx.Query("low") == "true" {
		list = h.ingredients.LowStock
	}

	all, err := list(ctx.Request.Context())
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	views := make([]ingredientView, 0, len(all))
	for _, ing := range all {
		views = append(views, viewIngredient(ing))
	}
	ctx.JSON(http.StatusOK, gin.H{"results": views})
}

// handleCreate handles POST /ingredients.
func (h *ingredientHandler) handleCreate(ctx *gin.Context) {
	var req inventory.IngredientInput
	if !bindJSON(ctx, h.logger, &req) {
		return
	}

	ing, err := h.ingredients.Add(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, viewIngredient(ing))
}

func (h *ingredientHandler) handleGet(ctx *gin.Context) {
	ing, err := h.ingredients.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, viewIngredient(ing))
}

// handlePatch handles PATCH /ingredients/:id; absent fields are left as stored.
func (h *ingredientHandler) handlePatch(ctx *gin.Context) {
	var req inventory.IngredientPatch
	if !bindJSON(ctx, h.logger, &req) {
		return
	}

	ing, err := h.ingredients.Update(ctx.Request.Context(), ctx.Param("id"), req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, viewIngredient(ing))
}

func (h *ingredientHandler) handleDelete(ctx *gin.Context) {
	if err := h.ingredients.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handleDeduct handles POST /ingredients/:id/deduct, a manual stock
// adjustment outside any sale.
func (h *ingredientHandler) handleDeduct(ctx *gin.Context) {
	var req struct {
		Amount float64 `json:"amount"`
	}
	if !bindJSON(ctx, h.logger, &req) {
		return
	}

	res, err := h.ingredients.Deduct(ctx.Request.Context(), ctx.Param("id"), req.Amount)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, res)
}
