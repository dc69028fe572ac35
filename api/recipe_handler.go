package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kitchen_ledger/internal/costing"
	"kitchen_ledger/internal/recipes"
)

// recipeView is a recipe with its cost at current ingredient prices.
type recipeView struct {
	*recipes.Recipe
	Cost json.Number `json:"cost"`
}

type recipeRequest struct {
	Name            string         `json:"name"`
	Description     string         `json:"description"`
	BillOfMaterials []recipes.Line `json:"bill_of_materials"`
}

// recipeHandler exposes the recipe catalog and the costing engine.
type recipeHandler struct {
	recipes *recipes.Service
	costing *costing.Engine
	logger  *zap.Logger
}

func NewRecipeHandler(catalog *recipes.Service, engine *costing.Engine, logger *zap.Logger) *recipeHandler {
	return &recipeHandler{
		recipes: catalog,
		costing: engine,
		logger:  logger,
	}
}

func (h *recipeHandler) view(ctx context.Context, r *recipes.Recipe) (recipeView, error) {
	cost, err := h.costing.Cost(ctx, r.ID)
	if err != nil {
		return recipeView{}, err
	}
	return recipeView{Recipe: r, Cost: json.Number(cost.StringFixed(2))}, nil
}

// handleList handles GET /recipes.
func (h *recipeHandler) handleList(ctx *gin.Context) {
	all, err := h.recipes.List(ctx.Request.Context())
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	views := make([]recipeView, 0, len(all))
	for _, r := range all {
		v, err := h.view(ctx.Request.Context(), r)
		if err != nil {
			respondError(ctx, h.logger, err)
			return
		}
		views = append(views, v)
	}
	ctx.JSON(http.StatusOK, gin.H{"results": views})
}

// handleCreate handles POST /recipes.
func (h *recipeHandler) handleCreate(ctx *gin.Context) {
	var req recipeRequest
	if !bindJSON(ctx, h.logger, &req) {
		return
	}
	h.apply(ctx, http.StatusCreated, recipes.CreateRecipe{
		Name:        req.Name,
		Description: req.Description,
		Lines:       req.BillOfMaterials,
	})
}

// handleUpdate handles PUT /recipes/:id. The bill of materials is replaced, not merged.
func (h *recipeHandler) handleUpdate(ctx *gin.Context) {
	var req recipeRequest
	if !bindJSON(ctx, h.logger, &req) {
		return
	}
	h.apply(ctx, http.StatusOK, recipes.UpdateRecipe{
		ID:          ctx.Param("id"),
		Name:        req.Name,
		Description: req.Description,
		Lines:       req.BillOfMaterials,
	})
}

func (h *recipeHandler) apply(ctx *gin.Context, status int, cmd recipes.Command) {
	r, err := h.recipes.Apply(ctx.Request.Context(), cmd)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	v, err := h.view(ctx.Request.Context(), r)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(status, v)
}

func (h *recipeHandler) handleGet(ctx *gin.Context) {
	r, err := h.recipes.Get(ctx.Request.Context(), ctx.Param("id"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	v, err := h.view(ctx.Request.Context(), r)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, v)
}

func (h *recipeHandler) handleDelete(ctx *gin.Context) {
	if err := h.recipes.Remove(ctx.Request.Context(), ctx.Param("id")); err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// handleCost handles GET /recipes/:id/cost.
func (h *recipeHandler) handleCost(ctx *gin.Context) {
	id := ctx.Param("id")
	cost, err := h.costing.Cost(ctx.Request.Context(), id)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"recipe_id": id, "cost": json.Number(cost.StringFixed(2))})
}
