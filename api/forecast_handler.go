package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/forecast"
)

// forecastHandler serves demand predictions and price suggestions.
type forecastHandler struct {
	engine        *forecast.Engine
	defaultWindow forecast.Window
	defaultMargin float64
	logger        *zap.Logger
}

func NewForecastHandler(engine *forecast.Engine, window forecast.Window, margin float64, logger *zap.Logger) *forecastHandler {
	return &forecastHandler{
		engine:        engine,
		defaultWindow: window,
		defaultMargin: margin,
		logger:        logger,
	}
}

// params reads ?window= and ?margin=; the margin is a fraction (0.2 is 20%).
func (h *forecastHandler) params(ctx *gin.Context) (forecast.Window, float64, error) {
	w, err := forecast.ParseWindow(ctx.Query("window"), h.defaultWindow)
	if err != nil {
		return 0, 0, err
	}

	margin := h.defaultMargin
	if raw := ctx.Query("margin"); raw != "" {
		margin, err = strconv.ParseFloat(raw, 64)
		if err != nil {
			return 0, 0, apperr.Invalid("margin %q is not a number", raw)
		}
	}
	if err := forecast.CheckMargin(margin); err != nil {
		return 0, 0, err
	}
	return w, margin, nil
}

// handleReport handles GET /forecast.
func (h *forecastHandler) handleReport(ctx *gin.Context) {
	w, margin, err := h.params(ctx)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	rows, err := h.engine.Report(ctx.Request.Context(), w, margin)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"window": int(w), "margin": margin, "results": rows})
}

// handleRecipe handles GET /forecast/:recipe_id.
func (h *forecastHandler) handleRecipe(ctx *gin.Context) {
	w, margin, err := h.params(ctx)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	p, err := h.engine.Estimate(ctx.Request.Context(), ctx.Param("recipe_id"), w, margin)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusOK, p)
}
