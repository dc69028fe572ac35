package api

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/sales"
)

// respondError maps the ledger's error kinds onto HTTP statuses. Storage
// faults are logged and hidden behind a generic message.
func respondError(ctx *gin.Context, logger *zap.Logger, err error) {
	var short *sales.ShortfallError
	switch {
	case errors.As(err, &short):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error(), "shortfalls": short.Shortfalls})
	case errors.Is(err, apperr.ErrInvalidInput):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrUnknownIngredient), errors.Is(err, apperr.ErrUnknownRecipe):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, apperr.ErrDuplicateName), errors.Is(err, apperr.ErrIngredientInUse):
		ctx.JSON(http.StatusConflict, gin.H{"error": err.Error()})
	default:
		logger.Error("request failed",
			zap.String("method", ctx.Request.Method),
			zap.String("path", ctx.FullPath()),
			zap.Error(err),
		)
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}

// bindJSON decodes the request body, answering 400 on malformed input.
// Field decoders that reject a value name the reason in the response.
func bindJSON(ctx *gin.Context, logger *zap.Logger, dst any) bool {
	if err := ctx.ShouldBindJSON(dst); err != nil {
		logger.Warn("failed to bind JSON request", zap.String("path", ctx.FullPath()), zap.Error(err))
		msg := "invalid request payload"
		if errors.Is(err, apperr.ErrInvalidInput) {
			msg = err.Error()
		}
		ctx.JSON(http.StatusBadRequest, gin.H{"error": msg})
		return false
	}
	return true
}
