package api

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"kitchen_ledger/internal/sales"
)

// salesHandler holds the sale recorder and implements HTTP handlers for the ledger.
type salesHandler struct {
	salesService *sales.Service
	logger       *zap.Logger
}

// NewSalesHandler creates a new sales handler.
func NewSalesHandler(salesService *sales.Service, logger *zap.Logger) *salesHandler {
	return &salesHandler{
		salesService: salesService,
		logger:       logger,
	}
}

// handleCreateSale handles the POST /sales endpoint. Shortfalls under the
// lenient policy come back beside the recorded sale with 201.
func (h *salesHandler) handleCreateSale(ctx *gin.Context) {
	var req sales.SaleInput
	if !bindJSON(ctx, h.logger, &req) {
		return
	}

	receipt, err := h.salesService.RecordSale(ctx.Request.Context(), req)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	ctx.JSON(http.StatusCreated, receipt)
}

// handleGetSales handles GET /sales?recipe_id=&from=&to=, newest first.
func (h *salesHandler) handleGetSales(ctx *gin.Context) {
	from, err := optionalDate(ctx.Query("from"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	to, err := optionalDate(ctx.Query("to"))
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}

	rows, err := h.salesService.History(ctx.Request.Context(), ctx.Query("recipe_id"), from, to)
	if err != nil {
		respondError(ctx, h.logger, err)
		return
	}
	if rows == nil {
		rows = []sales.HistoryRow{}
	}
	ctx.JSON(http.StatusOK, gin.H{"results": rows})
}

func optionalDate(s string) (sales.Date, error) {
	if s == "" {
		return sales.Date{}, nil
	}
	return sales.ParseDate(s)
}
