// Package costing derives a recipe's unit cost from current ingredient prices.
package costing

import (
	"context"

	"github.com/shopspring/decimal"

	"kitchen_ledger/internal/recipes"
)

// LineSource yields a recipe's bill of materials priced at current ingredient cost.
type LineSource interface {
	PricedLines(ctx context.Context, recipeID string) ([]recipes.PricedLine, error)
}

// Engine computes recipe costs. It holds no state and never writes.
type Engine struct {
	lines LineSource
}

func NewEngine(lines LineSource) *Engine {
	return &Engine{lines: lines}
}

// Cost returns the cost of one unit of the recipe, rounded to cents.
// An empty bill of materials costs zero.
func (e *Engine) Cost(ctx context.Context, recipeID string) (decimal.Decimal, error) {
	lines, err := e.lines.PricedLines(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}
	return Total(lines), nil
}

// Total sums quantity * cost over the lines and rounds once, at the end.
// Costs are never negative, so Round's half-away-from-zero is half-up here.
func Total(lines []recipes.PricedLine) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		qty := decimal.NewFromFloat(l.QuantityRequired)
		cost := decimal.NewFromFloat(l.CostPerUnit)
		sum = sum.Add(qty.Mul(cost))
	}
	return sum.Round(2)
}
