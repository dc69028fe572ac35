package sales

import (
	"fmt"
	"strings"

	"kitchen_ledger/internal/apperr"
)

// SaleEvent is one entry of the append-only sales ledger.
type SaleEvent struct {
	ID           string  `json:"id" gorm:"primaryKey;type:text"`
	SaleDate     Date    `json:"sale_date" gorm:"type:text;not null;index:idx_sales_recipe_date,priority:2"`
	RecipeID     string  `json:"recipe_id" gorm:"type:text;not null;index:idx_sales_recipe_date,priority:1"`
	QuantitySold float64 `json:"quantity_sold" gorm:"not null"`
	// CreatedAt breaks ties between events of the same day.
	CreatedAt int64 `json:"-" gorm:"autoCreateTime:nano"`
}

func (SaleEvent) TableName() string { return "sales_history" }

// SaleInput is a request to record a sale. A zero SaleDate means today.
type SaleInput struct {
	SaleDate     Date    `json:"sale_date"`
	RecipeID     string  `json:"recipe_id"`
	QuantitySold float64 `json:"quantity_sold"`
}

// Shortfall reports an ingredient whose deduction was skipped for lack of stock.
type Shortfall struct {
	IngredientID string  `json:"ingredient_id"`
	Name         string  `json:"name"`
	Available    float64 `json:"available"`
	Required     float64 `json:"required"`
}

func (s Shortfall) String() string {
	return fmt.Sprintf("%s (available %g, required %g)", s.Name, s.Available, s.Required)
}

// Receipt is the outcome of a recorded sale.
type Receipt struct {
	Sale       *SaleEvent  `json:"sale"`
	Shortfalls []Shortfall `json:"shortfalls"`
}

// HistoryRow is a ledger entry joined with the recipe's current name.
type HistoryRow struct {
	ID           string  `json:"id"`
	SaleDate     Date    `json:"sale_date"`
	RecipeID     string  `json:"recipe_id"`
	RecipeName   string  `json:"recipe_name"`
	QuantitySold float64 `json:"quantity_sold"`
}

// DeletedRecipeName is shown for ledger rows whose recipe no longer exists.
const DeletedRecipeName = "(deleted recipe)"

// ShortfallError aborts a sale under the strict policy. It matches apperr.ErrStockShortfall.
type ShortfallError struct {
	Shortfalls []Shortfall
}

func (e *ShortfallError) Error() string {
	parts := make([]string, 0, len(e.Shortfalls))
	for _, s := range e.Shortfalls {
		parts = append(parts, s.String())
	}
	return "stock shortfall: " + strings.Join(parts, ", ")
}

func (e *ShortfallError) Unwrap() error { return apperr.ErrStockShortfall }
