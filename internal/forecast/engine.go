// Package forecast projects near-term demand from the sales ledger and turns
// recipe cost into a suggested selling price.
package forecast

import (
	"context"
	"encoding/json"
	"math"
	"strconv"
	"time"

	"github.com/shopspring/decimal"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/recipes"
	"kitchen_ledger/internal/sales"
)

// Window is the length of the trailing sales window, in days.
type Window int

const (
	Week    Window = 7
	Month   Window = 30
	Quarter Window = 90
)

// Windows lists the supported windows.
var Windows = []Window{Week, Month, Quarter}

// ParseWindow accepts "7", "30" or "90". The empty string selects def.
func ParseWindow(s string, def Window) (Window, error) {
	if s == "" {
		return def, def.Validate()
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, apperr.Invalid("window %q is not a number of days", s)
	}
	w := Window(n)
	return w, w.Validate()
}

func (w Window) Validate() error {
	for _, known := range Windows {
		if w == known {
			return nil
		}
	}
	return apperr.Invalid("window must be 7, 30 or 90 days, got %d", int(w))
}

// CheckMargin rejects negative or non-numeric margin fractions.
func CheckMargin(m float64) error {
	if math.IsNaN(m) || math.IsInf(m, 0) || m < 0 {
		return apperr.Invalid("margin must be a non-negative fraction, got %v", m)
	}
	return nil
}

// Ledger is the read side of the sales ledger.
type Ledger interface {
	ListBetween(ctx context.Context, recipeID string, start, end sales.Date) ([]*sales.SaleEvent, error)
}

// Coster prices one unit of a recipe.
type Coster interface {
	Cost(ctx context.Context, recipeID string) (decimal.Decimal, error)
}

// Catalog lists the recipes to forecast.
type Catalog interface {
	Get(ctx context.Context, id string) (*recipes.Recipe, error)
	List(ctx context.Context) ([]*recipes.Recipe, error)
}

// Prediction is one row of the forecast report.
type Prediction struct {
	RecipeID        string
	Name            string
	Cost            decimal.Decimal
	PredictedDemand decimal.Decimal
	SuggestedPrice  decimal.Decimal
}

func (p Prediction) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		RecipeID        string      `json:"recipe_id"`
		Name            string      `json:"name"`
		Cost            json.Number `json:"cost"`
		PredictedDemand json.Number `json:"predicted_demand"`
		SuggestedPrice  json.Number `json:"suggested_price"`
	}{
		RecipeID:        p.RecipeID,
		Name:            p.Name,
		Cost:            json.Number(p.Cost.StringFixed(2)),
		PredictedDemand: json.Number(p.PredictedDemand.StringFixed(2)),
		SuggestedPrice:  json.Number(p.SuggestedPrice.StringFixed(2)),
	})
}

// Engine is read-only: every method may be called repeatedly and concurrently.
type Engine struct {
	ledger  Ledger
	coster  Coster
	catalog Catalog
	now     func() time.Time
}

func NewEngine(ledger Ledger, coster Coster, catalog Catalog) *Engine {
	return &Engine{
		ledger:  ledger,
		coster:  coster,
		catalog: catalog,
		now:     time.Now,
	}
}

// PredictedDemand is a moving average over the trailing window: the quantity
// sold since today-window, averaged per day and scaled back to the window.
// The result equals the window total for every window. No sales in the
// window yields zero.
func (e *Engine) PredictedDemand(ctx context.Context, recipeID string, w Window) (decimal.Decimal, error) {
	if recipeID == "" {
		return decimal.Zero, apperr.Invalid("recipe id is required")
	}
	if err := w.Validate(); err != nil {
		return decimal.Zero, err
	}
	start := sales.DateOf(e.now()).AddDays(-int(w))
	events, err := e.ledger.ListBetween(ctx, recipeID, start, sales.Date{})
	if err != nil {
		return decimal.Zero, err
	}
	if len(events) == 0 {
		return decimal.Zero, nil
	}

	total := decimal.Zero
	for _, ev := range events {
		total = total.Add(decimal.NewFromFloat(ev.QuantitySold))
	}
	// scale before averaging so the division is exact
	days := decimal.NewFromInt(int64(w))
	return total.Mul(days).Div(days).Round(2), nil
}

// SuggestedPrice is cost * (1 + margin), rounded to cents. A recipe that costs
// nothing gets no suggestion (zero) whatever the margin.
func (e *Engine) SuggestedPrice(ctx context.Context, recipeID string, margin float64) (decimal.Decimal, error) {
	cost, err := e.coster.Cost(ctx, recipeID)
	if err != nil {
		return decimal.Zero, err
	}
	return priceFor(cost, margin), nil
}

func priceFor(cost decimal.Decimal, margin float64) decimal.Decimal {
	if cost.IsZero() {
		return decimal.Zero
	}
	return cost.Mul(decimal.NewFromInt(1).Add(decimal.NewFromFloat(margin))).Round(2)
}

// Estimate builds the forecast row of a single recipe.
func (e *Engine) Estimate(ctx context.Context, recipeID string, w Window, margin float64) (*Prediction, error) {
	r, err := e.catalog.Get(ctx, recipeID)
	if err != nil {
		return nil, err
	}
	p, err := e.predict(ctx, r, w, margin)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

// Report builds one forecast row per recipe in the catalog.
func (e *Engine) Report(ctx context.Context, w Window, margin float64) ([]Prediction, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}
	all, err := e.catalog.List(ctx)
	if err != nil {
		return nil, err
	}

	rows := make([]Prediction, 0, len(all))
	for _, r := range all {
		p, err := e.predict(ctx, r, w, margin)
		if err != nil {
			return nil, err
		}
		rows = append(rows, p)
	}
	return rows, nil
}

func (e *Engine) predict(ctx context.Context, r *recipes.Recipe, w Window, margin float64) (Prediction, error) {
	cost, err := e.coster.Cost(ctx, r.ID)
	if err != nil {
		return Prediction{}, err
	}
	demand, err := e.PredictedDemand(ctx, r.ID, w)
	if err != nil {
		return Prediction{}, err
	}
	return Prediction{
		RecipeID:        r.ID,
		Name:            r.Name,
		Cost:            cost,
		PredictedDemand: demand,
		SuggestedPrice:  priceFor(cost, margin),
	}, nil
}
