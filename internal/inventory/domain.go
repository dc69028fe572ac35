package inventory

import (
	"fmt"
	"math"
	"strings"

	"kitchen_ledger/internal/apperr"
)

// Unit is an opaque measurement label; no conversion is ever performed between units.
type Unit string

const (
	UnitKg     Unit = "kg"
	UnitLbs    Unit = "lbs"
	UnitOz     Unit = "oz"
	UnitMl     Unit = "ml"
	UnitLiters Unit = "liters"
	UnitPieces Unit = "pieces"
	UnitCups   Unit = "cups"
	UnitTbsp   Unit = "tbsp"
	UnitTsp    Unit = "tsp"
)

// Units lists every accepted unit in display order.
var Units = []Unit{UnitKg, UnitLbs, UnitOz, UnitMl, UnitLiters, UnitPieces, UnitCups, UnitTbsp, UnitTsp}

// ParseUnit accepts exactly one of the known unit labels.
func ParseUnit(s string) (Unit, error) {
	for _, u := range Units {
		if string(u) == s {
			return u, nil
		}
	}
	return "", apperr.Invalid("unknown unit %q", s)
}

// Ingredient is a raw material held in stock.
type Ingredient struct {
	ID          string  `json:"id" gorm:"primaryKey;type:text"`
	Name        string  `json:"name" gorm:"type:text;uniqueIndex;not null"`
	Quantity    float64 `json:"quantity" gorm:"not null"`
	Unit        Unit    `json:"unit" gorm:"type:text;not null"`
	CostPerUnit float64 `json:"cost_per_unit" gorm:"not null"`
	Threshold   float64 `json:"threshold" gorm:"not null"`
}

func (Ingredient) TableName() string { return "ingredients" }

// Low reports whether on-hand stock is strictly below the reorder threshold.
func (i Ingredient) Low() bool {
	return i.Quantity < i.Threshold
}

// IngredientInput carries the fields for a new ingredient.
type IngredientInput struct {
	Name        string  `json:"name"`
	Quantity    float64 `json:"quantity"`
	Unit        string  `json:"unit"`
	CostPerUnit float64 `json:"cost_per_unit"`
	Threshold   float64 `json:"threshold"`
}

// IngredientPatch holds an edit; nil fields keep their stored value.
type IngredientPatch struct {
	Name        *string  `json:"name"`
	Quantity    *float64 `json:"quantity"`
	Unit        *string  `json:"unit"`
	CostPerUnit *float64 `json:"cost_per_unit"`
	Threshold   *float64 `json:"threshold"`
}

// DeductResult reports the outcome of a stock deduction. When OK is false
// the stored quantity was left untouched and Quantity is what is on hand.
type DeductResult struct {
	OK       bool    `json:"ok"`
	Name     string  `json:"name"`
	Quantity float64 `json:"new_quantity"`
}

func (in IngredientInput) build() (*Ingredient, error) {
	unit, err := validate(in.Name, in.Quantity, in.Unit, in.CostPerUnit, in.Threshold)
	if err != nil {
		return nil, err
	}
	return &Ingredient{
		Name:        strings.TrimSpace(in.Name),
		Quantity:    in.Quantity,
		Unit:        unit,
		CostPerUnit: in.CostPerUnit,
		Threshold:   in.Threshold,
	}, nil
}

func (p IngredientPatch) apply(ing Ingredient) (*Ingredient, error) {
	in := IngredientInput{
		Name:        ing.Name,
		Quantity:    ing.Quantity,
		Unit:        string(ing.Unit),
		CostPerUnit: ing.CostPerUnit,
		Threshold:   ing.Threshold,
	}
	if p.Name != nil {
		in.Name = *p.Name
	}
	if p.Quantity != nil {
		in.Quantity = *p.Quantity
	}
	if p.Unit != nil {
		in.Unit = *p.Unit
	}
	if p.CostPerUnit != nil {
		in.CostPerUnit = *p.CostPerUnit
	}
	if p.Threshold != nil {
		in.Threshold = *p.Threshold
	}

	updated, err := in.build()
	if err != nil {
		return nil, err
	}
	updated.ID = ing.ID
	return updated, nil
}

func validate(name string, quantity float64, unit string, cost, threshold float64) (Unit, error) {
	if strings.TrimSpace(name) == "" {
		return "", apperr.Invalid("name is required")
	}
	if unit == "" {
		return "", apperr.Invalid("unit is required")
	}
	if err := checkAmount("quantity", quantity); err != nil {
		return "", err
	}
	if err := checkAmount("cost_per_unit", cost); err != nil {
		return "", err
	}
	if err := checkAmount("threshold", threshold); err != nil {
		return "", err
	}
	return ParseUnit(unit)
}

func checkAmount(field string, v float64) error {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return apperr.Invalid("%s must be numeric", field)
	}
	if v < 0 {
		return apperr.Invalid("%s must be non-negative, got %s", field, fmt.Sprint(v))
	}
	return nil
}
