package recipes

import (
	"context"
	"math"

	"kitchen_ledger/internal/apperr"
)

// Draft stages bill-of-materials edits before they are committed to the catalog.
// A draft made with NewDraft commits as CreateRecipe, one made with EditDraft as
// UpdateRecipe for the edited recipe.
type Draft struct {
	recipeID    string
	Name        string
	Description string
	lines       []Line
}

// NewDraft starts a draft for a recipe that does not exist yet.
func NewDraft(name, description string) *Draft {
	return &Draft{Name: name, Description: description}
}

// EditDraft starts a draft preloaded with an existing recipe.
func EditDraft(r *Recipe) *Draft {
	lines := make([]Line, len(r.Lines))
	copy(lines, r.Lines)
	return &Draft{
		recipeID:    r.ID,
		Name:        r.Name,
		Description: r.Description,
		lines:       lines,
	}
}

// AddLine appends an ingredient. An ingredient may appear only once.
func (d *Draft) AddLine(ingredientID string, quantity float64) error {
	if err := checkLine(ingredientID, quantity); err != nil {
		return err
	}
	if d.index(ingredientID) >= 0 {
		return apperr.Invalid("ingredient %s is already in the draft", ingredientID)
	}
	d.lines = append(d.lines, Line{IngredientID: ingredientID, QuantityRequired: quantity})
	return nil
}

// UpdateLine changes the quantity of an ingredient already in the draft.
func (d *Draft) UpdateLine(ingredientID string, quantity float64) error {
	if err := checkLine(ingredientID, quantity); err != nil {
		return err
	}
	i := d.index(ingredientID)
	if i < 0 {
		return apperr.Invalid("ingredient %s is not in the draft", ingredientID)
	}
	d.lines[i].QuantityRequired = quantity
	return nil
}

// RemoveLine drops an ingredient from the draft.
func (d *Draft) RemoveLine(ingredientID string) error {
	i := d.index(ingredientID)
	if i < 0 {
		return apperr.Invalid("ingredient %s is not in the draft", ingredientID)
	}
	d.lines = append(d.lines[:i], d.lines[i+1:]...)
	return nil
}

// Lines returns a copy of the staged bill of materials.
func (d *Draft) Lines() []Line {
	lines := make([]Line, len(d.lines))
	copy(lines, d.lines)
	return lines
}

// Command turns the draft into the catalog command it stands for.
func (d *Draft) Command() Command {
	if d.recipeID == "" {
		return CreateRecipe{Name: d.Name, Description: d.Description, Lines: d.Lines()}
	}
	return UpdateRecipe{ID: d.recipeID, Name: d.Name, Description: d.Description, Lines: d.Lines()}
}

// Commit applies the draft to the catalog. After a successful create the draft
// is bound to the new recipe, so a second commit updates it.
func (d *Draft) Commit(ctx context.Context, svc *Service) (*Recipe, error) {
	r, err := svc.Apply(ctx, d.Command())
	if err != nil {
		return nil, err
	}
	d.recipeID = r.ID
	return r, nil
}

func (d *Draft) index(ingredientID string) int {
	for i, l := range d.lines {
		if l.IngredientID == ingredientID {
			return i
		}
	}
	return -1
}

func checkLine(ingredientID string, quantity float64) error {
	if ingredientID == "" {
		return apperr.Invalid("ingredient id is required")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return apperr.Invalid("quantity required for %s must be greater than zero", ingredientID)
	}
	return nil
}
