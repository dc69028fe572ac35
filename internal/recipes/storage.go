package recipes

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"kitchen_ledger/internal/apperr"
)

// ErrNotFound is returned when a recipe with the given ID is not found.
var ErrNotFound = fmt.Errorf("%w: recipe not found", apperr.ErrUnknownRecipe)

// ErrEmptyID is returned when trying to store a recipe with an empty ID.
var ErrEmptyID = errors.New("empty recipe ID")

// Storage is the persistence interface of the recipe catalog.
type Storage interface {
	Set(ctx context.Context, r *Recipe) error
	Replace(ctx context.Context, r *Recipe) error
	Read(ctx context.Context, id string) (*Recipe, error)
	ReadByName(ctx context.Context, name string) (*Recipe, error)
	GetAll(ctx context.Context) ([]*Recipe, error)
	Delete(ctx context.Context, id string) error
	PricedLines(ctx context.Context, recipeID string) ([]PricedLine, error)
	IngredientInUse(ctx context.Context, ingredientID string) (bool, error)
}

// GormStorage keeps recipes in the recipes and recipe_ingredients tables.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage binds the storage to db, which may be a transaction.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// AutoMigrate creates the recipe tables.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Recipe{}, &lineRow{})
}

// Set inserts a recipe together with its bill of materials.
func (g *GormStorage) Set(ctx context.Context, r *Recipe) error {
	if r.ID == "" {
		return ErrEmptyID
	}
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(r).Error; err != nil {
			return translate("insert recipe", r.Name, err)
		}
		return insertLines(tx, r)
	})
}

// Replace overwrites name and description and swaps the whole bill of materials.
func (g *GormStorage) Replace(ctx context.Context, r *Recipe) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&Recipe{}).Where("id = ?", r.ID).Updates(map[string]any{
			"name":        r.Name,
			"description": r.Description,
		})
		if res.Error != nil {
			return translate("update recipe", r.Name, res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		if err := tx.Delete(&lineRow{}, "recipe_id = ?", r.ID).Error; err != nil {
			return apperr.Fault("delete recipe lines", err)
		}
		return insertLines(tx, r)
	})
}

// Read retrieves a recipe and its bill of materials by ID.
// Returns ErrNotFound if the recipe is not found.
func (g *GormStorage) Read(ctx context.Context, id string) (*Recipe, error) {
	return g.readWhere(ctx, "id = ?", id)
}

// ReadByName looks a recipe up by exact, case-sensitive name.
func (g *GormStorage) ReadByName(ctx context.Context, name string) (*Recipe, error) {
	return g.readWhere(ctx, "name = ?", name)
}

func (g *GormStorage) readWhere(ctx context.Context, query string, arg string) (*Recipe, error) {
	db := g.db.WithContext(ctx)

	var r Recipe
	err := db.First(&r, query, arg).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Fault("read recipe", err)
	}

	var rows []lineRow
	if err := db.Where("recipe_id = ?", r.ID).Order("position asc").Find(&rows).Error; err != nil {
		return nil, apperr.Fault("read recipe lines", err)
	}
	r.Lines = toLines(rows)
	return &r, nil
}

// GetAll retrieves every recipe with its bill of materials, ordered by name.
func (g *GormStorage) GetAll(ctx context.Context) ([]*Recipe, error) {
	db := g.db.WithContext(ctx)

	var recipes []*Recipe
	if err := db.Order("name asc").Find(&recipes).Error; err != nil {
		return nil, apperr.Fault("list recipes", err)
	}

	var rows []lineRow
	if err := db.Order("recipe_id asc, position asc").Find(&rows).Error; err != nil {
		return nil, apperr.Fault("list recipe lines", err)
	}
	byRecipe := make(map[string][]lineRow, len(recipes))
	for _, row := range rows {
		byRecipe[row.RecipeID] = append(byRecipe[row.RecipeID], row)
	}
	for _, r := range recipes {
		r.Lines = toLines(byRecipe[r.ID])
	}
	return recipes, nil
}

// Delete removes a recipe and its bill of materials. Sales history is not touched.
func (g *GormStorage) Delete(ctx context.Context, id string) error {
	return g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&lineRow{}, "recipe_id = ?", id).Error; err != nil {
			return apperr.Fault("delete recipe lines", err)
		}
		res := tx.Delete(&Recipe{}, "id = ?", id)
		if res.Error != nil {
			return apperr.Fault("delete recipe", res.Error)
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}
		return nil
	})
}

// PricedLines joins a recipe's bill of materials with current ingredient costs.
// Returns ErrNotFound if the recipe does not exist.
func (g *GormStorage) PricedLines(ctx context.Context, recipeID string) ([]PricedLine, error) {
	db := g.db.WithContext(ctx)

	var count int64
	if err := db.Model(&Recipe{}).Where("id = ?", recipeID).Count(&count).Error; err != nil {
		return nil, apperr.Fault("check recipe", err)
	}
	if count == 0 {
		return nil, ErrNotFound
	}

	var lines []PricedLine
	err := db.Table("recipe_ingredients AS ri").
		Select("ri.ingredient_id AS ingredient_id, ri.quantity_required AS quantity_required, i.cost_per_unit AS cost_per_unit").
		Joins("JOIN ingredients i ON i.id = ri.ingredient_id").
		Where("ri.recipe_id = ?", recipeID).
		Order("ri.position asc").
		Scan(&lines).Error
	if err != nil {
		return nil, apperr.Fault("price recipe lines", err)
	}
	return lines, nil
}

// IngredientInUse reports whether any bill of materials references the ingredient.
func (g *GormStorage) IngredientInUse(ctx context.Context, ingredientID string) (bool, error) {
	var count int64
	err := g.db.WithContext(ctx).Model(&lineRow{}).Where("ingredient_id = ?", ingredientID).Count(&count).Error
	if err != nil {
		return false, apperr.Fault("check ingredient usage", err)
	}
	return count > 0, nil
}

func insertLines(tx *gorm.DB, r *Recipe) error {
	if len(r.Lines) == 0 {
		return nil
	}
	rows := make([]lineRow, 0, len(r.Lines))
	for i, l := range r.Lines {
		rows = append(rows, lineRow{
			RecipeID:         r.ID,
			IngredientID:     l.IngredientID,
			Position:         i,
			QuantityRequired: l.QuantityRequired,
		})
	}
	if err := tx.Create(&rows).Error; err != nil {
		return apperr.Fault("insert recipe lines", err)
	}
	return nil
}

func toLines(rows []lineRow) []Line {
	lines := make([]Line, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, Line{IngredientID: row.IngredientID, QuantityRequired: row.QuantityRequired})
	}
	return lines
}

func translate(op, name string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: recipe %q already exists", apperr.ErrDuplicateName, name)
	}
	return apperr.Fault(op, err)
}
