package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/database"
)

// ErrNotFound is returned when an ingredient with the given ID is not found.
var ErrNotFound = fmt.Errorf("%w: ingredient not found", apperr.ErrUnknownIngredient)

// ErrEmptyID is returned when trying to store an ingredient with an empty ID.
var ErrEmptyID = errors.New("empty ingredient ID")

// Storage is the persistence interface of the ingredient store.
type Storage interface {
	Set(ctx context.Context, ing *Ingredient) error
	Update(ctx context.Context, ing *Ingredient) error
	Read(ctx context.Context, id string) (*Ingredient, error)
	ReadByName(ctx context.Context, name string) (*Ingredient, error)
	GetAll(ctx context.Context) ([]*Ingredient, error)
	Delete(ctx context.Context, id string) error
	Deduct(ctx context.Context, id string, amount float64) (DeductResult, error)
}

// GormStorage keeps ingredients in the ingredients table. It works equally on
// a plain connection or on a transaction handle.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage binds the storage to db, which may be a transaction.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// AutoMigrate creates the ingredients table.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&Ingredient{})
}

// Set inserts a new ingredient.
func (g *GormStorage) Set(ctx context.Context, ing *Ingredient) error {
	if ing.ID == "" {
		return ErrEmptyID
	}
	if err := g.db.WithContext(ctx).Create(ing).Error; err != nil {
		return translate("insert ingredient", ing.Name, err)
	}
	return nil
}

// Update overwrites every column of an existing ingredient.
func (g *GormStorage) Update(ctx context.Context, ing *Ingredient) error {
	res := g.db.WithContext(ctx).Model(&Ingredient{}).Where("id = ?", ing.ID).Updates(map[string]any{
		"name":          ing.Name,
		"quantity":      ing.Quantity,
		"unit":          ing.Unit,
		"cost_per_unit": ing.CostPerUnit,
		"threshold":     ing.Threshold,
	})
	if res.Error != nil {
		return translate("update ingredient", ing.Name, res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Read retrieves an ingredient by ID.
// Returns ErrNotFound if the ingredient is not found.
func (g *GormStorage) Read(ctx context.Context, id string) (*Ingredient, error) {
	var ing Ingredient
	err := g.db.WithContext(ctx).First(&ing, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Fault("read ingredient", err)
	}
	return &ing, nil
}

// ReadByName looks an ingredient up by exact, case-sensitive name.
func (g *GormStorage) ReadByName(ctx context.Context, name string) (*Ingredient, error) {
	var ing Ingredient
	err := g.db.WithContext(ctx).First(&ing, "name = ?", name).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, apperr.Fault("read ingredient by name", err)
	}
	return &ing, nil
}

// GetAll retrieves all ingredients ordered by name.
func (g *GormStorage) GetAll(ctx context.Context) ([]*Ingredient, error) {
	var ings []*Ingredient
	if err := g.db.WithContext(ctx).Order("name asc").Find(&ings).Error; err != nil {
		return nil, apperr.Fault("list ingredients", err)
	}
	return ings, nil
}

// Delete removes an ingredient row.
func (g *GormStorage) Delete(ctx context.Context, id string) error {
	res := g.db.WithContext(ctx).Delete(&Ingredient{}, "id = ?", id)
	if res.Error != nil {
		return apperr.Fault("delete ingredient", res.Error)
	}
	if res.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

// Deduct removes amount from the on-hand quantity unless that would drive it
// negative, in which case the row is left as is and OK is false. The row is
// locked for the rest of the enclosing transaction.
func (g *GormStorage) Deduct(ctx context.Context, id string, amount float64) (DeductResult, error) {
	var result DeductResult
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var ing Ingredient
		err := database.ForUpdate(tx).First(&ing, "id = ?", id).Error
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}
		if err != nil {
			return apperr.Fault("lock ingredient", err)
		}

		onHand := decimal.NewFromFloat(ing.Quantity)
		needed := decimal.NewFromFloat(amount)
		result.Name = ing.Name
		if needed.GreaterThan(onHand) {
			result.Quantity = ing.Quantity
			return nil
		}

		remaining := onHand.Sub(needed).InexactFloat64()
		if err := tx.Model(&Ingredient{}).Where("id = ?", id).Update("quantity", remaining).Error; err != nil {
			return apperr.Fault("deduct ingredient", err)
		}
		result.OK = true
		result.Quantity = remaining
		return nil
	})
	if err != nil {
		return DeductResult{}, err
	}
	return result, nil
}

func translate(op, name string, err error) error {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return fmt.Errorf("%w: ingredient %q already exists", apperr.ErrDuplicateName, name)
	}
	return apperr.Fault(op, err)
}
