package sales

import (
	"context"
	"errors"
	"math"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"kitchen_ledger/internal/apperr"
)

// ErrEmptyRecipeID is returned when appending a sale without a recipe reference.
var ErrEmptyRecipeID = errors.New("empty recipe ID")

// Storage is the append-only sales ledger. Entries are never updated or deleted.
type Storage interface {
	Append(ctx context.Context, date Date, recipeID string, quantity float64) (*SaleEvent, error)
	ListBetween(ctx context.Context, recipeID string, start, end Date) ([]*SaleEvent, error)
	ListAllOrderedDesc(ctx context.Context) ([]*SaleEvent, error)
	History(ctx context.Context, recipeID string, start, end Date) ([]HistoryRow, error)
}

// GormStorage keeps the ledger in the sales_history table.
type GormStorage struct {
	db *gorm.DB
}

// NewGormStorage binds the ledger to db, which may be a transaction.
func NewGormStorage(db *gorm.DB) *GormStorage {
	return &GormStorage{db: db}
}

// AutoMigrate creates the sales_history table. There is no
// foreign key to recipes: removing a recipe leaves its history in place.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(&SaleEvent{})
}

// Append writes a new ledger entry. Only range checks happen here.
func (g *GormStorage) Append(ctx context.Context, date Date, recipeID string, quantity float64) (*SaleEvent, error) {
	if recipeID == "" {
		return nil, ErrEmptyRecipeID
	}
	if date.IsZero() {
		return nil, apperr.Invalid("sale date is required")
	}
	if math.IsNaN(quantity) || math.IsInf(quantity, 0) || quantity <= 0 {
		return nil, apperr.Invalid("quantity sold must be greater than zero")
	}

	ev := &SaleEvent{
		ID:           uuid.NewString(),
		SaleDate:     date,
		RecipeID:     recipeID,
		QuantitySold: quantity,
	}
	if err := g.db.WithContext(ctx).Create(ev).Error; err != nil {
		return nil, apperr.Fault("append sale", err)
	}
	return ev, nil
}

// ListBetween returns the entries dated within [start, end], newest first.
// A zero start or end leaves that side open; an empty recipeID matches every recipe.
func (g *GormStorage) ListBetween(ctx context.Context, recipeID string, start, end Date) ([]*SaleEvent, error) {
	var events []*SaleEvent
	q := filter(g.db.WithContext(ctx).Model(&SaleEvent{}), "", recipeID, start, end)
	if err := q.Order("sale_date desc, created_at desc").Find(&events).Error; err != nil {
		return nil, apperr.Fault("list sales", err)
	}
	return events, nil
}

// ListAllOrderedDesc returns the whole ledger ordered by sale date, newest first.
func (g *GormStorage) ListAllOrderedDesc(ctx context.Context) ([]*SaleEvent, error) {
	return g.ListBetween(ctx, "", Date{}, Date{})
}

// History returns ledger rows with the name of the recipe they refer to.
func (g *GormStorage) History(ctx context.Context, recipeID string, start, end Date) ([]HistoryRow, error) {
	q := g.db.WithContext(ctx).Table("sales_history AS s").
		Select("s.id AS id, s.sale_date AS sale_date, s.recipe_id AS recipe_id, COALESCE(r.name, ?) AS recipe_name, s.quantity_sold AS quantity_sold", DeletedRecipeName).
		Joins("LEFT JOIN recipes r ON r.id = s.recipe_id")
	q = filter(q, "s.", recipeID, start, end)

	var rows []HistoryRow
	if err := q.Order("s.sale_date desc, s.created_at desc").Scan(&rows).Error; err != nil {
		return nil, apperr.Fault("read sales history", err)
	}
	return rows, nil
}

func filter(q *gorm.DB, prefix, recipeID string, start, end Date) *gorm.DB {
	if recipeID != "" {
		q = q.Where(prefix+"recipe_id = ?", recipeID)
	}
	if !start.IsZero() {
		q = q.Where(prefix+"sale_date >= ?", start)
	}
	if !end.IsZero() {
		q = q.Where(prefix+"sale_date <= ?", end)
	}
	return q
}
