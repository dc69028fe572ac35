package sales

import (
	"context"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/inventory"
	"kitchen_ledger/internal/metrics"
	"kitchen_ledger/internal/recipes"
)

// Policy decides what an insufficient ingredient does to a sale.
type Policy string

const (
	// PolicyLenient skips the short ingredient, reports it and records the sale anyway.
	PolicyLenient Policy = "lenient"
	// PolicyStrict aborts the whole sale when any ingredient is short.
	PolicyStrict Policy = "strict"
)

// ParsePolicy accepts "lenient", "strict" or the empty string (lenient).
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "", PolicyLenient:
		return PolicyLenient, nil
	case PolicyStrict:
		return PolicyStrict, nil
	default:
		return "", apperr.Invalid("unknown shortfall policy %q", s)
	}
}

// Service records sales and answers ledger queries. It is the only writer
// of the sales ledger and the only path that deducts stock for a sale.
type Service struct {
	db      *gorm.DB
	policy  Policy
	metrics *metrics.Collector
	logger  *zap.Logger
	now     func() time.Time

	// storage constructors, bound to the sale transaction
	stock   func(*gorm.DB) inventory.Storage
	ledger  func(*gorm.DB) Storage
	catalog func(*gorm.DB) recipes.Storage
}

// NewService creates a new Service. m may be nil.
func NewService(db *gorm.DB, policy Policy, m *metrics.Collector, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if policy == "" {
		policy = PolicyLenient
	}
	return &Service{
		db:      db,
		policy:  policy,
		metrics: m,
		logger:  logger,
		now:     time.Now,
		stock:   func(tx *gorm.DB) inventory.Storage { return inventory.NewGormStorage(tx) },
		ledger:  func(tx *gorm.DB) Storage { return NewGormStorage(tx) },
		catalog: func(tx *gorm.DB) recipes.Storage { return recipes.NewGormStorage(tx) },
	}
}

// Policy reports the shortfall policy in effect.
func (s *Service) Policy() Policy { return s.policy }

// RecordSale deducts every ingredient of the recipe and appends the sale to
// the ledger in one transaction. Under the lenient policy an ingredient with
// too little stock is left untouched and reported in the receipt; under the
// strict policy it aborts the sale with a *ShortfallError. Any storage fault
// rolls back every deduction already made.
func (s *Service) RecordSale(ctx context.Context, in SaleInput) (*Receipt, error) {
	if _, err := s.catalog(s.db).Read(ctx, in.RecipeID); err != nil {
		if errors.Is(err, recipes.ErrNotFound) {
			s.logger.Warn("sale for unknown recipe", zap.String("recipe_id", in.RecipeID))
			return nil, fmt.Errorf("%w: %s", apperr.ErrUnknownRecipe, in.RecipeID)
		}
		return nil, err
	}
	if math.IsNaN(in.QuantitySold) || math.IsInf(in.QuantitySold, 0) || in.QuantitySold <= 0 {
		return nil, apperr.Invalid("quantity sold must be greater than zero")
	}
	date := in.SaleDate
	if date.IsZero() {
		date = DateOf(s.now())
	}

	started := time.Now()
	receipt := &Receipt{Shortfalls: make([]Shortfall, 0)}
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		recipe, err := s.catalog(tx).Read(ctx, in.RecipeID)
		if err != nil {
			return err
		}

		stock := s.stock(tx)
		sold := decimal.NewFromFloat(in.QuantitySold)
		for _, line := range lockOrder(recipe.Lines) {
			needed := decimal.NewFromFloat(line.QuantityRequired).Mul(sold).InexactFloat64()
			res, err := stock.Deduct(ctx, line.IngredientID, needed)
			if err != nil {
				return err
			}
			if !res.OK {
				receipt.Shortfalls = append(receipt.Shortfalls, Shortfall{
					IngredientID: line.IngredientID,
					Name:         res.Name,
					Available:    res.Quantity,
					Required:     needed,
				})
			}
		}
		if s.policy == PolicyStrict && len(receipt.Shortfalls) > 0 {
			return &ShortfallError{Shortfalls: receipt.Shortfalls}
		}

		ev, err := s.ledger(tx).Append(ctx, date, recipe.ID, in.QuantitySold)
		if err != nil {
			return err
		}
		receipt.Sale = ev
		return nil
	})
	if err != nil {
		s.fail(in, err)
		return nil, err
	}

	for _, sf := range receipt.Shortfalls {
		s.metrics.Shortfall(sf.Name)
		s.logger.Warn("ingredient short, deduction skipped",
			zap.String("sale_id", receipt.Sale.ID),
			zap.String("ingredient", sf.Name),
			zap.Float64("available", sf.Available),
			zap.Float64("required", sf.Required),
		)
	}
	s.metrics.SaleRecorded(receipt.Sale.RecipeID, receipt.Sale.QuantitySold, time.Since(started))
	s.logger.Info("sale recorded",
		zap.String("sale_id", receipt.Sale.ID),
		zap.String("recipe_id", receipt.Sale.RecipeID),
		zap.Stringer("sale_date", receipt.Sale.SaleDate),
		zap.Float64("quantity_sold", receipt.Sale.QuantitySold),
		zap.Int("shortfalls", len(receipt.Shortfalls)),
	)
	return receipt, nil
}

func (s *Service) fail(in SaleInput, err error) {
	var short *ShortfallError
	switch {
	case errors.As(err, &short):
		s.logger.Warn("sale rejected by strict policy", zap.String("recipe_id", in.RecipeID), zap.Error(err))
	case errors.Is(err, apperr.ErrStorageFault):
		s.metrics.StorageFault("record_sale")
		s.logger.Error("sale rolled back", zap.String("recipe_id", in.RecipeID), zap.Error(err))
	default:
		s.logger.Warn("sale rejected", zap.String("recipe_id", in.RecipeID), zap.Error(err))
	}
}

// lockOrder returns the lines sorted by ingredient id, the order in which
// concurrent sales lock ingredient rows.
func lockOrder(lines []recipes.Line) []recipes.Line {
	sorted := slices.Clone(lines)
	slices.SortStableFunc(sorted, func(a, b recipes.Line) int {
		return strings.Compare(a.IngredientID, b.IngredientID)
	})
	return sorted
}

// List returns ledger entries filtered by recipe and inclusive date range, newest first.
func (s *Service) List(ctx context.Context, recipeID string, start, end Date) ([]*SaleEvent, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.ledger(s.db).ListBetween(ctx, recipeID, start, end)
}

// History is List joined with recipe names, for display.
func (s *Service) History(ctx context.Context, recipeID string, start, end Date) ([]HistoryRow, error) {
	if err := checkRange(start, end); err != nil {
		return nil, err
	}
	return s.ledger(s.db).History(ctx, recipeID, start, end)
}

func checkRange(start, end Date) error {
	if !start.IsZero() && !end.IsZero() && end.Before(start) {
		return apperr.Invalid("date range ends (%s) before it starts (%s)", end, start)
	}
	return nil
}
