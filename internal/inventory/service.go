package inventory

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kitchen_ledger/internal/apperr"
)

// UsageChecker tells whether any recipe still consumes an ingredient.
type UsageChecker interface {
	IngredientInUse(ctx context.Context, ingredientID string) (bool, error)
}

// Service provides the ingredient store operations on a Storage backend.
type Service struct {
	storage Storage
	usage   UsageChecker
	logger  *zap.Logger
}

// NewService creates a new Service. usage may be nil when no catalog exists yet.
func NewService(storage Storage, usage UsageChecker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage: storage,
		usage:   usage,
		logger:  logger,
	}
}

// Add validates and stores a new ingredient.
func (s *Service) Add(ctx context.Context, in IngredientInput) (*Ingredient, error) {
	ing, err := in.build()
	if err != nil {
		s.logger.Warn("rejected ingredient", zap.String("name", in.Name), zap.Error(err))
		return nil, err
	}
	if err := s.ensureNameFree(ctx, ing.Name, ""); err != nil {
		return nil, err
	}

	ing.ID = uuid.NewString()
	if err := s.storage.Set(ctx, ing); err != nil {
		s.logger.Error("failed to save ingredient", zap.String("name", ing.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("ingredient added", zap.String("ingredient_id", ing.ID), zap.String("name", ing.Name))
	return ing, nil
}

// Update applies a partial edit to an existing ingredient.
func (s *Service) Update(ctx context.Context, id string, patch IngredientPatch) (*Ingredient, error) {
	current, err := s.storage.Read(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := patch.apply(*current)
	if err != nil {
		s.logger.Warn("rejected ingredient edit", zap.String("ingredient_id", id), zap.Error(err))
		return nil, err
	}
	if updated.Name != current.Name {
		if err := s.ensureNameFree(ctx, updated.Name, id); err != nil {
			return nil, err
		}
	}

	if err := s.storage.Update(ctx, updated); err != nil {
		s.logger.Error("failed to update ingredient", zap.String("ingredient_id", id), zap.Error(err))
		return nil, err
	}

	s.logger.Info("ingredient updated", zap.String("ingredient_id", id))
	return updated, nil
}

// Remove deletes an ingredient. Ingredients still listed in a recipe's bill
// of materials cannot be removed.
func (s *Service) Remove(ctx context.Context, id string) error {
	ing, err := s.storage.Read(ctx, id)
	if err != nil {
		return err
	}

	if s.usage != nil {
		inUse, err := s.usage.IngredientInUse(ctx, id)
		if err != nil {
			return err
		}
		if inUse {
			return fmt.Errorf("%w: %q is part of at least one recipe", apperr.ErrIngredientInUse, ing.Name)
		}
	}

	if err := s.storage.Delete(ctx, id); err != nil {
		s.logger.Error("failed to delete ingredient", zap.String("ingredient_id", id), zap.Error(err))
		return err
	}

	s.logger.Info("ingredient removed", zap.String("ingredient_id", id), zap.String("name", ing.Name))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Ingredient, error) {
	return s.storage.Read(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Ingredient, error) {
	return s.storage.GetAll(ctx)
}

// LowStock returns the ingredients whose quantity is below their threshold.
func (s *Service) LowStock(ctx context.Context) ([]*Ingredient, error) {
	all, err := s.storage.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]*Ingredient, 0)
	for _, ing := range all {
		if ing.Low() {
			low = append(low, ing)
		}
	}
	return low, nil
}

// Deduct takes amount out of stock. Insufficient stock is not an error: the
// quantity stays unchanged and the result reports OK=false.
func (s *Service) Deduct(ctx context.Context, id string, amount float64) (DeductResult, error) {
	if err := checkAmount("amount", amount); err != nil {
		return DeductResult{}, err
	}
	if amount == 0 {
		return DeductResult{}, apperr.Invalid("amount must be greater than zero")
	}

	res, err := s.storage.Deduct(ctx, id, amount)
	if err != nil {
		return DeductResult{}, err
	}
	if !res.OK {
		s.logger.Warn("deduction exceeds stock",
			zap.String("ingredient_id", id),
			zap.Float64("available", res.Quantity),
			zap.Float64("requested", amount),
		)
		return res, nil
	}

	s.logger.Info("ingredient deducted", zap.String("ingredient_id", id), zap.Float64("new_quantity", res.Quantity))
	return res, nil
}

func (s *Service) ensureNameFree(ctx context.Context, name, selfID string) error {
	existing, err := s.storage.ReadByName(ctx, name)
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == selfID {
		return nil
	}
	return fmt.Errorf("%w: ingredient %q already exists", apperr.ErrDuplicateName, name)
}
