package recipes

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/inventory"
)

// IngredientLookup resolves bill-of-materials references.
type IngredientLookup interface {
	Read(ctx context.Context, id string) (*inventory.Ingredient, error)
}

// Service provides the recipe catalog operations on a Storage backend.
type Service struct {
	storage     Storage
	ingredients IngredientLookup
	logger      *zap.Logger
}

// NewService creates a new Service.
func NewService(storage Storage, ingredients IngredientLookup, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		storage:     storage,
		ingredients: ingredients,
		logger:      logger,
	}
}

// Add creates a recipe.
func (s *Service) Add(ctx context.Context, name, description string, lines []Line) (*Recipe, error) {
	return s.Apply(ctx, CreateRecipe{Name: name, Description: description, Lines: lines})
}

// Update replaces a recipe's fields and its whole bill of materials.
func (s *Service) Update(ctx context.Context, id, name, description string, lines []Line) (*Recipe, error) {
	return s.Apply(ctx, UpdateRecipe{ID: id, Name: name, Description: description, Lines: lines})
}

// Apply executes a catalog command.
func (s *Service) Apply(ctx context.Context, cmd Command) (*Recipe, error) {
	switch c := cmd.(type) {
	case CreateRecipe:
		return s.create(ctx, c)
	case UpdateRecipe:
		return s.update(ctx, c)
	default:
		return nil, apperr.Invalid("unsupported recipe command %T", cmd)
	}
}

func (s *Service) create(ctx context.Context, c CreateRecipe) (*Recipe, error) {
	r := &Recipe{
		ID:          uuid.NewString(),
		Name:        strings.TrimSpace(c.Name),
		Description: strings.TrimSpace(c.Description),
		Lines:       c.Lines,
	}
	if err := s.validate(ctx, r); err != nil {
		s.logger.Warn("rejected recipe", zap.String("name", c.Name), zap.Error(err))
		return nil, err
	}

	if err := s.storage.Set(ctx, r); err != nil {
		s.logger.Error("failed to save recipe", zap.String("name", r.Name), zap.Error(err))
		return nil, err
	}

	s.logger.Info("recipe added", zap.String("recipe_id", r.ID), zap.String("name", r.Name), zap.Int("lines", len(r.Lines)))
	return r, nil
}

func (s *Service) update(ctx context.Context, c UpdateRecipe) (*Recipe, error) {
	if _, err := s.storage.Read(ctx, c.ID); err != nil {
		return nil, err
	}

	r := &Recipe{
		ID:          c.ID,
		Name:        strings.TrimSpace(c.Name),
		Description: strings.TrimSpace(c.Description),
		Lines:       c.Lines,
	}
	if err := s.validate(ctx, r); err != nil {
		s.logger.Warn("rejected recipe edit", zap.String("recipe_id", c.ID), zap.Error(err))
		return nil, err
	}

	if err := s.storage.Replace(ctx, r); err != nil {
		s.logger.Error("failed to update recipe", zap.String("recipe_id", r.ID), zap.Error(err))
		return nil, err
	}

	s.logger.Info("recipe updated", zap.String("recipe_id", r.ID), zap.Int("lines", len(r.Lines)))
	return r, nil
}

// Remove deletes a recipe and its bill of materials. Past sales keep referencing it.
func (s *Service) Remove(ctx context.Context, id string) error {
	if err := s.storage.Delete(ctx, id); err != nil {
		if !errors.Is(err, ErrNotFound) {
			s.logger.Error("failed to delete recipe", zap.String("recipe_id", id), zap.Error(err))
		}
		return err
	}
	s.logger.Info("recipe removed", zap.String("recipe_id", id))
	return nil
}

func (s *Service) Get(ctx context.Context, id string) (*Recipe, error) {
	return s.storage.Read(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]*Recipe, error) {
	return s.storage.GetAll(ctx)
}

// validate checks, in order: malformed fields, name uniqueness, dangling ingredient references.
func (s *Service) validate(ctx context.Context, r *Recipe) error {
	if r.Name == "" {
		return apperr.Invalid("recipe name is required")
	}
	if len(r.Lines) == 0 {
		return apperr.Invalid("recipe %q needs at least one ingredient", r.Name)
	}
	seen := make(map[string]struct{}, len(r.Lines))
	for _, l := range r.Lines {
		if err := checkLine(l.IngredientID, l.QuantityRequired); err != nil {
			return err
		}
		if _, dup := seen[l.IngredientID]; dup {
			return apperr.Invalid("ingredient %s listed twice", l.IngredientID)
		}
		seen[l.IngredientID] = struct{}{}
	}

	existing, err := s.storage.ReadByName(ctx, r.Name)
	switch {
	case errors.Is(err, ErrNotFound):
	case err != nil:
		return err
	case existing.ID != r.ID:
		return fmt.Errorf("%w: recipe %q already exists", apperr.ErrDuplicateName, r.Name)
	}

	for _, l := range r.Lines {
		if _, err := s.ingredients.Read(ctx, l.IngredientID); err != nil {
			if errors.Is(err, apperr.ErrUnknownIngredient) {
				return fmt.Errorf("%w: %s", apperr.ErrUnknownIngredient, l.IngredientID)
			}
			return err
		}
	}
	return nil
}
