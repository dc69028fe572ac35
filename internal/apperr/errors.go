// Package apperr holds the error kinds shared by every ledger component.
// Callers match them with errors.Is; the wrapped message carries the specific reason.
package apperr

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput is returned for malformed or out-of-range fields. Always recoverable by the caller.
	ErrInvalidInput = errors.New("invalid input")

	// ErrDuplicateName is returned when an ingredient or recipe name is already taken.
	ErrDuplicateName = errors.New("duplicate name")

	// ErrUnknownIngredient is returned for references to an ingredient id that does not exist.
	ErrUnknownIngredient = errors.New("unknown ingredient")

	// ErrUnknownRecipe is returned for references to a recipe id that does not exist.
	ErrUnknownRecipe = errors.New("unknown recipe")

	// ErrIngredientInUse is returned when removing an ingredient that a recipe still consumes.
	ErrIngredientInUse = errors.New("ingredient in use")

	// ErrStockShortfall is only raised in strict mode; lenient sales report shortfalls as values.
	ErrStockShortfall = errors.New("stock shortfall")

	// ErrStorageFault wraps failures of the persistence engine.
	ErrStorageFault = errors.New("storage fault")
)

// Invalid builds an ErrInvalidInput carrying a specific reason.
func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidInput, fmt.Sprintf(format, args...))
}

// Fault wraps a storage error so it matches both ErrStorageFault and the original cause.
func Fault(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrStorageFault) {
		return err
	}
	return fmt.Errorf("%w: %s: %w", ErrStorageFault, op, err)
}
