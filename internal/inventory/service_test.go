package inventory

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"kitchen_ledger/internal/apperr"
	"kitchen_ledger/internal/database/dbtest"
)

type stubUsage struct {
	used map[string]bool
}

func (s stubUsage) IngredientInUse(_ context.Context, id string) (bool, error) {
	return s.used[id], nil
}

func newTestService(t *testing.T, usage UsageChecker) *Service {
	t.Helper()
	db := dbtest.New(t, AutoMigrate)
	return NewService(NewGormStorage(db), usage, zaptest.NewLogger(t))
}

func flour() IngredientInput {
	return IngredientInput{Name: "Flour", Quantity: 5, Unit: "kg", CostPerUnit: 1.25, Threshold: 2}
}

func TestNewService(t *testing.T) {
	svc := NewService(NewGormStorage(nil), nil, nil)
	require.NotNil(t, svc)
	assert.NotNil(t, svc.logger, "nil logger must be replaced")
}

func TestAddThenGet(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	added, err := svc.Add(ctx, flour())
	require.NoError(t, err)
	require.NotEmpty(t, added.ID)

	got, err := svc.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, "Flour", got.Name)
	assert.Equal(t, 5.0, got.Quantity)
	assert.Equal(t, UnitKg, got.Unit)
	assert.Equal(t, 1.25, got.CostPerUnit)
	assert.Equal(t, 2.0, got.Threshold)
}

func TestAdd_Validation(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	tests := []struct {
		name   string
		mutate func(*IngredientInput)
	}{
		{"empty name", func(in *IngredientInput) { in.Name = "  " }},
		{"empty unit", func(in *IngredientInput) { in.Unit = "" }},
		{"unknown unit", func(in *IngredientInput) { in.Unit = "grams" }},
		{"negative quantity", func(in *IngredientInput) { in.Quantity = -1 }},
		{"negative cost", func(in *IngredientInput) { in.CostPerUnit = -0.01 }},
		{"negative threshold", func(in *IngredientInput) { in.Threshold = -3 }},
		{"nan quantity", func(in *IngredientInput) { in.Quantity = math.NaN() }},
		{"infinite cost", func(in *IngredientInput) { in.CostPerUnit = math.Inf(1) }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := flour()
			tt.mutate(&in)
			_, err := svc.Add(ctx, in)
			assert.ErrorIs(t, err, apperr.ErrInvalidInput)
		})
	}

	all, err := svc.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, all, "rejected input must not be persisted")
}

func TestAdd_DuplicateName(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	_, err := svc.Add(ctx, flour())
	require.NoError(t, err)

	_, err = svc.Add(ctx, flour())
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)

	// names are compared case-sensitively
	lower := flour()
	lower.Name = "flour"
	_, err = svc.Add(ctx, lower)
	assert.NoError(t, err)
}

func TestUpdate(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	added, err := svc.Add(ctx, flour())
	require.NoError(t, err)
	sugar := flour()
	sugar.Name = "Sugar"
	_, err = svc.Add(ctx, sugar)
	require.NoError(t, err)

	cost := 2.5
	updated, err := svc.Update(ctx, added.ID, IngredientPatch{CostPerUnit: &cost})
	require.NoError(t, err)
	assert.Equal(t, 2.5, updated.CostPerUnit)
	assert.Equal(t, "Flour", updated.Name)

	taken := "Sugar"
	_, err = svc.Update(ctx, added.ID, IngredientPatch{Name: &taken})
	assert.ErrorIs(t, err, apperr.ErrDuplicateName)

	negative := -1.0
	_, err = svc.Update(ctx, added.ID, IngredientPatch{Quantity: &negative})
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)

	got, err := svc.Get(ctx, added.ID)
	require.NoError(t, err)
	assert.Equal(t, 5.0, got.Quantity, "failed edit must not be persisted")

	_, err = svc.Update(ctx, "missing", IngredientPatch{CostPerUnit: &cost})
	assert.ErrorIs(t, err, apperr.ErrUnknownIngredient)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	usage := stubUsage{used: map[string]bool{}}
	svc := newTestService(t, usage)

	added, err := svc.Add(ctx, flour())
	require.NoError(t, err)

	usage.used[added.ID] = true
	err = svc.Remove(ctx, added.ID)
	assert.ErrorIs(t, err, apperr.ErrIngredientInUse)

	usage.used[added.ID] = false
	require.NoError(t, svc.Remove(ctx, added.ID))

	_, err = svc.Get(ctx, added.ID)
	assert.ErrorIs(t, err, apperr.ErrUnknownIngredient)

	assert.ErrorIs(t, svc.Remove(ctx, added.ID), apperr.ErrUnknownIngredient)
}

func TestLowStock(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	inputs := []IngredientInput{
		{Name: "Eggs", Quantity: 3, Unit: "pieces", CostPerUnit: 0.2, Threshold: 12},
		{Name: "Milk", Quantity: 2, Unit: "liters", CostPerUnit: 0.9, Threshold: 2},
		{Name: "Salt", Quantity: 1, Unit: "kg", CostPerUnit: 0.5, Threshold: 0},
	}
	for _, in := range inputs {
		_, err := svc.Add(ctx, in)
		require.NoError(t, err)
	}

	low, err := svc.LowStock(ctx)
	require.NoError(t, err)
	require.Len(t, low, 1, "quantity equal to threshold is not low")
	assert.Equal(t, "Eggs", low[0].Name)
}

func TestDeduct(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	added, err := svc.Add(ctx, flour())
	require.NoError(t, err)

	res, err := svc.Deduct(ctx, added.ID, 1.5)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 3.5, res.Quantity)

	res, err = svc.Deduct(ctx, added.ID, 10)
	require.NoError(t, err)
	assert.False(t, res.OK)
	assert.Equal(t, 3.5, res.Quantity)
	assert.Equal(t, "Flour", res.Name)

	res, err = svc.Deduct(ctx, added.ID, 3.5)
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Equal(t, 0.0, res.Quantity, "exact deduction empties stock without going negative")

	_, err = svc.Deduct(ctx, added.ID, 0)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.Deduct(ctx, added.ID, -2)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
	_, err = svc.Deduct(ctx, "missing", 1)
	assert.ErrorIs(t, err, apperr.ErrUnknownIngredient)
}

func TestDeduct_DecimalExact(t *testing.T) {
	ctx := context.Background()
	svc := newTestService(t, nil)

	in := flour()
	in.Quantity = 0.3
	added, err := svc.Add(ctx, in)
	require.NoError(t, err)

	res, err := svc.Deduct(ctx, added.ID, 0.1)
	require.NoError(t, err)
	require.True(t, res.OK)
	assert.Equal(t, 0.2, res.Quantity)
}

func TestParseUnit(t *testing.T) {
	for _, u := range Units {
		got, err := ParseUnit(string(u))
		require.NoError(t, err)
		assert.Equal(t, u, got)
	}
	_, err := ParseUnit("KG")
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}
