package recipes

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen_ledger/internal/apperr"
)

func TestDraft_LineEditing(t *testing.T) {
	d := NewDraft("Pancakes", "fluffy")

	require.NoError(t, d.AddLine("flour", 0.2))
	require.NoError(t, d.AddLine("milk", 0.3))
	require.NoError(t, d.AddLine("eggs", 2))

	assert.ErrorIs(t, d.AddLine("milk", 1), apperr.ErrInvalidInput, "same ingredient twice")
	assert.ErrorIs(t, d.AddLine("sugar", 0), apperr.ErrInvalidInput)
	assert.ErrorIs(t, d.AddLine("", 1), apperr.ErrInvalidInput)

	require.NoError(t, d.UpdateLine("milk", 0.25))
	assert.ErrorIs(t, d.UpdateLine("butter", 1), apperr.ErrInvalidInput)
	assert.ErrorIs(t, d.UpdateLine("milk", -1), apperr.ErrInvalidInput)

	require.NoError(t, d.RemoveLine("flour"))
	assert.ErrorIs(t, d.RemoveLine("flour"), apperr.ErrInvalidInput)

	assert.Equal(t, []Line{
		{IngredientID: "milk", QuantityRequired: 0.25},
		{IngredientID: "eggs", QuantityRequired: 2},
	}, d.Lines())

	lines := d.Lines()
	lines[0].QuantityRequired = 99
	assert.Equal(t, 0.25, d.Lines()[0].QuantityRequired, "Lines returns a copy")
}

func TestDraft_Command(t *testing.T) {
	d := NewDraft("Soup", "")
	require.NoError(t, d.AddLine("carrot", 1))
	assert.IsType(t, CreateRecipe{}, d.Command())

	edit := EditDraft(&Recipe{ID: "r1", Name: "Soup", Lines: []Line{{IngredientID: "carrot", QuantityRequired: 1}}})
	cmd, ok := edit.Command().(UpdateRecipe)
	require.True(t, ok)
	assert.Equal(t, "r1", cmd.ID)
	assert.Len(t, cmd.Lines, 1)
}

func TestDraft_Commit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	flour := f.ingredient(t, "Flour", 1)
	milk := f.ingredient(t, "Milk", 0.8)

	d := NewDraft("Pancakes", "")
	_, err := d.Commit(ctx, f.svc)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput, "empty draft cannot be committed")

	require.NoError(t, d.AddLine(flour, 0.2))
	created, err := d.Commit(ctx, f.svc)
	require.NoError(t, err)

	require.NoError(t, d.AddLine(milk, 0.3))
	updated, err := d.Commit(ctx, f.svc)
	require.NoError(t, err)
	assert.Equal(t, created.ID, updated.ID, "second commit updates the same recipe")

	edit := EditDraft(updated)
	require.NoError(t, edit.RemoveLine(flour))
	edit.Description = "flourless"
	got, err := edit.Commit(ctx, f.svc)
	require.NoError(t, err)
	assert.Equal(t, []Line{{IngredientID: milk, QuantityRequired: 0.3}}, got.Lines)

	all, err := f.svc.List(ctx)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Equal(t, "flourless", all[0].Description)
}
