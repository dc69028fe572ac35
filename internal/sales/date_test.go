package sales

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kitchen_ledger/internal/apperr"
)

func TestParseDate(t *testing.T) {
	d, err := ParseDate("2024-02-29")
	require.NoError(t, err)
	assert.Equal(t, NewDate(2024, 2, 29), d)
	assert.Equal(t, "2024-03-07", d.AddDays(7).String())
	assert.Equal(t, "2024-01-30", d.AddDays(-30).String())

	for _, bad := range []string{"", "2024-2-29", "29/02/2024", "2023-02-29", "2024-03-01T10:00:00Z"} {
		_, err := ParseDate(bad)
		assert.ErrorIs(t, err, apperr.ErrInvalidInput, bad)
	}
}

func TestDateOf_DropsTime(t *testing.T) {
	loc := time.FixedZone("UTC-5", -5*3600)
	d := DateOf(time.Date(2024, 3, 10, 23, 30, 0, 0, loc))
	assert.Equal(t, NewDate(2024, 3, 10), d, "calendar day in the clock's own zone")
}

func TestDate_JSON(t *testing.T) {
	var in SaleInput
	require.NoError(t, json.Unmarshal([]byte(`{"sale_date":"2024-05-01","recipe_id":"r1","quantity_sold":2}`), &in))
	assert.Equal(t, NewDate(2024, 5, 1), in.SaleDate)

	out, err := json.Marshal(SaleEvent{ID: "s1", SaleDate: in.SaleDate, RecipeID: "r1", QuantitySold: 2})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"s1","sale_date":"2024-05-01","recipe_id":"r1","quantity_sold":2}`, string(out))

	var empty SaleInput
	require.NoError(t, json.Unmarshal([]byte(`{"sale_date":""}`), &empty))
	assert.True(t, empty.SaleDate.IsZero())

	err = json.Unmarshal([]byte(`{"sale_date":"May 1st"}`), &in)
	assert.ErrorIs(t, err, apperr.ErrInvalidInput)
}

func TestDate_Scan(t *testing.T) {
	var d Date
	require.NoError(t, d.Scan("2024-01-15"))
	assert.Equal(t, NewDate(2024, 1, 15), d)
	require.NoError(t, d.Scan([]byte("2024-01-16 00:00:00")))
	assert.Equal(t, NewDate(2024, 1, 16), d)
	require.NoError(t, d.Scan(time.Date(2024, 1, 17, 8, 0, 0, 0, time.UTC)))
	assert.Equal(t, NewDate(2024, 1, 17), d)
	assert.Error(t, d.Scan(42))

	v, err := NewDate(2024, 1, 15).Value()
	require.NoError(t, err)
	assert.Equal(t, "2024-01-15", v)
}
