package models

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseIntent(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want Intent
	}{
		{name: "empty", in: "   ", want: Intent{Type: IntentUnknown}},
		{name: "add with qty", in: "add p1 2", want: Intent{Type: IntentAdd, ProductID: "p1", Quantity: 2}},
		{name: "slash prefix", in: "/remove p2", want: Intent{Type: IntentRemove, ProductID: "p2"}},
		{name: "upper case", in: "INCREASE p3", want: Intent{Type: IntentIncrease, ProductID: "p3"}},
		{name: "short alias", in: "- p3", want: Intent{Type: IntentDecrease, ProductID: "p3"}},
		{name: "bad qty ignored", in: "add p1 many", want: Intent{Type: IntentAdd, ProductID: "p1"}},
		{name: "unknown", in: "buy p1", want: Intent{Type: IntentUnknown, ProductID: "p1"}},
		{name: "clear", in: "clear", want: Intent{Type: IntentClear}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseIntent(tt.in))
		})
	}
}

func TestProductUnmarshal(t *testing.T) {
	t.Run("valid", func(t *testing.T) {
		var p Product
		err := json.Unmarshal([]byte(`{"id":"p1","title":"Lamp","price":10.10,"stock":5}`), &p)
		require.NoError(t, err)
		assert.Equal(t, "p1", p.ID)
		assert.True(t, p.Price.Equal(decimal.RequireFromString("10.10")))
		assert.Equal(t, 5, p.Stock)
	})

	t.Run("negative price", func(t *testing.T) {
		var p Product
		err := json.Unmarshal([]byte(`{"id":"p1","price":-1,"stock":5}`), &p)
		require.ErrorContains(t, err, "price must not be negative")
	})

	t.Run("negative stock", func(t *testing.T) {
		var p Product
		err := json.Unmarshal([]byte(`{"id":"p1","price":1,"stock":-5}`), &p)
		require.ErrorContains(t, err, "stock must not be negative")
	})

	t.Run("missing id", func(t *testing.T) {
		var p Product
		err := json.Unmarshal([]byte(`{"price":1,"stock":1}`), &p)
		require.Error(t, err)
	})
}

func TestFormatMoney(t *testing.T) {
	assert.Equal(t, "0.00", FormatMoney(decimal.Zero))
	assert.Equal(t, "25.50", FormatMoney(decimal.RequireFromString("25.5")))

	// ten additions of 0.1 stay exact
	sum := decimal.Zero
	for i := 0; i < 10; i++ {
		sum = sum.Add(decimal.RequireFromString("0.1"))
	}
	assert.Equal(t, "1.00", FormatMoney(sum))
	assert.True(t, sum.Equal(decimal.NewFromInt(1)))
}

func TestCartHelpers(t *testing.T) {
	cart := Cart{Lines: []CartLine{{ProductID: "p1", Quantity: 2}, {ProductID: "p2", Quantity: 3}}}

	assert.False(t, cart.IsEmpty())
	assert.Equal(t, 1, cart.Find("p2"))
	assert.Equal(t, -1, cart.Find("p9"))
	assert.Equal(t, 5, cart.Units())

	clone := cart.Clone()
	clone.Lines[0].Quantity = 9
	assert.Equal(t, 2, cart.Lines[0].Quantity)
}
