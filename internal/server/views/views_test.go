package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

func TestStockBarFor(t *testing.T) {
	tests := []struct {
		stock int
		want  StockBar
	}{
		{100, StockBar{"100%", "green"}},
		{16, StockBar{"100%", "green"}},
		{15, StockBar{"60%", "orange"}},
		{6, StockBar{"60%", "orange"}},
		{5, StockBar{"20%", "red"}},
		{0, StockBar{"20%", "red"}},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, StockBarFor(tt.stock), "stock %d", tt.stock)
	}
}

func TestPanel(t *testing.T) {
	products := map[string]models.Product{
		"p1": {ID: "p1", Title: "Lamp", Price: decimal.RequireFromString("10")},
	}
	find := func(id string) (models.Product, bool) {
		p, ok := products[id]
		return p, ok
	}

	t.Run("empty", func(t *testing.T) {
		panel := Panel(models.Cart{}, find, decimal.Zero, false)
		assert.True(t, panel.Empty)
		assert.Equal(t, "0.00", panel.Total)
		assert.Zero(t, panel.Count)
		assert.Empty(t, panel.Rows)
	})

	t.Run("skips unknown products", func(t *testing.T) {
		c := models.Cart{Lines: []models.CartLine{
			{ProductID: "ghost", Quantity: 1},
			{ProductID: "p1", Quantity: 2},
		}}
		panel := Panel(c, find, decimal.RequireFromString("20"), true)
		assert.True(t, panel.Open)
		assert.False(t, panel.Empty)
		assert.Equal(t, "20.00", panel.Total)
		require.Len(t, panel.Rows, 1)
		assert.Equal(t, CartRow{ID: "p1", Title: "Lamp", UnitPrice: "10.00", Quantity: 2}, panel.Rows[0])
		assert.Equal(t, 2, panel.Count)
	})

	t.Run("only delisted products shows empty", func(t *testing.T) {
		c := models.Cart{Lines: []models.CartLine{{ProductID: "ghost", Quantity: 4}}}
		panel := Panel(c, find, decimal.Zero, true)
		assert.True(t, panel.Empty)
		assert.Zero(t, panel.Count)
		assert.Empty(t, panel.Rows)
		assert.Equal(t, "0.00", panel.Total)
	})
}

func TestReceipt(t *testing.T) {
	r := models.Receipt{
		ID:    "r1",
		Buyer: models.BuyerInfo{Name: "Ada"},
		Lines: []models.ReceiptLine{
			{Title: "Lamp", Quantity: 2, UnitPrice: decimal.RequireFromString("10"), LineTotal: decimal.RequireFromString("20")},
			{Title: "Mug", Quantity: 1, UnitPrice: decimal.RequireFromString("5.5"), LineTotal: decimal.RequireFromString("5.5")},
		},
		Total:     decimal.RequireFromString("25.5"),
		CreatedAt: time.Now(),
	}

	view := Receipt(r)
	assert.Equal(t, "25.50", view.Total)
	assert.Equal(t, []string{"Lamp x2 - $20.00", "Mug x1 - $5.50"}, view.Details)
}

func TestTemplates_RenderEmptyCart(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	page := Page{
		Products: Cards([]models.Product{{ID: "p1", Title: "Lamp", Price: decimal.RequireFromString("10"), Stock: 20}}),
		Cart:     Panel(models.Cart{}, func(string) (models.Product, bool) { return models.Product{}, false }, decimal.Zero, true),
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.tmpl", page))

	out := buf.String()
	assert.Contains(t, out, "Lamp")
	assert.Contains(t, out, "$10.00")
	assert.Contains(t, out, EmptyCartText)
	assert.Contains(t, out, `<span id="cart-total">0.00</span>`)
	assert.NotContains(t, out, "Payment OK")
}

func TestTemplates_RenderOnlyDelistedLines(t *testing.T) {
	tmpl, err := Templates()
	require.NoError(t, err)

	cart := models.Cart{Lines: []models.CartLine{{ProductID: "gone", Quantity: 3}}}
	page := Page{
		Cart: Panel(cart, func(string) (models.Product, bool) { return models.Product{}, false }, decimal.Zero, true),
	}

	var buf bytes.Buffer
	require.NoError(t, tmpl.ExecuteTemplate(&buf, "index.tmpl", page))

	out := buf.String()
	assert.Contains(t, out, EmptyCartText)
	assert.Contains(t, out, `<span id="cart-total">0.00</span>`)
}
