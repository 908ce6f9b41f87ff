package views

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/shopsim/internal/domain/models"
)

// EmptyCartText is shown in place of cart rows when the cart has no lines.
const EmptyCartText = "Your cart is empty."

// StockBar is the coarse availability indicator on each product card.
type StockBar struct {
	Level string
	Color string
}

// StockBarFor buckets stock into high, medium and low.
func StockBarFor(stock int) StockBar {
	switch {
	case stock > 15:
		return StockBar{Level: "100%", Color: "green"}
	case stock > 5:
		return StockBar{Level: "60%", Color: "orange"}
	default:
		return StockBar{Level: "20%", Color: "red"}
	}
}

// ProductCard renders one catalog entry.
type ProductCard struct {
	ID          string
	Title       string
	Description string
	Image       string
	Price       string
	Stock       StockBar
}

// CartRow renders one cart line.
type CartRow struct {
	ID        string
	Title     string
	Image     string
	UnitPrice string
	Quantity  int
}

// CartPanel is the slide-out cart.
type CartPanel struct {
	Open  bool
	Rows  []CartRow
	Count int
	Total string
	Empty bool
}

// ReceiptView is the confirmation shown after a successful checkout.
type ReceiptView struct {
	ID      string
	Buyer   string
	Total   string
	Details []string
}

// Page is everything the template needs. It is derived from state on every request.
type Page struct {
	Products     []ProductCard
	Cart         CartPanel
	Notice       *models.Notice
	Details      *ProductCard
	CheckoutForm *models.BuyerInfo
	FormError    string
	Receipt      *ReceiptView
}

// Card builds a product card.
func Card(p models.Product) ProductCard {
	return ProductCard{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       models.FormatMoney(p.Price),
		Stock:       StockBarFor(p.Stock),
	}
}

// Cards builds the product grid in catalog order.
func Cards(products []models.Product) []ProductCard {
	cards := make([]ProductCard, 0, len(products))
	for _, p := range products {
		cards = append(cards, Card(p))
	}
	return cards
}

// Panel builds the cart panel. Lines whose product is not in the catalog are not
// rendered and count towards neither the badge nor the total, so a cart holding
// only such lines shows as empty.
func Panel(cart models.Cart, find func(string) (models.Product, bool), total decimal.Decimal, open bool) CartPanel {
	panel := CartPanel{Open: open}

	for _, line := range cart.Lines {
		p, ok := find(line.ProductID)
		if !ok {
			continue
		}
		panel.Rows = append(panel.Rows, CartRow{
			ID:        line.ProductID,
			Title:     p.Title,
			Image:     p.Image,
			UnitPrice: models.FormatMoney(p.Price),
			Quantity:  line.Quantity,
		})
		panel.Count += line.Quantity
	}

	panel.Empty = len(panel.Rows) == 0
	if panel.Empty {
		total = decimal.Zero
	}
	panel.Total = models.FormatMoney(total)
	return panel
}

// Receipt builds the confirmation summary.
func Receipt(r models.Receipt) *ReceiptView {
	view := &ReceiptView{
		ID:    r.ID,
		Buyer: r.Buyer.Name,
		Total: models.FormatMoney(r.Total),
	}
	for _, line := range r.Lines {
		view.Details = append(view.Details, fmt.Sprintf("%s x%d - $%s", line.Title, line.Quantity, models.FormatMoney(line.LineTotal)))
	}
	return view
}
