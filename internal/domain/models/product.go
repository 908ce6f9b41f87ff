package models

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Product is a read-only catalog entry. Products do not change for the lifetime of a session.
type Product struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Description string          `json:"description"`
	Image       string          `json:"image"`
	Price       decimal.Decimal `json:"price"`
	Stock       int             `json:"stock"`
}

// UnmarshalJSON decodes a catalog entry and rejects negative prices or stock.
func (p *Product) UnmarshalJSON(data []byte) error {
	type plain Product
	var raw plain
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	switch {
	case raw.ID == "":
		return errors.New("product id must not be empty")
	case raw.Price.IsNegative():
		return fmt.Errorf("product %s: price must not be negative", raw.ID)
	case raw.Stock < 0:
		return fmt.Errorf("product %s: stock must not be negative", raw.ID)
	}

	*p = Product(raw)
	return nil
}

// FormatMoney renders a currency amount with exactly two fraction digits.
func FormatMoney(amount decimal.Decimal) string {
	return amount.StringFixed(2)
}
