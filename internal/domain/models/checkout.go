package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CheckoutState is the position of the checkout flow in its state machine.
type CheckoutState string

const (
	CheckoutIdle              CheckoutState = "idle"
	CheckoutAwaitingBuyerInfo CheckoutState = "awaiting_buyer_info"
	CheckoutProcessing        CheckoutState = "processing"
	CheckoutCompleted         CheckoutState = "completed"
	CheckoutCancelled         CheckoutState = "cancelled"
	CheckoutBlocked           CheckoutState = "blocked"
)

// BuyerInfo is collected by the checkout form. Name and email are mandatory.
type BuyerInfo struct {
	Name    string `json:"name" form:"name"`
	Email   string `json:"email" form:"email"`
	Address string `json:"address" form:"address"`
}

// ReceiptLine is one itemized row of a completed checkout.
type ReceiptLine struct {
	ProductID string          `json:"id"`
	Title     string          `json:"title"`
	Quantity  int             `json:"qty"`
	UnitPrice decimal.Decimal `json:"unit_price"`
	LineTotal decimal.Decimal `json:"line_total"`
}

// Receipt summarizes a completed simulated payment.
type Receipt struct {
	ID        string          `json:"id"`
	Buyer     BuyerInfo       `json:"buyer"`
	Lines     []ReceiptLine   `json:"lines"`
	Units     int             `json:"units"`
	Total     decimal.Decimal `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
}
